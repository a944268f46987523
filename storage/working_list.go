package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"depletions/depletion"
)

const accountMetaKey = "account_id"

// SaveWorkingList replaces the persisted working list and its owning account.
func (s *SQLiteStore) SaveWorkingList(accountID string, records []depletion.Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM working_list;`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear working list: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO session_meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value;`,
		accountMetaKey,
		accountID,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("save account id: %w", err)
	}

	const insertStmt = `
INSERT INTO working_list (
	token,
	position,
	account_id,
	product_id,
	product_name,
	seller_id,
	seller_name,
	country,
	city,
	state,
	type,
	quantity
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	stmt, err := tx.Prepare(insertStmt)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for i, record := range records {
		if _, err := stmt.Exec(
			record.Token,
			i,
			record.AccountID,
			record.ProductID,
			record.ProductName,
			record.SellerID,
			record.SellerName,
			record.Country,
			record.City,
			record.State,
			record.Type,
			record.Quantity,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert working list entry %s: %w", record.Token, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// LoadWorkingList returns the persisted account id and records in list order.
func (s *SQLiteStore) LoadWorkingList() (string, []depletion.Record, error) {
	var accountID string
	err := s.db.QueryRow(`SELECT value FROM session_meta WHERE key = ?;`, accountMetaKey).Scan(&accountID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", nil, fmt.Errorf("query account id: %w", err)
	}

	const query = `
SELECT
	token,
	account_id,
	product_id,
	product_name,
	seller_id,
	seller_name,
	country,
	city,
	state,
	type,
	quantity
FROM working_list
ORDER BY position;
`

	rows, err := s.db.Query(query)
	if err != nil {
		return "", nil, fmt.Errorf("query working list: %w", err)
	}
	defer rows.Close()

	records := make([]depletion.Record, 0, 64)
	for rows.Next() {
		var record depletion.Record
		if err := rows.Scan(
			&record.Token,
			&record.AccountID,
			&record.ProductID,
			&record.ProductName,
			&record.SellerID,
			&record.SellerName,
			&record.Country,
			&record.City,
			&record.State,
			&record.Type,
			&record.Quantity,
		); err != nil {
			return "", nil, fmt.Errorf("scan working list entry: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return "", nil, fmt.Errorf("iterate working list: %w", err)
	}

	return accountID, records, nil
}
