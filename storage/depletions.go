package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"depletions/depletion"
)

// SubmittedDepletion is one row of a past bulk submission.
type SubmittedDepletion struct {
	ID          int64
	BatchID     string
	SubmittedAt string
	depletion.Submission
}

// CreateDepletions stores one bulk submission atomically under a new batch id.
func (s *SQLiteStore) CreateDepletions(ctx context.Context, depletions []depletion.Submission) error {
	if len(depletions) == 0 {
		return errors.New("create depletions payload must not be empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	const insertStmt = `
INSERT INTO depletions (
	batch_id,
	account_id,
	product_id,
	seller_id,
	country,
	city,
	state,
	type,
	quantity
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`

	stmt, err := tx.PrepareContext(ctx, insertStmt)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert statement: %w", err)
	}
	defer stmt.Close()

	batchID := uuid.NewString()
	for i, d := range depletions {
		if _, err := stmt.ExecContext(
			ctx,
			batchID,
			d.AccountID,
			d.ProductID,
			d.SellerID,
			d.Country,
			d.City,
			d.State,
			d.Type,
			d.Quantity,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert depletion %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListDepletions() ([]SubmittedDepletion, error) {
	const query = `
SELECT
	id,
	batch_id,
	submitted_at,
	account_id,
	product_id,
	seller_id,
	country,
	city,
	state,
	type,
	quantity
FROM depletions
ORDER BY id;
`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query depletions: %w", err)
	}
	defer rows.Close()

	out := make([]SubmittedDepletion, 0, 64)
	for rows.Next() {
		var d SubmittedDepletion
		if err := rows.Scan(
			&d.ID,
			&d.BatchID,
			&d.SubmittedAt,
			&d.AccountID,
			&d.ProductID,
			&d.SellerID,
			&d.Country,
			&d.City,
			&d.State,
			&d.Type,
			&d.Quantity,
		); err != nil {
			return nil, fmt.Errorf("scan depletion: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate depletions: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) CountDepletions() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM depletions;`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count depletions: %w", err)
	}
	return count, nil
}
