package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the local directory catalog, the CLI working list, and
// the depletions submitted from it.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS sellers (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS movement_types (
	value TEXT PRIMARY KEY,
	position INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS accounts (
	id TEXT PRIMARY KEY,
	tax_id TEXT NOT NULL,
	email TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	UNIQUE(tax_id, email)
);
CREATE TABLE IF NOT EXISTS depletions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	batch_id TEXT NOT NULL,
	account_id TEXT NOT NULL,
	product_id TEXT NOT NULL,
	seller_id TEXT NOT NULL,
	country TEXT NOT NULL,
	city TEXT NOT NULL,
	state TEXT NOT NULL,
	type TEXT NOT NULL,
	quantity INTEGER NOT NULL CHECK(quantity > 0),
	submitted_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS working_list (
	token TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	account_id TEXT NOT NULL,
	product_id TEXT NOT NULL,
	product_name TEXT NOT NULL,
	seller_id TEXT NOT NULL,
	seller_name TEXT NOT NULL,
	country TEXT NOT NULL,
	city TEXT NOT NULL,
	state TEXT NOT NULL,
	type TEXT NOT NULL,
	quantity INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS session_meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

var (
	workingListTables = []string{"working_list", "session_meta"}
	submittedTables   = []string{"depletions"}
	catalogTables     = []string{"accounts", "movement_types", "sellers", "products"}
)

// DeleteAll empties every table and returns the number of removed rows.
func (s *SQLiteStore) DeleteAll() (int64, error) {
	tables := append(append(append([]string(nil), workingListTables...), submittedTables...), catalogTables...)
	return s.deleteTables(tables)
}

// DeleteWorkingList clears the pending list and its owning account.
func (s *SQLiteStore) DeleteWorkingList() (int64, error) {
	return s.deleteTables(workingListTables)
}

// DeleteCatalog clears products, sellers, accounts, and movement types.
func (s *SQLiteStore) DeleteCatalog() (int64, error) {
	return s.deleteTables(catalogTables)
}

func (s *SQLiteStore) DeleteSubmitted() (int64, error) {
	return s.deleteTables(submittedTables)
}

func (s *SQLiteStore) deleteTables(tables []string) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	var total int64
	for _, table := range tables {
		res, err := tx.Exec(`DELETE FROM ` + table + `;`)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("delete %s: %w", table, err)
		}
		rows, err := res.RowsAffected()
		if err == nil {
			total += rows
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete transaction: %w", err)
	}
	return total, nil
}
