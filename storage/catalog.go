package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"depletions/directory"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrSellerNotFound  = errors.New("seller not found")
)

var _ directory.Directory = (*SQLiteStore)(nil)

type Product struct {
	ID   string
	Code string
	Name string
}

type Seller struct {
	ID   string
	Name string
}

type Account struct {
	ID    string
	TaxID string
	Email string
	Name  string
}

type CatalogCounts struct {
	Products      int
	Sellers       int
	MovementTypes int
	Accounts      int
}

// UpsertProducts stores products keyed by code. Products without an id get a
// generated one; an existing code keeps its id and takes the new name.
func (s *SQLiteStore) UpsertProducts(products []Product) (int, error) {
	const stmt = `
INSERT INTO products (id, code, name) VALUES (?, ?, ?)
ON CONFLICT(code) DO UPDATE SET name = excluded.name;`

	return s.execEach(stmt, len(products), func(i int) []any {
		p := products[i]
		return []any{idOrNew(p.ID), strings.TrimSpace(p.Code), strings.TrimSpace(p.Name)}
	})
}

func (s *SQLiteStore) UpsertSellers(sellers []Seller) (int, error) {
	const stmt = `
INSERT INTO sellers (id, name) VALUES (?, ?)
ON CONFLICT(name) DO NOTHING;`

	return s.execEach(stmt, len(sellers), func(i int) []any {
		return []any{idOrNew(sellers[i].ID), strings.TrimSpace(sellers[i].Name)}
	})
}

func (s *SQLiteStore) UpsertAccounts(accounts []Account) (int, error) {
	const stmt = `
INSERT INTO accounts (id, tax_id, email, name) VALUES (?, ?, ?, ?)
ON CONFLICT(tax_id, email) DO UPDATE SET name = excluded.name;`

	return s.execEach(stmt, len(accounts), func(i int) []any {
		a := accounts[i]
		return []any{idOrNew(a.ID), strings.TrimSpace(a.TaxID), normalizeEmail(a.Email), strings.TrimSpace(a.Name)}
	})
}

// ReplaceMovementTypes swaps the whole movement-type enumeration, keeping
// the given order.
func (s *SQLiteStore) ReplaceMovementTypes(values []string) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM movement_types;`); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete movement types: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO movement_types (value, position) VALUES (?, ?);`)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare insert statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		res, err := stmt.Exec(value, i)
		if err != nil {
			_ = tx.Rollback()
			return inserted, fmt.Errorf("insert movement type %q: %w", value, err)
		}
		if rows, err := res.RowsAffected(); err == nil && rows > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("commit transaction: %w", err)
	}
	return inserted, nil
}

func (s *SQLiteStore) CatalogCounts() (CatalogCounts, error) {
	var counts CatalogCounts
	for _, item := range []struct {
		table string
		dest  *int
	}{
		{"products", &counts.Products},
		{"sellers", &counts.Sellers},
		{"movement_types", &counts.MovementTypes},
		{"accounts", &counts.Accounts},
	} {
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM ` + item.table + `;`).Scan(item.dest); err != nil {
			return CatalogCounts{}, fmt.Errorf("count %s: %w", item.table, err)
		}
	}
	return counts, nil
}

func (s *SQLiteStore) ResolveProductCodes(ctx context.Context, codes []string) (map[string]string, error) {
	return s.resolveIn(ctx, `SELECT code, id FROM products WHERE code IN (%s);`, codes)
}

func (s *SQLiteStore) ResolveSellerNames(ctx context.Context, names []string) (map[string]string, error) {
	return s.resolveIn(ctx, `SELECT name, id FROM sellers WHERE name IN (%s);`, names)
}

func (s *SQLiteStore) MovementTypes(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT value FROM movement_types ORDER BY position, value;`)
	if err != nil {
		return nil, fmt.Errorf("query movement types: %w", err)
	}
	defer rows.Close()

	values := make([]string, 0, 8)
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("scan movement type: %w", err)
		}
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movement types: %w", err)
	}
	return values, nil
}

func (s *SQLiteStore) ValidateAccount(ctx context.Context, taxID, email string) (string, error) {
	var id string
	err := s.db.QueryRowContext(
		ctx,
		`SELECT id FROM accounts WHERE tax_id = ? AND email = ?;`,
		strings.TrimSpace(taxID),
		normalizeEmail(email),
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query account: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) ProductName(ctx context.Context, productID string) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM products WHERE id = ?;`, productID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	if err != nil {
		return "", fmt.Errorf("query product %s: %w", productID, err)
	}
	return name, nil
}

func (s *SQLiteStore) SellerName(ctx context.Context, sellerID string) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM sellers WHERE id = ?;`, sellerID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrSellerNotFound, sellerID)
	}
	if err != nil {
		return "", fmt.Errorf("query seller %s: %w", sellerID, err)
	}
	return name, nil
}

// CreateSeller returns the id of the seller with this name, creating it when
// it does not exist yet.
func (s *SQLiteStore) CreateSeller(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("seller name must not be empty")
	}

	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO sellers (id, name) VALUES (?, ?) ON CONFLICT(name) DO NOTHING;`,
		uuid.NewString(),
		name,
	); err != nil {
		return "", fmt.Errorf("insert seller %q: %w", name, err)
	}

	var id string
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM sellers WHERE name = ?;`, name).Scan(&id); err != nil {
		return "", fmt.Errorf("query seller %q: %w", name, err)
	}
	return id, nil
}

func (s *SQLiteStore) resolveIn(ctx context.Context, queryFormat string, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	args := make([]any, len(keys))
	for i, key := range keys {
		args[i] = key
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(queryFormat, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("query lookup keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, id string
		if err := rows.Scan(&key, &id); err != nil {
			return nil, fmt.Errorf("scan lookup row: %w", err)
		}
		out[key] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lookup rows: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) execEach(statement string, n int, args func(i int) []any) (int, error) {
	if n == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(statement)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	affected := 0
	for i := 0; i < n; i++ {
		res, err := stmt.Exec(args(i)...)
		if err != nil {
			_ = tx.Rollback()
			return affected, fmt.Errorf("write catalog row %d: %w", i+1, err)
		}
		if rows, err := res.RowsAffected(); err == nil && rows > 0 {
			affected++
		}
	}

	if err := tx.Commit(); err != nil {
		return affected, fmt.Errorf("commit transaction: %w", err)
	}
	return affected, nil
}

func idOrNew(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return uuid.NewString()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
