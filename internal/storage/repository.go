// Package storage persists records in a SQLite database.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"fintrack/internal/core"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer; serialise through one connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// table maps a kind to its table name. Only known kinds reach SQL text.
func table(kind core.Kind) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown kind %q", kind)
	}
	return kind.Collection(), nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, kind core.Kind) ([]core.Transaction, error) {
	tbl, err := table(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, amount_cents, date, category FROM `+tbl+` ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", tbl, err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		var t core.Transaction
		if err := rows.Scan(&t.ID, &t.Description, &t.Amount.Cents, &t.Date, &t.Category); err != nil {
			return nil, fmt.Errorf("scan %s: %w", tbl, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", tbl, err)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, kind core.Kind, f core.TransactionFields) (core.Transaction, error) {
	tbl, err := table(kind)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := f.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t := f.Transaction(core.NewID())
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO `+tbl+` (id, description, amount_cents, date, category) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Description, t.Amount.Cents, t.Date, t.Category)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert %s: %w", tbl, err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"kind", kind,
		"id", t.ID,
		"amount_cents", t.Amount.Cents)
	return t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, kind core.Kind, id string, f core.TransactionFields) (core.Transaction, error) {
	tbl, err := table(kind)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := f.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t := f.Transaction(id)
	res, err := r.db.ExecContext(ctx,
		`UPDATE `+tbl+` SET description = ?, amount_cents = ?, date = ?, category = ? WHERE id = ?`,
		t.Description, t.Amount.Cents, t.Date, t.Category, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update %s: %w", tbl, err)
	}
	if err := expectOne(res, tbl, id); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, kind core.Kind, id string) error {
	tbl, err := table(kind)
	if err != nil {
		return err
	}
	return r.deleteByID(ctx, tbl, id)
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, category, limit_cents FROM budget ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list budget: %w", err)
	}
	defer rows.Close()

	out := []core.Budget{}
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.Category, &b.Limit.Cents); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list budget: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateBudget(ctx context.Context, f core.BudgetFields) (core.Budget, error) {
	if err := f.Validate(); err != nil {
		return core.Budget{}, err
	}
	b := f.Budget(core.NewID())
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budget (id, category, limit_cents) VALUES (?, ?, ?)`,
		b.ID, b.Category, b.Limit.Cents)
	if isUniqueViolation(err) {
		return core.Budget{}, fmt.Errorf("budget %q: %w", b.Category, core.ErrDuplicate)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "budget", id)
}

func (r *SQLiteRepository) ListSavings(ctx context.Context) ([]core.Savings, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, amount_cents, date, description FROM savings ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list savings: %w", err)
	}
	defer rows.Close()

	out := []core.Savings{}
	for rows.Next() {
		var v core.Savings
		if err := rows.Scan(&v.ID, &v.Amount.Cents, &v.Date, &v.Description); err != nil {
			return nil, fmt.Errorf("scan savings: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list savings: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateSavings(ctx context.Context, f core.SavingsFields) (core.Savings, error) {
	if err := f.Validate(); err != nil {
		return core.Savings{}, err
	}
	v := f.Savings(core.NewID())
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO savings (id, amount_cents, date, description) VALUES (?, ?, ?, ?)`,
		v.ID, v.Amount.Cents, v.Date, v.Description)
	if err != nil {
		return core.Savings{}, fmt.Errorf("insert savings: %w", err)
	}
	return v, nil
}

func (r *SQLiteRepository) DeleteSavings(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "savings", id)
}

func (r *SQLiteRepository) deleteByID(ctx context.Context, tbl, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+tbl+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", tbl, err)
	}
	return expectOne(res, tbl, id)
}

func expectOne(res sql.Result, tbl, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", tbl, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", tbl, id, core.ErrNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
