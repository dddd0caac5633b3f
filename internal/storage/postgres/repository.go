// Package postgres persists records in PostgreSQL through a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"fintrack/internal/core"
)

type Repository struct {
	pool *pgxpool.Pool
}

// Open connects to dsn, runs migrations and verifies the pool.
func Open(ctx context.Context, dsn string) (*Repository, error) {
	if err := RunMigrations(dsn); err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func table(kind core.Kind) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown kind %q", kind)
	}
	return kind.Collection(), nil
}

func (r *Repository) ListTransactions(ctx context.Context, kind core.Kind) ([]core.Transaction, error) {
	tbl, err := table(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id::text, description, amount_cents, date, category FROM `+tbl+` ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", tbl, err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Transaction, error) {
		var t core.Transaction
		err := row.Scan(&t.ID, &t.Description, &t.Amount.Cents, &t.Date, &t.Category)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", tbl, err)
	}
	return nonNil(out), nil
}

func (r *Repository) CreateTransaction(ctx context.Context, kind core.Kind, f core.TransactionFields) (core.Transaction, error) {
	tbl, err := table(kind)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := f.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t := f.Transaction(core.NewID())
	_, err = r.pool.Exec(ctx,
		`INSERT INTO `+tbl+` (id, description, amount_cents, date, category)
		 VALUES ($1::uuid, $2, $3, $4, $5)`,
		t.ID, t.Description, t.Amount.Cents, t.Date, t.Category)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert %s: %w", tbl, err)
	}
	return t, nil
}

func (r *Repository) UpdateTransaction(ctx context.Context, kind core.Kind, id string, f core.TransactionFields) (core.Transaction, error) {
	tbl, err := table(kind)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := f.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t := f.Transaction(id)
	tag, err := r.pool.Exec(ctx,
		`UPDATE `+tbl+` SET description = $1, amount_cents = $2, date = $3, category = $4
		 WHERE id = $5::uuid`,
		t.Description, t.Amount.Cents, t.Date, t.Category, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update %s: %w", tbl, err)
	}
	if tag.RowsAffected() == 0 {
		return core.Transaction{}, fmt.Errorf("%s %s: %w", tbl, id, core.ErrNotFound)
	}
	return t, nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, kind core.Kind, id string) error {
	tbl, err := table(kind)
	if err != nil {
		return err
	}
	return r.deleteByID(ctx, tbl, id)
}

func (r *Repository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.pool.Query(ctx, `SELECT id::text, category, limit_cents FROM budget ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list budget: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Budget, error) {
		var b core.Budget
		err := row.Scan(&b.ID, &b.Category, &b.Limit.Cents)
		return b, err
	})
	if err != nil {
		return nil, fmt.Errorf("list budget: %w", err)
	}
	return nonNil(out), nil
}

func (r *Repository) CreateBudget(ctx context.Context, f core.BudgetFields) (core.Budget, error) {
	if err := f.Validate(); err != nil {
		return core.Budget{}, err
	}
	b := f.Budget(core.NewID())
	_, err := r.pool.Exec(ctx,
		`INSERT INTO budget (id, category, limit_cents) VALUES ($1::uuid, $2, $3)`,
		b.ID, b.Category, b.Limit.Cents)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return core.Budget{}, fmt.Errorf("budget %q: %w", b.Category, core.ErrDuplicate)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}
	return b, nil
}

func (r *Repository) DeleteBudget(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "budget", id)
}

func (r *Repository) ListSavings(ctx context.Context) ([]core.Savings, error) {
	rows, err := r.pool.Query(ctx, `SELECT id::text, amount_cents, date, description FROM savings ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list savings: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Savings, error) {
		var v core.Savings
		err := row.Scan(&v.ID, &v.Amount.Cents, &v.Date, &v.Description)
		return v, err
	})
	if err != nil {
		return nil, fmt.Errorf("list savings: %w", err)
	}
	return nonNil(out), nil
}

func (r *Repository) CreateSavings(ctx context.Context, f core.SavingsFields) (core.Savings, error) {
	if err := f.Validate(); err != nil {
		return core.Savings{}, err
	}
	v := f.Savings(core.NewID())
	_, err := r.pool.Exec(ctx,
		`INSERT INTO savings (id, amount_cents, date, description) VALUES ($1::uuid, $2, $3, $4)`,
		v.ID, v.Amount.Cents, v.Date, v.Description)
	if err != nil {
		return core.Savings{}, fmt.Errorf("insert savings: %w", err)
	}
	return v, nil
}

func (r *Repository) DeleteSavings(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "savings", id)
}

func (r *Repository) deleteByID(ctx context.Context, tbl, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM `+tbl+` WHERE id = $1::uuid`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", tbl, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", tbl, id, core.ErrNotFound)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
