// Package store defines the persistence ports shared by every backend.
package store

import (
	"context"
	"fmt"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
)

// Ports for the record backends. Lists return records in insertion order and
// never nil. Ids passed in are validated by the caller with core.ParseID.
type (
	TransactionStore interface {
		ListTransactions(ctx context.Context, kind core.Kind) ([]core.Transaction, error)
		CreateTransaction(ctx context.Context, kind core.Kind, f core.TransactionFields) (core.Transaction, error)
		// UpdateTransaction replaces every field of the record. Returns core.ErrNotFound if absent.
		UpdateTransaction(ctx context.Context, kind core.Kind, id string, f core.TransactionFields) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, kind core.Kind, id string) error
	}

	BudgetStore interface {
		ListBudgets(ctx context.Context) ([]core.Budget, error)
		// CreateBudget returns core.ErrDuplicate when the category already has a budget.
		CreateBudget(ctx context.Context, f core.BudgetFields) (core.Budget, error)
		DeleteBudget(ctx context.Context, id string) error
	}

	SavingsStore interface {
		ListSavings(ctx context.Context) ([]core.Savings, error)
		CreateSavings(ctx context.Context, f core.SavingsFields) (core.Savings, error)
		DeleteSavings(ctx context.Context, id string) error
	}

	Store interface {
		TransactionStore
		BudgetStore
		SavingsStore
		Ping(ctx context.Context) error
		Close() error
	}
)

// SnapshotReader is the read side needed to build aggregate views.
type SnapshotReader interface {
	ListTransactions(ctx context.Context, kind core.Kind) ([]core.Transaction, error)
	ListBudgets(ctx context.Context) ([]core.Budget, error)
}

// LoadSnapshot reads every collection the aggregate views depend on.
func LoadSnapshot(ctx context.Context, r SnapshotReader) (aggregate.Snapshot, error) {
	var snap aggregate.Snapshot
	var err error
	if snap.Expenses, err = r.ListTransactions(ctx, core.KindExpense); err != nil {
		return snap, fmt.Errorf("list expenses: %w", err)
	}
	if snap.Incomes, err = r.ListTransactions(ctx, core.KindIncome); err != nil {
		return snap, fmt.Errorf("list incomes: %w", err)
	}
	if snap.Budgets, err = r.ListBudgets(ctx); err != nil {
		return snap, fmt.Errorf("list budgets: %w", err)
	}
	return snap, nil
}
