// Package worker mirrors record collections to a spreadsheet in response to
// change events.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

// Reader is the read side of store.Store.
type Reader interface {
	ListTransactions(ctx context.Context, kind core.Kind) ([]core.Transaction, error)
	ListBudgets(ctx context.Context) ([]core.Budget, error)
	ListSavings(ctx context.Context) ([]core.Savings, error)
}

// MirrorWorker rewrites a collection's sheet from the store whenever that
// collection changes. Events only name the collection; the store is the source
// of truth, so replayed or reordered events converge to the same sheet.
type MirrorWorker struct {
	store  Reader
	writer sheets.TableWriter
}

func NewMirrorWorker(store Reader, writer sheets.TableWriter) *MirrorWorker {
	return &MirrorWorker{store: store, writer: writer}
}

// HandleChange is an amqp.Handler.
func (w *MirrorWorker) HandleChange(ctx context.Context, ev *amqp.ChangeEvent) error {
	slog.InfoContext(ctx, "Processing change event",
		"resource", ev.Resource,
		"id", ev.ID,
		"op", ev.Op)
	return w.Mirror(ctx, ev.Resource)
}

// Mirror rewrites the sheet of one resource.
func (w *MirrorWorker) Mirror(ctx context.Context, resource string) error {
	tbl, err := w.table(ctx, resource)
	if err != nil {
		return err
	}
	if err := w.writer.ReplaceTable(ctx, tbl); err != nil {
		return fmt.Errorf("mirror %s: %w", resource, err)
	}
	return nil
}

// MirrorAll rewrites every resource's sheet concurrently.
func (w *MirrorWorker) MirrorAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, resource := range core.Resources {
		g.Go(func() error {
			return w.Mirror(ctx, resource)
		})
	}
	return g.Wait()
}

func (w *MirrorWorker) table(ctx context.Context, resource string) (sheets.Table, error) {
	switch resource {
	case core.ResourceExpense, core.ResourceIncome:
		kind := core.Kind(resource)
		txs, err := w.store.ListTransactions(ctx, kind)
		if err != nil {
			return sheets.Table{}, fmt.Errorf("list %s: %w", resource, err)
		}
		return sheets.TransactionTable(kind, txs), nil
	case core.ResourceBudget:
		budgets, err := w.store.ListBudgets(ctx)
		if err != nil {
			return sheets.Table{}, fmt.Errorf("list budget: %w", err)
		}
		return sheets.BudgetTable(budgets), nil
	case core.ResourceSavings:
		savings, err := w.store.ListSavings(ctx)
		if err != nil {
			return sheets.Table{}, fmt.Errorf("list savings: %w", err)
		}
		return sheets.SavingsTable(savings), nil
	default:
		return sheets.Table{}, fmt.Errorf("unknown resource %q", resource)
	}
}
