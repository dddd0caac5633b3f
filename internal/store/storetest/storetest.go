// Package storetest holds behaviour checks every store.Store backend must pass.
package storetest

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

func strp(s string) *string { return &s }

func moneyp(cents int64) *core.Money {
	m := core.Cents(cents)
	return &m
}

func txFields(desc string, cents int64, date, category string) core.TransactionFields {
	return core.TransactionFields{Description: strp(desc), Amount: moneyp(cents), Date: strp(date), Category: strp(category)}
}

// Run exercises s against the store contract. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("transactions", func(t *testing.T) {
		s := newStore(t)
		for _, kind := range []core.Kind{core.KindExpense, core.KindIncome} {
			empty, err := s.ListTransactions(ctx, kind)
			if err != nil || empty == nil || len(empty) != 0 {
				t.Fatalf("%s: want empty non-nil list, got %#v err=%v", kind, empty, err)
			}

			a, err := s.CreateTransaction(ctx, kind, txFields("first", 1250, "2024-05-01", "Food"))
			if err != nil {
				t.Fatalf("%s create: %v", kind, err)
			}
			b, err := s.CreateTransaction(ctx, kind, txFields("second", 0, "2024-05-02T08:00:00Z", "Rent"))
			if err != nil {
				t.Fatalf("%s create: %v", kind, err)
			}

			list, err := s.ListTransactions(ctx, kind)
			if err != nil || len(list) != 2 || list[0] != a || list[1] != b {
				t.Fatalf("%s list: got %v err=%v", kind, list, err)
			}

			upd, err := s.UpdateTransaction(ctx, kind, a.ID, txFields("edited", 999, "2024-06-01", "Fun"))
			if err != nil {
				t.Fatalf("%s update: %v", kind, err)
			}
			list, _ = s.ListTransactions(ctx, kind)
			if list[0] != upd || upd.ID != a.ID || upd.Description != "edited" {
				t.Fatalf("%s update not persisted: %v", kind, list)
			}

			if _, err := s.UpdateTransaction(ctx, kind, core.NewID(), txFields("x", 1, "d", "c")); !errors.Is(err, core.ErrNotFound) {
				t.Fatalf("%s update missing: want ErrNotFound, got %v", kind, err)
			}
			if err := s.DeleteTransaction(ctx, kind, a.ID); err != nil {
				t.Fatalf("%s delete: %v", kind, err)
			}
			if err := s.DeleteTransaction(ctx, kind, a.ID); !errors.Is(err, core.ErrNotFound) {
				t.Fatalf("%s second delete: want ErrNotFound, got %v", kind, err)
			}
			list, _ = s.ListTransactions(ctx, kind)
			if len(list) != 1 || list[0] != b {
				t.Fatalf("%s after delete: %v", kind, list)
			}
		}
	})

	t.Run("validation", func(t *testing.T) {
		s := newStore(t)
		f := txFields("x", 100, "2024-05-01", "")
		if _, err := s.CreateTransaction(ctx, core.KindExpense, f); !errors.Is(err, core.ErrValidation) {
			t.Fatalf("want ErrValidation, got %v", err)
		}
		if _, err := s.CreateBudget(ctx, core.BudgetFields{Category: strp("Food")}); !errors.Is(err, core.ErrValidation) {
			t.Fatalf("budget: want ErrValidation, got %v", err)
		}
		if _, err := s.CreateSavings(ctx, core.SavingsFields{Amount: moneyp(1)}); !errors.Is(err, core.ErrValidation) {
			t.Fatalf("savings: want ErrValidation, got %v", err)
		}
		list, _ := s.ListTransactions(ctx, core.KindExpense)
		budgets, _ := s.ListBudgets(ctx)
		savings, _ := s.ListSavings(ctx)
		if len(list)+len(budgets)+len(savings) != 0 {
			t.Fatalf("partial save after validation failure")
		}
	})

	t.Run("budgets", func(t *testing.T) {
		s := newStore(t)
		food, err := s.CreateBudget(ctx, core.BudgetFields{Category: strp("Food"), Limit: moneyp(100000)})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := s.CreateBudget(ctx, core.BudgetFields{Category: strp("Food"), Limit: moneyp(5)}); !errors.Is(err, core.ErrDuplicate) {
			t.Fatalf("want ErrDuplicate, got %v", err)
		}
		travel, err := s.CreateBudget(ctx, core.BudgetFields{Category: strp("Travel"), Limit: moneyp(25050)})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		list, err := s.ListBudgets(ctx)
		if err != nil || len(list) != 2 || list[0] != food || list[1] != travel {
			t.Fatalf("list: %v err=%v", list, err)
		}
		if err := s.DeleteBudget(ctx, food.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := s.DeleteBudget(ctx, food.ID); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("want ErrNotFound, got %v", err)
		}
		// category is free again
		if _, err := s.CreateBudget(ctx, core.BudgetFields{Category: strp("Food"), Limit: moneyp(1)}); err != nil {
			t.Fatalf("recreate: %v", err)
		}
	})

	t.Run("savings", func(t *testing.T) {
		s := newStore(t)
		v, err := s.CreateSavings(ctx, core.SavingsFields{Amount: moneyp(5000), Date: strp("2024-05-01"), Description: strp("Emergency")})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		list, err := s.ListSavings(ctx)
		if err != nil || len(list) != 1 || list[0] != v {
			t.Fatalf("list: %v err=%v", list, err)
		}
		if err := s.DeleteSavings(ctx, v.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := s.DeleteSavings(ctx, v.ID); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("want ErrNotFound, got %v", err)
		}
	})

	t.Run("fields stored verbatim", func(t *testing.T) {
		s := newStore(t)
		want := []core.Transaction{}
		for _, f := range []core.TransactionFields{
			txFields(" Lunch  ", core.MaxCents, "03/05/2024", "food "),
			txFields("Dinner", 1, "2024-05-03T19:30:00+02:00", "Food"),
			txFields("Snack\tbar", 0, "yesterday", "FOOD"),
		} {
			tx, err := s.CreateTransaction(ctx, core.KindExpense, f)
			if err != nil {
				t.Fatalf("create %q: %v", *f.Description, err)
			}
			if tx.Description != *f.Description || tx.Amount != *f.Amount || tx.Date != *f.Date || tx.Category != *f.Category {
				t.Fatalf("create returned %+v for %q", tx, *f.Description)
			}
			want = append(want, tx)
		}
		list, err := s.ListTransactions(ctx, core.KindExpense)
		if err != nil || len(list) != len(want) {
			t.Fatalf("list: got %v err=%v", list, err)
		}
		for i := range want {
			if list[i] != want[i] {
				t.Fatalf("list[%d] = %+v, want %+v", i, list[i], want[i])
			}
		}

		for _, cat := range []string{"Food", "food ", "FOOD"} {
			if _, err := s.CreateBudget(ctx, core.BudgetFields{Category: strp(cat), Limit: moneyp(100)}); err != nil {
				t.Fatalf("budget %q: categories differing in case or spacing are distinct: %v", cat, err)
			}
		}
		budgets, _ := s.ListBudgets(ctx)
		if len(budgets) != 3 || budgets[1].Category != "food " {
			t.Fatalf("budgets: %+v", budgets)
		}
	})

	t.Run("snapshot", func(t *testing.T) {
		s := newStore(t)
		_, _ = s.CreateTransaction(ctx, core.KindExpense, txFields("Lunch", 1200, "2024-05-01", "Food"))
		_, _ = s.CreateTransaction(ctx, core.KindIncome, txFields("Salary", 300000, "2024-05-01", "Work"))
		_, _ = s.CreateBudget(ctx, core.BudgetFields{Category: strp("Food"), Limit: moneyp(10000)})

		snap, err := store.LoadSnapshot(ctx, s)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if len(snap.Expenses) != 1 || len(snap.Incomes) != 1 || len(snap.Budgets) != 1 {
			t.Fatalf("unexpected snapshot: %+v", snap)
		}
	})

	t.Run("ping", func(t *testing.T) {
		if err := newStore(t).Ping(ctx); err != nil {
			t.Fatalf("ping: %v", err)
		}
	})
}
