package sheets

import (
	"testing"

	"fintrack/internal/core"
)

func TestTransactionTable(t *testing.T) {
	tbl := TransactionTable(core.KindIncome, []core.Transaction{
		{ID: "a", Description: "Salary", Amount: core.Cents(300050), Date: "2024-05-01", Category: "Work"},
	})
	if tbl.Name != "income" {
		t.Errorf("Name = %q, want income", tbl.Name)
	}
	values := tbl.Values()
	if len(values) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(values))
	}
	if values[0][0] != "ID" || values[0][4] != "Amount" {
		t.Errorf("unexpected header: %v", values[0])
	}
	if values[1][4] != 3000.5 {
		t.Errorf("amount = %v, want 3000.5", values[1][4])
	}
}

func TestEmptyTablesKeepHeader(t *testing.T) {
	for _, tbl := range []Table{BudgetTable(nil), SavingsTable(nil), TransactionTable(core.KindExpense, nil)} {
		values := tbl.Values()
		if len(values) != 1 || len(values[0]) == 0 {
			t.Errorf("%s: expected header only, got %v", tbl.Name, values)
		}
	}
}

func TestBudgetTable(t *testing.T) {
	tbl := BudgetTable([]core.Budget{{ID: "b", Category: "Food", Limit: core.Cents(100000)}})
	if tbl.Name != "budget" || tbl.Rows[0][1] != "Food" || tbl.Rows[0][2] != 1000.0 {
		t.Errorf("unexpected table: %+v", tbl)
	}
}
