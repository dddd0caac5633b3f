// Package sheets renders record collections as spreadsheet tables.
package sheets

import (
	"context"

	"fintrack/internal/core"
)

// Table is one collection: a header row plus one row per record, in store order.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

// TableWriter replaces the whole content of the sheet named after t.Name.
type TableWriter interface {
	ReplaceTable(ctx context.Context, t Table) error
}

// Values returns the header followed by the rows, as sent to a spreadsheet.
func (t Table) Values() [][]any {
	out := make([][]any, 0, len(t.Rows)+1)
	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	out = append(out, header)
	return append(out, t.Rows...)
}

func TransactionTable(kind core.Kind, txs []core.Transaction) Table {
	t := Table{
		Name:   kind.Collection(),
		Header: []string{"ID", "Date", "Description", "Category", "Amount"},
		Rows:   make([][]any, 0, len(txs)),
	}
	for _, tx := range txs {
		t.Rows = append(t.Rows, []any{tx.ID, tx.Date, tx.Description, tx.Category, tx.Amount.Float()})
	}
	return t
}

func BudgetTable(budgets []core.Budget) Table {
	t := Table{
		Name:   core.ResourceBudget,
		Header: []string{"ID", "Category", "Limit"},
		Rows:   make([][]any, 0, len(budgets)),
	}
	for _, b := range budgets {
		t.Rows = append(t.Rows, []any{b.ID, b.Category, b.Limit.Float()})
	}
	return t
}

func SavingsTable(savings []core.Savings) Table {
	t := Table{
		Name:   core.ResourceSavings,
		Header: []string{"ID", "Date", "Description", "Amount"},
		Rows:   make([][]any, 0, len(savings)),
	}
	for _, v := range savings {
		t.Rows = append(t.Rows, []any{v.ID, v.Date, v.Description, v.Amount.Float()})
	}
	return t
}
