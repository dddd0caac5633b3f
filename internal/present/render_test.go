package present

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
)

func TestRendererTransactions(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf).Transactions("Expenses", sample())

	out := buf.String()
	assert.Contains(t, out, "Expenses")
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "2024-05-01")
	assert.NotContains(t, out, "T00:00:00Z")
	assert.Contains(t, out, "4 record(s), total 125.00")
}

func TestRendererEmpty(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)
	r.Transactions("Income", nil)
	r.BudgetList(nil)
	r.SavingsList(nil)

	out := buf.String()
	assert.Contains(t, out, "No records.")
	assert.Contains(t, out, "No budgets.")
	assert.Contains(t, out, "No savings.")
}

func TestRendererBudgetStatus(t *testing.T) {
	snap := aggregate.Snapshot{
		Expenses: []core.Transaction{{ID: "e", Description: "x", Amount: core.Cents(95000), Date: "2024-05-01", Category: "Food"}},
		Budgets: []core.Budget{
			{ID: "b1", Category: "Food", Limit: core.Cents(100000)},
			{ID: "b2", Category: "Rent", Limit: core.Cents(50000)},
		},
	}
	var buf bytes.Buffer
	NewRenderer(&buf).BudgetStatus(aggregate.Build(snap).Budgets)

	out := buf.String()
	assert.Contains(t, out, "Over budget")
	assert.Contains(t, out, "On track")
	assert.Contains(t, out, "95.0%")
	assert.Contains(t, out, "500.00")
}

func TestRendererSummaryAndReport(t *testing.T) {
	snap := aggregate.Snapshot{
		Incomes:  []core.Transaction{{ID: "i", Description: "Salary", Amount: core.Cents(300000), Date: "2024-05-01", Category: "Work"}},
		Expenses: []core.Transaction{{ID: "e", Description: "Rent", Amount: core.Cents(100000), Date: "soon", Category: "Home"}},
	}
	v := aggregate.Build(snap)

	var buf bytes.Buffer
	r := NewRenderer(&buf)
	r.Summary(v)
	r.Report(v)

	out := buf.String()
	assert.Contains(t, out, "3000.00")
	assert.Contains(t, out, "2000.00")
	assert.Contains(t, out, "Work")
	assert.Contains(t, out, "Home")
	assert.Contains(t, out, "2024-05")
	assert.Contains(t, out, "1 record(s) with an unrecognised date")
}

func TestRendererCalendar(t *testing.T) {
	expenses := []core.Transaction{
		{ID: "a", Description: "a", Amount: core.Cents(1000), Date: "2024-05-02", Category: "Food"},
		{ID: "b", Description: "b", Amount: core.Cents(4000), Date: "2024-05-09", Category: "Food"},
	}
	var buf bytes.Buffer
	NewRenderer(&buf).Calendar(aggregate.Calendar(nil, expenses, "2024-05"))

	out := buf.String()
	assert.Contains(t, out, "Calendar 2024-05")
	assert.Contains(t, out, "2024-05-09")
	assert.Contains(t, out, "█")

	buf.Reset()
	NewRenderer(&buf).Calendar(aggregate.Calendar(nil, expenses, "2023-01"))
	assert.Contains(t, buf.String(), "Nothing recorded this month.")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	txs := sample()
	txs[0].Description = `Groceries, "weekly"`
	require.NoError(t, WriteCSV(&buf, txs))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"1", "2024-05-03", `Groceries, "weekly"`, "Food", "45.00"}, rows[1])
	assert.Equal(t, "2024-05-01", rows[2][1])
}
