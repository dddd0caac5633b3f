// Package aggregate derives read-only views from a full snapshot of records:
// totals, per-category sums, budget reconciliation and date buckets.
//
// Every function recomputes from its inputs. Nothing is cached and inputs are
// never mutated, so callers rebuild views after each fetch.
package aggregate

import (
	"fintrack/internal/core"
)

// Snapshot is the full set of records a view is built from.
type Snapshot struct {
	Expenses []core.Transaction
	Incomes  []core.Transaction
	Budgets  []core.Budget
}

type Totals struct {
	Income  core.Money `json:"totalIncome"`
	Expense core.Money `json:"totalExpense"`
	Balance core.Money `json:"balance"`
}

// Sum adds up the amounts of txs.
func Sum(txs []core.Transaction) core.Money {
	var total core.Money
	for _, t := range txs {
		total = total.Add(t.Amount)
	}
	return total
}

func ComputeTotals(incomes, expenses []core.Transaction) Totals {
	in, out := Sum(incomes), Sum(expenses)
	return Totals{Income: in, Expense: out, Balance: in.Sub(out)}
}

// SavingsRate is the balance as a share of income; undefined without income.
func SavingsRate(t Totals) Ratio {
	return NewRatio(t.Balance, t.Income)
}

// CategorySums maps each category to the sum of its amounts. Keys are matched
// exactly: "Food" and "food " are different categories.
func CategorySums(txs []core.Transaction) map[string]core.Money {
	sums := make(map[string]core.Money)
	for _, t := range txs {
		sums[t.Category] = sums[t.Category].Add(t.Amount)
	}
	return sums
}

// GroupByCategory partitions txs by category in order of first appearance.
func GroupByCategory(txs []core.Transaction) []core.CategoryAmount {
	index := make(map[string]int)
	var out []core.CategoryAmount
	for _, t := range txs {
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, core.CategoryAmount{Name: t.Category})
		}
		out[i].Amount = out[i].Amount.Add(t.Amount)
		out[i].Count++
	}
	return out
}
