package aggregate

import "fintrack/internal/core"

// View is everything the dashboard shows, derived from one snapshot.
type View struct {
	Totals            Totals                `json:"totals"`
	SavingsRate       Ratio                 `json:"savingsRate"`
	ExpenseByCategory []core.CategoryAmount `json:"expenseByCategory"`
	IncomeByCategory  []core.CategoryAmount `json:"incomeByCategory"`
	Budgets           []BudgetStatus        `json:"budgets"`
	Monthly           []MonthSummary        `json:"monthly"`
	// UnparsedDates counts records left out of Monthly because of their date.
	UnparsedDates int `json:"unparsedDates"`
}

// Build recomputes the full view from s.
func Build(s Snapshot) View {
	totals := ComputeTotals(s.Incomes, s.Expenses)
	monthly, unparsed := Monthly(s.Incomes, s.Expenses)
	return View{
		Totals:            totals,
		SavingsRate:       SavingsRate(totals),
		ExpenseByCategory: GroupByCategory(s.Expenses),
		IncomeByCategory:  GroupByCategory(s.Incomes),
		Budgets:           Reconcile(s.Budgets, s.Expenses),
		Monthly:           monthly,
		UnparsedDates:     unparsed,
	}
}
