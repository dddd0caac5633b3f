package present

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
)

var (
	colorRed    = lipgloss.Color("#f38ba8")
	colorYellow = lipgloss.Color("#f9e2af")
	colorGreen  = lipgloss.Color("#a6e3a1")
	colorMuted  = lipgloss.Color("#7f849c")
	colorBlue   = lipgloss.Color("#89b4fa")
)

// Renderer writes styled tables to w. Colors are dropped automatically when
// w is not a terminal.
type Renderer struct {
	w        io.Writer
	title    lipgloss.Style
	header   lipgloss.Style
	muted    lipgloss.Style
	negative lipgloss.Style
	status   map[aggregate.Status]lipgloss.Style
	border   lipgloss.Style
}

func NewRenderer(w io.Writer) *Renderer {
	r := lipgloss.NewRenderer(w)
	return &Renderer{
		w:        w,
		title:    r.NewStyle().Bold(true).Foreground(colorBlue),
		header:   r.NewStyle().Bold(true).Padding(0, 1),
		muted:    r.NewStyle().Foreground(colorMuted),
		negative: r.NewStyle().Foreground(colorRed),
		border:   r.NewStyle().Foreground(colorMuted),
		status: map[aggregate.Status]lipgloss.Style{
			aggregate.StatusOnTrack: r.NewStyle().Foreground(colorGreen),
			aggregate.StatusWarning: r.NewStyle().Foreground(colorYellow),
			aggregate.StatusOver:    r.NewStyle().Foreground(colorRed).Bold(true),
		},
	}
}

func (r *Renderer) println(s string) {
	fmt.Fprintln(r.w, s)
}

func (r *Renderer) table(headers []string, rows [][]string) string {
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.header
			}
			return cell
		}).
		String()
}

func (r *Renderer) empty(msg string) {
	r.println(r.muted.Render(msg))
}

func (r *Renderer) money(m core.Money) string {
	if m.IsNegative() {
		return r.negative.Render(m.String())
	}
	return m.String()
}

// Transactions renders a list with a total footer line.
func (r *Renderer) Transactions(title string, txs []core.Transaction) {
	r.println(r.title.Render(title))
	if len(txs) == 0 {
		r.empty("No records.")
		return
	}
	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, []string{tx.ID, NormalizeDate(tx.Date), tx.Description, tx.Category, tx.Amount.String()})
	}
	r.println(r.table([]string{"ID", "Date", "Description", "Category", "Amount"}, rows))
	r.println(fmt.Sprintf("%d record(s), total %s", len(txs), aggregate.Sum(txs)))
}

func (r *Renderer) BudgetList(budgets []core.Budget) {
	r.println(r.title.Render("Budgets"))
	if len(budgets) == 0 {
		r.empty("No budgets.")
		return
	}
	rows := make([][]string, 0, len(budgets))
	for _, b := range budgets {
		rows = append(rows, []string{b.ID, b.Category, b.Limit.String()})
	}
	r.println(r.table([]string{"ID", "Category", "Limit"}, rows))
}

func (r *Renderer) SavingsList(list []core.Savings) {
	r.println(r.title.Render("Savings"))
	if len(list) == 0 {
		r.empty("No savings.")
		return
	}
	rows := make([][]string, 0, len(list))
	var total core.Money
	for _, s := range list {
		rows = append(rows, []string{s.ID, NormalizeDate(s.Date), s.Description, s.Amount.String()})
		total = total.Add(s.Amount)
	}
	r.println(r.table([]string{"ID", "Date", "Description", "Amount"}, rows))
	r.println(fmt.Sprintf("%d record(s), total %s", len(list), total))
}

// BudgetStatus renders reconciled budgets with their status band.
func (r *Renderer) BudgetStatus(statuses []aggregate.BudgetStatus) {
	r.println(r.title.Render("Budget status"))
	if len(statuses) == 0 {
		r.empty("No budgets.")
		return
	}
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		rows = append(rows, []string{
			s.Category,
			s.Limit.String(),
			s.Spent.String(),
			r.money(s.Remaining),
			s.Percentage.String(),
			r.status[s.Status].Render(s.Status.Label()),
		})
	}
	r.println(r.table([]string{"Category", "Limit", "Spent", "Remaining", "Used", "Status"}, rows))
}

// Summary renders totals and both category breakdowns.
func (r *Renderer) Summary(v aggregate.View) {
	r.println(r.title.Render("Summary"))
	r.println(r.table([]string{"Income", "Expenses", "Balance", "Savings rate"}, [][]string{{
		v.Totals.Income.String(),
		v.Totals.Expense.String(),
		r.money(v.Totals.Balance),
		v.SavingsRate.String(),
	}}))
	r.categories("Expenses by category", v.ExpenseByCategory)
	r.categories("Income by category", v.IncomeByCategory)
}

func (r *Renderer) categories(title string, cats []core.CategoryAmount) {
	r.println(r.title.Render(title))
	if len(cats) == 0 {
		r.empty("Nothing recorded.")
		return
	}
	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, []string{c.Name, fmt.Sprint(c.Count), c.Amount.String()})
	}
	r.println(r.table([]string{"Category", "Records", "Amount"}, rows))
}

// Report renders the monthly income, expense and savings series.
func (r *Renderer) Report(v aggregate.View) {
	r.println(r.title.Render("Monthly report"))
	if len(v.Monthly) == 0 {
		r.empty("No dated records.")
	} else {
		rows := make([][]string, 0, len(v.Monthly))
		for _, m := range v.Monthly {
			rows = append(rows, []string{m.Month, m.Income.String(), m.Expenses.String(), r.money(m.Savings)})
		}
		r.println(r.table([]string{"Month", "Income", "Expenses", "Savings"}, rows))
	}
	r.println(fmt.Sprintf("Savings rate: %s", v.SavingsRate))
	if v.UnparsedDates > 0 {
		r.empty(fmt.Sprintf("%d record(s) with an unrecognised date left out.", v.UnparsedDates))
	}
}

var heatCells = []string{"·", "░", "▒", "▓", "█"}

// Calendar renders one month by day with a spend heat column.
func (r *Renderer) Calendar(c aggregate.CalendarMonth) {
	r.println(r.title.Render("Calendar " + c.Month))
	if len(c.Days) == 0 {
		r.empty("Nothing recorded this month.")
		return
	}
	rows := make([][]string, 0, len(c.Days))
	for _, d := range c.Days {
		rows = append(rows, []string{
			d.Date,
			strings.Repeat(heatCells[d.Level], 3),
			d.Income.String(),
			d.Expenses.String(),
			r.money(d.Net),
			fmt.Sprint(d.Count),
		})
	}
	r.println(r.table([]string{"Day", "Heat", "Income", "Expenses", "Net", "Records"}, rows))
	r.println(fmt.Sprintf("Month income %s, expenses %s", c.Income, c.Expenses))
}
