package aggregate

import (
	"encoding/json"
	"strconv"

	"fintrack/internal/core"
)

// Status band thresholds, in percent of the budget limit.
const (
	WarningThreshold = 75.0
	OverThreshold    = 90.0
)

const (
	StatusOnTrack Status = "on_track"
	StatusWarning Status = "warning"
	StatusOver    Status = "over"
)

type Status string

func (s Status) Label() string {
	switch s {
	case StatusOver:
		return "Over budget"
	case StatusWarning:
		return "Warning"
	default:
		return "On track"
	}
}

// Ratio is a percentage that is explicitly undefined when its denominator is zero.
// The zero value is undefined.
type Ratio struct {
	percent float64
	defined bool
}

// NewRatio returns num/den*100.
func NewRatio(num, den core.Money) Ratio {
	if den.Cents == 0 {
		return Ratio{}
	}
	return Ratio{percent: float64(num.Cents) / float64(den.Cents) * 100, defined: true}
}

func (r Ratio) Defined() bool { return r.defined }

// Percent returns the value and whether it is defined.
func (r Ratio) Percent() (float64, bool) {
	return r.percent, r.defined
}

func (r Ratio) String() string {
	if !r.defined {
		return "n/a"
	}
	return strconv.FormatFloat(r.percent, 'f', 1, 64) + "%"
}

// MarshalJSON writes the percentage as a number, or null when undefined.
func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.defined {
		return []byte("null"), nil
	}
	return json.Marshal(r.percent)
}

// Band maps a spend ratio to its status. An undefined ratio (zero limit) is over
// as soon as anything was spent.
func Band(r Ratio, spent core.Money) Status {
	p, ok := r.Percent()
	switch {
	case !ok && spent.Cents > 0:
		return StatusOver
	case !ok:
		return StatusOnTrack
	case p >= OverThreshold:
		return StatusOver
	case p >= WarningThreshold:
		return StatusWarning
	default:
		return StatusOnTrack
	}
}

// BudgetStatus is a budget joined with the spend recorded under its category.
type BudgetStatus struct {
	ID         string     `json:"id"`
	Category   string     `json:"category"`
	Limit      core.Money `json:"limit"`
	Spent      core.Money `json:"spent"`
	Remaining  core.Money `json:"remaining"`
	Percentage Ratio      `json:"percentage"`
	Status     Status     `json:"status"`
}

// Reconcile joins budgets to expenses on exact category equality. Remaining is
// not clamped and goes negative when a budget is exceeded.
func Reconcile(budgets []core.Budget, expenses []core.Transaction) []BudgetStatus {
	sums := CategorySums(expenses)
	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		spent := sums[b.Category]
		ratio := NewRatio(spent, b.Limit)
		out = append(out, BudgetStatus{
			ID:         b.ID,
			Category:   b.Category,
			Limit:      b.Limit,
			Spent:      spent,
			Remaining:  b.Limit.Sub(spent),
			Percentage: ratio,
			Status:     Band(ratio, spent),
		})
	}
	return out
}
