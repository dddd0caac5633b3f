// Package present prepares fetched records for display: search, filter,
// sort, terminal rendering and CSV export. It never changes the data it is
// given.
package present

import (
	"fmt"
	"slices"
	"strings"

	"fintrack/internal/core"
)

type SortField string

const (
	SortNone        SortField = ""
	SortDescription SortField = "description"
	SortCategory    SortField = "category"
	SortAmount      SortField = "amount"
	SortDate        SortField = "date"
)

func ParseSortField(s string) (SortField, error) {
	f := SortField(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case SortNone, SortDescription, SortCategory, SortAmount, SortDate:
		return f, nil
	default:
		return SortNone, fmt.Errorf("unknown sort column %q: use description, category, amount or date", s)
	}
}

// Query selects and orders transactions for a list view.
type Query struct {
	// Search matches description or category, case-insensitively.
	Search   string
	Category string
	Sort     SortField
	Desc     bool
}

// Apply returns a new slice; txs is not modified. Without a sort field the
// store order is kept.
func (q Query) Apply(txs []core.Transaction) []core.Transaction {
	out := FilterCategory(Search(txs, q.Search), q.Category)
	if q.Sort != SortNone {
		SortTransactions(out, q.Sort, q.Desc)
	}
	return out
}

func Search(txs []core.Transaction, query string) []core.Transaction {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if q == "" ||
			strings.Contains(strings.ToLower(tx.Description), q) ||
			strings.Contains(strings.ToLower(tx.Category), q) {
			out = append(out, tx)
		}
	}
	return out
}

// FilterCategory keeps exact category matches; an empty category keeps all.
func FilterCategory(txs []core.Transaction, category string) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if category == "" || tx.Category == category {
			out = append(out, tx)
		}
	}
	return out
}

// Categories lists distinct categories in first-appearance order.
func Categories(txs []core.Transaction) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tx := range txs {
		if !seen[tx.Category] {
			seen[tx.Category] = true
			out = append(out, tx.Category)
		}
	}
	return out
}

// SortTransactions sorts in place, stable so equal keys keep store order.
func SortTransactions(txs []core.Transaction, field SortField, desc bool) {
	cmp := func(a, b core.Transaction) int {
		switch field {
		case SortDescription:
			return strings.Compare(strings.ToLower(a.Description), strings.ToLower(b.Description))
		case SortCategory:
			return strings.Compare(strings.ToLower(a.Category), strings.ToLower(b.Category))
		case SortAmount:
			switch {
			case a.Amount.Cents < b.Amount.Cents:
				return -1
			case a.Amount.Cents > b.Amount.Cents:
				return 1
			}
			return 0
		case SortDate:
			return strings.Compare(NormalizeDate(a.Date), NormalizeDate(b.Date))
		default:
			return 0
		}
	}
	slices.SortStableFunc(txs, func(a, b core.Transaction) int {
		if desc {
			return cmp(b, a)
		}
		return cmp(a, b)
	})
}

// NormalizeDate trims a time part, so "2024-05-03T00:00:00Z" becomes
// "2024-05-03". Other strings are returned trimmed of spaces.
func NormalizeDate(date string) string {
	date = strings.TrimSpace(date)
	if i := strings.IndexByte(date, 'T'); i > 0 {
		return date[:i]
	}
	return date
}
