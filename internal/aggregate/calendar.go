package aggregate

import (
	"sort"
	"strings"
	"time"

	"fintrack/internal/core"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// DayKey extracts YYYY-MM-DD from a stored date string. Values with a time part
// ("2024-05-03T10:00:00Z") use their date prefix.
func DayKey(date string) (string, bool) {
	date = strings.TrimSpace(date)
	if len(date) < len(dayLayout) {
		return "", false
	}
	key := date[:len(dayLayout)]
	if _, err := time.Parse(dayLayout, key); err != nil {
		return "", false
	}
	return key, true
}

// MonthKey extracts YYYY-MM from a stored date string.
func MonthKey(date string) (string, bool) {
	if day, ok := DayKey(date); ok {
		return day[:len(monthLayout)], true
	}
	date = strings.TrimSpace(date)
	if len(date) != len(monthLayout) {
		return "", false
	}
	if _, err := time.Parse(monthLayout, date); err != nil {
		return "", false
	}
	return date, true
}

type bucket struct {
	amount core.Money
	count  int
}

// bucketBy sums txs under key(date). Records without a key are counted and skipped.
func bucketBy(txs []core.Transaction, key func(string) (string, bool)) (map[string]bucket, int) {
	out := make(map[string]bucket)
	unparsed := 0
	for _, t := range txs {
		k, ok := key(t.Date)
		if !ok {
			unparsed++
			continue
		}
		b := out[k]
		b.amount = b.amount.Add(t.Amount)
		b.count++
		out[k] = b
	}
	return out, unparsed
}

func sortedKeys(maps ...map[string]bucket) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, m := range maps {
		for k := range m {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

type MonthSummary struct {
	Month    string     `json:"month"`
	Income   core.Money `json:"income"`
	Expenses core.Money `json:"expenses"`
	Savings  core.Money `json:"savings"`
}

// Monthly buckets both series by month independently and merges them on the
// month key. The second result counts records whose date yields no month.
func Monthly(incomes, expenses []core.Transaction) ([]MonthSummary, int) {
	in, badIn := bucketBy(incomes, MonthKey)
	out, badOut := bucketBy(expenses, MonthKey)
	keys := sortedKeys(in, out)
	rows := make([]MonthSummary, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, MonthSummary{
			Month:    k,
			Income:   in[k].amount,
			Expenses: out[k].amount,
			Savings:  in[k].amount.Sub(out[k].amount),
		})
	}
	return rows, badIn + badOut
}

// HeatLevels is the number of non-empty heatmap intensity levels.
const HeatLevels = 4

type DaySummary struct {
	Date     string     `json:"date"`
	Income   core.Money `json:"income"`
	Expenses core.Money `json:"expenses"`
	Net      core.Money `json:"net"`
	Count    int        `json:"count"`
	// Level is 0 for no spend, otherwise 1..HeatLevels relative to the busiest day.
	Level int `json:"level"`
}

type CalendarMonth struct {
	Month    string       `json:"month"`
	Income   core.Money   `json:"income"`
	Expenses core.Money   `json:"expenses"`
	Days     []DaySummary `json:"days"`
}

// Calendar aggregates one month by day. Incomes and expenses are keyed by their
// own dates and merged by day, so the two lists need not be aligned or sorted.
func Calendar(incomes, expenses []core.Transaction, month string) CalendarMonth {
	inMonth := func(date string) (string, bool) {
		day, ok := DayKey(date)
		if !ok || day[:len(monthLayout)] != month {
			return "", false
		}
		return day, true
	}
	in, _ := bucketBy(incomes, inMonth)
	out, _ := bucketBy(expenses, inMonth)

	var peak int64
	for _, b := range out {
		if b.amount.Cents > peak {
			peak = b.amount.Cents
		}
	}

	cal := CalendarMonth{Month: month}
	for _, k := range sortedKeys(in, out) {
		d := DaySummary{
			Date:     k,
			Income:   in[k].amount,
			Expenses: out[k].amount,
			Net:      in[k].amount.Sub(out[k].amount),
			Count:    in[k].count + out[k].count,
			Level:    heatLevel(out[k].amount.Cents, peak),
		}
		cal.Income = cal.Income.Add(d.Income)
		cal.Expenses = cal.Expenses.Add(d.Expenses)
		cal.Days = append(cal.Days, d)
	}
	return cal
}

func heatLevel(spent, peak int64) int {
	if spent <= 0 || peak <= 0 {
		return 0
	}
	// ceil(spent*HeatLevels/peak) without floats
	return int((spent*HeatLevels + peak - 1) / peak)
}
