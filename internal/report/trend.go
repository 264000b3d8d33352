package report

import (
	"fmt"
	"sort"

	"finbook/internal/core"
)

// TrendMonths is the default trend window length.
const TrendMonths = 6

// MonthPoint is one bucket of the monthly trend series.
type MonthPoint struct {
	Month   string     `json:"month"` // "YYYY-MM"
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
}

// MonthlyTrend buckets income and expense sums by the calendar year+month of
// CreatedAt and returns the most recent window buckets in chronological
// order. Months without any transaction are absent, not zero-filled; the
// lexicographic order of the zero-padded "YYYY-MM" key is the chronological
// order. window <= 0 falls back to TrendMonths.
func MonthlyTrend(txs []core.Transaction, window int) []MonthPoint {
	if window <= 0 {
		window = TrendMonths
	}

	type sums struct{ income, expense int64 }
	byMonth := make(map[string]*sums)
	for _, tx := range txs {
		key := fmt.Sprintf("%04d-%02d", tx.CreatedAt.Year(), int(tx.CreatedAt.Month()))
		s := byMonth[key]
		if s == nil {
			s = &sums{}
			byMonth[key] = s
		}
		switch tx.Type {
		case core.Income:
			s.income += tx.Amount.Cents
		case core.Expense:
			s.expense += tx.Amount.Cents
		}
	}

	keys := make([]string, 0, len(byMonth))
	for k := range byMonth {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > window {
		keys = keys[len(keys)-window:]
	}

	points := make([]MonthPoint, 0, len(keys))
	for _, k := range keys {
		s := byMonth[k]
		points = append(points, MonthPoint{
			Month:   k,
			Income:  core.Money{Cents: s.income},
			Expense: core.Money{Cents: s.expense},
		})
	}
	return points
}
