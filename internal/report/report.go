// Package report is the transaction aggregation engine: every function is a
// pure derivation over the current in-memory transaction list and is
// recomputed whenever that list changes. The engine never mutates the list;
// the only failure modes are rejected inputs on the reallocation planner.
package report

import (
	"sort"

	"finbook/internal/core"
)

// DefaultTopGroups is the breakdown cap K observed across the dashboards.
const DefaultTopGroups = 6

// OtherBucket names the synthetic remainder group appended by Breakdown.
const OtherBucket = "Other"

// Totals are the basic scalar aggregates over the whole list.
type Totals struct {
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
	Balance core.Money `json:"balance"`
}

// ComputeTotals sums income and expense amounts; Balance = Income - Expense.
// An empty list yields all zeros.
func ComputeTotals(txs []core.Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			t.Income.Cents += tx.Amount.Cents
		case core.Expense:
			t.Expense.Cents += tx.Amount.Cents
		}
	}
	t.Balance.Cents = t.Income.Cents - t.Expense.Cents
	return t
}

// Bucket is one entry of a categorical breakdown.
type Bucket struct {
	Name   string     `json:"name"`
	Amount core.Money `json:"value"`
}

// Breakdown groups transactions of the given type by description, sums each
// group and returns the groups sorted descending by amount. Ties keep
// discovery order (the sort is stable). When more than topK groups exist the
// tail is collapsed into a trailing "Other" bucket, appended only if its sum
// is positive. topK <= 0 falls back to DefaultTopGroups.
//
// Grouping here is by description, not category; obligation rollups use the
// category lens instead. Both groupings are product-visible and deliberate.
func Breakdown(txs []core.Transaction, t core.TransactionType, topK int) []Bucket {
	if topK <= 0 {
		topK = DefaultTopGroups
	}

	sums := make(map[string]int64)
	var order []string
	for _, tx := range txs {
		if tx.Type != t {
			continue
		}
		if _, seen := sums[tx.Description]; !seen {
			order = append(order, tx.Description)
		}
		sums[tx.Description] += tx.Amount.Cents
	}

	buckets := make([]Bucket, 0, len(order))
	for _, name := range order {
		buckets = append(buckets, Bucket{Name: name, Amount: core.Money{Cents: sums[name]}})
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Amount.Cents > buckets[j].Amount.Cents
	})

	if len(buckets) <= topK {
		return buckets
	}

	var rest int64
	for _, b := range buckets[topK:] {
		rest += b.Amount.Cents
	}
	buckets = buckets[:topK:topK]
	if rest > 0 {
		buckets = append(buckets, Bucket{Name: OtherBucket, Amount: core.Money{Cents: rest}})
	}
	return buckets
}
