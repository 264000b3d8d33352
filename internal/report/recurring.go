package report

import (
	"time"

	"finbook/internal/core"
)

// PaidInPeriod reports whether a paid timestamp counts as paid for the month
// of the reference date. A payment recorded in a prior month is treated as
// unpaid in the current month without the field being reset; the calendar
// rollover alone flips the derived state back to unpaid. This is the single
// place holding that cross-month comparison.
func PaidInPeriod(paidAt *time.Time, ref time.Time) bool {
	if paidAt == nil {
		return false
	}
	return paidAt.Year() == ref.Year() && paidAt.Month() == ref.Month()
}

// CategoryRollup aggregates the recurring expenses of one category.
type CategoryRollup struct {
	Category         string             `json:"category"`
	MonthlyAmount    core.Money         `json:"monthlyAmount"`
	RemainingBalance core.Money         `json:"remainingBalance"`
	PaidCount        int                `json:"paidCount"`
	PaidAmount       core.Money         `json:"paidAmount"`
	Items            []core.Transaction `json:"items"`
}

// RecurringRollups groups recurring expense transactions by category (absent
// category falls into "Other"). Rollups come back in the order categories
// were first encountered; no ordering is promised to callers.
func RecurringRollups(txs []core.Transaction, now time.Time) []CategoryRollup {
	index := make(map[string]int)
	var rollups []CategoryRollup
	for _, tx := range txs {
		if !tx.Recurring || tx.Type != core.Expense {
			continue
		}
		cat := tx.GroupCategory()
		i, ok := index[cat]
		if !ok {
			i = len(rollups)
			index[cat] = i
			rollups = append(rollups, CategoryRollup{Category: cat})
		}
		r := &rollups[i]
		r.MonthlyAmount.Cents += tx.Amount.Cents
		r.RemainingBalance.Cents += tx.RemainingBalance.Cents
		if PaidInPeriod(tx.PaidAt, now) {
			r.PaidCount++
			r.PaidAmount.Cents += tx.Amount.Cents
		}
		r.Items = append(r.Items, tx)
	}
	return rollups
}

// TotalMonthlyObligations sums the monthly totals of all rollups.
func TotalMonthlyObligations(rollups []CategoryRollup) core.Money {
	var total core.Money
	for _, r := range rollups {
		total.Cents += r.MonthlyAmount.Cents
	}
	return total
}

// TotalDebtBalance sums remaining balances over all transactions carrying
// one, recurring or not.
func TotalDebtBalance(txs []core.Transaction) core.Money {
	var total core.Money
	for _, tx := range txs {
		if tx.HasDebt() {
			total.Cents += tx.RemainingBalance.Cents
		}
	}
	return total
}

// Progress summarizes how far through the current month's bills the user is.
type Progress struct {
	TotalBills   int        `json:"totalBills"`
	PaidCount    int        `json:"paidCount"`
	UnpaidCount  int        `json:"unpaidCount"`
	PaidAmount   core.Money `json:"paidAmount"`
	UnpaidAmount core.Money `json:"unpaidAmount"`
	Percent      float64    `json:"progressPercent"`
}

// PaymentProgress derives the paid/unpaid split for the month of now.
// totalMonthly is the rollup's TotalMonthlyObligations. Zero bills yields
// zero percent rather than a division fault.
func PaymentProgress(txs []core.Transaction, totalMonthly core.Money, now time.Time) Progress {
	var p Progress
	for _, tx := range txs {
		if !tx.Recurring || tx.Type != core.Expense {
			continue
		}
		p.TotalBills++
		if PaidInPeriod(tx.PaidAt, now) {
			p.PaidCount++
			p.PaidAmount.Cents += tx.Amount.Cents
		}
	}
	p.UnpaidCount = p.TotalBills - p.PaidCount
	p.UnpaidAmount.Cents = totalMonthly.Cents - p.PaidAmount.Cents
	if p.TotalBills > 0 {
		p.Percent = 100 * float64(p.PaidCount) / float64(p.TotalBills)
	}
	return p
}
