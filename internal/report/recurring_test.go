package report

import (
	"testing"
	"time"

	"finbook/internal/core"
)

var now = time.Date(2026, time.August, 20, 10, 0, 0, 0, time.UTC)

func bill(desc, category string, cents int64, paidAt *time.Time) core.Transaction {
	return core.Transaction{
		Description: desc,
		Category:    category,
		Type:        core.Expense,
		Amount:      core.Money{Cents: cents},
		Recurring:   true,
		PaidAt:      paidAt,
		CreatedAt:   now.AddDate(0, -1, 0),
	}
}

func ts(t time.Time) *time.Time { return &t }

func TestPaidInPeriod(t *testing.T) {
	cases := []struct {
		name   string
		paidAt *time.Time
		want   bool
	}{
		{"nil", nil, false},
		{"this month", ts(time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)), true},
		{"last month", ts(time.Date(2026, time.July, 31, 23, 0, 0, 0, time.UTC)), false},
		{"same month last year", ts(time.Date(2025, time.August, 20, 0, 0, 0, 0, time.UTC)), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PaidInPeriod(tc.paidAt, now); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestRecurringRollups(t *testing.T) {
	txs := []core.Transaction{
		bill("Rent", "Housing", 120000, ts(now)),
		bill("Electricity", "Utilities", 8000, nil),
		bill("Water", "Utilities", 3000, ts(now.AddDate(0, -1, 0))), // stale payment
		bill("Netflix", "", 1500, nil),
		tx("Groceries", core.Expense, 5000), // not recurring, excluded
		tx("Salary", core.Income, 500000),
	}
	rollups := RecurringRollups(txs, now)
	if len(rollups) != 3 {
		t.Fatalf("expected 3 rollups, got %d", len(rollups))
	}

	byCat := make(map[string]CategoryRollup)
	for _, r := range rollups {
		byCat[r.Category] = r
	}

	housing := byCat["Housing"]
	if housing.MonthlyAmount.Cents != 120000 || housing.PaidCount != 1 || housing.PaidAmount.Cents != 120000 {
		t.Fatalf("housing rollup: %+v", housing)
	}

	utilities := byCat["Utilities"]
	if utilities.MonthlyAmount.Cents != 11000 {
		t.Fatalf("utilities monthly: expected 11000, got %d", utilities.MonthlyAmount.Cents)
	}
	// Water was paid last month, which counts as unpaid now.
	if utilities.PaidCount != 0 {
		t.Fatalf("utilities paid count: expected 0, got %d", utilities.PaidCount)
	}
	if len(utilities.Items) != 2 {
		t.Fatalf("utilities items: expected 2, got %d", len(utilities.Items))
	}

	// Absent category lands in Other.
	other := byCat["Other"]
	if other.MonthlyAmount.Cents != 1500 {
		t.Fatalf("other rollup: %+v", other)
	}

	if total := TotalMonthlyObligations(rollups); total.Cents != 132500 {
		t.Fatalf("total monthly: expected 132500, got %d", total.Cents)
	}
}

func TestTotalDebtBalance(t *testing.T) {
	loan := bill("Car loan", "Debt", 30000, nil)
	loan.RemainingBalance = core.Money{Cents: 500000}
	oneOff := tx("Medical bill", core.Expense, 10000)
	oneOff.RemainingBalance = core.Money{Cents: 20000}

	txs := []core.Transaction{loan, oneOff, bill("Rent", "Housing", 120000, nil)}
	if got := TotalDebtBalance(txs); got.Cents != 520000 {
		t.Fatalf("expected 520000, got %d", got.Cents)
	}
}

func TestPaymentProgress(t *testing.T) {
	txs := []core.Transaction{
		bill("Rent", "Housing", 120000, ts(now)),
		bill("Electricity", "Utilities", 8000, nil),
		bill("Internet", "Utilities", 4000, ts(now)),
		bill("Water", "Utilities", 3000, ts(now.AddDate(0, -1, 0))),
	}
	rollups := RecurringRollups(txs, now)
	p := PaymentProgress(txs, TotalMonthlyObligations(rollups), now)

	if p.TotalBills != 4 {
		t.Fatalf("total bills: expected 4, got %d", p.TotalBills)
	}
	if p.PaidCount != 2 || p.UnpaidCount != 2 {
		t.Fatalf("counts: %+v", p)
	}
	if p.PaidAmount.Cents != 124000 {
		t.Fatalf("paid amount: expected 124000, got %d", p.PaidAmount.Cents)
	}
	if p.UnpaidAmount.Cents != 11000 {
		t.Fatalf("unpaid amount: expected 11000, got %d", p.UnpaidAmount.Cents)
	}
	if p.Percent != 50 {
		t.Fatalf("percent: expected 50, got %v", p.Percent)
	}
}

func TestPaymentProgressNoBills(t *testing.T) {
	p := PaymentProgress(nil, core.Money{}, now)
	if p.TotalBills != 0 || p.Percent != 0 {
		t.Fatalf("expected zero progress, got %+v", p)
	}
}

func TestPaymentProgressAllPaid(t *testing.T) {
	txs := []core.Transaction{
		bill("Rent", "Housing", 120000, ts(now)),
		bill("Internet", "Utilities", 4000, ts(now)),
	}
	rollups := RecurringRollups(txs, now)
	p := PaymentProgress(txs, TotalMonthlyObligations(rollups), now)
	if p.Percent != 100 || p.UnpaidCount != 0 || p.UnpaidAmount.Cents != 0 {
		t.Fatalf("expected 100%% paid, got %+v", p)
	}
}
