package core

import (
	"strings"
	"testing"
	"time"
)

func validTx() Transaction {
	return Transaction{
		Description: "Rent",
		Amount:      Money{Cents: 120000},
		Type:        Expense,
		CreatedAt:   time.Now(),
	}
}

func TestTransactionValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Transaction)
		ok     bool
	}{
		{"valid expense", func(tx *Transaction) {}, true},
		{"valid income", func(tx *Transaction) { tx.Type = Income }, true},
		{"empty description", func(tx *Transaction) { tx.Description = "" }, false},
		{"blank description", func(tx *Transaction) { tx.Description = "   " }, false},
		{"description at limit", func(tx *Transaction) { tx.Description = strings.Repeat("a", 200) }, true},
		{"description too long", func(tx *Transaction) { tx.Description = strings.Repeat("a", 201) }, false},
		{"zero amount", func(tx *Transaction) { tx.Amount.Cents = 0 }, false},
		{"negative amount", func(tx *Transaction) { tx.Amount.Cents = -100 }, false},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, false},
		{"negative balance", func(tx *Transaction) { tx.RemainingBalance.Cents = -1 }, false},
		{"negative rate", func(tx *Transaction) { tx.InterestRate = -0.5 }, false},
		{"due day unset", func(tx *Transaction) { tx.DueDay = 0 }, true},
		{"due day 1", func(tx *Transaction) { tx.DueDay = 1 }, true},
		{"due day 31", func(tx *Transaction) { tx.DueDay = 31 }, true},
		{"due day 32", func(tx *Transaction) { tx.DueDay = 32 }, false},
		{"due day negative", func(tx *Transaction) { tx.DueDay = -1 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := validTx()
			tc.mutate(&tx)
			err := tx.Validate()
			if tc.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestHasDebt(t *testing.T) {
	tx := validTx()
	if tx.HasDebt() {
		t.Fatal("zero balance should not count as debt")
	}
	tx.RemainingBalance.Cents = 1
	if !tx.HasDebt() {
		t.Fatal("positive balance should count as debt")
	}
}

func TestGroupCategory(t *testing.T) {
	tx := validTx()
	if got := tx.GroupCategory(); got != "Other" {
		t.Fatalf("expected Other for empty category, got %q", got)
	}
	tx.Category = "  "
	if got := tx.GroupCategory(); got != "Other" {
		t.Fatalf("expected Other for blank category, got %q", got)
	}
	tx.Category = "Housing"
	if got := tx.GroupCategory(); got != "Housing" {
		t.Fatalf("expected Housing, got %q", got)
	}
}
