package report

import (
	"errors"
	"math"
	"sort"

	"finbook/internal/core"
)

// ErrNoDebtTransactions is returned when a reallocation is requested but no
// transaction carries an open remaining balance.
var ErrNoDebtTransactions = errors.New("no debt transactions found")

// BalanceChange is one planned per-record update of a reallocation.
type BalanceChange struct {
	ID  string     `json:"id"`
	Old core.Money `json:"old"`
	New core.Money `json:"new"`
}

// ReallocationPlan distributes the difference between newTotal and the
// current total debt across every transaction with an open balance, in
// proportion to each record's share of the total and clamped at zero:
//
//	new = max(0, old + delta * old/current)
//
// The plan only describes the updates; applying them is the caller's
// concern, one record at a time. newTotal must be non-negative.
func ReallocationPlan(txs []core.Transaction, newTotal core.Money) ([]BalanceChange, error) {
	if newTotal.Cents < 0 {
		return nil, core.ErrInvalidAmount
	}

	var current int64
	for _, tx := range txs {
		if tx.HasDebt() {
			current += tx.RemainingBalance.Cents
		}
	}
	if current == 0 {
		return nil, ErrNoDebtTransactions
	}

	delta := float64(newTotal.Cents - current)
	var changes []BalanceChange
	for _, tx := range txs {
		if !tx.HasDebt() {
			continue
		}
		old := tx.RemainingBalance.Cents
		share := delta * float64(old) / float64(current)
		next := old + int64(math.Round(share))
		if next < 0 {
			next = 0
		}
		changes = append(changes, BalanceChange{
			ID:  tx.ID,
			Old: core.Money{Cents: old},
			New: core.Money{Cents: next},
		})
	}
	return changes, nil
}

// AvalancheOrder returns the transactions with open balances ordered for
// payoff priority: highest interest rate first, ties keeping list order.
// Purely a display ordering.
func AvalancheOrder(txs []core.Transaction) []core.Transaction {
	var debts []core.Transaction
	for _, tx := range txs {
		if tx.HasDebt() {
			debts = append(debts, tx)
		}
	}
	sort.SliceStable(debts, func(i, j int) bool {
		return debts[i].InterestRate > debts[j].InterestRate
	})
	return debts
}
