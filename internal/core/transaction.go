package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// MaxDescriptionLength bounds the display label accepted at the input boundary.
const MaxDescriptionLength = 200

type (
	TransactionType string

	// Transaction is the single domain entity: one income or expense record.
	// Amount is always positive; the direction is carried by Type.
	Transaction struct {
		ID          string          `json:"id"`
		Description string          `json:"description"`
		Amount      Money           `json:"amount"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category,omitempty"`

		// Recurring marks a standing monthly obligation rather than a
		// one-off event.
		Recurring bool `json:"isRecurring"`

		// RemainingBalance is the outstanding principal of a debt-like
		// obligation. Zero means no debt is tracked on this record.
		RemainingBalance Money `json:"remainingBalance"`

		// InterestRate is the annual rate in percent, used only for the
		// avalanche payoff ordering. Zero means unknown.
		InterestRate float64 `json:"interestRate,omitempty"`

		// DueDay is the day of month (1-31) the obligation is due, or 0
		// when unset. No month-length validation: day 31 in a 30-day
		// month simply never matches a calendar cell.
		DueDay int `json:"dueDate,omitempty"`

		// PaidAt is set when a recurring obligation is marked paid and
		// nil when unpaid. Whether it counts as paid is a question of
		// which month it falls in, see report.PaidInPeriod.
		PaidAt *time.Time `json:"paidDate,omitempty"`

		CreatedAt time.Time `json:"createdAt"`
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidDueDay      = errors.New("due day must be between 1 and 31")
	ErrNegativeBalance    = errors.New("remaining balance cannot be negative")
	ErrNegativeRate       = errors.New("interest rate cannot be negative")
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (tx Transaction) Validate() error {
	if !tx.Type.Valid() {
		return ErrInvalidType
	}
	if len(strings.TrimSpace(tx.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(tx.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if tx.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if tx.RemainingBalance.Cents < 0 {
		return ErrNegativeBalance
	}
	if tx.InterestRate < 0 {
		return ErrNegativeRate
	}
	if tx.DueDay != 0 && (tx.DueDay < 1 || tx.DueDay > 31) {
		return ErrInvalidDueDay
	}
	return nil
}

// HasDebt reports whether the record carries an open remaining balance.
func (tx Transaction) HasDebt() bool {
	return tx.RemainingBalance.Cents > 0
}

// GroupCategory returns the category used for obligation rollups,
// defaulting an absent category to the literal "Other" bucket.
func (tx Transaction) GroupCategory() string {
	if strings.TrimSpace(tx.Category) == "" {
		return "Other"
	}
	return tx.Category
}
