// Package store defines the persistence collaborator port: a per-user
// transaction collection with add/update/delete/replace writes and a
// subscription feed of full-list snapshots.
package store

import (
	"context"
	"errors"
	"time"

	"finbook/internal/core"
)

// ErrNotFound is returned for writes addressing an unknown record id.
var ErrNotFound = errors.New("transaction not found")

// Store is the persistence port. Every implementation assigns record ids on
// Add and delivers the full record set, newest first, on List and on each
// Subscribe snapshot. Writes are independent round-trips with no ordering
// guarantee between in-flight calls; the subscription reconciles the
// authoritative state (last write wins on the whole snapshot).
type Store interface {
	// List returns the current record set ordered by CreatedAt descending.
	List(ctx context.Context) ([]core.Transaction, error)

	// Add stores the record and returns its assigned id.
	Add(ctx context.Context, tx core.Transaction) (string, error)

	// Update applies a partial update to the record with the given id.
	Update(ctx context.Context, id string, p Patch) error

	// Delete removes the record with the given id.
	Delete(ctx context.Context, id string) error

	// Replace swaps the entire record set wholesale (import path).
	// Record ids are reassigned by the store.
	Replace(ctx context.Context, txs []core.Transaction) error

	// Subscribe returns a feed of full-list snapshots. The current
	// snapshot is delivered first; the channel closes when ctx ends.
	Subscribe(ctx context.Context) (<-chan []core.Transaction, error)

	Close() error
}

// Patch is a partial update. Nil fields are left untouched. ClearPaidAt
// resets the paid date to unpaid and wins over PaidAt.
type Patch struct {
	Description      *string
	AmountCents      *int64
	Type             *core.TransactionType
	Category         *string
	Recurring        *bool
	BalanceCents     *int64
	InterestRate     *float64
	DueDay           *int
	PaidAt           *time.Time
	ClearPaidAt      bool
}

// Apply copies the set fields onto the transaction.
func (p Patch) Apply(tx *core.Transaction) {
	if p.Description != nil {
		tx.Description = *p.Description
	}
	if p.AmountCents != nil {
		tx.Amount.Cents = *p.AmountCents
	}
	if p.Type != nil {
		tx.Type = *p.Type
	}
	if p.Category != nil {
		tx.Category = *p.Category
	}
	if p.Recurring != nil {
		tx.Recurring = *p.Recurring
	}
	if p.BalanceCents != nil {
		tx.RemainingBalance.Cents = *p.BalanceCents
	}
	if p.InterestRate != nil {
		tx.InterestRate = *p.InterestRate
	}
	if p.DueDay != nil {
		tx.DueDay = *p.DueDay
	}
	if p.ClearPaidAt {
		tx.PaidAt = nil
	} else if p.PaidAt != nil {
		t := *p.PaidAt
		tx.PaidAt = &t
	}
}
