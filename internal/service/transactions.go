// Package service orchestrates transaction writes against the persistence
// collaborator and owns the in-memory working list the aggregation engine
// reads from.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"finbook/internal/amqp"
	"finbook/internal/core"
	"finbook/internal/report"
	"finbook/internal/store"
)

// EventPublisher is the change-event bus. Publishing is best effort: a
// failed publish never fails the write that triggered it.
type EventPublisher interface {
	PublishChange(ctx context.Context, op, id string) error
}

type Service struct {
	store  store.Store
	events EventPublisher
	now    func() time.Time

	mu  sync.RWMutex
	txs []core.Transaction
}

// New wires the service to its store. events may be nil when no worker is
// deployed.
func New(st store.Store, events EventPublisher) *Service {
	return &Service{
		store: st,
		events: events,
		now:    time.Now,
	}
}

// Start consumes the store's snapshot feed until ctx ends. The feed replaces
// the whole working list on every delivery: ordering between concurrent
// writers is last write wins on the full snapshot.
func (s *Service) Start(ctx context.Context) error {
	feed, err := s.store.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to store: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snapshot, ok := <-feed:
			if !ok {
				return nil
			}
			s.mu.Lock()
			s.txs = snapshot
			s.mu.Unlock()
		}
	}
}

// Transactions returns a copy of the current working list.
func (s *Service) Transactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Transaction, len(s.txs))
	copy(out, s.txs)
	return out
}

// Create validates and stores a new transaction, returning its assigned id.
func (s *Service) Create(ctx context.Context, tx core.Transaction) (string, error) {
	tx.Description = strings.TrimSpace(tx.Description)
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = s.now()
	}
	if err := tx.Validate(); err != nil {
		return "", err
	}

	id, err := s.store.Add(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("add transaction: %w", err)
	}
	s.publish(ctx, amqp.OpCreate, id)
	s.reload(ctx)
	return id, nil
}

// Update applies a partial update after validating the resulting record.
func (s *Service) Update(ctx context.Context, id string, p store.Patch) error {
	tx, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if p.Description != nil {
		trimmed := strings.TrimSpace(*p.Description)
		p.Description = &trimmed
	}
	p.Apply(&tx)
	if err := tx.Validate(); err != nil {
		return err
	}

	if err := s.store.Update(ctx, id, p); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	s.publish(ctx, amqp.OpUpdate, id)
	s.reload(ctx)
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.publish(ctx, amqp.OpDelete, id)
	s.reload(ctx)
	return nil
}

// TogglePaid flips the paid state of a recurring obligation for the current
// month: unpaid records get PaidAt = now, records already paid this month
// get it cleared. A payment from a prior month counts as unpaid, so the
// toggle marks it paid again rather than clearing the stale date.
func (s *Service) TogglePaid(ctx context.Context, id string) error {
	tx, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	now := s.now()
	var p store.Patch
	if report.PaidInPeriod(tx.PaidAt, now) {
		p.ClearPaidAt = true
	} else {
		p.PaidAt = &now
	}
	if err := s.store.Update(ctx, id, p); err != nil {
		return fmt.Errorf("toggle paid: %w", err)
	}
	s.publish(ctx, amqp.OpUpdate, id)
	s.reload(ctx)
	return nil
}

// ResetMonth marks every recurring expense unpaid. Destructive and not
// undoable; the caller gathers user confirmation before invoking it.
// Failures are record-at-a-time: a failed record is reported but does not
// stop the rest.
func (s *Service) ResetMonth(ctx context.Context) (int, error) {
	var (
		reset int
		errs  []error
	)
	for _, tx := range s.Transactions() {
		if !tx.Recurring || tx.Type != core.Expense || tx.PaidAt == nil {
			continue
		}
		if err := s.store.Update(ctx, tx.ID, store.Patch{ClearPaidAt: true}); err != nil {
			errs = append(errs, fmt.Errorf("reset %s: %w", tx.ID, err))
			continue
		}
		s.publish(ctx, amqp.OpUpdate, tx.ID)
		reset++
	}
	s.reload(ctx)
	return reset, errors.Join(errs...)
}

// ReallocateDebt sets the aggregate remaining debt to the user-entered
// figure, distributing the delta proportionally across every record with an
// open balance. Updates are independent per record and are not rolled back
// on partial failure; the subscription feed reconciles whatever state the
// store ends up in.
func (s *Service) ReallocateDebt(ctx context.Context, figure string) ([]report.BalanceChange, error) {
	cents, err := core.ParseDecimalToCents(figure)
	if err != nil {
		return nil, core.ErrInvalidAmount
	}

	plan, err := report.ReallocationPlan(s.Transactions(), core.Money{Cents: cents})
	if err != nil {
		return nil, err
	}

	var errs []error
	for _, change := range plan {
		balance := change.New.Cents
		if err := s.store.Update(ctx, change.ID, store.Patch{BalanceCents: &balance}); err != nil {
			errs = append(errs, fmt.Errorf("reallocate %s: %w", change.ID, err))
			continue
		}
		s.publish(ctx, amqp.OpUpdate, change.ID)
	}
	s.reload(ctx)
	return plan, errors.Join(errs...)
}

func (s *Service) find(ctx context.Context, id string) (core.Transaction, error) {
	for _, tx := range s.Transactions() {
		if tx.ID == id {
			return tx, nil
		}
	}
	// The working list may lag the store; fall back to an authoritative
	// read before giving up.
	txs, err := s.store.List(ctx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("list transactions: %w", err)
	}
	for _, tx := range txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, store.ErrNotFound
}

// reload refreshes the working list straight after a write so local-mode
// reads see the change immediately, without waiting on the feed.
func (s *Service) reload(ctx context.Context) {
	txs, err := s.store.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to reload transactions", "error", err)
		return
	}
	s.mu.Lock()
	s.txs = txs
	s.mu.Unlock()
}

func (s *Service) publish(ctx context.Context, op, id string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishChange(ctx, op, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change event",
			"op", op, "id", id, "error", err)
	}
}
