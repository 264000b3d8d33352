// Package worker mirrors the local transaction list to the remote document
// store, driven by change events.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finbook/internal/amqp"
	"finbook/internal/store"
)

// MirrorWorker consumes change events and rewrites the remote store with
// the current local record set. Events only signal that something changed;
// the local store stays the source of truth, so the mirror is a full
// snapshot replace rather than a per-record replay. Bursts of events are
// collapsed with a debounce window.
type MirrorWorker struct {
	local    store.Store
	remote   store.Store
	client   *amqp.Client
	debounce time.Duration
}

func NewMirrorWorker(local, remote store.Store, client *amqp.Client, debounce time.Duration) *MirrorWorker {
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	return &MirrorWorker{
		local:    local,
		remote:   remote,
		client:   client,
		debounce: debounce,
	}
}

// Run mirrors once at startup to recover from events missed while the
// worker was down, then consumes the event stream until ctx ends.
func (w *MirrorWorker) Run(ctx context.Context) error {
	if err := w.mirror(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup mirror failed", "error", err)
	}

	dirty := make(chan struct{}, 1)
	go w.flushLoop(ctx, dirty)

	return w.client.ConsumeChanges(ctx, func(msg *amqp.ChangeMessage) error {
		slog.InfoContext(ctx, "Change event received",
			"op", msg.Op,
			"id", msg.ID,
			"message_id", msg.MessageID)
		select {
		case dirty <- struct{}{}:
		default:
		}
		return nil
	})
}

// flushLoop waits out the debounce window after each dirty signal before
// mirroring, so a burst of writes becomes one remote replace.
func (w *MirrorWorker) flushLoop(ctx context.Context, dirty <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-dirty:
		}

		timer := time.NewTimer(w.debounce)
	drain:
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-dirty:
				// More changes arrived; restart the window.
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(w.debounce)
			case <-timer.C:
				break drain
			}
		}

		if err := w.mirror(ctx); err != nil {
			slog.ErrorContext(ctx, "Mirror failed", "error", err)
		}
	}
}

// mirror replaces the remote record set with the local one.
func (w *MirrorWorker) mirror(ctx context.Context) error {
	txs, err := w.local.List(ctx)
	if err != nil {
		return fmt.Errorf("list local transactions: %w", err)
	}
	if err := w.remote.Replace(ctx, txs); err != nil {
		return fmt.Errorf("replace remote transactions: %w", err)
	}
	slog.InfoContext(ctx, "Mirrored transactions to remote store", "count", len(txs))
	return nil
}
