package store

import (
	"context"
	"sync"

	"finbook/internal/core"
)

// Broadcaster fans full-list snapshots out to subscribers. Slow subscribers
// only ever see the latest snapshot: each channel is buffered one deep and a
// pending stale snapshot is dropped before the fresh one is queued.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan []core.Transaction]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan []core.Transaction]struct{})}
}

// Subscribe registers a new feed, queues the initial snapshot and tears the
// feed down when ctx ends.
func (b *Broadcaster) Subscribe(ctx context.Context, initial []core.Transaction) <-chan []core.Transaction {
	ch := make(chan []core.Transaction, 1)
	ch <- initial

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}()

	return ch
}

// Publish queues the snapshot on every live feed, replacing any undelivered
// previous snapshot.
func (b *Broadcaster) Publish(snapshot []core.Transaction) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snapshot
	}
}
