// Package localfile is the offline fallback store: the whole transaction
// list lives in one JSON blob on disk, read at startup and rewritten after
// every mutation. Writes are synchronous; ids are monotonic unix-milli
// integers rendered as strings.
package localfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"finbook/internal/core"
	"finbook/internal/store"
)

type Store struct {
	mu     sync.Mutex
	path   string
	txs    []core.Transaction
	lastID int64
	feed   *store.Broadcaster
	now    func() time.Time
}

func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	s := &Store{
		path: path,
		feed: store.NewBroadcaster(),
		now:  time.Now,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read store file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &s.txs); err != nil {
		return fmt.Errorf("decode store file: %w", err)
	}
	for _, tx := range s.txs {
		if id, err := strconv.ParseInt(tx.ID, 10, 64); err == nil && id > s.lastID {
			s.lastID = id
		}
	}
	return nil
}

// save rewrites the whole blob. Caller holds the lock.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.txs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

// nextID returns a monotonic unix-milli id, bumped past the clock when two
// writes land in the same millisecond.
func (s *Store) nextID() string {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

func (s *Store) List(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(), nil
}

func (s *Store) Add(ctx context.Context, tx core.Transaction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx.ID = s.nextID()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = s.now()
	}
	s.txs = append(s.txs, tx)
	if err := s.save(); err != nil {
		s.txs = s.txs[:len(s.txs)-1]
		return "", err
	}
	slog.InfoContext(ctx, "Transaction saved to local store",
		"id", tx.ID,
		"description", tx.Description,
		"amount_cents", tx.Amount.Cents,
		"type", tx.Type)
	s.feed.Publish(s.snapshot())
	return tx.ID, nil
}

func (s *Store) Update(ctx context.Context, id string, p store.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.txs {
		if s.txs[i].ID != id {
			continue
		}
		prev := s.txs[i]
		p.Apply(&s.txs[i])
		if err := s.save(); err != nil {
			s.txs[i] = prev
			return err
		}
		s.feed.Publish(s.snapshot())
		return nil
	}
	return store.ErrNotFound
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.txs {
		if s.txs[i].ID != id {
			continue
		}
		removed := s.txs[i]
		s.txs = append(s.txs[:i], s.txs[i+1:]...)
		if err := s.save(); err != nil {
			s.txs = append(s.txs[:i], append([]core.Transaction{removed}, s.txs[i:]...)...)
			return err
		}
		slog.InfoContext(ctx, "Transaction removed from local store", "id", id)
		s.feed.Publish(s.snapshot())
		return nil
	}
	return store.ErrNotFound
}

func (s *Store) Replace(_ context.Context, txs []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.txs
	next := make([]core.Transaction, len(txs))
	copy(next, txs)
	for i := range next {
		next[i].ID = s.nextID()
		if next[i].CreatedAt.IsZero() {
			next[i].CreatedAt = s.now()
		}
	}
	s.txs = next
	if err := s.save(); err != nil {
		s.txs = prev
		return err
	}
	s.feed.Publish(s.snapshot())
	return nil
}

func (s *Store) Subscribe(ctx context.Context) (<-chan []core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feed.Subscribe(ctx, s.snapshot()), nil
}

func (s *Store) Close() error { return nil }

// snapshot copies the list sorted by CreatedAt descending. Caller holds the
// lock.
func (s *Store) snapshot() []core.Transaction {
	out := make([]core.Transaction, len(s.txs))
	copy(out, s.txs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
