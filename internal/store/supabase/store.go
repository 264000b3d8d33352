// Package supabase is the remote document store backend: a per-user,
// per-app table behind PostgREST. Writes are independent round-trips; the
// subscription feed polls the table and emits a fresh full-list snapshot
// whenever the remote state changes, which is how concurrent sessions
// reconcile (last write observed wins).
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"

	"finbook/internal/core"
	"finbook/internal/store"
)

const defaultPollInterval = 5 * time.Second

type Store struct {
	client *supabase.Client
	table  string
	userID string
	feed   *store.Broadcaster

	pollInterval time.Duration
	stopOnce     sync.Once
	stop         chan struct{}
	lastSeen     []byte
}

func New(url, key, table, userID string, pollInterval time.Duration) (*Store, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	if table == "" {
		table = "transactions"
	}
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	s := &Store{
		client:       client,
		table:        table,
		userID:       userID,
		feed:         store.NewBroadcaster(),
		pollInterval: pollInterval,
		stop:         make(chan struct{}),
	}
	go s.poll()
	return s, nil
}

func (s *Store) List(ctx context.Context) ([]core.Transaction, error) {
	data, _, err := s.client.From(s.table).
		Select("*", "", false).
		Eq("user_id", s.userID).
		Order("created_at.desc", nil).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	txs := make([]core.Transaction, len(records))
	for i, r := range records {
		txs[i] = r.toTransaction()
	}
	return txs, nil
}

func (s *Store) Add(ctx context.Context, tx core.Transaction) (string, error) {
	r := fromTransaction(tx, s.userID)
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	data, _, err := s.client.From(s.table).Insert(r, false, "", "representation", "").Execute()
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}

	// The response carries the stored row, including any server-assigned
	// fields.
	var created []record
	if err := json.Unmarshal(data, &created); err == nil && len(created) > 0 {
		r = created[0]
	}

	slog.InfoContext(ctx, "Transaction saved to remote store",
		"id", r.ID,
		"description", r.Description,
		"amount_cents", r.AmountCents)
	return r.ID, nil
}

func (s *Store) Update(ctx context.Context, id string, p store.Patch) error {
	fields := patchFields(p)
	if len(fields) == 0 {
		return nil
	}
	data, _, err := s.client.From(s.table).
		Update(fields, "representation", "").
		Eq("id", id).
		Eq("user_id", s.userID).
		Execute()
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	var updated []record
	if err := json.Unmarshal(data, &updated); err == nil && len(updated) == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	_, _, err := s.client.From(s.table).
		Delete("", "").
		Eq("id", id).
		Eq("user_id", s.userID).
		Execute()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func (s *Store) Replace(ctx context.Context, txs []core.Transaction) error {
	// Wholesale swap: clear the user's rows, then bulk insert. Not
	// transactional on the remote side; the poller reconciles readers.
	if _, _, err := s.client.From(s.table).
		Delete("", "").
		Eq("user_id", s.userID).
		Execute(); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	if len(txs) == 0 {
		return nil
	}

	records := make([]record, len(txs))
	for i, tx := range txs {
		r := fromTransaction(tx, s.userID)
		r.ID = uuid.New().String()
		if r.CreatedAt.IsZero() {
			r.CreatedAt = time.Now().UTC()
		}
		records[i] = r
	}
	if _, _, err := s.client.From(s.table).
		Insert(records, false, "", "", "").
		Execute(); err != nil {
		return fmt.Errorf("insert transactions: %w", err)
	}
	slog.InfoContext(ctx, "Remote transaction list replaced", "count", len(txs))
	return nil
}

func (s *Store) Subscribe(ctx context.Context) (<-chan []core.Transaction, error) {
	txs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.feed.Subscribe(ctx, txs), nil
}

func (s *Store) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

// poll watches the remote table and publishes a snapshot when its content
// changes. Errors are logged and retried on the next tick.
func (s *Store) poll() {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.pollInterval)
			txs, err := s.List(ctx)
			cancel()
			if err != nil {
				slog.Error("Remote poll failed", "error", err)
				continue
			}
			fingerprint, err := json.Marshal(txs)
			if err != nil {
				continue
			}
			if bytes.Equal(fingerprint, s.lastSeen) {
				continue
			}
			s.lastSeen = fingerprint
			s.feed.Publish(txs)
		}
	}
}

// record is the wire shape of one row in the remote table.
type record struct {
	ID           string     `json:"id,omitempty"`
	UserID       string     `json:"user_id"`
	Description  string     `json:"description"`
	AmountCents  int64      `json:"amount_cents"`
	Type         string     `json:"type"`
	Category     string     `json:"category"`
	Recurring    bool       `json:"is_recurring"`
	BalanceCents int64      `json:"remaining_balance_cents"`
	InterestRate float64    `json:"interest_rate"`
	DueDay       int        `json:"due_day"`
	PaidAt       *time.Time `json:"paid_date"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (r record) toTransaction() core.Transaction {
	return core.Transaction{
		ID:               r.ID,
		Description:      r.Description,
		Amount:           core.Money{Cents: r.AmountCents},
		Type:             core.TransactionType(r.Type),
		Category:         r.Category,
		Recurring:        r.Recurring,
		RemainingBalance: core.Money{Cents: r.BalanceCents},
		InterestRate:     r.InterestRate,
		DueDay:           r.DueDay,
		PaidAt:           r.PaidAt,
		CreatedAt:        r.CreatedAt,
	}
}

func fromTransaction(tx core.Transaction, userID string) record {
	return record{
		ID:           tx.ID,
		UserID:       userID,
		Description:  tx.Description,
		AmountCents:  tx.Amount.Cents,
		Type:         string(tx.Type),
		Category:     tx.Category,
		Recurring:    tx.Recurring,
		BalanceCents: tx.RemainingBalance.Cents,
		InterestRate: tx.InterestRate,
		DueDay:       tx.DueDay,
		PaidAt:       tx.PaidAt,
		CreatedAt:    tx.CreatedAt,
	}
}

func patchFields(p store.Patch) map[string]any {
	fields := make(map[string]any)
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.AmountCents != nil {
		fields["amount_cents"] = *p.AmountCents
	}
	if p.Type != nil {
		fields["type"] = string(*p.Type)
	}
	if p.Category != nil {
		fields["category"] = *p.Category
	}
	if p.Recurring != nil {
		fields["is_recurring"] = *p.Recurring
	}
	if p.BalanceCents != nil {
		fields["remaining_balance_cents"] = *p.BalanceCents
	}
	if p.InterestRate != nil {
		fields["interest_rate"] = *p.InterestRate
	}
	if p.DueDay != nil {
		fields["due_day"] = *p.DueDay
	}
	if p.ClearPaidAt {
		fields["paid_date"] = nil
	} else if p.PaidAt != nil {
		fields["paid_date"] = p.PaidAt.Format(time.RFC3339)
	}
	return fields
}
