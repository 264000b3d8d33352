package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"finbook/internal/core"
	"finbook/internal/report"
	"finbook/internal/store"
)

// fakeStore is an in-memory store.Store for service tests.
type fakeStore struct {
	txs    []core.Transaction
	nextID int
	feed   *store.Broadcaster

	failUpdateFor map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{feed: store.NewBroadcaster()}
}

func (f *fakeStore) List(_ context.Context) ([]core.Transaction, error) {
	out := make([]core.Transaction, len(f.txs))
	copy(out, f.txs)
	return out, nil
}

func (f *fakeStore) Add(_ context.Context, tx core.Transaction) (string, error) {
	f.nextID++
	tx.ID = strconv.Itoa(f.nextID)
	f.txs = append(f.txs, tx)
	return tx.ID, nil
}

func (f *fakeStore) Update(_ context.Context, id string, p store.Patch) error {
	if err, ok := f.failUpdateFor[id]; ok {
		return err
	}
	for i := range f.txs {
		if f.txs[i].ID == id {
			p.Apply(&f.txs[i])
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	for i := range f.txs {
		if f.txs[i].ID == id {
			f.txs = append(f.txs[:i], f.txs[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) Replace(_ context.Context, txs []core.Transaction) error {
	f.txs = nil
	for _, tx := range txs {
		f.nextID++
		tx.ID = strconv.Itoa(f.nextID)
		f.txs = append(f.txs, tx)
	}
	return nil
}

func (f *fakeStore) Subscribe(ctx context.Context) (<-chan []core.Transaction, error) {
	return f.feed.Subscribe(ctx, f.txs), nil
}

func (f *fakeStore) Close() error { return nil }

// recordingPublisher captures published change events.
type recordingPublisher struct {
	events []string
	err    error
}

func (r *recordingPublisher) PublishChange(_ context.Context, op, id string) error {
	r.events = append(r.events, fmt.Sprintf("%s:%s", op, id))
	return r.err
}

func newTestService(fs *fakeStore) *Service {
	svc := New(fs, nil)
	svc.now = func() time.Time {
		return time.Date(2026, time.August, 20, 10, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestCreateValidatesAndAssignsID(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs)
	ctx := context.Background()

	id, err := svc.Create(ctx, core.Transaction{
		Description: "  Salary  ",
		Amount:      core.Money{Cents: 500000},
		Type:        core.Income,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatal("expected assigned id")
	}

	txs := svc.Transactions()
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
	if txs[0].Description != "Salary" {
		t.Fatalf("description not trimmed: %q", txs[0].Description)
	}
	if txs[0].CreatedAt.IsZero() {
		t.Fatal("created at not defaulted")
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs)
	ctx := context.Background()

	cases := []core.Transaction{
		{Description: "", Amount: core.Money{Cents: 100}, Type: core.Expense},
		{Description: "x", Amount: core.Money{Cents: 0}, Type: core.Expense},
		{Description: "x", Amount: core.Money{Cents: 100}, Type: "transfer"},
	}
	for _, tc := range cases {
		if _, err := svc.Create(ctx, tc); err == nil {
			t.Fatalf("expected validation error for %+v", tc)
		}
	}
	if len(fs.txs) != 0 {
		t.Fatal("invalid transactions must not reach the store")
	}
}

func TestUpdateValidatesResult(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs)
	ctx := context.Background()

	id, _ := svc.Create(ctx, core.Transaction{
		Description: "Rent", Amount: core.Money{Cents: 120000}, Type: core.Expense,
	})

	bad := int64(-100)
	if err := svc.Update(ctx, id, store.Patch{AmountCents: &bad}); err == nil {
		t.Fatal("expected validation error for negative amount")
	}
	if fs.txs[0].Amount.Cents != 120000 {
		t.Fatal("rejected update must not change the store")
	}

	good := int64(130000)
	if err := svc.Update(ctx, id, store.Patch{AmountCents: &good}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if fs.txs[0].Amount.Cents != 130000 {
		t.Fatal("update not applied")
	}
}

func TestUpdateUnknownID(t *testing.T) {
	svc := newTestService(newFakeStore())
	cents := int64(100)
	err := svc.Update(context.Background(), "missing", store.Patch{AmountCents: &cents})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTogglePaidLifecycle(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs)
	ctx := context.Background()

	id, _ := svc.Create(ctx, core.Transaction{
		Description: "Rent", Amount: core.Money{Cents: 120000},
		Type: core.Expense, Recurring: true,
	})

	// Unpaid -> paid this month.
	if err := svc.TogglePaid(ctx, id); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if fs.txs[0].PaidAt == nil {
		t.Fatal("expected paid date set")
	}
	if !report.PaidInPeriod(fs.txs[0].PaidAt, svc.now()) {
		t.Fatal("paid date should fall in the current month")
	}

	// Paid this month -> cleared.
	if err := svc.TogglePaid(ctx, id); err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if fs.txs[0].PaidAt != nil {
		t.Fatal("expected paid date cleared")
	}
}

// A stale payment from a prior month reads as unpaid; toggling marks it paid
// again instead of clearing the old date.
func TestTogglePaidStaleMonth(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs)
	ctx := context.Background()

	id, _ := svc.Create(ctx, core.Transaction{
		Description: "Rent", Amount: core.Money{Cents: 120000},
		Type: core.Expense, Recurring: true,
	})
	stale := svc.now().AddDate(0, -1, 0)
	fs.txs[0].PaidAt = &stale

	if err := svc.TogglePaid(ctx, id); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if fs.txs[0].PaidAt == nil || !report.PaidInPeriod(fs.txs[0].PaidAt, svc.now()) {
		t.Fatalf("expected fresh paid date, got %v", fs.txs[0].PaidAt)
	}
}

func TestResetMonth(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs)
	ctx := context.Background()
	now := svc.now()

	mk := func(desc string, recurring bool, txType core.TransactionType, paidAt *time.Time) {
		id, err := svc.Create(ctx, core.Transaction{
			Description: desc, Amount: core.Money{Cents: 1000},
			Type: txType, Recurring: recurring,
		})
		if err != nil {
			t.Fatalf("create %s: %v", desc, err)
		}
		if paidAt != nil {
			for i := range fs.txs {
				if fs.txs[i].ID == id {
					fs.txs[i].PaidAt = paidAt
				}
			}
		}
	}

	mk("paid bill", true, core.Expense, &now)
	mk("unpaid bill", true, core.Expense, nil)
	mk("one-off", false, core.Expense, &now)
	mk("income", false, core.Income, nil)
	svc.reload(ctx)

	reset, err := svc.ResetMonth(ctx)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if reset != 1 {
		t.Fatalf("expected 1 reset, got %d", reset)
	}
	for _, tx := range fs.txs {
		if tx.Recurring && tx.PaidAt != nil {
			t.Fatalf("recurring bill still paid: %+v", tx)
		}
		if tx.Description == "one-off" && tx.PaidAt == nil {
			t.Fatal("one-off transaction must be untouched")
		}
	}
}

func TestResetMonthPartialFailure(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs)
	ctx := context.Background()
	now := svc.now()

	var ids []string
	for i := 0; i < 3; i++ {
		id, _ := svc.Create(ctx, core.Transaction{
			Description: fmt.Sprintf("bill-%d", i), Amount: core.Money{Cents: 1000},
			Type: core.Expense, Recurring: true,
		})
		ids = append(ids, id)
	}
	for i := range fs.txs {
		fs.txs[i].PaidAt = &now
	}
	svc.reload(ctx)

	boom := errors.New("backend down")
	fs.failUpdateFor = map[string]error{ids[1]: boom}

	reset, err := svc.ResetMonth(ctx)
	if reset != 2 {
		t.Fatalf("expected 2 resets despite failure, got %d", reset)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined failure, got %v", err)
	}
}

func TestReallocateDebt(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs)
	ctx := context.Background()

	mkDebt := func(desc string, balance int64) {
		id, _ := svc.Create(ctx, core.Transaction{
			Description: desc, Amount: core.Money{Cents: 1000}, Type: core.Expense,
		})
		for i := range fs.txs {
			if fs.txs[i].ID == id {
				fs.txs[i].RemainingBalance = core.Money{Cents: balance}
			}
		}
	}
	mkDebt("loan a", 10000)
	mkDebt("loan b", 30000)
	svc.reload(ctx)

	plan, err := svc.ReallocateDebt(ctx, "800")
	if err != nil {
		t.Fatalf("reallocate: %v", err)
	}
	if len(plan) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(plan))
	}

	var total int64
	for _, tx := range fs.txs {
		total += tx.RemainingBalance.Cents
	}
	if total != 80000 {
		t.Fatalf("expected total 80000 after reallocation, got %d", total)
	}
}

func TestReallocateDebtRejectsBadInput(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs)
	ctx := context.Background()

	if _, err := svc.ReallocateDebt(ctx, "abc"); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := svc.ReallocateDebt(ctx, "-5"); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := svc.ReallocateDebt(ctx, "500"); !errors.Is(err, report.ErrNoDebtTransactions) {
		t.Fatalf("expected ErrNoDebtTransactions, got %v", err)
	}
}

func TestPublishIsBestEffort(t *testing.T) {
	fs := newFakeStore()
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := New(fs, pub)

	id, err := svc.Create(context.Background(), core.Transaction{
		Description: "Rent", Amount: core.Money{Cents: 120000}, Type: core.Expense,
	})
	if err != nil {
		t.Fatalf("publish failure must not fail the write: %v", err)
	}
	if len(pub.events) != 1 || pub.events[0] != "create:"+id {
		t.Fatalf("expected create event, got %v", pub.events)
	}
}

func TestDeletePublishesEvent(t *testing.T) {
	fs := newFakeStore()
	pub := &recordingPublisher{}
	svc := New(fs, pub)
	ctx := context.Background()

	id, _ := svc.Create(ctx, core.Transaction{
		Description: "Rent", Amount: core.Money{Cents: 120000}, Type: core.Expense,
	})
	if err := svc.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	want := []string{"create:" + id, "delete:" + id}
	if len(pub.events) != 2 || pub.events[0] != want[0] || pub.events[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, pub.events)
	}
}
