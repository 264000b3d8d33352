// Package sqlite is the durable local store backend, a single-table SQLite
// database managed through embedded migrations.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"finbook/internal/core"
	"finbook/internal/store"

	_ "modernc.org/sqlite"
)

type Store struct {
	db     *sql.DB
	userID string
	feed   *store.Broadcaster
}

func New(dbPath, userID string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, userID: userID, feed: store.NewBroadcaster()}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const selectColumns = `id, description, amount_cents, type, category, recurring,
	remaining_balance_cents, interest_rate, due_day, paid_at, created_at`

func (s *Store) List(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM transactions WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		s.userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (s *Store) Add(ctx context.Context, tx core.Transaction) (string, error) {
	createdAt := tx.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions
		 (user_id, description, amount_cents, type, category, recurring,
		  remaining_balance_cents, interest_rate, due_day, paid_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.userID, tx.Description, tx.Amount.Cents, string(tx.Type), tx.Category,
		boolToInt(tx.Recurring), tx.RemainingBalance.Cents, tx.InterestRate,
		tx.DueDay, nullableTime(tx.PaidAt), createdAt)
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("read insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"description", tx.Description,
		"amount_cents", tx.Amount.Cents,
		"type", tx.Type)

	s.publish(ctx)
	return strconv.FormatInt(id, 10), nil
}

func (s *Store) Update(ctx context.Context, id string, p store.Patch) error {
	numID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return store.ErrNotFound
	}

	// Read-modify-write so Patch semantics live in one place.
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM transactions WHERE id = ? AND user_id = ?`,
		numID, s.userID)
	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}
	p.Apply(&tx)

	_, err = s.db.ExecContext(ctx,
		`UPDATE transactions SET description = ?, amount_cents = ?, type = ?,
		 category = ?, recurring = ?, remaining_balance_cents = ?,
		 interest_rate = ?, due_day = ?, paid_at = ?
		 WHERE id = ? AND user_id = ?`,
		tx.Description, tx.Amount.Cents, string(tx.Type), tx.Category,
		boolToInt(tx.Recurring), tx.RemainingBalance.Cents, tx.InterestRate,
		tx.DueDay, nullableTime(tx.PaidAt), numID, s.userID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	s.publish(ctx)
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	numID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return store.ErrNotFound
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, numID, s.userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	slog.InfoContext(ctx, "Transaction deleted from SQLite", "id", id)
	s.publish(ctx)
	return nil
}

func (s *Store) Replace(ctx context.Context, txs []core.Transaction) error {
	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer dbtx.Rollback()

	if _, err := dbtx.ExecContext(ctx,
		`DELETE FROM transactions WHERE user_id = ?`, s.userID); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	for _, tx := range txs {
		createdAt := tx.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		if _, err := dbtx.ExecContext(ctx,
			`INSERT INTO transactions
			 (user_id, description, amount_cents, type, category, recurring,
			  remaining_balance_cents, interest_rate, due_day, paid_at, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.userID, tx.Description, tx.Amount.Cents, string(tx.Type), tx.Category,
			boolToInt(tx.Recurring), tx.RemainingBalance.Cents, tx.InterestRate,
			tx.DueDay, nullableTime(tx.PaidAt), createdAt); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
	}
	if err := dbtx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}

	slog.InfoContext(ctx, "Transaction list replaced", "count", len(txs))
	s.publish(ctx)
	return nil
}

func (s *Store) Subscribe(ctx context.Context) (<-chan []core.Transaction, error) {
	txs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.feed.Subscribe(ctx, txs), nil
}

func (s *Store) publish(ctx context.Context) {
	txs, err := s.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to reload snapshot after write", "error", err)
		return
	}
	s.feed.Publish(txs)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(r rowScanner) (core.Transaction, error) {
	var (
		tx        core.Transaction
		id        int64
		txType    string
		recurring int64
		paidAt    sql.NullTime
	)
	err := r.Scan(&id, &tx.Description, &tx.Amount.Cents, &txType, &tx.Category,
		&recurring, &tx.RemainingBalance.Cents, &tx.InterestRate, &tx.DueDay,
		&paidAt, &tx.CreatedAt)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.ID = strconv.FormatInt(id, 10)
	tx.Type = core.TransactionType(txType)
	tx.Recurring = recurring != 0
	if paidAt.Valid {
		t := paidAt.Time
		tx.PaidAt = &t
	}
	return tx, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
