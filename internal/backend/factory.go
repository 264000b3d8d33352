// Package backend selects and constructs the persistence collaborator at
// startup. The store is an explicitly injected dependency everywhere else;
// this is the only place that knows which implementations exist.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finbook/internal/store"
	"finbook/internal/store/localfile"
	"finbook/internal/store/sqlite"
	"finbook/internal/store/supabase"
)

// Type names a store implementation.
type Type string

const (
	// FileBackend keeps the whole list in one local JSON blob.
	FileBackend Type = "file"
	// SQLiteBackend is the durable local database.
	SQLiteBackend Type = "sqlite"
	// SupabaseBackend is the remote per-user document table.
	SupabaseBackend Type = "supabase"
)

func (t Type) String() string { return string(t) }

func (t Type) IsValid() bool {
	switch t {
	case FileBackend, SQLiteBackend, SupabaseBackend:
		return true
	default:
		return false
	}
}

// Types returns every valid backend type.
func Types() []Type {
	return []Type{FileBackend, SQLiteBackend, SupabaseBackend}
}

// Config holds what the factory needs to build any backend.
type Config struct {
	Type Type

	// File backend
	FilePath string

	// SQLite backend
	SQLiteDBPath string

	// Supabase backend
	SupabaseURL   string
	SupabaseKey   string
	SupabaseTable string
	PollInterval  time.Duration

	// Identity scoping the collection; a fixed placeholder in offline mode.
	UserID string
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %q (must be one of %v)", c.Type, Types())
	}
	switch c.Type {
	case FileBackend:
		if c.FilePath == "" {
			return fmt.Errorf("file path is required for the file backend")
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("database path is required for the sqlite backend")
		}
	case SupabaseBackend:
		if c.SupabaseURL == "" {
			return fmt.Errorf("supabase URL is required for the supabase backend")
		}
		if c.SupabaseKey == "" {
			return fmt.Errorf("supabase key is required for the supabase backend")
		}
	}
	if c.UserID == "" {
		return fmt.Errorf("user id must not be empty")
	}
	return nil
}

// New builds the configured store.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (store.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case FileBackend:
		s, err := localfile.New(cfg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("initialize file store: %w", err)
		}
		logger.Info("Initialized file backend", "path", cfg.FilePath, "user", cfg.UserID)
		return s, nil

	case SQLiteBackend:
		s, err := sqlite.New(cfg.SQLiteDBPath, cfg.UserID)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		logger.Info("Initialized sqlite backend", "db_path", cfg.SQLiteDBPath, "user", cfg.UserID)
		return s, nil

	case SupabaseBackend:
		s, err := supabase.New(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseTable, cfg.UserID, cfg.PollInterval)
		if err != nil {
			return nil, fmt.Errorf("initialize supabase store: %w", err)
		}
		logger.Info("Initialized supabase backend", "table", cfg.SupabaseTable, "user", cfg.UserID)
		return s, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}
