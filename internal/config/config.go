package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP server
	Port string

	// Store backend selection: file, sqlite or supabase.
	StoreBackend string

	// File backend
	FileStorePath string

	// SQLite backend
	SQLiteDBPath string

	// Supabase backend
	SupabaseURL   string
	SupabaseKey   string
	SupabaseTable string
	PollInterval  time.Duration

	// Identity scoping the transaction collection. Without real
	// authentication this stays the development placeholder.
	UserID string

	// AMQP change-event bus (optional; empty URL disables it)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Worker
	MirrorDebounce time.Duration

	// Dashboard tuning
	TopGroups   int
	TrendMonths int
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8082"),

		StoreBackend:  getEnv("STORE_BACKEND", "file"),
		FileStorePath: getEnv("FILE_STORE_PATH", "./data/transactions.json"),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/finbook.db"),

		SupabaseURL:   getEnv("SUPABASE_URL", ""),
		SupabaseKey:   getEnv("SUPABASE_KEY", ""),
		SupabaseTable: getEnv("SUPABASE_TABLE", "transactions"),
		PollInterval:  getEnvDuration("POLL_INTERVAL", 5*time.Second),

		UserID: getEnv("USER_ID", "local-user"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finbook"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "transaction_changes"),

		MirrorDebounce: getEnvDuration("MIRROR_DEBOUNCE", 2*time.Second),

		TopGroups:   getEnvInt("TOP_GROUPS", 6),
		TrendMonths: getEnvInt("TREND_MONTHS", 6),
	}
}

// Validate collects every configuration problem into a single error.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.StoreBackend {
	case "file":
		if c.FileStorePath == "" {
			problems = append(problems, "file store path cannot be empty when using the file backend")
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			problems = append(problems, "SQLite database path cannot be empty when using the sqlite backend")
		}
	case "supabase":
		if c.SupabaseURL == "" {
			problems = append(problems, "SUPABASE_URL is required when using the supabase backend")
		}
		if c.SupabaseKey == "" {
			problems = append(problems, "SUPABASE_KEY is required when using the supabase backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid store backend '%s': must be one of [file sqlite supabase]", c.StoreBackend))
	}

	if c.UserID == "" {
		problems = append(problems, "user id cannot be empty")
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.PollInterval < time.Second {
		problems = append(problems, fmt.Sprintf("invalid poll interval %v: must be at least 1 second", c.PollInterval))
	}
	if c.TopGroups < 1 {
		problems = append(problems, fmt.Sprintf("invalid top groups %d: must be at least 1", c.TopGroups))
	}
	if c.TrendMonths < 1 || c.TrendMonths > 60 {
		problems = append(problems, fmt.Sprintf("invalid trend months %d: must be between 1 and 60", c.TrendMonths))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
