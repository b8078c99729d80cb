package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendSQLite   = "sqlite"
	BackendSupabase = "supabase"
)

type Config struct {
	TelegramToken string

	// Receipt recognition. Empty key disables photo intake.
	OpenAIKey      string
	OpenAIModel    string
	ExtractTimeout time.Duration

	// Storage
	StoreBackend string
	SQLitePath   string
	SupabaseURL  string
	SupabaseKey  string

	// Display currency for summaries and confirmations.
	Currency string
}

// Load reads configuration from the environment, with .env as a fallback
// for local runs.
func Load() (*Config, error) {
	// Missing .env is fine in hosted environments.
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o"),
		ExtractTimeout: getEnvDuration("EXTRACT_TIMEOUT", 30*time.Second),
		StoreBackend:   getEnv("STORE_BACKEND", BackendSQLite),
		SQLitePath:     getEnv("SQLITE_PATH", "./data/finance.db"),
		SupabaseURL:    os.Getenv("SUPABASE_URL"),
		SupabaseKey:    os.Getenv("SUPABASE_KEY"),
		Currency:       getEnv("DISPLAY_CURRENCY", "$"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backend is usable and mandatory
// settings are present.
func (c *Config) Validate() error {
	var problems []string

	if c.TelegramToken == "" {
		problems = append(problems, "TELEGRAM_TOKEN is required")
	}

	switch c.StoreBackend {
	case BackendSQLite:
		if c.SQLitePath == "" {
			problems = append(problems, "SQLITE_PATH cannot be empty with the sqlite backend")
		}
	case BackendSupabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			problems = append(problems, "SUPABASE_URL and SUPABASE_KEY are required with the supabase backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown store backend %q (want %s or %s)",
			c.StoreBackend, BackendSQLite, BackendSupabase))
	}

	if c.ExtractTimeout <= 0 {
		problems = append(problems, "EXTRACT_TIMEOUT must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
