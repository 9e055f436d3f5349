package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// DatabaseURL selects the backing store: postgres:// URLs use the
	// Postgres store, sqlite:// URLs (or plain paths) use SQLite.
	DatabaseURL string

	// WebhookSecret is the shared HMAC key. Readiness fails without it.
	WebhookSecret string

	// RedisURL enables the optional seen-message cache when set.
	RedisURL string
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", "sqlite://./data/app.db"),
		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),
		RedisURL:      os.Getenv("REDIS_URL"),
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsPostgres reports whether DatabaseURL points at a Postgres server.
func (c *Config) IsPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") ||
		strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// SQLitePath extracts the file path from a sqlite DATABASE_URL.
// "sqlite:////data/app.db" yields the absolute path /data/app.db,
// "sqlite://./app.db" a relative one, and anything without a scheme
// is taken as a path verbatim.
func (c *Config) SQLitePath() string {
	url := c.DatabaseURL
	if rest, ok := strings.CutPrefix(url, "sqlite:///"); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(url, "sqlite://"); ok {
		return rest
	}
	return url
}

// Validate checks the configuration required for serving webhooks.
// The readiness probe reports its error verbatim.
func (c *Config) Validate() error {
	if c.WebhookSecret == "" {
		return errors.New("WEBHOOK_SECRET environment variable is not set")
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL environment variable is not set")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
