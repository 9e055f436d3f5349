package config

import (
	"testing"
)

func TestSQLitePath(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "absolute path, four slashes",
			url:  "sqlite:////data/app.db",
			want: "/data/app.db",
		},
		{
			name: "relative path, two slashes",
			url:  "sqlite://./data/app.db",
			want: "./data/app.db",
		},
		{
			name: "three slashes",
			url:  "sqlite:///tmp/test.db",
			want: "tmp/test.db",
		},
		{
			name: "plain path without scheme",
			url:  "/var/db/app.db",
			want: "/var/db/app.db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{DatabaseURL: tt.url}
			if got := cfg.SQLitePath(); got != tt.want {
				t.Errorf("SQLitePath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsPostgres(t *testing.T) {
	cfg := &Config{DatabaseURL: "postgres://localhost/lyftr"}
	if !cfg.IsPostgres() {
		t.Error("postgres:// URL should be postgres")
	}

	cfg.DatabaseURL = "postgresql://localhost/lyftr"
	if !cfg.IsPostgres() {
		t.Error("postgresql:// URL should be postgres")
	}

	cfg.DatabaseURL = "sqlite://./data/app.db"
	if cfg.IsPostgres() {
		t.Error("sqlite:// URL should not be postgres")
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{DatabaseURL: "sqlite://./data/app.db", WebhookSecret: "s3cret"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid config should pass, got %v", err)
	}

	cfg.WebhookSecret = ""
	if err := cfg.Validate(); err == nil {
		t.Error("missing WEBHOOK_SECRET should fail validation")
	}

	cfg.WebhookSecret = "s3cret"
	cfg.DatabaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Error("missing DATABASE_URL should fail validation")
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port == "" {
		t.Error("Port should have a default")
	}
	if cfg.DatabaseURL == "" {
		t.Error("DatabaseURL should have a default")
	}
}
