package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/lyftr-ai/lyftr/internal/api"
	"github.com/lyftr-ai/lyftr/internal/config"
	"github.com/lyftr-ai/lyftr/internal/metrics"
	"github.com/lyftr-ai/lyftr/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			Level(level).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			Level(level).
			With().
			Timestamp().
			Logger()
	}

	if err := cfg.Validate(); err != nil {
		logger.Warn().Err(err).Msg("configuration incomplete; readiness will fail and all signatures will be rejected")
	}

	ctx := context.Background()

	// Initialize the message store; schema is created on construction
	var messageStore store.MessageStore
	if cfg.IsPostgres() {
		pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		messageStore = pgStore
		logger.Info().Msg("connected to PostgreSQL")
	} else {
		sqliteStore, err := store.NewSQLiteStore(ctx, cfg.SQLitePath())
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		messageStore = sqliteStore
		logger.Info().Str("path", cfg.SQLitePath()).Msg("opened SQLite database")
	}
	defer messageStore.Close()

	// Initialize the optional Redis dedupe cache
	var cache *store.RedisStore
	if cfg.RedisURL != "" {
		cache, err = store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer cache.Close()
		logger.Info().Msg("connected to Redis")
	}

	// Create metrics and router
	m := metrics.New()
	router := api.NewRouter(logger, messageStore, cache, m, cfg.WebhookSecret)

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting lyftr webhook server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
