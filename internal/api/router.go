package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/lyftr-ai/lyftr/internal/api/middleware"
	"github.com/lyftr-ai/lyftr/internal/handlers"
	"github.com/lyftr-ai/lyftr/internal/metrics"
	"github.com/lyftr-ai/lyftr/internal/store"
)

// NewRouter creates and configures the HTTP router. cache may be nil
// when no Redis is configured.
func NewRouter(logger zerolog.Logger, s store.MessageStore, cache *store.RedisStore, m *metrics.Metrics, secret string) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics(m))

	r.Use(middleware.MaxBodySize(64 * 1024))
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	// CORS for browser-based dashboards reading the query endpoints
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Signature"},
		MaxAge:         300,
	}))

	h := handlers.NewHandler(s, cache, secret, m, logger)

	r.Get("/", h.Root)
	r.Post("/webhook", h.Webhook)
	r.Get("/messages", h.Messages)
	r.Get("/stats", h.Stats)
	r.Get("/health/live", h.HealthLive)
	r.Get("/health/ready", h.HealthReady)

	// Prometheus exposition from the injected registry
	r.Handle("/metrics", m.Handler())

	return r
}
