package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/lyftr-ai/lyftr/internal/metrics"
	"github.com/lyftr-ai/lyftr/internal/store"
)

// msisdnRegex validates E.164 phone identifiers: a plus followed by digits.
var msisdnRegex = regexp.MustCompile(`^\+\d+$`)

// tsRegex validates strict ISO-8601 UTC timestamps with a literal Z suffix.
var tsRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z$`)

// maxTextLength bounds the optional message text, in characters.
const maxTextLength = 4096

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	store   store.MessageStore
	cache   *store.RedisStore // optional dedupe cache, may be nil
	secret  []byte
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewHandler creates a new Handler with the given dependencies.
func NewHandler(s store.MessageStore, cache *store.RedisStore, secret string, m *metrics.Metrics, logger zerolog.Logger) *Handler {
	return &Handler{
		store:   s,
		cache:   cache,
		secret:  []byte(secret),
		metrics: m,
		logger:  logger,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, detail string) {
	h.JSON(w, status, map[string]string{"detail": detail})
}
