package handlers

import (
	"context"
	"net/http"
	"time"
)

const version = "1.0.0"

// HealthLive is the liveness probe: 200 whenever the process is up.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// HealthReady is the readiness probe: 200 iff the webhook secret is
// configured and the store's schema is present and reachable.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if len(h.secret) == 0 {
		h.JSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "WEBHOOK_SECRET environment variable is not set",
		})
		return
	}

	if err := h.store.SchemaReady(ctx); err != nil {
		h.JSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "database not ready",
		})
		return
	}

	h.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// RootResponse represents the root endpoint response.
type RootResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Root identifies the service.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, RootResponse{
		Name:    "lyftr-webhook",
		Version: version,
	})
}
