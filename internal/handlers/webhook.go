package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/lyftr-ai/lyftr/internal/api/middleware"
	"github.com/lyftr-ai/lyftr/internal/crypto"
	"github.com/lyftr-ai/lyftr/internal/metrics"
	"github.com/lyftr-ai/lyftr/internal/models"
	"github.com/lyftr-ai/lyftr/internal/store"
)

// WebhookRequest represents the inbound message payload.
type WebhookRequest struct {
	MessageID  string `json:"message_id"`
	FromMSISDN string `json:"from"`
	ToMSISDN   string `json:"to"`
	TS         string `json:"ts"`
	Text       string `json:"text"`
}

// validate checks the structural constraints on the payload fields.
// The returned string is the 422 detail; empty means valid.
func (req *WebhookRequest) validate() string {
	if req.MessageID == "" {
		return "message_id must be a non-empty string"
	}
	if !msisdnRegex.MatchString(req.FromMSISDN) {
		return "from must be in E.164 format (+ followed by digits)"
	}
	if !msisdnRegex.MatchString(req.ToMSISDN) {
		return "to must be in E.164 format (+ followed by digits)"
	}
	if !tsRegex.MatchString(req.TS) {
		return "ts must be ISO-8601 UTC format with Z suffix"
	}
	if utf8.RuneCountInString(req.Text) > maxTextLength {
		return "text must be at most 4096 characters"
	}
	return ""
}

// Webhook ingests a signed message delivery.
//
// The pipeline is: decode and validate the payload (422), verify the
// HMAC signature over the exact raw bytes (401), then persist. The
// response body is {"status":"ok"} for both created and duplicate
// outcomes so caller-side retries stay safe. The engine's uniqueness
// constraint classifies duplicates; the Exists pre-check (and the
// optional Redis seen-cache) only save a write on the common retry
// path.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := middleware.GetRequestID(r.Context())
	signature := r.Header.Get("X-Signature")

	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		h.auditWebhook(requestID, "", false, metrics.ResultValidationError, http.StatusUnprocessableEntity, start)
		h.Error(w, http.StatusUnprocessableEntity, "failed to read request body")
		return
	}

	var req WebhookRequest
	if err := json.Unmarshal(rawBody, &req); err != nil {
		h.auditWebhook(requestID, "", false, metrics.ResultValidationError, http.StatusUnprocessableEntity, start)
		h.Error(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	if detail := req.validate(); detail != "" {
		h.auditWebhook(requestID, req.MessageID, false, metrics.ResultValidationError, http.StatusUnprocessableEntity, start)
		h.Error(w, http.StatusUnprocessableEntity, detail)
		return
	}

	if !crypto.Verify(rawBody, signature, h.secret) {
		h.auditWebhook(requestID, req.MessageID, false, metrics.ResultInvalidSignature, http.StatusUnauthorized, start)
		h.Error(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	// Fast duplicate path: dedupe cache first, then the store.
	if h.cache != nil && h.cache.Seen(r.Context(), req.MessageID) {
		h.auditWebhook(requestID, req.MessageID, true, metrics.ResultDuplicate, http.StatusOK, start)
		h.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	exists, err := h.store.Exists(r.Context(), req.MessageID)
	if err != nil {
		h.auditWebhook(requestID, req.MessageID, false, metrics.ResultError, http.StatusInternalServerError, start)
		h.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if exists {
		h.markSeen(r, req.MessageID)
		h.auditWebhook(requestID, req.MessageID, true, metrics.ResultDuplicate, http.StatusOK, start)
		h.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	result, err := h.store.Insert(r.Context(), models.Message{
		MessageID:  req.MessageID,
		FromMSISDN: req.FromMSISDN,
		ToMSISDN:   req.ToMSISDN,
		TS:         req.TS,
		Text:       req.Text,
	})
	if err != nil {
		// A non-conflict insert failure is a real failure, not a
		// duplicate; surfacing it keeps caller retries meaningful.
		h.auditWebhook(requestID, req.MessageID, false, metrics.ResultError, http.StatusInternalServerError, start)
		h.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.markSeen(r, req.MessageID)

	if result == store.AlreadyExists {
		// Lost the race since the Exists check; the constraint settled it.
		h.auditWebhook(requestID, req.MessageID, true, metrics.ResultDuplicate, http.StatusOK, start)
	} else {
		h.auditWebhook(requestID, req.MessageID, false, metrics.ResultCreated, http.StatusOK, start)
	}
	h.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) markSeen(r *http.Request, messageID string) {
	if h.cache != nil {
		h.cache.MarkSeen(r.Context(), messageID)
	}
}

// auditWebhook emits the per-request audit record and increments the
// result counter. Every terminal branch of Webhook passes through
// here exactly once.
func (h *Handler) auditWebhook(requestID, messageID string, dup bool, result string, status int, start time.Time) {
	h.metrics.RecordWebhookResult(result)
	h.logger.Info().
		Str("request_id", requestID).
		Str("message_id", messageID).
		Bool("dup", dup).
		Str("result", result).
		Int("status", status).
		Float64("latency_ms", float64(time.Since(start).Microseconds())/1000).
		Msg("webhook processed")
}
