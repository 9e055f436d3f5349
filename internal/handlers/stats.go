package handlers

import (
	"net/http"

	"github.com/lyftr-ai/lyftr/internal/store"
)

// StatsResponse is the aggregate statistics response. The timestamp
// fields are null on an empty store, not zero-valued.
type StatsResponse struct {
	TotalMessages     int64               `json:"total_messages"`
	SendersCount      int64               `json:"senders_count"`
	MessagesPerSender []store.SenderCount `json:"messages_per_sender"`
	FirstMessageTS    *string             `json:"first_message_ts"`
	LastMessageTS     *string             `json:"last_message_ts"`
}

// Stats returns aggregate statistics about stored messages.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.JSON(w, http.StatusOK, StatsResponse{
		TotalMessages:     stats.TotalMessages,
		SendersCount:      stats.SendersCount,
		MessagesPerSender: stats.PerSender,
		FirstMessageTS:    stats.FirstTS,
		LastMessageTS:     stats.LastTS,
	})
}
