package handlers

import (
	"net/http"
	"strconv"

	"github.com/lyftr-ai/lyftr/internal/store"
)

// MessageData is a single message in the listing response.
type MessageData struct {
	MessageID  string `json:"message_id"`
	FromMSISDN string `json:"from"`
	ToMSISDN   string `json:"to"`
	TS         string `json:"ts"`
	Text       string `json:"text"`
}

// MessagesResponse is the paginated listing response.
type MessagesResponse struct {
	Data   []MessageData `json:"data"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// Messages lists stored messages with pagination and filtering.
// Filters combine conjunctively; ordering is (ts ASC, message_id ASC)
// and total reflects the filtered set before slicing.
func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 50
	if v := query.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			h.Error(w, http.StatusUnprocessableEntity, "limit must be an integer between 1 and 100")
			return
		}
		limit = n
	}

	offset := 0
	if v := query.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.Error(w, http.StatusUnprocessableEntity, "offset must be a non-negative integer")
			return
		}
		offset = n
	}

	messages, total, err := h.store.List(r.Context(), store.Filter{
		From:   query.Get("from"),
		Since:  query.Get("since"),
		Q:      query.Get("q"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	data := make([]MessageData, 0, len(messages))
	for _, msg := range messages {
		data = append(data, MessageData{
			MessageID:  msg.MessageID,
			FromMSISDN: msg.FromMSISDN,
			ToMSISDN:   msg.ToMSISDN,
			TS:         msg.TS,
			Text:       msg.Text,
		})
	}

	h.JSON(w, http.StatusOK, MessagesResponse{
		Data:   data,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}
