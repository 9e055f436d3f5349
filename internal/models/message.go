package models

// Message is the sole persisted entity: one inbound webhook delivery.
// Rows are immutable once inserted; message_id is globally unique.
type Message struct {
	MessageID  string `json:"message_id"`
	FromMSISDN string `json:"from"`            // E.164 sender
	ToMSISDN   string `json:"to"`              // E.164 recipient
	TS         string `json:"ts"`              // ISO-8601 UTC, Z suffix; primary sort key
	Text       string `json:"text,omitempty"`  // max 4096 characters
	CreatedAt  string `json:"-"`               // server-assigned at insert, audit only
}
