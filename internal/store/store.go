package store

import (
	"context"

	"github.com/lyftr-ai/lyftr/internal/models"
)

// InsertResult classifies the outcome of an Insert.
type InsertResult int

const (
	// Inserted means a new row was persisted.
	Inserted InsertResult = iota
	// AlreadyExists means the uniqueness constraint rejected a duplicate
	// message_id. This is the normal idempotent-retry path, not an error.
	AlreadyExists
)

// Filter narrows a List call. Zero-value fields are ignored; set
// fields combine conjunctively.
type Filter struct {
	From   string // exact match on from_msisdn
	Since  string // ts >= Since (lexical; the ts format is fixed width)
	Q      string // substring match against text
	Limit  int
	Offset int
}

// SenderCount is one entry of the per-sender aggregate.
type SenderCount struct {
	From  string `json:"from"`
	Count int64  `json:"count"`
}

// Stats holds the aggregate view over all stored messages. FirstTS
// and LastTS are nil on an empty store.
type Stats struct {
	TotalMessages int64
	SendersCount  int64
	PerSender     []SenderCount
	FirstTS       *string
	LastTS        *string
}

// MessageStore defines the interface for durable message persistence.
// Both SQLiteStore and PostgresStore implement this interface.
//
// Duplicate classification happens inside the storage engine's atomic
// write path: Insert relies on the primary-key constraint, never on a
// separate check-then-act. Exists is a pre-check optimization only.
type MessageStore interface {
	Close()
	Ping(ctx context.Context) error

	// SchemaReady returns nil iff the messages table is present and
	// the store is reachable. Drives the readiness probe.
	SchemaReady(ctx context.Context) error

	Exists(ctx context.Context, messageID string) (bool, error)
	Insert(ctx context.Context, msg models.Message) (InsertResult, error)
	List(ctx context.Context, f Filter) ([]models.Message, int, error)
	Stats(ctx context.Context) (*Stats, error)
}

// createdAtLayout is the server-assigned audit timestamp format,
// matching the wire format of ts.
const createdAtLayout = "2006-01-02T15:04:05Z"
