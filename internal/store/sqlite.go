package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lyftr-ai/lyftr/internal/models"
)

// SQLiteStore handles SQLite database operations.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store and initializes the schema.
// If dbPath is empty, defaults to "./data/app.db".
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/app.db"
	}

	// Ensure directory exists
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates the messages table and its indexes if absent.
// message_id is the primary key; the engine's constraint is the sole
// duplicate classifier for Insert.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		message_id TEXT PRIMARY KEY,
		from_msisdn TEXT NOT NULL,
		to_msisdn TEXT NOT NULL,
		ts TEXT NOT NULL,
		text TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_ts ON messages(ts ASC, message_id ASC);
	CREATE INDEX IF NOT EXISTS idx_messages_from ON messages(from_msisdn);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SchemaReady checks that the messages table exists.
func (s *SQLiteStore) SchemaReady(ctx context.Context) error {
	var name string
	err := s.db.QueryRowContext(ctx, `
		SELECT name FROM sqlite_master WHERE type='table' AND name='messages'
	`).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return errors.New("messages table missing")
	}
	return err
}

// Exists checks whether a message with the given ID is already stored.
func (s *SQLiteStore) Exists(ctx context.Context, messageID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM messages WHERE message_id = ?
	`, messageID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Insert persists a message, assigning created_at. A duplicate
// message_id resolves to AlreadyExists via INSERT OR IGNORE, so
// concurrent duplicate deliveries settle inside the engine.
func (s *SQLiteStore) Insert(ctx context.Context, msg models.Message) (InsertResult, error) {
	createdAt := time.Now().UTC().Format(createdAtLayout)

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO messages (message_id, from_msisdn, to_msisdn, ts, text, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, msg.MessageID, msg.FromMSISDN, msg.ToMSISDN, msg.TS, msg.Text, createdAt)
	if err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return AlreadyExists, nil
	}
	return Inserted, nil
}

// List retrieves messages matching the filter, ordered by
// (ts ASC, message_id ASC), along with the pre-slice total.
func (s *SQLiteStore) List(ctx context.Context, f Filter) ([]models.Message, int, error) {
	var conds []string
	var params []any

	if f.From != "" {
		conds = append(conds, "from_msisdn = ?")
		params = append(params, f.From)
	}
	if f.Since != "" {
		conds = append(conds, "ts >= ?")
		params = append(params, f.Since)
	}
	if f.Q != "" {
		conds = append(conds, "text LIKE ?")
		params = append(params, "%"+f.Q+"%")
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages"+where, params...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT message_id, from_msisdn, to_msisdn, ts, text, created_at
		FROM messages`+where+`
		ORDER BY ts ASC, message_id ASC
		LIMIT ? OFFSET ?
	`, append(params, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		var text sql.NullString
		if err := rows.Scan(&msg.MessageID, &msg.FromMSISDN, &msg.ToMSISDN, &msg.TS, &text, &msg.CreatedAt); err != nil {
			return nil, 0, err
		}
		msg.Text = text.String
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

// Stats computes the aggregate view: totals, distinct senders, top
// ten senders (count DESC, sender ASC on ties), and first/last ts.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{PerSender: []SenderCount{}}

	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&stats.TotalMessages)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT from_msisdn) FROM messages`).Scan(&stats.SendersCount)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT from_msisdn, COUNT(*) as count
		FROM messages
		GROUP BY from_msisdn
		ORDER BY count DESC, from_msisdn ASC
		LIMIT 10
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var sc SenderCount
		if err := rows.Scan(&sc.From, &sc.Count); err != nil {
			return nil, err
		}
		stats.PerSender = append(stats.PerSender, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx, `SELECT MIN(ts), MAX(ts) FROM messages`).Scan(&stats.FirstTS, &stats.LastTS)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
