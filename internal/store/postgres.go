package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lyftr-ai/lyftr/internal/models"
)

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection
// pool and initializes the schema.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	store := &PostgresStore{pool: pool}

	if err := store.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
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

	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// SchemaReady checks that the messages table exists.
func (s *PostgresStore) SchemaReady(ctx context.Context) error {
	var one int
	err := s.pool.QueryRow(ctx, `
		SELECT 1 FROM information_schema.tables
		WHERE table_name = 'messages'
	`).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return errors.New("messages table missing")
	}
	return err
}

// Exists checks whether a message with the given ID is already stored.
func (s *PostgresStore) Exists(ctx context.Context, messageID string) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx, `
		SELECT 1 FROM messages WHERE message_id = $1
	`, messageID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Insert persists a message, assigning created_at. ON CONFLICT DO
// NOTHING makes the primary-key constraint the duplicate classifier,
// so concurrent duplicate deliveries settle inside the engine.
func (s *PostgresStore) Insert(ctx context.Context, msg models.Message) (InsertResult, error) {
	createdAt := time.Now().UTC().Format(createdAtLayout)

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO messages (message_id, from_msisdn, to_msisdn, ts, text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (message_id) DO NOTHING
	`, msg.MessageID, msg.FromMSISDN, msg.ToMSISDN, msg.TS, msg.Text, createdAt)
	if err != nil {
		return 0, err
	}

	if tag.RowsAffected() == 0 {
		return AlreadyExists, nil
	}
	return Inserted, nil
}

// List retrieves messages matching the filter, ordered by
// (ts ASC, message_id ASC), along with the pre-slice total.
func (s *PostgresStore) List(ctx context.Context, f Filter) ([]models.Message, int, error) {
	var conds []string
	var params []any

	placeholder := func() string {
		return "$" + strconv.Itoa(len(params))
	}

	if f.From != "" {
		params = append(params, f.From)
		conds = append(conds, "from_msisdn = "+placeholder())
	}
	if f.Since != "" {
		params = append(params, f.Since)
		conds = append(conds, "ts >= "+placeholder())
	}
	if f.Q != "" {
		params = append(params, "%"+f.Q+"%")
		conds = append(conds, "text LIKE "+placeholder())
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM messages"+where, params...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	params = append(params, f.Limit)
	limitPH := placeholder()
	params = append(params, f.Offset)
	offsetPH := placeholder()

	rows, err := s.pool.Query(ctx, `
		SELECT message_id, from_msisdn, to_msisdn, ts, text, created_at
		FROM messages`+where+`
		ORDER BY ts ASC, message_id ASC
		LIMIT `+limitPH+` OFFSET `+offsetPH, params...)
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
func (s *PostgresStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{PerSender: []SenderCount{}}

	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages`).Scan(&stats.TotalMessages)
	if err != nil {
		return nil, err
	}

	err = s.pool.QueryRow(ctx, `SELECT COUNT(DISTINCT from_msisdn) FROM messages`).Scan(&stats.SendersCount)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
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

	err = s.pool.QueryRow(ctx, `SELECT MIN(ts), MAX(ts) FROM messages`).Scan(&stats.FirstTS, &stats.LastTS)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
