package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// seenTTL bounds how long a message_id stays in the dedupe cache.
// The database primary key remains the source of truth after expiry.
const seenTTL = 24 * time.Hour

// RedisStore caches recently seen message IDs so repeated webhook
// deliveries can short-circuit before touching the database. It is a
// pre-check optimization only; duplicate classification still happens
// in the storage engine.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Client exposes the underlying Redis client.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

func seenKey(messageID string) string {
	return fmt.Sprintf("msg:seen:%s", messageID)
}

// Seen reports whether a message_id was recently ingested. A cache
// failure reads as "not seen" so ingestion falls through to the
// database.
func (s *RedisStore) Seen(ctx context.Context, messageID string) bool {
	exists, err := s.client.Exists(ctx, seenKey(messageID)).Result()
	if err != nil {
		return false
	}
	return exists > 0
}

// MarkSeen records a message_id in the dedupe cache. Errors are
// ignored; the cache is best effort.
func (s *RedisStore) MarkSeen(ctx context.Context, messageID string) {
	s.client.Set(ctx, seenKey(messageID), "1", seenTTL)
}
