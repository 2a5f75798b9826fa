package queue

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultSessionTTL = 12 * time.Hour

// RedisSessionStore keeps queue state in Redis so it survives restarts and
// is shared across API replicas. Keys expire with the staff session.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ SessionStore = (*RedisSessionStore)(nil)

// NewRedisSessionStore creates a store. TTL should match the staff session
// lifetime; zero falls back to 12h.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if client == nil {
		panic("queue: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisSessionStore{client: client, ttl: ttl}
}

func servingKey(sessionID string) string {
	return fmt.Sprintf("frontdesk:serving:%s", sessionID)
}

func skippedKey(sessionID string) string {
	return fmt.Sprintf("frontdesk:skipped:%s", sessionID)
}

func (s *RedisSessionStore) get(ctx context.Context, key string) (int64, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("queue: failed to read session state: %w", err)
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("queue: corrupt session state %q: %w", val, err)
	}
	return id, nil
}

func (s *RedisSessionStore) Serving(ctx context.Context, sessionID string) (int64, error) {
	return s.get(ctx, servingKey(sessionID))
}

func (s *RedisSessionStore) SetServing(ctx context.Context, sessionID string, appointmentID int64) error {
	if err := s.client.Set(ctx, servingKey(sessionID), appointmentID, s.ttl).Err(); err != nil {
		return fmt.Errorf("queue: failed to pin serving appointment: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) ClearServing(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, servingKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("queue: failed to clear serving pin: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Skipped(ctx context.Context, sessionID string) (int64, error) {
	return s.get(ctx, skippedKey(sessionID))
}

func (s *RedisSessionStore) SetSkipped(ctx context.Context, sessionID string, appointmentID int64) error {
	if err := s.client.Set(ctx, skippedKey(sessionID), appointmentID, s.ttl).Err(); err != nil {
		return fmt.Errorf("queue: failed to record skipped appointment: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) ClearSkipped(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, skippedKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("queue: failed to clear skip marker: %w", err)
	}
	return nil
}
