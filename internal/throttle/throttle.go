package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store decides whether a keyed action is allowed under the configured rate.
// It is injected rather than kept as process-global state so the limit holds
// across replicas and resets with the backing store, not the process.
type Store interface {
	// Allow reports whether the action identified by key may proceed.
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisStore implements a fixed-window counter per key: INCR the window's
// counter and set its expiry on first increment. Coarser than a sliding
// window but a single round trip per check.
type RedisStore struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// NewRedisStore creates a Redis-backed throttle allowing limit actions per window.
func NewRedisStore(client *redis.Client, prefix string, limit int, window time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		limit:  limit,
		window: window,
		prefix: prefix,
	}
}

func (s *RedisStore) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("%s:%s", s.prefix, key)

	count, err := s.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("throttle incr: %w", err)
	}

	if count == 1 {
		if err := s.client.Expire(ctx, redisKey, s.window).Err(); err != nil {
			return false, fmt.Errorf("throttle expire: %w", err)
		}
	}

	return count <= int64(s.limit), nil
}
