package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window Limiter shared by every instance of the
// service. Counters live under "<prefix>:<key>" and expire with the window.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter creates a RedisLimiter.
// If prefix is empty, it uses "rl". If window is 0, it defaults to one minute.
func NewRedisLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl"
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		limit:  int64(limit),
		window: window,
	}
}

// counterKey returns the Redis key for a limiter key.
func (r *RedisLimiter) counterKey(key string) string {
	return fmt.Sprintf("%s:%s", r.prefix, key)
}

// Allow increments the counter for key and reports whether it is within the limit.
// INCR and EXPIRE NX run in one MULTI/EXEC, so every hit re-applies the TTL to
// a counter that lacks one and a counter can never outlive its window.
// Errors are returned to the caller, which decides whether to fail open.
func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if r.limit <= 0 {
		return true, nil
	}

	k := r.counterKey(key)
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, r.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("incr %s: %w", k, err)
	}
	return incr.Val() <= r.limit, nil
}
