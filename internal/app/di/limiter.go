package di

import (
	"time"

	"github.com/redis/go-redis/v9"

	"auth_backend/internal/shared/ratelimiter"
)

// NewLimiter creates a Limiter implementation.
// If Redis is available, it returns a Redis-backed implementation shared across instances.
// Otherwise, it falls back to an in-process limiter.
func NewLimiter(rdb *redis.Client, prefix string, limit int, window time.Duration) ratelimiter.Limiter {
	if rdb != nil {
		return ratelimiter.NewRedisLimiter(rdb, prefix, limit, window)
	}
	return ratelimiter.NewRateLimiter(limit, window)
}
