package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"marketplace/internal/apperr"
)

// RedisLimiter shares the throttle window between service instances.
// A key lives for exactly one interval, so SET NX PX gives the same
// admit/reject decision as the in-memory store.
type RedisLimiter struct {
	rdb    redis.Cmdable
	prefix string
}

func NewRedisLimiter(rdb redis.Cmdable, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &RedisLimiter{rdb: rdb, prefix: prefix}
}

func (l *RedisLimiter) Attempt(ctx context.Context, key string, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}

	redisKey := l.prefix + key
	ok, err := l.rdb.SetNX(ctx, redisKey, time.Now().UnixMilli(), interval).Result()
	if err != nil {
		return fmt.Errorf("rate limit store: %w", err)
	}
	if ok {
		return nil
	}

	ttl, err := l.rdb.PTTL(ctx, redisKey).Result()
	if err != nil || ttl <= 0 {
		ttl = interval
	}
	return apperr.TooManyAttempts(retryIn(ttl))
}
