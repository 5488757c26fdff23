package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window limiter backed by Redis, for gateway
// deployments with more than one process behind a load balancer.
type RedisLimiter struct {
	client   *redis.Client
	limit    int
	interval time.Duration
}

// NewRedisLimiter creates a Redis-backed limiter allowing limit requests
// per key per interval.
func NewRedisLimiter(client *redis.Client, limit int, interval time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:   client,
		limit:    limit,
		interval: interval,
	}
}

// Allow increments the key's window counter and reports whether the
// request is within budget. The window TTL is set on the first hit, so
// the counter expires on its own without pruning.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := "ratelimit:" + key

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit counter increment failed: %w", err)
	}

	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.interval).Err(); err != nil {
			return false, fmt.Errorf("rate limit window expiry failed: %w", err)
		}
	}

	return count <= int64(l.limit), nil
}
