// Package ratelimit provides the sliding-window request throttle consulted by
// the HTTP layer before the auth service runs.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/you/classauth/domain"
)

const keyPrefix = "rl:"

// allowScript prunes, counts and records in one atomic step, so concurrent
// callers at the window edge cannot all pass the count check and over-admit.
// KEYS[1] window key; ARGV: cutoff score, limit, event score, ttl ms, member.
var allowScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], 0, ARGV[1])
if redis.call('ZCARD', KEYS[1]) >= tonumber(ARGV[2]) then
	return 0
end
redis.call('ZADD', KEYS[1], ARGV[3], ARGV[5])
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return 1
`)

// RedisLimiter implements domain.RateLimiter with a Redis sorted set per key.
// Members are timestamped events; events older than the window are pruned on
// every check, so the window slides rather than resetting in fixed buckets.
type RedisLimiter struct {
	client *redis.Client
}

// NewRedisLimiter creates a new Redis-backed sliding-window limiter
func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

// Allow implements domain.RateLimiter. It records the event when admitted and
// answers whether the caller may proceed.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	admitted, err := allowScript.Run(ctx, l.client,
		[]string{keyPrefix + key},
		now.Add(-window).UnixNano(),
		limit,
		now.UnixNano(),
		window.Milliseconds(),
		uuid.NewString(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}
	return admitted == 1, nil
}

// Compile-time interface compliance verification
var _ domain.RateLimiter = (*RedisLimiter)(nil)
