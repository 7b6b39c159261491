// Package redisstore provides Redis-backed adapters for the counter store
// and the response cache.
// Clean Architecture: Adapters implementing ports.RateLimiter and
// ports.ResponseCache.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/asila/asila/internal/domain/ports"
)

// RateLimiter implements ports.RateLimiter with one Redis counter per
// subject key.
type RateLimiter struct {
	client *redis.Client
}

// NewRateLimiter creates a Redis-backed rate limiter.
func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// Allow increments the subject counter and reports whether the request is
// within limit. INCR is atomic in Redis, so concurrent invocations for the
// same subject never lose an increment; the window expiry is applied on
// the first increment only. Store failures come back wrapped in
// ports.ErrStoreUnavailable so the caller can fail open.
func (l *RateLimiter) Allow(ctx context.Context, subjectKey string, limit int, window time.Duration) (bool, error) {
	key := "ratelimit:" + subjectKey

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("%w: incr %s: %v", ports.ErrStoreUnavailable, key, err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, window).Err(); err != nil {
			return true, fmt.Errorf("%w: expire %s: %v", ports.ErrStoreUnavailable, key, err)
		}
	}
	// count is post-increment: the request that takes the counter past the
	// limit is the first one denied.
	return count <= int64(limit), nil
}
