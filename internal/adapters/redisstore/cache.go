package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/asila/asila/internal/domain/ports"
)

// ResponseCache implements ports.ResponseCache on Redis string values with
// TTL. Writes are plain overwrites: concurrent writers to the same key are
// last-write-wins, staleness is bounded by the TTL.
type ResponseCache struct {
	client *redis.Client
}

// NewResponseCache creates a Redis-backed response cache.
func NewResponseCache(client *redis.Client) *ResponseCache {
	return &ResponseCache{client: client}
}

// Get returns the cached text for key. A missing key is (_, false, nil);
// an unreachable store is reported as ports.ErrStoreUnavailable so the
// caller can treat it as a miss explicitly.
func (c *ResponseCache) Get(ctx context.Context, key string) (string, bool, error) {
	text, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: get %s: %v", ports.ErrStoreUnavailable, key, err)
	}
	return text, true, nil
}

// Set stores text under key with the given TTL.
func (c *ResponseCache) Set(ctx context.Context, key, text string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, text, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", ports.ErrStoreUnavailable, key, err)
	}
	return nil
}
