package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asila/asila/internal/domain/ports"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRateLimiter_Boundary(t *testing.T) {
	mr, client := newTestRedis(t)
	limiter := NewRateLimiter(client)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		allowed, err := limiter.Allow(ctx, "user:+911234", 10, time.Hour)
		require.NoError(t, err)
		assert.True(t, allowed, "call %d should be allowed", i)
	}

	allowed, err := limiter.Allow(ctx, "user:+911234", 10, time.Hour)
	require.NoError(t, err)
	assert.False(t, allowed, "11th call within the window must be denied")

	// After the window expires the counter resets.
	mr.FastForward(time.Hour + time.Second)
	allowed, err = limiter.Allow(ctx, "user:+911234", 10, time.Hour)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiter_WindowSetOnFirstHit(t *testing.T) {
	mr, client := newTestRedis(t)
	limiter := NewRateLimiter(client)

	_, err := limiter.Allow(context.Background(), "user:+915555", 10, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, time.Hour, mr.TTL("ratelimit:user:+915555"))
}

func TestRateLimiter_SubjectsIndependent(t *testing.T) {
	_, client := newTestRedis(t)
	limiter := NewRateLimiter(client)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := limiter.Allow(ctx, "user:+911111", 3, time.Hour)
		require.NoError(t, err)
	}
	denied, err := limiter.Allow(ctx, "user:+911111", 3, time.Hour)
	require.NoError(t, err)
	assert.False(t, denied)

	// A different subject (admin class here) is untouched.
	allowed, err := limiter.Allow(ctx, "admin:ops", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiter_StoreDownReportsUnavailable(t *testing.T) {
	mr, client := newTestRedis(t)
	limiter := NewRateLimiter(client)
	mr.Close()

	_, err := limiter.Allow(context.Background(), "user:+911234", 10, time.Hour)

	assert.ErrorIs(t, err, ports.ErrStoreUnavailable)
}

func TestResponseCache_MissThenHit(t *testing.T) {
	_, client := newTestRedis(t)
	cache := NewResponseCache(client)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "cache:t:all:abc:en")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "cache:t:all:abc:en", "verified answer", 24*time.Hour))

	text, ok, err := cache.Get(ctx, "cache:t:all:abc:en")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "verified answer", text)
}

func TestResponseCache_Expiry(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewResponseCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", "v", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "expired entries are misses")
}

func TestResponseCache_LastWriteWins(t *testing.T) {
	_, client := newTestRedis(t)
	cache := NewResponseCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", "first", time.Hour))
	require.NoError(t, cache.Set(ctx, "k", "second", time.Hour))

	text, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", text)
}

func TestResponseCache_StoreDownReportsUnavailable(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewResponseCache(client)
	mr.Close()

	_, _, err := cache.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ports.ErrStoreUnavailable)

	err = cache.Set(context.Background(), "k", "v", time.Hour)
	assert.ErrorIs(t, err, ports.ErrStoreUnavailable)
}
