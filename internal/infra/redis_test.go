package infra

import (
	"context"
	"testing"
	"time"

	"gateway/internal/config"
	"gateway/internal/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *Cache) {
	t.Helper()
	logger.UseNop()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cache, err := NewCache(&config.RedisConfig{URL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return mr, cache
}

func TestCacheSetGet(t *testing.T) {
	_, cache := setupMiniRedis(t)
	ctx := context.Background()

	assert.True(t, cache.Connect(ctx))
	assert.True(t, cache.Set(ctx, "greeting", "hello", 0))

	val, ok := cache.Get(ctx, "greeting")
	assert.True(t, ok)
	assert.Equal(t, "hello", val)

	_, ok = cache.Get(ctx, "missing")
	assert.False(t, ok)
}

func TestCacheTTL(t *testing.T) {
	mr, cache := setupMiniRedis(t)
	ctx := context.Background()

	require.True(t, cache.Set(ctx, "session", "abc", time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("session"))

	mr.FastForward(2 * time.Minute)
	_, ok := cache.Get(ctx, "session")
	assert.False(t, ok)
}

func TestCacheErrorsAreSwallowed(t *testing.T) {
	mr, cache := setupMiniRedis(t)
	ctx := context.Background()
	mr.Close()

	assert.False(t, cache.Connect(ctx))
	assert.Error(t, cache.Ping(ctx))
	assert.False(t, cache.Set(ctx, "k", "v", 0))
	val, ok := cache.Get(ctx, "k")
	assert.False(t, ok)
	assert.Empty(t, val)
}

func TestNewCacheBadURL(t *testing.T) {
	_, err := NewCache(&config.RedisConfig{URL: "http://not-redis"})
	assert.Error(t, err)
}
