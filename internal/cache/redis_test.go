// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMiniRedis creates a test Redis server using miniredis.
func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, newRedisCacheWithClient(client, zerolog.Nop())
}

func TestRedisCache_SetGet(t *testing.T) {
	ctx := context.Background()
	mr, cache := setupMiniRedis(t)

	cache.Set(ctx, "http://upstream/list.m3u", "#EXTM3U\nline", 5*time.Minute)

	val, found := cache.Get(ctx, "http://upstream/list.m3u")
	require.True(t, found)
	assert.Equal(t, "#EXTM3U\nline", val)

	assert.True(t, mr.Exists(redisKeyPrefix+"http://upstream/list.m3u"), "key should be namespaced")

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, 1, stats.CurrentSize)
	assert.Equal(t, "redis", cache.Backend())
}

func TestRedisCache_GetMissing(t *testing.T) {
	_, cache := setupMiniRedis(t)

	val, found := cache.Get(context.Background(), "nonexistent")
	assert.False(t, found)
	assert.Empty(t, val)
	assert.Equal(t, int64(1), cache.Stats().Misses)
}

func TestRedisCache_TTL(t *testing.T) {
	ctx := context.Background()
	mr, cache := setupMiniRedis(t)

	cache.Set(ctx, "short", "v", time.Second)
	cache.Set(ctx, "forever", "v", 0)

	assert.Equal(t, time.Second, mr.TTL(redisKeyPrefix+"short"))
	assert.Equal(t, time.Duration(0), mr.TTL(redisKeyPrefix+"forever"))

	mr.FastForward(2 * time.Second)

	_, found := cache.Get(ctx, "short")
	assert.False(t, found)
	_, found = cache.Get(ctx, "forever")
	assert.True(t, found)
}

func TestRedisCache_Delete(t *testing.T) {
	ctx := context.Background()
	_, cache := setupMiniRedis(t)

	cache.Set(ctx, "k", "v", time.Minute)
	cache.Delete(ctx, "k")
	_, found := cache.Get(ctx, "k")
	assert.False(t, found)
}

func TestRedisCache_StatsIgnoresForeignKeys(t *testing.T) {
	ctx := context.Background()
	mr, cache := setupMiniRedis(t)

	require.NoError(t, mr.Set("other:key", "x"))
	cache.Set(ctx, "mine", "v", 0)

	assert.Equal(t, 1, cache.Stats().CurrentSize)
}

func TestRedisCache_ServerDown(t *testing.T) {
	ctx := context.Background()
	mr, cache := setupMiniRedis(t)
	mr.Close()

	cache.Set(ctx, "k", "v", time.Minute)
	_, found := cache.Get(ctx, "k")
	assert.False(t, found)
	assert.Error(t, cache.HealthCheck(ctx))
	assert.Equal(t, int64(0), cache.Stats().Sets)
}

func TestNewRedisCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	c, err := NewRedisCache(ctx, RedisConfig{Addr: mr.Addr()}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, c.HealthCheck(ctx))
	require.NoError(t, c.Close())

	opened, err := Open(ctx, Options{Backend: "redis", Redis: RedisConfig{Addr: mr.Addr()}}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "redis", opened.Backend())
	require.NoError(t, opened.Close())
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache(context.Background(), RedisConfig{Addr: addr}, zerolog.Nop())
	assert.ErrorContains(t, err, "redis connection failed")

	c, err := Open(context.Background(), Options{Backend: "redis", Redis: RedisConfig{Addr: addr}}, zerolog.Nop())
	assert.Error(t, err)
	assert.Nil(t, c)
}
