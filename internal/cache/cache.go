// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package cache stores raw playlist documents between builds.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Cache provides thread-safe string caching with expiration support.
// A ttl <= 0 stores the value without expiry.
type Cache interface {
	// Get retrieves a value. The bool is false if missing or expired.
	Get(ctx context.Context, key string) (string, bool)
	// Set stores a value with the specified TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration)
	// Delete removes a value.
	Delete(ctx context.Context, key string)
	// Stats returns cache statistics.
	Stats() CacheStats
	// Backend names the implementation ("memory", "redis", "none").
	Backend() string
	// Close releases background resources.
	Close() error
}

// CacheStats holds cache performance metrics.
type CacheStats struct {
	Hits        int64 // Number of successful Get operations
	Misses      int64 // Number of failed Get operations (not found or expired)
	Sets        int64 // Number of Set operations
	Evictions   int64 // Number of expired entries cleaned up
	CurrentSize int   // Current number of cached entries
}

type counters struct {
	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	evictions atomic.Int64
}

func (c *counters) snapshot(size int) CacheStats {
	return CacheStats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Sets:        c.sets.Load(),
		Evictions:   c.evictions.Load(),
		CurrentSize: size,
	}
}

type entry struct {
	value      string
	expiration time.Time // zero means no expiry
}

func (e *entry) isExpired(now time.Time) bool {
	return !e.expiration.IsZero() && now.After(e.expiration)
}

type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	stats   counters
	janitor *janitor
}

// NewMemoryCache creates an in-memory cache. A positive cleanupInterval starts
// a janitor goroutine that drops expired entries; Close stops it.
func NewMemoryCache(cleanupInterval time.Duration) Cache {
	c := &memoryCache{entries: make(map[string]*entry)}
	if cleanupInterval > 0 {
		c.janitor = &janitor{interval: cleanupInterval, stop: make(chan struct{})}
		go c.janitor.run(c)
	}
	return c
}

func (c *memoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	e, found := c.entries[key]
	c.mu.RUnlock()

	if !found || e.isExpired(time.Now()) {
		c.stats.misses.Add(1)
		return "", false
	}
	c.stats.hits.Add(1)
	return e.value, true
}

func (c *memoryCache) Set(_ context.Context, key, value string, ttl time.Duration) {
	e := &entry{value: value}
	if ttl > 0 {
		e.expiration = time.Now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	c.stats.sets.Add(1)
}

func (c *memoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *memoryCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats.snapshot(len(c.entries))
}

func (c *memoryCache) Backend() string { return "memory" }

// deleteExpired removes all expired entries and returns how many were dropped.
func (c *memoryCache) deleteExpired() int {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for key, e := range c.entries {
		if e.isExpired(now) {
			delete(c.entries, key)
			count++
		}
	}
	c.stats.evictions.Add(int64(count))
	return count
}

func (c *memoryCache) Close() error {
	if c.janitor != nil {
		c.janitor.once.Do(func() { close(c.janitor.stop) })
	}
	return nil
}

// janitor performs periodic cleanup of expired entries.
type janitor struct {
	interval time.Duration
	stop     chan struct{}
	once     sync.Once
}

func (j *janitor) run(c *memoryCache) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-j.stop:
			return
		}
	}
}

type noOpCache struct{}

// NewNoOpCache creates a cache that doesn't cache anything.
func NewNoOpCache() Cache {
	return noOpCache{}
}

func (noOpCache) Get(context.Context, string) (string, bool) { return "", false }
func (noOpCache) Set(context.Context, string, string, time.Duration) {}
func (noOpCache) Delete(context.Context, string) {}
func (noOpCache) Stats() CacheStats { return CacheStats{} }
func (noOpCache) Backend() string { return "none" }
func (noOpCache) Close() error { return nil }
