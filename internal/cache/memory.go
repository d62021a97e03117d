package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Verdicts go stale as timetables and fares change; entries must
// always expire, so this is the ceiling a caller can raise but the
// floor no entry escapes.
const fallbackVerdictTTL = 15 * time.Minute

// MemoryCache keeps verdicts in process memory with per-entry TTL.
type MemoryCache struct {
	cache      *gocache.Cache
	defaultTTL time.Duration
}

// NewMemoryCache creates an in-memory verdict store. A non-positive
// defaultTTL falls back to fallbackVerdictTTL, and a non-positive
// cleanupInterval is derived from the TTL, so no configuration yields
// entries that never expire.
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	if defaultTTL <= 0 {
		defaultTTL = fallbackVerdictTTL
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 2 * defaultTTL
	}
	return &MemoryCache{
		cache:      gocache.New(defaultTTL, cleanupInterval),
		defaultTTL: defaultTTL,
	}
}

// Get returns the stored verdict bytes for key, if present and fresh.
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	if val, found := c.cache.Get(key); found {
		return val.([]byte), true
	}
	return nil, false
}

// Set stores value under key. A non-positive ttl uses the cache
// default rather than pinning the entry forever.
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.cache.Set(key, value, ttl)
	return nil
}

// Delete removes the entry for key.
func (c *MemoryCache) Delete(key string) error {
	c.cache.Delete(key)
	return nil
}

// Clear drops every entry.
func (c *MemoryCache) Clear() error {
	c.cache.Flush()
	return nil
}
