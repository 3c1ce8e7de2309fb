package resilience

import (
	"encoding/json"
	"sync"
	"time"

	"statflow/domain/core"
)

// cacheEntry is immutable once written; expiry is enforced at read time
type cacheEntry struct {
	value     json.RawMessage
	expiresAt time.Time
}

// ResponseCache is a TTL cache keyed by hash(endpoint, params). There is no
// eviction beyond expiry-based invalidation.
//
// Thread Safety: safe for concurrent use.
type ResponseCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[core.CacheKey]cacheEntry
}

// NewResponseCache creates a cache with the given entry TTL
func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[core.CacheKey]cacheEntry),
	}
}

// Get returns the live cached value for the key, if any
func (c *ResponseCache) Get(key core.CacheKey) (json.RawMessage, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock: a concurrent Put may have
		// stored a fresh entry since the read.
		if current, ok := c.entries[key]; ok && c.now().After(current.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return entry.value, true
}

// Put stores a value under the key with the cache TTL
func (c *ResponseCache) Put(key core.CacheKey, value json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Len returns the number of stored entries, expired or not
func (c *ResponseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Key derives the cache key for an endpoint and parameter set. Parameters
// are canonicalized through json.Marshal so semantically equal maps hash
// identically (Go maps marshal with sorted keys).
func Key(endpoint string, params interface{}) (core.CacheKey, error) {
	canonical, err := json.Marshal(params)
	if err != nil {
		return "", err
	}
	return core.NewCacheKey(endpoint, canonical), nil
}
