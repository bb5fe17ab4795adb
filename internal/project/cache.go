package project

import (
	"sync"
	"time"
)

// DefaultCacheTTL is how long cached detections stay valid.
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	info Info
	at   time.Time
}

// Cache holds detection results keyed by file path. It is always passed by
// reference; callers share one cache per detector.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

// NewCache builds a cache. A non-positive ttl selects DefaultCacheTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{ttl: ttl, entries: make(map[string]cacheEntry)}
}

// Get returns the cached info for key when present and fresh. A hit
// refreshes the entry's timestamp.
func (c *Cache) Get(key string) (Info, bool) {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictLocked(now)
	entry, ok := c.entries[key]
	if !ok {
		return Info{}, false
	}
	entry.at = now
	c.entries[key] = entry
	return entry.info, true
}

// Put stores info under key.
func (c *Cache) Put(key string, info Info) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{info: info, at: time.Now()}
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len reports how many entries are currently cached, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) evictLocked(now time.Time) {
	for key, entry := range c.entries {
		if now.Sub(entry.at) > c.ttl {
			delete(c.entries, key)
		}
	}
}
