package llm

import (
	"sync"
	"time"
)

// cacheEntry represents a cached draft.
type cacheEntry struct {
	expiry time.Time
	draft  DraftResponse
}

// draftCache provides thread-safe memoization of drafts keyed by prompt
// hash, so repeated requests for the same listing/buyer pair do not hit the
// provider again.
type draftCache struct {
	entries map[string]cacheEntry
	stopCh  chan struct{}
	ttl     time.Duration
	mu      sync.RWMutex
}

// newDraftCache creates a new cache with the specified TTL.
func newDraftCache(ttl time.Duration) *draftCache {
	if ttl == 0 {
		ttl = 15 * time.Minute // Default TTL
	}

	cache := &draftCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}

	go cache.cleanup()

	return cache
}

// get retrieves a draft from the cache if it exists and hasn't expired.
func (c *draftCache) get(key string) (DraftResponse, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists {
		return DraftResponse{}, false
	}

	if time.Now().After(entry.expiry) {
		return DraftResponse{}, false
	}

	return entry.draft, true
}

// set stores a draft in the cache.
func (c *draftCache) set(key string, draft DraftResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		draft:  draft,
		expiry: time.Now().Add(c.ttl),
	}
}

// cleanup periodically removes expired entries.
func (c *draftCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.entries {
				if now.After(entry.expiry) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// size returns the number of entries in the cache.
func (c *draftCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine.
func (c *draftCache) Close() {
	close(c.stopCh)
}
