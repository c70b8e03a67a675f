package wbi

import (
	"sync"
	"time"
)

type keyCache struct {
	mu        sync.RWMutex
	ttl       time.Duration
	keys      Keys
	fetchedAt time.Time
}

func newKeyCache(ttl time.Duration) *keyCache {
	return &keyCache{ttl: ttl}
}

func (c *keyCache) get(now time.Time) (Keys, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.keys.Img == "" || c.keys.Sub == "" {
		return Keys{}, false
	}
	if !now.Before(c.fetchedAt.Add(c.ttl)) {
		return Keys{}, false
	}
	return c.keys, true
}

func (c *keyCache) set(keys Keys, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = keys
	c.fetchedAt = now
}
