package cache

import (
	"sync"
	"time"
)

// Cache is an in-process TTL map. Expired entries are dropped lazily on Get
// and swept on Set once the map grows past sweepAt.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	m       map[string]entry
	now     func() time.Time
	sweepAt int
}

type entry struct {
	val any
	exp time.Time
}

const defaultSweepAt = 256

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Cache{
		ttl:     ttl,
		m:       make(map[string]entry),
		now:     time.Now,
		sweepAt: defaultSweepAt,
	}
}

func (c *Cache) Get(key string) (any, bool) {
	now := c.now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if now.After(e.exp) {
		c.mu.Lock()
		// re-check, a concurrent Set may have refreshed it
		if cur, ok := c.m[key]; ok && now.After(cur.exp) {
			delete(c.m, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return e.val, true
}

func (c *Cache) Set(key string, val any) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.m) >= c.sweepAt {
		for k, e := range c.m {
			if now.After(e.exp) {
				delete(c.m, k)
			}
		}
	}

	c.m[key] = entry{val: val, exp: now.Add(c.ttl)}
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}

// Clear drops every entry. Writers call it after a mutation so readers never
// see a listing older than the write.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.m = make(map[string]entry)
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
