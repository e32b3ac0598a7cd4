package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-process Cache with TTLs and FIFO eviction once
// maxEntries is exceeded. Entries otherwise live until process restart.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]*memoryEntry
	order      *list.List
	maxEntries int
}

type memoryEntry struct {
	value     []byte
	counter   int64
	expiresAt time.Time
	elem      *list.Element
}

// NewMemoryCache creates a MemoryCache bounded to maxEntries; zero or
// negative means unbounded.
func NewMemoryCache(maxEntries int) *MemoryCache {
	return &MemoryCache{
		entries:    make(map[string]*memoryEntry),
		order:      list.New(),
		maxEntries: maxEntries,
	}
}

func (c *MemoryCache) Ping(context.Context) error { return nil }

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(key, &memoryEntry{value: value, expiresAt: expiry(ttl)})
	return nil
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || entry.expired() {
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(key)
	return nil
}

func (c *MemoryCache) IncrWithExpiry(_ context.Context, key string, expiry time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || entry.expired() {
		entry = &memoryEntry{}
		c.put(key, entry)
	}
	entry.counter++
	entry.expiresAt = time.Now().Add(expiry)
	return entry.counter, nil
}

// put inserts under the lock, evicting the oldest entry when over capacity.
func (c *MemoryCache) put(key string, entry *memoryEntry) {
	c.remove(key)
	entry.elem = c.order.PushBack(key)
	c.entries[key] = entry

	if c.maxEntries > 0 && len(c.entries) > c.maxEntries {
		if oldest := c.order.Front(); oldest != nil {
			c.remove(oldest.Value.(string))
		}
	}
}

func (c *MemoryCache) remove(key string) {
	if entry, ok := c.entries[key]; ok {
		c.order.Remove(entry.elem)
		delete(c.entries, key)
	}
}

func (e *memoryEntry) expired() bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

func expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}

// Compile-time check that MemoryCache implements Cache.
var _ Cache = (*MemoryCache)(nil)
