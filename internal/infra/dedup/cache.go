// internal/infra/dedup/cache.go
package dedup

import (
	"container/list"
	"sync"
	"time"
)

const (
	defaultCapacity = 1024
	defaultTTL      = 10 * time.Minute
)

// Cache is a bounded set of recently seen keys. Keys expire after the TTL and
// the least recently seen key is evicted when the cache is full, so memory use
// is capped no matter how many updates arrive.
type Cache struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
	order   *list.List // front is most recently seen
}

type entry struct {
	key       string
	expiresAt time.Time
	element   *list.Element
}

func New(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		entries:  make(map[string]*entry),
		order:    list.New(),
	}
}

// SeenOrAdd reports whether key was already recorded and still live. If not, it
// records it.
func (c *Cache) SeenOrAdd(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.liveLocked(key) {
		c.order.MoveToFront(c.entries[key].element)
		return true
	}
	c.addLocked(key)
	return false
}

// Add records key, refreshing its expiry if present.
func (c *Cache) Add(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addLocked(key)
}

// Remove deletes key and reports whether it was live.
func (c *Cache) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	live := c.liveLocked(key)
	if e, ok := c.entries[key]; ok {
		c.removeLocked(e)
	}
	return live
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// CleanupExpired removes all expired keys and returns how many were dropped.
func (c *Cache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		e := el.Value.(*entry)
		if now.After(e.expiresAt) {
			c.removeLocked(e)
			removed++
		}
		el = prev
	}
	return removed
}

// liveLocked must be called with the lock held.
func (c *Cache) liveLocked(key string) bool {
	e, ok := c.entries[key]
	if !ok {
		return false
	}
	if c.now().After(e.expiresAt) {
		c.removeLocked(e)
		return false
	}
	return true
}

func (c *Cache) addLocked(key string) {
	expiresAt := c.now().Add(c.ttl)
	if e, ok := c.entries[key]; ok {
		e.expiresAt = expiresAt
		c.order.MoveToFront(e.element)
		return
	}

	for len(c.entries) >= c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.removeLocked(oldest.Value.(*entry))
	}

	e := &entry{key: key, expiresAt: expiresAt}
	e.element = c.order.PushFront(e)
	c.entries[key] = e
}

func (c *Cache) removeLocked(e *entry) {
	c.order.Remove(e.element)
	delete(c.entries, e.key)
}
