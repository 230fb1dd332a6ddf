// Package dedupe keeps a bounded TTL'd set of processed event ids so the
// worker drops replayed Kafka messages instead of re-indexing them.
package dedupe

import (
	"container/list"
	"sync"
	"time"
)

type record struct {
	id string
	ts time.Time
}

// Cache is a fixed-capacity seen-set with per-entry TTL.
type Cache struct {
	mu       sync.Mutex
	items    map[string]*list.Element
	order    *list.List
	capacity int
	ttl      time.Duration
}

// NewCache creates a cache with the provided capacity and ttl.
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
		capacity: capacity,
		ttl:      ttl,
	}
}

// IsSeen reports whether the id was marked inside the ttl window. It does
// not mark; use MarkSeen for that.
func (c *Cache) IsSeen(id string) bool {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[id]
	if !ok {
		return false
	}
	return now.Sub(el.Value.(record).ts) <= c.ttl
}

// MarkSeen records an id, evicting expired and over-capacity entries.
func (c *Cache) MarkSeen(id string) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[id]; ok {
		c.order.Remove(el)
	}
	c.items[id] = c.order.PushBack(record{id: id, ts: now})
	c.evict(now)
}

// Len returns the number of tracked ids.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cache) evict(now time.Time) {
	cutoff := now.Add(-c.ttl)

	for c.order.Len() > 0 {
		front := c.order.Front()
		rec := front.Value.(record)
		if len(c.items) <= c.capacity && !rec.ts.Before(cutoff) {
			return
		}
		c.order.Remove(front)
		delete(c.items, rec.id)
	}
}
