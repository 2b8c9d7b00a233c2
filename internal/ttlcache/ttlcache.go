// Package ttlcache is an in-memory cache whose entries expire according to
// an injected clock instead of the wall clock.
package ttlcache

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache stores values for a fixed TTL measured by its clock.
type Cache struct {
	items *cache.Cache
	ttl   time.Duration
	clock Clock
}

// New returns a cache with the given default TTL. A nil clock means
// SystemClock.
func New(ttl time.Duration, clock Clock) *Cache {
	if clock == nil {
		clock = SystemClock
	}
	return &Cache{
		// Expiry is tracked per entry against clock, so go-cache itself never
		// expires anything and runs no janitor.
		items: cache.New(cache.NoExpiration, 0),
		ttl:   ttl,
		clock: clock,
	}
}

// TTL returns the default time to live.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Set stores v under key for the default TTL.
func (c *Cache) Set(key string, v any) {
	c.SetWithTTL(key, v, c.ttl)
}

// SetWithTTL stores v under key for ttl. A non-positive ttl stores nothing.
func (c *Cache) SetWithTTL(key string, v any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.items.Set(key, entry{value: v, expiresAt: c.clock.Now().Add(ttl)}, cache.NoExpiration)
}

// Get returns the value stored under key unless it has expired.
func (c *Cache) Get(key string) (any, bool) {
	raw, found := c.items.Get(key)
	if !found {
		return nil, false
	}
	e := raw.(entry)
	if !c.clock.Now().Before(e.expiresAt) {
		c.items.Delete(key)
		return nil, false
	}
	return e.value, true
}

// Delete removes key.
func (c *Cache) Delete(key string) {
	c.items.Delete(key)
}

// Flush removes every entry.
func (c *Cache) Flush() {
	c.items.Flush()
}

// DeleteExpired drops every expired entry and returns how many were removed.
func (c *Cache) DeleteExpired() int {
	now := c.clock.Now()
	removed := 0
	for key, item := range c.items.Items() {
		if e, ok := item.Object.(entry); ok && !now.Before(e.expiresAt) {
			c.items.Delete(key)
			removed++
		}
	}
	return removed
}

// ItemCount returns the number of stored entries, expired ones included.
func (c *Cache) ItemCount() int {
	return c.items.ItemCount()
}
