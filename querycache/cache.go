package querycache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Query keys shared by the resource services. A mutation invalidates the key
// of the resource it touched.
const (
	KeyCrops         = "crops"
	KeyProducers     = "producers"
	KeyProducerCrops = "producerCrops"

	// PrefixStatistics groups every statistics query so that any mutation
	// affecting the aggregates can drop them together.
	PrefixStatistics = "statistics/"
)

type entry struct {
	value   any
	expires time.Time
}

// Cache holds recent query results for a short TTL and collapses concurrent
// fetches of the same key into one request.
type Cache struct {
	ttl     time.Duration
	nowTime func() time.Time
	group   singleflight.Group

	mu          sync.RWMutex
	entries     map[string]entry
	generations map[string]uint64
}

// CacheOption defines a function type to modify the Cache instance.
type CacheOption func(*Cache)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) CacheOption {
	return func(c *Cache) {
		c.nowTime = nowFunc
	}
}

// New creates a Cache whose entries live for ttl. A ttl of zero or less turns
// caching off but keeps concurrent fetches collapsed.
func New(ttl time.Duration, options ...CacheOption) *Cache {
	c := &Cache{
		ttl:         ttl,
		nowTime:     time.Now,
		entries:     make(map[string]entry),
		generations: make(map[string]uint64),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Get returns the cached value for key while it is fresh, otherwise it runs
// fetch and caches a successful result. Errors are never cached. A nil cache
// always calls fetch.
func Get[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return fetch(ctx)
	}

	var zero T
	if v, ok := c.lookup(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	// The shared fetch outlives any single caller; each caller stops waiting
	// when its own ctx is done.
	generation := c.generation(key)
	ch := c.group.DoChan(key, func() (any, error) {
		value, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.store(key, generation, value)
		return value, nil
	})

	var v any
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v = res.Val
	}

	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("[Get] cached value for %q is %T, not %T", key, v, zero)
	}
	return typed, nil
}

// Invalidate drops keys. A fetch already in flight for one of them will not
// repopulate it.
func (c *Cache) Invalidate(keys ...string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		c.dropLocked(key)
	}
}

// InvalidatePrefix drops every key starting with prefix, including ones with
// a fetch in flight.
func (c *Cache) InvalidatePrefix(prefix string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.generations {
		if strings.HasPrefix(key, prefix) {
			c.dropLocked(key)
		}
	}
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			c.dropLocked(key)
		}
	}
}

// Clear drops everything, e.g. when the user logs out.
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.generations {
		c.dropLocked(key)
	}
	for key := range c.entries {
		c.dropLocked(key)
	}
}

// Len returns the number of fresh entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	now := c.nowTime()
	n := 0
	for _, e := range c.entries {
		if now.Before(e.expires) {
			n++
		}
	}
	return n
}

func (c *Cache) lookup(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || !c.nowTime().Before(e.expires) {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) generation(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.generations[key]; !ok {
		c.generations[key] = 0
	}
	return c.generations[key]
}

func (c *Cache) store(key string, generation uint64, value any) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[key] != generation {
		return
	}
	c.entries[key] = entry{value: value, expires: c.nowTime().Add(c.ttl)}
}

func (c *Cache) dropLocked(key string) {
	delete(c.entries, key)
	c.generations[key]++
	c.group.Forget(key)
}
