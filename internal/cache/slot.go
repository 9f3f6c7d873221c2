package cache

import (
	"sync"
	"time"
)

// Slot holds a single derived value with a TTL. Every Invalidate bumps a
// generation number, and a value computed under an older generation is never
// stored, so a read that raced a mutation cannot repopulate the slot.
type Slot[T any] struct {
	mu         sync.Mutex
	ttl        time.Duration
	now        func() time.Time
	generation uint64
	filled     bool
	data       T
	expiresAt  time.Time
}

// NewSlot creates an empty slot whose values live for ttl.
func NewSlot[T any](ttl time.Duration) *Slot[T] {
	return &Slot[T]{
		ttl: ttl,
		now: time.Now,
	}
}

// Get returns the cached value if present and fresh. On a miss it returns the
// generation the caller must pass to SetIfGeneration.
func (c *Slot[T]) Get() (T, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.filled && c.now().After(c.expiresAt) {
		c.reset()
	}
	return c.data, c.generation, c.filled
}

// SetIfGeneration stores data only if no Invalidate happened since gen was
// read. It reports whether the value was stored.
func (c *Slot[T]) SetIfGeneration(gen uint64, data T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return false
	}
	c.data = data
	c.filled = true
	c.expiresAt = c.now().Add(c.ttl)
	return true
}

// Invalidate drops the value and rejects every in-flight SetIfGeneration.
func (c *Slot[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.reset()
}

// CleanExpired implements Cleaner.
func (c *Slot[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.filled && c.now().After(c.expiresAt) {
		c.reset()
		return 1
	}
	return 0
}

// Filled reports whether a value is currently held, expired or not.
func (c *Slot[T]) Filled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filled
}

func (c *Slot[T]) reset() {
	var zero T
	c.data = zero
	c.filled = false
	c.expiresAt = time.Time{}
}
