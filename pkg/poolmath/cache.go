package poolmath

import (
	"math/big"
	"sync"
	"sync/atomic"
)

// CacheKey identifies a pool computation. Base is the canonical key of the pooled die.
type CacheKey struct {
	Base     string
	PoolSize int
	Start    int
	Stop     int
}

// cacheEntry is a doubly-linked list node holding one computed pool.
type cacheEntry struct {
	key   CacheKey
	value map[int]*big.Int
	prev  *cacheEntry
	next  *cacheEntry
}

// Cache is a thread-safe LRU cache of pool distributions. Nested and
// repeated pools in one expression are computed once.
//
// Values handed to Put and returned by Get are shared; callers must treat
// them as read-only.
type Cache struct {
	mu         sync.Mutex
	entries    map[CacheKey]*cacheEntry
	head       *cacheEntry // Most recently used.
	tail       *cacheEntry // Least recently used.
	maxEntries int

	hits   atomic.Int64
	misses atomic.Int64
}

// CacheStats holds cache counters.
type CacheStats struct {
	Hits       int64
	Misses     int64
	Entries    int
	MaxEntries int
}

// HitRate returns the cache hit rate as a fraction (0.0 to 1.0).
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// NewCache creates a cache holding at most maxEntries pools.
// Panics if maxEntries is not positive.
func NewCache(maxEntries int) *Cache {
	if maxEntries <= 0 {
		panic("poolmath: cache capacity must be positive")
	}

	return &Cache{
		entries:    make(map[CacheKey]*cacheEntry),
		maxEntries: maxEntries,
	}
}

// Get returns the cached pool for key.
func (c *Cache) Get(key CacheKey) (map[int]*big.Int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)

		return nil, false
	}

	c.hits.Add(1)
	c.moveToFront(ent)

	return ent.value, true
}

// Put stores a pool, evicting the least recently used entry when full.
func (c *Cache) Put(key CacheKey, value map[int]*big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.entries[key]; ok {
		ent.value = value
		c.moveToFront(ent)

		return
	}

	for len(c.entries) >= c.maxEntries && c.tail != nil {
		c.removeEntry(c.tail)
	}

	ent := &cacheEntry{key: key, value: value}
	c.entries[key] = ent
	c.addToFront(ent)
}

// GetOrCompute returns the cached pool for key, computing and storing it on a miss.
// Errors from compute are returned and nothing is stored.
func (c *Cache) GetOrCompute(key CacheKey, compute func() (map[int]*big.Int, error)) (map[int]*big.Int, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}

	value, err := compute()
	if err != nil {
		return nil, err
	}

	c.Put(key, value)

	return value, nil
}

// Len returns the number of cached pools.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Stats returns current cache statistics.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CacheStats{
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Entries:    len(c.entries),
		MaxEntries: c.maxEntries,
	}
}

func (c *Cache) addToFront(ent *cacheEntry) {
	ent.prev = nil
	ent.next = c.head

	if c.head != nil {
		c.head.prev = ent
	}

	c.head = ent

	if c.tail == nil {
		c.tail = ent
	}
}

func (c *Cache) unlink(ent *cacheEntry) {
	if ent.prev != nil {
		ent.prev.next = ent.next
	} else {
		c.head = ent.next
	}

	if ent.next != nil {
		ent.next.prev = ent.prev
	} else {
		c.tail = ent.prev
	}

	ent.prev = nil
	ent.next = nil
}

func (c *Cache) moveToFront(ent *cacheEntry) {
	if c.head == ent {
		return
	}

	c.unlink(ent)
	c.addToFront(ent)
}

func (c *Cache) removeEntry(ent *cacheEntry) {
	c.unlink(ent)
	delete(c.entries, ent.key)
}
