package cache

import (
	"errors"
	"sync"
)

// Cache memoizes extraction results. Keys are a namespace prefix followed by
// the exact input text; values are JSON encodings of the result, where a JSON
// null records an explicit "no value" that is distinct from a miss.
//
// The extractors only ever call Get and Put. Creating, clearing and evicting
// entries belongs to whoever owns the cache.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte)
}

// ErrKeyNotFound is returned by stores with error-returning lookups on a miss.
var ErrKeyNotFound = errors.New("key not found")

// Noop disables memoization without changing results.
type Noop struct{}

func (Noop) Get(string) ([]byte, bool) { return nil, false }
func (Noop) Put(string, []byte)        {}

// Memory is an in-process cache safe for concurrent extraction passes.
// Concurrent writers of one key always write identical values, so last write
// wins harmlessly.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemory returns an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]byte)}
}

func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	v, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

func (m *Memory) Put(key string, value []byte) {
	cp := append([]byte(nil), value...)
	m.mu.Lock()
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	m.entries[key] = cp
	m.mu.Unlock()
}

// Len reports the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Counting wraps a Cache and counts hits and misses. Useful for reporting how
// much of a crawl pass was served from memo.
type Counting struct {
	Inner Cache

	mu     sync.Mutex
	hits   int
	misses int
}

func (c *Counting) Get(key string) ([]byte, bool) {
	inner := c.Inner
	if inner == nil {
		inner = Noop{}
	}
	v, ok := inner.Get(key)
	c.mu.Lock()
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()
	return v, ok
}

func (c *Counting) Put(key string, value []byte) {
	if c.Inner != nil {
		c.Inner.Put(key, value)
	}
}

// Stats returns hit and miss counts so far.
func (c *Counting) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
