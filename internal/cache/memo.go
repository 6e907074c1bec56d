// Package cache provides the request memoization layer: an explicit
// TTL-keyed store passed as a collaborator, never ambient global state.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value  interface{}
	expiry time.Time
}

// Memo is a thread-safe memoization map with a fixed TTL. It is a pure
// caching layer: values must be treated as immutable once stored.
type Memo struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

// NewMemo creates a memo with the given TTL. A non-positive TTL
// disables caching entirely (every Get misses).
func NewMemo(ttl time.Duration) *Memo {
	return &Memo{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached value for key if it has not expired.
func (m *Memo) Get(key string) (interface{}, bool) {
	if m.ttl <= 0 {
		return nil, false
	}
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || m.now().After(e.expiry) {
		return nil, false
	}
	return e.value, true
}

// Set stores a value under key with the memo's TTL.
func (m *Memo) Set(key string, value interface{}) {
	if m.ttl <= 0 {
		return
	}
	m.mu.Lock()
	m.entries[key] = entry{value: value, expiry: m.now().Add(m.ttl)}
	m.mu.Unlock()
}

// Invalidate drops every entry. Called when the underlying source
// identity changes.
func (m *Memo) Invalidate() {
	m.mu.Lock()
	m.entries = make(map[string]entry)
	m.mu.Unlock()
}

// Sweep removes expired entries so a long-lived memo does not grow
// without bound.
func (m *Memo) Sweep() {
	now := m.now()
	m.mu.Lock()
	for key, e := range m.entries {
		if now.After(e.expiry) {
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()
}
