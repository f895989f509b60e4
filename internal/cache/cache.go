package cache

import (
	"sync"
	"time"
)

// entry stores one cached value with the time it was written.
type entry[V any] struct {
	storedAt time.Time
	value    V
}

// Store caches values per key for a fixed TTL. Expired entries are treated
// as misses and overwritten by the next Set; there is no background purge.
// Safe for concurrent use.
type Store[V any] struct {
	ttl        time.Duration
	now        func() time.Time
	maxEntries int

	mu    sync.RWMutex
	items map[string]entry[V]
}

type Option[V any] func(*Store[V])

// WithClock replaces the time source. Tests use this for deterministic
// expiry.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(s *Store[V]) { s.now = now }
}

// WithMaxEntries bounds the store to n entries, evicting best-effort on Set.
// n <= 0 means unbounded.
func WithMaxEntries[V any](n int) Option[V] {
	return func(s *Store[V]) { s.maxEntries = n }
}

func New[V any](ttl time.Duration, opts ...Option[V]) *Store[V] {
	s := &Store[V]{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]entry[V]),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Get returns the value for key if it was stored less than TTL ago.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.RLock()
	e, ok := s.items[key]
	s.mu.RUnlock()
	if !ok || s.now().Sub(e.storedAt) >= s.ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set overwrites any existing entry for key with value and the current time.
func (s *Store[V]) Set(key string, value V) {
	now := s.now()
	s.mu.Lock()
	s.items[key] = entry[V]{storedAt: now, value: value}
	if s.maxEntries > 0 && len(s.items) > s.maxEntries {
		// best-effort cap: drop expired entries first, then arbitrary ones
		for k, e := range s.items {
			if k == key {
				continue
			}
			if now.Sub(e.storedAt) >= s.ttl {
				delete(s.items, k)
			}
			if len(s.items) <= s.maxEntries {
				break
			}
		}
		for k := range s.items {
			if len(s.items) <= s.maxEntries {
				break
			}
			if k == key {
				continue
			}
			delete(s.items, k)
		}
	}
	s.mu.Unlock()
}

// Len reports the number of entries currently held, expired or not.
func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
