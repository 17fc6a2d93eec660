// Package memcache implements the CacheStore port with an in-process TTL map.
package memcache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/orgpulse/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CacheStore = (*Store)(nil)

// entry holds a cached value with its absolute expiry.
type entry struct {
	value  any
	expiry time.Time
}

// Store is a thread-safe in-memory cache with per-entry TTL. Entries are
// immutable once stored; a read past expiry is a miss and lazily deletes the
// entry. There is no single-flight layer: overlapping misses on the same key
// recompute redundantly, which is acceptable at human-driven request rates.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]entry
	defaultTTL time.Duration
	now        func() time.Time
}

// New creates a Store with the given default TTL.
func New(defaultTTL time.Duration) *Store {
	return &Store{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Get returns the value stored under key, treating expired entries as misses.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if s.now().After(e.expiry) {
		s.mu.Lock()
		// Re-check under the write lock: another goroutine may have stored
		// a fresh entry since the read lock was released.
		if cur, ok := s.entries[key]; ok && s.now().After(cur.expiry) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false
	}

	return e.value, true
}

// Set stores a value under key with the default TTL.
func (s *Store) Set(key string, value any) {
	s.SetWithTTL(key, value, s.defaultTTL)
}

// SetWithTTL stores a value under key with an explicit TTL.
func (s *Store) SetWithTTL(key string, value any, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{
		value:  value,
		expiry: s.now().Add(ttl),
	}
}

// Len returns the number of entries currently held, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// StartJanitor sweeps expired entries on the given interval until the context
// is canceled. Lazy deletion in Get already keeps reads correct; the janitor
// only bounds memory held by keys that are never read again.
func (s *Store) StartJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := s.sweep()
			if removed > 0 {
				slog.Debug("cache janitor sweep", "removed", removed)
			}
		}
	}
}

func (s *Store) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, e := range s.entries {
		if now.After(e.expiry) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}
