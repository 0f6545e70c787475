package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/box-league/internal/platform/resilience"
)

// Store is an in-process TTL cache. A nil *Store is a valid cache that never
// holds anything, which is how callers disable caching.
type Store[V any] struct {
	mu         sync.RWMutex
	entries    map[string]entry[V]
	ttl        time.Duration
	maxEntries int
	loads      resilience.Group[V]
	now        func() time.Time
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// New returns a cache whose entries live for ttl. maxEntries <= 0 means
// unbounded; a full cache first drops expired entries, then the one closest
// to expiry.
func New[V any](ttl time.Duration, maxEntries int) *Store[V] {
	if ttl <= 0 {
		return nil
	}
	return &Store[V]{
		entries:    make(map[string]entry[V]),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (s *Store[V]) Get(key string) (V, bool) {
	var zero V
	if s == nil || key == "" {
		return zero, false
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if !e.expiresAt.After(s.now()) {
		s.Delete(key)
		return zero, false
	}
	return e.value, true
}

func (s *Store[V]) Set(key string, value V) {
	if s == nil || key == "" {
		return
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[key]; !exists && s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
		s.evict(now)
	}
	s.entries[key] = entry[V]{value: value, expiresAt: now.Add(s.ttl)}
}

func (s *Store[V]) evict(now time.Time) {
	var (
		victim   string
		earliest time.Time
	)
	for key, e := range s.entries {
		if !e.expiresAt.After(now) {
			delete(s.entries, key)
			continue
		}
		if victim == "" || e.expiresAt.Before(earliest) {
			victim, earliest = key, e.expiresAt
		}
	}
	if len(s.entries) >= s.maxEntries && victim != "" {
		delete(s.entries, victim)
	}
}

// Delete drops key and detaches any in-flight load so later callers reload.
func (s *Store[V]) Delete(key string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	s.loads.Forget(key)
}

func (s *Store[V]) DeletePrefix(prefix string) {
	if s == nil || prefix == "" {
		return
	}
	s.mu.Lock()
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
}

func (s *Store[V]) Clear() {
	if s == nil {
		return
	}
	s.mu.Lock()
	clear(s.entries)
	s.mu.Unlock()
}

func (s *Store[V]) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// GetOrLoad returns the cached value for key or runs load once across
// concurrent callers and caches a successful result.
func (s *Store[V]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (V, error)) (V, error) {
	if s == nil || key == "" {
		return load(ctx)
	}
	if v, ok := s.Get(key); ok {
		return v, nil
	}

	v, _, err := s.loads.Do(key, func() (V, error) {
		if cached, ok := s.Get(key); ok {
			return cached, nil
		}
		loaded, err := load(ctx)
		if err != nil {
			return loaded, err
		}
		s.Set(key, loaded)
		return loaded, nil
	})
	return v, err
}
