package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/match-center/internal/platform/resilience"
)

type entry struct {
	value     any
	expiresAt time.Time
	staleAt   time.Time
}

type Store struct {
	mu       sync.RWMutex
	entries  map[string]entry
	ttl      time.Duration
	staleTTL time.Duration
	flight   resilience.SingleFlight
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
	}
}

// NewStoreWithStale keeps expired entries readable through GetStale for an
// extra window after the regular ttl passes. Get still returns fresh values
// only.
func NewStoreWithStale(ttl, staleTTL time.Duration) *Store {
	return &Store{
		entries:  make(map[string]entry),
		ttl:      ttl,
		staleTTL: staleTTL,
	}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	now := time.Now()
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && !e.expiresAt.After(now) {
		if e.staleAt.After(now) {
			return nil, false
		}
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false
	}

	return e.value, true
}

// GetStale returns a value that is fresh or still inside the stale window.
// The second result reports presence, the third reports staleness.
func (s *Store) GetStale(_ context.Context, key string) (any, bool, bool) {
	if key == "" {
		return nil, false, false
	}

	now := time.Now()
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, false
	}
	if s.ttl <= 0 || e.expiresAt.After(now) {
		return e.value, true, false
	}
	if e.staleAt.After(now) {
		return e.value, true, true
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil, false, false
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}

	expiresAt := time.Time{}
	staleAt := time.Time{}
	if s.ttl > 0 {
		now := time.Now()
		expiresAt = now.Add(s.ttl)
		if s.staleTTL > 0 {
			staleAt = now.Add(s.staleTTL)
		}
	}

	s.mu.Lock()
	s.entries[key] = entry{
		value:     value,
		expiresAt: expiresAt,
		staleAt:   staleAt,
	}
	s.mu.Unlock()
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

func (s *Store) DeletePrefix(_ context.Context, prefix string) {
	if prefix == "" {
		return
	}

	s.mu.Lock()
	for key := range s.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
}

func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	value, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.Set(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}
