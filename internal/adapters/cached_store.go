// Package adapters wraps month stores with cross-cutting behaviour.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"feedtrend/internal/cache"
	"feedtrend/internal/core"
	"feedtrend/internal/months"
)

var (
	_ months.Store   = (*CachedStore)(nil)
	_ months.Stamper = (*CachedStore)(nil)
)

// CachedStore keeps loaded months and the key list in memory. Save and
// Delete invalidate before returning, so a read after a write never sees
// the old content.
//
// Every invalidation bumps gen. A read fills the cache only when gen is
// unchanged since before its inner read, so a read racing a write cannot
// put back what the write removed.
type CachedStore struct {
	inner months.Store
	sets  *cache.LRUCache[core.RecordSet]

	mu   sync.Mutex
	gen  uint64
	keys []core.MonthKey
	have bool
}

// NewCachedStore wraps inner with sets as the month cache.
func NewCachedStore(inner months.Store, sets *cache.LRUCache[core.RecordSet]) *CachedStore {
	return &CachedStore{inner: inner, sets: sets}
}

// Cache returns the month cache so a cache.Manager can sweep it.
func (s *CachedStore) Cache() *cache.LRUCache[core.RecordSet] {
	return s.sets
}

// Save implements months.Writer.
func (s *CachedStore) Save(ctx context.Context, key core.MonthKey, set core.RecordSet) error {
	err := s.inner.Save(ctx, key, set)
	s.invalidate(key)
	return err
}

// Load implements months.Reader, serving repeated loads from the cache.
func (s *CachedStore) Load(ctx context.Context, key core.MonthKey) (core.RecordSet, error) {
	if set, ok := s.sets.Get(string(key)); ok {
		return set.Clone(), nil
	}
	gen := s.generation()
	set, err := s.inner.Load(ctx, key)
	if err != nil {
		return core.RecordSet{}, err
	}
	s.mu.Lock()
	if s.gen == gen {
		s.sets.Set(string(key), set.Clone())
	}
	s.mu.Unlock()
	return set, nil
}

// ListKeys implements months.Lister. The key list is cached until the next
// write.
func (s *CachedStore) ListKeys(ctx context.Context) ([]core.MonthKey, error) {
	s.mu.Lock()
	if s.have {
		keys := append([]core.MonthKey(nil), s.keys...)
		s.mu.Unlock()
		return keys, nil
	}
	gen := s.gen
	s.mu.Unlock()

	keys, err := s.inner.ListKeys(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.gen == gen {
		s.keys = append([]core.MonthKey(nil), keys...)
		s.have = true
	}
	s.mu.Unlock()
	return keys, nil
}

// Delete implements months.Deleter.
func (s *CachedStore) Delete(ctx context.Context, key core.MonthKey) error {
	err := s.inner.Delete(ctx, key)
	s.invalidate(key)
	return err
}

// SavedAt asks the wrapped store, uncached. It fails with
// errors.ErrUnsupported when the wrapped store keeps no save times.
func (s *CachedStore) SavedAt(ctx context.Context, key core.MonthKey) (time.Time, error) {
	stamper, ok := s.inner.(months.Stamper)
	if !ok {
		return time.Time{}, fmt.Errorf("saved at %s: %w", key, errors.ErrUnsupported)
	}
	return stamper.SavedAt(ctx, key)
}

func (s *CachedStore) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *CachedStore) invalidate(key core.MonthKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.sets.Delete(string(key))
	s.keys, s.have = nil, false
}
