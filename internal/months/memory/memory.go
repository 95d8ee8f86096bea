package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"feedtrend/internal/core"
	"feedtrend/internal/months"
)

var (
	_ months.Store   = (*Store)(nil)
	_ months.Stamper = (*Store)(nil)
)

// Store keeps month sets in a map. Sets are cloned on the way in and out.
type Store struct {
	mu    sync.Mutex
	sets  map[core.MonthKey]core.RecordSet
	saved map[core.MonthKey]time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		sets:  make(map[core.MonthKey]core.RecordSet),
		saved: make(map[core.MonthKey]time.Time),
	}
}

// Save stores a copy of set under key.
func (s *Store) Save(_ context.Context, key core.MonthKey, set core.RecordSet) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if err := set.Validate(); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[key] = set.Clone()
	s.saved[key] = time.Now().UTC()
	return nil
}

// Load returns a copy of the set stored under key.
func (s *Store) Load(_ context.Context, key core.MonthKey) (core.RecordSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[key]
	if !ok {
		return core.RecordSet{}, fmt.Errorf("load %s: %w", key, core.ErrNotFound)
	}
	return set.Clone(), nil
}

// ListKeys returns the stored keys oldest month first.
func (s *Store) ListKeys(_ context.Context) ([]core.MonthKey, error) {
	s.mu.Lock()
	keys := make([]core.MonthKey, 0, len(s.sets))
	for k := range s.sets {
		keys = append(keys, k)
	}
	s.mu.Unlock()
	core.SortMonthKeys(keys)
	return keys, nil
}

// Delete drops key.
func (s *Store) Delete(_ context.Context, key core.MonthKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sets[key]; !ok {
		return fmt.Errorf("delete %s: %w", key, core.ErrNotFound)
	}
	delete(s.sets, key)
	delete(s.saved, key)
	return nil
}

// SavedAt returns when key was last saved.
func (s *Store) SavedAt(_ context.Context, key core.MonthKey) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.saved[key]
	if !ok {
		return time.Time{}, fmt.Errorf("saved at %s: %w", key, core.ErrNotFound)
	}
	return at, nil
}
