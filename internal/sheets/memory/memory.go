package memory

import (
	"context"
	"sync"

	"feedtrend/internal/core"
	ports "feedtrend/internal/sheets"
)

var _ ports.SummaryStore = (*Store)(nil)

// Store keeps exported summaries in memory. It backs the worker when no
// spreadsheet is configured.
type Store struct {
	mu   sync.Mutex
	rows map[core.MonthKey]core.Counts
}

// New returns an empty summary store.
func New() *Store {
	return &Store{rows: make(map[core.MonthKey]core.Counts)}
}

// WriteMonthSummary replaces the counts recorded for month.
func (s *Store) WriteMonthSummary(_ context.Context, month core.MonthKey, counts core.Counts) error {
	c := core.NewCounts()
	for l, n := range counts {
		c[l] = n
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[month] = c
	return nil
}

// RemoveMonthSummary forgets month. Removing an absent month is not an error.
func (s *Store) RemoveMonthSummary(_ context.Context, month core.MonthKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, month)
	return nil
}

// ExportedMonths lists summarized months oldest first.
func (s *Store) ExportedMonths(_ context.Context) ([]core.MonthKey, error) {
	s.mu.Lock()
	keys := make([]core.MonthKey, 0, len(s.rows))
	for k := range s.rows {
		keys = append(keys, k)
	}
	s.mu.Unlock()
	core.SortMonthKeys(keys)
	return keys, nil
}

// Summary returns the exported counts for month.
func (s *Store) Summary(month core.MonthKey) (core.Counts, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.rows[month]
	return c, ok
}
