// Package monthstest holds the behaviour every months.Store must share.
package monthstest

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"feedtrend/internal/core"
	"feedtrend/internal/months"
)

// Sample returns a small scored set with one extra column.
func Sample(texts ...string) core.RecordSet {
	scores := []float64{0.8, -1, 0, 0.5, -0.5}
	rs := core.RecordSet{
		TextColumn: core.DefaultTextColumn,
		Columns:    []string{core.DefaultTextColumn, "Store", core.ScoreColumn, core.AnalysisColumn},
	}
	for i, text := range texts {
		rs.Records = append(rs.Records, core.NewRecord(text, scores[i%len(scores)], map[string]string{"Store": "S" + text}))
	}
	return rs
}

// Run exercises newStore against the Month Store contract. Each subtest
// gets a fresh store.
func Run(t *testing.T, newStore func(t *testing.T) months.Store) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		s := newStore(t)
		want := Sample("great service", "terrible", "it was ok")
		if err := s.Save(ctx, "March-2024", want); err != nil {
			t.Fatalf("save: %v", err)
		}
		got, err := s.Load(ctx, "March-2024")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("load mismatch\n got %+v\nwant %+v", got, want)
		}
	})

	t.Run("last write wins", func(t *testing.T) {
		s := newStore(t)
		if err := s.Save(ctx, "April-2024", Sample("a", "b", "c")); err != nil {
			t.Fatalf("first save: %v", err)
		}
		second := Sample("d")
		if err := s.Save(ctx, "April-2024", second); err != nil {
			t.Fatalf("second save: %v", err)
		}
		got, err := s.Load(ctx, "April-2024")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if !reflect.DeepEqual(got, second) {
			t.Fatalf("expected second save, got %+v", got)
		}
	})

	t.Run("idempotent save", func(t *testing.T) {
		s := newStore(t)
		set := Sample("x", "y")
		for i := 0; i < 2; i++ {
			if err := s.Save(ctx, "May-2024", set); err != nil {
				t.Fatalf("save %d: %v", i, err)
			}
		}
		keys, _ := s.ListKeys(ctx)
		if len(keys) != 1 {
			t.Fatalf("keys = %v", keys)
		}
	})

	t.Run("empty set", func(t *testing.T) {
		s := newStore(t)
		set := Sample()
		if err := s.Save(ctx, "June-2024", set); err != nil {
			t.Fatalf("save: %v", err)
		}
		got, err := s.Load(ctx, "June-2024")
		if err != nil || got.Len() != 0 {
			t.Fatalf("load = %+v, %v", got, err)
		}
	})

	t.Run("load missing", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Load(ctx, "July-2024"); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		if err := s.Save(ctx, "August-2024", Sample("a")); err != nil {
			t.Fatalf("save: %v", err)
		}
		if err := s.Delete(ctx, "August-2024"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := s.Load(ctx, "August-2024"); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("load after delete: expected ErrNotFound, got %v", err)
		}
		keys, err := s.ListKeys(ctx)
		if err != nil || len(keys) != 0 {
			t.Fatalf("keys after delete = %v, %v", keys, err)
		}
		if err := s.Delete(ctx, "August-2024"); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("second delete: expected ErrNotFound, got %v", err)
		}
	})

	t.Run("list keys chronological", func(t *testing.T) {
		s := newStore(t)
		for _, k := range []core.MonthKey{"March-2024", "January-2025", "December-2023"} {
			if err := s.Save(ctx, k, Sample("a")); err != nil {
				t.Fatalf("save %s: %v", k, err)
			}
		}
		keys, err := s.ListKeys(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		want := []core.MonthKey{"December-2023", "March-2024", "January-2025"}
		if !reflect.DeepEqual(keys, want) {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	})

	t.Run("multi-line text", func(t *testing.T) {
		s := newStore(t)
		set := Sample()
		set.Records = append(set.Records,
			core.NewRecord("line one\r\nline two", 0.8, map[string]string{"Store": "north\r\nwing"}))
		if err := s.Save(ctx, "September-2024", set); err != nil {
			t.Fatalf("save: %v", err)
		}
		got, err := s.Load(ctx, "September-2024")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if !reflect.DeepEqual(got, set) {
			t.Fatalf("load mismatch\n got %+v\nwant %+v", got, set)
		}
		if got.Records[0].Text != "line one\nline two" {
			t.Fatalf("text = %q", got.Records[0].Text)
		}
	})

	t.Run("rejects bad key", func(t *testing.T) {
		s := newStore(t)
		if err := s.Save(ctx, "../escape", Sample("a")); !errors.Is(err, core.ErrInvalidMonthKey) {
			t.Fatalf("expected ErrInvalidMonthKey, got %v", err)
		}
	})
}
