package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"feedtrend/internal/core"
	"feedtrend/internal/months"
	"feedtrend/internal/months/monthstest"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "feedtrend.db"))
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository_Contract(t *testing.T) {
	monthstest.Run(t, func(t *testing.T) months.Store {
		return newTestRepo(t)
	})
}

func TestSQLiteRepository_ReopenKeepsMonths(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "feedtrend.db")

	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := repo.Save(ctx, "March-2024", monthstest.Sample("great service")); err != nil {
		t.Fatalf("save: %v", err)
	}
	repo.Close()

	// Migrations must be a no-op on the second open
	repo, err = NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()

	got, err := repo.Load(ctx, "March-2024")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Len() != 1 || got.Records[0].Label != core.Positive {
		t.Fatalf("unexpected set after reopen: %+v", got)
	}
}

func TestSQLiteRepository_RecordsWithoutExtraColumns(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	set := core.RecordSet{
		TextColumn: core.DefaultTextColumn,
		Columns:    []string{core.DefaultTextColumn, core.ScoreColumn, core.AnalysisColumn},
		Records:    []core.Record{core.NewRecord("fine", 0.42, nil)},
	}
	if err := repo.Save(ctx, "May-2024", set); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.Load(ctx, "May-2024")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Records[0].Fields != nil {
		t.Errorf("expected nil fields, got %v", got.Records[0].Fields)
	}
	if got.Records[0].Label != core.Neutral {
		t.Errorf("label = %s, want Neutral", got.Records[0].Label)
	}
}

func TestSQLiteRepository_SavedAt(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, err := repo.SavedAt(ctx, "June-2024"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	before := time.Now().UTC().Add(-time.Minute)
	if err := repo.Save(ctx, "June-2024", monthstest.Sample("a")); err != nil {
		t.Fatalf("save: %v", err)
	}
	at, err := repo.SavedAt(ctx, "June-2024")
	if err != nil {
		t.Fatalf("saved at: %v", err)
	}
	if at.Before(before) {
		t.Errorf("saved_at %v is before %v", at, before)
	}
}
