package csvdir

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"feedtrend/internal/core"
	"feedtrend/internal/months"
	"feedtrend/internal/months/monthstest"
)

func TestStoreContract(t *testing.T) {
	monthstest.Run(t, func(t *testing.T) months.Store {
		return New(filepath.Join(t.TempDir(), "uploaded_data"), "")
	})
}

func TestSaveCreatesDirectoryAndNamedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploaded_data")
	s := New(dir, "Feedback")
	if err := s.Save(context.Background(), "March-2024", monthstest.Sample("great service")); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "feedback_March-2024.csv"))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	want := "Feedback,Store,score,analysis\ngreat service,Sgreat service,0.8,Positive\n"
	if string(raw) != want {
		t.Fatalf("stored file = %q, want %q", raw, want)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestListKeysIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, "")
	ctx := context.Background()
	if err := s.Save(ctx, "May-2024", monthstest.Sample("a")); err != nil {
		t.Fatalf("save: %v", err)
	}
	for _, name := range []string{"notes.txt", "feedback_latest.csv", ".feedback_123.tmp", "sentiment_May-2024.csv"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "feedback_June-2024.csv"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	keys, err := s.ListKeys(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(keys) != 1 || keys[0] != "May-2024" {
		t.Fatalf("keys = %v", keys)
	}
}

func TestListKeysMissingDirectory(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "absent"), "")
	keys, err := s.ListKeys(context.Background())
	if err != nil || len(keys) != 0 {
		t.Fatalf("keys = %v, err = %v", keys, err)
	}
}

func TestLoadHandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	content := "feedback,score,analysis,Channel\nfriendly staff,0.375,Neutral,email\n"
	if err := os.WriteFile(filepath.Join(dir, FileName("January-2024")), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	set, err := New(dir, "Feedback").Load(context.Background(), "January-2024")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if set.TextColumn != "feedback" || set.Len() != 1 || set.Records[0].Fields["Channel"] != "email" {
		t.Fatalf("set = %+v", set)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName("January-2024")), []byte("Feedback\nhello\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := New(dir, "").Load(context.Background(), "January-2024")
	if !errors.Is(err, core.ErrCorruptMonth) {
		t.Fatalf("expected ErrCorruptMonth, got %v", err)
	}
	if !strings.Contains(err.Error(), "January-2024") {
		t.Fatalf("error should name the month: %v", err)
	}
}

func TestSavedAtUsesFileTime(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, "")
	ctx := context.Background()
	if _, err := s.SavedAt(ctx, "May-2024"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before save, got %v", err)
	}
	if _, err := s.SavedAt(ctx, "bogus"); !errors.Is(err, core.ErrInvalidMonthKey) {
		t.Fatalf("expected ErrInvalidMonthKey, got %v", err)
	}

	if err := s.Save(ctx, "May-2024", monthstest.Sample("a")); err != nil {
		t.Fatalf("save: %v", err)
	}
	stamp := time.Date(2024, time.June, 1, 8, 30, 0, 0, time.UTC)
	if err := os.Chtimes(filepath.Join(dir, FileName("May-2024")), stamp, stamp); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	at, err := s.SavedAt(ctx, "May-2024")
	if err != nil {
		t.Fatalf("saved at: %v", err)
	}
	if !at.Equal(stamp) {
		t.Fatalf("saved at = %v, want %v", at, stamp)
	}
}
