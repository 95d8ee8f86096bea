// Package csvdir stores each month as feedback_<MonthKey>.csv in a directory.
//
// Writes go to a hidden temp file that is renamed over the target, so a
// concurrent ListKeys or Load sees either the old file or the new one.
package csvdir

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"feedtrend/internal/core"
	"feedtrend/internal/months"
	"feedtrend/internal/table"
)

const (
	filePrefix = "feedback_"
	fileSuffix = ".csv"
)

var (
	_ months.Store   = (*Store)(nil)
	_ months.Stamper = (*Store)(nil)
)

// Store keeps one CSV file per month under a directory. Writes go through
// a temp file and a rename so readers never see a partial month.
type Store struct {
	mu         sync.Mutex
	dir        string
	textColumn string
}

// New returns a store rooted at dir. The directory is created on first save.
// textColumn names the feedback text column in stored files.
func New(dir, textColumn string) *Store {
	if textColumn == "" {
		textColumn = core.DefaultTextColumn
	}
	return &Store{dir: dir, textColumn: textColumn}
}

// FileName returns the file name used for key.
func FileName(key core.MonthKey) string {
	return filePrefix + string(key) + fileSuffix
}

func (s *Store) path(key core.MonthKey) string {
	return filepath.Join(s.dir, FileName(key))
}

// Save writes set to the month's file, replacing it whole.
func (s *Store) Save(ctx context.Context, key core.MonthKey, set core.RecordSet) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if err := set.Validate(); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	raw, err := table.FromRecordSet(set).Bytes()
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, "."+filePrefix+"*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		return fmt.Errorf("replace %s: %w", key, err)
	}

	slog.DebugContext(ctx, "Month saved to CSV", "month", key, "records", set.Len(), "path", s.path(key))
	return nil
}

// Load reads the month's file back into a record set. A file without the
// text, score and analysis columns is core.ErrCorruptMonth.
func (s *Store) Load(_ context.Context, key core.MonthKey) (core.RecordSet, error) {
	if err := key.Validate(); err != nil {
		return core.RecordSet{}, err
	}
	f, err := os.Open(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return core.RecordSet{}, fmt.Errorf("load %s: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return core.RecordSet{}, fmt.Errorf("open %s: %w", key, err)
	}
	defer f.Close()

	t, err := table.ReadCSV(f)
	if err != nil {
		return core.RecordSet{}, fmt.Errorf("read %s: %w: %v", key, core.ErrCorruptMonth, err)
	}
	set, err := table.ToRecordSet(t, s.textColumn)
	if err != nil {
		return core.RecordSet{}, fmt.Errorf("decode %s: %w", key, err)
	}
	return set, nil
}

// ListKeys returns the month of every feedback file in the directory. Files
// whose names do not hold a canonical month key are ignored. A missing
// directory means no months.
func (s *Store) ListKeys(ctx context.Context) ([]core.MonthKey, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read data directory: %w", err)
	}

	keys := make([]core.MonthKey, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		key := core.MonthKey(strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix))
		if err := key.Validate(); err != nil {
			slog.DebugContext(ctx, "Skipping file without month key", "file", name)
			continue
		}
		keys = append(keys, key)
	}
	core.SortMonthKeys(keys)
	return keys, nil
}

// Delete removes the month's file.
func (s *Store) Delete(_ context.Context, key core.MonthKey) error {
	if err := key.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// SavedAt returns the modification time of the month's file.
func (s *Store) SavedAt(_ context.Context, key core.MonthKey) (time.Time, error) {
	if err := key.Validate(); err != nil {
		return time.Time{}, err
	}
	info, err := os.Stat(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return time.Time{}, fmt.Errorf("saved at %s: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("stat %s: %w", key, err)
	}
	return info.ModTime().UTC(), nil
}
