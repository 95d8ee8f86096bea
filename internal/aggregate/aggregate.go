// Package aggregate merges stored months and counts their sentiment.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"feedtrend/internal/core"
	"feedtrend/internal/months"
)

// Source is what Trends needs from a month store.
type Source interface {
	months.Reader
	months.Lister
}

// Combined is a cross-month record set. Every record carries its origin
// month and Columns ends with core.MonthColumn.
type Combined struct {
	TextColumn string
	Columns    []string
	Records    []core.Record
	Months     []core.MonthKey // keys that resolved, in input order
	Missing    []core.MonthKey // keys skipped because they were not found
}

// Len returns the number of combined records.
func (c Combined) Len() int {
	return len(c.Records)
}

// RecordSet returns the combined records as a set, for CSV rendering.
func (c Combined) RecordSet() core.RecordSet {
	return core.RecordSet{TextColumn: c.TextColumn, Columns: c.Columns, Records: c.Records}
}

// Summary counts the combined records per origin month. Months that
// resolved with no records still get a zero group.
func (c Combined) Summary() core.Summary {
	s := core.Summary{ByMonth: true}
	index := make(map[core.MonthKey]int, len(c.Months))
	for _, m := range c.Months {
		if _, ok := index[m]; ok {
			continue
		}
		index[m] = len(s.Groups)
		s.Groups = append(s.Groups, core.SummaryGroup{Month: m, Counts: core.NewCounts()})
	}
	for _, r := range c.Records {
		i, ok := index[r.Month]
		if !ok {
			i = len(s.Groups)
			index[r.Month] = i
			s.Groups = append(s.Groups, core.SummaryGroup{Month: r.Month, Counts: core.NewCounts()})
		}
		s.Groups[i].Counts[r.Label]++
	}
	return s
}

// Combine loads keys in order and concatenates their records, tagging each
// with its origin month. Keys that are not found are skipped; any other
// load failure aborts.
func Combine(ctx context.Context, r months.Reader, keys []core.MonthKey) (Combined, error) {
	var c Combined
	seen := make(map[string]bool)

	for _, key := range keys {
		set, err := r.Load(ctx, key)
		if errors.Is(err, core.ErrNotFound) {
			slog.DebugContext(ctx, "Skipping month without data", "month", key)
			c.Missing = append(c.Missing, key)
			continue
		}
		if err != nil {
			return Combined{}, fmt.Errorf("combine %s: %w", key, err)
		}

		if c.TextColumn == "" {
			c.TextColumn = set.TextColumn
		}
		for _, col := range set.Columns {
			if col == set.TextColumn {
				col = c.TextColumn
			}
			if col == core.MonthColumn || seen[col] {
				continue
			}
			seen[col] = true
			c.Columns = append(c.Columns, col)
		}

		c.Months = append(c.Months, key)
		for _, rec := range set.Records {
			rec.Month = key
			c.Records = append(c.Records, rec)
		}
	}

	if len(c.Months) > 0 {
		c.Columns = append(c.Columns, core.MonthColumn)
	}
	return c, nil
}

// Summarize counts records per label. With byMonth the counts are split by
// origin month in order of first appearance; otherwise there is a single
// group with an empty month. Every label is present in every group.
func Summarize(records []core.Record, byMonth bool) core.Summary {
	s := core.Summary{ByMonth: byMonth}
	if !byMonth {
		counts := core.NewCounts()
		for _, r := range records {
			counts[r.Label]++
		}
		s.Groups = []core.SummaryGroup{{Counts: counts}}
		return s
	}

	index := make(map[core.MonthKey]int)
	for _, r := range records {
		i, ok := index[r.Month]
		if !ok {
			i = len(s.Groups)
			index[r.Month] = i
			s.Groups = append(s.Groups, core.SummaryGroup{Month: r.Month, Counts: core.NewCounts()})
		}
		s.Groups[i].Counts[r.Label]++
	}
	return s
}

// Trends combines every stored month, oldest first, and summarizes it per
// month.
func Trends(ctx context.Context, src Source) (Combined, core.Summary, error) {
	keys, err := src.ListKeys(ctx)
	if err != nil {
		return Combined{}, core.Summary{}, fmt.Errorf("list months: %w", err)
	}
	c, err := Combine(ctx, src, keys)
	if err != nil {
		return Combined{}, core.Summary{}, err
	}
	return c, c.Summary(), nil
}
