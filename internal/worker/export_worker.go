// Package worker mirrors stored months into the spreadsheet export.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"feedtrend/internal/aggregate"
	"feedtrend/internal/amqp"
	"feedtrend/internal/core"
	"feedtrend/internal/sheets"
)

// ExportWorker keeps one summary row per stored month in the sheet.
type ExportWorker struct {
	store  aggregate.Source
	sheets sheets.SummaryStore
}

// NewExportWorker mirrors months read from store into summaries.
func NewExportWorker(store aggregate.Source, summaries sheets.SummaryStore) *ExportWorker {
	return &ExportWorker{store: store, sheets: summaries}
}

// HandleMonthEvent applies one month event. A saved event for a month that
// has since been deleted removes the row instead.
func (w *ExportWorker) HandleMonthEvent(ctx context.Context, msg *amqp.MonthEvent) error {
	switch msg.Type {
	case amqp.MonthSaved:
		return w.exportMonth(ctx, msg.Month)
	case amqp.MonthDeleted:
		if err := w.sheets.RemoveMonthSummary(ctx, msg.Month); err != nil {
			return fmt.Errorf("remove %s summary: %w", msg.Month, err)
		}
		return nil
	default:
		return fmt.Errorf("unknown event type %q", msg.Type)
	}
}

// exportMonth writes month's label counts, or removes its summary when the
// month no longer exists.
func (w *ExportWorker) exportMonth(ctx context.Context, month core.MonthKey) error {
	set, err := w.store.Load(ctx, month)
	if errors.Is(err, core.ErrNotFound) {
		slog.InfoContext(ctx, "Month gone before export, removing summary", "month", month)
		return w.sheets.RemoveMonthSummary(ctx, month)
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", month, err)
	}

	counts := aggregate.Summarize(set.Records, false).Groups[0].Counts
	if err := w.sheets.WriteMonthSummary(ctx, month, counts); err != nil {
		return fmt.Errorf("write %s summary: %w", month, err)
	}
	return nil
}

// ReconcileResult counts what a reconcile pass changed.
type ReconcileResult struct {
	Exported int
	Removed  int
	Errors   int
}

// Reconcile re-exports every stored month and removes rows for months that
// are no longer stored. It recovers from lost events.
func (w *ExportWorker) Reconcile(ctx context.Context) (ReconcileResult, error) {
	var res ReconcileResult

	keys, err := w.store.ListKeys(ctx)
	if err != nil {
		return res, fmt.Errorf("list months: %w", err)
	}
	stored := make(map[core.MonthKey]bool, len(keys))
	for _, k := range keys {
		stored[k] = true
		if err := w.exportMonth(ctx, k); err != nil {
			slog.ErrorContext(ctx, "Failed to export month", "month", k, "error", err)
			res.Errors++
			continue
		}
		res.Exported++
	}

	exported, err := w.sheets.ExportedMonths(ctx)
	if err != nil {
		return res, fmt.Errorf("list exported months: %w", err)
	}
	for _, k := range exported {
		if stored[k] {
			continue
		}
		if err := w.sheets.RemoveMonthSummary(ctx, k); err != nil {
			slog.ErrorContext(ctx, "Failed to remove stale summary", "month", k, "error", err)
			res.Errors++
			continue
		}
		res.Removed++
	}

	slog.InfoContext(ctx, "Reconcile completed",
		"exported", res.Exported,
		"removed", res.Removed,
		"errors", res.Errors)
	return res, nil
}

// RunReconcile reconciles once at startup and then on every interval until
// ctx is cancelled.
func (w *ExportWorker) RunReconcile(ctx context.Context, interval time.Duration) error {
	if _, err := w.Reconcile(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup reconcile failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := w.Reconcile(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic reconcile failed", "error", err)
			}
		}
	}
}
