// Package sheets defines the spreadsheet export ports.
package sheets

import (
	"context"

	"feedtrend/internal/core"
)

// Ports for outbound adapters.
type (
	// SummaryWriter keeps one summary row per month in an external sheet.
	SummaryWriter interface {
		WriteMonthSummary(ctx context.Context, month core.MonthKey, counts core.Counts) error
		RemoveMonthSummary(ctx context.Context, month core.MonthKey) error
	}

	// SummaryReader returns the months currently exported.
	SummaryReader interface {
		ExportedMonths(ctx context.Context) ([]core.MonthKey, error)
	}

	SummaryStore interface {
		SummaryWriter
		SummaryReader
	}
)
