package months

import (
	"context"
	"time"

	"feedtrend/internal/core"
)

// Ports for month storage backends. Load and Delete return core.ErrNotFound
// for a key that was never saved or has been deleted.
type (
	Writer interface {
		// Save stores set under key, replacing any previous set.
		Save(ctx context.Context, key core.MonthKey, set core.RecordSet) error
	}

	Reader interface {
		Load(ctx context.Context, key core.MonthKey) (core.RecordSet, error)
	}

	// Lister enumerates stored keys oldest month first.
	Lister interface {
		ListKeys(ctx context.Context) ([]core.MonthKey, error)
	}

	Deleter interface {
		Delete(ctx context.Context, key core.MonthKey) error
	}

	Store interface {
		Writer
		Reader
		Lister
		Deleter
	}

	// Stamper reports when a month was last saved. Stores that track it
	// implement it next to Store.
	Stamper interface {
		SavedAt(ctx context.Context, key core.MonthKey) (time.Time, error)
	}
)
