package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"feedtrend/internal/adapters"
	"feedtrend/internal/amqp"
	"feedtrend/internal/cache"
	"feedtrend/internal/core"
	"feedtrend/internal/months"
	"feedtrend/internal/months/csvdir"
	"feedtrend/internal/months/memory"
	"feedtrend/internal/storage"
)

type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend opens the store for config.Type, wraps it in a read cache
// when CacheSize is positive and connects the publisher when AMQPURL is set.
// A broker that cannot be reached leaves Publisher nil.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store   months.Store
		closers []func() error
	)
	switch config.Type {
	case CSVBackend:
		store = csvdir.New(config.DataDirectory, config.TextColumn)
		f.logger.InfoContext(ctx, "Initialized CSV backend", "data_directory", config.DataDirectory)
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		store = repo
		closers = append(closers, repo.Close)
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		store = memory.New()
		f.logger.InfoContext(ctx, "Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	res := &BackendResult{Store: store}

	if config.CacheSize > 0 {
		res.Cache = cache.NewLRUCache[core.RecordSet](config.CacheSize, config.CacheTTL)
		res.Store = adapters.NewCachedStore(store, res.Cache)
		f.logger.InfoContext(ctx, "Month cache enabled", "size", config.CacheSize, "ttl", config.CacheTTL)
	}

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			res.Publisher = client
			closers = append(closers, client.Close)
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	res.Cleanup = func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
	return res, nil
}
