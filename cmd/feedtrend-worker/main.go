package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"feedtrend/internal/amqp"
	"feedtrend/internal/backend"
	"feedtrend/internal/cli"
	"feedtrend/internal/config"
	applog "feedtrend/internal/log"
	"feedtrend/internal/sheets"
	gsheet "feedtrend/internal/sheets/google"
	memsheet "feedtrend/internal/sheets/memory"
	"feedtrend/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	logger.Info("Starting feedtrend-worker", "backend", cfg.DataBackend)
	if err := run(ctx, logger, cfg); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		stop()
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

func run(ctx context.Context, logger *applog.Logger, cfg *config.Config) error {
	if cfg.DataBackend == string(backend.MemoryBackend) {
		logger.Warn("Memory backend is private to each process; the worker will see no months")
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	// The server process writes the store, so reads here bypass the cache
	// and the worker never publishes.
	bcfg.CacheSize = 0
	bcfg.AMQPURL = ""
	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Slog()).CreateBackend(ctx, bcfg)
	if err != nil {
		return fmt.Errorf("create backend: %w", err)
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	summaries, err := newSummaryStore(ctx, logger, cfg)
	if err != nil {
		return err
	}
	exporter := worker.NewExportWorker(res.Store, summaries)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return exporter.RunReconcile(gctx, cfg.ReconcileInterval)
	})

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return fmt.Errorf("initialize AMQP client: %w", err)
		}
		defer client.Close()
		g.Go(func() error {
			return client.Consume(gctx, exporter.HandleMonthEvent)
		})
	} else {
		logger.Info("AMQP disabled - relying on periodic reconcile", "interval", cfg.ReconcileInterval)
	}

	return g.Wait()
}

// newSummaryStore uses Google Sheets when a spreadsheet is configured and an
// in-memory store otherwise.
func newSummaryStore(ctx context.Context, logger *applog.Logger, cfg *config.Config) (sheets.SummaryStore, error) {
	if cfg.GoogleSpreadsheetID == "" {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, summaries kept in memory")
		return memsheet.New(), nil
	}
	client, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
	if err != nil {
		return nil, fmt.Errorf("initialize Google Sheets client: %w", err)
	}
	logger.Info("Google Sheets client initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)
	return client, nil
}
