package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"feedtrend/internal/backend"
	"feedtrend/internal/cache"
	"feedtrend/internal/cli"
	"feedtrend/internal/config"
	apphttp "feedtrend/internal/http"
	applog "feedtrend/internal/log"
	"feedtrend/internal/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	if err := run(ctx, logger, cfg); err != nil {
		logger.Error("Server stopped with error", "error", err)
		stop()
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(ctx context.Context, logger *applog.Logger, cfg *config.Config) error {
	sc, err := cli.NewScorer(ctx, logger, cfg)
	if err != nil {
		return fmt.Errorf("build scorer: %w", err)
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Slog()).CreateBackend(ctx, bcfg)
	if err != nil {
		return fmt.Errorf("create backend: %w", err)
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	svc := services.NewFeedbackService(res.Store, sc, res.Publisher,
		services.WithTextColumn(cfg.TextColumn),
		services.WithPreviewRows(cfg.PreviewRows))

	opts := []apphttp.Option{apphttp.WithLogger(logger.WithComponent(applog.ComponentHTTP))}
	if res.Cache != nil {
		opts = append(opts, apphttp.WithMonthCache(res.Cache))
	}
	srv := apphttp.NewServer(":"+cfg.Port, svc, opts...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting feedtrend server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"text_column", cfg.TextColumn)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on :%s: %w", cfg.Port, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})
	if res.Cache != nil {
		janitor := cache.NewManager()
		janitor.Register(res.Cache)
		g.Go(func() error {
			return janitor.Run(gctx, cfg.CacheTTL)
		})
	}

	return g.Wait()
}
