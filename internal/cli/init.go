// Package cli holds the bootstrap steps shared by cmd/feedtrend and
// cmd/feedtrend-worker.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"feedtrend/internal/config"
	applog "feedtrend/internal/log"
	"feedtrend/internal/scorer"

	"github.com/joho/godotenv"
)

// SetupLogger builds the process logger at LOG_LEVEL and makes it the
// slog default.
func SetupLogger(component string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Component = component
	level, err := config.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err == nil {
		cfg.Level = level
	}
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	if err != nil {
		logger.WarnContext(context.Background(), "Ignoring LOG_LEVEL", "error", err)
	}
	return logger
}

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and exits on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// NewScorer builds the scorer for POLARITY. The lexicon polarity is
// extended with LEXICON_FILE when set.
func NewScorer(ctx context.Context, logger *applog.Logger, cfg *config.Config) (*scorer.Scorer, error) {
	logger = logger.WithComponent(applog.ComponentIngest)
	if cfg.Polarity != "lexicon" {
		logger.InfoContext(ctx, "Scoring with VADER")
		return scorer.New(scorer.NewVader(), logger.Slog()), nil
	}

	var extra map[string]float64
	if cfg.LexiconFile != "" {
		words, err := scorer.LoadLexiconFile(cfg.LexiconFile)
		if err != nil {
			return nil, err
		}
		extra = words
		logger.InfoContext(ctx, "Loaded custom lexicon", "path", cfg.LexiconFile, "words", len(words))
	}
	return scorer.New(scorer.NewLexicon(extra), logger.Slog()), nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down")
	}()
	return ctx, stop
}
