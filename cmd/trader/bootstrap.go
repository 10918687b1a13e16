package main

import (
	"context"
	"fmt"
	"os"

	"etf-trader/internal/engine"
	"etf-trader/internal/engine/engineobs"
	"etf-trader/internal/eod"
	"etf-trader/internal/eod/eodobs"
	"etf-trader/internal/interfaces"
	"etf-trader/internal/logger"
	"etf-trader/internal/pricesource"
	"etf-trader/internal/pricesource/sourceobs"
	"etf-trader/internal/store"
	"etf-trader/internal/trace"
	"etf-trader/internal/tradelog"

	"github.com/joho/godotenv"
)

// initializeSystem initializes logger, tracer, and EOD summarizer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Initialize tracer
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	// Initialize EOD summarizer with observability
	initializeEOD()

	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// openStore opens the data file and seeds strategy settings on first run
func openStore(ctx context.Context, cfg *store.Config) (*store.Store, error) {
	st, err := store.Open(cfg.Store.DataFile)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to open store", err, "path", cfg.Store.DataFile)
		return nil, err
	}
	if err := st.SeedSettings(cfg.StrategySettings()); err != nil {
		return nil, err
	}
	logger.Info(ctx, "Store ready", "path", cfg.Store.DataFile)
	return st, nil
}

// compressOldLogs compresses old tradelog files if retention is configured
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("TRADER_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := tradelog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}

// initializeEngine builds the price source and the strategy engine,
// both wrapped with observability middleware
func initializeEngine(ctx context.Context, cfg *store.Config, st *store.Store) (interfaces.Engine, error) {
	source, err := pricesource.New(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "Price source ready", "kind", cfg.Source.Kind)

	refresher := pricesource.NewRefresher(sourceobs.Wrap(source), pricesource.Limiter(cfg))
	return engineobs.Wrap(engine.New(st, refresher, cfg)), nil
}

// initializeEOD wraps the default EOD summarizer with observability
func initializeEOD() {
	eod.SetDefaultSummarizer(eodobs.Wrap(eod.NewSummarizer()))
}

// shutdownSystem writes the day's summary and flushes journals
func shutdownSystem(ctx context.Context) {
	if p, err := eod.SummarizeToday(); err == nil && p != "" {
		logger.Info(ctx, "EOD summary written", "path", p)
	}
	tradelog.Close()
	_ = trace.Shutdown(ctx)
	_ = logger.Shutdown(ctx)
}
