package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"etf-trader/internal/catalog"
	"etf-trader/internal/engine"
	"etf-trader/internal/engine/engineobs"
	"etf-trader/internal/interfaces"
	"etf-trader/internal/logger"
	"etf-trader/internal/pricesource"
	"etf-trader/internal/pricesource/sourceobs"
	"etf-trader/internal/store"
	"etf-trader/internal/trace"
	"etf-trader/internal/tradelog"

	"github.com/joho/godotenv"
)

// One-shot price refresh, meant for cron. Pulls quotes for the given
// symbols (default: every known instrument), optionally re-checks the
// volume filter and marks snapshots nobody refreshed as stale.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	symbolsFlag := flag.String("symbols", "", "comma separated symbols, empty refreshes all known")
	threshold := flag.Float64("threshold", 0, "re-check volume qualifications with this threshold, 0 skips")
	staleAfter := flag.Duration("stale-after", 0, "mark snapshots older than this stale, 0 skips")
	flag.Parse()

	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	ctx := context.Background()
	err := run(ctx, *configPath, *symbolsFlag, *threshold, *staleAfter)

	tradelog.Close()
	_ = trace.Shutdown(ctx)
	_ = logger.Shutdown(ctx)

	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, symbolsFlag string, threshold float64, staleAfter time.Duration) error {
	cfg, err := store.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st, err := store.Open(cfg.Store.DataFile)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if err := st.SeedSettings(cfg.StrategySettings()); err != nil {
		return err
	}

	eng, err := buildEngine(cfg, st)
	if err != nil {
		return err
	}

	summary, err := eng.RefreshPrices(ctx, splitSymbols(symbolsFlag))
	if err != nil {
		return err
	}

	fmt.Printf("✅ Refreshed %d of %d symbols\n", len(summary.Succeeded), summary.Attempted)
	for _, sym := range summary.Succeeded {
		fmt.Printf("   • %s\n", sym)
	}
	for sym, msg := range summary.Failed {
		fmt.Printf("   ❌ %s: %s\n", sym, msg)
	}

	if threshold > 0 {
		qs, err := eng.UpdateQualifications(ctx, threshold)
		if err != nil {
			return err
		}
		fmt.Printf("✅ Volume filter at %.0f: %d qualified, %d disqualified\n",
			qs.Threshold, qs.Qualified, qs.Disqualified)
	}

	if staleAfter > 0 {
		cutoff := time.Now().Add(-staleAfter)
		marked := 0
		if err := st.Update(func(doc *store.Document) error {
			marked = catalog.MarkStale(doc, cutoff)
			return nil
		}); err != nil {
			return err
		}
		if marked > 0 {
			fmt.Printf("⚠️  %d snapshot(s) marked stale (older than %s)\n", marked, staleAfter)
		}
	}

	if summary.Attempted > 0 && len(summary.Succeeded) == 0 {
		return fmt.Errorf("no symbols refreshed")
	}
	return nil
}

func buildEngine(cfg *store.Config, st *store.Store) (interfaces.Engine, error) {
	source, err := pricesource.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("build price source: %w", err)
	}
	refresher := pricesource.NewRefresher(sourceobs.Wrap(source), pricesource.Limiter(cfg))
	return engineobs.Wrap(engine.New(st, refresher, cfg)), nil
}

func splitSymbols(raw string) []string {
	var symbols []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}
