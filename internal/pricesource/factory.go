// Package pricesource provides the market data backends: a static
// table, the NSE India quote API, Zerodha Kite Connect, public quote
// page scraping and CSV imports, all behind interfaces.PriceSource,
// plus the rate-limited batch refresher the engine drives.
package pricesource

import (
	"fmt"
	"time"

	"etf-trader/internal/interfaces"
	"etf-trader/internal/store"
)

// New builds the price source the config names.
func New(cfg *store.Config) (interfaces.PriceSource, error) {
	switch cfg.Source.Kind {
	case "STATIC":
		return NewStatic(), nil
	case "NSE":
		return NewNSE(), nil
	case "KITE":
		return NewKite(cfg.Source.Exchange)
	case "SCRAPE":
		return NewScrape(30 * time.Second), nil
	case "CSV":
		return NewCSVFile(cfg.Source.CSVPath), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}
}

// Limiter builds the request limiter the config asks for, nil when
// rate limiting is off.
func Limiter(cfg *store.Config) *RateLimiter {
	if cfg.Source.RateLimitMS <= 0 {
		return nil
	}
	burst := cfg.Source.Burst
	if burst <= 0 {
		burst = 1
	}
	return NewRateLimiter(burst, time.Duration(cfg.Source.RateLimitMS)*time.Millisecond)
}
