package pricesource

import (
	"context"
	"sort"

	"etf-trader/internal/interfaces"
	"etf-trader/internal/types"
)

// Refresher pulls quotes for a symbol batch through one source,
// sequentially, spacing requests with an optional token bucket. One
// bad symbol never sinks the batch.
type Refresher struct {
	source  interfaces.PriceSource
	limiter *RateLimiter
}

func NewRefresher(source interfaces.PriceSource, limiter *RateLimiter) *Refresher {
	return &Refresher{source: source, limiter: limiter}
}

// Fetch returns the quotes it could get keyed by symbol, plus a
// summary naming every failure. A cancelled context fails the
// remaining symbols with the context error.
func (r *Refresher) Fetch(ctx context.Context, symbols []string) (map[string]types.Quote, *types.RefreshSummary) {
	summary := &types.RefreshSummary{
		Attempted: len(symbols),
		Failed:    make(map[string]string),
	}
	quotes := make(map[string]types.Quote, len(symbols))

	for i, symbol := range symbols {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				for _, rest := range symbols[i:] {
					summary.Failed[rest] = err.Error()
				}
				break
			}
		}
		quote, err := r.source.Quote(ctx, symbol)
		if err != nil {
			summary.Failed[symbol] = err.Error()
			continue
		}
		quotes[symbol] = quote
		summary.Succeeded = append(summary.Succeeded, symbol)
	}

	sort.Strings(summary.Succeeded)
	return quotes, summary
}
