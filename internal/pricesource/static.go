package pricesource

import (
	"context"
	"fmt"
	"sync"

	"etf-trader/internal/catalog"
	"etf-trader/internal/interfaces"
	"etf-trader/internal/types"
)

// Static serves quotes from an in-memory table. It is the default
// source: refreshes against it are deterministic and touch no network.
type Static struct {
	mu     sync.RWMutex
	quotes map[string]types.Quote
}

var _ interfaces.PriceSource = (*Static)(nil)

func NewStatic() *Static {
	return &Static{quotes: make(map[string]types.Quote)}
}

func (s *Static) Name() string { return "static" }

// Set seeds or replaces the quote for q.Symbol.
func (s *Static) Set(q types.Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q.Symbol = catalog.NormalizeSymbol(q.Symbol)
	s.quotes[q.Symbol] = q
}

func (s *Static) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotes[catalog.NormalizeSymbol(symbol)]
	if !ok {
		return types.Quote{}, fmt.Errorf("%w: static source has no quote for %s", types.ErrPriceSourceUnavailable, symbol)
	}
	return q, nil
}
