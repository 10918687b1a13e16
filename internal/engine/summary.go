package engine

import (
	"context"

	"etf-trader/internal/catalog"
	"etf-trader/internal/ledger"
	"etf-trader/internal/store"
	"etf-trader/internal/types"

	"github.com/shopspring/decimal"
)

// PortfolioSummary values every holding at its latest snapshot price.
// A holding without a snapshot is listed at cost with HasQuote false
// and stays out of the current-value and unrealized totals.
func (e *Engine) PortfolioSummary(ctx context.Context) (*types.PortfolioSummary, error) {
	summary := &types.PortfolioSummary{
		TotalInvested:      decimal.Zero,
		TotalCurrentValue:  decimal.Zero,
		TotalUnrealizedPnL: decimal.Zero,
	}
	err := e.st.View(func(doc *store.Document) error {
		for _, symbol := range ledger.HeldSymbols(doc) {
			qty, invested := ledger.Position(doc, symbol)
			h := types.HoldingSummary{
				Symbol:        symbol,
				Lots:          len(ledger.ActiveLots(doc, symbol)),
				TotalQuantity: qty,
				Invested:      invested,
				CurrentValue:  decimal.Zero,
				UnrealizedPnL: decimal.Zero,
			}
			if snap, err := catalog.Snapshot(doc, symbol); err == nil {
				h.HasQuote = true
				h.CurrentValue = snap.CurrentPrice.Mul(decimal.NewFromInt(int64(qty)))
				h.UnrealizedPnL = ledger.UnrealizedPnL(doc, symbol, snap.CurrentPrice)
				summary.TotalCurrentValue = summary.TotalCurrentValue.Add(h.CurrentValue)
				summary.TotalUnrealizedPnL = summary.TotalUnrealizedPnL.Add(h.UnrealizedPnL)
			}
			summary.TotalInvested = summary.TotalInvested.Add(invested)
			summary.Holdings = append(summary.Holdings, h)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// Statistics summarizes the whole transaction log.
func (e *Engine) Statistics(ctx context.Context) (*types.Statistics, error) {
	var stats types.Statistics
	err := e.st.View(func(doc *store.Document) error {
		stats = ledger.Stats(doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
