package engine

import (
	"context"
	"time"

	"etf-trader/internal/catalog"
	"etf-trader/internal/input"
	"etf-trader/internal/logger"
	"etf-trader/internal/pricesource"
	"etf-trader/internal/store"
	"etf-trader/internal/types"
)

// Engine drives the strategy against one store document: catalog
// upkeep, the daily buy/sell proposals and the two execution paths.
type Engine struct {
	st        *store.Store
	refresher *pricesource.Refresher
	sizer     *sizer
}

func newEngine(st *store.Store, refresher *pricesource.Refresher, cfg *store.Config) *Engine {
	return &Engine{
		st:        st,
		refresher: refresher,
		sizer:     newSizer(cfg.Sizing.BufferPct, cfg.Sizing.MaxQuantity),
	}
}

// Ranking lists ranking-eligible instruments by deviation, most
// oversold first.
func (e *Engine) Ranking(ctx context.Context) ([]types.RankedInstrument, error) {
	var ranked []types.RankedInstrument
	err := e.st.View(func(doc *store.Document) error {
		ranked = catalog.Rank(doc, doc.Settings.FilterEnabled)
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Debug(ctx, "Ranking computed", "instruments", len(ranked))
	return ranked, nil
}

// UpdatePriceLine applies one manual SYMBOL,PRICE,MA20 line. Volume
// figures from the previous snapshot survive; a pasted price must not
// disqualify an instrument the source already measured.
func (e *Engine) UpdatePriceLine(ctx context.Context, line string) error {
	pl, err := input.ParsePriceLine(line)
	if err != nil {
		return err
	}
	err = e.st.Update(func(doc *store.Document) error {
		volume, avgVolume := int64(0), 0.0
		if prev, err := catalog.Snapshot(doc, pl.Symbol); err == nil {
			volume, avgVolume = prev.CurrentVolume, prev.Average5DayVolume
		}
		return catalog.UpsertSnapshot(doc, pl.Symbol, pl.Price, pl.MA20, volume, avgVolume, time.Now())
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "Manual price applied",
		"symbol", pl.Symbol,
		"price", pl.Price.String(),
		"ma20", pl.MA20.String(),
	)
	return nil
}

// RefreshPrices pulls quotes for the given symbols, or for every known
// symbol when none are named, and upserts the successful ones in a
// single update. A quote that lacks trend or volume figures keeps the
// stored ones; a symbol whose snapshot would end up without a moving
// average is reported as failed instead of written half-empty.
func (e *Engine) RefreshPrices(ctx context.Context, symbols []string) (*types.RefreshSummary, error) {
	var list []string
	if len(symbols) == 0 {
		err := e.st.View(func(doc *store.Document) error {
			list = catalog.Symbols(doc)
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		for _, s := range symbols {
			if n := catalog.NormalizeSymbol(s); n != "" {
				list = append(list, n)
			}
		}
	}

	quotes, summary := e.refresher.Fetch(ctx, list)
	if len(quotes) == 0 {
		logger.Warn(ctx, "Refresh fetched no quotes", "attempted", summary.Attempted)
		return summary, nil
	}

	now := time.Now()
	applied := make([]string, 0, len(summary.Succeeded))
	err := e.st.Update(func(doc *store.Document) error {
		for _, symbol := range summary.Succeeded {
			q := quotes[symbol]
			ma, volume, avgVolume := q.MovingAverage20, q.Volume, q.AvgVolume5Day
			if prev, err := catalog.Snapshot(doc, symbol); err == nil {
				if !ma.IsPositive() {
					ma = prev.MovingAverage20
				}
				if volume <= 0 {
					volume = prev.CurrentVolume
				}
				if avgVolume <= 0 {
					avgVolume = prev.Average5DayVolume
				}
			}
			if err := catalog.UpsertSnapshot(doc, symbol, q.Price, ma, volume, avgVolume, now); err != nil {
				summary.Failed[symbol] = err.Error()
				continue
			}
			applied = append(applied, symbol)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	summary.Succeeded = applied

	logger.Info(ctx, "Prices refreshed",
		"attempted", summary.Attempted,
		"succeeded", len(summary.Succeeded),
		"failed", len(summary.Failed),
	)
	return summary, nil
}

// UpdateQualifications re-evaluates every snapshot against the
// threshold and persists both the flags and the threshold.
func (e *Engine) UpdateQualifications(ctx context.Context, threshold float64) (*types.QualificationSummary, error) {
	var summary types.QualificationSummary
	err := e.st.Update(func(doc *store.Document) error {
		s, err := catalog.UpdateQualifications(doc, threshold)
		if err != nil {
			return err
		}
		summary = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "Qualifications updated",
		"threshold", threshold,
		"qualified", summary.Qualified,
		"disqualified", summary.Disqualified,
	)
	return &summary, nil
}

// VolumeReport groups every instrument by its liquidity standing.
func (e *Engine) VolumeReport(ctx context.Context) (*types.VolumeReport, error) {
	var report *types.VolumeReport
	err := e.st.View(func(doc *store.Document) error {
		report = catalog.VolumeReport(doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
