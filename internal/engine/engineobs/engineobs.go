package engineobs

import (
	"context"
	"time"

	"etf-trader/internal/interfaces"
	"etf-trader/internal/logger"
	"etf-trader/internal/trace"
	"etf-trader/internal/types"

	"github.com/shopspring/decimal"
)

// observableEngine wraps an Engine with observability (logging & tracing)
type observableEngine struct {
	engine interfaces.Engine
}

// Compile-time interface check
var _ interfaces.Engine = (*observableEngine)(nil)

// Wrap wraps an engine with observability middleware
func Wrap(eng interfaces.Engine) interfaces.Engine {
	return &observableEngine{
		engine: eng,
	}
}

func (oe *observableEngine) Ranking(ctx context.Context) ([]types.RankedInstrument, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Ranking")
	defer span.End()

	ranked, err := oe.engine.Ranking(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Ranking failed", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Ranking computed", "instruments", len(ranked))
	return ranked, nil
}

func (oe *observableEngine) ProposeBuy(ctx context.Context) (*types.Proposal, error) {
	ctx, span := trace.StartSpan(ctx, "engine.ProposeBuy")
	defer span.End()

	start := time.Now()
	proposal, err := oe.engine.ProposeBuy(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Buy proposal failed", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Buy proposal computed",
		"action", proposal.Action,
		"symbol", proposal.Symbol,
		"qty", proposal.Quantity,
		"reason", proposal.Reason,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return proposal, nil
}

func (oe *observableEngine) ProposeSell(ctx context.Context) (*types.Proposal, error) {
	ctx, span := trace.StartSpan(ctx, "engine.ProposeSell")
	defer span.End()

	start := time.Now()
	proposal, err := oe.engine.ProposeSell(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Sell proposal failed", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Sell proposal computed",
		"action", proposal.Action,
		"symbol", proposal.Symbol,
		"qty", proposal.Quantity,
		"reason", proposal.Reason,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return proposal, nil
}

func (oe *observableEngine) ExecuteBuy(ctx context.Context, symbol string, quantity int, price decimal.Decimal) (*types.Transaction, error) {
	ctx, span := trace.StartSpan(ctx, "engine.ExecuteBuy")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Executing buy",
		"symbol", symbol,
		"qty", quantity,
		"price", price.String(),
	)

	tx, err := oe.engine.ExecuteBuy(ctx, symbol, quantity, price)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Buy execution failed", err,
			"symbol", symbol,
			"qty", quantity,
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Buy executed",
		"symbol", symbol,
		"tx_id", tx.ID,
		"qty", tx.Quantity,
		"price", tx.Price.String(),
	)
	return tx, nil
}

func (oe *observableEngine) ExecuteSell(ctx context.Context, symbol string, quantity int, price decimal.Decimal) (*types.SellResult, error) {
	ctx, span := trace.StartSpan(ctx, "engine.ExecuteSell")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Executing sell",
		"symbol", symbol,
		"qty", quantity,
		"price", price.String(),
	)

	result, err := oe.engine.ExecuteSell(ctx, symbol, quantity, price)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Sell execution failed", err,
			"symbol", symbol,
			"qty", quantity,
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Sell executed",
		"symbol", symbol,
		"tx_id", result.Transaction.ID,
		"qty", result.Transaction.Quantity,
		"realized_pnl", result.RealizedPnL.String(),
		"fills", len(result.Fills),
	)
	return result, nil
}

func (oe *observableEngine) UpdatePriceLine(ctx context.Context, line string) error {
	ctx, span := trace.StartSpan(ctx, "engine.UpdatePriceLine")
	defer span.End()

	err := oe.engine.UpdatePriceLine(ctx, line)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Price line rejected", err, "line", line)
		return err
	}

	logger.DebugSkip(ctx, 1, "Price line applied", "line", line)
	return nil
}

func (oe *observableEngine) RefreshPrices(ctx context.Context, symbols []string) (*types.RefreshSummary, error) {
	ctx, span := trace.StartSpan(ctx, "engine.RefreshPrices")
	defer span.End()

	start := time.Now()
	logger.InfoSkip(ctx, 1, "Starting price refresh", "symbols", len(symbols))

	summary, err := oe.engine.RefreshPrices(ctx, symbols)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Price refresh failed", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Price refresh completed",
		"attempted", summary.Attempted,
		"succeeded", len(summary.Succeeded),
		"failed", len(summary.Failed),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return summary, nil
}

func (oe *observableEngine) UpdateQualifications(ctx context.Context, threshold float64) (*types.QualificationSummary, error) {
	ctx, span := trace.StartSpan(ctx, "engine.UpdateQualifications")
	defer span.End()

	summary, err := oe.engine.UpdateQualifications(ctx, threshold)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Qualification update failed", err, "threshold", threshold)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Qualifications updated",
		"threshold", threshold,
		"qualified", summary.Qualified,
		"disqualified", summary.Disqualified,
	)
	return summary, nil
}

func (oe *observableEngine) VolumeReport(ctx context.Context) (*types.VolumeReport, error) {
	ctx, span := trace.StartSpan(ctx, "engine.VolumeReport")
	defer span.End()

	report, err := oe.engine.VolumeReport(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Volume report failed", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Volume report computed",
		"qualified", len(report.Qualified),
		"disqualified", len(report.Disqualified),
		"missing", len(report.MissingData),
	)
	return report, nil
}

func (oe *observableEngine) PortfolioSummary(ctx context.Context) (*types.PortfolioSummary, error) {
	ctx, span := trace.StartSpan(ctx, "engine.PortfolioSummary")
	defer span.End()

	summary, err := oe.engine.PortfolioSummary(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Portfolio summary failed", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Portfolio summary computed",
		"holdings", len(summary.Holdings),
		"invested", summary.TotalInvested.String(),
	)
	return summary, nil
}

func (oe *observableEngine) Statistics(ctx context.Context) (*types.Statistics, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Statistics")
	defer span.End()

	stats, err := oe.engine.Statistics(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Statistics failed", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Statistics computed",
		"buys", stats.TotalBuys,
		"sells", stats.TotalSells,
		"win_rate", stats.WinRate,
	)
	return stats, nil
}

func (oe *observableEngine) ApplyMapping(ctx context.Context, oldSymbol, newSymbol, reason string) error {
	ctx, span := trace.StartSpan(ctx, "engine.ApplyMapping")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Applying symbol mapping",
		"old", oldSymbol,
		"new", newSymbol,
		"reason", reason,
	)

	err := oe.engine.ApplyMapping(ctx, oldSymbol, newSymbol, reason)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Symbol mapping failed", err,
			"old", oldSymbol,
			"new", newSymbol,
		)
		return err
	}

	logger.InfoSkip(ctx, 1, "Symbol mapping applied", "old", oldSymbol, "new", newSymbol)
	return nil
}

func (oe *observableEngine) BulkApplyMappings(ctx context.Context, rows []types.MappingRow) (*types.MappingSummary, error) {
	ctx, span := trace.StartSpan(ctx, "engine.BulkApplyMappings")
	defer span.End()

	start := time.Now()
	logger.InfoSkip(ctx, 1, "Applying mapping batch", "rows", len(rows))

	summary, err := oe.engine.BulkApplyMappings(ctx, rows)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Mapping batch failed", err,
			"rows", len(rows),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Mapping batch completed",
		"attempted", summary.Attempted,
		"applied", summary.Applied,
		"failed", len(summary.Failed),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return summary, nil
}

func (oe *observableEngine) MappingHistory(ctx context.Context) ([]types.SymbolMapping, error) {
	ctx, span := trace.StartSpan(ctx, "engine.MappingHistory")
	defer span.End()

	history, err := oe.engine.MappingHistory(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Mapping history failed", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Mapping history fetched", "entries", len(history))
	return history, nil
}
