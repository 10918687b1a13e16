package engine

import (
	"context"

	"etf-trader/internal/catalog"
	"etf-trader/internal/ledger"
	"etf-trader/internal/logger"
	"etf-trader/internal/store"
	"etf-trader/internal/types"

	"github.com/shopspring/decimal"
)

// ProposeBuy computes today's buy suggestion from one consistent view
// of the document. Repeatable; nothing mutates until ExecuteBuy.
func (e *Engine) ProposeBuy(ctx context.Context) (*types.Proposal, error) {
	today := types.Today()
	var proposal *types.Proposal
	err := e.st.View(func(doc *store.Document) error {
		proposal = e.planBuy(ctx, doc, today)
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Decision(ctx, proposal.Symbol, proposal.Action, proposal.Reason)
	journalDecision(proposal)
	return proposal, nil
}

func (e *Engine) planBuy(ctx context.Context, doc *store.Document, today string) *types.Proposal {
	if ledger.CountOn(doc, types.KindBuy, today) > 0 {
		logger.Debug(ctx, "Buy limit already used", "date", today)
		return noAction(types.ReasonDailyLimitReached)
	}

	ranked := catalog.Rank(doc, doc.Settings.FilterEnabled)
	if max := doc.Settings.MaxRankToConsider; max > 0 && len(ranked) > max {
		ranked = ranked[:max]
	}

	// Primary rule: the best-ranked symbol not already held.
	for _, entry := range ranked {
		if ledger.IsHeld(doc, entry.Symbol) {
			continue
		}
		snap, err := catalog.Snapshot(doc, entry.Symbol)
		if err != nil {
			continue
		}
		logger.Debug(ctx, "Unheld candidate from ranking",
			"symbol", entry.Symbol,
			"deviation", entry.Deviation.String(),
		)
		return e.sizedBuy(ctx, doc, snap, types.ReasonTopRankUnheld)
	}

	// Every considered symbol is held; look for the steepest drop below
	// the most recent buy price instead.
	threshold := decimal.NewFromFloat(doc.Settings.AveragingLossThreshold)
	var best *types.Snapshot
	var bestDrop decimal.Decimal
	for _, symbol := range ledger.HeldSymbols(doc) {
		snap, err := catalog.Snapshot(doc, symbol)
		if err != nil {
			continue
		}
		lastBuy, ok := ledger.MostRecentBuyPrice(doc, symbol)
		if !ok {
			continue
		}
		drop := pctChange(snap.CurrentPrice, lastBuy)
		if !drop.LessThan(threshold) {
			continue
		}
		logger.Debug(ctx, "Averaging-down candidate",
			"symbol", symbol,
			"drop_pct", drop.String(),
			"last_buy", lastBuy.String(),
		)
		if best == nil || drop.LessThan(bestDrop) {
			s := snap
			best = &s
			bestDrop = drop
		}
	}
	if best == nil {
		return noAction(types.ReasonNoEligibleCandidate)
	}
	return e.sizedBuy(ctx, doc, *best, types.ReasonAveragingDown)
}

// sizedBuy attaches a quantity to the candidate, downgrading to a
// NoAction when the configured capital cannot buy a single unit.
func (e *Engine) sizedBuy(ctx context.Context, doc *store.Document, snap types.Snapshot, reason string) *types.Proposal {
	qty, spent, err := e.sizer.suggest(doc.Settings.DefaultInvestmentAmount, snap.CurrentPrice)
	if err != nil {
		logger.Warn(ctx, "Buy candidate not affordable",
			"symbol", snap.Symbol,
			"price", snap.CurrentPrice.String(),
			"investment", doc.Settings.DefaultInvestmentAmount.String(),
		)
		return noAction(types.ReasonInsufficientCapital)
	}
	return &types.Proposal{
		Action:    types.ActionBuy,
		Symbol:    snap.Symbol,
		Quantity:  qty,
		Price:     snap.CurrentPrice,
		Spent:     spent,
		Reason:    reason,
		Deviation: snap.Deviation(),
	}
}
