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

// ProposeSell computes today's sell suggestion. The profit check looks
// at each holding's newest active lot, the one a sell would consume
// first.
func (e *Engine) ProposeSell(ctx context.Context) (*types.Proposal, error) {
	today := types.Today()
	var proposal *types.Proposal
	err := e.st.View(func(doc *store.Document) error {
		proposal = e.planSell(ctx, doc, today)
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Decision(ctx, proposal.Symbol, proposal.Action, proposal.Reason)
	journalDecision(proposal)
	return proposal, nil
}

func (e *Engine) planSell(ctx context.Context, doc *store.Document, today string) *types.Proposal {
	if ledger.CountOn(doc, types.KindSell, today) > 0 {
		logger.Debug(ctx, "Sell limit already used", "date", today)
		return noAction(types.ReasonDailyLimitReached)
	}

	threshold := decimal.NewFromFloat(doc.Settings.ProfitThreshold)
	var best *types.Proposal
	// HeldSymbols is sorted, so keeping only strictly higher profits
	// breaks ties in favor of the lexically smaller symbol.
	for _, symbol := range ledger.HeldSymbols(doc) {
		snap, err := catalog.Snapshot(doc, symbol)
		if err != nil {
			continue
		}
		lots := ledger.ActiveLots(doc, symbol)
		if len(lots) == 0 {
			continue
		}
		head := lots[0]
		profit := pctChange(snap.CurrentPrice, head.BuyPrice)
		if !profit.GreaterThan(threshold) {
			continue
		}
		logger.Debug(ctx, "Profitable newest lot",
			"symbol", symbol,
			"profit_pct", profit.String(),
			"buy_price", head.BuyPrice.String(),
			"current_price", snap.CurrentPrice.String(),
		)
		if best == nil || profit.GreaterThan(best.ProfitPct) {
			best = &types.Proposal{
				Action:    types.ActionSell,
				Symbol:    symbol,
				Quantity:  head.Quantity,
				Price:     snap.CurrentPrice,
				Reason:    types.ReasonProfitTarget,
				ProfitPct: profit,
			}
		}
	}
	if best == nil {
		return noAction(types.ReasonNoProfitableLot)
	}
	return best
}
