package engine

import (
	"etf-trader/internal/tradelog"
	"etf-trader/internal/types"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// pctChange is the percentage move of current from base. Base is
// checked positive before any caller gets here.
func pctChange(current, base decimal.Decimal) decimal.Decimal {
	return current.Sub(base).Div(base).Mul(hundred)
}

func noAction(reason string) *types.Proposal {
	return &types.Proposal{Action: types.ActionNone, Reason: reason}
}

// journalDecision records a proposal in the decisions journal. The
// journal is advisory; a write failure never changes the proposal.
func journalDecision(p *types.Proposal) {
	if p == nil {
		return
	}
	entry := tradelog.DecisionEntry{
		Symbol: p.Symbol,
		Action: p.Action,
		Reason: p.Reason,
		Qty:    p.Quantity,
	}
	if !p.Price.IsZero() {
		entry.Price = p.Price.String()
	}
	if !p.Deviation.IsZero() {
		entry.Deviation = p.Deviation.StringFixed(4)
	}
	if !p.ProfitPct.IsZero() {
		entry.ProfitPct = p.ProfitPct.StringFixed(4)
	}
	_ = tradelog.AppendDecision(entry)
}
