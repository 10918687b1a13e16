package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"etf-trader/internal/catalog"
	"etf-trader/internal/ledger"
	"etf-trader/internal/pricesource"
	"etf-trader/internal/store"
	"etf-trader/internal/tradelog"
	"etf-trader/internal/types"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// newTestEngine builds an engine over a throwaway store and a static
// price source. seed runs inside one store update before the test.
func newTestEngine(t *testing.T, seed func(doc *store.Document) error) (*Engine, *pricesource.Static, *store.Store) {
	t.Helper()
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	t.Cleanup(tradelog.Close)

	st, err := store.Open(filepath.Join(t.TempDir(), "etf-data.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if seed != nil {
		if err := st.Update(seed); err != nil {
			t.Fatalf("seed store: %v", err)
		}
	}

	src := pricesource.NewStatic()
	cfg := &store.Config{}
	cfg.Sizing.MaxQuantity = 1000
	return newEngine(st, pricesource.NewRefresher(src, nil), cfg), src, st
}

func seedSnapshot(doc *store.Document, symbol, price, ma string, volume int64, avgVolume float64) error {
	return catalog.UpsertSnapshot(doc, symbol, dec(price), dec(ma), volume, avgVolume, time.Now())
}

func seedLot(t *testing.T, doc *store.Document, symbol string, qty int, price, date string) {
	t.Helper()
	if _, err := ledger.OpenLot(doc, symbol, qty, dec(price), date); err != nil {
		t.Fatalf("seed lot %s: %v", symbol, err)
	}
}

func TestProposeBuyTopRankedUnheld(t *testing.T) {
	eng, _, _ := newTestEngine(t, func(doc *store.Document) error {
		return seedSnapshot(doc, "GOLDBEES", "81.73", "81.04", 120000, 90000)
	})

	p, err := eng.ProposeBuy(context.Background())
	if err != nil {
		t.Fatalf("ProposeBuy: %v", err)
	}
	if p.Action != types.ActionBuy || p.Symbol != "GOLDBEES" {
		t.Fatalf("proposal = %+v, want BUY GOLDBEES", p)
	}
	if p.Reason != types.ReasonTopRankUnheld {
		t.Errorf("reason = %s", p.Reason)
	}
	if p.Quantity != 122 {
		t.Errorf("quantity = %d, want 122 (10000 / 81.73 floored)", p.Quantity)
	}
	if !p.Spent.Equal(dec("9971.06")) {
		t.Errorf("spent = %s, want 9971.06", p.Spent)
	}
	if p.Deviation.LessThan(dec("0.85")) || p.Deviation.GreaterThan(dec("0.86")) {
		t.Errorf("deviation = %s, want ~0.8514", p.Deviation)
	}
}

func TestProposeBuyPrefersMostOversold(t *testing.T) {
	eng, _, _ := newTestEngine(t, func(doc *store.Document) error {
		if err := seedSnapshot(doc, "NIFTYBEES", "102.00", "100.00", 120000, 90000); err != nil {
			return err
		}
		if err := seedSnapshot(doc, "GOLDBEES", "95.00", "100.00", 120000, 90000); err != nil {
			return err
		}
		return seedSnapshot(doc, "BANKBEES", "101.00", "100.00", 120000, 90000)
	})

	p, err := eng.ProposeBuy(context.Background())
	if err != nil {
		t.Fatalf("ProposeBuy: %v", err)
	}
	if p.Symbol != "GOLDBEES" {
		t.Errorf("symbol = %s, want GOLDBEES at -5%%", p.Symbol)
	}
}

func TestProposeBuySkipsHeldForNextRanked(t *testing.T) {
	eng, _, _ := newTestEngine(t, func(doc *store.Document) error {
		if err := seedSnapshot(doc, "GOLDBEES", "95.00", "100.00", 120000, 90000); err != nil {
			return err
		}
		if err := seedSnapshot(doc, "NIFTYBEES", "98.00", "100.00", 120000, 90000); err != nil {
			return err
		}
		seedLot(t, doc, "GOLDBEES", 10, "96.00", "2026-08-20")
		return nil
	})

	p, err := eng.ProposeBuy(context.Background())
	if err != nil {
		t.Fatalf("ProposeBuy: %v", err)
	}
	if p.Symbol != "NIFTYBEES" || p.Reason != types.ReasonTopRankUnheld {
		t.Errorf("proposal = %+v, want unheld NIFTYBEES", p)
	}
}

func TestProposeBuyAveragingDownWhenTopAllHeld(t *testing.T) {
	eng, _, _ := newTestEngine(t, func(doc *store.Document) error {
		if err := seedSnapshot(doc, "GOLDBEES", "96.00", "100.00", 120000, 90000); err != nil {
			return err
		}
		if err := seedSnapshot(doc, "NIFTYBEES", "97.00", "100.00", 120000, 90000); err != nil {
			return err
		}
		if err := seedSnapshot(doc, "BANKBEES", "99.50", "100.00", 120000, 90000); err != nil {
			return err
		}
		// GOLDBEES dropped 4% below its last buy, NIFTYBEES 3%,
		// BANKBEES only 0.5%.
		seedLot(t, doc, "GOLDBEES", 10, "100.00", "2026-08-18")
		seedLot(t, doc, "NIFTYBEES", 10, "100.00", "2026-08-19")
		seedLot(t, doc, "BANKBEES", 10, "100.00", "2026-08-20")
		return nil
	})

	p, err := eng.ProposeBuy(context.Background())
	if err != nil {
		t.Fatalf("ProposeBuy: %v", err)
	}
	if p.Action != types.ActionBuy || p.Symbol != "GOLDBEES" {
		t.Fatalf("proposal = %+v, want averaging-down GOLDBEES", p)
	}
	if p.Reason != types.ReasonAveragingDown {
		t.Errorf("reason = %s", p.Reason)
	}
	if p.Quantity != 104 {
		t.Errorf("quantity = %d, want 104 (10000 / 96 floored)", p.Quantity)
	}
}

func TestProposeBuyAveragingDownUsesMostRecentBuyPrice(t *testing.T) {
	// Two lots: the older at 110 would qualify, but the reference is
	// the most recent buy at 96, against which 95 is only -1.04%.
	eng, _, _ := newTestEngine(t, func(doc *store.Document) error {
		if err := seedSnapshot(doc, "GOLDBEES", "95.00", "100.00", 120000, 90000); err != nil {
			return err
		}
		seedLot(t, doc, "GOLDBEES", 10, "110.00", "2026-08-10")
		seedLot(t, doc, "GOLDBEES", 10, "96.00", "2026-08-20")
		return nil
	})

	p, err := eng.ProposeBuy(context.Background())
	if err != nil {
		t.Fatalf("ProposeBuy: %v", err)
	}
	if p.Action != types.ActionNone || p.Reason != types.ReasonNoEligibleCandidate {
		t.Errorf("proposal = %+v, want NoAction NO_ELIGIBLE_CANDIDATE", p)
	}
}

func TestProposeBuyInsufficientCapital(t *testing.T) {
	eng, _, _ := newTestEngine(t, func(doc *store.Document) error {
		return seedSnapshot(doc, "PRICY", "15000.00", "15000.00", 120000, 90000)
	})

	p, err := eng.ProposeBuy(context.Background())
	if err != nil {
		t.Fatalf("ProposeBuy: %v", err)
	}
	if p.Action != types.ActionNone || p.Reason != types.ReasonInsufficientCapital {
		t.Errorf("proposal = %+v, want NoAction INSUFFICIENT_CAPITAL", p)
	}
}

func TestProposeSellProfitAboveThreshold(t *testing.T) {
	eng, _, _ := newTestEngine(t, func(doc *store.Document) error {
		if err := seedSnapshot(doc, "GOLDBEES", "81.73", "81.04", 120000, 90000); err != nil {
			return err
		}
		seedLot(t, doc, "GOLDBEES", 130, "75.00", "2026-08-01")
		return nil
	})

	p, err := eng.ProposeSell(context.Background())
	if err != nil {
		t.Fatalf("ProposeSell: %v", err)
	}
	if p.Action != types.ActionSell || p.Symbol != "GOLDBEES" {
		t.Fatalf("proposal = %+v, want SELL GOLDBEES", p)
	}
	if p.Reason != types.ReasonProfitTarget || p.Quantity != 130 {
		t.Errorf("reason = %s qty = %d", p.Reason, p.Quantity)
	}
	// (81.73 - 75) / 75 * 100 = 8.9733...
	if p.ProfitPct.LessThan(dec("8.97")) || p.ProfitPct.GreaterThan(dec("8.98")) {
		t.Errorf("profit pct = %s, want ~8.9733", p.ProfitPct)
	}
}

func TestProposeSellChecksNewestLotOnly(t *testing.T) {
	// The old lot at 70 is 16.8% up, but a sell would consume the
	// newest lot first and that one is barely above water.
	eng, _, _ := newTestEngine(t, func(doc *store.Document) error {
		if err := seedSnapshot(doc, "GOLDBEES", "81.73", "81.04", 120000, 90000); err != nil {
			return err
		}
		seedLot(t, doc, "GOLDBEES", 10, "70.00", "2026-08-01")
		seedLot(t, doc, "GOLDBEES", 10, "81.00", "2026-08-20")
		return nil
	})

	p, err := eng.ProposeSell(context.Background())
	if err != nil {
		t.Fatalf("ProposeSell: %v", err)
	}
	if p.Action != types.ActionNone || p.Reason != types.ReasonNoProfitableLot {
		t.Errorf("proposal = %+v, want NoAction NO_PROFITABLE_LOT", p)
	}
}

func TestProposeSellPicksHighestProfitWithLexicalTie(t *testing.T) {
	eng, _, _ := newTestEngine(t, func(doc *store.Document) error {
		if err := seedSnapshot(doc, "ALPHA", "110.00", "100.00", 120000, 90000); err != nil {
			return err
		}
		if err := seedSnapshot(doc, "BETA", "110.00", "100.00", 120000, 90000); err != nil {
			return err
		}
		if err := seedSnapshot(doc, "GAMMA", "108.00", "100.00", 120000, 90000); err != nil {
			return err
		}
		seedLot(t, doc, "ALPHA", 5, "100.00", "2026-08-01")
		seedLot(t, doc, "BETA", 5, "100.00", "2026-08-01")
		seedLot(t, doc, "GAMMA", 5, "100.00", "2026-08-01")
		return nil
	})

	p, err := eng.ProposeSell(context.Background())
	if err != nil {
		t.Fatalf("ProposeSell: %v", err)
	}
	// ALPHA and BETA are tied at +10%; the lexically smaller wins.
	if p.Symbol != "ALPHA" {
		t.Errorf("symbol = %s, want ALPHA", p.Symbol)
	}
}

func TestExecuteBuySellCycleAndDailyLimits(t *testing.T) {
	ctx := context.Background()
	eng, _, st := newTestEngine(t, func(doc *store.Document) error {
		return seedSnapshot(doc, "GOLDBEES", "81.73", "81.04", 120000, 90000)
	})

	tx, err := eng.ExecuteBuy(ctx, "goldbees.NS", 122, dec("81.73"))
	if err != nil {
		t.Fatalf("ExecuteBuy: %v", err)
	}
	if tx.Symbol != "GOLDBEES" || tx.Kind != types.KindBuy || tx.Quantity != 122 {
		t.Errorf("transaction = %+v", tx)
	}

	if _, err := eng.ExecuteBuy(ctx, "NIFTYBEES", 1, dec("100")); !errors.Is(err, types.ErrDailyLimitReached) {
		t.Errorf("second buy: expected ErrDailyLimitReached, got %v", err)
	}
	if p, err := eng.ProposeBuy(ctx); err != nil || p.Reason != types.ReasonDailyLimitReached {
		t.Errorf("proposal after buy = %+v, %v", p, err)
	}

	result, err := eng.ExecuteSell(ctx, "GOLDBEES", 122, dec("85.00"))
	if err != nil {
		t.Fatalf("ExecuteSell: %v", err)
	}
	// (85 - 81.73) * 122 = 398.94
	if !result.RealizedPnL.Equal(dec("398.94")) {
		t.Errorf("realized pnl = %s, want 398.94", result.RealizedPnL)
	}
	if len(result.Fills) != 1 || result.Fills[0].Quantity != 122 {
		t.Errorf("fills = %+v", result.Fills)
	}

	if _, err := eng.ExecuteSell(ctx, "GOLDBEES", 1, dec("85.00")); !errors.Is(err, types.ErrDailyLimitReached) {
		t.Errorf("second sell: expected ErrDailyLimitReached, got %v", err)
	}

	// The cycle is durable: a fresh store sees both transactions and
	// the sold lot referencing the sale.
	reopened, err := store.Open(st.Path())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	err = reopened.View(func(doc *store.Document) error {
		if len(doc.Transactions) != 2 {
			t.Errorf("persisted %d transactions, want 2", len(doc.Transactions))
		}
		lots := doc.Portfolio["GOLDBEES"]
		if len(lots) != 1 || lots[0].Status != types.LotSold {
			t.Errorf("persisted lots = %+v", lots)
		}
		if len(lots) == 1 && lots[0].SaleRef != result.Transaction.ID {
			t.Errorf("sale ref = %s, want %s", lots[0].SaleRef, result.Transaction.ID)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view reopened: %v", err)
	}
}

func TestExecuteSellInsufficientHoldingsLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	eng, _, st := newTestEngine(t, func(doc *store.Document) error {
		seedLot(t, doc, "GOLDBEES", 5, "80.00", "2026-08-01")
		return nil
	})

	_, err := eng.ExecuteSell(ctx, "GOLDBEES", 9, dec("85.00"))
	if !errors.Is(err, types.ErrInsufficientHoldings) {
		t.Fatalf("expected ErrInsufficientHoldings, got %v", err)
	}

	err = st.View(func(doc *store.Document) error {
		if len(doc.Transactions) != 0 {
			t.Errorf("transactions appended on failed sell: %+v", doc.Transactions)
		}
		if qty, _ := ledger.Position(doc, "GOLDBEES"); qty != 5 {
			t.Errorf("position = %d, want 5 untouched", qty)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestRefreshPricesKeepsStoredTrendAndVolume(t *testing.T) {
	ctx := context.Background()
	eng, src, st := newTestEngine(t, func(doc *store.Document) error {
		return seedSnapshot(doc, "GOLDBEES", "81.73", "81.04", 120000, 90000)
	})
	// Price-only quote, as a scraper would produce.
	src.Set(types.Quote{Symbol: "GOLDBEES", Price: dec("82.00")})

	summary, err := eng.RefreshPrices(ctx, []string{"GOLDBEES"})
	if err != nil {
		t.Fatalf("RefreshPrices: %v", err)
	}
	if len(summary.Succeeded) != 1 || len(summary.Failed) != 0 {
		t.Fatalf("summary = %+v", summary)
	}

	err = st.View(func(doc *store.Document) error {
		snap, err := catalog.Snapshot(doc, "GOLDBEES")
		if err != nil {
			return err
		}
		if !snap.CurrentPrice.Equal(dec("82.00")) {
			t.Errorf("price = %s, want 82.00", snap.CurrentPrice)
		}
		if !snap.MovingAverage20.Equal(dec("81.04")) {
			t.Errorf("ma20 = %s, want stored 81.04", snap.MovingAverage20)
		}
		if snap.CurrentVolume != 120000 || snap.Average5DayVolume != 90000 {
			t.Errorf("volume figures lost: %+v", snap)
		}
		if !snap.Qualified {
			t.Errorf("refresh must not disqualify a liquid instrument")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestRefreshPricesRejectsTrendlessNewSymbol(t *testing.T) {
	ctx := context.Background()
	eng, src, _ := newTestEngine(t, nil)
	src.Set(types.Quote{Symbol: "NEWONE", Price: dec("50.00")})

	summary, err := eng.RefreshPrices(ctx, []string{"NEWONE"})
	if err != nil {
		t.Fatalf("RefreshPrices: %v", err)
	}
	if len(summary.Succeeded) != 0 {
		t.Errorf("succeeded = %v, want none", summary.Succeeded)
	}
	if _, ok := summary.Failed["NEWONE"]; !ok {
		t.Errorf("NEWONE must be reported failed: %+v", summary.Failed)
	}
}

func TestRefreshPricesPartialFailure(t *testing.T) {
	ctx := context.Background()
	eng, src, _ := newTestEngine(t, func(doc *store.Document) error {
		if err := seedSnapshot(doc, "GOLDBEES", "81.73", "81.04", 120000, 90000); err != nil {
			return err
		}
		return seedSnapshot(doc, "NIFTYBEES", "250.00", "249.00", 120000, 90000)
	})
	src.Set(types.Quote{Symbol: "GOLDBEES", Price: dec("82.00")})

	summary, err := eng.RefreshPrices(ctx, nil)
	if err != nil {
		t.Fatalf("RefreshPrices: %v", err)
	}
	if summary.Attempted != 2 || len(summary.Succeeded) != 1 || len(summary.Failed) != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if _, ok := summary.Failed["NIFTYBEES"]; !ok {
		t.Errorf("NIFTYBEES must be the failed one: %+v", summary.Failed)
	}
}

func TestUpdatePriceLinePreservesVolumeFigures(t *testing.T) {
	ctx := context.Background()
	eng, _, st := newTestEngine(t, func(doc *store.Document) error {
		return seedSnapshot(doc, "GOLDBEES", "81.73", "81.04", 120000, 90000)
	})

	if err := eng.UpdatePriceLine(ctx, "GOLDBEES,82.50,81.20"); err != nil {
		t.Fatalf("UpdatePriceLine: %v", err)
	}

	err := st.View(func(doc *store.Document) error {
		snap, err := catalog.Snapshot(doc, "GOLDBEES")
		if err != nil {
			return err
		}
		if !snap.CurrentPrice.Equal(dec("82.50")) || !snap.MovingAverage20.Equal(dec("81.20")) {
			t.Errorf("snapshot = %+v", snap)
		}
		if snap.CurrentVolume != 120000 || snap.Average5DayVolume != 90000 {
			t.Errorf("manual price wiped volume figures: %+v", snap)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestUpdatePriceLineRejectsMalformed(t *testing.T) {
	eng, _, _ := newTestEngine(t, nil)
	if err := eng.UpdatePriceLine(context.Background(), "GOLDBEES,82.50"); !errors.Is(err, types.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUpdateQualificationsPersistsThreshold(t *testing.T) {
	ctx := context.Background()
	eng, _, st := newTestEngine(t, func(doc *store.Document) error {
		if err := seedSnapshot(doc, "BIG", "100", "100", 120000, 90000); err != nil {
			return err
		}
		return seedSnapshot(doc, "SMALL", "100", "100", 120000, 10000)
	})

	summary, err := eng.UpdateQualifications(ctx, 80000)
	if err != nil {
		t.Fatalf("UpdateQualifications: %v", err)
	}
	if summary.Qualified != 1 || summary.Disqualified != 1 {
		t.Errorf("summary = %+v", summary)
	}

	err = st.View(func(doc *store.Document) error {
		if doc.Settings.VolumeThreshold != 80000 {
			t.Errorf("threshold = %v, want 80000 persisted", doc.Settings.VolumeThreshold)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestApplyMappingMovesEverything(t *testing.T) {
	ctx := context.Background()
	eng, _, st := newTestEngine(t, func(doc *store.Document) error {
		if err := seedSnapshot(doc, "GOLDSHARE", "81.73", "81.04", 120000, 90000); err != nil {
			return err
		}
		seedLot(t, doc, "GOLDSHARE", 10, "80.00", "2026-08-01")
		return nil
	})

	if err := eng.ApplyMapping(ctx, "GOLDSHARE", "GOLDBEES", "issuer rename"); err != nil {
		t.Fatalf("ApplyMapping: %v", err)
	}

	history, err := eng.MappingHistory(ctx)
	if err != nil {
		t.Fatalf("MappingHistory: %v", err)
	}
	if len(history) != 1 || history[0].OldSymbol != "GOLDSHARE" || history[0].NewSymbol != "GOLDBEES" {
		t.Errorf("history = %+v", history)
	}

	err = st.View(func(doc *store.Document) error {
		if _, err := catalog.Snapshot(doc, "GOLDBEES"); err != nil {
			t.Errorf("snapshot not moved: %v", err)
		}
		if _, err := catalog.Snapshot(doc, "GOLDSHARE"); err == nil {
			t.Errorf("old snapshot still present")
		}
		if qty, _ := ledger.Position(doc, "GOLDBEES"); qty != 10 {
			t.Errorf("lots not moved, position = %d", qty)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}

	// Reapplying the same mapping is a no-op success.
	if err := eng.ApplyMapping(ctx, "GOLDSHARE", "GOLDBEES", "issuer rename"); err != nil {
		t.Errorf("replay: %v", err)
	}
	if err := eng.ApplyMapping(ctx, "NEVERSEEN", "OTHER", ""); !errors.Is(err, types.ErrUnknownSymbol) {
		t.Errorf("unknown: got %v", err)
	}
}

func TestBulkApplyMappingsContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t, func(doc *store.Document) error {
		if err := seedSnapshot(doc, "OLDA", "100", "100", 120000, 90000); err != nil {
			return err
		}
		return seedSnapshot(doc, "OLDB", "100", "100", 120000, 90000)
	})

	summary, err := eng.BulkApplyMappings(ctx, []types.MappingRow{
		{OldSymbol: "OLDA", NewSymbol: "NEWA"},
		{OldSymbol: "MISSING", NewSymbol: "NEWX"},
		{OldSymbol: "OLDB", NewSymbol: "NEWB"},
	})
	if err != nil {
		t.Fatalf("BulkApplyMappings: %v", err)
	}
	if summary.Attempted != 3 || summary.Applied != 2 || len(summary.Failed) != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.Failed[0].Row.OldSymbol != "MISSING" {
		t.Errorf("failed row = %+v", summary.Failed[0])
	}
}

func TestPortfolioSummaryValuesHoldings(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t, func(doc *store.Document) error {
		if err := seedSnapshot(doc, "GOLDBEES", "85.00", "81.04", 120000, 90000); err != nil {
			return err
		}
		seedLot(t, doc, "GOLDBEES", 10, "80.00", "2026-08-01")
		seedLot(t, doc, "NOQUOTE", 5, "50.00", "2026-08-01")
		return nil
	})

	summary, err := eng.PortfolioSummary(ctx)
	if err != nil {
		t.Fatalf("PortfolioSummary: %v", err)
	}
	if len(summary.Holdings) != 2 {
		t.Fatalf("holdings = %+v", summary.Holdings)
	}

	byName := map[string]types.HoldingSummary{}
	for _, h := range summary.Holdings {
		byName[h.Symbol] = h
	}
	gold := byName["GOLDBEES"]
	if !gold.HasQuote || !gold.CurrentValue.Equal(dec("850.00")) || !gold.UnrealizedPnL.Equal(dec("50.00")) {
		t.Errorf("GOLDBEES holding = %+v", gold)
	}
	if byName["NOQUOTE"].HasQuote {
		t.Errorf("NOQUOTE must have no quote")
	}
	if !summary.TotalInvested.Equal(dec("1050.00")) {
		t.Errorf("total invested = %s, want 1050.00", summary.TotalInvested)
	}
	if !summary.TotalCurrentValue.Equal(dec("850.00")) {
		t.Errorf("total current = %s, want 850.00 (quoted only)", summary.TotalCurrentValue)
	}
	if !summary.TotalUnrealizedPnL.Equal(dec("50.00")) {
		t.Errorf("total unrealized = %s, want 50.00", summary.TotalUnrealizedPnL)
	}
}

func TestStatisticsPassthrough(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t, func(doc *store.Document) error {
		ledger.Append(doc, ledger.NewTransaction("GOLDBEES", types.KindBuy, 10, dec("80"), "2026-08-01"))
		tx := ledger.NewTransaction("GOLDBEES", types.KindSell, 10, dec("85"), "2026-08-02")
		tx.RealizedPnL = dec("50")
		ledger.Append(doc, tx)
		return nil
	})

	stats, err := eng.Statistics(ctx)
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.TotalBuys != 1 || stats.TotalSells != 1 || stats.WinningSells != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.WinRate != 100 {
		t.Errorf("win rate = %v, want 100", stats.WinRate)
	}
}

func TestSizerBufferAndCap(t *testing.T) {
	s := newSizer(10, 50)
	// 10000 less a 10% buffer leaves 9000; 9000/81.73 floors to 110,
	// but the cap stops at 50.
	qty, spent, err := s.suggest(dec("10000"), dec("81.73"))
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if qty != 50 {
		t.Errorf("qty = %d, want capped 50", qty)
	}
	if !spent.Equal(dec("4086.50")) {
		t.Errorf("spent = %s, want 4086.50", spent)
	}

	if _, _, err := newSizer(0, 0).suggest(dec("100"), dec("150")); !errors.Is(err, types.ErrInsufficientCapital) {
		t.Errorf("expected ErrInsufficientCapital, got %v", err)
	}
}
