package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"etf-trader/internal/input"
	"etf-trader/internal/interfaces"
	"etf-trader/internal/types"
)

func showRanking(ctx context.Context, eng interfaces.Engine) {
	ranked, err := eng.Ranking(ctx)
	if err != nil {
		fmt.Printf("❌ Ranking failed: %v\n", err)
		return
	}
	if len(ranked) == 0 {
		fmt.Println("No rankable instruments. Refresh prices or relax the volume filter.")
		return
	}

	fmt.Println("\n📊 DEVIATION RANKING (most oversold first)")
	fmt.Println("───────────────────────────────────────────")
	for i, r := range ranked {
		fmt.Printf("  #%-3d %-14s %9s%%\n", i+1, r.Symbol, r.Deviation.StringFixed(2))
	}
}

func showBuyProposal(ctx context.Context, eng interfaces.Engine) {
	p, err := eng.ProposeBuy(ctx)
	if err != nil {
		fmt.Printf("❌ Buy proposal failed: %v\n", err)
		return
	}
	printProposal("buy", p)
}

func showSellProposal(ctx context.Context, eng interfaces.Engine) {
	p, err := eng.ProposeSell(ctx)
	if err != nil {
		fmt.Printf("❌ Sell proposal failed: %v\n", err)
		return
	}
	printProposal("sell", p)
}

func printProposal(side string, p *types.Proposal) {
	if p.Action == types.ActionNone {
		fmt.Printf("💤 No %s today: %s\n", side, p.Reason)
		return
	}

	fmt.Printf("\n✅ Proposed %s: %d x %s @ %s\n", p.Action, p.Quantity, p.Symbol, p.Price.StringFixed(2))
	fmt.Printf("   Reason: %s\n", p.Reason)
	if p.Action == types.ActionBuy {
		fmt.Printf("   Outlay: %s    Deviation: %s%%\n", p.Spent.StringFixed(2), p.Deviation.StringFixed(2))
	} else {
		fmt.Printf("   Lot profit: %s%%\n", p.ProfitPct.StringFixed(2))
	}
	fmt.Println("   Record the fill with menu option 4 or 5 once placed with your broker.")
}

func recordBuy(ctx context.Context, eng interfaces.Engine, sc *bufio.Scanner) {
	symbol := prompt(sc, "Symbol: ")
	line := prompt(sc, "Quantity,Price (e.g. 122,81.73): ")
	qty, price, err := input.ParseTradeInput(line)
	if err != nil {
		fmt.Printf("❌ Rejected: %v\n", err)
		return
	}

	tx, err := eng.ExecuteBuy(ctx, symbol, qty, price)
	if err != nil {
		fmt.Printf("❌ Buy failed: %v\n", err)
		return
	}
	fmt.Printf("✅ Bought %d x %s @ %s  (tx %s)\n", tx.Quantity, tx.Symbol, tx.Price.StringFixed(2), tx.ID)
}

func recordSell(ctx context.Context, eng interfaces.Engine, sc *bufio.Scanner) {
	symbol := prompt(sc, "Symbol: ")
	line := prompt(sc, "Quantity,Price (e.g. 122,85.00): ")
	qty, price, err := input.ParseTradeInput(line)
	if err != nil {
		fmt.Printf("❌ Rejected: %v\n", err)
		return
	}

	result, err := eng.ExecuteSell(ctx, symbol, qty, price)
	if err != nil {
		fmt.Printf("❌ Sell failed: %v\n", err)
		return
	}
	tx := result.Transaction
	fmt.Printf("✅ Sold %d x %s @ %s  (tx %s)\n", tx.Quantity, tx.Symbol, tx.Price.StringFixed(2), tx.ID)
	fmt.Printf("   Realized P&L: %s across %d lot(s)\n", result.RealizedPnL.StringFixed(2), len(result.Fills))
	for _, f := range result.Fills {
		fmt.Printf("   • lot %s: %d @ %s → %s\n", f.LotID, f.Quantity, f.BuyPrice.StringFixed(2), f.PnL.StringFixed(2))
	}
}

func pastePriceLines(ctx context.Context, eng interfaces.Engine, sc *bufio.Scanner) {
	fmt.Println("Paste SYMBOL,PRICE,MA20 lines. Empty line finishes.")
	var lines []string
	for {
		fmt.Print("  ")
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			break
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		fmt.Println("Nothing to apply.")
		return
	}

	parsed, failed := input.ParsePriceLines(lines)
	for _, f := range failed {
		fmt.Printf("  ❌ line %d: %v\n", f.Line, f.Err)
	}

	applied := 0
	for _, pl := range parsed {
		line := fmt.Sprintf("%s,%s,%s", pl.Symbol, pl.Price, pl.MA20)
		if err := eng.UpdatePriceLine(ctx, line); err != nil {
			fmt.Printf("  ❌ %s: %v\n", pl.Symbol, err)
			continue
		}
		applied++
	}
	fmt.Printf("✅ Applied %d of %d lines\n", applied, len(lines))
}

func refreshPrices(ctx context.Context, eng interfaces.Engine, sc *bufio.Scanner) {
	raw := prompt(sc, "Symbols (comma separated, empty = all known): ")
	symbols := splitSymbols(raw)

	summary, err := eng.RefreshPrices(ctx, symbols)
	if err != nil {
		fmt.Printf("❌ Refresh failed: %v\n", err)
		return
	}
	printRefreshSummary(summary)
}

func printRefreshSummary(summary *types.RefreshSummary) {
	fmt.Printf("✅ Refreshed %d of %d symbols\n", len(summary.Succeeded), summary.Attempted)
	for _, sym := range summary.Succeeded {
		fmt.Printf("   • %s\n", sym)
	}
	for sym, msg := range summary.Failed {
		fmt.Printf("   ❌ %s: %s\n", sym, msg)
	}
}

func recheckQualifications(ctx context.Context, eng interfaces.Engine, sc *bufio.Scanner) {
	raw := prompt(sc, "Volume threshold (empty = keep current): ")
	var threshold float64
	if raw == "" {
		report, err := eng.VolumeReport(ctx)
		if err != nil {
			fmt.Printf("❌ Cannot read current threshold: %v\n", err)
			return
		}
		threshold = report.Threshold
	} else {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			fmt.Printf("❌ Not a number: %q\n", raw)
			return
		}
		threshold = v
	}

	summary, err := eng.UpdateQualifications(ctx, threshold)
	if err != nil {
		fmt.Printf("❌ Qualification update failed: %v\n", err)
		return
	}
	fmt.Printf("✅ Threshold %.0f: %d qualified, %d disqualified\n",
		summary.Threshold, summary.Qualified, summary.Disqualified)
}

func showVolumeReport(ctx context.Context, eng interfaces.Engine) {
	report, err := eng.VolumeReport(ctx)
	if err != nil {
		fmt.Printf("❌ Volume report failed: %v\n", err)
		return
	}

	state := "OFF"
	if report.FilterEnabled {
		state = "ON"
	}
	fmt.Printf("\n📈 VOLUME FILTER — threshold %.0f, filter %s\n", report.Threshold, state)
	fmt.Println("───────────────────────────────────────────")
	for _, e := range report.Qualified {
		fmt.Printf("  ✅ %-14s avg5d %12.0f  today %12d  as of %s\n", e.Symbol, e.AvgVolume5Day, e.CurrentVolume, e.LastUpdated.In(types.IST).Format(types.DateLayout))
	}
	for _, e := range report.Disqualified {
		fmt.Printf("  ❌ %-14s avg5d %12.0f  today %12d  as of %s\n", e.Symbol, e.AvgVolume5Day, e.CurrentVolume, e.LastUpdated.In(types.IST).Format(types.DateLayout))
	}
	for _, sym := range report.MissingData {
		fmt.Printf("  ⚠️  %-14s no volume data\n", sym)
	}
}

func showPortfolio(ctx context.Context, eng interfaces.Engine) {
	summary, err := eng.PortfolioSummary(ctx)
	if err != nil {
		fmt.Printf("❌ Portfolio summary failed: %v\n", err)
		return
	}
	if len(summary.Holdings) == 0 {
		fmt.Println("Portfolio is empty.")
		return
	}

	fmt.Println("\n💼 PORTFOLIO")
	fmt.Println("───────────────────────────────────────────────────────────────")
	fmt.Printf("  %-14s %4s %6s %12s %12s %12s\n", "SYMBOL", "LOTS", "QTY", "INVESTED", "VALUE", "P&L")
	for _, h := range summary.Holdings {
		value, pnl := h.CurrentValue.StringFixed(2), h.UnrealizedPnL.StringFixed(2)
		if !h.HasQuote {
			value, pnl = "-", "-"
		}
		fmt.Printf("  %-14s %4d %6d %12s %12s %12s\n",
			h.Symbol, h.Lots, h.TotalQuantity, h.Invested.StringFixed(2), value, pnl)
	}
	fmt.Println("───────────────────────────────────────────────────────────────")
	fmt.Printf("  %-14s %4s %6s %12s %12s %12s\n", "TOTAL", "", "",
		summary.TotalInvested.StringFixed(2),
		summary.TotalCurrentValue.StringFixed(2),
		summary.TotalUnrealizedPnL.StringFixed(2))
}

func showStatistics(ctx context.Context, eng interfaces.Engine) {
	stats, err := eng.Statistics(ctx)
	if err != nil {
		fmt.Printf("❌ Statistics failed: %v\n", err)
		return
	}

	fmt.Println("\n🏁 PERFORMANCE")
	fmt.Println("───────────────────────────────────────────")
	fmt.Printf("  Buys:              %d\n", stats.TotalBuys)
	fmt.Printf("  Sells:             %d\n", stats.TotalSells)
	fmt.Printf("  Winning sells:     %d\n", stats.WinningSells)
	fmt.Printf("  Win rate:          %.1f%%\n", stats.WinRate)
	fmt.Printf("  Realized P&L:      %s\n", stats.TotalRealizedPnL.StringFixed(2))
	fmt.Printf("  Avg P&L per sell:  %s\n", stats.AvgProfitPerSell.StringFixed(2))
}

func renameSymbol(ctx context.Context, eng interfaces.Engine, sc *bufio.Scanner) {
	oldSym := prompt(sc, "Old symbol: ")
	newSym := prompt(sc, "New symbol: ")
	reason := prompt(sc, "Reason (optional): ")

	if err := eng.ApplyMapping(ctx, oldSym, newSym, reason); err != nil {
		fmt.Printf("❌ Rename failed: %v\n", err)
		return
	}
	fmt.Printf("✅ %s → %s applied everywhere\n", strings.ToUpper(strings.TrimSpace(oldSym)), strings.ToUpper(strings.TrimSpace(newSym)))
}

func bulkRename(ctx context.Context, eng interfaces.Engine, sc *bufio.Scanner) {
	path := prompt(sc, "CSV path (old_symbol,new_symbol,reason): ")
	f, err := os.Open(path)
	if err != nil {
		fmt.Printf("❌ Cannot open %s: %v\n", path, err)
		return
	}
	defer f.Close()

	rows, err := input.ParseMappingRows(f)
	if err != nil {
		fmt.Printf("❌ Bad CSV: %v\n", err)
		return
	}
	if len(rows) == 0 {
		fmt.Println("CSV has no mapping rows.")
		return
	}

	summary, err := eng.BulkApplyMappings(ctx, rows)
	if err != nil {
		fmt.Printf("❌ Bulk rename failed: %v\n", err)
		return
	}
	fmt.Printf("✅ Applied %d of %d mappings\n", summary.Applied, summary.Attempted)
	for _, res := range summary.Failed {
		fmt.Printf("   ❌ %s → %s: %s\n", res.Row.OldSymbol, res.Row.NewSymbol, res.Error)
	}
}

func showRenameHistory(ctx context.Context, eng interfaces.Engine) {
	history, err := eng.MappingHistory(ctx)
	if err != nil {
		fmt.Printf("❌ History failed: %v\n", err)
		return
	}
	if len(history) == 0 {
		fmt.Println("No renames recorded.")
		return
	}

	fmt.Println("\n📜 RENAME HISTORY")
	fmt.Println("───────────────────────────────────────────")
	for _, m := range history {
		reason := m.Reason
		if reason == "" {
			reason = "-"
		}
		fmt.Printf("  %s  %-12s → %-12s %s\n",
			m.AppliedAt.Format("2006-01-02"), m.OldSymbol, m.NewSymbol, reason)
	}
}

func splitSymbols(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var symbols []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}
