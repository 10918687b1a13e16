package eod

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"etf-trader/internal/tradelog"

	"github.com/shopspring/decimal"
)

type eodSummarizer struct{}

// aggRow accumulates one symbol's trades for the day. Realized PnL is
// taken from the journal entries themselves, which carry the exact
// lot-matched figure.
type aggRow struct {
	Symbol      string
	BuyQty      int
	BuyValue    decimal.Decimal
	SellQty     int
	SellValue   decimal.Decimal
	RealizedPnL decimal.Decimal
}

// SummarizeDay aggregates the day's trade journal into a per-symbol
// CSV. Returns "" with no error when the day has no trades.
func (es *eodSummarizer) SummarizeDay(t time.Time) (string, error) {
	entries, err := tradelog.ReadDay(t)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", nil
	}

	aggs := map[string]*aggRow{}
	for _, e := range entries {
		row := aggs[e.Symbol]
		if row == nil {
			row = &aggRow{Symbol: e.Symbol, BuyValue: decimal.Zero, SellValue: decimal.Zero, RealizedPnL: decimal.Zero}
			aggs[e.Symbol] = row
		}
		price, err := decimal.NewFromString(e.Price)
		if err != nil {
			continue
		}
		value := price.Mul(decimal.NewFromInt(int64(e.Qty)))
		switch e.Side {
		case "BUY":
			row.BuyQty += e.Qty
			row.BuyValue = row.BuyValue.Add(value)
		case "SELL":
			row.SellQty += e.Qty
			row.SellValue = row.SellValue.Add(value)
			if pnl, err := decimal.NewFromString(e.PnL); err == nil {
				row.RealizedPnL = row.RealizedPnL.Add(pnl)
			}
		}
	}
	if len(aggs) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(aggs))
	for k := range aggs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	outPath := csvPath(t)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	defer w.Flush()
	if err := w.Write([]string{"symbol", "buy_qty", "buy_avg", "sell_qty", "sell_avg", "realized_pnl", "gross_buy_value", "gross_sell_value"}); err != nil {
		return "", err
	}

	totalBuy, totalSell, totalPnL := decimal.Zero, decimal.Zero, decimal.Zero
	for _, k := range keys {
		r := aggs[k]
		buyAvg, sellAvg := decimal.Zero, decimal.Zero
		if r.BuyQty > 0 {
			buyAvg = r.BuyValue.Div(decimal.NewFromInt(int64(r.BuyQty)))
		}
		if r.SellQty > 0 {
			sellAvg = r.SellValue.Div(decimal.NewFromInt(int64(r.SellQty)))
		}
		rec := []string{
			r.Symbol,
			strconv.Itoa(r.BuyQty),
			buyAvg.StringFixed(4),
			strconv.Itoa(r.SellQty),
			sellAvg.StringFixed(4),
			r.RealizedPnL.StringFixed(2),
			r.BuyValue.StringFixed(2),
			r.SellValue.StringFixed(2),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
		totalBuy = totalBuy.Add(r.BuyValue)
		totalSell = totalSell.Add(r.SellValue)
		totalPnL = totalPnL.Add(r.RealizedPnL)
	}
	_ = w.Write([]string{"TOTAL", "", "", "", "", totalPnL.StringFixed(2), totalBuy.StringFixed(2), totalSell.StringFixed(2)})
	return outPath, nil
}

func (es *eodSummarizer) SummarizeToday() (string, error) {
	return es.SummarizeDay(istNow())
}
