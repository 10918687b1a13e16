// Package ledger owns the lot lifecycle and the transaction log inside
// a store document. Lots for one symbol live in open order; sells
// consume them newest-first and never delete them.
package ledger

import (
	"fmt"
	"sort"

	"etf-trader/internal/store"
	"etf-trader/internal/types"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OpenLot appends a new active lot for symbol and returns it.
func OpenLot(doc *store.Document, symbol string, quantity int, price decimal.Decimal, date string) (*types.Lot, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity %d", types.ErrInvalidQuantity, quantity)
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("%w: price %s", types.ErrInvalidPrice, price)
	}
	lot := types.Lot{
		ID:       uuid.NewString(),
		Symbol:   symbol,
		Quantity: quantity,
		BuyPrice: price,
		BuyDate:  date,
		Status:   types.LotActive,
	}
	doc.Portfolio[symbol] = append(doc.Portfolio[symbol], lot)
	return &lot, nil
}

// ActiveLots returns copies of symbol's open lots, newest buy first.
func ActiveLots(doc *store.Document, symbol string) []types.Lot {
	lots := doc.Portfolio[symbol]
	var out []types.Lot
	for i := len(lots) - 1; i >= 0; i-- {
		if lots[i].Status == types.LotActive {
			out = append(out, lots[i])
		}
	}
	return out
}

// Position reports the total active quantity and the capital still
// invested in it.
func Position(doc *store.Document, symbol string) (int, decimal.Decimal) {
	quantity := 0
	invested := decimal.Zero
	for _, lot := range doc.Portfolio[symbol] {
		if lot.Status != types.LotActive {
			continue
		}
		quantity += lot.Quantity
		invested = invested.Add(lot.BuyPrice.Mul(decimal.NewFromInt(int64(lot.Quantity))))
	}
	return quantity, invested
}

// UnrealizedPnL values symbol's active lots against currentPrice.
func UnrealizedPnL(doc *store.Document, symbol string, currentPrice decimal.Decimal) decimal.Decimal {
	pnl := decimal.Zero
	for _, lot := range doc.Portfolio[symbol] {
		if lot.Status != types.LotActive {
			continue
		}
		pnl = pnl.Add(currentPrice.Sub(lot.BuyPrice).Mul(decimal.NewFromInt(int64(lot.Quantity))))
	}
	return pnl
}

func IsHeld(doc *store.Document, symbol string) bool {
	qty, _ := Position(doc, symbol)
	return qty > 0
}

// HeldSymbols lists symbols with at least one active lot, sorted.
func HeldSymbols(doc *store.Document) []string {
	var out []string
	for sym := range doc.Portfolio {
		if IsHeld(doc, sym) {
			out = append(out, sym)
		}
	}
	sort.Strings(out)
	return out
}

// MostRecentBuyPrice returns the price of symbol's latest buy event,
// sold or not. Averaging-down compares the market against the last
// price actually paid, even when that lot has since been closed.
func MostRecentBuyPrice(doc *store.Document, symbol string) (decimal.Decimal, bool) {
	lots := doc.Portfolio[symbol]
	if len(lots) == 0 {
		return decimal.Zero, false
	}
	return lots[len(lots)-1].BuyPrice, true
}

// CloseLIFO consumes quantity units from symbol's active lots, newest
// buy first, at sellPrice. The sale is all-or-nothing: when active
// holdings cannot cover the full quantity nothing is touched and
// ErrInsufficientHoldings is returned. A fully consumed lot flips to
// sold and keeps its quantity with saleRef for audit; a partially
// consumed lot stays active with the residual. Returns one fill per
// touched lot and the total realized PnL.
func CloseLIFO(doc *store.Document, symbol string, quantity int, sellPrice decimal.Decimal, saleRef string) ([]types.Fill, decimal.Decimal, error) {
	if quantity <= 0 {
		return nil, decimal.Zero, fmt.Errorf("%w: quantity %d", types.ErrInvalidQuantity, quantity)
	}
	if !sellPrice.IsPositive() {
		return nil, decimal.Zero, fmt.Errorf("%w: price %s", types.ErrInvalidPrice, sellPrice)
	}

	held, _ := Position(doc, symbol)
	if held < quantity {
		return nil, decimal.Zero, fmt.Errorf("%w: have %d of %s, want to sell %d", types.ErrInsufficientHoldings, held, symbol, quantity)
	}

	lots := doc.Portfolio[symbol]
	remaining := quantity
	var fills []types.Fill
	realized := decimal.Zero

	for i := len(lots) - 1; i >= 0 && remaining > 0; i-- {
		if lots[i].Status != types.LotActive {
			continue
		}
		consume := lots[i].Quantity
		if consume > remaining {
			consume = remaining
		}
		pnl := sellPrice.Sub(lots[i].BuyPrice).Mul(decimal.NewFromInt(int64(consume)))
		fills = append(fills, types.Fill{
			LotID:    lots[i].ID,
			Quantity: consume,
			BuyPrice: lots[i].BuyPrice,
			PnL:      pnl,
		})
		realized = realized.Add(pnl)
		remaining -= consume

		if consume == lots[i].Quantity {
			lots[i].Status = types.LotSold
			lots[i].SaleRef = saleRef
		} else {
			lots[i].Quantity -= consume
		}
	}
	return fills, realized, nil
}
