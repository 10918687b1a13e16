package engine

import (
	"context"
	"fmt"

	"etf-trader/internal/catalog"
	"etf-trader/internal/ledger"
	"etf-trader/internal/logger"
	"etf-trader/internal/store"
	"etf-trader/internal/tradelog"
	"etf-trader/internal/types"

	"github.com/shopspring/decimal"
)

// ExecuteBuy opens a lot and appends the transaction in one atomic
// update. The daily limit is re-checked inside the update, so two
// front ends racing on one store cannot both buy today.
func (e *Engine) ExecuteBuy(ctx context.Context, symbol string, quantity int, price decimal.Decimal) (*types.Transaction, error) {
	symbol = catalog.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", types.ErrInvalidInput)
	}
	today := types.Today()

	var tx types.Transaction
	err := e.st.Update(func(doc *store.Document) error {
		if ledger.CountOn(doc, types.KindBuy, today) > 0 {
			return fmt.Errorf("%w: buy already executed on %s", types.ErrDailyLimitReached, today)
		}
		if _, err := ledger.OpenLot(doc, symbol, quantity, price, today); err != nil {
			return err
		}
		tx = ledger.NewTransaction(symbol, types.KindBuy, quantity, price, today)
		ledger.Append(doc, tx)
		return nil
	})
	if err != nil {
		logger.ErrorWithErr(ctx, "Buy rejected", err,
			"symbol", symbol,
			"qty", quantity,
			"price", price.String(),
		)
		return nil, err
	}

	logger.Trade(ctx, symbol, types.KindBuy, quantity, price.String(), tx.ID)
	_ = tradelog.Append(tradelog.Entry{
		Symbol: symbol,
		Side:   types.KindBuy,
		Qty:    quantity,
		Price:  price.String(),
		TxID:   tx.ID,
	})
	return &tx, nil
}

// ExecuteSell closes lots newest-first and appends the transaction in
// one atomic update. The consumed lots reference the transaction ID,
// so every sale can be traced back from the portfolio.
func (e *Engine) ExecuteSell(ctx context.Context, symbol string, quantity int, price decimal.Decimal) (*types.SellResult, error) {
	symbol = catalog.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", types.ErrInvalidInput)
	}
	today := types.Today()

	var result types.SellResult
	err := e.st.Update(func(doc *store.Document) error {
		if ledger.CountOn(doc, types.KindSell, today) > 0 {
			return fmt.Errorf("%w: sell already executed on %s", types.ErrDailyLimitReached, today)
		}
		tx := ledger.NewTransaction(symbol, types.KindSell, quantity, price, today)
		fills, realized, err := ledger.CloseLIFO(doc, symbol, quantity, price, tx.ID)
		if err != nil {
			return err
		}
		tx.RealizedPnL = realized
		ledger.Append(doc, tx)
		result = types.SellResult{Transaction: tx, Fills: fills, RealizedPnL: realized}
		return nil
	})
	if err != nil {
		logger.ErrorWithErr(ctx, "Sell rejected", err,
			"symbol", symbol,
			"qty", quantity,
			"price", price.String(),
		)
		return nil, err
	}

	logger.Trade(ctx, symbol, types.KindSell, quantity, price.String(), result.Transaction.ID,
		"realized_pnl", result.RealizedPnL.String(),
		"fills", len(result.Fills),
	)
	_ = tradelog.Append(tradelog.Entry{
		Symbol: symbol,
		Side:   types.KindSell,
		Qty:    quantity,
		Price:  price.String(),
		TxID:   result.Transaction.ID,
		PnL:    result.RealizedPnL.String(),
		Fills:  len(result.Fills),
	})
	return &result, nil
}
