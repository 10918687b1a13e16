package ledger

import (
	"etf-trader/internal/store"
	"etf-trader/internal/types"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewTransaction builds a trade record with a fresh identifier. The
// caller appends it once the matching lot mutation has succeeded.
func NewTransaction(symbol, kind string, quantity int, price decimal.Decimal, date string) types.Transaction {
	return types.Transaction{
		ID:          uuid.NewString(),
		Symbol:      symbol,
		Kind:        kind,
		Quantity:    quantity,
		Price:       price,
		Date:        date,
		RealizedPnL: decimal.Zero,
	}
}

// Append adds tx to the append-only transaction log.
func Append(doc *store.Document, tx types.Transaction) {
	doc.Transactions = append(doc.Transactions, tx)
}

// CountOn counts transactions of the given kind dated on the given IST
// calendar day. The daily trade limit is derived from this count, so a
// hand-edited transaction log changes the limit accordingly.
func CountOn(doc *store.Document, kind, date string) int {
	n := 0
	for _, tx := range doc.Transactions {
		if tx.Kind == kind && tx.Date == date {
			n++
		}
	}
	return n
}

// TransactionsOn returns the trades dated on the given IST calendar
// day, in append order.
func TransactionsOn(doc *store.Document, date string) []types.Transaction {
	var out []types.Transaction
	for _, tx := range doc.Transactions {
		if tx.Date == date {
			out = append(out, tx)
		}
	}
	return out
}

// Stats aggregates the whole transaction log. Win rate counts sells
// with positive realized PnL.
func Stats(doc *store.Document) types.Statistics {
	stats := types.Statistics{
		TotalRealizedPnL: decimal.Zero,
		AvgProfitPerSell: decimal.Zero,
	}
	for _, tx := range doc.Transactions {
		switch tx.Kind {
		case types.KindBuy:
			stats.TotalBuys++
		case types.KindSell:
			stats.TotalSells++
			stats.TotalRealizedPnL = stats.TotalRealizedPnL.Add(tx.RealizedPnL)
			if tx.RealizedPnL.IsPositive() {
				stats.WinningSells++
			}
		}
	}
	if stats.TotalSells > 0 {
		stats.WinRate = float64(stats.WinningSells) / float64(stats.TotalSells) * 100
		stats.AvgProfitPerSell = stats.TotalRealizedPnL.Div(decimal.NewFromInt(int64(stats.TotalSells)))
	}
	return stats
}
