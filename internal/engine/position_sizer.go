package engine

import (
	"fmt"

	"etf-trader/internal/types"

	"github.com/shopspring/decimal"
)

// sizer turns the configured investment amount into a whole-unit order
// quantity.
type sizer struct {
	bufferPct   decimal.Decimal // capital held back, percent of the investment amount
	maxQuantity int             // cap on suggested units, 0 disables
}

func newSizer(bufferPct float64, maxQuantity int) *sizer {
	return &sizer{
		bufferPct:   decimal.NewFromFloat(bufferPct),
		maxQuantity: maxQuantity,
	}
}

// suggest returns the largest whole quantity whose cost fits inside the
// investment amount less the buffer, and the capital it would spend.
func (s *sizer) suggest(investment, price decimal.Decimal) (int, decimal.Decimal, error) {
	if !price.IsPositive() {
		return 0, decimal.Zero, fmt.Errorf("%w: price %s", types.ErrInvalidPrice, price)
	}
	usable := investment.Mul(hundred.Sub(s.bufferPct)).Div(hundred)
	qty := int(usable.Div(price).IntPart())
	if s.maxQuantity > 0 && qty > s.maxQuantity {
		qty = s.maxQuantity
	}
	if qty <= 0 {
		return 0, decimal.Zero, fmt.Errorf("%w: %s buys no whole unit at %s", types.ErrInsufficientCapital, investment, price)
	}
	return qty, price.Mul(decimal.NewFromInt(int64(qty))), nil
}
