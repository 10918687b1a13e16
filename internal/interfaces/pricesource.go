package interfaces

import (
	"context"

	"etf-trader/internal/types"
)

// PriceSource supplies market observations for one symbol at a time.
// Implementations may leave MovingAverage20/AvgVolume5Day zero when the
// upstream cannot provide them.
type PriceSource interface {
	Name() string
	Quote(ctx context.Context, symbol string) (types.Quote, error)
}
