package sourceobs

import (
	"context"

	"etf-trader/internal/interfaces"
	"etf-trader/internal/logger"
	"etf-trader/internal/trace"
	"etf-trader/internal/types"
)

type observableSource struct {
	source interfaces.PriceSource
}

var _ interfaces.PriceSource = (*observableSource)(nil)

func Wrap(source interfaces.PriceSource) interfaces.PriceSource {
	return &observableSource{
		source: source,
	}
}

func (os *observableSource) Name() string {
	return os.source.Name()
}

func (os *observableSource) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	ctx, span := trace.StartSpan(ctx, "pricesource.Quote")
	defer span.End()

	timer := logger.StartOperation(ctx, "fetch_quote",
		"source", os.source.Name(),
		"symbol", symbol,
	)

	quote, err := os.source.Quote(ctx, symbol)
	if err != nil {
		timer.EndWithError(err)
		return types.Quote{}, err
	}

	timer.End(
		"price", quote.Price.String(),
		"volume", quote.Volume,
		"has_ma", !quote.MovingAverage20.IsZero(),
	)
	return quote, nil
}
