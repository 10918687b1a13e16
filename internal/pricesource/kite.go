package pricesource

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"etf-trader/internal/catalog"
	"etf-trader/internal/interfaces"
	"etf-trader/internal/ta"
	"etf-trader/internal/types"

	"github.com/shopspring/decimal"
	kiteconnect "github.com/zerodha/gokiteconnect/v4"
)

// Kite fetches quotes through Zerodha Kite Connect. The live quote
// covers price and day volume; the 20-day moving average and 5-day
// average volume come from daily historical candles. A failed
// historical fetch degrades to a price-only quote rather than failing
// the symbol.
type Kite struct {
	kc       *kiteconnect.Client
	exchange string

	mu     sync.Mutex
	tokens map[string]int
}

var _ interfaces.PriceSource = (*Kite)(nil)

// NewKite reads credentials from KITE_API_KEY and KITE_ACCESS_TOKEN.
func NewKite(exchange string) (*Kite, error) {
	apiKey := os.Getenv("KITE_API_KEY")
	accessToken := os.Getenv("KITE_ACCESS_TOKEN")
	if apiKey == "" || accessToken == "" {
		return nil, errors.New("KITE_API_KEY and KITE_ACCESS_TOKEN must be set for the kite source")
	}
	kc := kiteconnect.New(apiKey)
	kc.SetAccessToken(accessToken)
	return &Kite{kc: kc, exchange: exchange, tokens: make(map[string]int)}, nil
}

func (k *Kite) Name() string { return "kite" }

func (k *Kite) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	symbol = catalog.NormalizeSymbol(symbol)
	instrument := k.exchange + ":" + symbol

	quotes, err := k.kc.GetQuote(instrument)
	if err != nil {
		return types.Quote{}, fmt.Errorf("%w: kite quote %s: %v", types.ErrPriceSourceUnavailable, symbol, err)
	}
	q, ok := quotes[instrument]
	if !ok || q.LastPrice <= 0 {
		return types.Quote{}, fmt.Errorf("%w: kite returned no price for %s", types.ErrPriceSourceUnavailable, symbol)
	}

	out := types.Quote{
		Symbol: symbol,
		Price:  decimal.NewFromFloat(q.LastPrice),
		Volume: int64(q.Volume),
	}

	token, err := k.instrumentToken(symbol)
	if err != nil {
		return out, nil
	}
	to := time.Now()
	from := to.AddDate(0, 0, -45) // calendar days, leaves room for holidays
	candles, err := k.kc.GetHistoricalData(token, "day", from, to, false, false)
	if err != nil {
		return out, nil
	}

	closes := make([]float64, 0, len(candles))
	volumes := make([]int64, 0, len(candles))
	for _, c := range candles {
		closes = append(closes, c.Close)
		volumes = append(volumes, int64(c.Volume))
	}
	if ma := ta.SMA(closes, 20); !math.IsNaN(ma) {
		out.MovingAverage20 = decimal.NewFromFloat(ma)
	}
	if av := ta.AvgVolume(volumes, 5); !math.IsNaN(av) {
		out.AvgVolume5Day = av
	}
	return out, nil
}

// instrumentToken resolves a trading symbol to its Kite instrument
// token, caching the whole exchange dump on first use.
func (k *Kite) instrumentToken(symbol string) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if token, ok := k.tokens[symbol]; ok {
		return token, nil
	}

	instruments, err := k.kc.GetInstrumentsByExchange(k.exchange)
	if err != nil {
		return 0, err
	}
	for _, in := range instruments {
		k.tokens[in.Tradingsymbol] = in.InstrumentToken
	}
	if token, ok := k.tokens[symbol]; ok {
		return token, nil
	}
	return 0, fmt.Errorf("no %s instrument named %s", k.exchange, symbol)
}
