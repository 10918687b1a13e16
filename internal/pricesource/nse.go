package pricesource

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"etf-trader/internal/api"
	"etf-trader/internal/catalog"
	"etf-trader/internal/interfaces"
	"etf-trader/internal/types"

	"github.com/shopspring/decimal"
)

const nseBaseURL = "https://www.nseindia.com"

// NSE fetches quotes from the NSE India quote-equity endpoint. The
// endpoint rejects cookieless clients, so the first call warms up a
// session against the base URL and the jar carries it from there.
// The endpoint has no moving average or volume history; those fields
// stay zero and the caller keeps its stored values.
type NSE struct {
	client *api.Client

	mu     sync.Mutex
	warmed bool
}

var _ interfaces.PriceSource = (*NSE)(nil)

func NewNSE() *NSE {
	opts := []api.ClientOption{
		api.WithBaseURL(nseBaseURL),
		api.WithTimeout(30 * time.Second),
		api.WithCookieJar(),
		api.WithLogging(true),
	}
	for key, value := range api.NSEHeaders() {
		opts = append(opts, api.WithHeader(key, value))
	}
	return &NSE{client: api.NewClient(opts...)}
}

func (n *NSE) Name() string { return "nse" }

type nseQuoteResponse struct {
	PriceInfo struct {
		LastPrice decimal.Decimal `json:"lastPrice"`
	} `json:"priceInfo"`
	SecurityWiseDP struct {
		QuantityTraded int64 `json:"quantityTraded"`
	} `json:"securityWiseDP"`
}

func (n *NSE) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	symbol = catalog.NormalizeSymbol(symbol)

	if err := n.warmup(ctx); err != nil {
		return types.Quote{}, fmt.Errorf("%w: nse session warmup: %v", types.ErrPriceSourceUnavailable, err)
	}

	req := api.NewRequest(http.MethodGet, "/api/quote-equity?symbol="+symbol).WithContext(ctx)
	resp, err := n.client.DoWithRetry(req, nil)
	if err != nil {
		return types.Quote{}, fmt.Errorf("%w: nse quote %s: %v", types.ErrPriceSourceUnavailable, symbol, err)
	}

	var parsed nseQuoteResponse
	if err := resp.ParseJSON(&parsed); err != nil {
		return types.Quote{}, fmt.Errorf("%w: nse quote %s: %v", types.ErrPriceSourceUnavailable, symbol, err)
	}
	if !parsed.PriceInfo.LastPrice.IsPositive() {
		return types.Quote{}, fmt.Errorf("%w: nse returned no price for %s", types.ErrPriceSourceUnavailable, symbol)
	}

	return types.Quote{
		Symbol: symbol,
		Price:  parsed.PriceInfo.LastPrice,
		Volume: parsed.SecurityWiseDP.QuantityTraded,
	}, nil
}

// warmup establishes the NSE session cookie once per client.
func (n *NSE) warmup(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.warmed {
		return nil
	}
	if _, err := n.client.GET(ctx, "/"); err != nil {
		return err
	}
	n.warmed = true
	return nil
}
