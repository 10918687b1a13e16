package pricesource

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"etf-trader/internal/catalog"
	"etf-trader/internal/interfaces"
	"etf-trader/internal/logger"
	"etf-trader/internal/types"

	"github.com/shopspring/decimal"
)

// Scrape pulls quotes off public quote pages when no JSON API is
// reachable. Targets are tried in order; the first page that yields a
// price wins. Volume is best effort and the moving average is never
// available from a quote page.
type Scrape struct {
	targets []scrapeTarget
	timeout time.Duration
}

// scrapeTarget defines one quote page layout
type scrapeTarget struct {
	Name      string
	QuoteURL  string // {symbol} is replaced with the uppercase symbol
	Selectors quoteSelectors
	RateLimit time.Duration
}

// quoteSelectors defines CSS selectors for extracting quote data
type quoteSelectors struct {
	Price  string
	Volume string
}

var _ interfaces.PriceSource = (*Scrape)(nil)

func NewScrape(timeout time.Duration) *Scrape {
	return &Scrape{
		targets: defaultTargets(),
		timeout: timeout,
	}
}

func defaultTargets() []scrapeTarget {
	return []scrapeTarget{
		{
			Name:     "GoogleFinance",
			QuoteURL: "https://www.google.com/finance/quote/{symbol}:NSE",
			Selectors: quoteSelectors{
				Price: "div.YMlKec.fxKbKc",
			},
			RateLimit: 2 * time.Second,
		},
		{
			Name:     "MoneyControl",
			QuoteURL: "https://www.moneycontrol.com/india/stockpricequote/exchange-traded-funds/{symbol}",
			Selectors: quoteSelectors{
				Price:  "div#nsecp, span#Nse_Prc_tick",
				Volume: "span#nse_volume, div#nse_volume",
			},
			RateLimit: 2 * time.Second,
		},
	}
}

func (s *Scrape) Name() string { return "scrape" }

func (s *Scrape) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	symbol = catalog.NormalizeSymbol(symbol)

	var lastErr error
	for _, target := range s.targets {
		quote, err := s.scrapeTarget(ctx, target, symbol)
		if err != nil {
			logger.Warn(ctx, "Quote page scrape failed",
				"target", target.Name, "symbol", symbol, "error", err)
			lastErr = err
			time.Sleep(target.RateLimit)
			continue
		}
		return quote, nil
	}
	return types.Quote{}, fmt.Errorf("%w: no quote page yielded %s: %v", types.ErrPriceSourceUnavailable, symbol, lastErr)
}

func (s *Scrape) scrapeTarget(ctx context.Context, target scrapeTarget, symbol string) (types.Quote, error) {
	pageURL := strings.ReplaceAll(target.QuoteURL, "{symbol}", symbol)

	c := colly.NewCollector(
		colly.AllowedDomains(getDomain(pageURL)),
		colly.MaxDepth(1),
		colly.Async(false),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	})

	var priceText, volumeText string
	c.OnHTML("body", func(e *colly.HTMLElement) {
		priceText = firstText(e.DOM, target.Selectors.Price)
		if target.Selectors.Volume != "" {
			volumeText = firstText(e.DOM, target.Selectors.Volume)
		}
	})

	if err := c.Visit(pageURL); err != nil {
		return types.Quote{}, fmt.Errorf("failed to visit %s: %w", pageURL, err)
	}
	c.Wait()

	price, err := parsePriceText(priceText)
	if err != nil {
		return types.Quote{}, fmt.Errorf("%s: %w", target.Name, err)
	}

	quote := types.Quote{Symbol: symbol, Price: price}
	if volumeText != "" {
		if vol, err := parsePriceText(volumeText); err == nil {
			quote.Volume = vol.IntPart()
		}
	}
	return quote, nil
}

// firstText returns the trimmed text of the first node matching any
// of the comma-separated selectors.
func firstText(dom *goquery.Selection, selector string) string {
	sel := dom.Find(selector).First()
	if sel.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(sel.Text())
}

// parsePriceText strips currency signs and thousands separators from
// a scraped figure.
func parsePriceText(text string) (decimal.Decimal, error) {
	if text == "" {
		return decimal.Zero, fmt.Errorf("empty price text")
	}
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, text)
	price, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable price %q", text)
	}
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("non-positive price %q", text)
	}
	return price, nil
}

// getDomain extracts domain from URL
func getDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
