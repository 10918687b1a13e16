package pricesource

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"etf-trader/internal/catalog"
	"etf-trader/internal/interfaces"
	"etf-trader/internal/types"

	"github.com/shopspring/decimal"
)

// CSVFile serves quotes from a broker or data-vendor CSV export. The
// header row names the columns; Symbol and LTP are required, Volume,
// MA20 and AvgVolume are picked up when present. Header names are
// matched case-insensitively and the file is read once on first use.
type CSVFile struct {
	path string

	once   sync.Once
	err    error
	quotes map[string]types.Quote
}

var _ interfaces.PriceSource = (*CSVFile)(nil)

func NewCSVFile(path string) *CSVFile {
	return &CSVFile{path: path}
}

func (c *CSVFile) Name() string { return "csvfile" }

func (c *CSVFile) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	c.once.Do(c.load)
	if c.err != nil {
		return types.Quote{}, fmt.Errorf("%w: csv source: %v", types.ErrPriceSourceUnavailable, c.err)
	}
	q, ok := c.quotes[catalog.NormalizeSymbol(symbol)]
	if !ok {
		return types.Quote{}, fmt.Errorf("%w: %s not in %s", types.ErrPriceSourceUnavailable, symbol, c.path)
	}
	return q, nil
}

// column aliases, lowercased
var (
	symbolColumns = []string{"symbol", "tradingsymbol", "ticker"}
	priceColumns  = []string{"ltp", "price", "cmp", "last_price", "close"}
	volumeColumns = []string{"volume", "qty_traded", "quantity_traded"}
	maColumns     = []string{"ma20", "dma20", "20_dma", "moving_average_20"}
	avgVolColumns = []string{"avg_volume", "avg_volume_5d", "average_volume"}
)

func (c *CSVFile) load() {
	f, err := os.Open(c.path)
	if err != nil {
		c.err = err
		return
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		c.err = err
		return
	}
	if len(records) < 2 {
		c.err = fmt.Errorf("%s has no data rows", c.path)
		return
	}

	header := records[0]
	symbolIdx := findColumn(header, symbolColumns)
	priceIdx := findColumn(header, priceColumns)
	if symbolIdx < 0 || priceIdx < 0 {
		c.err = fmt.Errorf("%s needs Symbol and LTP columns, got %v", c.path, header)
		return
	}
	volumeIdx := findColumn(header, volumeColumns)
	maIdx := findColumn(header, maColumns)
	avgIdx := findColumn(header, avgVolColumns)

	c.quotes = make(map[string]types.Quote, len(records)-1)
	for _, record := range records[1:] {
		if symbolIdx >= len(record) || priceIdx >= len(record) {
			continue
		}
		symbol := catalog.NormalizeSymbol(record[symbolIdx])
		price, err := decimal.NewFromString(strings.TrimSpace(record[priceIdx]))
		if symbol == "" || err != nil || !price.IsPositive() {
			continue
		}

		q := types.Quote{Symbol: symbol, Price: price}
		if volumeIdx >= 0 && volumeIdx < len(record) {
			if vol, err := strconv.ParseInt(strings.TrimSpace(record[volumeIdx]), 10, 64); err == nil {
				q.Volume = vol
			}
		}
		if maIdx >= 0 && maIdx < len(record) {
			if ma, err := decimal.NewFromString(strings.TrimSpace(record[maIdx])); err == nil && ma.IsPositive() {
				q.MovingAverage20 = ma
			}
		}
		if avgIdx >= 0 && avgIdx < len(record) {
			if av, err := strconv.ParseFloat(strings.TrimSpace(record[avgIdx]), 64); err == nil && av > 0 {
				q.AvgVolume5Day = av
			}
		}
		c.quotes[symbol] = q
	}
}

func findColumn(header []string, names []string) int {
	for i, col := range header {
		col = strings.ToLower(strings.TrimSpace(col))
		for _, name := range names {
			if col == name {
				return i
			}
		}
	}
	return -1
}
