// Package input parses the operator-facing text formats: manual price
// lines, trade quantities and prices, and mapping CSV files. Parsers
// validate hard so the engine only ever sees usable values.
package input

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"etf-trader/internal/catalog"
	"etf-trader/internal/types"

	"github.com/shopspring/decimal"
)

// Manual entry caps. Orders beyond these are almost certainly typos.
const (
	MaxQuantity = 10000
	MaxPrice    = 100000
)

// PriceLine is one parsed SYMBOL,PRICE,MA20 row.
type PriceLine struct {
	Symbol string
	Price  decimal.Decimal
	MA20   decimal.Decimal
}

// ParsePriceLine parses a "SYMBOL,PRICE,MA20" line. Whitespace around
// fields is tolerated, missing or non-positive numbers are not.
func ParsePriceLine(line string) (PriceLine, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return PriceLine{}, fmt.Errorf("%w: want SYMBOL,PRICE,MA20, got %d fields", types.ErrInvalidInput, len(parts))
	}

	symbol := catalog.NormalizeSymbol(parts[0])
	if symbol == "" {
		return PriceLine{}, fmt.Errorf("%w: empty symbol", types.ErrInvalidInput)
	}

	price, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return PriceLine{}, fmt.Errorf("%w: price %q", types.ErrInvalidInput, strings.TrimSpace(parts[1]))
	}
	if !price.IsPositive() {
		return PriceLine{}, fmt.Errorf("%w: price must be positive, got %s", types.ErrInvalidInput, price)
	}

	ma, err := decimal.NewFromString(strings.TrimSpace(parts[2]))
	if err != nil {
		return PriceLine{}, fmt.Errorf("%w: moving average %q", types.ErrInvalidInput, strings.TrimSpace(parts[2]))
	}
	if !ma.IsPositive() {
		return PriceLine{}, fmt.Errorf("%w: moving average must be positive, got %s", types.ErrInvalidInput, ma)
	}

	return PriceLine{Symbol: symbol, Price: price, MA20: ma}, nil
}

// ParseQuantity parses a whole-unit order quantity within the manual
// entry cap.
func ParseQuantity(s string) (int, error) {
	qty, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: quantity %q", types.ErrInvalidQuantity, strings.TrimSpace(s))
	}
	if qty <= 0 {
		return 0, fmt.Errorf("%w: quantity must be positive, got %d", types.ErrInvalidQuantity, qty)
	}
	if qty > MaxQuantity {
		return 0, fmt.Errorf("%w: quantity %d above cap %d", types.ErrInvalidQuantity, qty, MaxQuantity)
	}
	return qty, nil
}

// ParsePrice parses an order price within the manual entry cap.
func ParsePrice(s string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: price %q", types.ErrInvalidPrice, strings.TrimSpace(s))
	}
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: price must be positive, got %s", types.ErrInvalidPrice, price)
	}
	if price.GreaterThan(decimal.NewFromInt(MaxPrice)) {
		return decimal.Zero, fmt.Errorf("%w: price %s above cap %d", types.ErrInvalidPrice, price, MaxPrice)
	}
	return price, nil
}

// LineError ties a parse failure to its 1-based line number.
type LineError struct {
	Line int
	Err  error
}

// ParsePriceLines parses a batch of price lines. Bad lines are
// rejected individually; blank lines are skipped.
func ParsePriceLines(lines []string) ([]PriceLine, []LineError) {
	var parsed []PriceLine
	var failed []LineError
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		pl, err := ParsePriceLine(line)
		if err != nil {
			failed = append(failed, LineError{Line: i + 1, Err: err})
			continue
		}
		parsed = append(parsed, pl)
	}
	return parsed, failed
}

// ParseTradeInput parses a "QTY,PRICE" order line.
func ParseTradeInput(line string) (int, decimal.Decimal, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 2 {
		return 0, decimal.Zero, fmt.Errorf("%w: want QTY,PRICE, got %d fields", types.ErrInvalidInput, len(parts))
	}
	qty, err := ParseQuantity(parts[0])
	if err != nil {
		return 0, decimal.Zero, err
	}
	price, err := ParsePrice(parts[1])
	if err != nil {
		return 0, decimal.Zero, err
	}
	return qty, price, nil
}

// ParseMappingRows reads oldSymbol,newSymbol[,reason] rows from a CSV
// stream. A leading header row naming the columns is skipped. Symbol
// normalization is left to the migration itself.
func ParseMappingRows(r io.Reader) ([]types.MappingRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows []types.MappingRow
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrInvalidInput, err)
		}
		line++

		if len(record) < 2 || len(record) > 3 {
			return nil, fmt.Errorf("%w: line %d has %d fields, want 2 or 3", types.ErrInvalidInput, line, len(record))
		}
		if line == 1 && isMappingHeader(record) {
			continue
		}

		row := types.MappingRow{
			OldSymbol: strings.TrimSpace(record[0]),
			NewSymbol: strings.TrimSpace(record[1]),
		}
		if len(record) == 3 {
			row.Reason = strings.TrimSpace(record[2])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isMappingHeader(record []string) bool {
	first := strings.ToLower(strings.TrimSpace(record[0]))
	return first == "old_symbol" || first == "oldsymbol" || first == "old"
}
