package input

import (
	"errors"
	"strings"
	"testing"

	"etf-trader/internal/types"
)

func TestParsePriceLine(t *testing.T) {
	pl, err := ParsePriceLine("GOLDBEES,81.73,81.04")
	if err != nil {
		t.Fatalf("ParsePriceLine: %v", err)
	}
	if pl.Symbol != "GOLDBEES" || pl.Price.String() != "81.73" || pl.MA20.String() != "81.04" {
		t.Errorf("parsed line wrong: %+v", pl)
	}
}

func TestParsePriceLineTolerance(t *testing.T) {
	pl, err := ParsePriceLine("  goldbees.NS , 81.73 , 81.04 ")
	if err != nil {
		t.Fatalf("ParsePriceLine with padding: %v", err)
	}
	if pl.Symbol != "GOLDBEES" {
		t.Errorf("symbol not normalized: %q", pl.Symbol)
	}
}

func TestParsePriceLineRejects(t *testing.T) {
	cases := []string{
		"GOLDBEES,81.73",           // missing MA
		"GOLDBEES,81.73,81.04,x",   // too many fields
		",81.73,81.04",             // empty symbol
		"GOLDBEES,abc,81.04",       // bad price
		"GOLDBEES,81.73,zero",      // bad MA
		"GOLDBEES,0,81.04",         // non-positive price
		"GOLDBEES,81.73,0",         // non-positive MA
		"GOLDBEES,81.73,-1",        // negative MA
		"",                         // empty line
	}
	for _, line := range cases {
		if _, err := ParsePriceLine(line); !errors.Is(err, types.ErrInvalidInput) {
			t.Errorf("line %q: expected ErrInvalidInput, got %v", line, err)
		}
	}
}

func TestParseQuantity(t *testing.T) {
	if qty, err := ParseQuantity(" 42 "); err != nil || qty != 42 {
		t.Errorf("ParseQuantity(42) = %d, %v", qty, err)
	}
	for _, s := range []string{"0", "-5", "abc", "3.5", "10001"} {
		if _, err := ParseQuantity(s); !errors.Is(err, types.ErrInvalidQuantity) {
			t.Errorf("quantity %q: expected ErrInvalidQuantity, got %v", s, err)
		}
	}
	if qty, err := ParseQuantity("10000"); err != nil || qty != MaxQuantity {
		t.Errorf("cap itself must parse, got %d, %v", qty, err)
	}
}

func TestParsePrice(t *testing.T) {
	if p, err := ParsePrice("81.73"); err != nil || p.String() != "81.73" {
		t.Errorf("ParsePrice(81.73) = %s, %v", p, err)
	}
	for _, s := range []string{"0", "-1", "NaN-ish", "100000.01"} {
		if _, err := ParsePrice(s); !errors.Is(err, types.ErrInvalidPrice) {
			t.Errorf("price %q: expected ErrInvalidPrice, got %v", s, err)
		}
	}
	if p, err := ParsePrice("100000"); err != nil || p.String() != "100000" {
		t.Errorf("cap itself must parse, got %s, %v", p, err)
	}
}

func TestParsePriceLinesRejectsIndividually(t *testing.T) {
	lines := []string{
		"GOLDBEES,81.73,81.04",
		"",
		"BROKEN,nope,81.04",
		"NIFTYBEES,250.10,248.00",
	}
	parsed, failed := ParsePriceLines(lines)
	if len(parsed) != 2 {
		t.Fatalf("want 2 parsed, got %d", len(parsed))
	}
	if parsed[0].Symbol != "GOLDBEES" || parsed[1].Symbol != "NIFTYBEES" {
		t.Errorf("wrong lines survived: %+v", parsed)
	}
	if len(failed) != 1 || failed[0].Line != 3 {
		t.Fatalf("want line 3 rejected, got %+v", failed)
	}
	if !errors.Is(failed[0].Err, types.ErrInvalidInput) {
		t.Errorf("rejection must carry ErrInvalidInput, got %v", failed[0].Err)
	}
}

func TestParseTradeInput(t *testing.T) {
	qty, price, err := ParseTradeInput("5, 81.73")
	if err != nil || qty != 5 || price.String() != "81.73" {
		t.Errorf("ParseTradeInput = %d, %s, %v", qty, price, err)
	}
	if _, _, err := ParseTradeInput("5"); !errors.Is(err, types.ErrInvalidInput) {
		t.Errorf("missing price: got %v", err)
	}
	if _, _, err := ParseTradeInput("0,81.73"); !errors.Is(err, types.ErrInvalidQuantity) {
		t.Errorf("zero qty: got %v", err)
	}
	if _, _, err := ParseTradeInput("5,0"); !errors.Is(err, types.ErrInvalidPrice) {
		t.Errorf("zero price: got %v", err)
	}
}

func TestParseMappingRows(t *testing.T) {
	csvData := `old_symbol,new_symbol,reason
GOLDBEES,GOLDETF,issuer rename
NIFTYBEES,NIFTYETF
`
	rows, err := ParseMappingRows(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ParseMappingRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("want 2 rows, got %d", len(rows))
	}
	if rows[0].OldSymbol != "GOLDBEES" || rows[0].NewSymbol != "GOLDETF" || rows[0].Reason != "issuer rename" {
		t.Errorf("row 0 wrong: %+v", rows[0])
	}
	if rows[1].Reason != "" {
		t.Errorf("reason must default to empty, got %q", rows[1].Reason)
	}
}

func TestParseMappingRowsWithoutHeader(t *testing.T) {
	rows, err := ParseMappingRows(strings.NewReader("GOLDBEES,GOLDETF\n"))
	if err != nil {
		t.Fatalf("ParseMappingRows: %v", err)
	}
	if len(rows) != 1 || rows[0].OldSymbol != "GOLDBEES" {
		t.Errorf("headerless file must parse from the first row: %+v", rows)
	}
}

func TestParseMappingRowsQuotedReason(t *testing.T) {
	rows, err := ParseMappingRows(strings.NewReader(`GOLDBEES,GOLDETF,"merger, scheme of arrangement"` + "\n"))
	if err != nil {
		t.Fatalf("ParseMappingRows: %v", err)
	}
	if rows[0].Reason != "merger, scheme of arrangement" {
		t.Errorf("quoted reason lost: %q", rows[0].Reason)
	}
}

func TestParseMappingRowsBadShape(t *testing.T) {
	if _, err := ParseMappingRows(strings.NewReader("GOLDBEES\n")); !errors.Is(err, types.ErrInvalidInput) {
		t.Errorf("single-field row: expected ErrInvalidInput, got %v", err)
	}
	if _, err := ParseMappingRows(strings.NewReader("a,b,c,d\n")); !errors.Is(err, types.ErrInvalidInput) {
		t.Errorf("four-field row: expected ErrInvalidInput, got %v", err)
	}
}
