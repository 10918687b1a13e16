package eod

import (
	"encoding/csv"
	"os"
	"testing"
	"time"

	"etf-trader/internal/tradelog"
)

func TestSummarizeDay(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	t.Cleanup(tradelog.Close)

	appendEntry := func(e tradelog.Entry) {
		t.Helper()
		if err := tradelog.Append(e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	appendEntry(tradelog.Entry{Symbol: "GOLDBEES", Side: "BUY", Qty: 5, Price: "81.73", TxID: "tx-1"})
	appendEntry(tradelog.Entry{Symbol: "GOLDBEES", Side: "SELL", Qty: 5, Price: "88.00", TxID: "tx-2", PnL: "31.35"})
	appendEntry(tradelog.Entry{Symbol: "NIFTYBEES", Side: "BUY", Qty: 2, Price: "250.10", TxID: "tx-3"})

	path, err := SummarizeDay(time.Now())
	if err != nil {
		t.Fatalf("SummarizeDay: %v", err)
	}
	if path == "" {
		t.Fatalf("expected a CSV path")
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open summary: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse summary: %v", err)
	}

	// header + GOLDBEES + NIFTYBEES + TOTAL
	if len(records) != 4 {
		t.Fatalf("want 4 rows, got %d: %v", len(records), records)
	}
	gold := records[1]
	if gold[0] != "GOLDBEES" || gold[1] != "5" || gold[2] != "81.7300" || gold[4] != "88.0000" {
		t.Errorf("GOLDBEES row wrong: %v", gold)
	}
	if gold[5] != "31.35" || gold[6] != "408.65" || gold[7] != "440.00" {
		t.Errorf("GOLDBEES values wrong: %v", gold)
	}
	nifty := records[2]
	if nifty[0] != "NIFTYBEES" || nifty[1] != "2" || nifty[3] != "0" || nifty[5] != "0.00" {
		t.Errorf("NIFTYBEES row wrong: %v", nifty)
	}
	total := records[3]
	if total[0] != "TOTAL" || total[5] != "31.35" || total[6] != "908.85" || total[7] != "440.00" {
		t.Errorf("TOTAL row wrong: %v", total)
	}
}

func TestSummarizeDayWithoutTrades(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())

	path, err := SummarizeDay(time.Now())
	if err != nil {
		t.Fatalf("SummarizeDay on empty day: %v", err)
	}
	if path != "" {
		t.Errorf("no trades must yield no file, got %q", path)
	}
}
