package tradelog

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setupDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TRADER_LOG_DIR", dir)
	t.Cleanup(Close)
	return dir
}

func TestAppendAndReadDay(t *testing.T) {
	setupDir(t)

	err := Append(Entry{
		Symbol: "GOLDBEES",
		Side:   "BUY",
		Qty:    5,
		Price:  "81.73",
		TxID:   "tx-1",
		Reason: "TOP_RANK_UNHELD",
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	err = Append(Entry{
		Symbol: "GOLDBEES",
		Side:   "SELL",
		Qty:    5,
		Price:  "88.00",
		TxID:   "tx-2",
		Reason: "PROFIT_TARGET",
		PnL:    "31.35",
		Fills:  2,
	})
	if err != nil {
		t.Fatalf("Append sell: %v", err)
	}

	entries, err := ReadDay(time.Now())
	if err != nil {
		t.Fatalf("ReadDay: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("want 2 entries, got %d", len(entries))
	}
	if entries[0].Symbol != "GOLDBEES" || entries[0].Side != "BUY" || entries[0].Qty != 5 {
		t.Errorf("first entry wrong: %+v", entries[0])
	}
	if entries[0].Time == "" {
		t.Errorf("journal must stamp entries")
	}
	if entries[1].PnL != "31.35" || entries[1].Fills != 2 {
		t.Errorf("sell entry wrong: %+v", entries[1])
	}
}

func TestReadDayMissingFile(t *testing.T) {
	setupDir(t)
	entries, err := ReadDay(time.Now().AddDate(0, 0, -30))
	if err != nil || entries != nil {
		t.Errorf("missing day must read as empty: %v, %v", entries, err)
	}
}

func TestAppendDecisionGoesToOwnStream(t *testing.T) {
	dir := setupDir(t)

	err := AppendDecision(DecisionEntry{
		Symbol: "NIFTYBEES",
		Action: "NONE",
		Reason: "DAILY_LIMIT_REACHED",
	})
	if err != nil {
		t.Fatalf("AppendDecision: %v", err)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "decisions", "*.log"))
	if len(matches) != 1 {
		t.Fatalf("want 1 decisions file, got %v", matches)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read decisions: %v", err)
	}
	if !strings.Contains(string(data), `"action":"NONE"`) || !strings.Contains(string(data), `"reason":"DAILY_LIMIT_REACHED"`) {
		t.Errorf("decision line wrong: %s", data)
	}

	// Trades stream untouched.
	if entries, _ := ReadDay(time.Now()); len(entries) != 0 {
		t.Errorf("decision must not land in the trade journal: %+v", entries)
	}
}

func TestCompressOlder(t *testing.T) {
	dir := setupDir(t)

	old := filepath.Join(dir, "2026-07-01.log")
	if err := os.WriteFile(old, []byte(`{"event":"trade","symbol":"GOLDBEES"}`+"\n"), 0o644); err != nil {
		t.Fatalf("write old file: %v", err)
	}
	stale := time.Now().AddDate(0, 0, -30)
	if err := os.Chtimes(old, stale, stale); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	if err := Append(Entry{Symbol: "GOLDBEES", Side: "BUY", Qty: 1, Price: "81.73"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	Close()

	if err := CompressOlder(7); err != nil {
		t.Fatalf("CompressOlder: %v", err)
	}

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Errorf("old file must be replaced by its gzip")
	}
	gz, err := os.Open(old + ".gz")
	if err != nil {
		t.Fatalf("gzip missing: %v", err)
	}
	defer gz.Close()
	zr, err := gzip.NewReader(gz)
	if err != nil {
		t.Fatalf("gzip unreadable: %v", err)
	}
	content, _ := io.ReadAll(zr)
	if !strings.Contains(string(content), "GOLDBEES") {
		t.Errorf("gzip content lost: %s", content)
	}

	// Today's file is inside retention and must survive.
	if _, err := os.Stat(DailyFilepath(time.Now())); err != nil {
		t.Errorf("fresh journal must not be compressed: %v", err)
	}
}
