// Package catalog owns the instrument snapshot table: upserts from
// price sources, the liquidity qualifier and the deviation ranking.
// All functions operate on a store.Document inside a store.View or
// store.Update, so callers control the transaction boundary.
package catalog

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"etf-trader/internal/store"
	"etf-trader/internal/types"

	"github.com/shopspring/decimal"
)

// NormalizeSymbol converts exchange-suffixed or lowercase identifiers
// to the canonical catalog key.
func NormalizeSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	symbol = strings.TrimSuffix(symbol, ".NS")
	symbol = strings.TrimSuffix(symbol, ".BO")
	return symbol
}

// UpsertSnapshot replaces the snapshot for symbol. A non-positive
// moving average would make the deviation undefined, so the update is
// rejected and nothing mutates. The qualified flag is re-evaluated
// against the current settings on every upsert.
func UpsertSnapshot(doc *store.Document, symbol string, price, ma20 decimal.Decimal, volume int64, avgVolume5d float64, now time.Time) error {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return fmt.Errorf("%w: empty symbol", types.ErrInvalidSnapshot)
	}
	if !ma20.IsPositive() {
		return fmt.Errorf("%w: non-positive moving average %s for %s", types.ErrInvalidSnapshot, ma20, symbol)
	}
	if !price.IsPositive() {
		return fmt.Errorf("%w: non-positive price %s for %s", types.ErrInvalidSnapshot, price, symbol)
	}

	snap := types.Snapshot{
		Symbol:            symbol,
		CurrentPrice:      price,
		MovingAverage20:   ma20,
		CurrentVolume:     volume,
		Average5DayVolume: avgVolume5d,
		LastUpdated:       now,
	}
	snap.Qualified = Qualify(snap, doc.Settings.VolumeThreshold)
	doc.Instruments[symbol] = snap
	return nil
}

// Snapshot returns the latest snapshot for symbol.
func Snapshot(doc *store.Document, symbol string) (types.Snapshot, error) {
	snap, ok := doc.Instruments[NormalizeSymbol(symbol)]
	if !ok {
		return types.Snapshot{}, fmt.Errorf("%w: %s", types.ErrSnapshotNotFound, symbol)
	}
	return snap, nil
}

// Symbols returns every known symbol, sorted.
func Symbols(doc *store.Document) []string {
	out := make([]string, 0, len(doc.Instruments))
	for sym := range doc.Instruments {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// MarkStale flags snapshots older than the cutoff. Entries are never
// deleted; stale ones drop out of the ranking until the next refresh.
func MarkStale(doc *store.Document, olderThan time.Time) int {
	marked := 0
	for sym, snap := range doc.Instruments {
		if !snap.Stale && snap.LastUpdated.Before(olderThan) {
			snap.Stale = true
			doc.Instruments[sym] = snap
			marked++
		}
	}
	return marked
}
