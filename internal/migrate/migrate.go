// Package migrate renames instrument identifiers across the whole
// document: catalog snapshot, every lot sold or active, and every
// transaction. Applied renames are recorded in an append-only history
// so a replay of the same rename is a no-op.
package migrate

import (
	"fmt"
	"time"

	"etf-trader/internal/catalog"
	"etf-trader/internal/store"
	"etf-trader/internal/types"
)

// Apply renames oldSymbol to newSymbol everywhere in doc.
//
// A rename whose old symbol is absent but whose exact pair already
// appears in the history succeeds without touching anything. An absent
// old symbol with no matching history entry is ErrUnknownSymbol. A new
// symbol that already has any presence (snapshot, lots or
// transactions) is ErrConflictingSymbol; merging two identities is
// never attempted.
func Apply(doc *store.Document, row types.MappingRow, now time.Time) error {
	oldSym := catalog.NormalizeSymbol(row.OldSymbol)
	newSym := catalog.NormalizeSymbol(row.NewSymbol)

	if oldSym == "" || newSym == "" {
		return fmt.Errorf("%w: mapping needs both symbols, got %q -> %q", types.ErrInvalidInput, row.OldSymbol, row.NewSymbol)
	}
	if oldSym == newSym {
		return fmt.Errorf("%w: mapping %q to itself", types.ErrInvalidInput, oldSym)
	}

	if !hasPresence(doc, oldSym) {
		if replayed(doc, oldSym, newSym) {
			return nil
		}
		return fmt.Errorf("%w: %s", types.ErrUnknownSymbol, oldSym)
	}
	if hasPresence(doc, newSym) {
		return fmt.Errorf("%w: %s already exists", types.ErrConflictingSymbol, newSym)
	}

	if snap, ok := doc.Instruments[oldSym]; ok {
		snap.Symbol = newSym
		doc.Instruments[newSym] = snap
		delete(doc.Instruments, oldSym)
	}
	if lots, ok := doc.Portfolio[oldSym]; ok {
		for i := range lots {
			lots[i].Symbol = newSym
		}
		doc.Portfolio[newSym] = lots
		delete(doc.Portfolio, oldSym)
	}
	for i := range doc.Transactions {
		if doc.Transactions[i].Symbol == oldSym {
			doc.Transactions[i].Symbol = newSym
		}
	}

	doc.SymbolMappings = append(doc.SymbolMappings, types.SymbolMapping{
		OldSymbol: oldSym,
		NewSymbol: newSym,
		Reason:    row.Reason,
		AppliedAt: now,
	})
	return nil
}

// ApplyAll applies each row in order, collecting per-row failures
// instead of aborting the batch. Rows already applied count as applied.
func ApplyAll(doc *store.Document, rows []types.MappingRow, now time.Time) types.MappingSummary {
	summary := types.MappingSummary{Attempted: len(rows)}
	for _, row := range rows {
		if err := Apply(doc, row, now); err != nil {
			summary.Failed = append(summary.Failed, types.MappingResult{Row: row, Error: err.Error()})
			continue
		}
		summary.Applied++
	}
	return summary
}

// History returns the applied renames oldest first.
func History(doc *store.Document) []types.SymbolMapping {
	out := make([]types.SymbolMapping, len(doc.SymbolMappings))
	copy(out, doc.SymbolMappings)
	return out
}

// hasPresence reports whether the symbol appears anywhere that a
// rename would need to touch.
func hasPresence(doc *store.Document, symbol string) bool {
	if _, ok := doc.Instruments[symbol]; ok {
		return true
	}
	if len(doc.Portfolio[symbol]) > 0 {
		return true
	}
	for _, tx := range doc.Transactions {
		if tx.Symbol == symbol {
			return true
		}
	}
	return false
}

func replayed(doc *store.Document, oldSym, newSym string) bool {
	for i := len(doc.SymbolMappings) - 1; i >= 0; i-- {
		m := doc.SymbolMappings[i]
		if m.OldSymbol == oldSym {
			return m.NewSymbol == newSym
		}
	}
	return false
}
