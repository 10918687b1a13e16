package engine

import (
	"context"
	"time"

	"etf-trader/internal/logger"
	"etf-trader/internal/migrate"
	"etf-trader/internal/store"
	"etf-trader/internal/types"
)

// ApplyMapping renames an instrument across catalog, portfolio and
// transaction log in one atomic update. Reapplying a recorded mapping
// is a no-op success.
func (e *Engine) ApplyMapping(ctx context.Context, oldSymbol, newSymbol, reason string) error {
	row := types.MappingRow{OldSymbol: oldSymbol, NewSymbol: newSymbol, Reason: reason}
	err := e.st.Update(func(doc *store.Document) error {
		return migrate.Apply(doc, row, time.Now())
	})
	if err != nil {
		logger.ErrorWithErr(ctx, "Symbol mapping rejected", err,
			"old", oldSymbol,
			"new", newSymbol,
		)
		return err
	}
	logger.Info(ctx, "Symbol mapping applied",
		"old", oldSymbol,
		"new", newSymbol,
		"reason", reason,
	)
	return nil
}

// BulkApplyMappings applies rows independently inside one update. A
// failing row is reported in the summary and the batch continues.
func (e *Engine) BulkApplyMappings(ctx context.Context, rows []types.MappingRow) (*types.MappingSummary, error) {
	var summary types.MappingSummary
	err := e.st.Update(func(doc *store.Document) error {
		summary = migrate.ApplyAll(doc, rows, time.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "Bulk mappings applied",
		"attempted", summary.Attempted,
		"applied", summary.Applied,
		"failed", len(summary.Failed),
	)
	return &summary, nil
}

// MappingHistory lists applied renames, oldest first.
func (e *Engine) MappingHistory(ctx context.Context) ([]types.SymbolMapping, error) {
	var history []types.SymbolMapping
	err := e.st.View(func(doc *store.Document) error {
		history = migrate.History(doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}
