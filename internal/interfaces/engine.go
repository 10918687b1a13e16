package interfaces

import (
	"context"

	"etf-trader/internal/types"

	"github.com/shopspring/decimal"
)

// Engine is the command/query surface the front ends talk to. Proposals
// are read-only and repeatable; the Execute methods are the only paths
// that mutate the ledger and the daily counters.
type Engine interface {
	// Ranking returns qualified instruments ordered by deviation
	// ascending, ties broken by symbol.
	Ranking(ctx context.Context) ([]types.RankedInstrument, error)

	// ProposeBuy returns today's buy suggestion, or a NoAction proposal.
	ProposeBuy(ctx context.Context) (*types.Proposal, error)

	// ProposeSell returns today's sell suggestion, or a NoAction proposal.
	ProposeSell(ctx context.Context) (*types.Proposal, error)

	// ExecuteBuy opens a lot and appends the transaction atomically.
	ExecuteBuy(ctx context.Context, symbol string, quantity int, price decimal.Decimal) (*types.Transaction, error)

	// ExecuteSell closes lots LIFO and appends the transaction atomically.
	ExecuteSell(ctx context.Context, symbol string, quantity int, price decimal.Decimal) (*types.SellResult, error)

	// UpdatePriceLine applies one "SYMBOL,PRICE,MA20" line to the catalog.
	UpdatePriceLine(ctx context.Context, line string) error

	// RefreshPrices pulls quotes for the symbols (all known when empty)
	// and upserts snapshots; per-symbol failures never abort the batch.
	RefreshPrices(ctx context.Context, symbols []string) (*types.RefreshSummary, error)

	// UpdateQualifications re-evaluates every catalog entry against the
	// threshold and persists the flags.
	UpdateQualifications(ctx context.Context, threshold float64) (*types.QualificationSummary, error)

	VolumeReport(ctx context.Context) (*types.VolumeReport, error)
	PortfolioSummary(ctx context.Context) (*types.PortfolioSummary, error)
	Statistics(ctx context.Context) (*types.Statistics, error)

	// ApplyMapping renames an instrument across catalog, lots and
	// transactions atomically. Idempotent.
	ApplyMapping(ctx context.Context, oldSymbol, newSymbol, reason string) error

	// BulkApplyMappings applies rows independently; failing rows are
	// reported, the batch continues.
	BulkApplyMappings(ctx context.Context, rows []types.MappingRow) (*types.MappingSummary, error)

	MappingHistory(ctx context.Context) ([]types.SymbolMapping, error)
}
