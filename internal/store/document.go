package store

import (
	"sort"
	"time"

	"etf-trader/internal/types"

	"github.com/shopspring/decimal"
)

func init() {
	// Money round-trips as plain JSON numbers in the data file.
	decimal.MarshalJSONWithoutQuotes = true
}

// Document is the persisted state: instrument catalog, portfolio lots,
// transaction log, strategy settings and symbol-mapping history, all in
// one JSON file.
type Document struct {
	Instruments    map[string]types.Snapshot `json:"instruments"`
	Portfolio      map[string][]types.Lot    `json:"portfolio"`
	Transactions   []types.Transaction       `json:"transactions"`
	Settings       types.Settings            `json:"settings"`
	SymbolMappings []types.SymbolMapping     `json:"symbol_mappings"`
	LastUpdated    time.Time                 `json:"last_updated"`
}

func NewDocument() *Document {
	return &Document{
		Instruments: map[string]types.Snapshot{},
		Portfolio:   map[string][]types.Lot{},
		Settings:    types.DefaultSettings(),
	}
}

// Clone deep-copies the document so an update can fail without touching
// the live state. Decimal values are immutable and copy by value.
func (d *Document) Clone() *Document {
	c := &Document{
		Instruments:    make(map[string]types.Snapshot, len(d.Instruments)),
		Portfolio:      make(map[string][]types.Lot, len(d.Portfolio)),
		Transactions:   append([]types.Transaction(nil), d.Transactions...),
		Settings:       d.Settings,
		SymbolMappings: append([]types.SymbolMapping(nil), d.SymbolMappings...),
		LastUpdated:    d.LastUpdated,
	}
	for sym, snap := range d.Instruments {
		c.Instruments[sym] = snap
	}
	for sym, lots := range d.Portfolio {
		c.Portfolio[sym] = append([]types.Lot(nil), lots...)
	}
	return c
}

// normalize repairs a freshly unmarshalled document: nil maps become
// empty and each symbol's lots are restored to open order (BuyDate
// ascending, insertion order preserved within a day), which the LIFO
// view depends on.
func (d *Document) normalize() {
	if d.Instruments == nil {
		d.Instruments = map[string]types.Snapshot{}
	}
	if d.Portfolio == nil {
		d.Portfolio = map[string][]types.Lot{}
	}
	for _, lots := range d.Portfolio {
		sort.SliceStable(lots, func(i, j int) bool {
			return lots[i].BuyDate < lots[j].BuyDate
		})
	}

	// Hand-edited files may omit settings fields; fill the gaps.
	def := types.DefaultSettings()
	if d.Settings.VolumeThreshold == 0 {
		d.Settings.VolumeThreshold = def.VolumeThreshold
	}
	if d.Settings.MaxRankToConsider == 0 {
		d.Settings.MaxRankToConsider = def.MaxRankToConsider
	}
	if d.Settings.AveragingLossThreshold == 0 {
		d.Settings.AveragingLossThreshold = def.AveragingLossThreshold
	}
	if d.Settings.ProfitThreshold == 0 {
		d.Settings.ProfitThreshold = def.ProfitThreshold
	}
	if d.Settings.DefaultInvestmentAmount.IsZero() {
		d.Settings.DefaultInvestmentAmount = def.DefaultInvestmentAmount
	}
}
