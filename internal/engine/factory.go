package engine

import (
	"etf-trader/internal/interfaces"
	"etf-trader/internal/pricesource"
	"etf-trader/internal/store"
)

var _ interfaces.Engine = (*Engine)(nil)

// New wires a strategy engine over the store, with refresher for batch
// price pulls and cfg for position sizing.
func New(st *store.Store, refresher *pricesource.Refresher, cfg *store.Config) interfaces.Engine {
	return newEngine(st, refresher, cfg)
}
