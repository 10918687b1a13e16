package catalog

import (
	"sort"

	"etf-trader/internal/store"
	"etf-trader/internal/types"
)

// Rank orders instruments by deviation from the 20-day moving average,
// ascending (most fallen below trend first), ties broken by symbol for
// determinism. Stale snapshots and, when filtering applies, unqualified
// instruments are excluded. The deviation is computed fresh on every
// call.
func Rank(doc *store.Document, qualifiedOnly bool) []types.RankedInstrument {
	filter := qualifiedOnly && doc.Settings.FilterEnabled

	out := make([]types.RankedInstrument, 0, len(doc.Instruments))
	for sym, snap := range doc.Instruments {
		if snap.Stale {
			continue
		}
		if !snap.MovingAverage20.IsPositive() {
			continue
		}
		if filter && !snap.Qualified {
			continue
		}
		out = append(out, types.RankedInstrument{Symbol: sym, Deviation: snap.Deviation()})
	}

	sort.Slice(out, func(i, j int) bool {
		c := out[i].Deviation.Cmp(out[j].Deviation)
		if c != 0 {
			return c < 0
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}
