package catalog

import (
	"fmt"
	"sort"

	"etf-trader/internal/store"
	"etf-trader/internal/types"
)

// Qualify reports whether one snapshot clears the liquidity gate:
// 5-day average volume strictly above the threshold AND a non-zero
// current volume.
func Qualify(snap types.Snapshot, threshold float64) bool {
	return snap.Average5DayVolume > threshold && snap.CurrentVolume > 0
}

// UpdateQualifications re-evaluates every catalog entry against the
// threshold, persists the flags and the threshold itself. Price and
// trend fields are untouched.
func UpdateQualifications(doc *store.Document, threshold float64) (types.QualificationSummary, error) {
	if threshold <= 0 {
		return types.QualificationSummary{}, fmt.Errorf("%w: volume threshold must be positive, got %v", types.ErrInvalidInput, threshold)
	}

	doc.Settings.VolumeThreshold = threshold
	summary := types.QualificationSummary{Threshold: threshold}
	for sym, snap := range doc.Instruments {
		snap.Qualified = Qualify(snap, threshold)
		doc.Instruments[sym] = snap
		if snap.Qualified {
			summary.Qualified++
		} else {
			summary.Disqualified++
		}
	}
	return summary, nil
}

// VolumeReport lists every instrument grouped by qualification state.
// Instruments without any volume observation land in MissingData.
func VolumeReport(doc *store.Document) *types.VolumeReport {
	report := &types.VolumeReport{
		Threshold:     doc.Settings.VolumeThreshold,
		FilterEnabled: doc.Settings.FilterEnabled,
	}
	for _, sym := range Symbols(doc) {
		snap := doc.Instruments[sym]
		if snap.Average5DayVolume == 0 && snap.CurrentVolume == 0 {
			report.MissingData = append(report.MissingData, sym)
			continue
		}
		entry := types.VolumeEntry{
			Symbol:        sym,
			AvgVolume5Day: snap.Average5DayVolume,
			CurrentVolume: snap.CurrentVolume,
			LastUpdated:   snap.LastUpdated,
		}
		if snap.Qualified {
			report.Qualified = append(report.Qualified, entry)
		} else {
			report.Disqualified = append(report.Disqualified, entry)
		}
	}

	// Highest liquidity first within each group.
	byVolume := func(entries []types.VolumeEntry) {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].AvgVolume5Day > entries[j].AvgVolume5Day
		})
	}
	byVolume(report.Qualified)
	byVolume(report.Disqualified)
	return report
}
