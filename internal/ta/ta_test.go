package ta

import (
	"math"
	"testing"
)

func TestSMA(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}
	if got := SMA(closes, 5); got != 3 {
		t.Errorf("SMA(5) = %v, want 3", got)
	}
	// Window anchored at the end of the series.
	if got := SMA(closes, 2); got != 4.5 {
		t.Errorf("SMA(2) = %v, want 4.5", got)
	}
	if got := SMA(closes, 6); !math.IsNaN(got) {
		t.Errorf("short series must yield NaN, got %v", got)
	}
	if got := SMA(closes, 0); !math.IsNaN(got) {
		t.Errorf("zero window must yield NaN, got %v", got)
	}
}

func TestAvgVolume(t *testing.T) {
	volumes := []int64{100, 200, 300, 400, 500, 600}
	if got := AvgVolume(volumes, 5); got != 400 {
		t.Errorf("AvgVolume(5) = %v, want 400", got)
	}
	if got := AvgVolume(volumes[:3], 5); !math.IsNaN(got) {
		t.Errorf("short series must yield NaN, got %v", got)
	}
}
