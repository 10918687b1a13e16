package ta

import "math"

func SMA(closes []float64, n int) float64 {
	if len(closes) < n || n <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(closes) - n; i < len(closes); i++ {
		sum += closes[i]
	}
	return sum / float64(n)
}

func AvgVolume(volumes []int64, n int) float64 {
	if len(volumes) < n || n <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(volumes) - n; i < len(volumes); i++ {
		sum += float64(volumes[i])
	}
	return sum / float64(n)
}
