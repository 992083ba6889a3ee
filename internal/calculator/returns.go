package calculator

import "math"

// Returns gives the simple period-over-period change of prices as a
// fraction. Index 0 is NaN, as is any step from a zero price.
func Returns(prices []float64) []float64 {
	out := nanSlice(len(prices))
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		out[i] = prices[i]/prices[i-1] - 1
	}
	return out
}

// PeriodReturnPct is the percentage change from the first to the last price.
func PeriodReturnPct(prices []float64) (float64, bool) {
	if len(prices) == 0 || prices[0] == 0 {
		return 0, false
	}
	return (prices[len(prices)-1]/prices[0] - 1) * 100, true
}

// StdDev is the sample standard deviation (n-1) of the non-NaN values.
// Fewer than two values yield zero.
func StdDev(values []float64) float64 {
	var n int
	var mean float64
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		n++
		mean += v
	}
	if n < 2 {
		return 0
	}
	mean /= float64(n)

	var ss float64
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}
