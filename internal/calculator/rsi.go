package calculator

// RSI computes the relative strength index at every index using plain
// trailing means of gains and losses over the last period price changes.
// Entries before index period are NaN. An average loss of zero yields 100,
// including the flat case where the average gain is zero as well.
func RSI(prices []float64, period int) []float64 {
	out := nanSlice(len(prices))
	if period <= 0 || len(prices) <= period {
		return out
	}

	gains := make([]float64, len(prices))
	losses := make([]float64, len(prices))
	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	// Each window is summed directly so a window without losses sums to
	// exactly zero at any price scale.
	for i := period; i < len(prices); i++ {
		var gainSum, lossSum float64
		for j := i - period + 1; j <= i; j++ {
			gainSum += gains[j]
			lossSum += losses[j]
		}
		out[i] = computeRSI(gainSum/float64(period), lossSum/float64(period))
	}
	return out
}

func computeRSI(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
