package calculator

import (
	"math"

	"github.com/shopspring/decimal"

	"MarketTerminal/internal/model"
)

const (
	SMAPeriod = 10
	RSIPeriod = 14
)

// Summarize derives the technical snapshot of a series. It returns false
// when the series is empty or too short for every derived column to be
// defined on at least one row.
//
// SMA and RSI come from the newest row where returns, SMA and RSI are all
// defined; period return and volatility cover the whole window.
func Summarize(series model.PriceSeries) (model.TechnicalSummary, bool) {
	if series.Empty() {
		return model.TechnicalSummary{}, false
	}
	closes := series.Closes()

	returns := Returns(closes)
	sma := SMA(closes, SMAPeriod)
	rsi := RSI(closes, RSIPeriod)

	row := -1
	for i := len(closes) - 1; i >= 0; i-- {
		if !math.IsNaN(returns[i]) && !math.IsNaN(sma[i]) && !math.IsNaN(rsi[i]) {
			row = i
			break
		}
	}
	if row < 0 {
		return model.TechnicalSummary{}, false
	}

	change, ok := PeriodReturnPct(closes)
	if !ok {
		return model.TechnicalSummary{}, false
	}

	return model.TechnicalSummary{
		AsOf:            series.Bars[row].Time,
		PeriodReturnPct: Round(change, 2),
		VolatilityPct:   Round(StdDev(returns)*100, 2),
		SMA10:           Round(sma[row], 2),
		RSI14:           Round(rsi[row], 2),
	}, true
}

// Round rounds half away from zero to the given number of decimals.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
