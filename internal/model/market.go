package model

import "time"

// PriceBar is one OHLCV record for a single trading period.
type PriceBar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
	Ticker string
}

// PriceSeries holds the bars of one ticker in ascending time order.
// A series is built once per fetch and only ever read afterwards.
type PriceSeries struct {
	Ticker string
	Bars   []PriceBar
}

// Len returns the number of bars.
func (s PriceSeries) Len() int { return len(s.Bars) }

// Empty reports whether the provider returned no usable bars.
func (s PriceSeries) Empty() bool { return len(s.Bars) == 0 }

// First returns the oldest bar, or false for an empty series.
func (s PriceSeries) First() (PriceBar, bool) {
	if len(s.Bars) == 0 {
		return PriceBar{}, false
	}
	return s.Bars[0], true
}

// Last returns the newest bar, or false for an empty series.
func (s PriceSeries) Last() (PriceBar, bool) {
	if len(s.Bars) == 0 {
		return PriceBar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Closes extracts the close column.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// ClosePoint is a single (date, close) pair for charting.
type ClosePoint struct {
	Date  time.Time
	Close float64
}

// Period is the look-back range requested from the provider.
type Period string

// Interval is the bar width requested from the provider.
type Interval string

const (
	Period5Y  Period = "5y"
	Period1D  Period = "1d"
	Period30D Period = "30d"

	Interval1D Interval = "1d"
	Interval1M Interval = "1m"
)

// Window pairs a period with an interval.
type Window struct {
	Period   Period
	Interval Interval
}

var (
	// HistoryWindow is used by the batch ingestion job.
	HistoryWindow = Window{Period: Period5Y, Interval: Interval1D}
	// IntradayWindow backs the live price panel.
	IntradayWindow = Window{Period: Period1D, Interval: Interval1M}
	// MonthWindow backs the 30-day chart and the technical snapshot.
	MonthWindow = Window{Period: Period30D, Interval: Interval1D}
)

// Valid reports whether the period is one the provider adapters accept.
func (p Period) Valid() bool {
	switch p {
	case Period5Y, Period1D, Period30D:
		return true
	}
	return false
}

// Valid reports whether the interval is one the provider adapters accept.
func (i Interval) Valid() bool {
	switch i {
	case Interval1D, Interval1M:
		return true
	}
	return false
}
