package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// TechnicalSummary is the snapshot derived from one price series.
// Values are rounded to two decimals.
type TechnicalSummary struct {
	AsOf            time.Time
	PeriodReturnPct float64
	VolatilityPct   float64
	SMA10           float64
	RSI14           float64
}

// LiveQuote is one row of the live prices panel. Price is absent when the
// provider failed or returned nothing for the intraday window.
type LiveQuote struct {
	Asset  string
	Ticker string
	Price  null.Float
}

// AssetSnapshot bundles what the markets panel shows for one asset over the
// 30-day window. Summary is only meaningful when HasSummary is true.
type AssetSnapshot struct {
	Symbol     Symbol
	History    []ClosePoint
	High       float64
	Low        float64
	Position   float64 // 0.0 ~ 1.0 within [Low, High]
	Summary    TechnicalSummary
	HasSummary bool
}
