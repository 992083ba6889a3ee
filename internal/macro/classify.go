package macro

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"

	"MarketTerminal/internal/model"
)

// Indicator names a classified macro reading.
type Indicator string

const (
	CPIYoYIndicator   Indicator = "U.S. CPI (YoY)"
	FedFundsIndicator Indicator = "Fed Funds Rate"
	GDPIndicator      Indicator = "U.S. GDP (Annualized)"
)

// FRED series backing the indicators.
const (
	SeriesCPI      = "CPIAUCSL"
	SeriesFedFunds = "FEDFUNDS"
	SeriesGDP      = "GDP"
)

const (
	NotAvailable = "N/A"
	Undetermined = "Undetermined"
)

type rule struct {
	format func(float64) string
	bucket func(float64) (string, model.AlertTier)
}

var rules = map[Indicator]rule{
	CPIYoYIndicator: {
		format: percent,
		bucket: func(v float64) (string, model.AlertTier) {
			switch {
			case v > 3:
				return "Inflation Alert", model.TierAlert
			case v > 2:
				return "Above Target", model.TierWatch
			default:
				return "Stable", model.TierCalm
			}
		},
	},
	FedFundsIndicator: {
		format: percent,
		bucket: func(v float64) (string, model.AlertTier) {
			switch {
			case v > 5:
				return "Restrictive", model.TierAlert
			case v > 3:
				return "Neutral", model.TierWatch
			default:
				return "Accommodative", model.TierCalm
			}
		},
	},
	GDPIndicator: {
		format: billions,
		bucket: func(v float64) (string, model.AlertTier) {
			switch {
			case v < 1:
				return "Weak Growth", model.TierAlert
			case v < 2:
				return "Moderate", model.TierWatch
			default:
				return "Strong", model.TierCalm
			}
		},
	},
}

// Classify buckets a reading with the fixed threshold table of its
// indicator. An absent reading is shown as N/A with an undetermined insight.
func Classify(ind Indicator, value null.Float) model.MacroAlert {
	alert := model.MacroAlert{
		Indicator: string(ind),
		Value:     NotAvailable,
		Insight:   Undetermined,
		Tier:      model.TierUndetermined,
	}
	if !value.Valid || math.IsNaN(value.Float64) {
		return alert
	}
	r, ok := rules[ind]
	if !ok {
		alert.Value = strconv.FormatFloat(value.Float64, 'f', 2, 64)
		return alert
	}
	alert.Value = r.format(value.Float64)
	alert.Insight, alert.Tier = r.bucket(value.Float64)
	return alert
}

// CPIYoY is the year-over-year change in percent. It is absent unless both
// readings are present and the year-ago reading is non-zero.
func CPIYoY(current, yearAgo null.Float) null.Float {
	if !current.Valid || !yearAgo.Valid || yearAgo.Float64 == 0 {
		return null.Float{}
	}
	return null.FloatFrom((current.Float64 - yearAgo.Float64) / yearAgo.Float64 * 100)
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// billions renders a dollar amount with thousands separators, e.g. $29,351.07B.
func billions(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	parts := strings.SplitN(d.Abs().StringFixed(2), ".", 2)
	whole, _ := strconv.ParseInt(parts[0], 10, 64)
	s := humanize.Comma(whole) + "." + parts[1]
	if d.IsNegative() {
		s = "-" + s
	}
	return "$" + s + "B"
}
