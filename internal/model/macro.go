package model

import "github.com/guregu/null/v6"

// MacroObservation is one value of a statistics series, counted back from
// the newest observation.
type MacroObservation struct {
	SeriesID string
	Lag      int
	Value    null.Float
}

// AlertTier is the three-level qualitative bucket of a macro reading.
type AlertTier int

const (
	TierUndetermined AlertTier = iota
	TierCalm
	TierWatch
	TierAlert
)

func (t AlertTier) String() string {
	switch t {
	case TierCalm:
		return "calm"
	case TierWatch:
		return "watch"
	case TierAlert:
		return "alert"
	default:
		return "undetermined"
	}
}

// MacroAlert is a classified macro indicator ready for display.
type MacroAlert struct {
	Indicator string
	Value     string
	Insight   string
	Tier      AlertTier
}
