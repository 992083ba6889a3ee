package macro

import (
	"context"
	"errors"

	"github.com/guregu/null/v6"
	"github.com/rs/zerolog/log"

	"MarketTerminal/internal/model"
)

// ObservationSource is anything that can return a lagged series value.
type ObservationSource interface {
	FetchObservation(ctx context.Context, seriesID string, lag int) (null.Float, error)
}

// Observer is told about every observation request.
type Observer interface {
	ObserveMacro(seriesID string, err error)
}

// Panel assembles the macro context alerts.
type Panel struct {
	Source   ObservationSource
	Observer Observer
}

// NewPanel creates a Panel over the given source.
func NewPanel(src ObservationSource, obs Observer) *Panel {
	return &Panel{Source: src, Observer: obs}
}

// Observe fetches one observation. Failures are logged and leave the value absent.
func (p *Panel) Observe(ctx context.Context, seriesID string, lag int) model.MacroObservation {
	obs := model.MacroObservation{SeriesID: seriesID, Lag: lag}
	v, err := p.Source.FetchObservation(ctx, seriesID, lag)
	if p.Observer != nil {
		p.Observer.ObserveMacro(seriesID, err)
	}
	if err != nil {
		if !errors.Is(err, ErrMissingAPIKey) {
			log.Warn().Err(err).Str("series_id", seriesID).Int("lag", lag).Msg("macro observation unavailable")
		}
		return obs
	}
	obs.Value = v
	return obs
}

// Alerts fetches CPI (now and a year ago), the Fed funds rate and GDP and
// classifies them in display order. Any missing input shows up as N/A.
func (p *Panel) Alerts(ctx context.Context) []model.MacroAlert {
	cpiNow := p.Observe(ctx, SeriesCPI, 0)
	cpiYearAgo := p.Observe(ctx, SeriesCPI, 12)
	fedRate := p.Observe(ctx, SeriesFedFunds, 0)
	gdp := p.Observe(ctx, SeriesGDP, 0)

	if c, ok := p.Source.(*Client); ok && c.APIKey == "" {
		log.Warn().Msg("FRED_API_KEY not configured, macro panel shows N/A")
	}

	return []model.MacroAlert{
		Classify(CPIYoYIndicator, CPIYoY(cpiNow.Value, cpiYearAgo.Value)),
		Classify(FedFundsIndicator, fedRate.Value),
		Classify(GDPIndicator, gdp.Value),
	}
}
