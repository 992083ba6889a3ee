package collector

import (
	"context"
	"fmt"

	"github.com/guregu/null/v6"
	"github.com/rs/zerolog/log"

	"MarketTerminal/internal/calculator"
	"MarketTerminal/internal/model"
)

// Collector serves the interactive market views on top of a Fetcher.
type Collector struct {
	Fetcher Fetcher
	Markets model.Registry
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, markets model.Registry) *Collector {
	return &Collector{Fetcher: fetcher, Markets: markets}
}

// LivePrices fetches the intraday window of every market symbol, one at a
// time, and reports the latest close rounded to four decimals. A failed or
// empty fetch yields an absent price; it never stops the loop.
func (c *Collector) LivePrices(ctx context.Context) []model.LiveQuote {
	symbols := c.Markets.Symbols()
	quotes := make([]model.LiveQuote, 0, len(symbols))
	for _, s := range symbols {
		q := model.LiveQuote{Asset: s.Name, Ticker: s.Ticker}
		series, err := FetchWindow(ctx, c.Fetcher, s.Ticker, model.IntradayWindow)
		if err != nil {
			log.Warn().Err(err).Str("ticker", s.Ticker).Msg("live price unavailable")
		} else if last, ok := series.Last(); ok {
			q.Price = null.FloatFrom(calculator.Round(last.Close, 4))
		}
		quotes = append(quotes, q)
	}
	return quotes
}

// History returns the 30-day close history of a ticker. No data yields an
// empty slice and a nil error.
func (c *Collector) History(ctx context.Context, ticker string) ([]model.ClosePoint, error) {
	series, err := FetchWindow(ctx, c.Fetcher, ticker, model.MonthWindow)
	if err != nil {
		return nil, err
	}
	return closePoints(series), nil
}

// Summary fetches the 30-day window and derives the technical snapshot.
// The bool is false when there is not enough data.
func (c *Collector) Summary(ctx context.Context, ticker string) (model.TechnicalSummary, bool, error) {
	series, err := FetchWindow(ctx, c.Fetcher, ticker, model.MonthWindow)
	if err != nil {
		return model.TechnicalSummary{}, false, err
	}
	sum, ok := calculator.Summarize(series)
	return sum, ok, nil
}

// Snapshot builds the chart, range and technical summary of a market asset
// from a single 30-day fetch.
func (c *Collector) Snapshot(ctx context.Context, name string) (*model.AssetSnapshot, error) {
	sym, ok := c.Markets.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown asset %q", name)
	}
	series, err := FetchWindow(ctx, c.Fetcher, sym.Ticker, model.MonthWindow)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", sym.Ticker, err)
	}
	return SnapshotFromSeries(sym, series), nil
}

// SnapshotFromSeries derives an AssetSnapshot from an already loaded series.
func SnapshotFromSeries(sym model.Symbol, series model.PriceSeries) *model.AssetSnapshot {
	snap := &model.AssetSnapshot{Symbol: sym, History: closePoints(series)}
	if last, ok := series.Last(); ok {
		if h, l, err := calculator.Range(series); err == nil {
			snap.High, snap.Low = h, l
			if pos, err := calculator.RangePosition(last.Close, h, l); err == nil {
				snap.Position = pos
			}
		}
	}
	snap.Summary, snap.HasSummary = calculator.Summarize(series)
	return snap
}

func closePoints(series model.PriceSeries) []model.ClosePoint {
	points := make([]model.ClosePoint, len(series.Bars))
	for i, b := range series.Bars {
		points[i] = model.ClosePoint{Date: b.Time, Close: b.Close}
	}
	return points
}
