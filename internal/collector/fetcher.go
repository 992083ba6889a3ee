package collector

import (
	"context"
	"errors"
	"fmt"

	"MarketTerminal/internal/model"
)

var (
	// ErrFetch marks any transport, status, decode or provider failure.
	ErrFetch = errors.New("market data fetch failed")
	// ErrSymbolNotFound is an ErrFetch the provider reported as an unknown ticker.
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrInvalidWindow rejects a period/interval the provider adapters do not support.
	ErrInvalidWindow = errors.New("unsupported period or interval")
)

// Fetcher retrieves an ordered price series for one ticker. An empty series
// with a nil error means the provider had no data for the window.
type Fetcher interface {
	Fetch(ctx context.Context, ticker string, period model.Period, interval model.Interval) (model.PriceSeries, error)
	Name() string
}

// FetchWindow is a convenience wrapper for the preset windows.
func FetchWindow(ctx context.Context, f Fetcher, ticker string, w model.Window) (model.PriceSeries, error) {
	return f.Fetch(ctx, ticker, w.Period, w.Interval)
}

func validateWindow(period model.Period, interval model.Interval) error {
	if !period.Valid() || !interval.Valid() {
		return fmt.Errorf("%w: period=%q interval=%q", ErrInvalidWindow, period, interval)
	}
	return nil
}
