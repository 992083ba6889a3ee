package store

import (
	"context"
	"errors"

	"MarketTerminal/internal/model"
)

// NoopStore discards writes; used for dry runs.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) Store(_ context.Context, ticker string, _ model.PriceSeries) (string, error) {
	return SanitizeTable(ticker), nil
}

func (n *NoopStore) Load(_ context.Context, ticker string) (model.PriceSeries, error) {
	return model.PriceSeries{}, errors.New("noop store holds no data for " + ticker)
}

func (n *NoopStore) Close() error { return nil }
