package store

import (
	"context"
	"errors"
	"strings"

	"MarketTerminal/internal/model"
)

// ErrWrite marks a failure persisting a ticker's table.
var ErrWrite = errors.New("store write failed")

// Store persists price series, one replace-on-write table per ticker.
type Store interface {
	// Store replaces the ticker's table with the series and returns the table name.
	Store(ctx context.Context, ticker string, series model.PriceSeries) (string, error)
	Load(ctx context.Context, ticker string) (model.PriceSeries, error)
	Close() error
}

var tableReplacer = strings.NewReplacer("^", "", "=", "", "-", "", ".", "")

// SanitizeTable derives the table identifier of a ticker by stripping the
// characters ^ = - and . from it. Distinct tickers may map to the same
// table, in which case the later write wins.
func SanitizeTable(ticker string) string {
	return tableReplacer.Replace(ticker)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
