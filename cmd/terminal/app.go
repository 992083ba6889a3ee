package main

import (
	"fmt"

	"MarketTerminal/internal/collector"
	"MarketTerminal/internal/config"
	"MarketTerminal/internal/macro"
	"MarketTerminal/internal/metrics"
	"MarketTerminal/internal/model"
	"MarketTerminal/internal/store"
)

// app holds the components shared by every subcommand.
type app struct {
	cfg     *config.Config
	fetcher collector.Fetcher
	ingest  model.Registry
	markets model.Registry
	metrics *metrics.Recorder
	panel   *macro.Panel
}

func newApp(cfg *config.Config) (*app, error) {
	ingestReg, err := cfg.IngestRegistry()
	if err != nil {
		return nil, fmt.Errorf("ingest registry: %w", err)
	}
	marketsReg, err := cfg.MarketsRegistry()
	if err != nil {
		return nil, fmt.Errorf("markets registry: %w", err)
	}

	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "mock":
		fetcher = &collector.MockFetcher{Price: cfg.DataSource.MockPrice}
	default:
		fetcher = collector.NewYahooFetcher(collector.YahooConfig{
			BaseURL:    cfg.DataSource.BaseURL,
			Proxy:      cfg.Proxy,
			UserAgent:  cfg.DataSource.UserAgent,
			Timeout:    cfg.DataSource.Timeout,
			MaxRetries: cfg.DataSource.MaxRetries,
		})
	}

	rec := metrics.New()
	fred := macro.NewClient(macro.Config{
		BaseURL: cfg.Macro.BaseURL,
		APIKey:  cfg.Macro.APIKey,
		Proxy:   cfg.Proxy,
		Timeout: cfg.Macro.Timeout,
	})

	return &app{
		cfg:     cfg,
		fetcher: fetcher,
		ingest:  ingestReg,
		markets: marketsReg,
		metrics: rec,
		panel:   macro.NewPanel(fred, rec),
	}, nil
}

// openStore opens the configured database, or a store that discards
// writes when dryRun is set.
func (a *app) openStore(dryRun bool) (store.Store, error) {
	if dryRun {
		return store.NewNoopStore(), nil
	}
	return store.Open(a.cfg.Database.Driver, a.cfg.Database.DSN)
}
