package main

import (
	"context"
	"path/filepath"
	"testing"

	"MarketTerminal/internal/config"
	"MarketTerminal/internal/store"
)

func TestPlain(t *testing.T) {
	got := plain("💹 <b>Live Prices</b>\nS&amp;P 500 (^GSPC): 1.0000\n")
	want := "💹 Live Prices\nS&P 500 (^GSPC): 1.0000\n"
	if got != want {
		t.Errorf("plain() = %q, want %q", got, want)
	}
}

func TestNewApp_MockProvider(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg.DataSource.Provider = "mock"
	cfg.Database.DSN = filepath.Join(t.TempDir(), "market_data.db")

	a, err := newApp(cfg)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	if a.fetcher.Name() != "mock" {
		t.Errorf("fetcher = %s, want mock", a.fetcher.Name())
	}
	if a.ingest.Len() != 16 || a.markets.Len() != 10 {
		t.Errorf("registries = %d/%d, want 16/10", a.ingest.Len(), a.markets.Len())
	}

	dry, err := a.openStore(true)
	if err != nil {
		t.Fatalf("open dry-run store: %v", err)
	}
	if _, ok := dry.(*store.NoopStore); !ok {
		t.Errorf("dry run store = %T, want *store.NoopStore", dry)
	}

	if err := runIngest(context.Background(), a, nil); err != nil {
		t.Fatalf("runIngest: %v", err)
	}
	st, err := a.openStore(false)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()
	series, err := st.Load(context.Background(), "^GSPC")
	if err != nil {
		t.Fatalf("load ^GSPC: %v", err)
	}
	if series.Len() != 5*252 {
		t.Errorf("stored rows = %d, want %d", series.Len(), 5*252)
	}
}
