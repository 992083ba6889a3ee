package model

import (
	"strings"
	"testing"
)

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry(
		Symbol{Name: "Apple", Ticker: "AAPL"},
		Symbol{Name: "Gold", Ticker: "GC=F"},
	)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
	if got := strings.Join(r.Names(), ","); got != "Apple,Gold" {
		t.Errorf("Names() = %s, want declaration order", got)
	}
	if s, ok := r.Lookup("Gold"); !ok || s.Ticker != "GC=F" {
		t.Errorf("Lookup(Gold) = %+v, %v", s, ok)
	}
	if _, ok := r.Lookup("gold"); ok {
		t.Error("Lookup should be case sensitive")
	}

	syms := r.Symbols()
	syms[0].Ticker = "MUTATED"
	if s, _ := r.Lookup("Apple"); s.Ticker != "AAPL" {
		t.Error("Symbols() must return a copy")
	}
}

func TestNewRegistry_Rejects(t *testing.T) {
	cases := []struct {
		name    string
		symbols []Symbol
		want    string
	}{
		{"empty ticker", []Symbol{{Name: "Apple"}}, "empty name or ticker"},
		{"empty name", []Symbol{{Ticker: "AAPL"}}, "empty name or ticker"},
		{"duplicate name", []Symbol{{Name: "A", Ticker: "X"}, {Name: "A", Ticker: "Y"}}, "duplicate name"},
		{"duplicate ticker", []Symbol{{Name: "A", Ticker: "X"}, {Name: "B", Ticker: "X"}}, "duplicate ticker"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRegistry(tc.symbols...)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("err = %v, want containing %q", err, tc.want)
			}
		})
	}
}

func TestBuiltinRegistries(t *testing.T) {
	ingest := MustRegistry(IngestSymbols()...)
	if ingest.Len() != 16 {
		t.Errorf("ingest registry has %d symbols, want 16", ingest.Len())
	}
	markets := MustRegistry(MarketsSymbols()...)
	if markets.Len() != 10 {
		t.Errorf("markets registry has %d symbols, want 10", markets.Len())
	}
}

func TestWindows(t *testing.T) {
	for _, w := range []Window{HistoryWindow, IntradayWindow, MonthWindow} {
		if !w.Period.Valid() || !w.Interval.Valid() {
			t.Errorf("window %+v should be valid", w)
		}
	}
	if Period("7y").Valid() || Interval("5m").Valid() {
		t.Error("unsupported values must be invalid")
	}
}

func TestPriceSeries(t *testing.T) {
	var empty PriceSeries
	if !empty.Empty() {
		t.Error("zero series should be empty")
	}
	if _, ok := empty.Last(); ok {
		t.Error("Last() on empty series should report false")
	}
	s := PriceSeries{Bars: []PriceBar{{Close: 1}, {Close: 2}, {Close: 3}}}
	if first, _ := s.First(); first.Close != 1 {
		t.Errorf("First().Close = %v", first.Close)
	}
	if last, _ := s.Last(); last.Close != 3 {
		t.Errorf("Last().Close = %v", last.Close)
	}
	if c := s.Closes(); len(c) != 3 || c[2] != 3 {
		t.Errorf("Closes() = %v", c)
	}
}
