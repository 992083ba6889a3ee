package model

import "fmt"

// Symbol maps a human-readable asset name to a provider ticker.
type Symbol struct {
	Name   string `yaml:"name" validate:"required"`
	Ticker string `yaml:"ticker" validate:"required"`
}

// Registry is an ordered, immutable set of symbols. Names and tickers are
// unique within a registry.
type Registry struct {
	symbols []Symbol
	byName  map[string]int
}

// NewRegistry validates and freezes the given symbols.
func NewRegistry(symbols ...Symbol) (Registry, error) {
	r := Registry{
		symbols: make([]Symbol, 0, len(symbols)),
		byName:  make(map[string]int, len(symbols)),
	}
	tickers := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		if s.Name == "" || s.Ticker == "" {
			return Registry{}, fmt.Errorf("registry: symbol %+v has an empty name or ticker", s)
		}
		if _, dup := r.byName[s.Name]; dup {
			return Registry{}, fmt.Errorf("registry: duplicate name %q", s.Name)
		}
		if tickers[s.Ticker] {
			return Registry{}, fmt.Errorf("registry: duplicate ticker %q", s.Ticker)
		}
		tickers[s.Ticker] = true
		r.byName[s.Name] = len(r.symbols)
		r.symbols = append(r.symbols, s)
	}
	return r, nil
}

// MustRegistry is NewRegistry for static tables; it panics on invalid input.
func MustRegistry(symbols ...Symbol) Registry {
	r, err := NewRegistry(symbols...)
	if err != nil {
		panic(err)
	}
	return r
}

// Symbols returns a copy of the registry contents in declaration order.
func (r Registry) Symbols() []Symbol {
	out := make([]Symbol, len(r.symbols))
	copy(out, r.symbols)
	return out
}

// Len returns the number of symbols.
func (r Registry) Len() int { return len(r.symbols) }

// Lookup finds a symbol by display name.
func (r Registry) Lookup(name string) (Symbol, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Symbol{}, false
	}
	return r.symbols[i], true
}

// Names returns the display names in declaration order.
func (r Registry) Names() []string {
	names := make([]string, len(r.symbols))
	for i, s := range r.symbols {
		names[i] = s.Name
	}
	return names
}

// IngestSymbols is the default universe for the batch ingestion job.
func IngestSymbols() []Symbol {
	return []Symbol{
		{Name: "S&P 500", Ticker: "^GSPC"},
		{Name: "Nasdaq", Ticker: "^IXIC"},
		{Name: "Dow Jones", Ticker: "^DJI"},
		{Name: "FTSE 100", Ticker: "^FTSE"},
		{Name: "DAX", Ticker: "^GDAXI"},
		{Name: "CAC 40", Ticker: "^FCHI"},
		{Name: "Nikkei 225", Ticker: "^N225"},
		{Name: "Hang Seng", Ticker: "^HSI"},
		{Name: "SSE Composite", Ticker: "000001.SS"},
		{Name: "Gold", Ticker: "GC=F"},
		{Name: "Crude Oil", Ticker: "CL=F"},
		{Name: "USD Index", Ticker: "DX-Y.NYB"},
		{Name: "EUR/USD", Ticker: "EURUSD=X"},
		{Name: "Apple", Ticker: "AAPL"},
		{Name: "Microsoft", Ticker: "MSFT"},
		{Name: "Tesla", Ticker: "TSLA"},
	}
}

// MarketsSymbols is the default universe for the live markets panel.
func MarketsSymbols() []Symbol {
	return []Symbol{
		{Name: "S&P 500", Ticker: "^GSPC"},
		{Name: "Nasdaq", Ticker: "^IXIC"},
		{Name: "Dow Jones", Ticker: "^DJI"},
		{Name: "FTSE 100", Ticker: "^FTSE"},
		{Name: "DAX", Ticker: "^GDAXI"},
		{Name: "Gold", Ticker: "GC=F"},
		{Name: "Crude Oil", Ticker: "CL=F"},
		{Name: "Bitcoin", Ticker: "BTC-USD"},
		{Name: "Ethereum", Ticker: "ETH-USD"},
		{Name: "USD/EUR", Ticker: "EURUSD=X"},
	}
}
