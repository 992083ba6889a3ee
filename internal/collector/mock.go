package collector

import (
	"context"
	"sync"
	"time"

	"MarketTerminal/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Tickers listed in Errors fail; tickers in Series return that series;
// everything else gets generated bars around Price.
type MockFetcher struct {
	Price  float64
	Series map[string]model.PriceSeries
	Errors map[string]error

	mu    sync.Mutex
	calls []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Fetch(_ context.Context, ticker string, period model.Period, interval model.Interval) (model.PriceSeries, error) {
	m.mu.Lock()
	m.calls = append(m.calls, ticker)
	m.mu.Unlock()

	if err := validateWindow(period, interval); err != nil {
		return model.PriceSeries{}, err
	}
	if err, ok := m.Errors[ticker]; ok {
		return model.PriceSeries{}, err
	}
	if s, ok := m.Series[ticker]; ok {
		return s, nil
	}
	return model.PriceSeries{Ticker: ticker, Bars: generateMockBars(ticker, m.Price, barCount(period, interval))}, nil
}

// Calls returns the tickers fetched so far, in order.
func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

func barCount(period model.Period, interval model.Interval) int {
	switch {
	case interval == model.Interval1M:
		return 390
	case period == model.Period5Y:
		return 5 * 252
	default:
		return 22
	}
}

func generateMockBars(ticker string, basePrice float64, count int) []model.PriceBar {
	bars := make([]model.PriceBar, count)
	start := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.PriceBar{
			Time:   start.AddDate(0, 0, i),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
			Ticker: ticker,
		}
	}
	return bars
}
