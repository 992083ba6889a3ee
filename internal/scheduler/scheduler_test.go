package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketTerminal/internal/collector"
	"MarketTerminal/internal/ingest"
	"MarketTerminal/internal/macro"
	"MarketTerminal/internal/model"
	"MarketTerminal/internal/store"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

type fixedSource map[string]float64

func (f fixedSource) FetchObservation(_ context.Context, seriesID string, lag int) (null.Float, error) {
	v, ok := f[seriesID]
	if !ok {
		return null.Float{}, errors.New("series unavailable")
	}
	if seriesID == macro.SeriesCPI && lag == 12 {
		return null.FloatFrom(v / 1.03), nil
	}
	return null.FloatFrom(v), nil
}

func newTestScheduler(t *testing.T, sender Sender) (*Scheduler, *collector.MockFetcher) {
	t.Helper()
	fetcher := &collector.MockFetcher{
		Price:  100,
		Errors: map[string]error{"BAD": collector.ErrFetch},
	}
	reg := model.MustRegistry(
		model.Symbol{Name: "Apple", Ticker: "AAPL"},
		model.Symbol{Name: "Broken", Ticker: "BAD"},
	)
	markets := model.MustRegistry(
		model.Symbol{Name: "S&P 500", Ticker: "^GSPC"},
		model.Symbol{Name: "Gold", Ticker: "GC=F"},
	)
	runner := ingest.NewRunner(fetcher, store.NewNoopStore(), nil, nil)
	panel := macro.NewPanel(fixedSource{macro.SeriesCPI: 310, macro.SeriesFedFunds: 4.33}, nil)
	s := NewScheduler(context.Background(), runner, reg, collector.NewCollector(fetcher, markets), panel, sender)
	return s, fetcher
}

func TestRegisterAll(t *testing.T) {
	s, _ := newTestScheduler(t, nil)
	require.NoError(t, s.RegisterAll("0 30 22 * * 1-5", "0 0 8 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 2)

	s2, _ := newTestScheduler(t, nil)
	assert.Error(t, s2.RegisterAll("not a cron", "0 0 8 * * 1-5"))
}

func TestHandleCommand_Prices(t *testing.T) {
	s, _ := newTestScheduler(t, nil)
	reply := s.HandleCommand(context.Background(), "/prices")
	assert.Contains(t, reply, "S&amp;P 500 (^GSPC):")
	assert.Contains(t, reply, "Gold (GC=F):")
	assert.NotContains(t, reply, "N/A")
}

func TestHandleCommand_Macro(t *testing.T) {
	s, _ := newTestScheduler(t, nil)
	reply := s.HandleCommand(context.Background(), "/macro")
	assert.Contains(t, reply, "Fed Funds Rate: 4.33%")
	assert.Contains(t, reply, "U.S. GDP (Annualized): N/A")
}

func TestHandleCommand_Summary(t *testing.T) {
	s, fetcher := newTestScheduler(t, nil)
	ctx := context.Background()

	reply := s.HandleCommand(ctx, "/summary Gold")
	assert.Contains(t, reply, "Gold</b> technical summary")
	assert.Contains(t, reply, "RSI14:")
	assert.Contains(t, fetcher.Calls(), "GC=F")

	assert.Contains(t, s.HandleCommand(ctx, "/summary"), "S&amp;P 500, Gold")
	assert.Contains(t, s.HandleCommand(ctx, "/summary Platinum"), "unknown asset")
}

func TestHandleCommand_History(t *testing.T) {
	s, fetcher := newTestScheduler(t, nil)
	ctx := context.Background()

	reply := s.HandleCommand(ctx, "/history S&P 500")
	assert.Contains(t, reply, "S&amp;P 500</b> closes")
	assert.Equal(t, 10, strings.Count(reply, "\n  "))
	assert.Equal(t, []string{"^GSPC"}, fetcher.Calls())

	fetcher.Errors["GC=F"] = collector.ErrFetch
	assert.Contains(t, s.HandleCommand(ctx, "/history Gold"), "market data fetch failed")
	assert.Contains(t, s.HandleCommand(ctx, "/history"), "Usage: /history")
}

func TestHandleCommand_Ingest(t *testing.T) {
	s, _ := newTestScheduler(t, nil)
	reply := s.HandleCommand(context.Background(), "/ingest")
	assert.Contains(t, reply, "Stored: 1/2")
	assert.Contains(t, reply, "Broken (BAD): fetch_failed")
}

func TestHandleCommand_Help(t *testing.T) {
	s, _ := newTestScheduler(t, nil)
	assert.Contains(t, s.HandleCommand(context.Background(), "hello"), "Available commands")
}

func TestRunIngestNow_SkipsWhenBusy(t *testing.T) {
	s, _ := newTestScheduler(t, nil)
	s.ingestMu.Lock()
	assert.Nil(t, s.RunIngestNow(context.Background()))
	s.ingestMu.Unlock()

	rep := s.RunIngestNow(context.Background())
	require.NotNil(t, rep)
	assert.Equal(t, 1, rep.Count(ingest.StatusStored))
}

func TestTasksSendReports(t *testing.T) {
	sender := &fakeSender{}
	s, _ := newTestScheduler(t, sender)

	s.ingestTask()
	s.snapshotTask()

	require.Len(t, sender.sent, 2)
	assert.Contains(t, sender.sent[0], "Ingestion")
	assert.Contains(t, sender.sent[1], "Live Prices")
	assert.Contains(t, sender.sent[1], "Macro Context")
}
