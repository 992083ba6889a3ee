package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketTerminal/internal/ingest"
	"MarketTerminal/internal/model"
)

func TestFormatLivePrices(t *testing.T) {
	at := time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)
	msg := FormatLivePrices([]model.LiveQuote{
		{Asset: "S&P 500", Ticker: "^GSPC", Price: null.FloatFrom(5981.1234)},
		{Asset: "Gold", Ticker: "GC=F", Price: null.Float{}},
	}, at)

	assert.Contains(t, msg, "2025-01-06 09:30")
	assert.Contains(t, msg, "S&amp;P 500 (^GSPC): 5981.1234")
	assert.Contains(t, msg, "Gold (GC=F): N/A")
}

func TestFormatHistory_LastRows(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]model.ClosePoint, 15)
	for i := range points {
		points[i] = model.ClosePoint{Date: start.AddDate(0, 0, i), Close: float64(100 + i)}
	}
	msg := FormatHistory(model.Symbol{Name: "Apple", Ticker: "AAPL"}, points)

	assert.NotContains(t, msg, "2025-01-05")
	assert.Contains(t, msg, "2025-01-06  105.00")
	assert.Contains(t, msg, "2025-01-15  114.00")
	assert.Equal(t, historyRows, strings.Count(msg, "\n  "))

	empty := FormatHistory(model.Symbol{Name: "Apple"}, nil)
	assert.Contains(t, empty, "No data available.")
}

func TestFormatTechnicalSummary(t *testing.T) {
	sym := model.Symbol{Name: "Bitcoin", Ticker: "BTC-USD"}
	sum := model.TechnicalSummary{
		AsOf:            time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),
		PeriodReturnPct: -3.5,
		VolatilityPct:   2.81,
		SMA10:           97123.45,
		RSI14:           41.2,
	}
	msg := FormatTechnicalSummary(sym, sum, true)
	assert.Contains(t, msg, "Period return: -3.50%")
	assert.Contains(t, msg, "Volatility: 2.81%")
	assert.Contains(t, msg, "SMA10: 97123.45")
	assert.Contains(t, msg, "RSI14: 41.20")

	assert.Contains(t, FormatTechnicalSummary(sym, model.TechnicalSummary{}, false), "Not enough data.")
}

func TestFormatMacroPanel(t *testing.T) {
	msg := FormatMacroPanel([]model.MacroAlert{
		{Indicator: "U.S. CPI (YoY)", Value: "3.20%", Insight: "Elevated inflation", Tier: model.TierWatch},
		{Indicator: "Fed Funds Rate", Value: "N/A", Insight: "Undetermined", Tier: model.TierUndetermined},
	})
	assert.Contains(t, msg, "⚠️ U.S. CPI (YoY): 3.20% | Elevated inflation")
	assert.Contains(t, msg, "❔ Fed Funds Rate: N/A | Undetermined")
}

func TestFormatIngestReport(t *testing.T) {
	start := time.Date(2025, 1, 6, 22, 30, 0, 0, time.UTC)
	rep := &ingest.Report{
		StartedAt:  start,
		FinishedAt: start.Add(42 * time.Second),
		Outcomes: []ingest.Outcome{
			{Symbol: model.Symbol{Name: "Apple", Ticker: "AAPL"}, Status: ingest.StatusStored},
			{Symbol: model.Symbol{Name: "Broken", Ticker: "BAD"}, Status: ingest.StatusFetchFailed},
			{Symbol: model.Symbol{Name: "Quiet", Ticker: "QT"}, Status: ingest.StatusNoData},
		},
	}
	msg := FormatIngestReport(rep)
	assert.Contains(t, msg, "Stored: 1/3")
	assert.Contains(t, msg, "No data: 1")
	assert.Contains(t, msg, "⚠️ Broken (BAD): fetch_failed")
	assert.Contains(t, msg, "Elapsed: 42s")
	assert.NotContains(t, msg, "cancelled")
}

func newTestNotifier(srv *httptest.Server) *TelegramNotifier {
	n := NewTelegramNotifier("TOKEN", "42", "")
	n.APIBase = srv.URL
	n.RetryInterval = time.Millisecond
	n.Client = srv.Client()
	return n
}

func TestSend(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, newTestNotifier(srv).Send(context.Background(), "<b>hi</b>"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "HTML", got["parse_mode"])
	assert.Equal(t, "<b>hi</b>", got["text"])
}

func TestSendWithRetry(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, newTestNotifier(srv).SendWithRetry(context.Background(), "msg", 3))
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestSendWithRetry_GivesUp(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := newTestNotifier(srv).SendWithRetry(context.Background(), "msg", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestPollOnce(t *testing.T) {
	var replies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/botTOKEN/getUpdates":
			assert.Equal(t, "7", r.URL.Query().Get("offset"))
			_, _ = w.Write([]byte(`{"ok":true,"result":[
				{"update_id":7,"message":{"text":" /prices "}},
				{"update_id":8},
				{"update_id":9,"message":{"text":"/macro"}}]}`))
		case "/botTOKEN/sendMessage":
			var p map[string]string
			_ = json.NewDecoder(r.Body).Decode(&p)
			replies = append(replies, p["text"])
		}
	}))
	defer srv.Close()

	n := newTestNotifier(srv)
	handler := func(_ context.Context, cmd string) string {
		if cmd == "/macro" {
			return ""
		}
		return "reply to " + cmd
	}
	next, err := n.pollOnce(context.Background(), n.Client, 7, handler)
	require.NoError(t, err)
	assert.Equal(t, 10, next)
	assert.Equal(t, []string{"reply to /prices"}, replies)
}

func TestPollOnce_NotOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"ok":false}`))
	}))
	defer srv.Close()

	n := newTestNotifier(srv)
	next, err := n.pollOnce(context.Background(), n.Client, 3, func(context.Context, string) string { return "" })
	require.Error(t, err)
	assert.Equal(t, 3, next)
	assert.False(t, errors.Is(err, context.Canceled))
}
