package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/guregu/null/v6"
	"github.com/rs/zerolog/log"

	"MarketTerminal/internal/model"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooConfig tunes the Yahoo Finance chart client.
type YahooConfig struct {
	BaseURL        string
	Proxy          string
	UserAgent      string
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
}

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	BaseURL        string
	UserAgent      string
	MaxRetries     int
	InitialBackoff time.Duration
	Client         *http.Client
}

// NewYahooFetcher creates a Yahoo Finance fetcher with optional proxy support.
func NewYahooFetcher(cfg YahooConfig) *YahooFetcher {
	transport := &http.Transport{}
	if cfg.Proxy != "" {
		if u, err := url.Parse(cfg.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultYahooBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	return &YahooFetcher{
		BaseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		UserAgent:      cfg.UserAgent,
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		Client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
				GMTOffset            int    `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []null.Float `json:"open"`
					High   []null.Float `json:"high"`
					Low    []null.Float `json:"low"`
					Close  []null.Float `json:"close"`
					Volume []null.Float `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch issues one chart query, retrying transient failures with
// exponential backoff.
func (f *YahooFetcher) Fetch(ctx context.Context, ticker string, period model.Period, interval model.Interval) (model.PriceSeries, error) {
	if err := validateWindow(period, interval); err != nil {
		return model.PriceSeries{}, err
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = f.InitialBackoff
	eb.MaxElapsedTime = 0
	retries := f.MaxRetries
	if retries < 0 {
		retries = 0
	}
	policy := backoff.WithMaxRetries(eb, uint64(retries))

	op := func() (model.PriceSeries, error) {
		return f.fetchChart(ctx, ticker, period, interval)
	}
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("ticker", ticker).Dur("retry_in", wait).Msg("yahoo fetch failed, retrying")
	}
	series, err := backoff.RetryNotifyWithData(op, backoff.WithContext(policy, ctx), notify)
	if err != nil {
		if !errors.Is(err, ErrFetch) {
			err = fmt.Errorf("%w: %w", ErrFetch, err)
		}
		return model.PriceSeries{}, err
	}
	return series, nil
}

func (f *YahooFetcher) fetchChart(ctx context.Context, ticker string, period model.Period, interval model.Interval) (model.PriceSeries, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=%s",
		f.BaseURL, url.PathEscape(ticker), url.QueryEscape(string(period)), url.QueryEscape(string(interval)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.PriceSeries{}, backoff.Permanent(fmt.Errorf("%w: build request: %w", ErrFetch, err))
	}
	req.Header.Set("User-Agent", f.UserAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return model.PriceSeries{}, backoff.Permanent(fmt.Errorf("%w: %w", ErrFetch, ctx.Err()))
		}
		return model.PriceSeries{}, fmt.Errorf("%w: yahoo request: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("%w: yahoo read body: %w", ErrFetch, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return model.PriceSeries{}, backoff.Permanent(fmt.Errorf("%w: %w: %s", ErrFetch, ErrSymbolNotFound, ticker))
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return model.PriceSeries{}, fmt.Errorf("%w: yahoo status %d", ErrFetch, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return model.PriceSeries{}, backoff.Permanent(fmt.Errorf("%w: yahoo status %d, body: %s", ErrFetch, resp.StatusCode, truncate(body, 200)))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return model.PriceSeries{}, backoff.Permanent(fmt.Errorf("%w: yahoo decode: %w", ErrFetch, err))
	}
	if chart.Chart.Error != nil {
		if strings.Contains(strings.ToLower(chart.Chart.Error.Description), "no data found") {
			return model.PriceSeries{}, backoff.Permanent(fmt.Errorf("%w: %w: %s", ErrFetch, ErrSymbolNotFound, ticker))
		}
		return model.PriceSeries{}, backoff.Permanent(fmt.Errorf("%w: yahoo api error: %s", ErrFetch, chart.Chart.Error.Description))
	}

	series := model.PriceSeries{Ticker: ticker}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return series, nil
	}
	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return series, nil
	}
	quote := result.Indicators.Quote[0]
	loc := exchangeLocation(result.Meta.ExchangeTimezoneName, result.Meta.GMTOffset)

	series.Bars = make([]model.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o, okO := at(quote.Open, i)
		h, okH := at(quote.High, i)
		l, okL := at(quote.Low, i)
		c, okC := at(quote.Close, i)
		v, okV := at(quote.Volume, i)
		if !okO || !okH || !okL || !okC || !okV {
			continue // incomplete row, dropped before the series is used
		}
		t := time.Unix(ts, 0).In(loc)
		if interval == model.Interval1D {
			t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		}
		series.Bars = append(series.Bars, model.PriceBar{
			Time:   t,
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: int64(v),
			Ticker: ticker,
		})
	}

	sort.SliceStable(series.Bars, func(i, j int) bool { return series.Bars[i].Time.Before(series.Bars[j].Time) })
	return series, nil
}

func at(values []null.Float, i int) (float64, bool) {
	if i >= len(values) || !values[i].Valid {
		return 0, false
	}
	return values[i].Float64, true
}

func exchangeLocation(name string, gmtOffset int) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	if gmtOffset != 0 {
		return time.FixedZone("exchange", gmtOffset)
	}
	return time.UTC
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
