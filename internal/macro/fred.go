package macro

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"
)

const (
	defaultBaseURL  = "https://api.stlouisfed.org/fred/series/observations"
	defaultPageSize = 13
)

var (
	// ErrMissingAPIKey means no FRED credential was configured; every
	// observation is absent until one is supplied.
	ErrMissingAPIKey = errors.New("FRED_API_KEY is not set")
	// ErrFetch marks a transport, status or decode failure.
	ErrFetch = errors.New("macro data fetch failed")
)

// Config tunes the FRED client.
type Config struct {
	BaseURL  string
	APIKey   string
	Proxy    string
	PageSize int
	Timeout  time.Duration
}

// Client reads series observations from the FRED API.
type Client struct {
	BaseURL  string
	APIKey   string
	PageSize int
	Client   *http.Client
}

// NewClient creates a FRED client with optional proxy support.
func NewClient(cfg Config) *Client {
	transport := &http.Transport{}
	if cfg.Proxy != "" {
		if u, err := url.Parse(cfg.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		BaseURL:  cfg.BaseURL,
		APIKey:   strings.TrimSpace(cfg.APIKey),
		PageSize: cfg.PageSize,
		Client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
	}
}

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// FetchObservation returns the value lag observations back from the newest
// one. The value is absent whenever anything goes wrong; the error says why
// and is meant for logging only.
func (c *Client) FetchObservation(ctx context.Context, seriesID string, lag int) (null.Float, error) {
	if c.APIKey == "" {
		return null.Float{}, ErrMissingAPIKey
	}
	if lag < 0 {
		return null.Float{}, fmt.Errorf("negative lag %d for %s", lag, seriesID)
	}

	limit := c.PageSize
	if lag+1 > limit {
		limit = lag + 1
	}
	params := url.Values{}
	params.Set("series_id", seriesID)
	params.Set("api_key", c.APIKey)
	params.Set("file_type", "json")
	params.Set("sort_order", "desc")
	params.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return null.Float{}, fmt.Errorf("%w: build request: %w", ErrFetch, err)
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return null.Float{}, fmt.Errorf("%w: %s: %w", ErrFetch, seriesID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return null.Float{}, fmt.Errorf("%w: %s: status %d, body: %s", ErrFetch, seriesID, resp.StatusCode, string(body))
	}

	var payload observationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return null.Float{}, fmt.Errorf("%w: %s: decode: %w", ErrFetch, seriesID, err)
	}
	if lag >= len(payload.Observations) {
		return null.Float{}, nil
	}

	// FRED reports missing readings as ".".
	v, err := strconv.ParseFloat(strings.TrimSpace(payload.Observations[lag].Value), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return null.Float{}, nil
	}
	return null.FloatFrom(v), nil
}
