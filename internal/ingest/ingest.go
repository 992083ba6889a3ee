package ingest

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"MarketTerminal/internal/collector"
	"MarketTerminal/internal/model"
	"MarketTerminal/internal/store"
)

// Status is the tagged result of ingesting one symbol.
type Status int

const (
	StatusStored Status = iota
	StatusNoData
	StatusFetchFailed
	StatusStoreFailed
)

func (s Status) String() string {
	switch s {
	case StatusStored:
		return "stored"
	case StatusNoData:
		return "no_data"
	case StatusFetchFailed:
		return "fetch_failed"
	case StatusStoreFailed:
		return "store_failed"
	default:
		return "unknown"
	}
}

// Outcome records what happened to one registry entry.
type Outcome struct {
	Symbol   model.Symbol
	Table    string
	Rows     int
	Status   Status
	Err      error
	Duration time.Duration
}

// Report summarises one batch run.
type Report struct {
	Outcomes   []Outcome
	StartedAt  time.Time
	FinishedAt time.Time
	Cancelled  bool
}

// Count returns how many outcomes have the given status.
func (r *Report) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Metrics receives per-symbol fetch and store results.
type Metrics interface {
	ObserveFetch(ticker string, elapsed time.Duration, err error)
	ObserveStore(table string, rows int, err error)
}

// Runner fetches every registry symbol and replaces its stored table.
type Runner struct {
	Fetcher collector.Fetcher
	Store   store.Store
	Window  model.Window
	Out     io.Writer
	Metrics Metrics
}

// NewRunner creates a Runner for the five-year daily window.
func NewRunner(fetcher collector.Fetcher, st store.Store, out io.Writer, m Metrics) *Runner {
	if out == nil {
		out = io.Discard
	}
	return &Runner{Fetcher: fetcher, Store: st, Window: model.HistoryWindow, Out: out, Metrics: m}
}

// Run ingests the registry one symbol at a time. A failing symbol is
// reported and skipped; it never stops the batch. Only cancellation of ctx
// ends the run early.
func (r *Runner) Run(ctx context.Context, reg model.Registry) *Report {
	rep := &Report{StartedAt: time.Now()}
	log.Info().Int("symbols", reg.Len()).Str("source", r.Fetcher.Name()).Msg("ingestion started")

	for _, sym := range reg.Symbols() {
		if ctx.Err() != nil {
			log.Warn().Err(ctx.Err()).Msg("ingestion cancelled")
			rep.Cancelled = true
			break
		}
		rep.Outcomes = append(rep.Outcomes, r.IngestOne(ctx, sym))
	}

	rep.FinishedAt = time.Now()
	fmt.Fprintln(r.Out, "✅ All data ingestion complete.")
	log.Info().
		Int("stored", rep.Count(StatusStored)).
		Int("no_data", rep.Count(StatusNoData)).
		Int("fetch_failed", rep.Count(StatusFetchFailed)).
		Int("store_failed", rep.Count(StatusStoreFailed)).
		Dur("elapsed", rep.FinishedAt.Sub(rep.StartedAt)).
		Msg("ingestion finished")
	return rep
}

// IngestOne fetches and stores a single symbol.
func (r *Runner) IngestOne(ctx context.Context, sym model.Symbol) (out Outcome) {
	out.Symbol = sym
	start := time.Now()
	defer func() { out.Duration = time.Since(start) }()

	fmt.Fprintf(r.Out, "Fetching data for %s (%s)...\n", sym.Name, sym.Ticker)

	series, err := collector.FetchWindow(ctx, r.Fetcher, sym.Ticker, r.Window)
	if r.Metrics != nil {
		r.Metrics.ObserveFetch(sym.Ticker, time.Since(start), err)
	}
	if err != nil {
		out.Status, out.Err = StatusFetchFailed, err
		fmt.Fprintf(r.Out, "⚠️ Error fetching %s: %v\n", sym.Ticker, err)
		log.Error().Err(err).Str("ticker", sym.Ticker).Msg("fetch failed, skipping")
		return out
	}
	if series.Empty() {
		out.Status = StatusNoData
		fmt.Fprintf(r.Out, "⚠️ No data for %s (%s), skipped\n", sym.Name, sym.Ticker)
		log.Warn().Str("ticker", sym.Ticker).Msg("provider returned no bars, keeping previous table")
		return out
	}

	table, err := r.Store.Store(ctx, sym.Ticker, series)
	out.Table = table
	if r.Metrics != nil {
		r.Metrics.ObserveStore(table, series.Len(), err)
	}
	if err != nil {
		out.Status, out.Err = StatusStoreFailed, err
		fmt.Fprintf(r.Out, "⚠️ Error storing %s: %v\n", sym.Ticker, err)
		log.Error().Err(err).Str("ticker", sym.Ticker).Str("table", table).Msg("store failed, skipping")
		return out
	}

	out.Status, out.Rows = StatusStored, series.Len()
	fmt.Fprintf(r.Out, "✅ Stored %s to table: %s\n", sym.Name, table)
	log.Info().Str("ticker", sym.Ticker).Str("table", table).Int("rows", out.Rows).Msg("stored")
	return out
}
