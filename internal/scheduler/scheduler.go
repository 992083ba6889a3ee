package scheduler

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"MarketTerminal/internal/collector"
	"MarketTerminal/internal/ingest"
	"MarketTerminal/internal/macro"
	"MarketTerminal/internal/model"
	"MarketTerminal/internal/notifier"
)

const sendRetries = 3

// Sender delivers formatted messages.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages the cron jobs and answers chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	Runner    *ingest.Runner
	Registry  model.Registry
	Collector *collector.Collector
	Macro     *macro.Panel
	Sender    Sender
	Ctx       context.Context

	ingestMu sync.Mutex
}

// NewScheduler creates a new Scheduler. sender may be nil, in which case
// reports are only logged.
func NewScheduler(ctx context.Context, runner *ingest.Runner, reg model.Registry, col *collector.Collector, panel *macro.Panel, sender Sender) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Runner:    runner,
		Registry:  reg,
		Collector: col,
		Macro:     panel,
		Sender:    sender,
		Ctx:       ctx,
	}
}

// RegisterAll registers the ingestion and snapshot jobs.
func (s *Scheduler) RegisterAll(ingestCron, snapshotCron string) error {
	if _, err := s.Cron.AddFunc(ingestCron, s.ingestTask); err != nil {
		return fmt.Errorf("register ingest task: %w", err)
	}
	if _, err := s.Cron.AddFunc(snapshotCron, s.snapshotTask); err != nil {
		return fmt.Errorf("register snapshot task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunIngestNow runs one ingestion batch. It returns nil if a batch is
// already in progress.
func (s *Scheduler) RunIngestNow(ctx context.Context) *ingest.Report {
	if !s.ingestMu.TryLock() {
		log.Warn().Msg("ingestion already running, skipping")
		return nil
	}
	defer s.ingestMu.Unlock()
	return s.Runner.Run(ctx, s.Registry)
}

func (s *Scheduler) ingestTask() {
	log.Info().Msg("running scheduled ingestion")
	if rep := s.RunIngestNow(s.Ctx); rep != nil {
		s.trySend(notifier.FormatIngestReport(rep))
	}
}

func (s *Scheduler) snapshotTask() {
	log.Info().Msg("running market snapshot")
	s.trySend(s.snapshotMessage(s.Ctx))
}

func (s *Scheduler) snapshotMessage(ctx context.Context) string {
	prices := notifier.FormatLivePrices(s.Collector.LivePrices(ctx), time.Now())
	return prices + "\n" + notifier.FormatMacroPanel(s.Macro.Alerts(ctx))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(command), " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/prices":
		return notifier.FormatLivePrices(s.Collector.LivePrices(ctx), time.Now())
	case "/macro":
		return notifier.FormatMacroPanel(s.Macro.Alerts(ctx))
	case "/summary", "/history":
		if arg == "" {
			return "Usage: " + cmd + " &lt;asset&gt;\nAssets: " + html.EscapeString(strings.Join(s.Collector.Markets.Names(), ", "))
		}
		sym, ok := s.Collector.Markets.Lookup(arg)
		if !ok {
			return "❌ " + html.EscapeString(fmt.Sprintf("unknown asset %q", arg))
		}
		if cmd == "/history" {
			points, err := s.Collector.History(ctx, sym.Ticker)
			if err != nil {
				log.Warn().Err(err).Str("ticker", sym.Ticker).Msg("history command failed")
				return "❌ " + html.EscapeString(err.Error())
			}
			return notifier.FormatHistory(sym, points)
		}
		sum, ok, err := s.Collector.Summary(ctx, sym.Ticker)
		if err != nil {
			log.Warn().Err(err).Str("ticker", sym.Ticker).Msg("summary command failed")
			return "❌ " + html.EscapeString(err.Error())
		}
		return notifier.FormatTechnicalSummary(sym, sum, ok)
	case "/ingest":
		rep := s.RunIngestNow(ctx)
		if rep == nil {
			return "Ingestion is already running."
		}
		return notifier.FormatIngestReport(rep)
	default:
		return "Available commands:\n• /prices\n• /macro\n• /summary &lt;asset&gt;\n• /history &lt;asset&gt;\n• /ingest"
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Sender == nil {
		log.Info().Str("message", text).Msg("notifier disabled")
		return
	}
	if err := s.Sender.SendWithRetry(s.Ctx, text, sendRetries); err != nil {
		log.Error().Err(err).Msg("send notification failed")
	}
}
