package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"html"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"MarketTerminal/internal/collector"
	"MarketTerminal/internal/config"
	"MarketTerminal/internal/ingest"
	"MarketTerminal/internal/logger"
	"MarketTerminal/internal/notifier"
	"MarketTerminal/internal/scheduler"
	"MarketTerminal/internal/store"
)

const usage = `usage: terminal <command> [flags]

commands:
  ingest     fetch five years of daily bars for every symbol and store them
  snapshot   print live prices, macro context and technical summaries
  serve      run the scheduler, chat commands and metrics endpoint
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	a, err := newApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init")
	}
	log.Info().Str("source", a.fetcher.Name()).Str("driver", cfg.Database.Driver).Msg("MarketTerminal starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "ingest":
		err = runIngest(ctx, a, args)
	case "snapshot":
		err = runSnapshot(ctx, a, args)
	case "serve":
		err = runServe(ctx, a)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Str("command", cmd).Msg("command failed")
		os.Exit(1)
	}
}

// runIngest runs one batch. Per-symbol failures are reported but never
// change the exit status.
func runIngest(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "fetch without writing to the database")
	_ = fs.Parse(args)

	if !*dryRun && a.cfg.Database.Driver == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(a.cfg.Database.DSN), 0o755); err != nil {
			return fmt.Errorf("create database dir: %w", err)
		}
	}
	st, err := a.openStore(*dryRun)
	if err != nil {
		return err
	}
	defer st.Close()

	ingest.NewRunner(a.fetcher, st, os.Stdout, a.metrics).Run(ctx, a.ingest)
	return nil
}

func runSnapshot(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	stored := fs.Bool("stored", false, "summarise stored history instead of fetching 30 days")
	_ = fs.Parse(args)

	col := collector.NewCollector(a.fetcher, a.markets)
	fmt.Println(plain(notifier.FormatLivePrices(col.LivePrices(ctx), time.Now())))
	fmt.Println(plain(notifier.FormatMacroPanel(a.panel.Alerts(ctx))))

	var st store.Store
	if *stored {
		s, err := a.openStore(false)
		if err != nil {
			return err
		}
		defer s.Close()
		st = s
	}

	for _, sym := range a.markets.Symbols() {
		if *stored {
			series, err := st.Load(ctx, sym.Ticker)
			if err != nil {
				log.Warn().Err(err).Str("ticker", sym.Ticker).Msg("no stored history")
				continue
			}
			snap := collector.SnapshotFromSeries(sym, series)
			fmt.Println(plain(notifier.FormatTechnicalSummary(sym, snap.Summary, snap.HasSummary)))
			continue
		}
		snap, err := col.Snapshot(ctx, sym.Name)
		if err != nil {
			log.Warn().Err(err).Str("ticker", sym.Ticker).Msg("snapshot unavailable")
			continue
		}
		fmt.Println(plain(notifier.FormatSnapshot(snap)))
	}
	return nil
}

func runServe(ctx context.Context, a *app) error {
	if a.cfg.Database.Driver == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(a.cfg.Database.DSN), 0o755); err != nil {
			return fmt.Errorf("create database dir: %w", err)
		}
	}
	st, err := a.openStore(false)
	if err != nil {
		return err
	}
	defer st.Close()

	runner := ingest.NewRunner(a.fetcher, st, nil, a.metrics)
	col := collector.NewCollector(a.fetcher, a.markets)

	var sender scheduler.Sender
	var tn *notifier.TelegramNotifier
	if a.cfg.Telegram.Enabled() {
		tn = notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Proxy)
		sender = tn
	} else {
		log.Warn().Msg("telegram not configured, reports are logged only")
	}

	sched := scheduler.NewScheduler(ctx, runner, a.ingest, col, a.panel, sender)
	if err := sched.RegisterAll(a.cfg.Schedule.IngestCron, a.cfg.Schedule.SnapshotCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, ingesting now")
		go sched.RunIngestNow(ctx)
	}

	var srv *http.Server
	if a.cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", a.metrics.Handler())
		srv = &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.Info().Str("addr", srv.Addr).Msg("metrics endpoint listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	log.Info().Msg("MarketTerminal is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping...")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
	return nil
}

var tagStripper = strings.NewReplacer("<b>", "", "</b>", "")

// plain turns a chat message into terminal text.
func plain(msg string) string {
	return html.UnescapeString(tagStripper.Replace(msg))
}
