package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CycleSentinel/internal/api"
	"CycleSentinel/internal/collector"
	"CycleSentinel/internal/config"
	"CycleSentinel/internal/metrics"
	"CycleSentinel/internal/model"
	"CycleSentinel/internal/notifier"
	"CycleSentinel/internal/scheduler"
	"CycleSentinel/internal/telemetry"

	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	defaultConfig := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}
	cfgPath := flag.String("config", defaultConfig, "path to the YAML config file")
	once := flag.Bool("once", false, "run one analysis, print the cycle listing and exit")
	csvPath := flag.String("csv", "", "with -once, also write the cycles to this CSV file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[WARN] load .env: %v", err)
	}

	log.Println("[INFO] CycleSentinel starting...")

	// Load config
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.Telemetry.Provider)
	if err != nil {
		log.Fatalf("[FATAL] init telemetry: %v", err)
	}
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		if err := shutdownTelemetry(sctx); err != nil {
			log.Printf("[WARN] telemetry shutdown: %v", err)
		}
	}()

	// Init fetcher and collector
	fetcher, err := newFetcher(cfg)
	if err != nil {
		log.Fatalf("[FATAL] init fetcher: %v", err)
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	start, end, err := cfg.Range()
	if err != nil {
		log.Fatalf("[FATAL] analysis range: %v", err)
	}
	col := collector.NewCollector(fetcher, cfg.DataSource.Symbol, cfg.DataSource.Interval, start, end)
	params := cfg.AnalysisParams()
	stats := metrics.NewStats()

	if *once {
		if err := runOnce(ctx, scheduler.NewScheduler(ctx, col, params, nil, stats), *csvPath); err != nil {
			log.Fatalf("[FATAL] %v", err)
		}
		return
	}

	// Init Telegram notifier; without credentials reports are only served over HTTP
	var tn *notifier.TelegramNotifier
	var n scheduler.Notifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	} else {
		log.Println("[WARN] telegram not configured, notifications disabled")
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, col, params, n, stats)
	if err := sched.Register(cfg.Schedule.AnalysisCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// HTTP API
	srv := (&api.Server{Reports: sched, Params: params, Stats: stats}).NewHTTPServer(cfg.Server.Addr)
	go func() {
		log.Printf("[INFO] HTTP API listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[ERROR] HTTP API: %v", err)
		}
	}()

	// Start Telegram polling
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing analysis now")
		go sched.RunNow(model.TriggerStartup)
	}

	log.Println("[INFO] CycleSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Println("[INFO] shutdown signal received, stopping...")
	sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer scancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Printf("[WARN] HTTP API shutdown: %v", err)
	}
	log.Println("[INFO] CycleSentinel stopped")
}

func newFetcher(cfg *config.Config) (collector.Fetcher, error) {
	ds := cfg.DataSource
	switch ds.Provider {
	case "yahoo":
		return collector.NewYahooFetcher(cfg.Proxy), nil
	case "rest":
		return collector.NewRESTFetcher(ds.BaseURL, ds.APIKey, cfg.Proxy), nil
	case "alpaca":
		return collector.NewAlpacaFetcher(ds.APIKey, ds.APISecret, ds.BaseURL), nil
	case "csv":
		return collector.NewCSVFetcher(ds.CSVPath), nil
	case "mock":
		return &collector.MockFetcher{}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", ds.Provider)
	}
}

// runOnce performs a single analysis, prints the cycle listing to stdout
// and optionally writes the cycles as CSV.
func runOnce(ctx context.Context, sched *scheduler.Scheduler, csvPath string) error {
	report, err := sched.RunAnalysis(ctx, model.TriggerOneShot)
	if err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	fmt.Print(notifier.FormatConsoleReport(report))

	if csvPath == "" {
		return nil
	}
	f, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := notifier.WriteCyclesCSV(f, report); err != nil {
		f.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close csv: %w", err)
	}
	log.Printf("[INFO] wrote %d cycles to %s", len(report.Cycles), csvPath)
	return nil
}
