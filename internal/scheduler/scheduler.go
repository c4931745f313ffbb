package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"CycleSentinel/internal/calculator"
	"CycleSentinel/internal/collector"
	"CycleSentinel/internal/cycle"
	"CycleSentinel/internal/metrics"
	"CycleSentinel/internal/model"
	"CycleSentinel/internal/notifier"
	"CycleSentinel/internal/telemetry"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Notifier delivers rendered reports. *notifier.TelegramNotifier satisfies it.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the cycle analysis on a cron schedule and on demand, and
// keeps the latest report for the chat commands and the HTTP API.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Params    cycle.Params
	Notifier  Notifier // nil disables notifications
	Stats     *metrics.Stats
	Ctx       context.Context

	runMu  sync.Mutex
	mu     sync.RWMutex
	latest *model.Report
}

// NewScheduler creates a new Scheduler. n may be nil.
func NewScheduler(ctx context.Context, col *collector.Collector, params cycle.Params, n Notifier, stats *metrics.Stats) *Scheduler {
	if stats == nil {
		stats = metrics.NewStats()
	}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		Collector: col,
		Params:    params,
		Notifier:  n,
		Stats:     stats,
		Ctx:       ctx,
	}
}

// Register registers the scheduled analysis task.
func (s *Scheduler) Register(analysisCron string) error {
	if _, err := s.Cron.AddFunc(analysisCron, s.scheduledTask); err != nil {
		return fmt.Errorf("register analysis task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// Latest returns the most recent successful report, or nil before the first run.
func (s *Scheduler) Latest() *model.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// RunNow executes an analysis immediately and notifies (manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow(trigger model.TriggerType) {
	s.runAndNotify(s.Ctx, trigger)
}

func (s *Scheduler) scheduledTask() {
	s.runAndNotify(s.Ctx, model.TriggerScheduled)
}

func (s *Scheduler) runAndNotify(ctx context.Context, trigger model.TriggerType) {
	report, err := s.RunAnalysis(ctx, trigger)
	if err != nil {
		log.Printf("[ERROR] %s analysis: %v", strings.ToLower(string(trigger)), err)
		s.trySend(ctx, fmt.Sprintf("❌ cycle analysis failed: %v", err))
		return
	}
	s.trySend(ctx, notifier.FormatCycleReport(report))
}

// RunAnalysis collects the configured series, runs the cycle pipeline and
// stores the resulting report as the latest one. Runs are serialized.
func (s *Scheduler) RunAnalysis(ctx context.Context, trigger model.TriggerType) (*model.Report, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	ctx, span := telemetry.Tracer().Start(ctx, "RunAnalysis", trace.WithAttributes(
		attribute.String("trigger", string(trigger)),
		attribute.String("symbol", s.Collector.Symbol),
	))
	defer span.End()

	started := time.Now()
	log.Printf("[INFO] running %s analysis for %s", strings.ToLower(string(trigger)), s.Collector.Symbol)

	report, err := s.analyze(ctx, trigger)
	s.Stats.RecordRun(report, time.Since(started))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("samples", report.SampleCount),
		attribute.Int("cycles", len(report.Cycles)),
	)
	s.mu.Lock()
	s.latest = report
	s.mu.Unlock()

	sum := report.Summary()
	log.Printf("[INFO] analysis done: %d bars, %d peaks, %d troughs, %d cycles (%d highlighted) in %v",
		report.SampleCount, len(report.Peaks), len(report.Troughs), sum.Total, sum.Highlighted, time.Since(started))
	return report, nil
}

func (s *Scheduler) analyze(ctx context.Context, trigger model.TriggerType) (*model.Report, error) {
	fetchCtx, fetchSpan := telemetry.Tracer().Start(ctx, "Collect")
	series, err := s.Collector.Collect(fetchCtx)
	fetchSpan.End()
	if err != nil {
		s.Stats.RecordFetchError(s.Collector.Fetcher.Name())
		return nil, fmt.Errorf("collect: %w", err)
	}

	samples := series.Samples()
	result, err := cycle.Analyze(samples, s.Params)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", series.Symbol, err)
	}
	return buildReport(series, samples, result, s.Params, trigger), nil
}

// buildReport assembles the renderer-facing report from one pipeline result.
func buildReport(series *model.PriceSeries, samples []model.Sample, res *cycle.Result, p cycle.Params, trigger model.TriggerType) *model.Report {
	r := &model.Report{
		Symbol:        series.Symbol,
		Interval:      series.Interval,
		Source:        series.Source,
		Trigger:       trigger,
		SampleCount:   len(samples),
		Peaks:         res.Peaks,
		Troughs:       res.Troughs,
		Events:        res.Events,
		Cycles:        res.Cycles,
		PrimaryLow:    p.Primary.Low,
		PrimaryHigh:   p.Primary.High,
		SecondaryLow:  p.Secondary.Low,
		SecondaryHigh: p.Secondary.High,
		GeneratedAt:   time.Now(),
	}
	if len(samples) > 0 {
		r.From = samples[0].Time
		r.To = samples[len(samples)-1].Time
		r.LastClose = samples[len(samples)-1].Value
		r.High, r.Low, _ = calculator.SeriesRange(samples)
	}
	return r
}

const helpText = "Commands:\n• /run run the cycle analysis now\n• /cycles latest cycle report\n• /highlights highlighted sub-windows\n• /summary counters\n• /params analysis parameters"

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	switch command {
	case "/run":
		s.runAndNotify(ctx, model.TriggerManual)
		return ""
	case "/cycles":
		if r := s.Latest(); r != nil {
			return notifier.FormatCycleReport(r)
		}
		return noReportYet
	case "/highlights":
		if r := s.Latest(); r != nil {
			return notifier.FormatHighlights(r)
		}
		return noReportYet
	case "/summary":
		if r := s.Latest(); r != nil {
			return notifier.FormatSummary(r)
		}
		return noReportYet
	case "/params":
		return formatParams(s.Params)
	default:
		return helpText
	}
}

const noReportYet = "No analysis has run yet. Send /run to start one."

func formatParams(p cycle.Params) string {
	return fmt.Sprintf("⚙️ <b>Analysis parameters</b>\n\nPrimary window: %s bars\nOffsets: %v\nSecondary window: %s bars\nHighlight offsets: %v\nProminence: %g\nMin separation: %d bars",
		p.Primary, p.Offsets, p.Secondary, p.HighlightOffsets, p.Prominence, p.MinSeparation)
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
