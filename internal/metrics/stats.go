package metrics

import (
	"net/http"
	"time"

	"CycleSentinel/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cyclesentinel"

// Stats holds the service's Prometheus collectors on a private registry.
type Stats struct {
	Registry *prometheus.Registry

	Runs        *prometheus.CounterVec
	Duration    prometheus.Histogram
	Cycles      *prometheus.GaugeVec
	Highlighted prometheus.Gauge
	Extrema     *prometheus.GaugeVec
	FetchErrors *prometheus.CounterVec
	HTTP        *prometheus.CounterVec
}

// NewStats creates and registers all collectors.
func NewStats() *Stats {
	s := &Stats{
		Registry: prometheus.NewRegistry(),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_runs_total",
			Help:      "Analysis runs by outcome.",
		}, []string{"status"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of a full analysis run including the fetch.",
			Buckets:   prometheus.DefBuckets,
		}),
		Cycles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cycles_detected",
			Help:      "Cycles in the latest report by transition.",
		}, []string{"transition"}),
		Highlighted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cycles_highlighted",
			Help:      "Cycles in the latest report with at least one sub-window.",
		}),
		Extrema: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "extrema_detected",
			Help:      "Extrema in the latest report by kind.",
		}, []string{"kind"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Failed price fetches by data source.",
		}, []string{"source"}),
		HTTP: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests by status code and method.",
		}, []string{"code", "method"}),
	}
	s.Registry.MustRegister(s.Runs, s.Duration, s.Cycles, s.Highlighted, s.Extrema, s.FetchErrors, s.HTTP)
	return s
}

// Handler serves the private registry.
func (s *Stats) Handler() http.Handler {
	return promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{Registry: s.Registry})
}

// RecordRun records one analysis run. A nil report counts as a failure.
func (s *Stats) RecordRun(r *model.Report, elapsed time.Duration) {
	s.Duration.Observe(elapsed.Seconds())
	if r == nil {
		s.Runs.WithLabelValues("error").Inc()
		return
	}
	s.Runs.WithLabelValues("ok").Inc()

	sum := r.Summary()
	for _, t := range model.Transitions {
		s.Cycles.WithLabelValues(string(t)).Set(float64(sum.ByTransition[t]))
	}
	s.Highlighted.Set(float64(sum.Highlighted))
	s.Extrema.WithLabelValues(model.Peak.String()).Set(float64(len(r.Peaks)))
	s.Extrema.WithLabelValues(model.Trough.String()).Set(float64(len(r.Troughs)))
}

// RecordFetchError counts a failed fetch from source.
func (s *Stats) RecordFetchError(source string) {
	s.FetchErrors.WithLabelValues(source).Inc()
}

// RecWWW counts a served API request.
func (s *Stats) RecWWW(code, method string) {
	s.HTTP.WithLabelValues(code, method).Inc()
}
