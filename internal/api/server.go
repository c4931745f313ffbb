package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"CycleSentinel/internal/cycle"
	"CycleSentinel/internal/metrics"
	"CycleSentinel/internal/model"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Version is set at build time with -ldflags "-X CycleSentinel/internal/api.Version=...".
var Version = "dev"

// ReportSource provides the latest analysis report, nil before the first run.
type ReportSource interface {
	Latest() *model.Report
}

// Server serves analysis results over HTTP.
type Server struct {
	Reports ReportSource
	Params  cycle.Params
	Stats   *metrics.Stats
}

// SetupMux handles all data serving:
// - Prometheus metric endpoint
// - Health and version for programmatic use
// - Latest report, filtered cycles and parameters as JSON
func (s *Server) SetupMux() *mux.Router {
	r := mux.NewRouter()

	r.Handle("/metrics", s.Stats.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.HealthHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.StatsMiddleware)
	api.HandleFunc("/version", s.VersionHandler).Methods(http.MethodGet)
	api.HandleFunc("/v1/report", s.ReportHandler).Methods(http.MethodGet)
	api.HandleFunc("/v1/cycles", s.CyclesHandler).Methods(http.MethodGet)
	api.HandleFunc("/v1/params", s.ParamsHandler).Methods(http.MethodGet)

	return r
}

// Handler wraps the router with OpenTelemetry HTTP instrumentation.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.SetupMux(), "cyclesentinel-api")
}

// NewHTTPServer builds the listening server for addr.
func (s *Server) NewHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// RespWriter captures the status code for StatsMiddleware.
type RespWriter struct {
	http.ResponseWriter
	Status int
}

func (w *RespWriter) WriteHeader(status int) {
	w.Status = status
	w.ResponseWriter.WriteHeader(status)
}

// StatsMiddleware counts API requests by status code and method.
func (s *Server) StatsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := &RespWriter{ResponseWriter: w, Status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		s.Stats.RecWWW(strconv.Itoa(wrapped.Status), r.Method)
	})
}

func (s *Server) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) VersionHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": Version})
}

func (s *Server) ReportHandler(w http.ResponseWriter, _ *http.Request) {
	report := s.Reports.Latest()
	if report == nil {
		writeError(w, http.StatusNotFound, "no analysis has run yet")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		*model.Report
		Summary model.ReportSummary `json:"summary"`
	}{report, report.Summary()})
}

// CyclesHandler lists cycles of the latest report, optionally filtered by
// ?transition=Peak-to-Peak and ?highlighted=true.
func (s *Server) CyclesHandler(w http.ResponseWriter, r *http.Request) {
	report := s.Reports.Latest()
	if report == nil {
		writeError(w, http.StatusNotFound, "no analysis has run yet")
		return
	}

	q := r.URL.Query()
	transition := model.Transition(q.Get("transition"))
	if transition != "" && !knownTransition(transition) {
		writeError(w, http.StatusBadRequest, "unknown transition "+strconv.Quote(string(transition)))
		return
	}
	var highlighted bool
	if v := q.Get("highlighted"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "highlighted must be a boolean")
			return
		}
		highlighted = b
	}

	cycles := report.FilterCycles(transition, highlighted)
	writeJSON(w, http.StatusOK, map[string]any{
		"symbol":       report.Symbol,
		"generated_at": report.GeneratedAt,
		"count":        len(cycles),
		"cycles":       cycles,
	})
}

func (s *Server) ParamsHandler(w http.ResponseWriter, _ *http.Request) {
	p := s.Params
	writeJSON(w, http.StatusOK, map[string]any{
		"primary_window":    p.Primary,
		"offsets":           p.Offsets,
		"secondary_window":  p.Secondary,
		"highlight_offsets": p.HighlightOffsets,
		"prominence":        p.Prominence,
		"min_separation":    p.MinSeparation,
	})
}

func knownTransition(t model.Transition) bool {
	for _, k := range model.Transitions {
		if k == t {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[WARN] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
