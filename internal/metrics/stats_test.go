package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"CycleSentinel/internal/model"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRun(t *testing.T) {
	s := NewStats()
	r := &model.Report{
		Peaks:   make([]model.Event, 3),
		Troughs: make([]model.Event, 2),
		Cycles: []model.Cycle{
			{Transition: model.PeakToPeak},
			{Transition: model.PeakToPeak, Highlights: []model.SubWindow{{}}},
			{Transition: model.TroughToPeak},
		},
	}
	s.RecordRun(r, 250*time.Millisecond)
	s.RecordRun(nil, time.Second)

	if got := testutil.ToFloat64(s.Runs.WithLabelValues("ok")); got != 1 {
		t.Errorf("ok runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(s.Runs.WithLabelValues("error")); got != 1 {
		t.Errorf("error runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(s.Cycles.WithLabelValues("Peak-to-Peak")); got != 2 {
		t.Errorf("peak-to-peak cycles = %v, want 2", got)
	}
	if got := testutil.ToFloat64(s.Cycles.WithLabelValues("Trough-to-Trough")); got != 0 {
		t.Errorf("trough-to-trough cycles = %v, want 0", got)
	}
	if got := testutil.ToFloat64(s.Highlighted); got != 1 {
		t.Errorf("highlighted = %v, want 1", got)
	}
	if got := testutil.ToFloat64(s.Extrema.WithLabelValues("peak")); got != 3 {
		t.Errorf("peaks = %v, want 3", got)
	}
	if got := testutil.CollectAndCount(s.Duration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	s := NewStats()
	s.RecordFetchError("yahoo")
	s.RecWWW("200", "GET")

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body := w.Body.String()
	for _, want := range []string{
		`cyclesentinel_fetch_errors_total{source="yahoo"} 1`,
		`cyclesentinel_http_requests_total{code="200",method="GET"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
