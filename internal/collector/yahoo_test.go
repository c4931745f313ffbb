package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const yahooFixture = `{"chart":{"result":[{"timestamp":[1704240000,1704153600,1704326400],
"indicators":{"quote":[{"open":[101,100,null],"high":[102,101,null],"low":[100,99,null],
"close":[101.5,100.5,null],"volume":[10,20,null]}]}}],"error":null}}`

func TestYahooFetcher_FetchBars(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotQuery = r.URL.RawQuery
		w.Write([]byte(yahooFixture))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	bars, err := f.FetchBars(context.Background(), BarRequest{Symbol: "DXY", Interval: IntervalDaily, Start: start, End: end})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotPath, "DX-Y.NYB") {
		t.Errorf("expected mapped symbol in path, got %s", gotPath)
	}
	if !strings.Contains(gotQuery, "period1=1704067200") || !strings.Contains(gotQuery, "interval=1d") {
		t.Errorf("unexpected query %s", gotQuery)
	}
	if len(bars) != 2 {
		t.Fatalf("expected null bar to be skipped, got %d bars", len(bars))
	}
	if !bars[0].Time.Before(bars[1].Time) || bars[0].Close != 100.5 {
		t.Errorf("expected bars sorted by time, got %+v", bars)
	}
}

func TestYahooFetcher_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusTooManyRequests, "slow down"},
		{"api error", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`},
		{"empty", http.StatusOK, `{"chart":{"result":[],"error":null}}`},
		{"bad json", http.StatusOK, `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			f := NewYahooFetcher("")
			f.BaseURL = srv.URL
			if _, err := f.FetchBars(context.Background(), BarRequest{Symbol: "DXY"}); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestYahooFetcher_UnsupportedInterval(t *testing.T) {
	f := NewYahooFetcher("")
	if _, err := f.FetchBars(context.Background(), BarRequest{Symbol: "DXY", Interval: "5m"}); err == nil {
		t.Error("expected error for unsupported interval")
	}
}
