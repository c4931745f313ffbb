package collector

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"CycleSentinel/internal/model"
)

func TestCollector_CleansSeries(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := &MockFetcher{Bars: []model.OHLCV{
		{Time: t0, Close: 100},
		{Time: t0.AddDate(0, 0, 1), Close: 0},
		{Time: t0.AddDate(0, 0, 2), Close: 101},
		{Time: t0.AddDate(0, 0, 2), Close: 102},
		{Time: t0.AddDate(0, 0, 3), Close: math.NaN()},
		{Time: t0.AddDate(0, 0, 4), Close: 103},
	}}
	c := NewCollector(m, "DXY", IntervalDaily, t0, time.Time{})
	series, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series.Bars) != 3 {
		t.Fatalf("expected 3 clean bars, got %d", len(series.Bars))
	}
	if series.Source != "mock" || series.Symbol != "DXY" {
		t.Errorf("unexpected series metadata %+v", series)
	}
	samples := series.Samples()
	for i := 1; i < len(samples); i++ {
		if !samples[i].Time.After(samples[i-1].Time) {
			t.Errorf("samples not strictly increasing at %d", i)
		}
	}
}

func TestCollector_FetchError(t *testing.T) {
	c := NewCollector(&MockFetcher{Err: errors.New("down")}, "DXY", IntervalDaily, time.Time{}, time.Time{})
	if _, err := c.Collect(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestMockFetcher_GeneratesWave(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars, err := (&MockFetcher{Price: 100}).FetchBars(context.Background(), BarRequest{
		Start: start,
		End:   start.AddDate(0, 0, 200),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 200 {
		t.Fatalf("expected 200 bars, got %d", len(bars))
	}
	hi, lo := bars[0].Close, bars[0].Close
	for _, b := range bars {
		hi = math.Max(hi, b.Close)
		lo = math.Min(lo, b.Close)
	}
	if hi-lo < 9 {
		t.Errorf("expected a wave spanning ~10 points, got %.2f", hi-lo)
	}
}
