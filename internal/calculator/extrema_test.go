package calculator

import (
	"math"
	"reflect"
	"testing"
	"time"

	"CycleSentinel/internal/model"
)

func TestFindPeaks_Basic(t *testing.T) {
	tests := []struct {
		name       string
		values     []float64
		prominence float64
		separation int
		want       []int
	}{
		{"too short", []float64{1, 2}, 0, 1, nil},
		{"empty", nil, 0, 1, nil},
		{"two peaks", []float64{1, 3, 1, 5, 1}, 0, 1, []int{1, 3}},
		{"prominence filter", []float64{1, 3, 1, 5, 1}, 3, 1, []int{3}},
		{"separation keeps more prominent", []float64{1, 3, 1, 5, 1}, 0, 3, []int{3}},
		{"plateau midpoint", []float64{0, 2, 2, 2, 0}, 0, 1, []int{2}},
		{"plateau at edge is not a peak", []float64{0, 2, 2}, 0, 1, nil},
		{"monotonic", []float64{1, 2, 3, 4, 5}, 0, 1, nil},
		{"prominence beats height", []float64{4.8, 5, 4.9, 0, 4, 0}, 0, 10, []int{4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindPeaks(tt.values, tt.prominence, tt.separation)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindPeaks(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestProminence(t *testing.T) {
	x := []float64{1, 3, 1, 5, 1}
	if p := Prominence(x, 1); p != 2 {
		t.Errorf("expected prominence 2 at idx 1, got %.2f", p)
	}
	if p := Prominence(x, 3); p != 4 {
		t.Errorf("expected prominence 4 at idx 3, got %.2f", p)
	}
}

func TestDetectExtrema_Disjoint(t *testing.T) {
	values := make([]float64, 200)
	for i := range values {
		values[i] = 100 + 5*math.Sin(2*math.Pi*float64(i)/40)
	}
	peaks, troughs := DetectExtrema(values, 1.5, 10)
	if len(peaks) == 0 || len(troughs) == 0 {
		t.Fatalf("expected peaks and troughs, got P=%v T=%v", peaks, troughs)
	}
	seen := make(map[int]bool)
	for _, p := range peaks {
		seen[p] = true
	}
	for _, tr := range troughs {
		if seen[tr] {
			t.Errorf("index %d reported as both peak and trough", tr)
		}
	}
	for i := 1; i < len(peaks); i++ {
		if peaks[i]-peaks[i-1] < 10 {
			t.Errorf("peaks %d and %d closer than min separation", peaks[i-1], peaks[i])
		}
	}
}

func TestDetectExtrema_Degenerate(t *testing.T) {
	p, tr := DetectExtrema([]float64{1, 2}, 0, 1)
	if p != nil || tr != nil {
		t.Errorf("expected empty results, got %v %v", p, tr)
	}
	p, tr = DetectExtrema([]float64{1, 1.1, 1, 1.1, 1}, 5, 1)
	if len(p) != 0 || len(tr) != 0 {
		t.Errorf("expected nothing above prominence 5, got %v %v", p, tr)
	}
}

func TestSeriesRange(t *testing.T) {
	if _, _, err := SeriesRange(nil); err == nil {
		t.Error("expected error for empty samples")
	}
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	samples := []model.Sample{
		{Index: 0, Time: t0, Value: 101},
		{Index: 1, Time: t0.AddDate(0, 0, 1), Value: 99},
		{Index: 2, Time: t0.AddDate(0, 0, 2), Value: 104},
	}
	high, low, err := SeriesRange(samples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if high != 104 || low != 99 {
		t.Errorf("expected 104/99, got %.0f/%.0f", high, low)
	}
}

func TestRangePosition(t *testing.T) {
	tests := []struct {
		cur, high, low, want float64
	}{
		{5, 10, 0, 0.5},
		{10, 10, 10, 0.5},
		{12, 10, 0, 1},
		{-1, 10, 0, 0},
	}
	for _, tt := range tests {
		got, err := RangePosition(tt.cur, tt.high, tt.low)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("RangePosition(%v,%v,%v) = %v, want %v", tt.cur, tt.high, tt.low, got, tt.want)
		}
	}
	if _, err := RangePosition(1, 0, 10); err == nil {
		t.Error("expected error when high < low")
	}
}
