package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

type fakeAlpaca struct {
	bars []marketdata.Bar
	err  error
	req  marketdata.GetBarsRequest
}

func (f *fakeAlpaca) GetBars(_ string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error) {
	f.req = req
	return f.bars, f.err
}

func TestAlpacaFetcher_FetchBars(t *testing.T) {
	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	src := &fakeAlpaca{}
	for i := 0; i < 8; i++ {
		src.bars = append(src.bars, marketdata.Bar{Timestamp: monday.AddDate(0, 0, i), Close: float64(100 + i), Volume: 5})
	}
	f := &AlpacaFetcher{Client: src}

	bars, err := f.FetchBars(context.Background(), BarRequest{Symbol: "SPY", Interval: IntervalDaily, Start: monday})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 8 || bars[7].Close != 107 || bars[0].Volume != 5 {
		t.Errorf("unexpected bars %+v", bars)
	}
	if src.req.TimeFrame != marketdata.OneDay || !src.req.Start.Equal(monday) {
		t.Errorf("unexpected request %+v", src.req)
	}

	weekly, err := f.FetchBars(context.Background(), BarRequest{Symbol: "SPY", Interval: IntervalWeekly, Start: monday})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(weekly) != 2 {
		t.Errorf("expected 2 weeks, got %d", len(weekly))
	}
}

func TestAlpacaFetcher_Error(t *testing.T) {
	f := &AlpacaFetcher{Client: &fakeAlpaca{err: errors.New("forbidden")}}
	if _, err := f.FetchBars(context.Background(), BarRequest{Symbol: "SPY"}); err == nil {
		t.Error("expected error")
	}
}
