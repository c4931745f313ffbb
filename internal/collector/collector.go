package collector

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"CycleSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Without Bars it generates a wave whose half-period falls in the default
// primary window.
type MockFetcher struct {
	Price  float64
	Period int
	Bars   []model.OHLCV
	Err    error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, req BarRequest) ([]model.OHLCV, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	start := req.Start
	if start.IsZero() {
		start = time.Now().AddDate(-1, 0, 0)
	}
	end := endOrNow(req.End)
	days := int(end.Sub(start).Hours() / 24)
	return generateMockBars(m.Price, m.Period, start, days), nil
}

func generateMockBars(basePrice float64, period int, start time.Time, count int) []model.OHLCV {
	if basePrice == 0 {
		basePrice = 100
	}
	if period <= 0 {
		period = 66
	}
	if count < 0 {
		count = 0
	}
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + 0.05*math.Sin(2*math.Pi*float64(i)/float64(period)))
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector orchestrates data fetching for the configured symbol.
type Collector struct {
	Fetcher  Fetcher
	Symbol   string
	Interval string
	Start    time.Time
	End      time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol, interval string, start, end time.Time) *Collector {
	return &Collector{Fetcher: fetcher, Symbol: symbol, Interval: interval, Start: start, End: end}
}

// Collect fetches the configured range and returns a clean, strictly
// time-ordered series: bars without a positive close and bars repeating the
// previous timestamp are dropped.
func (c *Collector) Collect(ctx context.Context) (*model.PriceSeries, error) {
	raw, err := c.Fetcher.FetchBars(ctx, BarRequest{
		Symbol:   c.Symbol,
		Interval: c.Interval,
		Start:    c.Start,
		End:      c.End,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch bars from %s: %w", c.Fetcher.Name(), err)
	}

	bars := make([]model.OHLCV, 0, len(raw))
	var dropped int
	for _, b := range raw {
		if b.Close <= 0 || math.IsNaN(b.Close) || math.IsInf(b.Close, 0) {
			dropped++
			continue
		}
		if n := len(bars); n > 0 && !b.Time.After(bars[n-1].Time) {
			dropped++
			continue
		}
		bars = append(bars, b)
	}
	if dropped > 0 {
		log.Printf("[WARN] %s: dropped %d unusable bars for %s", c.Fetcher.Name(), dropped, c.Symbol)
	}
	log.Printf("[INFO] collected %d %s bars for %s from %s", len(bars), c.Interval, c.Symbol, c.Fetcher.Name())

	return &model.PriceSeries{
		Symbol:    c.Symbol,
		Interval:  c.Interval,
		Source:    c.Fetcher.Name(),
		Bars:      bars,
		FetchedAt: time.Now(),
	}, nil
}
