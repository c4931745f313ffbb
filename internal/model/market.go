package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Sample is one point of the analysed series. Index is the position in the series.
type Sample struct {
	Index int       `json:"index"`
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// PriceSeries holds raw price data for analysis.
type PriceSeries struct {
	Symbol    string
	Interval  string
	Source    string
	Bars      []OHLCV
	FetchedAt time.Time
}

// Samples converts the bars' closing prices into an index-addressable series.
func (p *PriceSeries) Samples() []Sample {
	if p == nil || len(p.Bars) == 0 {
		return nil
	}
	out := make([]Sample, len(p.Bars))
	for i, b := range p.Bars {
		out[i] = Sample{Index: i, Time: b.Time, Value: b.Close}
	}
	return out
}
