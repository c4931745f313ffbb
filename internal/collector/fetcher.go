package collector

import (
	"context"
	"time"

	"CycleSentinel/internal/model"
)

// Supported bar intervals.
const (
	IntervalDaily  = "1d"
	IntervalWeekly = "1wk"
)

// BarRequest describes the bars to fetch. A zero End means "up to now".
type BarRequest struct {
	Symbol   string
	Interval string
	Start    time.Time
	End      time.Time
}

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchBars(ctx context.Context, req BarRequest) ([]model.OHLCV, error)
	Name() string
}

func endOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

// clipRange keeps bars with start <= Time < end; the end date is exclusive.
func clipRange(bars []model.OHLCV, start, end time.Time) []model.OHLCV {
	out := bars[:0]
	for _, b := range bars {
		if !start.IsZero() && b.Time.Before(start) {
			continue
		}
		if !end.IsZero() && !b.Time.Before(end) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// aggregateDailyToWeekly converts daily bars into weekly bars (Mon-Fri).
func aggregateDailyToWeekly(daily []model.OHLCV) []model.OHLCV {
	if len(daily) == 0 {
		return nil
	}
	var weekly []model.OHLCV
	var week model.OHLCV
	var weekStarted bool

	for _, d := range daily {
		year, isoWeek := d.Time.ISOWeek()
		weekKey := year*100 + isoWeek

		if !weekStarted {
			week = d
			weekStarted = true
			continue
		}

		cy, cw := week.Time.ISOWeek()
		if weekKey != cy*100+cw {
			weekly = append(weekly, week)
			week = d
			continue
		}
		if d.High > week.High {
			week.High = d.High
		}
		if d.Low < week.Low {
			week.Low = d.Low
		}
		week.Close = d.Close
		week.Volume += d.Volume
	}
	return append(weekly, week)
}
