package collector

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"CycleSentinel/internal/model"
)

// CSVFetcher reads bars from a local CSV file with a header row. The date
// column is required together with either a close column or an adjusted
// close column; open/high/low/volume are optional.
type CSVFetcher struct {
	Path string
}

// NewCSVFetcher creates a fetcher reading from path.
func NewCSVFetcher(path string) *CSVFetcher {
	return &CSVFetcher{Path: path}
}

func (f *CSVFetcher) Name() string { return "csv" }

var csvDateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}

func (f *CSVFetcher) FetchBars(_ context.Context, req BarRequest) ([]model.OHLCV, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	bars, err := readCSVBars(file)
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", f.Path, err)
	}
	bars = clipRange(bars, req.Start, req.End)
	if req.Interval == IntervalWeekly {
		return aggregateDailyToWeekly(bars), nil
	}
	return bars, nil
}

func readCSVBars(r io.Reader) ([]model.OHLCV, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	dateCol, ok := cols["date"]
	if !ok {
		return nil, fmt.Errorf("missing date column")
	}
	closeCol, ok := cols["close"]
	if !ok {
		if closeCol, ok = cols["adj close"]; !ok {
			return nil, fmt.Errorf("missing close column")
		}
	}

	var bars []model.OHLCV
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ts, err := parseCSVDate(rec[dateCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		c, err := strconv.ParseFloat(strings.TrimSpace(rec[closeCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: close: %w", line, err)
		}
		bar := model.OHLCV{Time: ts, Open: c, High: c, Low: c, Close: c}
		optional := map[string]*float64{"open": &bar.Open, "high": &bar.High, "low": &bar.Low, "volume": &bar.Volume}
		for name, dst := range optional {
			idx, ok := cols[name]
			if !ok || idx >= len(rec) {
				continue
			}
			if v, err := strconv.ParseFloat(strings.TrimSpace(rec[idx]), 64); err == nil {
				*dst = v
			}
		}
		bars = append(bars, bar)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func parseCSVDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
