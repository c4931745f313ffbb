package calculator

import (
	"errors"

	"CycleSentinel/internal/model"

	"gonum.org/v1/gonum/floats"
)

// SeriesRange returns the highest and lowest value across the samples.
func SeriesRange(samples []model.Sample) (high, low float64, err error) {
	if len(samples) == 0 {
		return 0, 0, errors.New("no samples provided")
	}
	vals := Values(samples)
	return floats.Max(vals), floats.Min(vals), nil
}

// RangePosition returns where the current value sits within [low, high] (0.0~1.0).
func RangePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}

// Values extracts the sample values in order.
func Values(samples []model.Sample) []float64 {
	vals := make([]float64, len(samples))
	for i, s := range samples {
		vals[i] = s.Value
	}
	return vals
}
