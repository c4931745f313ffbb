package cycle

import (
	"fmt"
	"math"

	"CycleSentinel/internal/calculator"
	"CycleSentinel/internal/model"
)

// Result is the output of one pipeline run.
type Result struct {
	Peaks   []model.Event
	Troughs []model.Event
	Events  []model.Event
	Cycles  []model.Cycle
}

// Analyze runs detection, timeline construction, cycle enumeration and
// sub-window highlighting over samples. An empty series yields an empty
// Result. Parameter problems are reported before the samples are examined.
func Analyze(samples []model.Sample, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateSamples(samples); err != nil {
		return nil, err
	}

	res := &Result{}
	if len(samples) == 0 {
		return res, nil
	}

	peaks, troughs := calculator.DetectExtrema(calculator.Values(samples), p.Prominence, p.MinSeparation)
	res.Peaks = BuildTimeline(samples, peaks, nil)
	res.Troughs = BuildTimeline(samples, nil, troughs)
	res.Events = BuildTimeline(samples, peaks, troughs)

	cycles := EnumerateCycles(samples, res.Events, p)
	res.Cycles = HighlightAll(samples, res.Events, cycles, p)
	return res, nil
}

// ValidateSamples checks that indices match positions, timestamps strictly
// increase and every value is finite.
func ValidateSamples(samples []model.Sample) error {
	for i, s := range samples {
		if s.Index != i {
			return &InputError{Index: i, Reason: fmt.Sprintf("index %d does not match position", s.Index)}
		}
		if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
			return &InputError{Index: i, Reason: fmt.Sprintf("value %v is not finite", s.Value)}
		}
		if i > 0 && !s.Time.After(samples[i-1].Time) {
			return &InputError{Index: i, Reason: fmt.Sprintf("timestamp %s is not after %s",
				s.Time.Format("2006-01-02 15:04:05"), samples[i-1].Time.Format("2006-01-02 15:04:05"))}
		}
	}
	return nil
}
