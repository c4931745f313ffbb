package cycle

import (
	"fmt"
	"math"
)

// Window is an inclusive bar-distance range.
type Window struct {
	Low  int `yaml:"low" json:"low"`
	High int `yaml:"high" json:"high"`
}

// Contains reports whether low <= bars <= high.
func (w Window) Contains(bars int) bool {
	return bars >= w.Low && bars <= w.High
}

func (w Window) String() string { return fmt.Sprintf("%d-%d", w.Low, w.High) }

// Params is the immutable configuration of one analysis run.
type Params struct {
	Primary          Window
	Offsets          []int
	Secondary        Window
	HighlightOffsets []int
	Prominence       float64
	MinSeparation    int
}

// DefaultParams returns the stock cycle setup: 31-35 bar cycles annotated at
// 7/13/21/33 bars, with 20-22 bar sub-windows highlighted at 7 and 13.
func DefaultParams() Params {
	return Params{
		Primary:          Window{Low: 31, High: 35},
		Offsets:          []int{7, 13, 21, 33},
		Secondary:        Window{Low: 20, High: 22},
		HighlightOffsets: []int{7, 13},
		Prominence:       1.5,
		MinSeparation:    10,
	}
}

// Validate checks the parameters before any detection runs.
func (p Params) Validate() error {
	if err := validateWindow("primary_window", p.Primary); err != nil {
		return err
	}
	if err := validateWindow("secondary_window", p.Secondary); err != nil {
		return err
	}
	if len(p.Offsets) == 0 {
		return &ConfigError{Field: "offsets", Reason: "must not be empty"}
	}
	if err := validateOffsets("offsets", p.Offsets); err != nil {
		return err
	}
	if err := validateOffsets("highlight_offsets", p.HighlightOffsets); err != nil {
		return err
	}
	known := make(map[int]bool, len(p.Offsets))
	for _, o := range p.Offsets {
		known[o] = true
	}
	for _, o := range p.HighlightOffsets {
		if !known[o] {
			return &ConfigError{Field: "highlight_offsets", Reason: fmt.Sprintf("%d is not one of offsets %v", o, p.Offsets)}
		}
	}
	if math.IsNaN(p.Prominence) || p.Prominence < 0 {
		return &ConfigError{Field: "prominence", Reason: fmt.Sprintf("must be >= 0, got %v", p.Prominence)}
	}
	if p.MinSeparation < 1 {
		return &ConfigError{Field: "min_separation", Reason: fmt.Sprintf("must be >= 1, got %d", p.MinSeparation)}
	}
	return nil
}

func validateWindow(field string, w Window) error {
	if w.Low > w.High {
		return &ConfigError{Field: field, Reason: fmt.Sprintf("low %d > high %d", w.Low, w.High)}
	}
	if w.Low < 1 {
		return &ConfigError{Field: field, Reason: fmt.Sprintf("low must be >= 1, got %d", w.Low)}
	}
	return nil
}

func validateOffsets(field string, offsets []int) error {
	for i, o := range offsets {
		if o <= 0 {
			return &ConfigError{Field: field, Reason: fmt.Sprintf("offset %d must be positive", o)}
		}
		if i > 0 && o <= offsets[i-1] {
			return &ConfigError{Field: field, Reason: fmt.Sprintf("must be strictly increasing, got %v", offsets)}
		}
	}
	return nil
}
