package cycle

import (
	"errors"
	"math"
	"testing"
)

func TestParams_Validate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("default params should be valid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Params)
		field  string
	}{
		{"primary inverted", func(p *Params) { p.Primary = Window{Low: 35, High: 31} }, "primary_window"},
		{"primary zero", func(p *Params) { p.Primary = Window{Low: 0, High: 3} }, "primary_window"},
		{"secondary inverted", func(p *Params) { p.Secondary = Window{Low: 22, High: 20} }, "secondary_window"},
		{"no offsets", func(p *Params) { p.Offsets = nil }, "offsets"},
		{"negative offset", func(p *Params) { p.Offsets = []int{-7, 13} }, "offsets"},
		{"unsorted offsets", func(p *Params) { p.Offsets = []int{13, 7} }, "offsets"},
		{"unknown highlight", func(p *Params) { p.HighlightOffsets = []int{8} }, "highlight_offsets"},
		{"negative prominence", func(p *Params) { p.Prominence = -1 }, "prominence"},
		{"NaN prominence", func(p *Params) { p.Prominence = math.NaN() }, "prominence"},
		{"zero separation", func(p *Params) { p.MinSeparation = 0 }, "min_separation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, cfgErr.Field)
			}
		})
	}
}

func TestWindow_Contains(t *testing.T) {
	w := Window{Low: 20, High: 22}
	for bars, want := range map[int]bool{19: false, 20: true, 21: true, 22: true, 23: false} {
		if got := w.Contains(bars); got != want {
			t.Errorf("Contains(%d) = %v, want %v", bars, got, want)
		}
	}
}
