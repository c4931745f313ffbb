package model

import "time"

// TriggerType indicates what started an analysis run.
type TriggerType string

const (
	TriggerScheduled TriggerType = "SCHEDULED"
	TriggerManual    TriggerType = "MANUAL"
	TriggerStartup   TriggerType = "STARTUP"
	TriggerOneShot   TriggerType = "ONE_SHOT"
)

// Report is the outcome of one analysis run, ready for any renderer.
type Report struct {
	Symbol      string      `json:"symbol"`
	Interval    string      `json:"interval"`
	Source      string      `json:"source"`
	Trigger     TriggerType `json:"trigger"`
	From        time.Time   `json:"from"`
	To          time.Time   `json:"to"`
	SampleCount int         `json:"sample_count"`
	High        float64     `json:"high"`
	Low         float64     `json:"low"`
	LastClose   float64     `json:"last_close"`
	Peaks       []Event     `json:"peaks"`
	Troughs     []Event     `json:"troughs"`
	Events      []Event     `json:"events"`
	Cycles      []Cycle     `json:"cycles"`

	PrimaryLow    int `json:"primary_low"`
	PrimaryHigh   int `json:"primary_high"`
	SecondaryLow  int `json:"secondary_low"`
	SecondaryHigh int `json:"secondary_high"`

	GeneratedAt time.Time `json:"generated_at"`
}

// ReportSummary counts cycles per transition.
type ReportSummary struct {
	Total        int                `json:"total"`
	Highlighted  int                `json:"highlighted"`
	SubWindows   int                `json:"sub_windows"`
	ByTransition map[Transition]int `json:"by_transition"`
}

// Summary tallies the report's cycles.
func (r *Report) Summary() ReportSummary {
	s := ReportSummary{ByTransition: make(map[Transition]int, len(Transitions))}
	for _, t := range Transitions {
		s.ByTransition[t] = 0
	}
	for _, c := range r.Cycles {
		s.Total++
		s.ByTransition[c.Transition]++
		if c.Highlighted() {
			s.Highlighted++
			s.SubWindows += len(c.Highlights)
		}
	}
	return s
}

// FilterCycles returns the cycles matching the transition (empty = any)
// and, when highlightedOnly is set, carrying at least one sub-window.
func (r *Report) FilterCycles(t Transition, highlightedOnly bool) []Cycle {
	out := make([]Cycle, 0, len(r.Cycles))
	for _, c := range r.Cycles {
		if t != "" && c.Transition != t {
			continue
		}
		if highlightedOnly && !c.Highlighted() {
			continue
		}
		out = append(out, c)
	}
	return out
}
