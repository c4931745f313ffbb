package model

import (
	"fmt"
	"time"
)

// EventKind tags an extremum as a peak or a trough.
type EventKind uint8

const (
	Peak EventKind = iota
	Trough
)

func (k EventKind) String() string {
	switch k {
	case Peak:
		return "peak"
	case Trough:
		return "trough"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// MarshalText renders the kind as "peak" or "trough".
func (k EventKind) MarshalText() ([]byte, error) {
	if k != Peak && k != Trough {
		return nil, fmt.Errorf("invalid event kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText parses "peak" or "trough".
func (k *EventKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "peak":
		*k = Peak
	case "trough":
		*k = Trough
	default:
		return fmt.Errorf("invalid event kind %q", string(b))
	}
	return nil
}

// Event is a detected extremum located on the sample series.
type Event struct {
	Kind  EventKind `json:"kind"`
	Index int       `json:"index"`
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Transition is the extrema-type pair a cycle runs between.
type Transition string

const (
	PeakToPeak     Transition = "Peak-to-Peak"
	TroughToTrough Transition = "Trough-to-Trough"
	PeakToTrough   Transition = "Peak-to-Trough"
	TroughToPeak   Transition = "Trough-to-Peak"
)

// Transitions lists every transition in report order.
var Transitions = []Transition{PeakToPeak, TroughToTrough, PeakToTrough, TroughToPeak}

// transitionTable is indexed by [from][to]; every EventKind pair has an entry.
var transitionTable = [2][2]Transition{
	Peak:   {Peak: PeakToPeak, Trough: PeakToTrough},
	Trough: {Peak: TroughToPeak, Trough: TroughToTrough},
}

// Classify maps a (from, to) kind pair to its transition.
// Kinds outside Peak/Trough cannot be produced by the detector and panic.
func Classify(from, to EventKind) Transition {
	return transitionTable[from][to]
}

// OffsetPoint is a bar projected a fixed offset past a cycle's start event.
type OffsetPoint struct {
	Offset int       `json:"offset"`
	Index  int       `json:"index"`
	Time   time.Time `json:"time"`
	Value  float64   `json:"value"`
}

// SubWindow is an event pair inside a cycle whose span hits the secondary window.
type SubWindow struct {
	Transition     Transition    `json:"transition"`
	Start          Event         `json:"start"`
	End            Event         `json:"end"`
	DurationBars   int           `json:"duration_bars"`
	FlaggedOffsets []OffsetPoint `json:"flagged_offsets"`
}

// Cycle is an accepted event pair whose span lies in the primary window.
type Cycle struct {
	Transition   Transition    `json:"transition"`
	Start        Event         `json:"start"`
	End          Event         `json:"end"`
	DurationBars int           `json:"duration_bars"`
	OffsetPoints []OffsetPoint `json:"offset_points"`
	Highlights   []SubWindow   `json:"highlights,omitempty"`
}

// Highlighted reports whether at least one sub-window qualified.
func (c Cycle) Highlighted() bool { return len(c.Highlights) > 0 }
