package cycle

import (
	"sort"

	"CycleSentinel/internal/model"
)

// BuildTimeline merges peak and trough indices into one chronological event
// list. The detector guarantees the two index sets are disjoint; a shared
// timestamp would still sort Peak before Trough.
func BuildTimeline(samples []model.Sample, peaks, troughs []int) []model.Event {
	events := make([]model.Event, 0, len(peaks)+len(troughs))
	add := func(kind model.EventKind, indices []int) {
		for _, idx := range indices {
			if idx < 0 || idx >= len(samples) {
				continue
			}
			s := samples[idx]
			events = append(events, model.Event{Kind: kind, Index: s.Index, Time: s.Time, Value: s.Value})
		}
	}
	add(model.Peak, peaks)
	add(model.Trough, troughs)

	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Time.Equal(events[j].Time) {
			return events[i].Time.Before(events[j].Time)
		}
		return events[i].Kind < events[j].Kind
	})
	return events
}

// eventsBetween returns the events with from <= Index <= to. Events must be
// in timeline order.
func eventsBetween(events []model.Event, from, to int) []model.Event {
	lo := sort.Search(len(events), func(i int) bool { return events[i].Index >= from })
	hi := sort.Search(len(events), func(i int) bool { return events[i].Index > to })
	return events[lo:hi]
}
