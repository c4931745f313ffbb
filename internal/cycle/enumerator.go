package cycle

import "CycleSentinel/internal/model"

// EnumerateCycles scans every ordered event pair (i < j) and keeps the pairs
// whose bar distance falls inside the primary window, annotating each with
// its offset points. Cycles come out ordered by start event, then end event.
//
// The scan is O(E²) in the number of events. E counts extrema, not samples,
// so it stays small for any realistic series.
func EnumerateCycles(samples []model.Sample, events []model.Event, p Params) []model.Cycle {
	var cycles []model.Cycle
	for i := 0; i < len(events)-1; i++ {
		start := events[i]
		for j := i + 1; j < len(events); j++ {
			end := events[j]
			diff := end.Index - start.Index
			if diff <= 0 || !p.Primary.Contains(diff) {
				continue
			}
			cycles = append(cycles, model.Cycle{
				Transition:   model.Classify(start.Kind, end.Kind),
				Start:        start,
				End:          end,
				DurationBars: diff,
				OffsetPoints: projectOffsets(samples, start.Index, diff, p.Offsets),
			})
		}
	}
	return cycles
}

// projectOffsets returns, in offset order, the samples lying offset bars past
// start for every offset shorter than span that stays inside the series.
func projectOffsets(samples []model.Sample, start, span int, offsets []int) []model.OffsetPoint {
	points := make([]model.OffsetPoint, 0, len(offsets))
	for _, off := range offsets {
		if off >= span {
			continue
		}
		idx := start + off
		if idx < 0 || idx >= len(samples) {
			continue
		}
		s := samples[idx]
		points = append(points, model.OffsetPoint{Offset: off, Index: idx, Time: s.Time, Value: s.Value})
	}
	return points
}
