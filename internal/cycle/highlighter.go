package cycle

import "CycleSentinel/internal/model"

// Highlight re-examines the events spanned by c, bounding events included,
// and returns every ordered sub-pair whose distance lies in the secondary
// window. Each sub-window carries the highlight offsets, measured from its
// own start, that fall inside its span.
func Highlight(samples []model.Sample, events []model.Event, c model.Cycle, p Params) []model.SubWindow {
	inner := eventsBetween(events, c.Start.Index, c.End.Index)

	var subs []model.SubWindow
	for k := 0; k < len(inner)-1; k++ {
		start := inner[k]
		for l := k + 1; l < len(inner); l++ {
			end := inner[l]
			diff := end.Index - start.Index
			if diff <= 0 || !p.Secondary.Contains(diff) {
				continue
			}
			subs = append(subs, model.SubWindow{
				Transition:     model.Classify(start.Kind, end.Kind),
				Start:          start,
				End:            end,
				DurationBars:   diff,
				FlaggedOffsets: projectOffsets(samples, start.Index, diff, p.HighlightOffsets),
			})
		}
	}
	return subs
}

// HighlightAll attaches sub-window highlights to every cycle. The input
// slice is not modified.
func HighlightAll(samples []model.Sample, events []model.Event, cycles []model.Cycle, p Params) []model.Cycle {
	out := make([]model.Cycle, len(cycles))
	for i, c := range cycles {
		c.Highlights = Highlight(samples, events, c, p)
		out[i] = c
	}
	return out
}
