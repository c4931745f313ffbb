package notifier

import (
	"encoding/csv"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	"CycleSentinel/internal/calculator"
	"CycleSentinel/internal/model"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// price renders a value with two fixed decimals.
func price(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func offsetList(points []model.OffsetPoint) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = fmt.Sprintf("F%d %s", p.Offset, p.Time.Format(dateLayout))
	}
	return strings.Join(parts, " · ")
}

// FormatCycleReport formats an analysis report into a Telegram HTML message.
func FormatCycleReport(r *model.Report) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🔁 <b>CycleSentinel</b> | %s %s | %s\n\n",
		html.EscapeString(r.Symbol), r.Interval, r.GeneratedAt.Format(dateLayout)))

	if r.SampleCount == 0 {
		b.WriteString("No price data in range.\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("Range: %s → %s (%d bars)\n", r.From.Format(dateLayout), r.To.Format(dateLayout), r.SampleCount))
	pos, err := calculator.RangePosition(r.LastClose, r.High, r.Low)
	if err != nil {
		pos = 0.5
	}
	b.WriteString(fmt.Sprintf("High: %s | Low: %s | Last: %s (%.0f%%)\n", price(r.High), price(r.Low), price(r.LastClose), pos*100))
	b.WriteString(fmt.Sprintf("Peaks: %d | Troughs: %d\n\n", len(r.Peaks), len(r.Troughs)))

	s := r.Summary()
	b.WriteString(fmt.Sprintf("📐 <b>Cycles (%d-%d bars): %d</b> | ★ %d\n", r.PrimaryLow, r.PrimaryHigh, s.Total, s.Highlighted))
	for _, t := range model.Transitions {
		if n := s.ByTransition[t]; n > 0 {
			b.WriteString(fmt.Sprintf("  %s: %d\n", t, n))
		}
	}

	for i, c := range r.Cycles {
		mark := ""
		if c.Highlighted() {
			mark = " ★"
		}
		b.WriteString(fmt.Sprintf("\n<b>%d. %s</b> %d bars%s\n", i+1, c.Transition, c.DurationBars, mark))
		b.WriteString(fmt.Sprintf("   %s (%s) → %s (%s)\n",
			c.Start.Time.Format(dateLayout), price(c.Start.Value), c.End.Time.Format(dateLayout), price(c.End.Value)))
		if len(c.OffsetPoints) > 0 {
			b.WriteString("   " + offsetList(c.OffsetPoints) + "\n")
		}
		for _, h := range c.Highlights {
			b.WriteString(fmt.Sprintf("   ★ %s %d bars %s → %s",
				h.Transition, h.DurationBars, h.Start.Time.Format(dateLayout), h.End.Time.Format(dateLayout)))
			if len(h.FlaggedOffsets) > 0 {
				b.WriteString(": " + offsetList(h.FlaggedOffsets))
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// FormatConsoleReport renders the plain-text cycle listing printed by one-shot runs.
func FormatConsoleReport(r *model.Report) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Found %d valid cycles (%d-%d bars):\n", len(r.Cycles), r.PrimaryLow, r.PrimaryHigh))
	for i, c := range r.Cycles {
		b.WriteString(fmt.Sprintf("Cycle %d: %s, Duration: %d bars, from %s to %s, offset points found: %d",
			i+1, c.Transition, c.DurationBars, c.Start.Time.Format(dateLayout), c.End.Time.Format(dateLayout), len(c.OffsetPoints)))
		if c.Highlighted() {
			b.WriteString(fmt.Sprintf(", highlighted sub-windows (%d-%d bars): %d", r.SecondaryLow, r.SecondaryHigh, len(c.Highlights)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatSummary formats the short counters reply for chat commands.
func FormatSummary(r *model.Report) string {
	s := r.Summary()
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>%s</b> %s | %s\n", html.EscapeString(r.Symbol), r.Interval, r.GeneratedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Bars: %d | Peaks: %d | Troughs: %d\n", r.SampleCount, len(r.Peaks), len(r.Troughs)))
	b.WriteString(fmt.Sprintf("Cycles: %d | Highlighted: %d | Sub-windows: %d\n", s.Total, s.Highlighted, s.SubWindows))
	for _, t := range model.Transitions {
		b.WriteString(fmt.Sprintf("  %s: %d\n", t, s.ByTransition[t]))
	}
	return b.String()
}

// FormatHighlights lists only the highlighted cycles' sub-windows.
func FormatHighlights(r *model.Report) string {
	cycles := r.FilterCycles("", true)
	if len(cycles) == 0 {
		return fmt.Sprintf("No %d-%d bar sub-windows found.", r.SecondaryLow, r.SecondaryHigh)
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("★ <b>Sub-windows (%d-%d bars)</b>\n", r.SecondaryLow, r.SecondaryHigh))
	for _, c := range cycles {
		b.WriteString(fmt.Sprintf("\n%s %s → %s\n", c.Transition, c.Start.Time.Format(dateLayout), c.End.Time.Format(dateLayout)))
		for _, h := range c.Highlights {
			b.WriteString(fmt.Sprintf("  %s %d bars", h.Transition, h.DurationBars))
			if len(h.FlaggedOffsets) > 0 {
				b.WriteString(": " + offsetList(h.FlaggedOffsets))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

var csvHeader = []string{"cycle", "transition", "start_date", "end_date", "duration_bars", "offset", "offset_date", "offset_value", "highlighted"}

// WriteCyclesCSV writes one row per offset point; cycles without offset
// points still get a single row with empty offset columns. The highlighted
// column carries the cycle's flag.
func WriteCyclesCSV(w io.Writer, r *model.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, c := range r.Cycles {
		base := []string{
			strconv.Itoa(i + 1),
			string(c.Transition),
			c.Start.Time.Format(dateLayout),
			c.End.Time.Format(dateLayout),
			strconv.Itoa(c.DurationBars),
		}
		if len(c.OffsetPoints) == 0 {
			if err := cw.Write(append(base, "", "", "", strconv.FormatBool(c.Highlighted()))); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
			continue
		}
		for _, p := range c.OffsetPoints {
			row := append(append([]string(nil), base...),
				strconv.Itoa(p.Offset),
				p.Time.Format(dateLayout),
				price(p.Value),
				strconv.FormatBool(c.Highlighted()),
			)
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
