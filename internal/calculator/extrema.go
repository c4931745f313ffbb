package calculator

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// DetectExtrema returns the ascending indices of peaks and troughs in values.
// Troughs are the peaks of the negated series, so the two sets never share an index.
func DetectExtrema(values []float64, minProminence float64, minSeparation int) (peaks, troughs []int) {
	if len(values) < 3 {
		return nil, nil
	}
	neg := make([]float64, len(values))
	floats.ScaleTo(neg, -1, values)
	return FindPeaks(values, minProminence, minSeparation), FindPeaks(neg, minProminence, minSeparation)
}

// FindPeaks returns the ascending indices of local maxima whose prominence is
// at least minProminence, thinned so that no two kept peaks are closer than
// minSeparation bars. A more prominent candidate wins over a weaker neighbour.
func FindPeaks(values []float64, minProminence float64, minSeparation int) []int {
	if len(values) < 3 {
		return nil
	}

	type candidate struct {
		idx  int
		prom float64
	}
	var cands []candidate
	for _, i := range localMaxima(values) {
		if p := Prominence(values, i); p >= minProminence {
			cands = append(cands, candidate{idx: i, prom: p})
		}
	}
	if len(cands) == 0 {
		return nil
	}

	sort.SliceStable(cands, func(a, b int) bool {
		ca, cb := cands[a], cands[b]
		if ca.prom != cb.prom {
			return ca.prom > cb.prom
		}
		if values[ca.idx] != values[cb.idx] {
			return values[ca.idx] > values[cb.idx]
		}
		return ca.idx < cb.idx
	})

	kept := make([]int, 0, len(cands))
	for _, c := range cands {
		tooClose := false
		for _, k := range kept {
			if absInt(c.idx-k) < minSeparation {
				tooClose = true
				break
			}
		}
		if !tooClose {
			kept = append(kept, c.idx)
		}
	}
	sort.Ints(kept)
	return kept
}

// Prominence measures how far the peak at idx stands above the higher of its
// two bases. Each base is the minimum between the peak and the nearest
// strictly higher sample on that side (or the series edge).
func Prominence(values []float64, idx int) float64 {
	h := values[idx]
	lo := idx
	for lo > 0 && values[lo-1] <= h {
		lo--
	}
	hi := idx
	for hi < len(values)-1 && values[hi+1] <= h {
		hi++
	}
	leftBase := floats.Min(values[lo : idx+1])
	rightBase := floats.Min(values[idx : hi+1])
	return h - math.Max(leftBase, rightBase)
}

// localMaxima finds strict local maxima. A flat top counts once, at its
// midpoint, when both outer neighbours are lower. Edges are never maxima.
func localMaxima(x []float64) []int {
	var out []int
	last := len(x) - 1
	for i := 1; i < last; i++ {
		if !(x[i-1] < x[i]) {
			continue
		}
		ahead := i + 1
		for ahead < last && x[ahead] == x[i] {
			ahead++
		}
		if x[ahead] < x[i] {
			out = append(out, (i+ahead-1)/2)
			i = ahead
		}
	}
	return out
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
