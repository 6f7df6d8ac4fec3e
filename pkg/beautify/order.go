package beautify

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/matzehuels/wiretidy/pkg/circuit"
)

// turns records which way a wire leaves each end of a line: -1 towards
// smaller P, +1 towards larger P, 0 when it continues straight.
type turns struct {
	atMin int
	atMax int
}

// turnDirs inspects the segments on either side of the line's segment. The
// wire reaches the segment start from P-len(i-1) and leaves its end towards
// P+len(i+1).
func turnDirs(l Line, m *circuit.Model) turns {
	if l.Source == nil {
		return turns{}
	}
	w, ok := m.Wires[l.Source.WireID]
	i := l.Source.Index
	if !ok || i <= 0 || i >= len(w.Segments)-1 {
		return turns{}
	}
	atStart := -sign(w.Segments[i-1].Length)
	atEnd := sign(w.Segments[i+1].Length)
	if w.Segments[i].Length >= 0 {
		return turns{atMin: atStart, atMax: atEnd}
	}
	return turns{atMin: atEnd, atMax: atStart}
}

// pairScore estimates whether a should sit above (positive) or below
// (negative) b. At each end, the line that stops inside the other's extent
// wants to be on the side it turns to, otherwise its turn crosses the other
// line. Ends that coincide and turn towards each other add the meeting term.
func pairScore(a, b Line, ta, tb turns, cfg Config) float64 {
	score := 0.0

	switch {
	case scalar.EqualWithinAbs(a.Bound.Min, b.Bound.Min, cfg.OverlapTolerance):
		if ta.atMin != 0 && ta.atMin == -tb.atMin {
			score += cfg.MeetingWeight * float64(ta.atMin)
		}
	case a.Bound.Min > b.Bound.Min:
		if a.Bound.Min < b.Bound.Max {
			score += float64(ta.atMin)
		}
	default:
		if b.Bound.Min < a.Bound.Max {
			score -= float64(tb.atMin)
		}
	}

	switch {
	case scalar.EqualWithinAbs(a.Bound.Max, b.Bound.Max, cfg.OverlapTolerance):
		if ta.atMax != 0 && ta.atMax == -tb.atMax {
			score += cfg.MeetingWeight * float64(ta.atMax)
		}
	case a.Bound.Max < b.Bound.Max:
		if a.Bound.Max > b.Bound.Min {
			score += float64(ta.atMax)
		}
	default:
		if b.Bound.Max > a.Bound.Min {
			score -= float64(tb.atMax)
		}
	}

	return score
}

// OrderCluster returns the cluster members sorted from lowest to highest
// target P so that estimated crossings are minimised. Members with equal
// scores keep their current order.
//
// Two segments of the same wire keep their current relative order: their
// turn directions depend on the segment between them, which flips sign as
// soon as they pass each other.
func OrderCluster(c Cluster, lines []Line, m *circuit.Model, cfg Config) []int {
	order := slices.Clone(c.Members)
	if len(order) < 2 {
		return order
	}

	t := make(map[int]turns, len(order))
	for _, i := range order {
		t[i] = turnDirs(lines[i], m)
	}
	net := make(map[int]float64, len(order))
	for x, i := range order {
		for _, j := range order[x+1:] {
			s := pairScore(lines[i], lines[j], t[i], t[j], cfg)
			if sameWire(lines[i], lines[j]) {
				s = float64(sign(lines[i].P - lines[j].P))
			}
			net[i] += s
			net[j] -= s
		}
	}

	slices.SortStableFunc(order, func(a, b int) int {
		if r := cmp.Compare(net[a], net[b]); r != 0 {
			return r
		}
		return cmp.Compare(lines[a].P, lines[b].P)
	})
	return order
}

func sameWire(a, b Line) bool {
	return a.WireID != "" && a.WireID == b.WireID
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
