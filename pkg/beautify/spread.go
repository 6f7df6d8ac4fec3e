package beautify

import (
	"math"
)

// Move assigns a new P to an arena line.
type Move struct {
	Line int
	P    float64
}

// SpreadCluster assigns coordinates to an ordered cluster, lowest first.
//
// With d = cfg.MaxSegmentSeparation and the ideal window being n lines d
// apart centred on the middle of the members' current range:
//   - a lone line with no fixed neighbours stays put;
//   - two fixed neighbours closer than (n+1)·d share their gap evenly;
//   - a lower neighbour inside the window anchors the stack at lower+d;
//   - an upper neighbour inside the window anchors it at upper-d;
//   - otherwise the ideal window is used.
//
// Only lines whose coordinate changes are returned.
func SpreadCluster(c Cluster, order []int, lines []Line, cfg Config) []Move {
	n := len(order)
	if n == 0 || (n == 1 && c.UpperFixed == nil && c.LowerFixed == nil) {
		return nil
	}
	d := cfg.MaxSegmentSeparation

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, i := range order {
		lo = math.Min(lo, lines[i].P)
		hi = math.Max(hi, lines[i].P)
	}
	start := (lo+hi)/2 - d*float64(n-1)/2
	end := start + d*float64(n-1)

	var pos func(k int) float64
	switch {
	case c.LowerFixed != nil && c.UpperFixed != nil && (*c.UpperFixed-*c.LowerFixed)/float64(n+1) < d:
		lower := *c.LowerFixed
		gap := (*c.UpperFixed - lower) / float64(n+1)
		pos = func(k int) float64 { return lower + float64(k+1)*gap }
	case c.LowerFixed != nil && start < *c.LowerFixed+d:
		lower := *c.LowerFixed
		pos = func(k int) float64 { return lower + d + float64(k)*d }
	case c.UpperFixed != nil && end > *c.UpperFixed-d:
		upper := *c.UpperFixed
		pos = func(k int) float64 { return upper - d - float64(n-1-k)*d }
	default:
		pos = func(k int) float64 { return start + float64(k)*d }
	}

	var moves []Move
	for k, i := range order {
		p := pos(k)
		if math.Abs(p-lines[i].P) > epsilon {
			moves = append(moves, Move{Line: i, P: p})
		}
	}
	return moves
}
