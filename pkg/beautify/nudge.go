package beautify

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/matzehuels/wiretidy/pkg/circuit"
)

// NudgeFixed separates nub-adjacent lines of different nets that still
// coincide on orientation o. Clustering never moves these lines, so this
// pass handles them pairwise.
//
// For each neighbouring pair in the sorted arena that is FixedAdjacentToNub
// on both sides, within cfg.OverlapTolerance, on different nets and with
// overlapping bounds, the free space on either side of each line is
// measured. The line and direction with the most room win; that line moves
// half the room away from the other line's P. A line moves at most once per
// pass.
func NudgeFixed(o circuit.Orientation, m *circuit.Model, cfg Config, tr Tracer) (*circuit.Model, int, error) {
	lines := BuildLines(o, m, cfg)
	moved := make([]bool, len(lines))

	var moves []Move
	for i := 0; i+1 < len(lines); i++ {
		a, b := &lines[i], &lines[i+1]
		if !nudgeable(a, b, cfg) || moved[i] || moved[i+1] {
			continue
		}

		type candidate struct {
			line, other int
			dir         float64
			space       float64
		}
		best := candidate{line: -1}
		for _, c := range []candidate{
			{line: i, other: i + 1, dir: +1},
			{line: i, other: i + 1, dir: -1},
			{line: i + 1, other: i, dir: +1},
			{line: i + 1, other: i, dir: -1},
		} {
			c.space = freeSpace(lines, c.line, int(c.dir), cfg)
			if c.space > best.space {
				best = c
			}
		}
		if best.line < 0 || best.space <= cfg.OverlapTolerance {
			continue
		}

		p := lines[best.other].P + best.dir*best.space/2
		moves = append(moves, Move{Line: best.line, P: p})
		moved[best.line] = true
	}

	out, err := ApplyMoves(m, lines, moves)
	if err != nil {
		return nil, 0, err
	}
	tr.PassDone(PassEvent{
		Stage:       StageNudge,
		Orientation: o,
		Lines:       len(lines),
		Moves:       len(moves),
	})
	return out, len(moves), nil
}

func nudgeable(a, b *Line, cfg Config) bool {
	return a.Kind == FixedAdjacentToNub &&
		b.Kind == FixedAdjacentToNub &&
		a.NetKey != b.NetKey &&
		scalar.EqualWithinAbs(a.P, b.P, cfg.OverlapTolerance) &&
		a.Bound.Overlaps(b.Bound, epsilon)
}

// freeSpace walks the arena from line i in direction dir and returns the
// distance to the first overlapping line further than the overlap
// tolerance, capped at cfg.nudgeCap().
func freeSpace(lines []Line, i, dir int, cfg Config) float64 {
	limit := cfg.nudgeCap()
	l := lines[i]
	for j := i + dir; j >= 0 && j < len(lines); j += dir {
		gap := math.Abs(lines[j].P - l.P)
		if gap >= limit {
			return limit
		}
		if gap <= cfg.OverlapTolerance {
			continue
		}
		if lines[j].Bound.Overlaps(l.Bound, epsilon) {
			return gap
		}
	}
	return limit
}
