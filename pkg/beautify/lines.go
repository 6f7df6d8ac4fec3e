package beautify

import (
	"cmp"
	"slices"

	"github.com/matzehuels/wiretidy/pkg/circuit"
)

// BuildLines projects the model onto orientation o.
//
// Every interior segment (not the first or last of its wire) that runs along
// o and has non-zero length yields one line. Manually routed segments become
// FixedManual; the segment right after a zero-length segment 1, or right
// before a zero-length segment n-2, continues a port nub and becomes
// FixedAdjacentToNub; all others are Normal. Each symbol contributes its two
// edges parallel to o as Fixed lines, moved inwards by cfg.SmallOffset.
//
// The result is sorted by P and IDs are reassigned 0..n-1. Same-net links
// are not computed; see [LinkSameNet].
func BuildLines(o circuit.Orientation, m *circuit.Model, cfg Config) []Line {
	var lines []Line
	for _, id := range m.WireIDs() {
		lines = appendWireLines(lines, o, m.Wires[id])
	}
	for _, id := range m.SymbolIDs() {
		lines = appendSymbolLines(lines, o, m.Symbols[id].Box, cfg.SmallOffset)
	}

	slices.SortStableFunc(lines, func(a, b Line) int {
		return cmp.Compare(a.P, b.P)
	})
	for i := range lines {
		lines[i].ID = i
	}
	return lines
}

// BuildLineInfo builds both arenas for the current model.
func BuildLineInfo(m *circuit.Model, cfg Config) LineInfo {
	return LineInfo{
		Horizontal: BuildLines(circuit.Horizontal, m, cfg),
		Vertical:   BuildLines(circuit.Vertical, m, cfg),
	}
}

func appendWireLines(lines []Line, o circuit.Orientation, w circuit.Wire) []Line {
	n := len(w.Segments)
	if n < 3 {
		return lines
	}
	pts := w.Points()
	for i := 1; i < n-1; i++ {
		seg := w.Segments[i]
		if seg.Length == 0 || w.SegmentOrientation(i) != o {
			continue
		}
		start, end := pts[i], pts[i+1]
		lines = append(lines, Line{
			P:           start.Coord(o.Other()),
			Bound:       NewInterval(start.Coord(o), end.Coord(o)),
			Orientation: o,
			Kind:        segmentKind(w, i),
			Source:      &SegmentRef{WireID: w.ID, Index: i},
			NetKey:      w.OutputPort,
			WireID:      w.ID,
		})
	}
	return lines
}

func segmentKind(w circuit.Wire, i int) Kind {
	n := len(w.Segments)
	switch {
	case w.Segments[i].Mode == circuit.Manual:
		return FixedManual
	case i == 2 && w.Segments[1].Length == 0:
		return FixedAdjacentToNub
	case i == n-3 && w.Segments[n-2].Length == 0:
		return FixedAdjacentToNub
	default:
		return Normal
	}
}

func appendSymbolLines(lines []Line, o circuit.Orientation, b circuit.Box, off float64) []Line {
	var lo, hi float64
	var bound Interval
	if o == circuit.Horizontal {
		lo, hi = b.Top()+off, b.Bottom()-off
		bound = NewInterval(b.Left()+off, b.Right()-off)
	} else {
		lo, hi = b.Left()+off, b.Right()-off
		bound = NewInterval(b.Top()+off, b.Bottom()-off)
	}
	for _, p := range []float64{lo, hi} {
		lines = append(lines, Line{
			P:           p,
			Bound:       bound,
			Orientation: o,
			Kind:        Fixed,
		})
	}
	return lines
}
