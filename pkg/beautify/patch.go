package beautify

import (
	"math"

	"github.com/matzehuels/wiretidy/pkg/circuit"
	"github.com/matzehuels/wiretidy/pkg/errors"
)

// ApplyMoves writes new line coordinates back into a copy of m.
//
// Each move also applies to the line's same-net peers. A segment is moved
// sideways by lengthening the segment before it and shortening the one after
// it by the same amount, so the wire's endpoints and all other segments stay
// where they are. Moves are additive, so two moved segments of one wire may
// share a neighbour.
//
// The input model is not modified. A line without a source segment, or one
// whose segment cannot be found with the expected orientation, is an
// invariant violation.
func ApplyMoves(m *circuit.Model, lines []Line, moves []Move) (*circuit.Model, error) {
	out := m.Clone()
	for _, mv := range moves {
		if mv.Line < 0 || mv.Line >= len(lines) {
			return nil, errors.Invariant("move targets line %d outside arena of %d", mv.Line, len(lines))
		}
		l := lines[mv.Line]
		if err := moveLine(out, l, mv.P); err != nil {
			return nil, err
		}
		for _, peer := range l.SameNetLinks {
			if err := moveLine(out, lines[peer], mv.P); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func moveLine(m *circuit.Model, l Line, p float64) error {
	if l.Source == nil {
		return errors.Invariant("line %d (%s) has no source segment", l.ID, l.Kind)
	}
	ref := *l.Source
	w, ok := m.Wires[ref.WireID]
	if !ok {
		return errors.Invariant("line %d refers to missing wire %q", l.ID, ref.WireID)
	}
	if ref.Index <= 0 || ref.Index >= len(w.Segments)-1 {
		return errors.Invariant("line %d refers to segment %d of wire %q with %d segments", l.ID, ref.Index, ref.WireID, len(w.Segments))
	}
	if w.SegmentOrientation(ref.Index) != l.Orientation {
		return errors.Invariant("line %d is %s but segment %d of wire %q is %s", l.ID, l.Orientation, ref.Index, ref.WireID, w.SegmentOrientation(ref.Index))
	}

	delta := p - l.P
	if math.Abs(delta) <= epsilon {
		return nil
	}
	w.Segments[ref.Index-1].Length += delta
	w.Segments[ref.Index+1].Length -= delta
	m.Wires[ref.WireID] = w
	return nil
}
