package circuit

import (
	"math"

	"github.com/matzehuels/wiretidy/pkg/errors"
)

// Segment is one straight run of a wire. Length is signed: positive lengths
// run towards increasing X (horizontal) or Y (vertical).
type Segment struct {
	Index  int     `json:"index"`
	Length float64 `json:"length"`
	Mode   Mode    `json:"mode,omitempty"`
}

// Wire is an orthogonal connection from an output port to an input port.
// OutputPort identifies the driving port and therefore the net.
type Wire struct {
	ID                 string      `json:"id"`
	OutputPort         string      `json:"output_port"`
	InputPort          string      `json:"input_port,omitempty"`
	Start              Point       `json:"start"`
	InitialOrientation Orientation `json:"initial_orientation"`
	Segments           []Segment   `json:"segments"`
}

// Clone returns a copy of w with its own segment slice.
func (w Wire) Clone() Wire {
	w.Segments = append([]Segment(nil), w.Segments...)
	return w
}

// SegmentOrientation returns the orientation of segment i.
func (w Wire) SegmentOrientation(i int) Orientation {
	if i%2 == 0 {
		return w.InitialOrientation
	}
	return w.InitialOrientation.Other()
}

// SegmentStart returns the absolute start point of segment i.
func (w Wire) SegmentStart(i int) Point {
	p := w.Start
	for j := 0; j < i && j < len(w.Segments); j++ {
		p = p.Add(w.SegmentOrientation(j), w.Segments[j].Length)
	}
	return p
}

// SegmentEnd returns the absolute end point of segment i.
func (w Wire) SegmentEnd(i int) Point {
	return w.SegmentStart(i).Add(w.SegmentOrientation(i), w.Segments[i].Length)
}

// End returns the absolute end point of the wire.
func (w Wire) End() Point {
	return w.SegmentStart(len(w.Segments))
}

// Points returns the absolute vertices of the wire, one more than the
// number of segments. Zero-length segments produce repeated points.
func (w Wire) Points() []Point {
	pts := make([]Point, 0, len(w.Segments)+1)
	p := w.Start
	pts = append(pts, p)
	for i, s := range w.Segments {
		p = p.Add(w.SegmentOrientation(i), s.Length)
		pts = append(pts, p)
	}
	return pts
}

// Reindex rewrites each segment's Index to its position in the slice.
func (w *Wire) Reindex() {
	for i := range w.Segments {
		w.Segments[i].Index = i
	}
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks that the model is usable for layout: identifiers match
// their map keys, coordinates are finite, segment indices are sequential and
// symbol boxes have non-negative size.
func (m *Model) Validate() error {
	for _, id := range m.WireIDs() {
		w := m.Wires[id]
		if err := errors.ValidateID(id); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidModel, err, "wire %q", id)
		}
		if w.ID != id {
			return errors.New(errors.ErrCodeInvalidModel, "wire key %q does not match wire id %q", id, w.ID)
		}
		if !finite(w.Start.X) || !finite(w.Start.Y) {
			return errors.New(errors.ErrCodeInvalidModel, "wire %q has a non-finite start point", id)
		}
		for i, s := range w.Segments {
			if s.Index != i {
				return errors.New(errors.ErrCodeInvalidModel, "wire %q segment %d has index %d", id, i, s.Index)
			}
			if !finite(s.Length) {
				return errors.New(errors.ErrCodeInvalidModel, "wire %q segment %d has a non-finite length", id, i)
			}
		}
	}
	for _, id := range m.SymbolIDs() {
		s := m.Symbols[id]
		if s.ID != id {
			return errors.New(errors.ErrCodeInvalidModel, "symbol key %q does not match symbol id %q", id, s.ID)
		}
		b := s.Box
		if !finite(b.TopLeft.X) || !finite(b.TopLeft.Y) || !finite(b.W) || !finite(b.H) {
			return errors.New(errors.ErrCodeInvalidModel, "symbol %q has a non-finite bounding box", id)
		}
		if b.W < 0 || b.H < 0 {
			return errors.New(errors.ErrCodeInvalidModel, "symbol %q has a negative bounding box size", id)
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
