package beautify

import (
	"math"
	"slices"

	"github.com/matzehuels/wiretidy/pkg/circuit"
)

// Rejection reasons reported to [Tracer.CornerRejected].
const (
	rejectZeroOuter = "outer segment has zero length"
	rejectManual    = "manually routed segment"
	rejectTooLarge  = "corner larger than max_corner_size"
	rejectReversal  = "outer segment would reverse"
	rejectOverlap   = "extension overlaps a parallel line"
	rejectCrossing  = "extension crosses a fixed line"
)

// minCornerSegments is the shortest wire that can hold a corner window
// away from both nubs.
const minCornerSegments = 9

// WireCorner is an accepted corner: segments Start+1 and Start+2 are
// removed, DeltaFirst is added to segment Start and DeltaLast to segment
// Start+3. Orientation is that of segment Start.
type WireCorner struct {
	WireID      string
	Start       int
	Orientation circuit.Orientation
	DeltaFirst  float64
	DeltaLast   float64
}

// extension is the stretch an outer segment gains when a corner is removed.
type extension struct {
	Orientation circuit.Orientation
	P           float64
	Bound       Interval
}

// RemoveCorners removes at most one short double bend from every wire with
// at least nine segments and returns the new model with the number of
// corners removed.
//
// A window of four segments starting at i in [1, n-5] is a candidate when
// both outer segments are non-zero, no segment is manually routed, both
// middle segments are within cfg.MaxCornerSize and neither outer segment
// would reverse. The two stretches the outer segments grow by must not
// overlap parallel lines of other nets and must not cross fixed lines. The
// first candidate that passes wins; line info is rebuilt after each
// accepted corner so later wires see the new geometry.
func RemoveCorners(m *circuit.Model, cfg Config, tr Tracer) (*circuit.Model, int, error) {
	out := m.Clone()
	info := BuildLineInfo(out, cfg)

	removed := 0
	for _, id := range out.WireIDs() {
		w := out.Wires[id]
		c, ok := findCorner(w, info, cfg, tr)
		if !ok {
			continue
		}
		applyCorner(&w, c)
		out.Wires[id] = w
		info = BuildLineInfo(out, cfg)
		removed++
	}

	tr.PassDone(PassEvent{Stage: StageCorners, Moves: removed})
	return out, removed, nil
}

func findCorner(w circuit.Wire, info LineInfo, cfg Config, tr Tracer) (WireCorner, bool) {
	n := len(w.Segments)
	if n < minCornerSegments {
		return WireCorner{}, false
	}
	for i := 1; i <= n-5; i++ {
		if reason := cornerReject(w, i, cfg); reason != "" {
			tr.CornerRejected(w.ID, i, reason)
			continue
		}
		c := WireCorner{
			WireID:      w.ID,
			Start:       i,
			Orientation: w.SegmentOrientation(i),
			DeltaFirst:  w.Segments[i+2].Length,
			DeltaLast:   w.Segments[i+1].Length,
		}
		exts := c.extensions(w)
		if !checkExtensionNoOverlap(exts, w, info, cfg) {
			tr.CornerRejected(w.ID, i, rejectOverlap)
			continue
		}
		if !checkExtensionNoCrossings(exts, w, info, cfg) {
			tr.CornerRejected(w.ID, i, rejectCrossing)
			continue
		}
		return c, true
	}
	return WireCorner{}, false
}

// cornerReject returns why the window at i cannot be a corner, or "" if the
// geometric checks should run.
func cornerReject(w circuit.Wire, i int, cfg Config) string {
	win := w.Segments[i : i+4]
	if win[0].Length == 0 || win[3].Length == 0 {
		return rejectZeroOuter
	}
	for _, s := range win {
		if s.Mode == circuit.Manual {
			return rejectManual
		}
	}
	if math.Abs(win[1].Length) > cfg.MaxCornerSize || math.Abs(win[2].Length) > cfg.MaxCornerSize {
		return rejectTooLarge
	}
	if sign(win[0].Length+win[2].Length) != sign(win[0].Length) ||
		sign(win[3].Length+win[1].Length) != sign(win[3].Length) {
		return rejectReversal
	}
	return ""
}

// extensions returns the stretches gained by the outer segments. An outer
// segment that shrinks gains nothing.
func (c WireCorner) extensions(w circuit.Wire) []extension {
	pts := w.Points()
	i, o := c.Start, c.Orientation
	var exts []extension
	if sign(c.DeltaFirst) == sign(w.Segments[i].Length) {
		from := pts[i+1].Coord(o)
		exts = append(exts, extension{
			Orientation: o,
			P:           pts[i].Coord(o.Other()),
			Bound:       NewInterval(from, from+c.DeltaFirst),
		})
	}
	if sign(c.DeltaLast) == sign(w.Segments[i+3].Length) {
		from := pts[i+1].Coord(o.Other())
		exts = append(exts, extension{
			Orientation: o.Other(),
			P:           pts[i+3].Coord(o),
			Bound:       NewInterval(from, from+c.DeltaLast),
		})
	}
	return exts
}

// checkExtensionNoOverlap reports whether no extension runs along a parallel
// line of another net or a symbol edge within cfg.ExtensionTolerance.
func checkExtensionNoOverlap(exts []extension, w circuit.Wire, info LineInfo, cfg Config) bool {
	tol := cfg.ExtensionTolerance
	for _, ext := range exts {
		lines := info.Lines(ext.Orientation)
		for j := lowerBound(lines, ext.P-tol); j < len(lines) && lines[j].P <= ext.P+tol; j++ {
			l := &lines[j]
			if l.WireID == w.ID || (l.NetKey != "" && l.NetKey == w.OutputPort) {
				continue
			}
			if l.Bound.Overlaps(ext.Bound, epsilon) {
				return false
			}
		}
	}
	return true
}

// checkExtensionNoCrossings reports whether no extension crosses a fixed
// line of the opposite orientation within cfg.ExtensionTolerance.
func checkExtensionNoCrossings(exts []extension, w circuit.Wire, info LineInfo, cfg Config) bool {
	tol := cfg.ExtensionTolerance
	for _, ext := range exts {
		lines := info.Lines(ext.Orientation.Other())
		for j := lowerBound(lines, ext.Bound.Min-tol); j < len(lines) && lines[j].P <= ext.Bound.Max+tol; j++ {
			l := &lines[j]
			if !l.Kind.IsFixed() || l.WireID == w.ID {
				continue
			}
			if l.Bound.Contains(ext.P, tol) {
				return false
			}
		}
	}
	return true
}

func applyCorner(w *circuit.Wire, c WireCorner) {
	w.Segments[c.Start].Length += c.DeltaFirst
	w.Segments[c.Start+3].Length += c.DeltaLast
	w.Segments = slices.Delete(w.Segments, c.Start+1, c.Start+3)
	w.Reindex()
}
