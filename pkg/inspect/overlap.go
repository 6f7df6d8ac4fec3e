package inspect

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/dhconnelly/rtreego"

	"github.com/matzehuels/wiretidy/pkg/beautify"
	"github.com/matzehuels/wiretidy/pkg/circuit"
)

// R-tree fan-out.
const (
	minChildren = 4
	maxChildren = 16
)

// SegmentRef points at one segment of one wire.
type SegmentRef struct {
	WireID  string `json:"wire_id"`
	Segment int    `json:"segment"`
}

// Overlap is a pair of parallel segments from different nets whose
// coordinates are within OverlapTolerance and whose spans share Length
// units.
type Overlap struct {
	A           SegmentRef          `json:"a"`
	B           SegmentRef          `json:"b"`
	Orientation circuit.Orientation `json:"orientation"`
	Distance    float64             `json:"distance"`
	Length      float64             `json:"length"`
}

func (o Overlap) String() string {
	return fmt.Sprintf("%s[%d] / %s[%d] %s, %.3g apart over %.3g",
		o.A.WireID, o.A.Segment, o.B.WireID, o.B.Segment, o.Orientation, o.Distance, o.Length)
}

// Report is the result of FindOverlaps.
type Report struct {
	Wires    int       `json:"wires"`
	Segments int       `json:"segments"`
	Overlaps []Overlap `json:"overlaps"`
}

// Clean reports whether no overlaps were found.
func (r *Report) Clean() bool {
	return len(r.Overlaps) == 0
}

// segment is the R-tree entry for one wire segment.
type segment struct {
	ref    SegmentRef
	net    string
	o      circuit.Orientation
	p      float64 // coordinate across the segment
	lo, hi float64 // span along the segment
	rect   rtreego.Rect
}

func (s *segment) Bounds() rtreego.Rect {
	return s.rect
}

// FindOverlaps returns every overlapping pair in m, sorted by wire ID and
// segment index. Zero-length segments are ignored.
func FindOverlaps(m *circuit.Model, cfg beautify.Config) *Report {
	tol := cfg.OverlapTolerance
	if tol <= 0 {
		tol = beautify.DefaultOverlapTolerance
	}

	report := &Report{Wires: len(m.Wires), Overlaps: []Overlap{}}
	segs := collect(m, tol)
	report.Segments = m.SegmentCount()
	if len(segs) == 0 {
		return report
	}

	spatials := make([]rtreego.Spatial, len(segs))
	for i, s := range segs {
		spatials[i] = s
	}
	tree := rtreego.NewTree(2, minChildren, maxChildren, spatials...)

	for _, s := range segs {
		for _, hit := range tree.SearchIntersect(s.rect) {
			other := hit.(*segment)
			if !before(s.ref, other.ref) {
				continue
			}
			if ov, ok := overlap(s, other, tol); ok {
				report.Overlaps = append(report.Overlaps, ov)
			}
		}
	}

	slices.SortFunc(report.Overlaps, func(a, b Overlap) int {
		return cmp.Or(
			cmp.Compare(a.A.WireID, b.A.WireID),
			cmp.Compare(a.A.Segment, b.A.Segment),
			cmp.Compare(a.B.WireID, b.B.WireID),
			cmp.Compare(a.B.Segment, b.B.Segment),
		)
	})
	return report
}

// collect builds R-tree entries padded by tol on every side, so that
// entries closer than tol intersect.
func collect(m *circuit.Model, tol float64) []*segment {
	var out []*segment
	for _, id := range m.WireIDs() {
		w := m.Wires[id]
		for i, sg := range w.Segments {
			if sg.Length == 0 {
				continue
			}
			o := w.SegmentOrientation(i)
			start, end := w.SegmentStart(i), w.SegmentEnd(i)
			lo, hi := start.Coord(o), end.Coord(o)
			if lo > hi {
				lo, hi = hi, lo
			}
			s := &segment{
				ref: SegmentRef{WireID: id, Segment: i},
				net: w.OutputPort,
				o:   o,
				p:   start.Coord(o.Other()),
				lo:  lo,
				hi:  hi,
			}
			s.rect = padded(s, tol)
			out = append(out, s)
		}
	}
	return out
}

func padded(s *segment, tol float64) rtreego.Rect {
	var x, y, w, h float64
	if s.o == circuit.Horizontal {
		x, y, w, h = s.lo, s.p, s.hi-s.lo, 0
	} else {
		x, y, w, h = s.p, s.lo, 0, s.hi-s.lo
	}
	r, err := rtreego.NewRect(rtreego.Point{x - tol, y - tol}, []float64{w + 2*tol, h + 2*tol})
	if err != nil {
		// Only reachable for non-positive tol, which FindOverlaps rules out.
		panic(err)
	}
	return r
}

func before(a, b SegmentRef) bool {
	return cmp.Or(cmp.Compare(a.WireID, b.WireID), cmp.Compare(a.Segment, b.Segment)) < 0
}

// overlap applies the exact test to an R-tree candidate pair.
func overlap(a, b *segment, tol float64) (Overlap, bool) {
	if a.o != b.o || a.ref.WireID == b.ref.WireID {
		return Overlap{}, false
	}
	if a.net != "" && a.net == b.net {
		return Overlap{}, false
	}
	dist := math.Abs(a.p - b.p)
	if dist >= tol {
		return Overlap{}, false
	}
	shared := math.Min(a.hi, b.hi) - math.Max(a.lo, b.lo)
	if shared <= tol {
		return Overlap{}, false
	}
	return Overlap{A: a.ref, B: b.ref, Orientation: a.o, Distance: dist, Length: shared}, true
}
