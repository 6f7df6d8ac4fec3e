package beautify

import (
	"math"
	"sort"

	"github.com/matzehuels/wiretidy/pkg/circuit"
)

// =============================================================================
// Interval
// =============================================================================

// Interval is a closed range on one axis. Min <= Max always holds for values
// built with [NewInterval].
type Interval struct {
	Min float64
	Max float64
}

// NewInterval returns the interval spanning a and b in either order.
func NewInterval(a, b float64) Interval {
	if a > b {
		a, b = b, a
	}
	return Interval{Min: a, Max: b}
}

// Overlaps reports whether the two intervals share more than eps of length.
// Intervals that merely touch do not overlap.
func (i Interval) Overlaps(o Interval, eps float64) bool {
	return math.Min(i.Max, o.Max)-math.Max(i.Min, o.Min) > eps
}

// Union returns the smallest interval covering both.
func (i Interval) Union(o Interval) Interval {
	return Interval{Min: math.Min(i.Min, o.Min), Max: math.Max(i.Max, o.Max)}
}

// Contains reports whether v lies within the interval widened by tol.
func (i Interval) Contains(v, tol float64) bool {
	return v >= i.Min-tol && v <= i.Max+tol
}

// Length returns Max - Min.
func (i Interval) Length() float64 {
	return i.Max - i.Min
}

// =============================================================================
// Kind
// =============================================================================

// Kind classifies how a line may move.
type Kind int

const (
	// Normal lines are freely movable.
	Normal Kind = iota
	// Linked lines share a track with a Normal representative of the same
	// net and receive its coordinate.
	Linked
	// FixedAdjacentToNub lines continue a port nub through a zero-length
	// segment; moving them would bend the nub.
	FixedAdjacentToNub
	// FixedManual lines come from manually routed segments.
	FixedManual
	// Fixed lines are symbol box edges.
	Fixed
)

// IsFixed reports whether the kind never moves during separation.
func (k Kind) IsFixed() bool {
	switch k {
	case Fixed, FixedManual, FixedAdjacentToNub:
		return true
	case Normal, Linked:
		return false
	}
	return false
}

func (k Kind) String() string {
	switch k {
	case Normal:
		return "normal"
	case Linked:
		return "linked"
	case FixedAdjacentToNub:
		return "fixed-nub"
	case FixedManual:
		return "fixed-manual"
	case Fixed:
		return "fixed"
	}
	return "unknown"
}

// =============================================================================
// Line
// =============================================================================

// SegmentRef locates a wire segment.
type SegmentRef struct {
	WireID string
	Index  int
}

// Line is the projection of a wire segment or symbol edge onto one axis.
//
// P is the coordinate on the perpendicular axis (Y for horizontal lines, X
// for vertical ones) and Bound the extent along the line's own axis. Lines
// live in a per-pass arena sorted by P; ID is the line's index in that arena
// and SameNetLinks holds arena indices of the peers that follow this line.
type Line struct {
	ID           int
	P            float64
	Bound        Interval
	Orientation  circuit.Orientation
	Kind         Kind
	Source       *SegmentRef // nil for symbol edges
	SameNetLinks []int
	NetKey       string
	WireID       string // empty for symbol edges
}

// LineInfo holds both sorted arenas of one pass.
type LineInfo struct {
	Horizontal []Line
	Vertical   []Line
}

// Lines returns the arena for orientation o.
func (li LineInfo) Lines(o circuit.Orientation) []Line {
	if o == circuit.Horizontal {
		return li.Horizontal
	}
	return li.Vertical
}

// lowerBound returns the first index whose P is >= p. lines must be sorted
// by P.
func lowerBound(lines []Line, p float64) int {
	return sort.Search(len(lines), func(i int) bool {
		return lines[i].P >= p
	})
}
