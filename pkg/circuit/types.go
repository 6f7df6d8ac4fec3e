package circuit

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// =============================================================================
// Orientation and Mode
// =============================================================================

// Orientation is the axis a segment runs along.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

// Other returns the perpendicular orientation.
func (o Orientation) Other() Orientation {
	if o == Horizontal {
		return Vertical
	}
	return Horizontal
}

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// MarshalText encodes the orientation as "horizontal" or "vertical".
func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes "horizontal"/"h" or "vertical"/"v".
func (o *Orientation) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "horizontal", "h":
		*o = Horizontal
	case "vertical", "v":
		*o = Vertical
	default:
		return fmt.Errorf("invalid orientation %q", string(b))
	}
	return nil
}

// Mode records how a segment was routed. Manual segments were placed by the
// user and are never moved by the beautifier.
type Mode int

const (
	Auto Mode = iota
	Manual
)

func (m Mode) String() string {
	if m == Manual {
		return "manual"
	}
	return "auto"
}

// MarshalText encodes the mode as "auto" or "manual".
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes "auto" or "manual". An empty value means Auto.
func (m *Mode) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "auto", "":
		*m = Auto
	case "manual":
		*m = Manual
	default:
		return fmt.Errorf("invalid segment mode %q", string(b))
	}
	return nil
}

// =============================================================================
// Geometry
// =============================================================================

// Point is an absolute sheet coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p shifted by length along orientation o.
func (p Point) Add(o Orientation, length float64) Point {
	if o == Horizontal {
		return Point{X: p.X + length, Y: p.Y}
	}
	return Point{X: p.X, Y: p.Y + length}
}

// Coord returns the coordinate of p along orientation o
// (X for Horizontal, Y for Vertical).
func (p Point) Coord(o Orientation) float64 {
	if o == Horizontal {
		return p.X
	}
	return p.Y
}

// Box is an axis-aligned bounding box. Y grows downwards, as on a sheet.
type Box struct {
	TopLeft Point   `json:"top_left"`
	W       float64 `json:"w"`
	H       float64 `json:"h"`
}

func (b Box) Left() float64   { return b.TopLeft.X }
func (b Box) Right() float64  { return b.TopLeft.X + b.W }
func (b Box) Top() float64    { return b.TopLeft.Y }
func (b Box) Bottom() float64 { return b.TopLeft.Y + b.H }

// =============================================================================
// Symbols
// =============================================================================

// Symbol is a placed component. Only its bounding box matters for layout.
type Symbol struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
	Box   Box    `json:"box"`
}

// =============================================================================
// Model
// =============================================================================

// Model is a snapshot of the sheet: every wire and symbol keyed by ID.
type Model struct {
	Wires   map[string]Wire   `json:"wires"`
	Symbols map[string]Symbol `json:"symbols"`
}

// NewModel returns an empty model with initialized maps.
func NewModel() *Model {
	return &Model{
		Wires:   make(map[string]Wire),
		Symbols: make(map[string]Symbol),
	}
}

// AddWire stores w under its ID, replacing any previous wire.
func (m *Model) AddWire(w Wire) {
	if m.Wires == nil {
		m.Wires = make(map[string]Wire)
	}
	m.Wires[w.ID] = w
}

// AddSymbol stores s under its ID, replacing any previous symbol.
func (m *Model) AddSymbol(s Symbol) {
	if m.Symbols == nil {
		m.Symbols = make(map[string]Symbol)
	}
	m.Symbols[s.ID] = s
}

// WireIDs returns wire IDs in sorted order.
func (m *Model) WireIDs() []string {
	return slices.Sorted(maps.Keys(m.Wires))
}

// SymbolIDs returns symbol IDs in sorted order.
func (m *Model) SymbolIDs() []string {
	return slices.Sorted(maps.Keys(m.Symbols))
}

// SegmentCount returns the total number of segments over all wires.
func (m *Model) SegmentCount() int {
	n := 0
	for _, w := range m.Wires {
		n += len(w.Segments)
	}
	return n
}

// Clone returns a deep copy. Segment slices are not shared.
func (m *Model) Clone() *Model {
	out := &Model{
		Wires:   make(map[string]Wire, len(m.Wires)),
		Symbols: make(map[string]Symbol, len(m.Symbols)),
	}
	for id, w := range m.Wires {
		out.Wires[id] = w.Clone()
	}
	maps.Copy(out.Symbols, m.Symbols)
	return out
}
