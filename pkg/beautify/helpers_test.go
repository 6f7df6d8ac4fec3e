package beautify

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/matzehuels/wiretidy/pkg/circuit"
)

const geomTol = 1e-9

func wire(id, net string, o circuit.Orientation, start circuit.Point, lengths ...float64) circuit.Wire {
	w := circuit.Wire{
		ID:                 id,
		OutputPort:         net,
		Start:              start,
		InitialOrientation: o,
	}
	for i, l := range lengths {
		w.Segments = append(w.Segments, circuit.Segment{Index: i, Length: l})
	}
	return w
}

func model(wires ...circuit.Wire) *circuit.Model {
	m := circuit.NewModel()
	for _, w := range wires {
		m.AddWire(w)
	}
	return m
}

// segmentP returns the coordinate of segment i across its own axis.
func segmentP(w circuit.Wire, i int) float64 {
	return w.SegmentStart(i).Coord(w.SegmentOrientation(i).Other())
}

func lengths(w circuit.Wire) []float64 {
	out := make([]float64, len(w.Segments))
	for i, s := range w.Segments {
		out[i] = s.Length
	}
	return out
}

func assertLengths(t *testing.T, w circuit.Wire, want []float64) {
	t.Helper()
	got := lengths(w)
	if len(got) != len(want) {
		t.Fatalf("wire %s lengths = %v, want %v", w.ID, got, want)
	}
	for i := range got {
		if !scalar.EqualWithinAbs(got[i], want[i], geomTol) {
			t.Fatalf("wire %s lengths = %v, want %v", w.ID, got, want)
		}
	}
}

func assertEndpoints(t *testing.T, before, after *circuit.Model) {
	t.Helper()
	for id, w := range before.Wires {
		got, ok := after.Wires[id]
		if !ok {
			t.Fatalf("wire %s missing after layout", id)
		}
		if got.Start != w.Start {
			t.Errorf("wire %s start = %v, want %v", id, got.Start, w.Start)
		}
		ge, we := got.End(), w.End()
		if !scalar.EqualWithinAbs(ge.X, we.X, 1e-6) || !scalar.EqualWithinAbs(ge.Y, we.Y, 1e-6) {
			t.Errorf("wire %s end = %v, want %v", id, ge, we)
		}
	}
}

// recorder is a Tracer that keeps every event.
type recorder struct {
	passes   []PassEvent
	rejected []string
}

func (r *recorder) PassDone(ev PassEvent) {
	r.passes = append(r.passes, ev)
}

func (r *recorder) CornerRejected(wireID string, start int, reason string) {
	r.rejected = append(r.rejected, wireID+":"+reason)
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxSegmentSeparation = 10
	return cfg
}
