package beautify

import (
	"slices"

	"github.com/matzehuels/wiretidy/pkg/circuit"
)

// RemoveSpikes folds wires that double back on themselves. A spike is a
// segment i followed by a zero-length segment and a segment i+2 running the
// opposite way; the three collapse into one segment of length
// len(i)+len(i+2). The merged segment is Manual if either part was. Each
// wire is rescanned until no spike is left, which terminates since every
// fold removes two segments.
func RemoveSpikes(m *circuit.Model, tr Tracer) *circuit.Model {
	out := m.Clone()
	removed := 0
	for _, id := range out.WireIDs() {
		w := out.Wires[id]
		n := removeWireSpikes(&w)
		if n == 0 {
			continue
		}
		out.Wires[id] = w
		removed += n
	}
	tr.PassDone(PassEvent{Stage: StageSpikes, Moves: removed})
	return out
}

func removeWireSpikes(w *circuit.Wire) int {
	removed := 0
	for {
		i := findSpike(w.Segments)
		if i < 0 {
			break
		}
		merged := w.Segments[i]
		merged.Length += w.Segments[i+2].Length
		if w.Segments[i+2].Mode == circuit.Manual {
			merged.Mode = circuit.Manual
		}
		w.Segments[i] = merged
		w.Segments = slices.Delete(w.Segments, i+1, i+3)
		removed++
	}
	if removed > 0 {
		w.Reindex()
	}
	return removed
}

// findSpike returns the index of the first segment starting a spike, or -1.
func findSpike(segs []circuit.Segment) int {
	for i := 0; i+2 < len(segs); i++ {
		a, gap, b := segs[i].Length, segs[i+1].Length, segs[i+2].Length
		if gap == 0 && a != 0 && b != 0 && sign(a) != sign(b) {
			return i
		}
	}
	return -1
}

// hasSpike reports whether any wire of m still contains a spike.
func hasSpike(m *circuit.Model) bool {
	for _, w := range m.Wires {
		if findSpike(w.Segments) >= 0 {
			return true
		}
	}
	return false
}
