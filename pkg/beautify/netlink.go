package beautify

import (
	"maps"
	"slices"

	"gonum.org/v1/gonum/floats/scalar"
)

// LinkSameNet merges coincident lines of the same net in place.
//
// Within each net, for every pair of Normal lines from different wires whose
// P values are within cfg.OverlapTolerance and whose bounds overlap, the
// later line is demoted to Linked, its index is appended to the earlier
// line's SameNetLinks and the earlier line's bound grows to cover both. Each
// coincident group therefore ends up with one Normal representative that
// clustering sees, and the patcher later gives every peer the
// representative's new coordinate.
//
// Links are always rebuilt from scratch: any SameNetLinks already present are
// cleared first.
func LinkSameNet(lines []Line, cfg Config) {
	nets := make(map[string][]int)
	for i := range lines {
		lines[i].SameNetLinks = nil
		l := &lines[i]
		if l.Kind != Normal || l.NetKey == "" {
			continue
		}
		nets[l.NetKey] = append(nets[l.NetKey], i)
	}

	for _, key := range slices.Sorted(maps.Keys(nets)) {
		group := nets[key]
		for a, i := range group {
			rep := &lines[i]
			if rep.Kind != Normal {
				continue
			}
			for _, j := range group[a+1:] {
				peer := &lines[j]
				if peer.Kind != Normal || peer.WireID == rep.WireID {
					continue
				}
				if !scalar.EqualWithinAbs(rep.P, peer.P, cfg.OverlapTolerance) {
					continue
				}
				if !rep.Bound.Overlaps(peer.Bound, epsilon) {
					continue
				}
				rep.Bound = rep.Bound.Union(peer.Bound)
				rep.SameNetLinks = append(rep.SameNetLinks, j)
				peer.Kind = Linked
			}
		}
	}
}
