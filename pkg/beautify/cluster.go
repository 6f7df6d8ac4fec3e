package beautify

import (
	"math"
	"slices"

	"github.com/matzehuels/wiretidy/pkg/errors"
)

// Cluster is a group of overlapping Normal lines that are spread together.
// UpperFixed and LowerFixed hold the P of the nearest fixed line met while
// expanding towards larger and smaller P, or nil when the search ran off the
// arena or past the gap threshold.
type Cluster struct {
	Members    []int // arena indices, ascending
	Bound      Interval
	UpperFixed *float64
	LowerFixed *float64
}

// FindClusters partitions the Normal lines of a sorted, linked arena into
// clusters. Every Normal line belongs to exactly one cluster; Linked and
// fixed lines belong to none.
//
// Clusters grow from the lowest ungrouped line: first towards larger P,
// then back down from the furthest member using the enlarged bound, which can
// pick up lines only reachable through the wider bound. A fixed line met on
// the way down above the seed splits the group; the part above it becomes a
// cluster of its own and the search repeats on the remainder.
func FindClusters(lines []Line, cfg Config) ([]Cluster, error) {
	cf := &clusterFinder{
		lines:     lines,
		cfg:       cfg,
		groupable: make([]bool, len(lines)),
	}
	for i := range lines {
		cf.groupable[i] = lines[i].Kind == Normal
	}

	var clusters []Cluster
	for {
		seed := cf.nextSeed()
		if seed < 0 {
			return clusters, nil
		}
		found, err := cf.clustersFrom(seed)
		if err != nil {
			return nil, err
		}
		for _, c := range found {
			for _, m := range c.Members {
				cf.groupable[m] = false
			}
		}
		if cf.groupable[seed] {
			return nil, errors.Invariant("clustering made no progress at line %d", seed)
		}
		clusters = append(clusters, found...)
	}
}

type clusterFinder struct {
	lines     []Line
	cfg       Config
	groupable []bool
}

// expansion is the result of walking the arena in one direction.
type expansion struct {
	members []int
	bound   Interval
	fixed   int // index of the fixed line that stopped the walk, -1 if none
}

func (cf *clusterFinder) nextSeed() int {
	return slices.Index(cf.groupable, true)
}

// expand walks from start in direction dir (+1 or -1), absorbing groupable
// Normal lines that overlap the growing bound. The walk ends at the first
// overlapping fixed line, or once a line is further from the start than
// (members+1) separations.
func (cf *clusterFinder) expand(start, dir int, bound Interval, members []int) expansion {
	ex := expansion{members: members, bound: bound, fixed: -1}
	p0 := cf.lines[start].P
	for i := start + dir; i >= 0 && i < len(cf.lines); i += dir {
		l := &cf.lines[i]
		if math.Abs(l.P-p0) > float64(len(ex.members)+1)*cf.cfg.MaxSegmentSeparation {
			return ex
		}
		switch l.Kind {
		case Linked:
			continue
		case Normal:
			if !cf.groupable[i] || slices.Contains(ex.members, i) || !l.Bound.Overlaps(ex.bound, epsilon) {
				continue
			}
			ex.members = append(ex.members, i)
			ex.bound = ex.bound.Union(l.Bound)
		case Fixed, FixedManual, FixedAdjacentToNub:
			if l.Bound.Overlaps(ex.bound, epsilon) {
				ex.fixed = i
				return ex
			}
		}
	}
	return ex
}

func (cf *clusterFinder) clustersFrom(seed int) ([]Cluster, error) {
	up := cf.expand(seed, +1, cf.lines[seed].Bound, []int{seed})
	members := up.members
	upper := cf.fixedP(up.fixed)

	var out []Cluster
	for range len(cf.lines) + 1 {
		top := slices.Max(members)
		down := cf.expand(top, -1, cf.boundOf(members), []int{top})

		if down.fixed > seed {
			var above, rest []int
			for _, m := range members {
				if m > down.fixed {
					above = append(above, m)
				} else {
					rest = append(rest, m)
				}
			}
			out = append(out, cf.newCluster(union(above, down.members), cf.fixedP(down.fixed), upper))
			if !slices.Contains(rest, seed) {
				return nil, errors.Invariant("cluster seeded at line %d lost its seed", seed)
			}
			members = rest
			upper = cf.fixedP(down.fixed)
			continue
		}

		all := union(members, down.members)
		lower := down.fixed
		if lower < 0 {
			// the walk may have stopped on the gap threshold before passing
			// the lowest member
			probe := cf.expand(all[0], -1, cf.boundOf(all), slices.Clone(all))
			all, lower = union(all, probe.members), probe.fixed
		}
		out = append(out, cf.newCluster(all, cf.fixedP(lower), upper))
		return out, nil
	}
	return nil, errors.Invariant("cluster seeded at line %d did not converge", seed)
}

func (cf *clusterFinder) newCluster(members []int, lower, upper *float64) Cluster {
	return Cluster{
		Members:    members,
		Bound:      cf.boundOf(members),
		UpperFixed: upper,
		LowerFixed: lower,
	}
}

func (cf *clusterFinder) boundOf(members []int) Interval {
	b := cf.lines[members[0]].Bound
	for _, m := range members[1:] {
		b = b.Union(cf.lines[m].Bound)
	}
	return b
}

func (cf *clusterFinder) fixedP(i int) *float64 {
	if i < 0 {
		return nil
	}
	p := cf.lines[i].P
	return &p
}

// union returns the sorted, de-duplicated union of two index sets.
func union(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	slices.Sort(out)
	return slices.Compact(out)
}
