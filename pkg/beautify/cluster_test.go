package beautify

import (
	"slices"
	"testing"
)

func arena(lines ...Line) []Line {
	for i := range lines {
		lines[i].ID = i
	}
	return lines
}

func normal(p, lo, hi float64) Line {
	return Line{P: p, Bound: NewInterval(lo, hi), Kind: Normal}
}

func fixed(p, lo, hi float64) Line {
	return Line{P: p, Bound: NewInterval(lo, hi), Kind: Fixed}
}

func pval(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func TestFindClusters(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name    string
		lines   []Line
		members [][]int
		lower   []any
		upper   []any
	}{
		{
			name:    "single group",
			lines:   arena(normal(100, 10, 50), normal(100, 10, 50)),
			members: [][]int{{0, 1}},
			lower:   []any{nil},
			upper:   []any{nil},
		},
		{
			name: "fixed line between groups",
			lines: arena(
				normal(0, 0, 10),
				normal(5, 0, 10),
				fixed(8, 0, 10),
				normal(12, 0, 10),
			),
			members: [][]int{{0, 1}, {3}},
			lower:   []any{nil, 8.0},
			upper:   []any{8.0, nil},
		},
		{
			name: "fixed line found through enlarged bound",
			lines: arena(
				normal(0, 0, 10),
				fixed(2, 20, 30),
				normal(4, 5, 25),
			),
			members: [][]int{{2}, {0}},
			lower:   []any{2.0, nil},
			upper:   []any{nil, 2.0},
		},
		{
			name: "gap splits groups",
			lines: arena(
				normal(0, 0, 10),
				normal(50, 0, 10),
			),
			members: [][]int{{0}, {1}},
			lower:   []any{nil, nil},
			upper:   []any{nil, nil},
		},
		{
			name: "linked and fixed lines are skipped",
			lines: arena(
				normal(0, 0, 10),
				Line{P: 1, Bound: NewInterval(0, 10), Kind: Linked},
				normal(5, 0, 10),
				Line{P: 8, Bound: NewInterval(50, 60), Kind: FixedManual},
			),
			members: [][]int{{0, 2}},
			lower:   []any{nil},
			upper:   []any{nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clusters, err := FindClusters(tt.lines, cfg)
			if err != nil {
				t.Fatalf("FindClusters: %v", err)
			}
			if len(clusters) != len(tt.members) {
				t.Fatalf("got %d clusters, want %d: %+v", len(clusters), len(tt.members), clusters)
			}
			for i, c := range clusters {
				if !slices.Equal(c.Members, tt.members[i]) {
					t.Errorf("cluster %d members = %v, want %v", i, c.Members, tt.members[i])
				}
				if got := pval(c.LowerFixed); got != tt.lower[i] {
					t.Errorf("cluster %d lower = %v, want %v", i, got, tt.lower[i])
				}
				if got := pval(c.UpperFixed); got != tt.upper[i] {
					t.Errorf("cluster %d upper = %v, want %v", i, got, tt.upper[i])
				}
			}
		})
	}
}

func TestFindClustersPartition(t *testing.T) {
	lines := arena(
		normal(0, 0, 40),
		normal(3, 30, 60),
		fixed(6, 0, 100),
		normal(9, 10, 20),
		normal(9, 15, 25),
		Line{P: 11, Bound: NewInterval(0, 100), Kind: Linked},
		normal(14, 90, 95),
		normal(60, 0, 100),
	)
	clusters, err := FindClusters(lines, testConfig())
	if err != nil {
		t.Fatalf("FindClusters: %v", err)
	}

	seen := make(map[int]int)
	for _, c := range clusters {
		for _, m := range c.Members {
			seen[m]++
		}
	}
	for i, l := range lines {
		want := 0
		if l.Kind == Normal {
			want = 1
		}
		if seen[i] != want {
			t.Errorf("line %d (%s) appears in %d clusters, want %d", i, l.Kind, seen[i], want)
		}
	}
}
