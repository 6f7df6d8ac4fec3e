package beautify

import (
	"github.com/matzehuels/wiretidy/pkg/circuit"
)

// Separate runs one separation pass on orientation o and returns the
// updated model together with the number of lines moved.
//
// The pass builds the arena for o, links same-net lines, finds clusters,
// orders and spreads each one, and patches all moves into a copy of m.
// Clusters are computed on the arena as it was at the start of the pass, so
// their moves are independent. A cluster whose members already sit where
// spreading them in their current order would put them is left alone.
func Separate(o circuit.Orientation, m *circuit.Model, cfg Config, round int, tr Tracer) (*circuit.Model, int, error) {
	lines := BuildLines(o, m, cfg)
	LinkSameNet(lines, cfg)

	clusters, err := FindClusters(lines, cfg)
	if err != nil {
		return nil, 0, err
	}

	var moves []Move
	for _, c := range clusters {
		if len(SpreadCluster(c, c.Members, lines, cfg)) == 0 {
			continue
		}
		order := OrderCluster(c, lines, m, cfg)
		moves = append(moves, SpreadCluster(c, order, lines, cfg)...)
	}

	out, err := ApplyMoves(m, lines, moves)
	if err != nil {
		return nil, 0, err
	}
	tr.PassDone(PassEvent{
		Stage:       StageSeparate,
		Orientation: o,
		Round:       round,
		Lines:       len(lines),
		Clusters:    len(clusters),
		Moves:       len(moves),
	})
	return out, len(moves), nil
}
