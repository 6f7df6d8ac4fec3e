// Package beautify tidies the orthogonal wires of a schematic after an edit.
//
// Given a [circuit.Model], [Layout] rewrites segment lengths so that
// overlapping parallel segments of different nets spread apart, the order in
// which parallel segments are stacked causes as few visual crossings as
// possible, segments of the same net may share a track, and small redundant
// corners and spikes disappear. Wire topology is never changed beyond
// removing corners and spikes, symbols never move, and wire endpoints are
// preserved exactly.
//
// # Pipeline
//
// For each axis the separation pass works on projections of segments
// ("lines") onto that axis:
//
//  1. [BuildLines] projects interior wire segments and symbol box edges into
//     a sorted arena of [Line] values.
//  2. [LinkSameNet] merges coincident lines of the same net so they move as
//     one.
//  3. [FindClusters] groups overlapping movable lines into clusters bounded
//     by fixed lines.
//  4. [OrderCluster] sorts each cluster to minimise estimated crossings.
//  5. [SpreadCluster] assigns new coordinates.
//  6. [ApplyMoves] writes the coordinates back into the wires.
//
// Separation runs vertical then horizontal, twice by default, because
// separating one axis can create overlaps on the other. [NudgeFixed] then
// separates nub-adjacent segments that clustering leaves alone, and finally
// [RemoveCorners] and [RemoveSpikes] clean up wire shapes.
//
// # Line kinds
//
// Every line has a [Kind]. Normal lines are movable. Linked lines follow
// their representative. The three fixed kinds (symbol edges, manually routed
// segments, and segments continuing a port nub) bound clusters and never move
// during separation.
//
// # Errors
//
// Expected conditions (a corner that is not safe to remove, a wire too short
// for a corner) are skipped and reported to the [Tracer]. Broken invariants
// abort the call with an error whose code is
// [errors.ErrCodeInvariant]; the input model is never modified, so callers
// keep their previous state.
//
// # Example
//
//	out, err := beautify.Layout(nil, model, beautify.Options{
//	    Config: beautify.DefaultConfig(),
//	    Logger: logger,
//	})
//	if err != nil {
//	    return err
//	}
package beautify
