// Package circuit defines the in-memory schematic model consumed and
// produced by the wire beautifier.
//
// A [Model] holds symbols (as bounding boxes) and wires. A [Wire] is an
// orthogonal polyline stored as a start point, an initial orientation and a
// list of signed segment lengths. Segment orientations alternate starting
// from the wire's initial orientation, so segment i of a wire that starts
// horizontally is horizontal for even i and vertical for odd i. Absolute
// coordinates are obtained by accumulating lengths from the start point.
//
// Segments of length zero are legal. They mark "nub" boundaries: a wire
// leaving a port typically has a short nub, a zero-length segment and then
// the routed body, so that the nub can keep its direction while the body
// bends.
//
// # Serialization
//
// Models round-trip through JSON with [MarshalModel], [ReadModel],
// [ReadModelFile] and [WriteModelFile]. Wire and symbol maps are keyed by
// identifier; the encoder sorts keys so output is deterministic, which the
// layout cache relies on for content hashing.
//
//	m, err := circuit.ReadModelFile("sheet.json")
//	if err != nil {
//	    return err
//	}
//	for _, id := range m.WireIDs() {
//	    w := m.Wires[id]
//	    fmt.Println(id, w.Start, w.End())
//	}
package circuit
