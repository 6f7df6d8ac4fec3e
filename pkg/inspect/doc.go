// Package inspect reports geometry problems left in a circuit model.
//
// [FindOverlaps] indexes every wire segment in an R-tree and reports
// pairs of parallel segments from different nets that run on top of each
// other. It is the check behind "wiretidy check" and POST /v1/check:
//
//	report := inspect.FindOverlaps(m, beautify.DefaultConfig())
//	for _, o := range report.Overlaps {
//	    fmt.Println(o)
//	}
//
// Segments of the same net may coincide freely; they carry the same signal.
package inspect
