package beautify

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wiretidy/pkg/circuit"
	"github.com/matzehuels/wiretidy/pkg/errors"
)

// =============================================================================
// Options & Result
// =============================================================================

// Options configures a layout run. A zero Config means DefaultConfig; a
// partial one has its zero fields filled by [Config.SetDefaults].
type Options struct {
	Config Config

	// Logger receives debug output at pass boundaries.
	Logger *log.Logger

	// Tracer receives structured pass events in addition to the logger.
	Tracer Tracer
}

// Stats counts the work done by a run.
type Stats struct {
	Wires          int
	Symbols        int
	SegmentsBefore int
	SegmentsAfter  int
	LinesMoved     int
	Nudged         int
	CornersRemoved int
	SpikesRemoved  int
}

// Result is the output of [Run].
type Result struct {
	Model *circuit.Model
	Stats Stats
}

func (o *Options) setDefaults() {
	if o.Config == (Config{}) {
		o.Config = DefaultConfig()
	} else {
		o.Config.SetDefaults()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// =============================================================================
// Pipeline
// =============================================================================

// Layout beautifies m and returns the new model. m itself is never
// modified.
//
// wiresToRoute names the wires the caller just routed. It does not restrict
// the work: the whole model is always processed.
func Layout(wiresToRoute []string, m *circuit.Model, opts Options) (*circuit.Model, error) {
	res, err := Run(wiresToRoute, m, opts)
	if err != nil {
		return nil, err
	}
	return res.Model, nil
}

// Run is [Layout] with statistics.
//
// One pass runs vertical then horizontal separation until a round moves
// nothing or cfg.SeparationRounds rounds are done, then nudges coincident
// nub-adjacent lines on both axes, removes corners, and removes spikes.
// Nudging and removals change the lines the next separation sees, so passes
// repeat until one of them changes nothing, at most maxPasses times. The
// result of a settled run is therefore left unchanged by another run.
//
// Any invariant violation aborts the run and returns an error with code
// [errors.ErrCodeInvariant].
func Run(wiresToRoute []string, m *circuit.Model, opts Options) (*Result, error) {
	opts.setDefaults()
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "model is required")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	for _, id := range wiresToRoute {
		if _, ok := m.Wires[id]; !ok {
			logger.Debug("wire to route not in model", "wire", id)
		}
	}
	tr := Tracers(LogTracer{Logger: logger}, opts.Tracer)

	stats := Stats{
		Wires:          len(m.Wires),
		Symbols:        len(m.Symbols),
		SegmentsBefore: m.SegmentCount(),
	}

	cur := m
	for pass := 1; pass <= maxPasses; pass++ {
		next, changed, err := runPass(cur, cfg, tr, &stats)
		if err != nil {
			return nil, err
		}
		cur = next
		if !changed {
			break
		}
	}
	if hasSpike(cur) {
		return nil, errors.Invariant("spike left after spike removal")
	}

	stats.SegmentsAfter = cur.SegmentCount()
	logger.Debug("layout done",
		"wires", stats.Wires,
		"moved", stats.LinesMoved,
		"nudged", stats.Nudged,
		"corners", stats.CornersRemoved,
		"spikes", stats.SpikesRemoved)
	return &Result{Model: cur, Stats: stats}, nil
}

// maxPasses bounds how often the whole stage sequence repeats.
const maxPasses = 4

// runPass runs every stage once and reports whether nudging, corner removal
// or spike removal changed the model.
func runPass(m *circuit.Model, cfg Config, tr Tracer, stats *Stats) (*circuit.Model, bool, error) {
	cur := m
	for round := 1; round <= cfg.SeparationRounds; round++ {
		moved := 0
		for _, o := range []circuit.Orientation{circuit.Vertical, circuit.Horizontal} {
			next, n, err := Separate(o, cur, cfg, round, tr)
			if err != nil {
				return nil, false, errors.Wrap(errors.GetCode(err), err, "separate %s lines (round %d)", o, round)
			}
			cur = next
			moved += n
		}
		stats.LinesMoved += moved
		if moved == 0 {
			break
		}
	}

	nudged := 0
	for _, o := range []circuit.Orientation{circuit.Vertical, circuit.Horizontal} {
		next, n, err := NudgeFixed(o, cur, cfg, tr)
		if err != nil {
			return nil, false, errors.Wrap(errors.GetCode(err), err, "nudge %s lines", o)
		}
		cur = next
		nudged += n
	}
	stats.Nudged += nudged

	next, corners, err := RemoveCorners(cur, cfg, tr)
	if err != nil {
		return nil, false, errors.Wrap(errors.GetCode(err), err, "remove corners")
	}
	cur = next
	stats.CornersRemoved += corners

	before := cur.SegmentCount()
	cur = RemoveSpikes(cur, tr)
	spikes := (before - cur.SegmentCount()) / 2
	stats.SpikesRemoved += spikes

	return cur, nudged+corners+spikes > 0, nil
}
