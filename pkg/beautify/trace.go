package beautify

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/wiretidy/pkg/circuit"
)

// Stage names a step of the layout pipeline.
type Stage string

const (
	StageSeparate Stage = "separate"
	StageNudge    Stage = "nudge"
	StageCorners  Stage = "corners"
	StageSpikes   Stage = "spikes"
)

// PassEvent summarises one completed pass.
type PassEvent struct {
	Stage       Stage
	Orientation circuit.Orientation // meaningful for separate and nudge
	Round       int
	Lines       int
	Clusters    int
	Moves       int // lines moved, corners or spikes removed
}

// Tracer receives diagnostics at pass boundaries and for rejected corner
// candidates. It is never needed for correctness.
type Tracer interface {
	PassDone(ev PassEvent)
	CornerRejected(wireID string, start int, reason string)
}

// NopTracer discards everything.
type NopTracer struct{}

func (NopTracer) PassDone(PassEvent)                 {}
func (NopTracer) CornerRejected(string, int, string) {}

// LogTracer writes diagnostics to a logger at debug level.
type LogTracer struct {
	Logger *log.Logger
}

// PassDone logs the pass summary.
func (t LogTracer) PassDone(ev PassEvent) {
	switch ev.Stage {
	case StageSeparate, StageNudge:
		t.Logger.Debug("pass done",
			"stage", ev.Stage,
			"orientation", ev.Orientation,
			"round", ev.Round,
			"lines", ev.Lines,
			"clusters", ev.Clusters,
			"moves", ev.Moves)
	default:
		t.Logger.Debug("pass done", "stage", ev.Stage, "removed", ev.Moves)
	}
}

// CornerRejected logs a rejected corner candidate.
func (t LogTracer) CornerRejected(wireID string, start int, reason string) {
	t.Logger.Debug("corner rejected", "wire", wireID, "start", start, "reason", reason)
}

// multiTracer fans events out to several tracers.
type multiTracer []Tracer

func (mt multiTracer) PassDone(ev PassEvent) {
	for _, t := range mt {
		t.PassDone(ev)
	}
}

func (mt multiTracer) CornerRejected(wireID string, start int, reason string) {
	for _, t := range mt {
		t.CornerRejected(wireID, start, reason)
	}
}

// Tracers combines tracers into one. Nil entries are dropped.
func Tracers(ts ...Tracer) Tracer {
	var mt multiTracer
	for _, t := range ts {
		if t != nil {
			mt = append(mt, t)
		}
	}
	switch len(mt) {
	case 0:
		return NopTracer{}
	case 1:
		return mt[0]
	}
	return mt
}
