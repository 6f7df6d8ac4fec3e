// Package pipeline runs the beautifier with caching for every entry point.
//
// The CLI and the API server both go through a [Runner], so a model that was
// beautified once with a given configuration is served from cache the next
// time, whichever front end asks.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	defer runner.Close()
//
//	result, err := runner.Execute(ctx, m, pipeline.Options{
//	    Config: beautify.DefaultConfig(),
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.LayoutID, result.Stats.CornersRemoved)
//
// Overlap checks are cached the same way:
//
//	report, err := runner.Check(ctx, m, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/wiretidy/pkg/beautify"
	"github.com/matzehuels/wiretidy/pkg/cache"
	"github.com/matzehuels/wiretidy/pkg/circuit"
	"github.com/matzehuels/wiretidy/pkg/errors"
	"github.com/matzehuels/wiretidy/pkg/inspect"
)

// MaxWiresToRoute bounds the wires_to_route list accepted from callers.
const MaxWiresToRoute = 10000

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one run. It is JSON encoded in API requests.
type Options struct {
	// Config holds the geometry settings. Zero fields take defaults.
	Config beautify.Config `json:"config"`

	// WiresToRoute names the wires the caller just routed. It is passed
	// through to the beautifier and is not part of the cache key.
	WiresToRoute []string `json:"wires_to_route,omitempty"`

	// Refresh skips the cache lookup but still stores the new result.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger     `json:"-"`
	Tracer beautify.Tracer `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults fills zero config fields with defaults and checks
// the result. Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Config == (beautify.Config{}) {
		o.Config = beautify.DefaultConfig()
	} else {
		o.Config.SetDefaults()
	}
	if err := o.Config.Validate(); err != nil {
		return err
	}
	if len(o.WiresToRoute) > MaxWiresToRoute {
		return errors.New(errors.ErrCodeInvalidInput, "wires_to_route has %d entries (max %d)", len(o.WiresToRoute), MaxWiresToRoute)
	}
	for _, id := range o.WiresToRoute {
		if err := errors.ValidateID(id); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// LayoutKeyOpts returns cache key options for a layout.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	c := o.Config
	return cache.LayoutKeyOpts{
		MaxSegmentSeparation: c.MaxSegmentSeparation,
		SmallOffset:          c.SmallOffset,
		OverlapTolerance:     c.OverlapTolerance,
		ExtensionTolerance:   c.ExtensionTolerance,
		MaxCornerSize:        c.MaxCornerSize,
		MeetingWeight:        c.MeetingWeight,
		SeparationRounds:     c.SeparationRounds,
	}
}

// CheckKeyOpts returns cache key options for an overlap report.
func (o *Options) CheckKeyOpts() cache.CheckKeyOpts {
	return cache.CheckKeyOpts{
		OverlapTolerance: o.Config.OverlapTolerance,
		SmallOffset:      o.Config.SmallOffset,
	}
}

// =============================================================================
// Results
// =============================================================================

// Result contains the output of a layout run.
type Result struct {
	// Model is the beautified circuit.
	Model *circuit.Model `json:"model"`

	// LayoutID identifies this layout. Cache hits return the ID assigned
	// when the layout was first computed.
	LayoutID uuid.UUID `json:"layout_id"`

	// ModelHash is the content hash of the input model.
	ModelHash string `json:"model_hash"`

	Stats Stats `json:"stats"`

	// CacheHit reports whether the layout came from cache.
	CacheHit bool `json:"cache_hit"`
}

// Stats contains layout statistics and timing.
type Stats struct {
	Wires          int           `json:"wires"`
	Symbols        int           `json:"symbols"`
	SegmentsBefore int           `json:"segments_before"`
	SegmentsAfter  int           `json:"segments_after"`
	LinesMoved     int           `json:"lines_moved"`
	Nudged         int           `json:"nudged"`
	CornersRemoved int           `json:"corners_removed"`
	SpikesRemoved  int           `json:"spikes_removed"`
	Duration       time.Duration `json:"duration_ns"`
}

func statsFrom(s beautify.Stats) Stats {
	return Stats{
		Wires:          s.Wires,
		Symbols:        s.Symbols,
		SegmentsBefore: s.SegmentsBefore,
		SegmentsAfter:  s.SegmentsAfter,
		LinesMoved:     s.LinesMoved,
		Nudged:         s.Nudged,
		CornersRemoved: s.CornersRemoved,
		SpikesRemoved:  s.SpikesRemoved,
	}
}

// CheckResult contains the output of an overlap check.
type CheckResult struct {
	Report    *inspect.Report `json:"report"`
	ModelHash string          `json:"model_hash"`
	CacheHit  bool            `json:"cache_hit"`
}

// cachedLayout is the cache entry for a layout.
type cachedLayout struct {
	LayoutID uuid.UUID      `json:"layout_id"`
	Stats    Stats          `json:"stats"`
	Model    *circuit.Model `json:"model"`
}
