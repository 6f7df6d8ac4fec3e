package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/wiretidy/pkg/beautify"
	"github.com/matzehuels/wiretidy/pkg/cache"
	"github.com/matzehuels/wiretidy/pkg/circuit"
	"github.com/matzehuels/wiretidy/pkg/errors"
	"github.com/matzehuels/wiretidy/pkg/inspect"
	"github.com/matzehuels/wiretidy/pkg/observability"
)

// Cache key types reported to observability hooks.
const (
	keyTypeLayout = "layout"
	keyTypeCheck  = "check"
)

// Runner encapsulates beautifier execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute beautifies m with caching and logs a summary.
func (r *Runner) Execute(ctx context.Context, m *circuit.Model, opts Options) (*Result, error) {
	result, _, err := r.LayoutWithCacheInfo(ctx, m, opts)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("beautified circuit",
		"wires", result.Stats.Wires,
		"symbols", result.Stats.Symbols,
		"segments", result.Stats.SegmentsAfter,
		"cached", result.CacheHit,
		"duration", result.Stats.Duration)
	return result, nil
}

// LayoutWithCacheInfo beautifies m and reports whether the result came from
// cache. m is never modified.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, m *circuit.Model, opts Options) (*Result, bool, error) {
	start := time.Now()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	modelHash, err := hashModel(m)
	if err != nil {
		return nil, false, err
	}
	key := r.Keyer.LayoutKey(modelHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if cached, ok := r.lookupLayout(ctx, key); ok {
			cached.Stats.Duration = time.Since(start)
			return &Result{
				Model:     cached.Model,
				LayoutID:  cached.LayoutID,
				ModelHash: modelHash,
				Stats:     cached.Stats,
				CacheHit:  true,
			}, true, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, len(m.Wires), len(m.Symbols))

	run, err := beautify.Run(opts.WiresToRoute, m, beautify.Options{
		Config: opts.Config,
		Logger: opts.Logger,
		Tracer: beautify.Tracers(hookTracer{ctx: ctx, hooks: hooks}, opts.Tracer),
	})
	if err != nil {
		hooks.OnLayoutComplete(ctx, 0, time.Since(start), err)
		return nil, false, err
	}

	stats := statsFrom(run.Stats)
	stats.Duration = time.Since(start)
	hooks.OnLayoutComplete(ctx, stats.SegmentsBefore-stats.SegmentsAfter, stats.Duration, nil)

	result := &Result{
		Model:     run.Model,
		LayoutID:  uuid.New(),
		ModelHash: modelHash,
		Stats:     stats,
	}
	if data, err := json.Marshal(cachedLayout{LayoutID: result.LayoutID, Stats: stats, Model: run.Model}); err == nil {
		r.store(ctx, keyTypeLayout, key, data, cache.TTLLayout)
	}
	return result, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, m *circuit.Model, opts Options) (*Result, error) {
	result, _, err := r.LayoutWithCacheInfo(ctx, m, opts)
	return result, err
}

// CheckWithCacheInfo reports overlapping segments in m.
func (r *Runner) CheckWithCacheInfo(ctx context.Context, m *circuit.Model, opts Options) (*CheckResult, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)
	if m == nil {
		return nil, false, errors.New(errors.ErrCodeInvalidInput, "model is required")
	}
	if err := m.Validate(); err != nil {
		return nil, false, err
	}

	modelHash, err := hashModel(m)
	if err != nil {
		return nil, false, err
	}
	key := r.Keyer.CheckKey(modelHash, opts.CheckKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var report inspect.Report
			if err := json.Unmarshal(data, &report); err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeCheck)
				return &CheckResult{Report: &report, ModelHash: modelHash, CacheHit: true}, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeCheck)
	}

	report := inspect.FindOverlaps(m, opts.Config)
	opts.Logger.Debug("checked overlaps", "segments", report.Segments, "overlaps", len(report.Overlaps))
	if data, err := json.Marshal(report); err == nil {
		r.store(ctx, keyTypeCheck, key, data, cache.TTLCheck)
	}
	return &CheckResult{Report: report, ModelHash: modelHash}, false, nil
}

// Check is a convenience wrapper that calls CheckWithCacheInfo and discards the cache hit info.
func (r *Runner) Check(ctx context.Context, m *circuit.Model, opts Options) (*CheckResult, error) {
	result, _, err := r.CheckWithCacheInfo(ctx, m, opts)
	return result, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// lookupLayout returns a cached layout. Cache errors and undecodable
// entries count as misses.
func (r *Runner) lookupLayout(ctx context.Context, key string) (*cachedLayout, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache lookup failed", "error", err)
	}
	if err == nil && hit {
		var cached cachedLayout
		if err := json.Unmarshal(data, &cached); err == nil && cached.Model != nil {
			observability.Cache().OnCacheHit(ctx, keyTypeLayout)
			return &cached, true
		}
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeLayout)
	return nil, false
}

func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key_type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// hashModel returns the content hash of the canonical JSON encoding of m.
func hashModel(m *circuit.Model) (string, error) {
	if m == nil {
		return "", errors.New(errors.ErrCodeInvalidInput, "model is required")
	}
	data, err := circuit.MarshalModel(m)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidModel, err, "encode model")
	}
	return cache.Hash(data), nil
}

// hookTracer forwards beautifier trace events to the layout hooks.
type hookTracer struct {
	ctx   context.Context
	hooks observability.LayoutHooks
}

func (t hookTracer) PassDone(ev beautify.PassEvent) {
	orientation := ""
	if ev.Stage == beautify.StageSeparate || ev.Stage == beautify.StageNudge {
		orientation = ev.Orientation.String()
	}
	t.hooks.OnPass(t.ctx, string(ev.Stage), orientation, ev.Moves)
}

func (t hookTracer) CornerRejected(wireID string, _ int, reason string) {
	t.hooks.OnCornerRejected(t.ctx, wireID, reason)
}
