package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/wiretidy/pkg/beautify"
	"github.com/matzehuels/wiretidy/pkg/circuit"
	"github.com/matzehuels/wiretidy/pkg/pipeline"
)

// geometryFlags are the layout settings that can be overridden per run.
type geometryFlags struct {
	separation    float64
	smallOffset   float64
	overlapTol    float64
	extensionTol  float64
	maxCorner     float64
	meetingWeight float64
	rounds        int
}

func (g *geometryFlags) register(fs *pflag.FlagSet) {
	d := beautify.DefaultConfig()
	fs.Float64Var(&g.separation, "separation", d.MaxSegmentSeparation, "target gap between parallel segments")
	fs.Float64Var(&g.smallOffset, "small-offset", d.SmallOffset, "inward shrink of symbol edges so wires ending on them do not overlap the outline")
	fs.Float64Var(&g.overlapTol, "overlap-tolerance", d.OverlapTolerance, "distance under which parallel segments coincide")
	fs.Float64Var(&g.extensionTol, "extension-tolerance", d.ExtensionTolerance, "clearance required around a segment extended by corner removal")
	fs.Float64Var(&g.maxCorner, "max-corner", d.MaxCornerSize, "longest segment a removable corner may have")
	fs.Float64Var(&g.meetingWeight, "meeting-weight", d.MeetingWeight, "crossing weight for lines turning towards each other (may be negative)")
	fs.IntVar(&g.rounds, "rounds", d.SeparationRounds, "maximum vertical+horizontal separation rounds per pass")
}

// apply copies flags the user set explicitly over cfg.
func (g *geometryFlags) apply(fs *pflag.FlagSet, cfg *beautify.Config) {
	if fs.Changed("separation") {
		cfg.MaxSegmentSeparation = g.separation
	}
	if fs.Changed("small-offset") {
		cfg.SmallOffset = g.smallOffset
	}
	if fs.Changed("overlap-tolerance") {
		cfg.OverlapTolerance = g.overlapTol
	}
	if fs.Changed("extension-tolerance") {
		cfg.ExtensionTolerance = g.extensionTol
	}
	if fs.Changed("max-corner") {
		cfg.MaxCornerSize = g.maxCorner
	}
	if fs.Changed("meeting-weight") {
		cfg.MeetingWeight = g.meetingWeight
	}
	if fs.Changed("rounds") {
		cfg.SeparationRounds = g.rounds
	}
}

type layoutOptions struct {
	output  string
	noCache bool
	refresh bool
	route   []string
	geom    geometryFlags
}

// layoutCommand creates the layout command that beautifies a circuit model.
func (c *CLI) layoutCommand() *cobra.Command {
	var lo layoutOptions

	cmd := &cobra.Command{
		Use:   "layout [model.json]",
		Short: "Beautify the wires of a circuit model",
		Long: `Beautify the wires of a circuit model.

Overlapping parallel segments of different nets are spread apart, segments
of the same net are merged onto one track, small corners are straightened
and zero-length spikes are removed. Wire endpoints never move.

Geometry flags override the settings file. Results are cached locally for
faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), cmd.Flags(), args[0], lo)
		},
	}

	cmd.Flags().StringVarP(&lo.output, "output", "o", "", "output file, - for stdout (default: <input>.tidy.json)")
	cmd.Flags().BoolVar(&lo.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&lo.refresh, "refresh", false, "recompute even if cached")
	cmd.Flags().StringSliceVar(&lo.route, "route", nil, "IDs of the wires just routed")
	lo.geom.register(cmd.Flags())

	return cmd
}

// runLayout loads the model, beautifies it, and writes output.
func (c *CLI) runLayout(ctx context.Context, fs *pflag.FlagSet, input string, lo layoutOptions) error {
	settings, err := c.settings()
	if err != nil {
		return err
	}
	m, err := circuit.ReadModelFile(input)
	if err != nil {
		return fmt.Errorf("load model %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, settings.Cache, lo.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	cfg := settings.Layout
	lo.geom.apply(fs, &cfg)

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, os.Stderr, "Beautifying wires...")
	spinner.Start()

	result, cacheHit, err := runner.LayoutWithCacheInfo(ctx, m, pipeline.Options{
		Config:       cfg,
		WiresToRoute: lo.route,
		Refresh:      lo.refresh,
		Logger:       c.Logger,
		Tracer:       spinnerTracer{s: spinner},
	})
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("beautify %s: %w", input, err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := lo.output
	if outputPath == "-" {
		return circuit.WriteModel(result.Model, os.Stdout)
	}
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".tidy.json"
	}
	if err := circuit.WriteModelFile(result.Model, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}
	prog.done("beautified "+input, "layout_id", result.LayoutID, "cached", cacheHit)

	printSuccess("Layout complete")
	printFile(outputPath)
	fmt.Println(statsLine(result.Stats, cacheHit))
	fmt.Println()
	printNextStep("Check", appName+" check "+outputPath)

	return nil
}
