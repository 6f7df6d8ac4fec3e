package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/wiretidy/pkg/circuit"
	"github.com/matzehuels/wiretidy/pkg/errors"
	"github.com/matzehuels/wiretidy/pkg/pipeline"
)

type checkOptions struct {
	jsonOut bool
	strict  bool
	noCache bool
	geom    geometryFlags
}

// checkCommand creates the check command that reports overlapping segments.
func (c *CLI) checkCommand() *cobra.Command {
	var co checkOptions

	cmd := &cobra.Command{
		Use:   "check [model.json]",
		Short: "Report overlapping parallel segments of different nets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd.Context(), cmd.Flags(), args[0], co)
		},
	}

	cmd.Flags().BoolVar(&co.jsonOut, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&co.strict, "strict", false, "exit with an error when overlaps are found")
	cmd.Flags().BoolVar(&co.noCache, "no-cache", false, "disable caching")
	co.geom.register(cmd.Flags())

	return cmd
}

// errOverlaps is returned by check --strict when the model is not clean.
var errOverlaps = errors.New(errors.ErrCodeInvalidModel, "model has overlapping segments")

func (c *CLI) runCheck(ctx context.Context, fs *pflag.FlagSet, input string, co checkOptions) error {
	settings, err := c.settings()
	if err != nil {
		return err
	}
	m, err := circuit.ReadModelFile(input)
	if err != nil {
		return fmt.Errorf("load model %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, settings.Cache, co.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	cfg := settings.Layout
	co.geom.apply(fs, &cfg)

	result, err := runner.Check(ctx, m, pipeline.Options{Config: cfg, Logger: c.Logger})
	if err != nil {
		return fmt.Errorf("check %s: %w", input, err)
	}
	report := result.Report

	if co.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else if report.Clean() {
		printSuccess("No overlaps")
		printDetail("%d wires, %d segments", report.Wires, report.Segments)
	} else {
		printWarning("%d overlapping segment pairs", len(report.Overlaps))
		fmt.Println(overlapTable(report))
		printNextStep("Fix", appName+" layout "+input)
	}

	if co.strict && !report.Clean() {
		return errOverlaps
	}
	return nil
}
