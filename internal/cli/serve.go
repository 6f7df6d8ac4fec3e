package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wiretidy/internal/server"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

Routes: GET /healthz, POST /v1/layout, POST /v1/check. With a Redis address
in the settings file, several servers share one cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from settings, else :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	settings, err := c.settings()
	if err != nil {
		return err
	}
	if addr != "" {
		settings.Server.Addr = addr
	}

	runner, err := c.newRunner(ctx, settings.Cache, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	printInfo("Serving on %s", settings.Server.Addr)
	return server.New(runner, settings.Server, settings.Layout, c.Logger).ListenAndServe(ctx)
}
