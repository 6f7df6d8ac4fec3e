// Package cli implements the wiretidy command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/wiretidy/internal/config"
	"github.com/matzehuels/wiretidy/pkg/buildinfo"
	"github.com/matzehuels/wiretidy/pkg/cache"
	"github.com/matzehuels/wiretidy/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "wiretidy"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is set by the persistent --config flag.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "wiretidy beautifies schematic wire layouts",
		Long:         `wiretidy spreads overlapping wire segments apart, removes small corners and spikes, and reports the overlaps that remain in a schematic.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "settings file (.toml, .yaml); default: "+defaultConfigHint())

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Settings
// =============================================================================

// settings loads the --config file, or the discovered default file, over
// the built-in defaults.
func (c *CLI) settings() (*config.File, error) {
	path := c.configPath
	if path == "" {
		path = config.Discover()
	}
	f, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if path != "" {
		c.Logger.Debug("loaded settings", "path", path)
	}
	return f, nil
}

func defaultConfigHint() string {
	dir, err := config.Dir()
	if err != nil {
		return "none"
	}
	return filepath.Join(dir, "config.toml")
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, settings config.Cache, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, settings, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, newKeyer(settings), c.Logger), nil
}

// newCache picks the backend: none with --no-cache, Redis when an address
// is configured, files otherwise. An unreachable Redis falls back to files.
func (c *CLI) newCache(ctx context.Context, settings config.Cache, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if settings.Redis != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     settings.Redis,
			Password: settings.RedisPassword,
			DB:       settings.RedisDB,
		})
		if err == nil {
			return rc, nil
		}
		c.Logger.Warn("redis unavailable, using file cache", "addr", settings.Redis, "error", err)
	}
	dir := settings.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

func newKeyer(settings config.Cache) cache.Keyer {
	if settings.Prefix != "" {
		return cache.NewScopedKeyer(nil, settings.Prefix)
	}
	return cache.NewDefaultKeyer()
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/wiretidy/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
