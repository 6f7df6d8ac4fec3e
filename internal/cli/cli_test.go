package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/matzehuels/wiretidy/internal/config"
	"github.com/matzehuels/wiretidy/pkg/beautify"
	"github.com/matzehuels/wiretidy/pkg/cache"
	"github.com/matzehuels/wiretidy/pkg/circuit"
	"github.com/matzehuels/wiretidy/pkg/errors"
)

// isolate points every XDG directory at a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	return dir
}

// run executes the command tree with args and returns what commands wrote
// through cmd.OutOrStdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeModel(t *testing.T, dir string) string {
	t.Helper()
	m := circuit.NewModel()
	for _, w := range []circuit.Wire{
		{ID: "a", OutputPort: "p1", Start: circuit.Point{X: 60, Y: 10}},
		{ID: "b", OutputPort: "p2", Start: circuit.Point{X: 140, Y: 10}},
	} {
		sign := 1.0
		if w.ID == "b" {
			sign = -1
		}
		w.Segments = []circuit.Segment{
			{Index: 0, Length: 40 * sign},
			{Index: 1, Length: 40},
			{Index: 2, Length: 40 * sign},
		}
		m.AddWire(w)
	}
	path := filepath.Join(dir, "pair.json")
	if err := circuit.WriteModelFile(m, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}

	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	if dir, _ := cacheDir(); dir != filepath.Join("/tmp/xdg", appName) {
		t.Errorf("cacheDir() with XDG = %q", dir)
	}
}

func TestNewCache(t *testing.T) {
	isolate(t)
	c := New(io.Discard, LogInfo)
	ctx := context.Background()

	tests := []struct {
		name     string
		settings config.Cache
		noCache  bool
		check    func(t *testing.T, store cache.Cache)
	}{
		{"no cache", config.Cache{}, true, func(t *testing.T, store cache.Cache) {
			if _, ok := store.(*cache.NullCache); !ok {
				t.Errorf("store = %T, want NullCache", store)
			}
		}},
		{"configured dir", config.Cache{Dir: filepath.Join(t.TempDir(), "c")}, false, func(t *testing.T, store cache.Cache) {
			fc, ok := store.(*cache.FileCache)
			if !ok || !strings.HasSuffix(fc.Dir(), "c") {
				t.Errorf("store = %T %v", store, store)
			}
		}},
		{"xdg default", config.Cache{}, false, func(t *testing.T, store cache.Cache) {
			fc, ok := store.(*cache.FileCache)
			if !ok || !strings.HasSuffix(fc.Dir(), filepath.Join("cache", appName)) {
				t.Errorf("store = %T %v", store, store)
			}
		}},
		{"unreachable redis falls back", config.Cache{Redis: "127.0.0.1:1"}, false, func(t *testing.T, store cache.Cache) {
			if _, ok := store.(*cache.FileCache); !ok {
				t.Errorf("store = %T, want FileCache", store)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := c.newCache(ctx, tt.settings, tt.noCache)
			if err != nil {
				t.Fatal(err)
			}
			defer store.Close()
			tt.check(t, store)
		})
	}
}

func TestNewKeyer(t *testing.T) {
	opts := cache.LayoutKeyOpts{SmallOffset: 1}
	plain := newKeyer(config.Cache{}).LayoutKey("h", opts)
	scoped := newKeyer(config.Cache{Prefix: "ci:"}).LayoutKey("h", opts)
	if got, want := scoped, "ci:"+plain; got != want {
		t.Errorf("scoped key = %q, want %q", got, want)
	}
}

func TestGeometryFlags(t *testing.T) {
	var g geometryFlags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	g.register(fs)
	if err := fs.Parse([]string{
		"--separation", "12", "--meeting-weight", "-0.5",
		"--small-offset", "0.01", "--extension-tolerance", "4",
	}); err != nil {
		t.Fatal(err)
	}

	cfg := beautify.DefaultConfig()
	cfg.SeparationRounds = 5
	g.apply(fs, &cfg)

	if got, want := cfg.MaxSegmentSeparation, 12.0; got != want {
		t.Errorf("MaxSegmentSeparation = %v, want %v", got, want)
	}
	if got, want := cfg.MeetingWeight, -0.5; got != want {
		t.Errorf("MeetingWeight = %v, want %v", got, want)
	}
	if got, want := cfg.SmallOffset, 0.01; got != want {
		t.Errorf("SmallOffset = %v, want %v", got, want)
	}
	if got, want := cfg.ExtensionTolerance, 4.0; got != want {
		t.Errorf("ExtensionTolerance = %v, want %v", got, want)
	}
	if got, want := cfg.OverlapTolerance, beautify.DefaultOverlapTolerance; got != want {
		t.Errorf("OverlapTolerance = %v, want %v", got, want)
	}
	if got, want := cfg.SeparationRounds, 5; got != want {
		t.Errorf("SeparationRounds = %v, want %v (unset flag must not override)", got, want)
	}
}

func TestLayoutCommand(t *testing.T) {
	dir := isolate(t)
	input := writeModel(t, dir)
	output := filepath.Join(dir, "out.json")

	if _, err := run(t, "layout", input, "-o", output, "--separation", "10"); err != nil {
		t.Fatalf("layout: %v", err)
	}
	m, err := circuit.ReadModelFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := m.Wires["a"].SegmentStart(1).X, 95.0; got != want {
		t.Errorf("a vertical at x=%v, want %v", got, want)
	}

	if _, err := run(t, "layout", input); err != nil {
		t.Fatalf("layout default output: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "pair.tidy.json")); err != nil {
		t.Errorf("default output missing: %v", err)
	}
}

func TestLayoutCommandErrors(t *testing.T) {
	dir := isolate(t)
	if _, err := run(t, "layout", filepath.Join(dir, "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing input: err = %v", err)
	}
	input := writeModel(t, dir)
	if _, err := run(t, "layout", input, "--separation", "-1", "--no-cache"); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("bad separation: err = %v", err)
	}
	if _, err := run(t, "layout"); err == nil {
		t.Error("missing argument should fail")
	}
}

func TestCheckCommand(t *testing.T) {
	dir := isolate(t)
	input := writeModel(t, dir)

	if _, err := run(t, "check", input); err != nil {
		t.Errorf("check: %v", err)
	}
	if _, err := run(t, "check", input, "--strict"); !errors.Is(err, errors.ErrCodeInvalidModel) {
		t.Errorf("check --strict: err = %v", err)
	}

	tidy := filepath.Join(dir, "tidy.json")
	if _, err := run(t, "layout", input, "-o", tidy); err != nil {
		t.Fatal(err)
	}
	// the end segments still meet on y=50, so only vertical overlaps are gone
	if _, err := run(t, "check", tidy, "--json", "--no-cache"); err != nil {
		t.Errorf("check --json: %v", err)
	}
}

func TestConfigCommands(t *testing.T) {
	dir := isolate(t)

	out, err := run(t, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "max_segment_separation") {
		t.Errorf("config show = %q", out)
	}

	out, err = run(t, "config", "show", "-f", "yaml")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "layout:") {
		t.Errorf("config show -f yaml = %q", out)
	}

	if _, err := run(t, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	path := filepath.Join(dir, "config", appName, "config.toml")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config init wrote nothing: %v", err)
	}
	if _, err := run(t, "config", "init"); err == nil {
		t.Error("second init without --force should fail")
	}

	custom := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(custom, []byte("layout:\n  separation_rounds: 4\n"), 0644); err != nil {
		t.Fatal(err)
	}
	out, err = run(t, "--config", custom, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "separation_rounds = 4") {
		t.Errorf("--config not applied:\n%s", out)
	}
}

func TestCacheCommands(t *testing.T) {
	dir := isolate(t)
	input := writeModel(t, dir)
	if _, err := run(t, "layout", input); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	cacheRoot := strings.TrimSpace(out)
	if want := filepath.Join(dir, "cache", appName); cacheRoot != want {
		t.Errorf("cache path = %q, want %q", cacheRoot, want)
	}
	entries, _ := os.ReadDir(cacheRoot)
	if len(entries) == 0 {
		t.Fatal("layout should have written a cache entry")
	}

	if _, err := run(t, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	if entries, _ := os.ReadDir(cacheRoot); len(entries) != 0 {
		t.Errorf("cache clear left %d entries", len(entries))
	}
}

func TestCompletion(t *testing.T) {
	out, err := run(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, appName) {
		t.Error("bash completion should mention the program name")
	}
}

func TestExecuteVerbose(t *testing.T) {
	isolate(t)
	if err := execute(context.Background(), []string{"-v", "cache", "path"}); err != nil {
		t.Errorf("execute: %v", err)
	}
}
