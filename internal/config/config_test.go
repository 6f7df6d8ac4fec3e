package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/wiretidy/pkg/beautify"
	"github.com/matzehuels/wiretidy/pkg/errors"
)

const tomlConfig = `
[layout]
max_segment_separation = 12.5
meeting_weight = -1.0
separation_rounds = 3

[cache]
redis = "localhost:6379"
prefix = "staging:"

[server]
addr = ":9090"
`

const yamlConfig = `
layout:
  max_segment_separation: 12.5
  meeting_weight: -1
  separation_rounds: 3
cache:
  redis: localhost:6379
  prefix: "staging:"
server:
  addr: ":9090"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"toml", "wiretidy.toml", tomlConfig},
		{"yaml", "wiretidy.yaml", yamlConfig},
		{"yml", "wiretidy.yml", yamlConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Load(writeFile(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got, want := f.Layout.MaxSegmentSeparation, 12.5; got != want {
				t.Errorf("MaxSegmentSeparation = %v, want %v", got, want)
			}
			if got, want := f.Layout.MeetingWeight, -1.0; got != want {
				t.Errorf("MeetingWeight = %v, want %v", got, want)
			}
			if got, want := f.Layout.SeparationRounds, 3; got != want {
				t.Errorf("SeparationRounds = %v, want %v", got, want)
			}
			if got, want := f.Layout.MaxCornerSize, beautify.DefaultMaxCornerSize; got != want {
				t.Errorf("MaxCornerSize = %v, want default %v", got, want)
			}
			if f.Cache.Redis != "localhost:6379" || f.Cache.Prefix != "staging:" {
				t.Errorf("Cache = %+v", f.Cache)
			}
			if got, want := f.Server.Addr, ":9090"; got != want {
				t.Errorf("Server.Addr = %q, want %q", got, want)
			}
			if got, want := f.Server.MaxBodyBytes, int64(DefaultMaxBodyBytes); got != want {
				t.Errorf("MaxBodyBytes = %d, want %d", got, want)
			}
		})
	}
}

func TestLoadEmptyPath(t *testing.T) {
	f, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if f.Layout != beautify.DefaultConfig() {
		t.Errorf("Layout = %+v, want defaults", f.Layout)
	}
	if f.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q", f.Server.Addr)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		code errors.Code
	}{
		{"missing", func(t *testing.T) string { return filepath.Join(t.TempDir(), "none.toml") }, errors.ErrCodeFileNotFound},
		{"extension", func(t *testing.T) string { return writeFile(t, "c.json", "{}") }, errors.ErrCodeUnsupported},
		{"syntax", func(t *testing.T) string { return writeFile(t, "c.toml", "[layout\n") }, errors.ErrCodeInvalidConfig},
		{"range", func(t *testing.T) string {
			return writeFile(t, "c.toml", "[layout]\nmax_segment_separation = -3.0\n")
		}, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.path(t)); !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, format := range []string{FormatTOML, FormatYAML} {
		t.Run(format, func(t *testing.T) {
			want := Default()
			want.Layout.MeetingWeight = 0.5
			want.Cache.Dir = "/tmp/wiretidy"

			var buf bytes.Buffer
			if err := want.Encode(&buf, format); err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := Parse(buf.Bytes(), format)
			if err != nil {
				t.Fatalf("Parse: %v\n%s", err, buf.String())
			}
			if *got != *want {
				t.Errorf("round trip = %+v, want %+v", got, want)
			}
		})
	}

	if err := Default().Encode(&bytes.Buffer{}, "json"); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Encode(json) err = %v", err)
	}
}

func TestWriteAndDiscover(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	if got := Discover(); got != "" {
		t.Errorf("Discover() = %q before any file exists", got)
	}
	path := filepath.Join(dir, appName, "config.toml")
	if err := Default().Write(path); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := Discover(); got != path {
		t.Errorf("Discover() = %q, want %q", got, path)
	}
	if _, err := Load(path); err != nil {
		t.Errorf("Load written file: %v", err)
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a.toml", FormatTOML},
		{"a.TOML", FormatTOML},
		{"dir/a.yaml", FormatYAML},
		{"a.yml", FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatOf(tt.path)
			if err != nil || got != tt.want {
				t.Errorf("FormatOf(%q) = %q, %v", tt.path, got, err)
			}
		})
	}
}
