// Package config loads wiretidy settings from TOML or YAML files.
//
// A file has three optional tables:
//
//	[layout]
//	max_segment_separation = 7.0
//	separation_rounds = 8
//
//	[cache]
//	redis = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//
// Keys that are absent keep their defaults. The format is chosen by file
// extension: .toml, .yaml or .yml.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/wiretidy/pkg/beautify"
	"github.com/matzehuels/wiretidy/pkg/errors"
)

// Supported file formats.
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// DefaultAddr is the API server listen address.
const DefaultAddr = ":8080"

// DefaultMaxBodyBytes caps request bodies accepted by the API server.
const DefaultMaxBodyBytes = 8 << 20

// File is the content of a settings file.
type File struct {
	Layout beautify.Config `toml:"layout" yaml:"layout"`
	Cache  Cache           `toml:"cache" yaml:"cache"`
	Server Server          `toml:"server" yaml:"server"`
}

// Cache selects the cache backend. Redis wins over Dir when both are set.
type Cache struct {
	Dir           string `toml:"dir,omitempty" yaml:"dir,omitempty"`
	Redis         string `toml:"redis,omitempty" yaml:"redis,omitempty"`
	RedisPassword string `toml:"redis_password,omitempty" yaml:"redis_password,omitempty"`
	RedisDB       int    `toml:"redis_db,omitempty" yaml:"redis_db,omitempty"`
	Prefix        string `toml:"prefix,omitempty" yaml:"prefix,omitempty"`
}

// Server configures "wiretidy serve".
type Server struct {
	Addr         string `toml:"addr" yaml:"addr"`
	MaxBodyBytes int64  `toml:"max_body_bytes" yaml:"max_body_bytes"`
}

// Default returns the built-in settings.
func Default() *File {
	return &File{
		Layout: beautify.DefaultConfig(),
		Server: Server{Addr: DefaultAddr, MaxBodyBytes: DefaultMaxBodyBytes},
	}
}

// Load reads path over the defaults. An empty path returns Default().
func Load(path string) (*File, error) {
	f := Default()
	if path == "" {
		return f, nil
	}
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read config %s", path)
	}
	if err := f.decode(data, format); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if err := f.finish(); err != nil {
		return nil, err
	}
	return f, nil
}

// Parse decodes data in the given format over the defaults.
func Parse(data []byte, format string) (*File, error) {
	if err := errors.ValidateFormat(format, FormatTOML, FormatYAML); err != nil {
		return nil, err
	}
	format = strings.ToLower(format)
	f := Default()
	if err := f.decode(data, format); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s config", format)
	}
	if err := f.finish(); err != nil {
		return nil, err
	}
	return f, nil
}

// FormatOf maps a file extension to a format.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unsupported config format %q (use .toml, .yaml or .yml)", filepath.Ext(path))
}

// Encode writes f in the given format.
func (f *File) Encode(w io.Writer, format string) error {
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(f)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return err
		}
		return enc.Close()
	}
	return errors.New(errors.ErrCodeUnsupported, "unsupported config format %q", format)
}

// Write saves f to path, choosing the format by extension.
func (f *File) Write(path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := f.Encode(&buf, format); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func (f *File) decode(data []byte, format string) error {
	if format == FormatTOML {
		return toml.Unmarshal(data, f)
	}
	return yaml.Unmarshal(data, f)
}

func (f *File) finish() error {
	f.Layout.SetDefaults()
	if err := f.Layout.Validate(); err != nil {
		return err
	}
	if f.Server.Addr == "" {
		f.Server.Addr = DefaultAddr
	}
	if f.Server.MaxBodyBytes <= 0 {
		f.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return nil
}
