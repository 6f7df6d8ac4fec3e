package circuit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/wiretidy/pkg/errors"
)

// =============================================================================
// Model Serialization API
// =============================================================================

// MarshalModel converts a model to indented JSON. Map keys are emitted in
// sorted order, so equal models always produce identical bytes.
func MarshalModel(m *Model) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeModelTo(m, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteModelFile writes a model to a JSON file.
// The file is created with 0644 permissions.
func WriteModelFile(m *Model, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeModelTo(m, f)
}

// WriteModel writes a model as JSON to an io.Writer.
func WriteModel(m *Model, w io.Writer) error {
	return writeModelTo(m, w)
}

// ReadModelFile reads and validates a JSON model file.
func ReadModelFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "model file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readModelFrom(f)
}

// ReadModel decodes and validates a JSON model from an io.Reader.
func ReadModel(r io.Reader) (*Model, error) {
	return readModelFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeModelTo(m *Model, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readModelFrom(r io.Reader) (*Model, error) {
	var m Model
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode circuit model")
	}
	if m.Wires == nil {
		m.Wires = make(map[string]Wire)
	}
	if m.Symbols == nil {
		m.Symbols = make(map[string]Symbol)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
