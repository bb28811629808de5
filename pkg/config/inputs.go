package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"

	"github.com/picogrid/reionsim/pkg/params"
)

// ErrUnknownConfigField is returned when an inputs file has a top-level key
// other than the group sections.
var ErrUnknownConfigField = fmt.Errorf("%w: unknown inputs file section", params.ErrConfiguration)

// InputsFile is the on-disk form of an input set: one section per group,
// keyed by the engine's field names.
type InputsFile struct {
	Cosmo  params.Options `yaml:"cosmo,omitempty"`
	User   params.Options `yaml:"user,omitempty"`
	Astro  params.Options `yaml:"astro,omitempty"`
	Flags  params.Options `yaml:"flags,omitempty"`
	Global params.Options `yaml:"global,omitempty"`
}

// GroupOptions returns the sections as builder options.
func (f *InputsFile) GroupOptions() params.GroupOptions {
	return params.GroupOptions{
		Cosmo:  f.Cosmo,
		User:   f.User,
		Astro:  f.Astro,
		Flags:  f.Flags,
		Global: f.Global,
	}
}

// FromInputSet returns the file that rebuilds s.
func FromInputSet(s *params.InputSet) *InputsFile {
	o := s.Snapshot()
	return &InputsFile{
		Cosmo:  o.Cosmo,
		User:   o.User,
		Astro:  o.Astro,
		Flags:  o.Flags,
		Global: o.Global,
	}
}

// ParseInputs decodes an inputs document. Unknown sections are rejected;
// unknown field names are left for the params builders to reject.
func ParseInputs(data []byte) (*InputsFile, error) {
	var f InputsFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &InputsFile{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("%w: %v", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("failed to parse inputs: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: inputs file contains multiple documents or trailing content", params.ErrConfiguration)
	}
	return &f, nil
}

// LoadInputsFile reads and decodes the inputs file at path.
func LoadInputsFile(path string) (*InputsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read inputs file: %w", err)
	}
	f, err := ParseInputs(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// LoadInputs builds an input set from the file at path with environment
// overrides applied. An empty path selects the default location, where a
// missing file yields the defaults.
func LoadInputs(path string) (*params.InputSet, error) {
	f := &InputsFile{}
	if path == "" {
		def, err := DefaultInputsPath()
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(def); err == nil {
			path = def
		}
	}
	if path != "" {
		var err error
		if f, err = LoadInputsFile(path); err != nil {
			return nil, err
		}
	}

	opts, err := ApplyEnv(f.GroupOptions())
	if err != nil {
		return nil, err
	}
	return params.NewInputSet(opts)
}

// MarshalInputs encodes f as YAML.
func MarshalInputs(f *InputsFile) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("failed to marshal inputs: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal inputs: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveInputsFile atomically replaces the file at path with f.
func SaveInputsFile(path string, f *InputsFile) error {
	data, err := MarshalInputs(f)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("failed to create pending inputs file: %w", err)
	}
	defer func() {
		_ = pending.Cleanup()
	}()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("failed to write inputs file: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("failed to replace inputs file: %w", err)
	}
	return nil
}
