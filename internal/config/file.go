// Package config contains the optional annotator YAML file, the environment inputs and the
// resolved, validated settings of one run.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFilePath is read when present; it is not an error for it to be missing.
const DefaultFilePath = ".annotator.yaml"

// File is the on-disk configuration.
type File struct {
	// APIURL is the GitHub REST root (e.g. a GHES /api/v3 URL).
	APIURL string `yaml:"apiURL,omitempty"`
	// EventPath overrides GITHUB_EVENT_PATH, mainly for local runs.
	EventPath string `yaml:"eventPath,omitempty"`
	// Timeout is the request timeout as a Go duration string (e.g. "45s").
	Timeout string `yaml:"timeout,omitempty"`
	// DryRun builds the payload without publishing it.
	DryRun bool `yaml:"dryRun,omitempty"`
	// EnvFiles lists .env files, relative to the config file, loaded before the environment is read.
	EnvFiles []string `yaml:"envFiles,omitempty"`
	// Linters holds per-linter overrides keyed by linter id.
	Linters map[string]LinterConfig `yaml:"linters,omitempty"`

	// dir is the directory the file was loaded from.
	dir string
}

// LinterConfig overrides linter defaults.
type LinterConfig struct {
	// Output is the report path.
	Output string `yaml:"output,omitempty"`
	// Name is the check-run name.
	Name string `yaml:"name,omitempty"`
}

// LoadFile reads the YAML file at path. A missing file yields an empty File unless required is set.
func LoadFile(path string, required bool) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return &File{}, nil
		}
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	if f.Timeout != "" {
		if _, err := time.ParseDuration(f.Timeout); err != nil {
			return nil, fmt.Errorf("parse config %q: invalid timeout %q: %w", path, f.Timeout, err)
		}
	}
	f.dir = filepath.Dir(path)
	return &f, nil
}

// Dir returns the directory of the loaded file, used to resolve relative paths.
func (f *File) Dir() string {
	if f == nil || f.dir == "" {
		return "."
	}
	return f.dir
}

// Linter returns the overrides for id; the zero value when none are configured.
func (f *File) Linter(id string) LinterConfig {
	if f == nil {
		return LinterConfig{}
	}
	return f.Linters[id]
}

// TimeoutDuration returns the parsed timeout or zero when unset.
func (f *File) TimeoutDuration() time.Duration {
	if f == nil || f.Timeout == "" {
		return 0
	}
	d, _ := time.ParseDuration(f.Timeout)
	return d
}
