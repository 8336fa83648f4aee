package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/codex-k8s/annotator/internal/githubapi"
)

// Overrides carries command-line values; empty strings and nil pointers mean "not given".
type Overrides struct {
	OutputPath string
	EventPath  string
	APIURL     string
	Name       string
	Timeout    *time.Duration
	DryRun     *bool
}

// Resolve layers defaults, the config file, the environment and command-line overrides, in that order.
// Dry run is enabled when any layer enables it, unless the command line sets it explicitly.
func Resolve(linterID, defaultOutput string, f *File, e Environment, o Overrides) *Settings {
	s := &Settings{
		Linter:     linterID,
		OutputPath: defaultOutput,
		APIURL:     githubapi.DefaultBaseURL,
		Timeout:    githubapi.DefaultTimeout,
	}

	if f != nil {
		lc := f.Linter(linterID)
		if lc.Output != "" {
			s.OutputPath = relativeTo(f.Dir(), lc.Output)
		}
		s.Name = lc.Name
		if f.APIURL != "" {
			s.APIURL = f.APIURL
		}
		if f.EventPath != "" {
			s.EventPath = relativeTo(f.Dir(), f.EventPath)
		}
		if d := f.TimeoutDuration(); d > 0 {
			s.Timeout = d
		}
		s.DryRun = f.DryRun
	}

	s.Token = e.Token
	s.StepOutput = e.StepOutput
	s.LogLevel = e.LogLevel
	if e.EventPath != "" {
		s.EventPath = e.EventPath
	}
	if e.APIURL != "" {
		s.APIURL = e.APIURL
	}
	if e.Timeout > 0 {
		s.Timeout = e.Timeout
	}
	s.DryRun = s.DryRun || e.DryRun

	if o.OutputPath != "" {
		s.OutputPath = o.OutputPath
	}
	if o.EventPath != "" {
		s.EventPath = o.EventPath
	}
	if o.APIURL != "" {
		s.APIURL = o.APIURL
	}
	if o.Name != "" {
		s.Name = o.Name
	}
	if o.Timeout != nil {
		s.Timeout = *o.Timeout
	}
	if o.DryRun != nil {
		s.DryRun = *o.DryRun
	}

	s.APIURL = strings.TrimRight(strings.TrimSpace(s.APIURL), "/")
	return s
}

func relativeTo(dir, path string) string {
	if filepath.IsAbs(path) || dir == "" || dir == "." {
		return path
	}
	return filepath.Join(dir, path)
}
