// Package annotation defines the check-run annotation record shared by all linter adapters.
package annotation

import (
	"sort"
	"strings"
)

// Level is one of the three annotation levels accepted by the GitHub checks API.
type Level string

const (
	// LevelNotice marks informational findings.
	LevelNotice Level = "notice"
	// LevelWarning marks findings that should be looked at.
	LevelWarning Level = "warning"
	// LevelFailure marks findings that fail the check.
	LevelFailure Level = "failure"
)

// LevelFor maps a linter-native severity string onto a Level.
// Matching is case-insensitive; anything unrecognised becomes LevelNotice.
func LevelFor(severity string) Level {
	switch strings.ToLower(severity) {
	case "warning", "warn":
		return LevelWarning
	case "error", "fail", "failure":
		return LevelFailure
	default:
		return LevelNotice
	}
}

// Annotation is a single linter finding in check-run form.
type Annotation struct {
	// Path is the repository-relative file the finding belongs to.
	Path string `json:"path"`
	// StartLine is the first line of the finding.
	StartLine int `json:"start_line"`
	// EndLine is the last line of the finding.
	EndLine int `json:"end_line"`
	// StartColumn is the first column of the finding.
	StartColumn int `json:"start_column"`
	// EndColumn is the last column of the finding.
	EndColumn int `json:"end_column"`
	// Level is the normalized severity.
	Level Level `json:"annotation_level"`
	// Message is the human-readable description shown on the PR.
	Message string `json:"message"`
}

// Collector accumulates annotations in discovery order and tracks which files have findings.
type Collector struct {
	annotations []Annotation
	files       map[string]struct{}
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{files: make(map[string]struct{})}
}

// Add records one finding. Positions are stored as given.
func (c *Collector) Add(file string, startLine, endLine, startCol, endCol int, severity, message string) {
	if c.files == nil {
		c.files = make(map[string]struct{})
	}
	c.files[file] = struct{}{}
	c.annotations = append(c.annotations, Annotation{
		Path:        file,
		StartLine:   startLine,
		EndLine:     endLine,
		StartColumn: startCol,
		EndColumn:   endCol,
		Level:       LevelFor(severity),
		Message:     message,
	})
}

// Annotations returns the accumulated annotations in the order they were added.
func (c *Collector) Annotations() []Annotation {
	out := make([]Annotation, len(c.annotations))
	copy(out, c.annotations)
	return out
}

// Len returns the number of accumulated annotations.
func (c *Collector) Len() int {
	return len(c.annotations)
}

// FileCount returns the number of distinct files with at least one annotation.
func (c *Collector) FileCount() int {
	return len(c.files)
}

// Files returns the distinct files with annotations, sorted.
func (c *Collector) Files() []string {
	out := make([]string, 0, len(c.files))
	for f := range c.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
