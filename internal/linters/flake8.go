package linters

import (
	"fmt"
	"sort"

	"github.com/codex-k8s/annotator/internal/annotation"
)

// Flake8 reads `flake8 --format json` reports: a mapping from file path to its issues.
type Flake8 struct{}

type flake8Issue struct {
	Code         *string `json:"code" validate:"required"`
	Text         *string `json:"text" validate:"required"`
	LineNumber   *int    `json:"line_number" validate:"required"`
	ColumnNumber *int    `json:"column_number" validate:"required"`
}

// flake8 has no severity levels.
const flake8Severity = "notice"

// ID implements Linter.
func (Flake8) ID() string { return "flake8" }

// Name implements Linter.
func (Flake8) Name() string { return "flake8_annotator" }

// DefaultOutput implements Linter.
func (Flake8) DefaultOutput() string { return "flake8_output.json" }

// Compile implements Linter. Files are visited in path order.
func (l Flake8) Compile(raw []byte, c *annotation.Collector) error {
	var report map[string][]flake8Issue
	if err := decode(l.ID(), raw, &report); err != nil {
		return err
	}

	paths := make([]string, 0, len(report))
	for path := range report {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		issues := report[path]
		if len(issues) == 0 {
			continue
		}
		for i := range issues {
			issue := &issues[i]
			if err := validateRecord(l.ID(), fmt.Sprintf("%s issue %d", path, i), issue); err != nil {
				return err
			}
			c.Add(
				path,
				*issue.LineNumber,
				*issue.LineNumber,
				*issue.ColumnNumber,
				*issue.ColumnNumber,
				flake8Severity,
				fmt.Sprintf("%s (%s)", *issue.Text, *issue.Code),
			)
		}
	}
	return nil
}
