package linters

import (
	"fmt"
	"strings"

	"github.com/codex-k8s/annotator/internal/annotation"
)

// JSHint reads jshint JSON reports: {"result": [{"file": ..., "error": {...}}]}.
type JSHint struct{}

type jshintReport struct {
	Result []jshintResult `json:"result" validate:"required"`
}

type jshintResult struct {
	File  *string      `json:"file" validate:"required"`
	Error *jshintError `json:"error" validate:"required"`
}

type jshintError struct {
	// ID carries the severity wrapped in parentheses, e.g. "(error)".
	ID        *string `json:"id" validate:"required"`
	Line      *int    `json:"line" validate:"required"`
	Character *int    `json:"character" validate:"required"`
	Code      *string `json:"code" validate:"required"`
	Reason    *string `json:"reason" validate:"required"`
}

// ID implements Linter.
func (JSHint) ID() string { return "jshint" }

// Name implements Linter.
func (JSHint) Name() string { return "jshint_annotator" }

// DefaultOutput implements Linter.
func (JSHint) DefaultOutput() string { return "jshint_output.json" }

// Compile implements Linter.
func (l JSHint) Compile(raw []byte, c *annotation.Collector) error {
	var report jshintReport
	if err := decode(l.ID(), raw, &report); err != nil {
		return err
	}
	if report.Result == nil {
		return validateRecord(l.ID(), "report", &report)
	}
	for i := range report.Result {
		r := &report.Result[i]
		if err := validateRecord(l.ID(), fmt.Sprintf("result %d", i), r); err != nil {
			return err
		}
		e := r.Error
		c.Add(
			*r.File,
			*e.Line,
			*e.Line,
			*e.Character,
			*e.Character,
			strings.Trim(*e.ID, "()"),
			fmt.Sprintf("[%s] %s", *e.Code, *e.Reason),
		)
	}
	return nil
}
