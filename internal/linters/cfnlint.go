package linters

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/codex-k8s/annotator/internal/annotation"
)

// CfnLint reads `cfn-lint --format json` reports: a top-level list of matches.
type CfnLint struct{}

type cfnLintMatch struct {
	Filename *string         `json:"Filename" validate:"required"`
	Level    *string         `json:"Level" validate:"required"`
	Message  *string         `json:"Message" validate:"required"`
	Rule     json.RawMessage `json:"Rule" validate:"required"`
	Location *cfnLintSpan    `json:"Location" validate:"required"`
}

type cfnLintSpan struct {
	Start *cfnLintPosition `json:"Start" validate:"required"`
	End   *cfnLintPosition `json:"End" validate:"required"`
}

type cfnLintPosition struct {
	LineNumber   *int `json:"LineNumber" validate:"required"`
	ColumnNumber *int `json:"ColumnNumber" validate:"required"`
}

// ID implements Linter.
func (CfnLint) ID() string { return "cfn-lint" }

// Name implements Linter.
func (CfnLint) Name() string { return "cfn_lint_annotator" }

// DefaultOutput implements Linter.
func (CfnLint) DefaultOutput() string { return "cfnlint_output.json" }

// Compile implements Linter.
func (l CfnLint) Compile(raw []byte, c *annotation.Collector) error {
	var matches []cfnLintMatch
	if err := decode(l.ID(), raw, &matches); err != nil {
		return err
	}
	for i := range matches {
		m := &matches[i]
		if err := validateRecord(l.ID(), fmt.Sprintf("match %d", i), m); err != nil {
			return err
		}
		c.Add(
			*m.Filename,
			*m.Location.Start.LineNumber,
			*m.Location.End.LineNumber,
			*m.Location.Start.ColumnNumber,
			*m.Location.End.ColumnNumber,
			*m.Level,
			fmt.Sprintf("[%s] %s", ruleID(m.Rule), *m.Message),
		)
	}
	return nil
}

// ruleID accepts both a bare rule id string and cfn-lint's rule object ({"Id": "E3001", ...}).
func ruleID(raw json.RawMessage) string {
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id
	}
	var rule struct {
		ID string `json:"Id"`
	}
	if err := json.Unmarshal(raw, &rule); err == nil && rule.ID != "" {
		return rule.ID
	}
	return strings.TrimSpace(string(raw))
}
