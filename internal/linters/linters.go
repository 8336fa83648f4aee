// Package linters maps the JSON reports of supported linters onto check-run annotations.
package linters

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/codex-k8s/annotator/internal/annotation"
)

// Linter translates one linter's report format into annotations.
type Linter interface {
	// ID is the command-line name of the linter (e.g. "cfn-lint").
	ID() string
	// Name is the check-run name the results are published under.
	Name() string
	// DefaultOutput is the report file read when none is given.
	DefaultOutput() string
	// Compile decodes raw and adds one annotation per reported issue to c.
	Compile(raw []byte, c *annotation.Collector) error
}

// recordValidate checks that decoded report records carry every field an adapter reads.
// Required fields are pointers so that a zero value is still accepted when present.
var recordValidate = validator.New()

var registry = map[string]Linter{}

func register(l Linter) {
	registry[l.ID()] = l
}

func init() {
	register(CfnLint{})
	register(JSHint{})
	register(Flake8{})
}

// Lookup returns the linter registered under id.
func Lookup(id string) (Linter, error) {
	l, ok := registry[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return nil, fmt.Errorf("unknown linter %q (known: %s)", id, strings.Join(IDs(), ", "))
	}
	return l, nil
}

// IDs returns the registered linter ids, sorted.
func IDs() []string {
	out := make([]string, 0, len(registry))
	for id := range registry {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// All returns every registered linter ordered by id.
func All() []Linter {
	ids := IDs()
	out := make([]Linter, 0, len(ids))
	for _, id := range ids {
		out = append(out, registry[id])
	}
	return out
}

func decode(linter string, raw []byte, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode report: %w", linter, err)
	}
	return nil
}

func validateRecord(linter, where string, record any) error {
	if err := recordValidate.Struct(record); err != nil {
		return fmt.Errorf("%s: %s: missing required field: %w", linter, where, err)
	}
	return nil
}
