package config

import (
	"fmt"
	"time"

	envparse "github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Environment holds the inputs GitHub Actions and the operator pass through environment variables.
type Environment struct {
	// Token is the API credential from GITHUB_TOKEN.
	Token string `env:"GITHUB_TOKEN"`
	// EventPath is the trigger event file from GITHUB_EVENT_PATH.
	EventPath string `env:"GITHUB_EVENT_PATH"`
	// APIURL is the REST root from GITHUB_API_URL.
	APIURL string `env:"GITHUB_API_URL"`
	// StepOutput is the step outputs file from GITHUB_OUTPUT.
	StepOutput string `env:"GITHUB_OUTPUT"`
	// ConfigPath is the YAML config path from ANNOTATOR_CONFIG.
	ConfigPath string `env:"ANNOTATOR_CONFIG"`
	// LogLevel is the logging level from ANNOTATOR_LOG_LEVEL.
	LogLevel string `env:"ANNOTATOR_LOG_LEVEL"`
	// DryRun toggles dry runs from ANNOTATOR_DRY_RUN.
	DryRun bool `env:"ANNOTATOR_DRY_RUN"`
	// Timeout is the request timeout from ANNOTATOR_TIMEOUT.
	Timeout time.Duration `env:"ANNOTATOR_TIMEOUT"`
}

// ParseEnvironment fills an Environment from vars via caarlos0/env.
func ParseEnvironment(vars map[string]string) (Environment, error) {
	var out Environment
	if err := envparse.ParseWithOptions(&out, envparse.Options{Environment: vars}); err != nil {
		return Environment{}, fmt.Errorf("parse environment: %w", err)
	}
	return out, nil
}

// Settings are the resolved inputs of one annotator run.
type Settings struct {
	// Linter is the linter id.
	Linter string `validate:"required"`
	// OutputPath is the linter report file.
	OutputPath string `validate:"required"`
	// EventPath is the GitHub event file.
	EventPath string `validate:"required"`
	// APIURL is the GitHub REST root.
	APIURL string `validate:"required,url"`
	// Token authenticates the check-run request; not needed for dry runs.
	Token string `validate:"required_if=DryRun false"`
	// Name overrides the check-run name.
	Name string
	// Timeout bounds the API request.
	Timeout time.Duration `validate:"gte=0"`
	// DryRun skips publishing.
	DryRun bool
	// StepOutput is the GITHUB_OUTPUT file; empty disables step outputs.
	StepOutput string
	// LogLevel comes from ANNOTATOR_LOG_LEVEL after .env layering; empty keeps the current level.
	LogLevel string
}

var settingsValidate = validator.New()

// Validate reports missing or malformed settings.
func (s *Settings) Validate() error {
	if err := settingsValidate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}
