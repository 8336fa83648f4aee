package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/annotator/internal/annotator"
	"github.com/codex-k8s/annotator/internal/config"
	"github.com/codex-k8s/annotator/internal/env"
	"github.com/codex-k8s/annotator/internal/ghoutput"
	"github.com/codex-k8s/annotator/internal/githubapi"
	"github.com/codex-k8s/annotator/internal/linters"
	"github.com/codex-k8s/annotator/internal/logging"
)

// newLinterCommand creates "<linter> [report]" which publishes one linter report as a check run.
func newLinterCommand(opts *Options, l linters.Linter) *cobra.Command {
	return &cobra.Command{
		Use:   l.ID() + " [report]",
		Short: fmt.Sprintf("Publish a %s JSON report as the %q check run", l.ID(), l.Name()),
		Long: fmt.Sprintf("Publish a %s JSON report as the %q check run.\nThe report defaults to %s in the working directory.",
			l.ID(), l.Name(), l.DefaultOutput()),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := LoggerFromContext(cmd.Context())

			settings, err := resolveSettings(cmd, opts, l, args)
			if err != nil {
				return err
			}
			if err := settings.Validate(); err != nil {
				return err
			}
			if !cmd.Flags().Changed("log-level") && settings.LogLevel != "" {
				logger = logging.NewLogger(cmd.ErrOrStderr(), logging.ParseLevel(settings.LogLevel))
			}
			logger.Debug("settings resolved",
				"report", settings.OutputPath,
				"event", settings.EventPath,
				"api_url", settings.APIURL,
				"dry_run", settings.DryRun,
			)

			annOpts := annotator.Options{
				Linter:     l,
				OutputPath: settings.OutputPath,
				EventPath:  settings.EventPath,
				Name:       settings.Name,
				DryRun:     settings.DryRun,
				Logger:     logger,
			}
			if !settings.DryRun {
				client, err := githubapi.NewClient(githubapi.ClientConfig{
					BaseURL: settings.APIURL,
					Token:   settings.Token,
					Timeout: settings.Timeout,
					Logger:  logger,
				})
				if err != nil {
					return err
				}
				annOpts.Publisher = client
			}

			ann, err := annotator.New(annOpts)
			if err != nil {
				return err
			}
			res, err := ann.AnnotatePR(cmd.Context())
			if err != nil {
				return err
			}

			if err := ghoutput.Write(settings.StepOutput, stepOutputs(res)); err != nil {
				return err
			}
			return nil
		},
	}
}

// resolveSettings layers the config file, .env files, the process env, flags and the positional report path.
func resolveSettings(cmd *cobra.Command, opts *Options, l linters.Linter, args []string) (*config.Settings, error) {
	osVars := env.FromOS().NonBlank()
	flagVars, err := env.LoadEnvFiles("", opts.EnvFiles)
	if err != nil {
		return nil, err
	}
	early, err := config.ParseEnvironment(env.Merge(flagVars, osVars))
	if err != nil {
		return nil, err
	}

	cfgPath := opts.ConfigPath
	required := cmd.Flags().Changed("config")
	if !required && early.ConfigPath != "" {
		cfgPath = early.ConfigPath
		required = true
	}
	file, err := config.LoadFile(cfgPath, required)
	if err != nil {
		return nil, err
	}

	fileVars, err := env.LoadEnvFiles(file.Dir(), file.EnvFiles)
	if err != nil {
		return nil, err
	}
	environment, err := config.ParseEnvironment(env.Merge(fileVars, flagVars, osVars))
	if err != nil {
		return nil, err
	}

	var overrides config.Overrides
	if len(args) > 0 {
		overrides.OutputPath = strings.TrimSpace(args[0])
	}
	if cmd.Flags().Changed("event-path") {
		overrides.EventPath = opts.EventPath
	}
	if cmd.Flags().Changed("api-url") {
		overrides.APIURL = opts.APIURL
	}
	if cmd.Flags().Changed("name") {
		overrides.Name = opts.Name
	}
	if cmd.Flags().Changed("timeout") {
		timeout := opts.Timeout
		overrides.Timeout = &timeout
	}
	if cmd.Flags().Changed("dry-run") {
		dry := opts.DryRun
		overrides.DryRun = &dry
	}

	return config.Resolve(l.ID(), l.DefaultOutput(), file, environment, overrides), nil
}

// stepOutputs converts a run result into GITHUB_OUTPUT values.
func stepOutputs(res *annotator.Result) map[string]string {
	out := map[string]string{
		"conclusion":  res.Conclusion,
		"annotations": strconv.Itoa(res.Annotations),
		"published":   strconv.Itoa(res.Published),
		"dropped":     strconv.Itoa(res.Dropped),
		"files":       strconv.Itoa(res.Files),
	}
	if res.CheckRunID != 0 {
		out["check-run-id"] = strconv.FormatInt(res.CheckRunID, 10)
	}
	if res.HTMLURL != "" {
		out["check-run-url"] = res.HTMLURL
	}
	return out
}

// envPresent reports whether a non-empty env var exists.
func envPresent(key string) bool {
	val, ok := os.LookupEnv(key)
	if !ok {
		return false
	}
	return strings.TrimSpace(val) != ""
}
