// Package cli defines the command-line interface for the annotator.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/annotator/internal/config"
	"github.com/codex-k8s/annotator/internal/linters"
	"github.com/codex-k8s/annotator/internal/logging"
)

// Options stores global CLI options shared between commands.
type Options struct {
	ConfigPath string
	EnvFiles   []string
	APIURL     string
	EventPath  string
	Name       string
	DryRun     bool
	Timeout    time.Duration
	LogLevel   logging.Level
}

// Execute builds the root command, runs it with the provided args and logger, and returns any error.
func Execute(args []string, logger *slog.Logger) error {
	return execute(args, logger, os.Stdout, os.Stderr)
}

func execute(args []string, logger *slog.Logger, out, errOut io.Writer) error {
	if logger == nil {
		logger = logging.NewLogger(os.Stderr, logging.LevelInfo)
	}

	rootOpts := &Options{
		ConfigPath: config.DefaultFilePath,
		LogLevel:   logging.LevelInfo,
	}

	rootCmd := newRootCommand(rootOpts, logger)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetContext(context.WithValue(context.Background(), loggerKey{}, logger))

	return rootCmd.Execute()
}

// newRootCommand constructs the root cobra.Command with global flags and one subcommand per linter.
func newRootCommand(opts *Options, logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "annotator",
		Short:         "annotator publishes linter findings as GitHub check-run annotations",
		Long:          "annotator reads a linter's JSON report, converts every finding into a check-run annotation and publishes them for the pull request that triggered the workflow.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			raw := cmd.Flag("log-level").Value.String()
			if !cmd.Flags().Changed("log-level") && envPresent("ANNOTATOR_LOG_LEVEL") {
				raw = os.Getenv("ANNOTATOR_LOG_LEVEL")
			}
			level := logging.ParseLevel(raw)
			opts.LogLevel = level
			logger = logging.NewLogger(cmd.ErrOrStderr(), level)
			cmd.SetContext(context.WithValue(cmd.Context(), loggerKey{}, logger))
			logger.Debug("logger initialized", "level", level)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", config.DefaultFilePath, "Path to the annotator YAML config (optional unless set explicitly)")
	cmd.PersistentFlags().StringArrayVar(&opts.EnvFiles, "env-file", nil, "Load variables from a .env file (repeatable)")
	cmd.PersistentFlags().StringVar(&opts.APIURL, "api-url", "", "GitHub REST API root (defaults to GITHUB_API_URL or https://api.github.com)")
	cmd.PersistentFlags().StringVar(&opts.EventPath, "event-path", "", "Path to the workflow event payload (defaults to GITHUB_EVENT_PATH)")
	cmd.PersistentFlags().StringVar(&opts.Name, "name", "", "Override the check-run name")
	cmd.PersistentFlags().BoolVar(&opts.DryRun, "dry-run", false, "Build and log the check run without publishing it")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 0, "Timeout for the GitHub API request (e.g. 30s)")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	for _, l := range linters.All() {
		cmd.AddCommand(newLinterCommand(opts, l))
	}
	cmd.AddCommand(newListCommand())

	return cmd
}

// loggerKey is a private context key used to store a logger in command contexts.
type loggerKey struct{}

// LoggerFromContext extracts a logger from the context or falls back to a default logger.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return logging.NewLogger(os.Stderr, logging.LevelInfo)
	}
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return logging.NewLogger(os.Stderr, logging.LevelInfo)
}
