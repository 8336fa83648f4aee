// Package annotator turns a linter report into a GitHub check run for the triggering pull request.
package annotator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/codex-k8s/annotator/internal/annotation"
	"github.com/codex-k8s/annotator/internal/event"
	"github.com/codex-k8s/annotator/internal/githubapi"
	"github.com/codex-k8s/annotator/internal/linters"
)

// Publisher delivers a check run to the hosting platform.
type Publisher interface {
	CreateCheckRun(ctx context.Context, repo string, run *githubapi.CheckRun) (*githubapi.CheckRunResponse, error)
}

// Options configures an Annotator.
type Options struct {
	// Linter decodes the report.
	Linter linters.Linter
	// OutputPath is the linter report; defaults to Linter.DefaultOutput().
	OutputPath string
	// EventPath is the GitHub event payload file (GITHUB_EVENT_PATH).
	EventPath string
	// Name overrides the check-run name.
	Name string
	// Publisher sends the check run; may be nil in dry-run mode.
	Publisher Publisher
	// DryRun builds and logs the payload without publishing it.
	DryRun bool
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
	// NewID generates the check-run external id; defaults to uuid.NewString.
	NewID func() string
}

// Result describes a completed run.
type Result struct {
	Name        string
	Conclusion  string
	Files       int
	Annotations int
	Published   int
	Dropped     int
	CheckRunID  int64
	HTMLURL     string
	DryRun      bool
}

// Annotator holds the inputs of one invocation.
type Annotator struct {
	opts   Options
	logger *slog.Logger
	event  *event.Event
	report []byte
}

// New loads the event and the linter report. Both files must exist and the event must be valid JSON.
func New(opts Options) (*Annotator, error) {
	if opts.Linter == nil {
		return nil, fmt.Errorf("linter is required")
	}
	if opts.Publisher == nil && !opts.DryRun {
		return nil, fmt.Errorf("publisher is required unless running dry")
	}
	if strings.TrimSpace(opts.OutputPath) == "" {
		opts.OutputPath = opts.Linter.DefaultOutput()
	}
	if strings.TrimSpace(opts.EventPath) == "" {
		return nil, fmt.Errorf("event path is empty")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ev, err := event.Load(opts.EventPath)
	if err != nil {
		return nil, fmt.Errorf("load event %q: %w", opts.EventPath, err)
	}
	report, err := os.ReadFile(opts.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("read %s report: %w", opts.Linter.ID(), err)
	}
	if !json.Valid(report) {
		return nil, fmt.Errorf("read %s report %q: invalid JSON", opts.Linter.ID(), opts.OutputPath)
	}

	return &Annotator{
		opts:   opts,
		logger: logger.With("linter", opts.Linter.ID()),
		event:  ev,
		report: report,
	}, nil
}

// Name returns the check-run name.
func (a *Annotator) Name() string {
	if name := strings.TrimSpace(a.opts.Name); name != "" {
		return name
	}
	return a.opts.Linter.Name()
}

// Compile runs the linter adapter over the report.
func (a *Annotator) Compile() (*annotation.Collector, error) {
	c := annotation.NewCollector()
	if err := a.opts.Linter.Compile(a.report, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Summary renders the plain-text run summary.
func Summary(name string, files, annotations int) string {
	return fmt.Sprintf("%s run summary:\n\nFiles with Errors: %d\nTotal Errors: %d\n", name, files, annotations)
}

// Truncate keeps the first limit annotations and reports how many were dropped.
// TODO: publish the remainder through check-run updates once more than one request per run is supported.
func Truncate(in []annotation.Annotation, limit int) ([]annotation.Annotation, int) {
	if len(in) <= limit {
		return in, 0
	}
	return in[:limit], len(in) - limit
}

// BuildCheckRun compiles the report and assembles the check-run payload.
func (a *Annotator) BuildCheckRun() (*githubapi.CheckRun, *Result, error) {
	c, err := a.Compile()
	if err != nil {
		return nil, nil, err
	}
	name := a.Name()
	summary := Summary(name, c.FileCount(), c.Len())
	published, dropped := Truncate(c.Annotations(), githubapi.MaxAnnotationsPerRequest)

	sha, err := a.event.HeadSHA()
	if err != nil {
		return nil, nil, err
	}

	conclusion := githubapi.ConclusionSuccess
	if len(published) > 0 {
		conclusion = githubapi.ConclusionFailure
	}
	if published == nil {
		published = []annotation.Annotation{}
	}

	run := &githubapi.CheckRun{
		Name:        name,
		HeadSHA:     sha,
		ExternalID:  a.opts.NewID(),
		Status:      githubapi.StatusCompleted,
		Conclusion:  conclusion,
		CompletedAt: a.opts.Now().UTC().Format(time.RFC3339),
		Output: githubapi.CheckRunOutput{
			Title:       name + " result",
			Summary:     summary,
			Text:        name + " results",
			Annotations: published,
		},
	}
	res := &Result{
		Name:        name,
		Conclusion:  conclusion,
		Files:       c.FileCount(),
		Annotations: c.Len(),
		Published:   len(published),
		Dropped:     dropped,
	}
	return run, res, nil
}

// AnnotatePR builds the check run and publishes it. Any non-2xx response is returned as an error.
func (a *Annotator) AnnotatePR(ctx context.Context) (*Result, error) {
	run, res, err := a.BuildCheckRun()
	if err != nil {
		return nil, err
	}
	repo, err := a.event.RepoFullName()
	if err != nil {
		return nil, err
	}

	if res.Dropped > 0 {
		a.logger.Warn("annotation limit reached; extra annotations dropped",
			"limit", githubapi.MaxAnnotationsPerRequest,
			"dropped", res.Dropped,
		)
	}
	if payload, err := json.MarshalIndent(run, "", "  "); err == nil {
		a.logger.Info("check run payload", "payload", string(payload))
	}
	a.logger.Info("check run prepared",
		"name", run.Name,
		"repo", repo,
		"head_sha", run.HeadSHA,
		"external_id", run.ExternalID,
		"conclusion", run.Conclusion,
		"files", res.Files,
		"annotations", res.Annotations,
	)

	if a.opts.DryRun {
		res.DryRun = true
		a.logger.Info("dry run: check run not published")
		return res, nil
	}

	resp, err := a.opts.Publisher.CreateCheckRun(ctx, repo, run)
	if err != nil {
		return nil, fmt.Errorf("publish check run: %w", err)
	}
	res.CheckRunID = resp.ID
	res.HTMLURL = resp.HTMLURL
	a.logger.Info("check run published", "id", resp.ID, "url", resp.HTMLURL, "response", string(resp.Raw))
	return res, nil
}
