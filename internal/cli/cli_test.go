package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codex-k8s/annotator/internal/githubapi"
)

type fixture struct {
	dir    string
	event  string
	report string
	output string
}

func newFixture(t *testing.T, report string) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:    dir,
		event:  filepath.Join(dir, "event.json"),
		report: filepath.Join(dir, "report.json"),
		output: filepath.Join(dir, "github_output"),
	}
	require.NoError(t, os.WriteFile(f.event, []byte(`{"pull_request":{"head":{"sha":"abc123"}},"repository":{"full_name":"octo/hello"}}`), 0o600))
	require.NoError(t, os.WriteFile(f.report, []byte(report), 0o600))

	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GITHUB_EVENT_PATH", "")
	t.Setenv("GITHUB_API_URL", "")
	t.Setenv("GITHUB_OUTPUT", f.output)
	t.Setenv("ANNOTATOR_CONFIG", "")
	t.Setenv("ANNOTATOR_DRY_RUN", "")
	t.Setenv("ANNOTATOR_TIMEOUT", "")
	t.Setenv("ANNOTATOR_LOG_LEVEL", "")
	t.Setenv("NO_COLOR", "1")
	return f
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLinterCommandPublishes(t *testing.T) {
	f := newFixture(t, `{"result":[{"file":"x.js","error":{"id":"(error)","line":5,"character":2,"code":"W033","reason":"Missing semicolon"}}]}`)

	var body githubapi.CheckRun
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, "/repos/octo/hello/check-runs", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":5,"html_url":"https://github.test/runs/5"}`))
	}))
	defer srv.Close()

	t.Setenv("GITHUB_TOKEN", "env-token")
	t.Setenv("GITHUB_EVENT_PATH", f.event)
	t.Setenv("GITHUB_API_URL", srv.URL)

	err := execute([]string{"jshint", f.report}, quietLogger(), io.Discard, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "token env-token", auth)
	assert.Equal(t, "jshint_annotator", body.Name)
	assert.Equal(t, "abc123", body.HeadSHA)
	assert.Equal(t, "failure", body.Conclusion)
	require.Len(t, body.Output.Annotations, 1)
	assert.Equal(t, "[W033] Missing semicolon", body.Output.Annotations[0].Message)

	data, err := os.ReadFile(f.output)
	require.NoError(t, err)
	assert.Equal(t, "annotations=1\ncheck-run-id=5\ncheck-run-url=https://github.test/runs/5\nconclusion=failure\ndropped=0\nfiles=1\npublished=1\n", string(data))
}

func TestLinterCommandStatusError(t *testing.T) {
	f := newFixture(t, `{"x.py":[{"code":"E1","text":"t","line_number":1,"column_number":1}]}`)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"Resource not accessible by integration"}`))
	}))
	defer srv.Close()

	t.Setenv("GITHUB_TOKEN", "tok")
	err := execute([]string{"flake8", f.report, "--event-path", f.event, "--api-url", srv.URL}, quietLogger(), io.Discard, io.Discard)

	var statusErr *githubapi.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.Code)
	_, statErr := os.Stat(f.output)
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestLinterCommandDryRun(t *testing.T) {
	f := newFixture(t, `{"x.py": []}`)

	err := execute([]string{"flake8", f.report, "--event-path", f.event, "--dry-run"}, quietLogger(), io.Discard, io.Discard)
	require.NoError(t, err)

	data, err := os.ReadFile(f.output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "conclusion=success\n")
	assert.NotContains(t, string(data), "check-run-id")
}

func TestLinterCommandRequiresToken(t *testing.T) {
	f := newFixture(t, `[]`)

	err := execute([]string{"cfn-lint", f.report, "--event-path", f.event}, quietLogger(), io.Discard, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Token")
}

func TestLinterCommandRequiresEventPath(t *testing.T) {
	f := newFixture(t, `[]`)

	err := execute([]string{"cfn-lint", f.report, "--dry-run"}, quietLogger(), io.Discard, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EventPath")
}

func TestLinterCommandMissingReport(t *testing.T) {
	f := newFixture(t, `[]`)

	err := execute([]string{"cfn-lint", filepath.Join(f.dir, "nope.json"), "--event-path", f.event, "--dry-run"}, quietLogger(), io.Discard, io.Discard)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLinterCommandConfigAndEnvFile(t *testing.T) {
	f := newFixture(t, `[{"Filename":"a.yaml","Level":"Warning","Location":{"Start":{"LineNumber":1,"ColumnNumber":1},"End":{"LineNumber":1,"ColumnNumber":4}},"Message":"m","Rule":"W1"}]`)

	var body githubapi.CheckRun
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token from-dotenv", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	require.NoError(t, os.WriteFile(filepath.Join(f.dir, ".env"), []byte("GITHUB_TOKEN=from-dotenv\nGITHUB_API_URL="+srv.URL+"\n"), 0o600))
	cfg := filepath.Join(f.dir, "annotator.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(`
eventPath: event.json
envFiles: [.env]
linters:
  cfn-lint:
    output: report.json
    name: cloudformation
`), 0o600))

	err := execute([]string{"cfn-lint", "--config", cfg}, quietLogger(), io.Discard, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "cloudformation", body.Name)
	require.Len(t, body.Output.Annotations, 1)
	assert.Equal(t, "warning", string(body.Output.Annotations[0].Level))
}

func TestLinterCommandLogLevelFromEnvFile(t *testing.T) {
	f := newFixture(t, `{"x.py": []}`)
	envFile := filepath.Join(f.dir, "debug.env")
	require.NoError(t, os.WriteFile(envFile, []byte("ANNOTATOR_LOG_LEVEL=debug\n"), 0o600))

	var quiet bytes.Buffer
	require.NoError(t, execute([]string{"flake8", f.report, "--event-path", f.event, "--dry-run"}, quietLogger(), io.Discard, &quiet))
	assert.NotContains(t, quiet.String(), "settings resolved")

	var verbose bytes.Buffer
	require.NoError(t, execute([]string{"flake8", f.report, "--event-path", f.event, "--dry-run", "--env-file", envFile}, quietLogger(), io.Discard, &verbose))
	assert.Contains(t, verbose.String(), "settings resolved")

	var flagWins bytes.Buffer
	require.NoError(t, execute([]string{"flake8", f.report, "--event-path", f.event, "--dry-run", "--env-file", envFile, "--log-level", "info"}, quietLogger(), io.Discard, &flagWins))
	assert.NotContains(t, flagWins.String(), "settings resolved")
}

func TestLinterCommandConfigPathFromEnvFile(t *testing.T) {
	f := newFixture(t, `[]`)
	envFile := filepath.Join(f.dir, "cfg.env")
	require.NoError(t, os.WriteFile(envFile, []byte("ANNOTATOR_CONFIG="+filepath.Join(f.dir, "missing.yaml")+"\n"), 0o600))

	err := execute([]string{"cfn-lint", f.report, "--event-path", f.event, "--dry-run", "--env-file", envFile}, quietLogger(), io.Discard, io.Discard)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLinterCommandExplicitConfigMissing(t *testing.T) {
	f := newFixture(t, `[]`)
	err := execute([]string{"cfn-lint", "--config", filepath.Join(f.dir, "missing.yaml")}, quietLogger(), io.Discard, io.Discard)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestListCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, execute([]string{"linters"}, quietLogger(), &out, io.Discard))

	got := out.String()
	assert.Contains(t, got, "LINTER")
	assert.Contains(t, got, "cfn-lint")
	assert.Contains(t, got, "cfn_lint_annotator")
	assert.Contains(t, got, "flake8_output.json")
	assert.Contains(t, got, "jshint_annotator")
}

func TestUnknownCommand(t *testing.T) {
	assert.Error(t, execute([]string{"eslint"}, quietLogger(), io.Discard, io.Discard))
}
