// Package githubapi provides a small GitHub REST client for publishing check runs.
package githubapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v32/github"
)

const (
	// DefaultBaseURL is the public GitHub REST endpoint.
	DefaultBaseURL = "https://api.github.com"
	// DefaultTimeout bounds a single API request.
	DefaultTimeout = 30 * time.Second

	acceptHeader = "application/vnd.github+json"
)

// ClientConfig configures a Client.
type ClientConfig struct {
	// BaseURL is the API root, e.g. https://api.github.com or a GHES /api/v3 URL.
	BaseURL string
	// Token is sent as "Authorization: token <Token>".
	Token string
	// Timeout is the per-request timeout used when HTTPClient is nil.
	Timeout time.Duration
	// HTTPClient overrides the default client. Its transport is wrapped to set auth headers.
	HTTPClient *http.Client
	// Logger receives debug output; nil disables it.
	Logger *slog.Logger
}

// Client talks to the GitHub checks API through go-github.
type Client struct {
	logger  *slog.Logger
	http    *http.Client
	gh      *github.Client
	baseURL string
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg ClientConfig) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return nil, fmt.Errorf("invalid api url %q, expected http(s)://host", cfg.BaseURL)
	}
	// go-github resolves endpoints relative to BaseURL, which must end with a slash.
	u, err := url.Parse(base + "/")
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}

	httpClient := &http.Client{Timeout: DefaultTimeout}
	if cfg.HTTPClient != nil {
		copied := *cfg.HTTPClient
		httpClient = &copied
	} else if cfg.Timeout > 0 {
		httpClient.Timeout = cfg.Timeout
	}
	httpClient.Transport = &headerTransport{token: cfg.Token, base: httpClient.Transport}

	gh := github.NewClient(httpClient)
	gh.BaseURL = u
	gh.UserAgent = "annotator"

	return &Client{
		logger:  cfg.Logger,
		http:    httpClient,
		gh:      gh,
		baseURL: base,
	}, nil
}

// headerTransport replaces go-github's preview Accept header and adds token auth.
// When the request context carries a body sink, the response body is copied into it.
type headerTransport struct {
	token string
	base  http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Authorization", "token "+t.token)

	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if sink, ok := req.Context().Value(bodySinkKey{}).(*bytes.Buffer); ok && sink != nil {
		raw, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read response body: %w", err)
		}
		sink.Write(raw)
		resp.Body = io.NopCloser(bytes.NewReader(raw))
	}
	return resp, nil
}

type bodySinkKey struct{}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("github api: unexpected status %d", e.Code)
	}
	return fmt.Sprintf("github api: unexpected status %d: %s", e.Code, e.Body)
}

// CreateCheckRun posts run to the repository identified by the owner/repo slug.
// Any 2xx status is success, even when the body cannot be decoded.
func (c *Client) CreateCheckRun(ctx context.Context, repo string, run *CheckRun) (*CheckRunResponse, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}
	opts, err := createOptions(run)
	if err != nil {
		return nil, err
	}

	if c.logger != nil {
		c.logger.Debug("github check run request", "url", fmt.Sprintf("%s/repos/%s/%s/check-runs", c.baseURL, owner, name))
	}

	var raw bytes.Buffer
	created, resp, err := c.gh.Checks.CreateCheckRun(context.WithValue(ctx, bodySinkKey{}, &raw), owner, name, opts)
	body := raw.Bytes()
	if resp == nil {
		return nil, fmt.Errorf("post check run: %w", err)
	}
	if c.logger != nil {
		c.logger.Debug("github check run response", "status", resp.StatusCode, "body", string(body))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	out := &CheckRunResponse{Raw: body}
	if err != nil {
		var accepted *github.AcceptedError
		if !errors.As(err, &accepted) && c.logger != nil {
			c.logger.Debug("github check run response not decoded", "err", err)
		}
		return out, nil
	}
	out.ID = created.GetID()
	out.HTMLURL = created.GetHTMLURL()
	return out, nil
}

// createOptions maps the payload onto go-github's request model.
func createOptions(run *CheckRun) (github.CreateCheckRunOptions, error) {
	opts := github.CreateCheckRunOptions{
		Name:    run.Name,
		HeadSHA: run.HeadSHA,
		Output: &github.CheckRunOutput{
			Title:   github.String(run.Output.Title),
			Summary: github.String(run.Output.Summary),
			Text:    github.String(run.Output.Text),
		},
	}
	if run.ExternalID != "" {
		opts.ExternalID = github.String(run.ExternalID)
	}
	if run.Status != "" {
		opts.Status = github.String(run.Status)
	}
	if run.Conclusion != "" {
		opts.Conclusion = github.String(run.Conclusion)
	}
	if run.CompletedAt != "" {
		ts, err := time.Parse(time.RFC3339, run.CompletedAt)
		if err != nil {
			return opts, fmt.Errorf("encode check run: completed_at: %w", err)
		}
		opts.CompletedAt = &github.Timestamp{Time: ts}
	}
	for _, a := range run.Output.Annotations {
		opts.Output.Annotations = append(opts.Output.Annotations, &github.CheckRunAnnotation{
			Path:            github.String(a.Path),
			StartLine:       github.Int(a.StartLine),
			EndLine:         github.Int(a.EndLine),
			StartColumn:     github.Int(a.StartColumn),
			EndColumn:       github.Int(a.EndColumn),
			AnnotationLevel: github.String(string(a.Level)),
			Message:         github.String(a.Message),
		})
	}
	return opts, nil
}

func splitRepo(repo string) (string, string, error) {
	repo = strings.TrimSpace(repo)
	if repo == "" {
		return "", "", fmt.Errorf("repository is empty")
	}
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return "", "", fmt.Errorf("invalid repository slug %q, expected owner/repo", repo)
	}
	return parts[0], parts[1], nil
}
