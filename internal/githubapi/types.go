// Package githubapi provides minimal GitHub API models for the checks REST API.
package githubapi

import "github.com/codex-k8s/annotator/internal/annotation"

// MaxAnnotationsPerRequest is the number of annotations the checks API accepts in one request.
const MaxAnnotationsPerRequest = 50

const (
	// StatusCompleted is the check-run status used when results are reported in one call.
	StatusCompleted = "completed"
	// ConclusionSuccess marks a check run without findings.
	ConclusionSuccess = "success"
	// ConclusionFailure marks a check run with at least one finding.
	ConclusionFailure = "failure"
)

// CheckRun is the request body of POST /repos/{owner}/{repo}/check-runs.
type CheckRun struct {
	// Name is the check name shown on the pull request.
	Name string `json:"name"`
	// HeadSHA is the commit the check run is attached to.
	HeadSHA string `json:"head_sha"`
	// ExternalID correlates the check run with the invocation that produced it.
	ExternalID string `json:"external_id,omitempty"`
	// Status is always StatusCompleted here.
	Status string `json:"status"`
	// Conclusion is ConclusionSuccess or ConclusionFailure.
	Conclusion string `json:"conclusion"`
	// CompletedAt is an ISO 8601 timestamp.
	CompletedAt string `json:"completed_at"`
	// Output holds the summary and annotations.
	Output CheckRunOutput `json:"output"`
}

// CheckRunOutput is the output block of a check run.
type CheckRunOutput struct {
	Title       string                  `json:"title"`
	Summary     string                  `json:"summary"`
	Text        string                  `json:"text"`
	Annotations []annotation.Annotation `json:"annotations"`
}

// CheckRunResponse is the subset of the created check run returned by GitHub.
type CheckRunResponse struct {
	// ID is the check run id.
	ID int64 `json:"id"`
	// HTMLURL links to the check run page.
	HTMLURL string `json:"html_url"`
	// Raw is the undecoded response body.
	Raw []byte `json:"-"`
}
