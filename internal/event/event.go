// Package event reads the GitHub Actions trigger event that started the workflow run.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrMissingKey is returned when the event payload lacks a key the annotator needs.
var ErrMissingKey = errors.New("event payload missing key")

// Event is the subset of a pull_request or check_suite webhook payload used by the annotator.
type Event struct {
	PullRequest *PullRequest `json:"pull_request"`
	CheckSuite  *CheckSuite  `json:"check_suite"`
	Repository  *Repository  `json:"repository"`
}

// PullRequest is the pull request object of a pull_request event.
type PullRequest struct {
	Number int     `json:"number"`
	Head   *GitRef `json:"head"`
	Base   *GitRef `json:"base"`

	empty bool
}

// UnmarshalJSON records whether the object had no keys at all.
func (p *PullRequest) UnmarshalJSON(data []byte) error {
	type plain PullRequest
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var out plain
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*p = PullRequest(out)
	p.empty = len(fields) == 0
	return nil
}

// CheckSuite is the check_suite object of a check_suite event.
type CheckSuite struct {
	HeadSHA      string        `json:"head_sha"`
	PullRequests []PullRequest `json:"pull_requests"`
}

// GitRef is a head or base reference of a pull request.
type GitRef struct {
	Ref string `json:"ref"`
	SHA string `json:"sha"`
}

// Repository identifies the repository the event was raised in.
type Repository struct {
	FullName string `json:"full_name"`
}

// Load reads and decodes the event file at path.
func Load(path string) (*Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event file: %w", err)
	}
	return Parse(data)
}

// Parse decodes an event payload.
func Parse(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("decode event payload: %w", err)
	}
	return &ev, nil
}

// HeadSHA returns the commit the check run is attached to.
// Pull request events use the PR head; check suite events use the base of the first listed PR.
// A null or empty pull_request object counts as absent.
func (e *Event) HeadSHA() (string, error) {
	if e.PullRequest != nil && !e.PullRequest.empty {
		if e.PullRequest.Head == nil {
			return "", fmt.Errorf("%w: pull_request.head", ErrMissingKey)
		}
		return e.PullRequest.Head.SHA, nil
	}
	if e.CheckSuite == nil {
		return "", fmt.Errorf("%w: check_suite", ErrMissingKey)
	}
	if len(e.CheckSuite.PullRequests) == 0 {
		return "", fmt.Errorf("%w: check_suite.pull_requests[0]", ErrMissingKey)
	}
	base := e.CheckSuite.PullRequests[0].Base
	if base == nil {
		return "", fmt.Errorf("%w: check_suite.pull_requests[0].base", ErrMissingKey)
	}
	return base.SHA, nil
}

// RepoFullName returns the owner/name slug of the repository.
func (e *Event) RepoFullName() (string, error) {
	if e.Repository == nil {
		return "", fmt.Errorf("%w: repository", ErrMissingKey)
	}
	return e.Repository.FullName, nil
}
