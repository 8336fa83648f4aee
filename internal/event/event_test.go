package event

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadSHA(t *testing.T) {
	table := []struct {
		Name    string
		Payload string
		SHA     string
		Err     bool
	}{
		{
			Name:    "pull request",
			Payload: `{"pull_request":{"head":{"sha":"abc123"}}}`,
			SHA:     "abc123",
		},
		{
			Name:    "check suite",
			Payload: `{"check_suite":{"pull_requests":[{"base":{"sha":"def456"}}]}}`,
			SHA:     "def456",
		},
		{
			Name:    "pull request wins over check suite",
			Payload: `{"pull_request":{"head":{"sha":"abc123"}},"check_suite":{"pull_requests":[{"base":{"sha":"def456"}}]}}`,
			SHA:     "abc123",
		},
		{
			Name:    "first check suite pull request",
			Payload: `{"check_suite":{"pull_requests":[{"base":{"sha":"one"}},{"base":{"sha":"two"}}]}}`,
			SHA:     "one",
		},
		{
			Name:    "neither shape",
			Payload: `{"push":{}}`,
			Err:     true,
		},
		{
			Name:    "check suite without pull requests",
			Payload: `{"check_suite":{"pull_requests":[]}}`,
			Err:     true,
		},
		{
			Name:    "empty pull request falls through to check suite",
			Payload: `{"pull_request":{},"check_suite":{"pull_requests":[{"base":{"sha":"def456"}}]}}`,
			SHA:     "def456",
		},
		{
			Name:    "null pull request falls through to check suite",
			Payload: `{"pull_request":null,"check_suite":{"pull_requests":[{"base":{"sha":"def456"}}]}}`,
			SHA:     "def456",
		},
		{
			Name:    "empty pull request alone",
			Payload: `{"pull_request":{}}`,
			Err:     true,
		},
		{
			Name:    "pull request without head",
			Payload: `{"pull_request":{"number":1}}`,
			Err:     true,
		},
	}

	for _, i := range table {
		t.Run(i.Name, func(t *testing.T) {
			ev, err := Parse([]byte(i.Payload))
			require.NoError(t, err)

			sha, err := ev.HeadSHA()
			if i.Err {
				assert.ErrorIs(t, err, ErrMissingKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, i.SHA, sha)
		})
	}
}

func TestRepoFullName(t *testing.T) {
	ev, err := Parse([]byte(`{"repository":{"full_name":"octo/hello"}}`))
	require.NoError(t, err)
	name, err := ev.RepoFullName()
	require.NoError(t, err)
	assert.Equal(t, "octo/hello", name)

	ev, err = Parse([]byte(`{}`))
	require.NoError(t, err)
	_, err = ev.RepoFullName()
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "event.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"pull_request":{"head":{"sha":"abc"}},"repository":{"full_name":"o/r"}}`), 0o600))

	ev, err := Load(path)
	require.NoError(t, err)
	sha, err := ev.HeadSHA()
	require.NoError(t, err)
	assert.Equal(t, "abc", sha)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"pull_request":`), 0o600))
	_, err = Load(bad)
	assert.Error(t, err)
}
