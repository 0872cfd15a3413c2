package fixtures

import (
	"fmt"
	"strings"
	"time"
)

// FixturePR pins a real GitHub PR used by live integration tests. The URLs
// should be refreshed periodically with real merged PRs; `gh pr list` against
// the upstream repos is the easiest way to find candidates.
type FixturePR struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// DefaultSet is the standard set of Prebid test PRs used across live
// integration tests.
func DefaultSet() []FixturePR {
	return []FixturePR{
		{Name: "small_js_feature", URL: "https://github.com/prebid/Prebid.js/pull/11000"},
		{Name: "medium_server_fix", URL: "https://github.com/prebid/prebid-server/pull/3200"},
		{Name: "docs_update", URL: "https://github.com/prebid/prebid.github.io/pull/4800"},
	}
}

// APIURL rewrites a github.com PR URL to its REST API equivalent.
func APIURL(prURL string) string {
	api := strings.Replace(prURL, "github.com", "api.github.com/repos", 1)
	return strings.Replace(api, "/pull/", "/pulls/", 1)
}

// CheckStatus enum
type CheckStatus string

const (
	CheckOK     CheckStatus = "ok"
	CheckFailed CheckStatus = "failed"
)

// CheckResult records the outcome of verifying one fixture URL.
type CheckResult struct {
	ID         int64       `json:"id,omitempty"`
	RunID      string      `json:"run_id"`
	TenantID   string      `json:"tenant_id,omitempty"`
	Name       string      `json:"name"`
	URL        string      `json:"url"`
	Status     CheckStatus `json:"status"`
	HTTPStatus int         `json:"http_status,omitempty"`
	Title      string      `json:"title,omitempty"`
	State      string      `json:"state,omitempty"`
	Error      string      `json:"error,omitempty"`
	CheckedAt  time.Time   `json:"checked_at"`
}

// PRInfo is the metadata returned for a reachable PR.
type PRInfo struct {
	Title string `json:"title"`
	State string `json:"state"`
}

// StatusError reports a non-200 response from the GitHub API.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.Code)
}
