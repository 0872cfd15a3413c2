package fixtures

import "context"

// Checker port (interface untuk pengecekan PR URL)
type Checker interface {
	Check(ctx context.Context, prURL string) (*PRInfo, error)
}

// Repository port for persisting and querying verification results
type Repository interface {
	Save(ctx context.Context, r *CheckResult) error
	Latest(ctx context.Context, tenant string, limit int) ([]*CheckResult, error)
}

// SuiteRunner executes the integration suite that exercises the fixtures.
type SuiteRunner interface {
	Run(ctx context.Context, req RunRequest) (RunResult, error)
}

// RunRequest untuk SuiteRunner
type RunRequest struct {
	Markers []string
	Path    string
	Verbose bool
}

// RunResult hasil dari SuiteRunner
type RunResult struct {
	Passed     bool   `json:"passed"`
	ExitCode   int    `json:"exit_code"`
	DurationMS int64  `json:"duration_ms"`
	Command    string `json:"command"`
}
