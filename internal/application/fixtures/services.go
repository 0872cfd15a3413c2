package fixtures

import (
	"context"

	"github.com/google/uuid"

	"github.com/prsentry/prsentry/internal/application"
	domain "github.com/prsentry/prsentry/internal/domain/fixtures"
)

// Service implements fixture verification use-cases.
type Service struct {
	Checker domain.Checker
	Repo    domain.Repository // optional; nil when results are print-only
	Runner  domain.SuiteRunner
	Clock   application.Clock

	// OnResult, when set, is called after each fixture is checked. The CLI
	// uses it to print a line per fixture as the pass progresses.
	OnResult func(domain.CheckResult)
}

// VerifyAll checks every fixture in order. A failing fixture never aborts
// the pass; the failure is recorded and the loop moves on.
func (s *Service) VerifyAll(ctx context.Context, tenant string, set []domain.FixturePR) []domain.CheckResult {
	runID := uuid.New().String()
	results := make([]domain.CheckResult, 0, len(set))

	for _, f := range set {
		res := domain.CheckResult{
			RunID:     runID,
			TenantID:  tenant,
			Name:      f.Name,
			URL:       f.URL,
			CheckedAt: s.Clock.Now(),
		}

		info, err := s.Checker.Check(ctx, f.URL)
		if err != nil {
			res.Status = domain.CheckFailed
			res.Error = err.Error()
			if se, ok := err.(*domain.StatusError); ok {
				res.HTTPStatus = se.Code
			}
		} else {
			res.Status = domain.CheckOK
			res.HTTPStatus = 200
			res.Title = info.Title
			res.State = info.State
		}

		if s.Repo != nil {
			_ = s.Repo.Save(ctx, &res)
		}
		if s.OnResult != nil {
			s.OnResult(res)
		}
		results = append(results, res)
	}
	return results
}

// Latest returns persisted results of recent verification passes.
func (s *Service) Latest(ctx context.Context, tenant string, limit int) ([]*domain.CheckResult, error) {
	if s.Repo == nil {
		return nil, nil
	}
	return s.Repo.Latest(ctx, tenant, limit)
}

// RunLiveSuite runs the live integration suite that exercises the fixtures.
// Pass/fail comes from the runner exit code alone.
func (s *Service) RunLiveSuite(ctx context.Context, path string) (domain.RunResult, error) {
	return s.Runner.Run(ctx, domain.RunRequest{
		Markers: []string{"Live"},
		Path:    path,
		Verbose: true,
	})
}

// RunSuite runs the suite with caller-chosen markers.
func (s *Service) RunSuite(ctx context.Context, req domain.RunRequest) (domain.RunResult, error) {
	return s.Runner.Run(ctx, req)
}
