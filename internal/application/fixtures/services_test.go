package fixtures

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prsentry/prsentry/internal/application"
	domain "github.com/prsentry/prsentry/internal/domain/fixtures"
)

type fakeChecker struct {
	infos map[string]*domain.PRInfo
	errs  map[string]error
}

func (c *fakeChecker) Check(_ context.Context, prURL string) (*domain.PRInfo, error) {
	if err, ok := c.errs[prURL]; ok {
		return nil, err
	}
	return c.infos[prURL], nil
}

type fakeResultRepo struct {
	saved []*domain.CheckResult
}

func (r *fakeResultRepo) Save(_ context.Context, res *domain.CheckResult) error {
	r.saved = append(r.saved, res)
	return nil
}

func (r *fakeResultRepo) Latest(_ context.Context, _ string, _ int) ([]*domain.CheckResult, error) {
	return r.saved, nil
}

type fakeRunner struct {
	got    domain.RunRequest
	result domain.RunResult
}

func (r *fakeRunner) Run(_ context.Context, req domain.RunRequest) (domain.RunResult, error) {
	r.got = req
	return r.result, nil
}

func TestVerifyAllRecordsEveryFixture(t *testing.T) {
	set := []domain.FixturePR{
		{Name: "ok_pr", URL: "https://github.com/o/r/pull/1"},
		{Name: "gone_pr", URL: "https://github.com/o/r/pull/2"},
		{Name: "net_err", URL: "https://github.com/o/r/pull/3"},
	}
	checker := &fakeChecker{
		infos: map[string]*domain.PRInfo{
			"https://github.com/o/r/pull/1": {Title: "Fix auth bug", State: "merged"},
		},
		errs: map[string]error{
			"https://github.com/o/r/pull/2": &domain.StatusError{Code: 404},
			"https://github.com/o/r/pull/3": errors.New("dial tcp: timeout"),
		},
	}
	repo := &fakeResultRepo{}

	var seen []string
	svc := &Service{
		Checker: checker,
		Repo:    repo,
		Clock:   application.SystemClock{},
		OnResult: func(r domain.CheckResult) {
			seen = append(seen, r.Name)
		},
	}

	results := svc.VerifyAll(context.Background(), "prebid", set)
	require.Len(t, results, 3)

	assert.Equal(t, domain.CheckOK, results[0].Status)
	assert.Equal(t, "Fix auth bug", results[0].Title)
	assert.Equal(t, "merged", results[0].State)
	assert.Equal(t, 200, results[0].HTTPStatus)

	assert.Equal(t, domain.CheckFailed, results[1].Status)
	assert.Equal(t, 404, results[1].HTTPStatus)

	assert.Equal(t, domain.CheckFailed, results[2].Status)
	assert.Contains(t, results[2].Error, "timeout")
	assert.Zero(t, results[2].HTTPStatus)

	// every result persisted and reported, same run id throughout
	assert.Len(t, repo.saved, 3)
	assert.Equal(t, []string{"ok_pr", "gone_pr", "net_err"}, seen)
	assert.Equal(t, results[0].RunID, results[2].RunID)
	assert.False(t, results[0].CheckedAt.After(time.Now()))
}

func TestVerifyAllWithoutRepo(t *testing.T) {
	svc := &Service{
		Checker: &fakeChecker{infos: map[string]*domain.PRInfo{
			"https://github.com/o/r/pull/1": {Title: "Docs update", State: "closed"},
		}},
		Clock: application.SystemClock{},
	}
	results := svc.VerifyAll(context.Background(), "", []domain.FixturePR{
		{Name: "a", URL: "https://github.com/o/r/pull/1"},
	})
	require.Len(t, results, 1)
	assert.Equal(t, domain.CheckOK, results[0].Status)
}

func TestRunLiveSuite(t *testing.T) {
	runner := &fakeRunner{result: domain.RunResult{Passed: true, ExitCode: 0}}
	svc := &Service{Runner: runner, Clock: application.SystemClock{}}

	res, err := svc.RunLiveSuite(context.Background(), "./internal/...")
	require.NoError(t, err)
	assert.True(t, res.Passed)
	assert.Equal(t, []string{"Live"}, runner.got.Markers)
	assert.Equal(t, "./internal/...", runner.got.Path)
	assert.True(t, runner.got.Verbose)
}
