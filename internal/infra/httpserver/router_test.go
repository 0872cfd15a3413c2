package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appai "github.com/prsentry/prsentry/internal/application/ai"
	appanalyses "github.com/prsentry/prsentry/internal/application/analyses"
	appfixtures "github.com/prsentry/prsentry/internal/application/fixtures"
	domain "github.com/prsentry/prsentry/internal/domain/analyses"
	domfix "github.com/prsentry/prsentry/internal/domain/fixtures"
)

type fakeRepo struct {
	byID map[domain.AnalysisID]*domain.Analysis
}

func (f *fakeRepo) Save(_ context.Context, a *domain.Analysis) error {
	if f.byID == nil {
		f.byID = map[domain.AnalysisID]*domain.Analysis{}
	}
	f.byID[a.ID] = a
	return nil
}

func (f *fakeRepo) Get(_ context.Context, _ string, id domain.AnalysisID) (*domain.Analysis, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return a, nil
}

func (f *fakeRepo) Latest(_ context.Context, _ string, _ int) ([]*domain.Analysis, error) {
	out := make([]*domain.Analysis, 0, len(f.byID))
	for _, a := range f.byID {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeRepo) Summary(_ context.Context, _ string, _ int) (int, int, int, error) {
	return 5, 4, 1, nil
}

func (f *fakeRepo) Paginate(_ context.Context, _ string, page, pageSize int, _ map[string]interface{}) (domain.PaginatedResult, error) {
	return domain.PaginatedResult{Page: page, PageSize: pageSize, Total: int64(len(f.byID))}, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, _ string, id domain.AnalysisID, status domain.Status) error {
	if a, ok := f.byID[id]; ok {
		a.Status = status
	}
	return nil
}

type fakeChecker struct{}

func (fakeChecker) Check(_ context.Context, _ string) (*domfix.PRInfo, error) {
	return &domfix.PRInfo{Title: "some pr", State: "open"}, nil
}

type fakeRunner struct{}

func (fakeRunner) Run(_ context.Context, _ domfix.RunRequest) (domfix.RunResult, error) {
	return domfix.RunResult{Passed: true}, nil
}

type fixedClock struct{}

func (fixedClock) Now() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }

type fakeAnalyst struct{}

func (fakeAnalyst) Analyze(_ context.Context, _ string) (string, error) {
	return `{"summary":"ok"}`, nil
}

type fakeStore struct{}

func (fakeStore) Upload(_ context.Context, _, key string) (string, error) {
	return "http://store.local/" + key, nil
}

func (fakeStore) UploadAndCleanup(ctx context.Context, localPath, key string) (string, error) {
	return fakeStore{}.Upload(ctx, localPath, key)
}

func newTestHandler(repo *fakeRepo) http.Handler {
	analysesSvc := &appanalyses.Service{
		Repo:      repo,
		Clock:     fixedClock{},
		Analyst:   fakeAnalyst{},
		Artifacts: fakeStore{},
	}
	aiSvc := appai.NewService(fakeAnalyst{}, repo)
	fixturesSvc := &appfixtures.Service{
		Checker: fakeChecker{},
		Runner:  fakeRunner{},
		Clock:   fixedClock{},
	}
	return NewRouter(analysesSvc, aiSvc, fixturesSvc, domfix.DefaultSet())
}

const testID = "d3b07384-d9a0-4c2b-8f3e-1a2b3c4d5e6f-pr"

func TestGetAnalysisNotFound(t *testing.T) {
	h := newTestHandler(&fakeRepo{})

	req := httptest.NewRequest(http.MethodGet, "/v1/acme/analyses/"+testID, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetAnalysisBadID(t *testing.T) {
	h := newTestHandler(&fakeRepo{})

	req := httptest.NewRequest(http.MethodGet, "/v1/acme/analyses/not-an-id", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAnalysisFound(t *testing.T) {
	repo := &fakeRepo{byID: map[domain.AnalysisID]*domain.Analysis{
		testID: {ID: testID, TenantID: "acme", OutputName: "pr11000", Status: domain.StatusSuccess},
	}}
	h := newTestHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/v1/acme/analyses/"+testID, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "pr11000", got.OutputName)
}

func TestSummary(t *testing.T) {
	h := newTestHandler(&fakeRepo{})

	req := httptest.NewRequest(http.MethodGet, "/v1/acme/summary?days=7", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.EqualValues(t, 5, got["total_analyses"])
	assert.EqualValues(t, 4, got["succeeded"])
}

func TestWebhookQueuesAnalysis(t *testing.T) {
	h := newTestHandler(&fakeRepo{})

	body := `{"kind":"pr","pr_url":"https://github.com/prebid/Prebid.js/pull/11000"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/acme/webhook/pr-analysis", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "queued", got["status"])
	assert.Equal(t, "acme", got["tenant"])
}

func TestFixturesVerify(t *testing.T) {
	h := newTestHandler(&fakeRepo{})

	req := httptest.NewRequest(http.MethodPost, "/v1/acme/fixtures/verify", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got []domfix.CheckResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, len(domfix.DefaultSet()))
	for _, r := range got {
		assert.Equal(t, domfix.CheckOK, r.Status)
	}
}

func TestFixturesList(t *testing.T) {
	h := newTestHandler(&fakeRepo{})

	req := httptest.NewRequest(http.MethodGet, "/v1/acme/fixtures", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Fixtures []domfix.FixturePR `json:"fixtures"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.Fixtures, 3)
}

func TestSuiteRunStarts(t *testing.T) {
	h := newTestHandler(&fakeRepo{})

	req := httptest.NewRequest(http.MethodPost, "/v1/acme/suite/run", strings.NewReader(`{"markers":["Live"]}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "started", got["status"])
}
