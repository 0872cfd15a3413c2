package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/prsentry/prsentry/internal/domain/analyses"
)

func TestSaveInsertsAnalysis(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO pr_analyses").
		WithArgs(
			"abc-pr", "prebid", sqlmock.AnyArg(), "pr",
			"https://github.com/prebid/Prebid.js/pull/11000", "11000", "",
			"", "", "", "success", "pr11000",
			"http://store/pr11000.json", `{"summary":"ok"}`, int64(1200), "webhook",
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewAnalysisRepository(db)
	err = repo.Save(context.Background(), &domain.Analysis{
		ID:          "abc-pr",
		TenantID:    "prebid",
		TriggeredAt: time.Now(),
		Kind:        domain.KindPR,
		PRURL:       "https://github.com/prebid/Prebid.js/pull/11000",
		PRNumber:    "11000",
		Status:      domain.StatusSuccess,
		OutputName:  "pr11000",
		ArtifactURL: "http://store/pr11000.json",
		Result:      `{"summary":"ok"}`,
		DurationMS:  1200,
		Source:      "webhook",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveDefaultsEmptyFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// empty tenant/kind/status become "-", empty result becomes "{}"
	mock.ExpectExec("INSERT INTO pr_analyses").
		WithArgs(
			"abc-pr", "-", sqlmock.AnyArg(), "-",
			"", "", "", "", "", "", "-", "",
			"", "{}", int64(0), "",
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewAnalysisRepository(db)
	err = repo.Save(context.Background(), &domain.Analysis{ID: "abc-pr"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetScansRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cols := []string{
		"id", "tenant_id", "triggered_at", "kind", "pr_url", "pr_number", "repo_name",
		"release_tag", "batch_type", "batch_id", "status", "output_name",
		"artifact_url", "result_json", "duration_ms", "source",
	}
	mock.ExpectQuery("SELECT (.+) FROM pr_analyses").
		WithArgs("prebid", "abc-pr").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			"abc-pr", "prebid", time.Now(), "pr", "u", "11000", "",
			"", "", "", "success", "pr11000",
			"http://store/pr11000.json", "{}", int64(5), "webhook",
		))

	repo := NewAnalysisRepository(db)
	a, err := repo.Get(context.Background(), "prebid", "abc-pr")
	require.NoError(t, err)
	assert.Equal(t, domain.AnalysisID("abc-pr"), a.ID)
	assert.Equal(t, "pr11000", a.OutputName)
	assert.Equal(t, domain.StatusSuccess, a.Status)
}

func TestSummaryDefaultsDays(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("prebid", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"total", "succeeded", "failed"}).AddRow(10, 8, 2))

	repo := NewAnalysisRepository(db)
	total, ok, failed, err := repo.Summary(context.Background(), "prebid", 0)
	require.NoError(t, err)
	assert.Equal(t, 10, total)
	assert.Equal(t, 8, ok)
	assert.Equal(t, 2, failed)
}

func TestUpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE pr_analyses").
		WithArgs("error", "prebid", "abc-pr").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewAnalysisRepository(db)
	err = repo.UpdateStatus(context.Background(), "prebid", "abc-pr", domain.StatusError)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLikePattern(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLikePattern("100%"))
	assert.Equal(t, `pr\_analysis`, escapeLikePattern("pr_analysis"))
	assert.Equal(t, `a\\b`, escapeLikePattern(`a\b`))
}
