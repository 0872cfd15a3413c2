package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	domain "github.com/prsentry/prsentry/internal/domain/analyses"
)

type AnalysisRepository struct{ db *sql.DB }

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository { return &AnalysisRepository{db: db} }

const analysisColumns = `id, tenant_id, triggered_at, kind, pr_url, pr_number, repo_name,
       release_tag, batch_type, batch_id, status, output_name,
       artifact_url, result_json, duration_ms, source`

// Save insert/update Analysis record
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO pr_analyses
(id, tenant_id, triggered_at, kind, pr_url, pr_number, repo_name,
 release_tag, batch_type, batch_id, status, output_name,
 artifact_url, result_json, duration_ms, source)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
ON CONFLICT (id) DO UPDATE SET
 status = EXCLUDED.status,
 output_name = EXCLUDED.output_name,
 artifact_url = EXCLUDED.artifact_url,
 result_json = EXCLUDED.result_json,
 duration_ms = EXCLUDED.duration_ms;`

	tenant := stringOrDash(a.TenantID)
	kind := stringOrDash(string(a.Kind))
	status := stringOrDash(string(a.Status))
	triggered := a.TriggeredAt
	if triggered.IsZero() {
		triggered = time.Now()
	}
	result := a.Result
	if strings.TrimSpace(result) == "" {
		result = "{}"
	}

	_, err := r.db.ExecContext(ctx, q,
		a.ID, tenant, triggered, kind, a.PRURL, a.PRNumber, a.RepoName,
		a.ReleaseTag, a.BatchType, a.BatchID, status, a.OutputName,
		a.ArtifactURL, result, a.DurationMS, a.Source,
	)
	return err
}

// Get by ID + Tenant
func (r *AnalysisRepository) Get(ctx context.Context, tenant string, id domain.AnalysisID) (*domain.Analysis, error) {
	q := `SELECT ` + analysisColumns + `
FROM pr_analyses
WHERE tenant_id=$1 AND id=$2
LIMIT 1;`
	return scanAnalysis(r.db.QueryRowContext(ctx, q, tenant, id))
}

// Latest analyses per tenant
func (r *AnalysisRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT ` + analysisColumns + `
FROM pr_analyses
WHERE tenant_id=$1 ORDER BY triggered_at DESC LIMIT $2;`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Summary counts analysis outcomes since N days
func (r *AnalysisRepository) Summary(ctx context.Context, tenant string, sinceDays int) (int, int, int, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	cut := time.Now().AddDate(0, 0, -sinceDays)

	const q = `
SELECT COUNT(*),
       COALESCE(SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END),0),
       COALESCE(SUM(CASE WHEN status IN ('failed','error') THEN 1 ELSE 0 END),0)
FROM pr_analyses
WHERE tenant_id=$1 AND triggered_at >= $2;`
	var total, succeeded, failed int
	if err := r.db.QueryRowContext(ctx, q, tenant, cut).Scan(&total, &succeeded, &failed); err != nil {
		return 0, 0, 0, err
	}
	return total, succeeded, failed, nil
}

// Paginate with offset + limit
func (r *AnalysisRepository) Paginate(ctx context.Context, tenant string, page, pageSize int, filters map[string]interface{}) (domain.PaginatedResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := `SELECT ` + analysisColumns + `
FROM pr_analyses
WHERE tenant_id=$1`
	args := []interface{}{tenant}
	query, args = applyFilters(query, args, filters)

	query += fmt.Sprintf("\nORDER BY triggered_at DESC, id DESC\nLIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	var list []*domain.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return domain.PaginatedResult{}, fmt.Errorf("scanning row: %w", err)
		}
		list = append(list, a)
	}
	if err = rows.Err(); err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("iterating rows: %w", err)
	}

	total, err := r.Count(ctx, tenant, filters)
	if err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("getting total count: %w", err)
	}

	return domain.PaginatedResult{
		Data:       list,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// UpdateStatus hanya update kolom status
func (r *AnalysisRepository) UpdateStatus(ctx context.Context, tenant string, id domain.AnalysisID, status domain.Status) error {
	const q = `
UPDATE pr_analyses
SET status = $1
WHERE tenant_id = $2 AND id = $3;`
	_, err := r.db.ExecContext(ctx, q, status, tenant, id)
	return err
}

// Count returns the total number of records matching the given filters
func (r *AnalysisRepository) Count(ctx context.Context, tenant string, filters map[string]interface{}) (int64, error) {
	query := "SELECT COUNT(*) FROM pr_analyses WHERE tenant_id = $1"
	args := []interface{}{tenant}
	query, args = applyFilters(query, args, filters)

	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func applyFilters(query string, args []interface{}, filters map[string]interface{}) (string, []interface{}) {
	if filters == nil {
		return query, args
	}
	for key, value := range filters {
		switch key {
		case "kind":
			query += fmt.Sprintf(" AND kind = $%d", len(args)+1)
			args = append(args, value)
		case "status":
			query += fmt.Sprintf(" AND status = $%d", len(args)+1)
			args = append(args, value)
		case "output_name":
			query += fmt.Sprintf(" AND output_name LIKE $%d", len(args)+1)
			args = append(args, "%"+escapeLikePattern(value.(string))+"%")
		case "source":
			query += fmt.Sprintf(" AND source = $%d", len(args)+1)
			args = append(args, value)
		}
	}
	return query, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*domain.Analysis, error) {
	var a domain.Analysis
	if err := row.Scan(
		&a.ID, &a.TenantID, &a.TriggeredAt, &a.Kind, &a.PRURL, &a.PRNumber, &a.RepoName,
		&a.ReleaseTag, &a.BatchType, &a.BatchID, &a.Status, &a.OutputName,
		&a.ArtifactURL, &a.Result, &a.DurationMS, &a.Source,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
