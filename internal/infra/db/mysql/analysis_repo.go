package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	domain "github.com/prsentry/prsentry/internal/domain/analyses"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

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
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 status=VALUES(status), output_name=VALUES(output_name),
 artifact_url=VALUES(artifact_url), result_json=VALUES(result_json),
 duration_ms=VALUES(duration_ms);
`
	// Ensure non-nullable string fields have safe defaults
	tenant := stringOrDash(a.TenantID)
	kind := stringOrDash(string(a.Kind))
	status := stringOrDash(string(a.Status))
	triggered := a.TriggeredAt
	if triggered.IsZero() {
		triggered = time.Now()
	}
	result := a.Result
	if strings.TrimSpace(result) == "" {
		// result_json column requires valid JSON; use empty object
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
WHERE tenant_id=? AND id=? LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, tenant, id)

	a, err := scanAnalysis(row)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Latest analyses per tenant
func (r *AnalysisRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT ` + analysisColumns + `
FROM pr_analyses
WHERE tenant_id=? ORDER BY triggered_at DESC LIMIT ?;`
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
SELECT COUNT(*) AS total,
       COALESCE(SUM(status='success'),0) AS succeeded,
       COALESCE(SUM(status IN ('failed','error')),0) AS failed
FROM pr_analyses
WHERE tenant_id=? AND triggered_at >= ?;
`
	var total, succeeded, failed int
	if err := r.db.QueryRowContext(ctx, q, tenant, cut).Scan(&total, &succeeded, &failed); err != nil {
		return 0, 0, 0, err
	}
	return total, succeeded, failed, nil
}

// Paginate with offset + limit (classic pagination)
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
WHERE tenant_id=?`
	args := []interface{}{tenant}
	query, args = applyFilters(query, args, filters)

	query += "\nORDER BY triggered_at DESC, id DESC\nLIMIT ? OFFSET ?"
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
SET status = ?
WHERE tenant_id = ? AND id = ?;`
	_, err := r.db.ExecContext(ctx, q, status, tenant, id)
	return err
}

// Count returns the total number of records matching the given filters
func (r *AnalysisRepository) Count(ctx context.Context, tenant string, filters map[string]interface{}) (int64, error) {
	query := "SELECT COUNT(*) FROM pr_analyses WHERE tenant_id = ?"
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
			query += " AND kind = ?"
			args = append(args, value)
		case "status":
			query += " AND status = ?"
			args = append(args, value)
		case "output_name":
			// LIKE with escaped wildcards to prevent SQL injection
			query += " AND output_name LIKE ?"
			args = append(args, "%"+escapeLikePattern(value.(string))+"%")
		case "source":
			query += " AND source = ?"
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

// escapeLikePattern escapes special characters in LIKE patterns to prevent SQL injection
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
