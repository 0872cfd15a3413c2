package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/prsentry/prsentry/internal/domain/fixtures"
)

type FixtureCheckRepository struct {
	db *sql.DB
}

func NewFixtureCheckRepository(db *sql.DB) *FixtureCheckRepository {
	return &FixtureCheckRepository{db: db}
}

func (r *FixtureCheckRepository) Save(ctx context.Context, c *domain.CheckResult) error {
	const q = `
INSERT INTO fixture_checks
  (run_id, tenant_id, name, url, status, http_status, title, state, error, checked_at)
VALUES (?,?,?,?,?,?,?,?,?,?)
`
	tenant := stringOrDash(c.TenantID)
	checked := c.CheckedAt
	if checked.IsZero() {
		checked = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		c.RunID, tenant, c.Name, c.URL, c.Status, c.HTTPStatus,
		c.Title, c.State, c.Error, checked,
	)
	return err
}

func (r *FixtureCheckRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.CheckResult, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, run_id, tenant_id, name, url, status, http_status, title, state, error, checked_at
FROM fixture_checks
WHERE tenant_id = ?
ORDER BY checked_at DESC, id DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.CheckResult
	for rows.Next() {
		var c domain.CheckResult
		if err := rows.Scan(
			&c.ID, &c.RunID, &c.TenantID, &c.Name, &c.URL, &c.Status,
			&c.HTTPStatus, &c.Title, &c.State, &c.Error, &c.CheckedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
