package analyses

import "context"

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, a *Analysis) error
	Get(ctx context.Context, tenant string, id AnalysisID) (*Analysis, error)
	Latest(ctx context.Context, tenant string, limit int) ([]*Analysis, error)
	Summary(ctx context.Context, tenant string, sinceDays int) (int, int, int, error)
	Paginate(ctx context.Context, tenant string, page, pageSize int, filters map[string]interface{}) (PaginatedResult, error)
	UpdateStatus(ctx context.Context, tenant string, id AnalysisID, status Status) error
}

// ArtifactStore port (interface untuk penyimpanan report artifacts)
type ArtifactStore interface {
	Upload(ctx context.Context, localPath, key string) (string, error)
	UploadAndCleanup(ctx context.Context, localPath, key string) (string, error)
}

// MetadataSource resolves PR metadata used to enrich an analysis.
type MetadataSource interface {
	PRInfo(ctx context.Context, prURL string) (title, state string, err error)
}
