package analyses

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/prsentry/prsentry/internal/application"
	domai "github.com/prsentry/prsentry/internal/domain/ai"
	domain "github.com/prsentry/prsentry/internal/domain/analyses"
)

// Service implements use-cases untuk Analysis
// Service is designed to be used concurrently and is thread-safe
type Service struct {
	Repo      domain.Repository
	Metadata  domain.MetadataSource
	Analyst   domai.Client
	Artifacts domain.ArtifactStore
	Clock     application.Clock
}

//
// ==== USE CASES ====
//

// Command untuk trigger analysis
type TriggerAnalysisCommand struct {
	TenantID   string
	Kind       string
	PRURL      string
	RepoName   string
	ReleaseTag string
	BatchType  string
	BatchID    string
	BaseName   string
	Source     string
	Data       map[string]any
	Metadata   any
}

type TriggerAnalysisResult struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	OutputName  string `json:"output_name"`
	ArtifactURL string `json:"artifact_url"`
	DurationMS  int64  `json:"duration_ms"`
}

// TriggerAnalysisUntilDone runs the analysis with context.Background() so a
// caller firing it from a request goroutine does not get cancelled mid-run.
func (s *Service) TriggerAnalysisUntilDone(cmd TriggerAnalysisCommand) (TriggerAnalysisResult, error) {
	return s.TriggerAnalysis(context.Background(), cmd)
}

// TriggerAnalysis fetch PR metadata → run AI analysis → derive output name →
// upload report artifact → simpan ke repo
func (s *Service) TriggerAnalysis(ctx context.Context, cmd TriggerAnalysisCommand) (TriggerAnalysisResult, error) {
	now := s.Clock.Now()
	kind := normalizeKind(cmd.Kind)
	id := fmt.Sprintf("%s-%s", uuid.New().String(), kind)

	// Create an initial analysis row so we always have an ID to reference
	initial := &domain.Analysis{
		ID:          domain.AnalysisID(id),
		TenantID:    cmd.TenantID,
		TriggeredAt: now,
		Kind:        kind,
		PRURL:       cmd.PRURL,
		PRNumber:    prNumberFrom(cmd.Data),
		RepoName:    cmd.RepoName,
		ReleaseTag:  cmd.ReleaseTag,
		BatchType:   cmd.BatchType,
		BatchID:     cmd.BatchID,
		Status:      domain.StatusRunning,
		Source:      cmd.Source,
		Metadata:    cmd.Metadata,
	}
	if err := s.Repo.Save(ctx, initial); err != nil {
		return TriggerAnalysisResult{ID: id, Status: string(domain.StatusError)}, err
	}

	// Enrich from GitHub when the command carries a PR URL. Metadata being
	// unreachable is not fatal; the analysis still runs on the data we have.
	data := cmd.Data
	if data == nil {
		data = map[string]any{}
	}
	if cmd.PRURL != "" && s.Metadata != nil {
		if title, state, err := s.Metadata.PRInfo(ctx, cmd.PRURL); err == nil {
			data["pr_title"] = title
			data["pr_state"] = state
		}
	}

	result, err := s.Analyst.Analyze(ctx, cmd.PRURL)
	if err != nil {
		_ = s.Repo.UpdateStatus(context.Background(), cmd.TenantID, domain.AnalysisID(id), domain.StatusError)
		return TriggerAnalysisResult{ID: id, Status: string(domain.StatusError)}, err
	}

	name := OutputName(cmd)
	localPath, err := writeReport(name, result)
	if err != nil {
		_ = s.Repo.UpdateStatus(context.Background(), cmd.TenantID, domain.AnalysisID(id), domain.StatusError)
		return TriggerAnalysisResult{ID: id, Status: string(domain.StatusError)}, err
	}

	key := fmt.Sprintf("%s/%s/%s.json", cmd.TenantID, kind, name)
	url, err := s.Artifacts.UploadAndCleanup(ctx, localPath, key)
	if err != nil {
		os.Remove(localPath)
		return TriggerAnalysisResult{ID: id, Status: string(domain.StatusError)}, err
	}

	final := &domain.Analysis{
		ID:          domain.AnalysisID(id),
		TenantID:    cmd.TenantID,
		TriggeredAt: now,
		Kind:        kind,
		PRURL:       cmd.PRURL,
		PRNumber:    prNumberFrom(data),
		RepoName:    cmd.RepoName,
		ReleaseTag:  cmd.ReleaseTag,
		BatchType:   cmd.BatchType,
		BatchID:     cmd.BatchID,
		Status:      domain.StatusSuccess,
		OutputName:  name,
		ArtifactURL: url,
		Result:      result,
		DurationMS:  time.Since(now).Milliseconds(),
		Source:      cmd.Source,
		Metadata:    cmd.Metadata,
	}
	if err := s.Repo.Save(ctx, final); err != nil {
		return TriggerAnalysisResult{ID: id, Status: string(final.Status)}, err
	}

	return TriggerAnalysisResult{
		ID:          string(final.ID),
		Status:      string(final.Status),
		OutputName:  final.OutputName,
		ArtifactURL: final.ArtifactURL,
		DurationMS:  final.DurationMS,
	}, nil
}

// MarkFailed flags an analysis whose background run did not complete.
func (s *Service) MarkFailed(tenant string, id string) error {
	return s.Repo.UpdateStatus(context.Background(), tenant, domain.AnalysisID(id), domain.StatusFailed)
}

// Latest ambil N analyses terakhir
func (s *Service) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Analysis, error) {
	return s.Repo.Latest(ctx, tenant, limit)
}

// Get ambil 1 analysis by id
func (s *Service) Get(ctx context.Context, tenant string, id domain.AnalysisID) (*domain.Analysis, error) {
	return s.Repo.Get(ctx, tenant, id)
}

// Paginate lists analyses page by page with optional filters.
func (s *Service) Paginate(ctx context.Context, tenant string, page, pageSize int, filters map[string]interface{}) (domain.PaginatedResult, error) {
	return s.Repo.Paginate(ctx, tenant, page, pageSize, filters)
}

// Summary rekap hasil analysis N hari terakhir
func (s *Service) Summary(ctx context.Context, tenant string, sinceDays int) (map[string]any, error) {
	total, succeeded, failed, err := s.Repo.Summary(ctx, tenant, sinceDays)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"total_analyses": total,
		"succeeded":      succeeded,
		"failed":         failed,
	}, nil
}

// OutputName derives the artifact base name for a command, per kind.
func OutputName(cmd TriggerAnalysisCommand) string {
	switch normalizeKind(cmd.Kind) {
	case domain.KindRelease:
		return domain.ReleaseName(cmd.RepoName, cmd.ReleaseTag, cmd.BaseName)
	case domain.KindBatch:
		return domain.BatchName(cmd.BatchType, cmd.BatchID, cmd.BaseName)
	default:
		return domain.PRName(cmd.Data, cmd.BaseName)
	}
}

// helpers

func normalizeKind(kind string) domain.Kind {
	switch domain.Kind(kind) {
	case domain.KindRelease, domain.KindBatch:
		return domain.Kind(kind)
	default:
		return domain.KindPR
	}
}

func prNumberFrom(data map[string]any) string {
	switch v := data["pr_number"].(type) {
	case int:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%.0f", v)
	case string:
		if len(v) > 0 && v[0] == '#' {
			return v[1:]
		}
		return v
	}
	return ""
}

func writeReport(name, result string) (string, error) {
	f, err := os.CreateTemp("", name+"-*.json")
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(result); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
