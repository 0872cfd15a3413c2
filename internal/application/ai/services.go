package ai

import (
	"context"
	"fmt"

	"github.com/prsentry/prsentry/internal/domain/ai"
	domain "github.com/prsentry/prsentry/internal/domain/analyses"
)

type Service struct {
	client   ai.Client
	analyses domain.Repository
}

func NewService(client ai.Client, analyses domain.Repository) *Service {
	return &Service{client: client, analyses: analyses}
}

func (s *Service) Analyze(ctx context.Context, subjectURL string) (string, error) {
	return s.client.Analyze(ctx, subjectURL)
}

// AnalyzeAndStore runs AI analysis over an existing analysis artifact and
// stores the result on the record.
func (s *Service) AnalyzeAndStore(ctx context.Context, tenant, id string) (*domain.Analysis, error) {
	a, err := s.analyses.Get(ctx, tenant, domain.AnalysisID(id))
	if err != nil {
		return nil, err
	}
	if a == nil || a.ArtifactURL == "" {
		return nil, fmt.Errorf("artifact_url not found for analysis: %s", id)
	}

	result, err := s.client.Analyze(ctx, a.ArtifactURL)
	if err != nil {
		return nil, err
	}

	a.Result = result
	if err := s.analyses.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}
