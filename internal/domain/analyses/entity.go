package analyses

import (
	"time"
)

// ID tipe untuk Analysis
type AnalysisID string

// Kind enum
type Kind string

const (
	KindPR      Kind = "pr"
	KindRelease Kind = "release"
	KindBatch   Kind = "batch"
)

// Status enum
type Status string

const (
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusError   Status = "error"
)

// Aggregate Root: Analysis
type Analysis struct {
	ID          AnalysisID `json:"id"`
	TenantID    string     `json:"tenant_id"`
	TriggeredAt time.Time  `json:"triggered_at"`
	Kind        Kind       `json:"kind"`
	PRURL       string     `json:"pr_url,omitempty"`
	PRNumber    string     `json:"pr_number,omitempty"`
	RepoName    string     `json:"repo_name,omitempty"`
	ReleaseTag  string     `json:"release_tag,omitempty"`
	BatchType   string     `json:"batch_type,omitempty"`
	BatchID     string     `json:"batch_id,omitempty"`
	Status      Status     `json:"status"`
	OutputName  string     `json:"output_name,omitempty"`
	ArtifactURL string     `json:"artifact_url,omitempty"`
	Result      string     `json:"result,omitempty"` // JSON string from AI
	DurationMS  int64      `json:"duration_ms"`
	Source      string     `json:"source,omitempty"`
	Metadata    any        `json:"metadata,omitempty"`
}
