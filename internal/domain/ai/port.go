package ai

import "context"

// Client produces an AI analysis (a JSON string) for a PR or report URL.
type Client interface {
	Analyze(ctx context.Context, subjectURL string) (string, error)
}
