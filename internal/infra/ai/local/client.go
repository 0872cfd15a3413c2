package local

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
)

// Client is a heuristic analyst used when no AI provider is configured. It
// fills the review schema from the URL alone so the rest of the pipeline
// (naming, artifacts, persistence) still works in development.
type Client struct{}

func NewClient() *Client { return &Client{} }

var prURLRe = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)/pulls?/(\d+)`)

func (c *Client) Analyze(_ context.Context, subjectURL string) (string, error) {
	out := map[string]any{
		"pr_url":  subjectURL,
		"summary": "No AI provider configured; metadata-only analysis.",
		"risk":    "low",
		"modules": map[string]any{"modules": []any{}},
		"tags":    []string{"unreviewed"},
		"advice":  "Configure an AI provider (openai or gemini) for a real review.",
	}
	if m := prURLRe.FindStringSubmatch(subjectURL); m != nil {
		out["pr_number"] = m[3]
		out["summary"] = fmt.Sprintf("Pull request #%s in %s/%s (metadata-only analysis).", m[3], m[1], m[2])
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
