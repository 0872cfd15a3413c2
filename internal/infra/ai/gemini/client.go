package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	domai "github.com/prsentry/prsentry/internal/domain/ai"
	"github.com/prsentry/prsentry/internal/infra/ai/prompt"
)

type Client struct {
	client *genai.Client
	Model  string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Client{client: cli, Model: model}, nil
}

func (c *Client) Analyze(ctx context.Context, subjectURL string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompt.GetSystemPrompt(), genai.RoleUser),
		ResponseMIMEType:  "application/json",
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.Model,
		genai.Text(prompt.GetUserPrompt(subjectURL)), cfg)
	if err != nil {
		if strings.Contains(err.Error(), "429") || strings.Contains(err.Error(), "RESOURCE_EXHAUSTED") {
			return "", fmt.Errorf("%w: %v", domai.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return resp.Text(), nil
}

// Generate runs a plain exchange without the review schema; the agent probe
// uses it as its fallback path.
func (c *Client) Generate(ctx context.Context, message string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.Model, genai.Text(message), nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return resp.Text(), nil
}
