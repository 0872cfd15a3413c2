package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	domain "github.com/prsentry/prsentry/internal/domain/fixtures"
)

const defaultAPIBase = "https://api.github.com"

// Client checks PR URLs against the GitHub REST API.
type Client struct {
	httpc   *http.Client
	token   string
	APIBase string // override for tests; defaults to api.github.com
}

func NewClient(token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpc: &http.Client{Timeout: timeout},
		token: token,
	}
}

// Check implements fixtures.Checker. A non-200 response comes back as a
// *fixtures.StatusError; transport failures are returned as-is.
func (c *Client) Check(ctx context.Context, prURL string) (*domain.PRInfo, error) {
	api := domain.APIURL(prURL)
	if c.APIBase != "" {
		api = c.APIBase + strings.TrimPrefix(api, defaultAPIBase)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, api, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &domain.StatusError{Code: resp.StatusCode}
	}

	var body struct {
		Title string `json:"title"`
		State string `json:"state"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding PR response: %w", err)
	}
	return &domain.PRInfo{Title: body.Title, State: body.State}, nil
}

// PRInfo implements analyses.MetadataSource on top of Check.
func (c *Client) PRInfo(ctx context.Context, prURL string) (string, string, error) {
	info, err := c.Check(ctx, prURL)
	if err != nil {
		return "", "", err
	}
	return info.Title, info.State, nil
}
