// Package scheduler drives the API's machine endpoints from a cron job.
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// OwnerSummary is one owner's line in a generation run.
type OwnerSummary struct {
	UserID  string `json:"user_id"`
	Created int    `json:"created"`
	Skipped int    `json:"skipped"`
	Errors  int    `json:"errors"`
}

// GenerateSummary totals a service-wide recurring generation run.
type GenerateSummary struct {
	TotalCreated int            `json:"total_created"`
	TotalSkipped int            `json:"total_skipped"`
	TotalErrors  int            `json:"total_errors"`
	Users        []OwnerSummary `json:"users"`
}

// Client calls the Pocket Pilot internal API with the service key.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new internal API client.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// GenerateRecurring asks the API to create every due recurring transaction.
func (c *Client) GenerateRecurring(ctx context.Context) (*GenerateSummary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/internal/recurring/generate", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generating recurring transactions: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generating recurring transactions: unexpected status %d", resp.StatusCode)
	}

	var summary GenerateSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, fmt.Errorf("decoding generation response: %w", err)
	}
	return &summary, nil
}
