// Package llmprovider talks to the model backend over its messages API.
package llmprovider

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"homehub/assistant-api/internal/domain/llm"
)

// DefaultTimeout bounds one completion call end to end.
const DefaultTimeout = 75 * time.Second

// Config holds the connection settings for the model backend.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client implements the llm.Provider interface.
type Client struct {
	httpClient *resty.Client
}

// NewClient creates a Resty-backed client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	if cfg.APIKey != "" {
		httpClient.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}

	return &Client{httpClient: httpClient}
}

// Complete calls the backend's /v1/messages endpoint.
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
	var completion llm.Completion
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&completion).
		Post("/v1/messages")
	if err != nil {
		return nil, fmt.Errorf("call model backend: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("model backend returned %d: %s", resp.StatusCode(), resp.String())
	}

	return &completion, nil
}

// Ensure interface compliance.
var _ llm.Provider = (*Client)(nil)
