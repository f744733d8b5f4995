// Package toolservice talks to the household tools service over JSON-RPC
// and feeds its manifest into the tool registry.
package toolservice

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultTimeout bounds one RPC end to end. The gateway applies the
// per-invocation budget on top of this.
const DefaultTimeout = 60 * time.Second

// Client calls the tools service.
type Client struct {
	httpClient *resty.Client
}

// NewClient constructs the tools service client.
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json").
			SetTimeout(DefaultTimeout),
	}
}

// ManifestTool is one tool as advertised by the service.
type ManifestTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ListTools fetches the manifest via JSON-RPC tools/list.
func (c *Client) ListTools(ctx context.Context) ([]ManifestTool, error) {
	payload := map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  "tools/list",
		"params":  map[string]interface{}{},
		"id":      1,
	}

	var rpcResp rpcResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&rpcResp).
		Post("/v1/rpc")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("tools service list error: %s", resp.String())
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}

	var result struct {
		Tools []ManifestTool `json:"tools"`
	}
	if err := json.Unmarshal(rpcResp.Result, &result); err != nil {
		return nil, err
	}
	return result.Tools, nil
}

// CallTool executes one tool via JSON-RPC tools/call, scoped to the acting
// user. The raw result payload is returned verbatim.
func (c *Client) CallTool(ctx context.Context, name string, args json.RawMessage, userID string) (json.RawMessage, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	payload := map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name":      name,
			"arguments": args,
			"user_id":   userID,
		},
		"id": name,
	}

	var rpcResp rpcResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&rpcResp).
		Post("/v1/rpc")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("tools service call error: %s", resp.String())
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}

	return rpcResp.Result, nil
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
	ID      interface{}     `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (r *rpcError) Error() string {
	return fmt.Sprintf("tools service error (%d): %s", r.Code, r.Message)
}
