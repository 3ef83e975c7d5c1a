// Package gatewaystatus queries the hosting gateway for unhealthy endpoints.
//
// DESIGN: The gateway's health route lists endpoints it has marked unhealthy:
//
//	{"unhealthy_endpoints": [{"model_info": {"id": "..."}, ...}, ...]}
//
// Non-200 responses and a missing field both mean "no data" to callers.
package gatewaystatus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/compresr/gateway-hooks/internal/config"
)

// ErrNoData means the gateway answered without a usable unhealthy list.
var ErrNoData = errors.New("gateway status: no data")

// maxStatusBody caps how much of the health response is read.
const maxStatusBody = 8 * 1024 * 1024

// =============================================================================
// Client
// =============================================================================

// Client queries the gateway health route.
type Client struct {
	baseURL    string
	statusPath string
	masterKey  string
	httpClient *http.Client
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithStatusPath overrides the health route path.
func WithStatusPath(path string) ClientOption {
	return func(client *Client) {
		if path != "" {
			client.statusPath = path
		}
	}
}

// NewClient creates a status client. No timeout is set beyond the HTTP
// client's own; callers run queries in detached tasks.
func NewClient(baseURL, masterKey string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = config.DefaultGatewayBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		statusPath: config.DefaultStatusPath,
		masterKey:  masterKey,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasMasterKey returns true if a gateway credential is configured.
func (c *Client) HasMasterKey() bool {
	return c.masterKey != ""
}

// =============================================================================
// API Methods
// =============================================================================

// UnhealthyEndpoints returns model_info.id of every unhealthy endpoint, in
// response order, duplicates included. Entries without an id are skipped.
func (c *Client) UnhealthyEndpoints(ctx context.Context) ([]string, error) {
	if c.masterKey == "" {
		return nil, fmt.Errorf("no gateway master key configured")
	}

	path := c.statusPath
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.masterKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrNoData, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxStatusBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrNoData)
	}

	list := gjson.GetBytes(body, "unhealthy_endpoints")
	if !list.Exists() || !list.IsArray() {
		return nil, fmt.Errorf("%w: unhealthy_endpoints missing", ErrNoData)
	}

	var ids []string
	list.ForEach(func(_, ep gjson.Result) bool {
		if id := strings.TrimSpace(ep.Get("model_info.id").String()); id != "" {
			ids = append(ids, id)
		}
		return true
	})
	return ids, nil
}
