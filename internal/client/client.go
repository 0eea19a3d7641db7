// Package client provides an HTTP client for the curator server's
// run-control API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mindtube/curator/internal/curation"
)

// Client calls the curator server's REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client. If endpoint is empty, uses the
// CURATOR_SERVER_URL env var or defaults to localhost:8787. Timeout can
// be configured via CURATOR_CLIENT_TIMEOUT.
func New(endpoint string) *Client {
	if endpoint == "" {
		endpoint = os.Getenv("CURATOR_SERVER_URL")
	}
	if endpoint == "" {
		endpoint = "http://localhost:8787"
	}

	timeout := 30 * time.Second
	if t := os.Getenv("CURATOR_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL: strings.TrimSuffix(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (status %d): %s", e.StatusCode, e.Message)
}

// IsConflict reports whether the error is the server's 409 response
// (run already active, or no run to stop).
func (e *APIError) IsConflict() bool {
	return e.StatusCode == http.StatusConflict
}

// Start launches a curation run and returns its job ID.
func (c *Client) Start(ctx context.Context) (string, error) {
	var result struct {
		JobID string `json:"jobId"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/curation/start", &result); err != nil {
		return "", err
	}
	return result.JobID, nil
}

// Status fetches the current run snapshot.
func (c *Client) Status(ctx context.Context) (*curation.RunStatus, error) {
	var status curation.RunStatus
	if err := c.do(ctx, http.MethodGet, "/api/curation/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Stop requests a cooperative stop of the active run.
func (c *Client) Stop(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/curation/stop", nil)
}

// Health checks whether the server is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil)
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(nil))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		var envelope struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &envelope) == nil && envelope.Error != "" {
			apiErr.Message = envelope.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
