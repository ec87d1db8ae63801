// Package client is a Go client for the planforge HTTP API exposed by
// `planforge serve`.
//
// Usage:
//
//	c := client.New("http://localhost:8080")
//	result, err := c.GeneratePlan(ctx, "Build a todo app with auth")
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/planforge/pkg/planforge/types"
)

// Client calls the planforge HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode  int      `json:"-"`
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Error implements error.
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s (HTTP %d)", e.Code, e.Message, e.StatusCode)
}

// GenerateResult is the response to a plan generation request.
type GenerateResult struct {
	Plan     *types.Plan         `json:"plan"`
	TaskHash string              `json:"task_hash"`
	Analysis *types.TaskAnalysis `json:"analysis"`
}

// AgentResult is the response to an agent run request.
type AgentResult struct {
	PhaseID types.PhaseID `json:"phase_id"`
	Success bool          `json:"success"`
	Output  string        `json:"output"`
}

// GeneratePlan submits a task and returns the generated plan. Enhancement,
// if enabled server-side, continues in the background; poll GetStatus with
// the returned task hash.
func (c *Client) GeneratePlan(ctx context.Context, task string) (*GenerateResult, error) {
	body := map[string]string{"task": task}
	var result GenerateResult
	if err := c.do(ctx, http.MethodPost, "/api/plans", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetStatus returns the enhancement state for a previously generated plan.
func (c *Client) GetStatus(ctx context.Context, taskHash string) (*types.StatusSnapshot, error) {
	var snapshot types.StatusSnapshot
	path := fmt.Sprintf("/api/plans/%s/status", taskHash)
	if err := c.do(ctx, http.MethodGet, path, nil, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// WaitForEnhancement polls GetStatus until every phase has been processed or
// the context ends.
func (c *Client) WaitForEnhancement(ctx context.Context, taskHash string, interval time.Duration) (*types.StatusSnapshot, error) {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		snapshot, err := c.GetStatus(ctx, taskHash)
		if err != nil {
			return nil, err
		}
		if snapshot.IsComplete {
			return snapshot, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunAgent executes one plan phase with the server's agent runner.
func (c *Client) RunAgent(ctx context.Context, phase types.Phase) (*AgentResult, error) {
	body := map[string]types.Phase{"phase": phase}
	var result AgentResult
	if err := c.do(ctx, http.MethodPost, "/api/agent/run", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health reports whether the server is ready to accept traffic.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health/ready", nil, nil)
}

// errorEnvelope is the API error response shape.
type errorEnvelope struct {
	Error APIError `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Code: "UNKNOWN"}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		apiErr.Message = resp.Status
		return apiErr
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil || envelope.Error.Code == "" {
		apiErr.Message = strings.TrimSpace(string(data))
		if apiErr.Message == "" {
			apiErr.Message = resp.Status
		}
		return apiErr
	}

	envelope.Error.StatusCode = resp.StatusCode
	return &envelope.Error
}
