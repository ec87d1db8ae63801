package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/planforge/internal/errors"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com/v1"
	anthropicDefaultModel   = "claude-sonnet-4-20250514"
	anthropicAPIVersion     = "2023-06-01"
)

// AnthropicClient implements Client against the Anthropic Messages API.
type AnthropicClient struct {
	opts   Options
	client *http.Client
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	ID         string             `json:"id"`
	Content    []anthropicContent `json:"content"`
	Model      string             `json:"model"`
	StopReason string             `json:"stop_reason,omitempty"`
	Usage      anthropicUsage     `json:"usage"`
	Error      *anthropicAPIError `json:"error,omitempty"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicAPIError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewAnthropicClient creates a client for the Anthropic Messages API.
func NewAnthropicClient(opts Options) *AnthropicClient {
	if opts.BaseURL == "" {
		opts.BaseURL = anthropicDefaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = anthropicDefaultModel
	}
	return &AnthropicClient{
		opts:   opts,
		client: &http.Client{Timeout: opts.timeout()},
	}
}

// Name implements Client.
func (c *AnthropicClient) Name() string { return "anthropic" }

// IsAvailable implements Client.
func (c *AnthropicClient) IsAvailable() bool { return c.opts.APIKey != "" }

// Generate implements Client. Transient failures (429, 5xx) are retried with
// exponential backoff; auth and other 4xx failures abort immediately.
func (c *AnthropicClient) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	if !c.IsAvailable() {
		return nil, errors.NewProviderNotConfiguredError()
	}

	start := time.Now()
	resp, err := retryGenerate(ctx, c.opts.maxAttempts(), func() (*GenerateResponse, error) {
		return c.generateOnce(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	resp.Latency = time.Since(start)
	return resp, nil
}

func (c *AnthropicClient) generateOnce(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	maxTokens := c.opts.maxTokens()
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	temperature := c.opts.temperature()
	if req.Temperature > 0 {
		temperature = req.Temperature
	}

	body := anthropicRequest{
		Model:       c.opts.Model,
		Messages:    []anthropicMessage{{Role: "user", Content: req.Prompt}},
		System:      req.SystemPrompt,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	respBody, status, retryAfter, err := c.post(ctx, body)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, classifyStatus(c.Name(), status, retryAfter, respBody)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, errors.NewFatal(errors.Wrap(errors.ErrCodeProviderAPI,
			"failed to decode anthropic response", err))
	}
	if parsed.Error != nil {
		return nil, errors.NewFatal(errors.New(errors.ErrCodeProviderAPI,
			fmt.Sprintf("anthropic error: %s", parsed.Error.Message)))
	}

	content := ""
	if len(parsed.Content) > 0 {
		content = parsed.Content[0].Text
	}

	return &GenerateResponse{
		Content:      content,
		TokensUsed:   parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
		InputTokens:  parsed.Usage.InputTokens,
		OutputTokens: parsed.Usage.OutputTokens,
		Model:        parsed.Model,
		FinishReason: parsed.StopReason,
		Provider:     c.Name(),
	}, nil
}

func (c *AnthropicClient) post(ctx context.Context, body anthropicRequest) ([]byte, int, string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, "", errors.NewFatal(fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.opts.BaseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, 0, "", errors.NewFatal(fmt.Errorf("create request: %w", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.opts.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		// Network-level failures are retryable.
		return nil, 0, "", errors.NewTransient(errors.Wrap(errors.ErrCodeProviderTimeout,
			"anthropic request failed", err))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, 0, "", errors.NewTransient(errors.Wrap(errors.ErrCodeProviderAPI,
			"failed to read anthropic response", err))
	}

	return respBody, httpResp.StatusCode, httpResp.Header.Get("Retry-After"), nil
}

// Health implements Client with a one-token ping.
func (c *AnthropicClient) Health(ctx context.Context) error {
	if !c.IsAvailable() {
		return errors.NewProviderNotConfiguredError()
	}

	body := anthropicRequest{
		Model:     c.opts.Model,
		Messages:  []anthropicMessage{{Role: "user", Content: "ping"}},
		MaxTokens: 1,
	}

	respBody, status, retryAfter, err := c.post(ctx, body)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return classifyStatus(c.Name(), status, retryAfter, respBody)
	}
	return nil
}

// Close implements Client.
func (c *AnthropicClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
