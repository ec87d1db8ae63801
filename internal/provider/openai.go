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
	openAIDefaultBaseURL = "https://api.openai.com/v1"
	openAIDefaultModel   = "gpt-4o-mini"
)

// OpenAIClient implements Client against the OpenAI chat completions API and
// any compatible endpoint (set BaseURL to point elsewhere).
type OpenAIClient struct {
	opts   Options
	client *http.Client
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	ID      string          `json:"id"`
	Model   string          `json:"model"`
	Choices []openAIChoice  `json:"choices"`
	Usage   openAIUsage     `json:"usage"`
	Error   *openAIAPIError `json:"error,omitempty"`
}

type openAIChoice struct {
	Message      openAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type openAIAPIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// NewOpenAIClient creates a client for an OpenAI-compatible completions API.
func NewOpenAIClient(opts Options) *OpenAIClient {
	if opts.BaseURL == "" {
		opts.BaseURL = openAIDefaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = openAIDefaultModel
	}
	return &OpenAIClient{
		opts:   opts,
		client: &http.Client{Timeout: opts.timeout()},
	}
}

// Name implements Client.
func (c *OpenAIClient) Name() string { return "openai" }

// IsAvailable implements Client.
func (c *OpenAIClient) IsAvailable() bool { return c.opts.APIKey != "" }

// Generate implements Client.
func (c *OpenAIClient) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
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

func (c *OpenAIClient) generateOnce(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	maxTokens := c.opts.maxTokens()
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	temperature := c.opts.temperature()
	if req.Temperature > 0 {
		temperature = req.Temperature
	}

	messages := []openAIMessage{}
	if req.SystemPrompt != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: req.Prompt})

	body := openAIRequest{
		Model:       c.opts.Model,
		Messages:    messages,
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

	var parsed openAIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, errors.NewFatal(errors.Wrap(errors.ErrCodeProviderAPI,
			"failed to decode openai response", err))
	}
	if parsed.Error != nil {
		return nil, errors.NewFatal(errors.New(errors.ErrCodeProviderAPI,
			fmt.Sprintf("openai error: %s", parsed.Error.Message)))
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.NewFatal(errors.New(errors.ErrCodeProviderAPI,
			"openai response contained no choices"))
	}

	choice := parsed.Choices[0]
	return &GenerateResponse{
		Content:      choice.Message.Content,
		TokensUsed:   parsed.Usage.TotalTokens,
		InputTokens:  parsed.Usage.PromptTokens,
		OutputTokens: parsed.Usage.CompletionTokens,
		Model:        parsed.Model,
		FinishReason: choice.FinishReason,
		Provider:     c.Name(),
	}, nil
}

func (c *OpenAIClient) post(ctx context.Context, body openAIRequest) ([]byte, int, string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, "", errors.NewFatal(fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.opts.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, 0, "", errors.NewFatal(fmt.Errorf("create request: %w", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, 0, "", errors.NewTransient(errors.Wrap(errors.ErrCodeProviderTimeout,
			"openai request failed", err))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, 0, "", errors.NewTransient(errors.Wrap(errors.ErrCodeProviderAPI,
			"failed to read openai response", err))
	}

	return respBody, httpResp.StatusCode, httpResp.Header.Get("Retry-After"), nil
}

// Health implements Client with a one-token ping.
func (c *OpenAIClient) Health(ctx context.Context) error {
	if !c.IsAvailable() {
		return errors.NewProviderNotConfiguredError()
	}

	body := openAIRequest{
		Model:     c.opts.Model,
		Messages:  []openAIMessage{{Role: "user", Content: "ping"}},
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
func (c *OpenAIClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
