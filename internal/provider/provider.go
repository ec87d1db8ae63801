// Package provider contains HTTP clients for hosted language-model APIs.
// Clients classify failures as transient or fatal so callers can retry the
// former and fall back on the latter.
package provider

import (
	"context"
	"time"
)

// Client is the surface the enhancement service depends on. Implementations
// are safe for concurrent use.
type Client interface {
	// Generate sends a prompt and returns the complete response.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// Health performs a minimal round trip against the API.
	// Returns nil if the provider is reachable and the credential is accepted.
	Health(ctx context.Context) error

	// IsAvailable reports whether the client holds a credential. It performs
	// no network I/O.
	IsAvailable() bool

	// Name identifies the provider ("anthropic", "openai").
	Name() string

	// Close releases client resources.
	Close() error
}

// GenerateRequest contains the parameters for one completion call.
type GenerateRequest struct {
	// Prompt is the user-role input text.
	Prompt string `json:"prompt"`

	// SystemPrompt sets system-level instructions.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// MaxTokens limits response length. Zero uses the client default.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls randomness. Zero uses the client default.
	Temperature float64 `json:"temperature,omitempty"`
}

// GenerateResponse contains the model output and call metadata.
type GenerateResponse struct {
	// Content is the generated text.
	Content string `json:"content"`

	// TokensUsed is the total tokens consumed (input + output).
	TokensUsed int `json:"tokens_used"`

	InputTokens  int `json:"input_tokens,omitempty"`
	OutputTokens int `json:"output_tokens,omitempty"`

	// Model is the model that actually generated the response.
	Model string `json:"model"`

	// Latency is the wall-clock duration of the call, including retries.
	Latency time.Duration `json:"latency"`

	// FinishReason explains why generation stopped. "length" and
	// "max_tokens" indicate a truncated response.
	FinishReason string `json:"finish_reason"`

	// Provider names the client that handled the request.
	Provider string `json:"provider"`
}

// Truncated reports whether the model stopped because it hit the token limit.
func (r *GenerateResponse) Truncated() bool {
	return r.FinishReason == "length" || r.FinishReason == "max_tokens"
}

// Options configures a client. Zero values fall back to per-provider defaults.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	// MaxAttempts bounds transient retries per Generate call.
	MaxAttempts uint
}

const (
	defaultTimeout     = 120 * time.Second
	defaultMaxAttempts = 3
	defaultMaxTokens   = 4096
	defaultTemperature = 0.7
)

func (o Options) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return defaultTimeout
}

func (o Options) maxAttempts() uint {
	if o.MaxAttempts > 0 {
		return o.MaxAttempts
	}
	return defaultMaxAttempts
}

func (o Options) maxTokens() int {
	if o.MaxTokens > 0 {
		return o.MaxTokens
	}
	return defaultMaxTokens
}

func (o Options) temperature() float64 {
	if o.Temperature > 0 {
		return o.Temperature
	}
	return defaultTemperature
}
