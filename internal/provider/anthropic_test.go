package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/planforge/internal/errors"
)

func anthropicSuccess(text, stopReason string) anthropicResponse {
	return anthropicResponse{
		ID:         "msg_test",
		Content:    []anthropicContent{{Type: "text", Text: text}},
		Model:      "claude-test",
		StopReason: stopReason,
		Usage:      anthropicUsage{InputTokens: 10, OutputTokens: 5},
	}
}

func newAnthropicTestClient(t *testing.T, handler http.Handler) *AnthropicClient {
	t.Helper()
	server := newTestServer(t, handler)
	return NewAnthropicClient(Options{
		APIKey:      "test-key",
		BaseURL:     server.URL,
		MaxAttempts: 2,
		Timeout:     5 * time.Second,
	})
}

func TestAnthropicGenerate(t *testing.T) {
	var gotVersion, gotKey string
	var gotReq anthropicRequest

	client := newAnthropicTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVersion = r.Header.Get("anthropic-version")
		gotKey = r.Header.Get("x-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		require.NoError(t, json.NewEncoder(w).Encode(anthropicSuccess("hello", "end_turn")))
	}))

	resp, err := client.Generate(context.Background(), &GenerateRequest{
		Prompt:       "say hello",
		SystemPrompt: "be brief",
	})
	require.NoError(t, err)

	assert.Equal(t, "hello", resp.Content)
	assert.Equal(t, 15, resp.TokensUsed)
	assert.Equal(t, "anthropic", resp.Provider)
	assert.False(t, resp.Truncated())

	assert.Equal(t, "2023-06-01", gotVersion)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "be brief", gotReq.System)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
}

func TestAnthropicTruncationDetected(t *testing.T) {
	client := newAnthropicTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(anthropicSuccess("partial", "max_tokens")))
	}))

	resp, err := client.Generate(context.Background(), &GenerateRequest{Prompt: "long task"})
	require.NoError(t, err)
	assert.True(t, resp.Truncated())
}

func TestAnthropicAuthErrorIsFatal(t *testing.T) {
	var calls atomic.Int32

	client := newAnthropicTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.Generate(context.Background(), &GenerateRequest{Prompt: "x"})
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))

	var pfErr *errors.PlanforgeError
	require.ErrorAs(t, err, &pfErr)
	assert.Equal(t, errors.ErrCodeProviderAuth, pfErr.Code)

	assert.Equal(t, int32(1), calls.Load(), "fatal errors must not be retried")
}

func TestAnthropicRateLimitIsRetried(t *testing.T) {
	var calls atomic.Int32

	client := newAnthropicTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		require.NoError(t, json.NewEncoder(w).Encode(anthropicSuccess("recovered", "end_turn")))
	}))

	resp, err := client.Generate(context.Background(), &GenerateRequest{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "recovered", resp.Content)
	assert.Equal(t, int32(2), calls.Load())
}

func TestAnthropicServerErrorExhaustsRetries(t *testing.T) {
	var calls atomic.Int32

	client := newAnthropicTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.Generate(context.Background(), &GenerateRequest{Prompt: "x"})
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
	assert.Equal(t, int32(2), calls.Load(), "transient errors retry up to MaxAttempts")
}

func TestAnthropicMissingCredential(t *testing.T) {
	client := NewAnthropicClient(Options{})

	assert.False(t, client.IsAvailable())

	_, err := client.Generate(context.Background(), &GenerateRequest{Prompt: "x"})
	require.Error(t, err)

	var pfErr *errors.PlanforgeError
	require.ErrorAs(t, err, &pfErr)
	assert.Equal(t, errors.ErrCodeProviderNotConfigured, pfErr.Code)
}

func TestAnthropicHealth(t *testing.T) {
	client := newAnthropicTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 1, req.MaxTokens)
		require.NoError(t, json.NewEncoder(w).Encode(anthropicSuccess("ok", "max_tokens")))
	}))

	assert.NoError(t, client.Health(context.Background()))
}
