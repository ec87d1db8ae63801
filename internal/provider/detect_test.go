package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/planforge/internal/errors"
)

func TestDetectPrefersAnthropic(t *testing.T) {
	t.Setenv(EnvAnthropicAPIKey, "anthropic-key")
	t.Setenv(EnvOpenAIAPIKey, "openai-key")

	client, err := Detect(Options{})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", client.Name())
	assert.True(t, HasCredential())
}

func TestDetectFallsBackToOpenAI(t *testing.T) {
	t.Setenv(EnvAnthropicAPIKey, "")
	t.Setenv(EnvOpenAIAPIKey, "openai-key")

	client, err := Detect(Options{})
	require.NoError(t, err)
	assert.Equal(t, "openai", client.Name())
}

func TestDetectWithoutCredential(t *testing.T) {
	t.Setenv(EnvAnthropicAPIKey, "")
	t.Setenv(EnvOpenAIAPIKey, "")

	assert.False(t, HasCredential())

	_, err := Detect(Options{})
	require.Error(t, err)

	var pfErr *errors.PlanforgeError
	require.ErrorAs(t, err, &pfErr)
	assert.Equal(t, errors.ErrCodeProviderNotConfigured, pfErr.Code)
}

func TestDetectExplicitKeySelectsAnthropic(t *testing.T) {
	t.Setenv(EnvAnthropicAPIKey, "")
	t.Setenv(EnvOpenAIAPIKey, "")

	client, err := Detect(Options{APIKey: "explicit"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", client.Name())
	assert.True(t, client.IsAvailable())
}
