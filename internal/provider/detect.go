package provider

import (
	"os"

	"github.com/felixgeelhaar/planforge/internal/errors"
)

// Environment variables checked for credentials, in precedence order.
const (
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
)

// HasCredential reports whether any supported provider credential is present
// in the environment. It decides rule-based versus hybrid generation without
// any network I/O.
func HasCredential() bool {
	return os.Getenv(EnvAnthropicAPIKey) != "" || os.Getenv(EnvOpenAIAPIKey) != ""
}

// Detect returns a client for the first configured provider, preferring
// Anthropic. Options other than APIKey are respected; an explicit APIKey in
// opts takes precedence over the environment and selects Anthropic.
func Detect(opts Options) (Client, error) {
	if opts.APIKey != "" {
		return NewAnthropicClient(opts), nil
	}

	if key := os.Getenv(EnvAnthropicAPIKey); key != "" {
		opts.APIKey = key
		return NewAnthropicClient(opts), nil
	}

	if key := os.Getenv(EnvOpenAIAPIKey); key != "" {
		opts.APIKey = key
		return NewOpenAIClient(opts), nil
	}

	return nil, errors.NewProviderNotConfiguredError()
}
