package cmd

import (
	"os"

	"github.com/felixgeelhaar/planforge/internal/enhance"
	"github.com/felixgeelhaar/planforge/internal/log"
	"github.com/felixgeelhaar/planforge/internal/metrics"
	"github.com/felixgeelhaar/planforge/internal/orchestrator"
	"github.com/felixgeelhaar/planforge/internal/provider"
)

// newProviderClient builds the model client selected by the config. A nil
// client with a nil error means no credential is configured, which is a
// supported mode: plans stay rule-based.
func newProviderClient(c providerConfig) (provider.Client, error) {
	opts := provider.Options{
		BaseURL:     c.BaseURL,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
	}

	switch c.Provider {
	case "anthropic":
		opts.APIKey = os.Getenv(provider.EnvAnthropicAPIKey)
		return provider.NewAnthropicClient(opts), nil
	case "openai":
		opts.APIKey = os.Getenv(provider.EnvOpenAIAPIKey)
		return provider.NewOpenAIClient(opts), nil
	default:
		client, err := provider.Detect(opts)
		if err != nil {
			// Not configured is a mode, not a failure.
			return nil, nil
		}
		return client, nil
	}
}

// providerConfig is the subset of config the provider layer needs.
type providerConfig struct {
	Provider    string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
}

// buildOrchestrator assembles the full pipeline from the loaded config:
// provider client, enhancement service with cache and admission gate, and
// the orchestrator. The returned client is nil in rule-based mode.
func buildOrchestrator() (*orchestrator.Orchestrator, provider.Client, error) {
	client, err := newProviderClient(providerConfig{
		Provider:    cfg.Provider,
		Model:       cfg.Model,
		BaseURL:     cfg.BaseURL,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	})
	if err != nil {
		return nil, nil, err
	}

	m := metrics.InitDefault()
	logger := log.DefaultLogger()

	if client == nil || !client.IsAvailable() {
		logger.Info("no model credential found, plans will be rule-based")
		orch := orchestrator.New(nil,
			orchestrator.WithLogger(logger),
			orchestrator.WithMetrics(m),
			orchestrator.WithMaxStateAge(cfg.StateMaxAge.Std()),
			orchestrator.WithCredentialCheck(func() bool { return false }),
		)
		return orch, nil, nil
	}

	svc := enhance.NewService(client,
		enhance.WithCache(enhance.NewLRUStore(enhance.DefaultCacheSize, cfg.CacheTTL.Std())),
		enhance.WithGate(enhance.NewGate(int64(cfg.MaxConcurrency))),
		enhance.WithLogger(logger),
		enhance.WithMetrics(m),
	)

	orch := orchestrator.New(svc,
		orchestrator.WithLogger(logger),
		orchestrator.WithMetrics(m),
		orchestrator.WithMaxStateAge(cfg.StateMaxAge.Std()),
		orchestrator.WithCredentialCheck(client.IsAvailable),
	)

	logger.Info("model provider configured", "provider", client.Name())
	return orch, client, nil
}
