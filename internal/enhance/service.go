// Package enhance enriches rule-based plan phases with model-generated
// architecture and implementation guidance. Every failure mode (malformed
// JSON, truncation, schema mismatch, provider errors) is recovered locally:
// retry, repair, simplified schema, then a synthesized fallback.
package enhance

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/felixgeelhaar/planforge/internal/errors"
	"github.com/felixgeelhaar/planforge/internal/log"
	"github.com/felixgeelhaar/planforge/internal/metrics"
	"github.com/felixgeelhaar/planforge/internal/provider"
	"github.com/felixgeelhaar/planforge/pkg/planforge/types"
)

// maxAttempts is the total model attempts per enhancement before the
// simplified-schema degraded call. The penultimate attempt is a repair call.
const maxAttempts = 3

// Result is the outcome of enhancing one phase.
type Result struct {
	Phase *types.EnhancedPhase
	// Fallback is true when the content was synthesized locally because all
	// model attempts failed.
	Fallback bool
	// FromCache is true when the content was served from the cache.
	FromCache bool
}

// Service coordinates model calls, caching, and admission control.
type Service struct {
	client  provider.Client
	cache   Store
	gate    *Gate
	logger  *log.Logger
	metrics *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithCache overrides the default LRU cache store.
func WithCache(store Store) Option {
	return func(s *Service) { s.cache = store }
}

// WithGate overrides the default admission gate.
func WithGate(gate *Gate) Option {
	return func(s *Service) { s.gate = gate }
}

// WithLogger overrides the default logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics attaches a metrics instance.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates an enhancement service around a provider client. The
// client may be nil or unconfigured; calls then fail with a not-initialized
// error rather than at construction.
func NewService(client provider.Client, opts ...Option) *Service {
	s := &Service{
		client: client,
		cache:  NewLRUStore(DefaultCacheSize, DefaultCacheTTL),
		gate:   NewGate(DefaultMaxInFlight),
		logger: log.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ready enforces the credential precondition.
func (s *Service) ready() error {
	if s.client == nil || !s.client.IsAvailable() {
		return errors.New(errors.ErrCodeEnhanceNotInitialized,
			"enhancement service has no configured model provider").
			WithSuggestion("Set the ANTHROPIC_API_KEY or OPENAI_API_KEY environment variable")
	}
	return nil
}

// EnhancePhase enriches a single phase. It returns an error only for the
// missing-credential precondition; every model failure is absorbed into a
// cached, simplified, or synthesized result.
func (s *Service) EnhancePhase(ctx context.Context, task string, phase types.Phase) (*Result, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	key := CacheKey(task, phase)
	if cached, ok := s.cache.Get(key); ok {
		if s.metrics != nil {
			s.metrics.CacheHits.Inc()
		}
		s.countOutcome("cached")
		return &Result{Phase: cached, FromCache: true}, nil
	}
	if s.metrics != nil {
		s.metrics.CacheMisses.Inc()
	}

	start := time.Now()
	enhanced, err := s.enhanceWithRetry(ctx, task, phase)
	if err != nil {
		s.logger.WithError(err).Warn("full-schema enhancement failed, degrading",
			"phase", phase.Name)
		enhanced, err = s.enhanceSimplified(ctx, task, phase)
	}

	result := &Result{Phase: enhanced}
	if err != nil {
		s.logger.WithError(err).Warn("degraded enhancement failed, synthesizing fallback",
			"phase", phase.Name)
		result.Phase = Fallback(phase)
		result.Fallback = true
		s.countOutcome("fallback")
	} else {
		s.countOutcome("enhanced")
	}
	s.observeDuration("phase", time.Since(start))

	s.cache.Add(key, result.Phase)
	return result, nil
}

// enhanceWithRetry runs the full-schema protocol: up to maxAttempts calls,
// with a repair call echoing the previous error on the penultimate attempt.
func (s *Service) enhanceWithRetry(ctx context.Context, task string, phase types.Phase) (*types.EnhancedPhase, error) {
	prompt := buildPhasePrompt(task, phase)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		p := prompt
		if attempt == maxAttempts-1 && lastErr != nil {
			p = buildRepairPrompt(prompt, lastErr.Error())
		}

		enhanced, err := s.callFull(ctx, p)
		if err == nil {
			return enhanced, nil
		}
		lastErr = err

		// Auth failures will not improve on retry.
		var pfErr *errors.PlanforgeError
		if stderrors.As(err, &pfErr) && pfErr.Code == errors.ErrCodeProviderAuth {
			return nil, err
		}
	}
	return nil, lastErr
}

// callFull issues one full-schema model call through the admission gate.
func (s *Service) callFull(ctx context.Context, prompt string) (*types.EnhancedPhase, error) {
	content, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	raw, err := ExtractJSON(content)
	if err != nil {
		return nil, err
	}

	var enhanced types.EnhancedPhase
	if err := json.Unmarshal([]byte(raw), &enhanced); err != nil {
		return nil, errors.Wrap(errors.ErrCodeEnhanceSchemaInvalid,
			"model response was not valid JSON", err)
	}

	if result := Validate(&enhanced); !result.Valid() {
		return nil, errors.New(errors.ErrCodeEnhanceSchemaInvalid, result.String())
	}
	return &enhanced, nil
}

// enhanceSimplified issues the degraded last-resort call. Missing sections of
// the simplified payload are filled from the synthesized fallback so the
// result always satisfies the full schema.
func (s *Service) enhanceSimplified(ctx context.Context, task string, phase types.Phase) (*types.EnhancedPhase, error) {
	content, err := s.generate(ctx, buildSimplifiedPrompt(task, phase))
	if err != nil {
		return nil, err
	}

	raw, err := ExtractJSON(content)
	if err != nil {
		return nil, err
	}

	var enhanced types.EnhancedPhase
	if err := json.Unmarshal([]byte(raw), &enhanced); err != nil {
		return nil, errors.Wrap(errors.ErrCodeEnhanceSchemaInvalid,
			"simplified response was not valid JSON", err)
	}
	if result := ValidateSimplified(&enhanced); !result.Valid() {
		return nil, errors.New(errors.ErrCodeEnhanceSchemaInvalid, result.String())
	}

	scaffold := Fallback(phase)
	enhanced.Architecture = scaffold.Architecture
	enhanced.Implementation = scaffold.Implementation
	return &enhanced, nil
}

// generate runs one gated provider call and returns the raw content.
func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	if err := s.gate.Acquire(ctx); err != nil {
		return "", err
	}
	defer s.gate.Release()
	if s.metrics != nil {
		s.metrics.GateInFlight.Inc()
		defer s.metrics.GateInFlight.Dec()
	}

	resp, err := s.client.Generate(ctx, &provider.GenerateRequest{
		Prompt:       prompt,
		SystemPrompt: systemPrompt,
	})
	if s.metrics != nil && s.client != nil {
		status := "ok"
		if err != nil {
			status = "error"
			kind := "fatal"
			if errors.IsTransient(err) {
				kind = "transient"
			}
			s.metrics.ProviderErrors.WithLabelValues(s.client.Name(), kind).Inc()
		}
		s.metrics.ProviderCalls.WithLabelValues(s.client.Name(), status).Inc()
		if resp != nil {
			s.metrics.ProviderLatency.WithLabelValues(s.client.Name()).
				Observe(resp.Latency.Seconds())
			s.metrics.ProviderTokens.WithLabelValues(s.client.Name(), "input").
				Add(float64(resp.InputTokens))
			s.metrics.ProviderTokens.WithLabelValues(s.client.Name(), "output").
				Add(float64(resp.OutputTokens))
		}
	}
	if err != nil {
		return "", err
	}
	if resp.Truncated() {
		return "", errors.New(errors.ErrCodeEnhanceTruncated,
			"model stopped at the token limit").
			WithSuggestion("Raise the max token limit")
	}
	return resp.Content, nil
}

// batchPayload is the wire shape of a batch response.
type batchPayload struct {
	Phases []*types.EnhancedPhase `json:"phases"`
}

// EnhanceAll enriches every phase of a plan with a single batched model call.
// All phases succeed or fail together: a batch-level failure after retries
// returns a batch-failed error and no partial results.
func (s *Service) EnhanceAll(ctx context.Context, task string, plan *types.Plan) ([]*Result, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	// Serve entirely from cache when possible.
	if results, ok := s.allCached(task, plan); ok {
		return results, nil
	}
	if s.metrics != nil {
		s.metrics.CacheMisses.Inc()
	}

	start := time.Now()
	prompt := buildBatchPrompt(task, plan)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		p := prompt
		if attempt == maxAttempts-1 && lastErr != nil {
			p = buildRepairPrompt(prompt, lastErr.Error())
		}

		phases, err := s.callBatch(ctx, p, len(plan.Phases))
		if err == nil {
			results := make([]*Result, len(phases))
			for i, enhanced := range phases {
				s.cache.Add(CacheKey(task, plan.Phases[i]), enhanced)
				results[i] = &Result{Phase: enhanced}
			}
			s.countOutcome("enhanced")
			s.observeDuration("batch", time.Since(start))
			return results, nil
		}
		lastErr = err
	}

	s.countOutcome("batch_failed")
	s.observeDuration("batch", time.Since(start))
	return nil, errors.Wrap(errors.ErrCodeEnhanceBatchFailed,
		"batch enhancement failed after retries", lastErr).
		WithSuggestion("The base plan remains usable without enhancement")
}

// callBatch issues one batch model call and validates every phase entry.
func (s *Service) callBatch(ctx context.Context, prompt string, want int) ([]*types.EnhancedPhase, error) {
	content, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	raw, err := ExtractJSON(content)
	if err != nil {
		return nil, err
	}

	var payload batchPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, errors.Wrap(errors.ErrCodeEnhanceSchemaInvalid,
			"batch response was not valid JSON", err)
	}
	if len(payload.Phases) != want {
		return nil, errors.New(errors.ErrCodeEnhanceSchemaInvalid,
			"batch response phase count does not match the plan")
	}
	for _, enhanced := range payload.Phases {
		if result := Validate(enhanced); !result.Valid() {
			return nil, errors.New(errors.ErrCodeEnhanceSchemaInvalid, result.String())
		}
	}
	return payload.Phases, nil
}

// allCached returns cached results for every phase, or ok=false if any phase
// misses.
func (s *Service) allCached(task string, plan *types.Plan) ([]*Result, bool) {
	results := make([]*Result, len(plan.Phases))
	for i, phase := range plan.Phases {
		cached, ok := s.cache.Get(CacheKey(task, phase))
		if !ok {
			return nil, false
		}
		results[i] = &Result{Phase: cached, FromCache: true}
	}
	if s.metrics != nil {
		s.metrics.CacheHits.Add(float64(len(plan.Phases)))
	}
	s.countOutcome("cached")
	return results, true
}

// TestConnection issues a minimal call and reports whether it completed. It
// is a credential health check, separate from plan generation.
func (s *Service) TestConnection(ctx context.Context) bool {
	if err := s.ready(); err != nil {
		return false
	}
	return s.client.Health(ctx) == nil
}

func (s *Service) countOutcome(outcome string) {
	if s.metrics != nil {
		s.metrics.EnhancementOutcomes.WithLabelValues(outcome).Inc()
	}
}

func (s *Service) observeDuration(mode string, d time.Duration) {
	if s.metrics != nil {
		s.metrics.EnhancementDuration.WithLabelValues(mode).Observe(d.Seconds())
	}
}
