package enhance

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/planforge/internal/errors"
	"github.com/felixgeelhaar/planforge/internal/metrics"
	"github.com/felixgeelhaar/planforge/internal/provider"
	"github.com/felixgeelhaar/planforge/pkg/planforge/types"
)

// mockClient scripts provider responses per call. When calls outnumber
// scripted responses the last one repeats.
type mockClient struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     int
	prompts   []string
	healthErr error
	available bool
}

func newMockClient(responses ...string) *mockClient {
	return &mockClient{responses: responses, available: true}
}

func (m *mockClient) Generate(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.calls
	m.calls++
	m.prompts = append(m.prompts, req.Prompt)

	if idx < len(m.errs) && m.errs[idx] != nil {
		return nil, m.errs[idx]
	}
	if len(m.responses) == 0 {
		return nil, fmt.Errorf("no scripted response")
	}
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return &provider.GenerateResponse{
		Content:      m.responses[idx],
		FinishReason: "stop",
		Provider:     "mock",
	}, nil
}

func (m *mockClient) Health(ctx context.Context) error { return m.healthErr }
func (m *mockClient) IsAvailable() bool                { return m.available }
func (m *mockClient) Name() string                     { return "mock" }
func (m *mockClient) Close() error                     { return nil }

func (m *mockClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockClient) prompt(i int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prompts[i]
}

func validEnhancementJSON(t *testing.T) string {
	t.Helper()
	payload, err := json.Marshal(validEnhancement())
	require.NoError(t, err)
	return string(payload)
}

func validBatchJSON(t *testing.T, n int) string {
	t.Helper()
	phases := make([]*types.EnhancedPhase, n)
	for i := range phases {
		phases[i] = validEnhancement()
	}
	payload, err := json.Marshal(batchPayload{Phases: phases})
	require.NoError(t, err)
	return string(payload)
}

func backendPhase() types.Phase {
	return types.Phase{
		ID:          types.PhaseBackend,
		Name:        "Backend Services",
		Description: "Build the API routes.",
		Files: []types.FileChange{
			{Path: "src/routes/index.ts", Action: types.ActionCreate, Description: "routes"},
		},
	}
}

func twoPhasePlan() *types.Plan {
	return &types.Plan{
		ID:   "plan-test",
		Task: "build a thing",
		Phases: []types.Phase{
			{ID: types.PhaseSetup, Name: "Project Setup", Description: "scaffold"},
			backendPhase(),
		},
	}
}

func TestEnhancePhaseRequiresCredential(t *testing.T) {
	client := newMockClient()
	client.available = false

	svc := NewService(client)
	_, err := svc.EnhancePhase(context.Background(), "task", backendPhase())
	require.Error(t, err)

	var pfErr *errors.PlanforgeError
	require.True(t, stderrors.As(err, &pfErr))
	assert.Equal(t, errors.ErrCodeEnhanceNotInitialized, pfErr.Code)

	// A nil client behaves the same.
	_, err = NewService(nil).EnhancePhase(context.Background(), "task", backendPhase())
	assert.Error(t, err)
}

func TestEnhancePhaseHappyPath(t *testing.T) {
	client := newMockClient(validEnhancementJSON(t))
	svc := NewService(client)

	result, err := svc.EnhancePhase(context.Background(), "task", backendPhase())
	require.NoError(t, err)

	assert.False(t, result.Fallback)
	assert.False(t, result.FromCache)
	assert.True(t, Validate(result.Phase).Valid())
	assert.Equal(t, 1, client.callCount())
}

func TestEnhancePhaseCachesResult(t *testing.T) {
	client := newMockClient(validEnhancementJSON(t))
	svc := NewService(client)

	first, err := svc.EnhancePhase(context.Background(), "task", backendPhase())
	require.NoError(t, err)

	second, err := svc.EnhancePhase(context.Background(), "task", backendPhase())
	require.NoError(t, err)

	assert.True(t, second.FromCache)
	assert.Equal(t, first.Phase, second.Phase)
	assert.Equal(t, 1, client.callCount(), "a cache hit must not call the model")
}

func TestEnhancePhaseRepairsInvalidJSON(t *testing.T) {
	client := newMockClient(
		"not json at all",
		validEnhancementJSON(t),
	)
	svc := NewService(client)

	result, err := svc.EnhancePhase(context.Background(), "task", backendPhase())
	require.NoError(t, err)

	assert.False(t, result.Fallback)
	assert.Equal(t, 2, client.callCount())

	// The second call is the repair attempt and echoes the previous failure.
	assert.Contains(t, client.prompt(1), "previous response could not be used")
	assert.Contains(t, client.prompt(1), "ENHANCE-002")
}

func TestEnhancePhaseDegradesToSimplifiedSchema(t *testing.T) {
	simplified := `{"description": "d", "reasoning": "r",
		"files": [{"path": "a.ts", "purpose": "p", "key_changes": ["c"]}]}`

	client := newMockClient(
		"garbage", "garbage", "garbage", // full-schema attempts
		simplified, // degraded call
	)
	svc := NewService(client)

	result, err := svc.EnhancePhase(context.Background(), "task", backendPhase())
	require.NoError(t, err)

	assert.False(t, result.Fallback)
	assert.Equal(t, 4, client.callCount())
	assert.Equal(t, "d", result.Phase.Description)
	// Missing sections are filled so the result satisfies the full schema.
	assert.True(t, Validate(result.Phase).Valid())
}

func TestEnhancePhaseFallbackNeverThrows(t *testing.T) {
	client := newMockClient("persistent garbage")
	svc := NewService(client)

	result, err := svc.EnhancePhase(context.Background(), "task", backendPhase())
	require.NoError(t, err, "enhancement failure is absorbed, never surfaced")

	assert.True(t, result.Fallback)
	assert.True(t, Validate(result.Phase).Valid())
	assert.Equal(t, 4, client.callCount(), "three full attempts plus one degraded call")
}

func TestEnhancePhaseCachesFallback(t *testing.T) {
	client := newMockClient("persistent garbage")
	svc := NewService(client)

	_, err := svc.EnhancePhase(context.Background(), "task", backendPhase())
	require.NoError(t, err)
	calls := client.callCount()

	second, err := svc.EnhancePhase(context.Background(), "task", backendPhase())
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, calls, client.callCount())
}

func TestEnhancePhaseAbortsOnAuthError(t *testing.T) {
	client := newMockClient(validEnhancementJSON(t))
	client.errs = []error{
		errors.NewFatal(errors.NewProviderAuthError("mock")),
		errors.NewFatal(errors.NewProviderAuthError("mock")),
	}
	svc := NewService(client)

	result, err := svc.EnhancePhase(context.Background(), "task", backendPhase())
	require.NoError(t, err)

	assert.True(t, result.Fallback)
	assert.Equal(t, 2, client.callCount(),
		"auth failure skips remaining full attempts; only the degraded call follows")
}

func TestEnhanceAllBatch(t *testing.T) {
	plan := twoPhasePlan()
	client := newMockClient(validBatchJSON(t, len(plan.Phases)))
	svc := NewService(client)

	results, err := svc.EnhanceAll(context.Background(), plan.Task, plan)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, 1, client.callCount(), "batch mode issues a single model call")
	for _, r := range results {
		assert.False(t, r.Fallback)
		assert.True(t, Validate(r.Phase).Valid())
	}

	// The batch prompt covers every phase.
	assert.Contains(t, client.prompt(0), "Project Setup")
	assert.Contains(t, client.prompt(0), "Backend Services")
}

func TestEnhanceAllServedFromCache(t *testing.T) {
	plan := twoPhasePlan()
	client := newMockClient(validBatchJSON(t, len(plan.Phases)))
	svc := NewService(client)

	_, err := svc.EnhanceAll(context.Background(), plan.Task, plan)
	require.NoError(t, err)

	results, err := svc.EnhanceAll(context.Background(), plan.Task, plan)
	require.NoError(t, err)

	assert.Equal(t, 1, client.callCount())
	for _, r := range results {
		assert.True(t, r.FromCache)
	}
}

func TestEnhanceAllPhaseCountMismatchRetriesThenFails(t *testing.T) {
	plan := twoPhasePlan()
	client := newMockClient(validBatchJSON(t, 1)) // one phase short, every attempt
	svc := NewService(client)

	_, err := svc.EnhanceAll(context.Background(), plan.Task, plan)
	require.Error(t, err)

	var pfErr *errors.PlanforgeError
	require.True(t, stderrors.As(err, &pfErr))
	assert.Equal(t, errors.ErrCodeEnhanceBatchFailed, pfErr.Code)
	assert.Equal(t, maxAttempts, client.callCount())
}

func TestEnhanceAllRequiresCredential(t *testing.T) {
	client := newMockClient()
	client.available = false

	_, err := NewService(client).EnhanceAll(context.Background(), "task", twoPhasePlan())
	require.Error(t, err)

	var pfErr *errors.PlanforgeError
	require.True(t, stderrors.As(err, &pfErr))
	assert.Equal(t, errors.ErrCodeEnhanceNotInitialized, pfErr.Code)
}

func TestCacheCountersTrackHitsAndMisses(t *testing.T) {
	_, m := metrics.NewRegistry()
	client := newMockClient(validEnhancementJSON(t))
	svc := NewService(client, WithMetrics(m))

	_, err := svc.EnhancePhase(context.Background(), "task", backendPhase())
	require.NoError(t, err)

	second, err := svc.EnhancePhase(context.Background(), "task", backendPhase())
	require.NoError(t, err)
	require.True(t, second.FromCache)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheHits))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheMisses))
}

func TestBatchCacheCountsEveryPhaseHit(t *testing.T) {
	_, m := metrics.NewRegistry()
	plan := twoPhasePlan()
	client := newMockClient(validBatchJSON(t, len(plan.Phases)))
	svc := NewService(client, WithMetrics(m))

	_, err := svc.EnhanceAll(context.Background(), plan.Task, plan)
	require.NoError(t, err)
	_, err = svc.EnhanceAll(context.Background(), plan.Task, plan)
	require.NoError(t, err)

	assert.Equal(t, float64(len(plan.Phases)), testutil.ToFloat64(m.CacheHits))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheMisses))
}

func TestProviderErrorsAreCounted(t *testing.T) {
	_, m := metrics.NewRegistry()
	client := newMockClient(validEnhancementJSON(t))
	client.errs = []error{errors.NewTransient(fmt.Errorf("rate limited"))}
	svc := NewService(client, WithMetrics(m))

	result, err := svc.EnhancePhase(context.Background(), "task", backendPhase())
	require.NoError(t, err)
	assert.False(t, result.Fallback)

	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.ProviderErrors.WithLabelValues("mock", "transient")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.ProviderCalls.WithLabelValues("mock", "error")))
}

func TestTestConnection(t *testing.T) {
	client := newMockClient(validEnhancementJSON(t))
	svc := NewService(client)
	assert.True(t, svc.TestConnection(context.Background()))

	client.healthErr = fmt.Errorf("boom")
	assert.False(t, svc.TestConnection(context.Background()))

	client.available = false
	client.healthErr = nil
	assert.False(t, svc.TestConnection(context.Background()))
}
