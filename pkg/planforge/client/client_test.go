package client

import (
	"context"
	stderrors "errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/planforge/internal/agent"
	"github.com/felixgeelhaar/planforge/internal/orchestrator"
	"github.com/felixgeelhaar/planforge/internal/server"
	"github.com/felixgeelhaar/planforge/pkg/planforge/types"
)

// newAPIServer runs a real API handler in rule-based mode behind httptest.
func newAPIServer(t *testing.T) *Client {
	t.Helper()

	orch := orchestrator.New(nil,
		orchestrator.WithCredentialCheck(func() bool { return false }))
	srv := server.New(orch, agent.NewMockRunner(), server.Config{Address: ":0"})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return New(ts.URL)
}

func TestGeneratePlanRoundTrip(t *testing.T) {
	c := newAPIServer(t)

	result, err := c.GeneratePlan(context.Background(), "build a simple todo app")
	require.NoError(t, err)

	require.NotNil(t, result.Plan)
	assert.Equal(t, types.GenerationRuleBased, result.Plan.GenerationMethod)
	assert.NotEmpty(t, result.TaskHash)
	assert.NotEmpty(t, result.Plan.Phases)
}

func TestGeneratePlanEmptyTaskReturnsAPIError(t *testing.T) {
	c := newAPIServer(t)

	_, err := c.GeneratePlan(context.Background(), "   ")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, stderrors.As(err, &apiErr))
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.Equal(t, "ANALYZE-001", apiErr.Code)
	assert.NotEmpty(t, apiErr.Suggestions)
}

func TestGetStatusAfterGenerate(t *testing.T) {
	c := newAPIServer(t)

	result, err := c.GeneratePlan(context.Background(), "build a simple todo app")
	require.NoError(t, err)

	snapshot, err := c.GetStatus(context.Background(), result.TaskHash)
	require.NoError(t, err)

	assert.Equal(t, result.TaskHash, snapshot.TaskHash)
	assert.Equal(t, len(result.Plan.Phases), snapshot.Progress.Total)
}

func TestGetStatusUnknownHash(t *testing.T) {
	c := newAPIServer(t)

	_, err := c.GetStatus(context.Background(), "deadbeefdeadbeef")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, stderrors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, "STATE-001", apiErr.Code)
}

func TestRunAgent(t *testing.T) {
	c := newAPIServer(t)

	result, err := c.RunAgent(context.Background(), types.Phase{
		ID:   types.PhaseBackend,
		Name: "Backend Services",
	})
	require.NoError(t, err)

	assert.Equal(t, types.PhaseBackend, result.PhaseID)
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.Output)
}

func TestHealth(t *testing.T) {
	c := newAPIServer(t)
	assert.NoError(t, c.Health(context.Background()))
}

func TestHealthAgainstDeadServer(t *testing.T) {
	c := New("http://127.0.0.1:1")
	assert.Error(t, c.Health(context.Background()))
}

func TestWaitForEnhancementHonorsDeadline(t *testing.T) {
	c := newAPIServer(t)

	result, err := c.GeneratePlan(context.Background(), "build a simple todo app")
	require.NoError(t, err)

	// Rule-based plans never complete enhancement; the wait must respect
	// the context deadline instead of spinning forever.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = c.WaitForEnhancement(ctx, result.TaskHash, 10*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
