package agent

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/planforge/internal/log"
	"github.com/felixgeelhaar/planforge/pkg/planforge/types"
)

func TestRunKeyedByPhaseName(t *testing.T) {
	runner := NewMockRunner()

	tests := []struct {
		name     string
		contains string
	}{
		{"Project Setup", "Scaffolded"},
		{"Database Layer", "schema"},
		{"Authentication", "login"},
		{"Backend Services", "API routes"},
		{"Frontend", "Components render"},
		{"Testing", "Test suite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := runner.Run(context.Background(), types.Phase{
				ID:   types.PhaseID("phase-x"),
				Name: tt.name,
			})
			require.NoError(t, err)
			assert.True(t, result.Success)
			assert.Contains(t, result.Output, tt.contains)
		})
	}
}

func TestRunUnknownPhaseFallsBackToGenericOutput(t *testing.T) {
	runner := NewMockRunner()

	result, err := runner.Run(context.Background(), types.Phase{
		ID:    types.PhaseID("phase-misc"),
		Name:  "Deployment",
		Files: []types.FileChange{{Path: "deploy.sh"}},
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, result.Output, "Deployment")
}

func TestRunIsDeterministic(t *testing.T) {
	runner := NewMockRunner()
	phase := types.Phase{ID: types.PhaseBackend, Name: "Backend Services"}

	first, err := runner.Run(context.Background(), phase)
	require.NoError(t, err)
	second, err := runner.Run(context.Background(), phase)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRunLogsThroughProcessLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	cfg := log.DefaultConfig()
	cfg.Level = log.LevelDebug
	cfg.Output = log.NewOutput(buf)
	log.SetDefaultLogger(log.New(cfg))
	t.Cleanup(func() { log.SetDefaultLogger(log.Default()) })

	runner := NewMockRunner()
	_, err := runner.Run(context.Background(), types.Phase{
		ID:   types.PhaseSetup,
		Name: "Project Setup",
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "mock agent run",
		"runner must log through the configured process-wide logger")
}

func TestRunHonorsCancelledContext(t *testing.T) {
	runner := NewMockRunner()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx, types.Phase{ID: types.PhaseSetup, Name: "Project Setup"})
	assert.Error(t, err)
}
