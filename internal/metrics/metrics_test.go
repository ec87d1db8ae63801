package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryIsolated(t *testing.T) {
	reg, m := NewRegistry()
	require.NotNil(t, m)

	m.PlanGenerations.WithLabelValues("web-app", "rule-based").Inc()
	m.CacheHits.Inc()
	m.CacheHits.Inc()
	m.RecordError("PROVIDER-003")

	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.PlanGenerations.WithLabelValues("web-app", "rule-based")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.CacheHits))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.Errors.WithLabelValues("PROVIDER-003")))

	// Metrics land in the isolated registry, not the global one.
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestGaugeMovesBothWays(t *testing.T) {
	_, m := NewRegistry()

	m.GateInFlight.Inc()
	m.GateInFlight.Inc()
	m.GateInFlight.Dec()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.GateInFlight))
}

func TestDefaultIsSingleton(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	// The default instance registers against the global registry; creating it
	// twice must return the same collectors instead of re-registering.
	first := GetDefault()
	second := GetDefault()
	assert.Same(t, first, second)
}
