package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for Planforge
type Metrics struct {
	// Plan generation metrics
	PlanGenerations *prometheus.CounterVec
	PlanDuration    *prometheus.HistogramVec
	PlanPhaseCount  *prometheus.HistogramVec

	// Provider operation metrics
	ProviderCalls   *prometheus.CounterVec
	ProviderLatency *prometheus.HistogramVec
	ProviderErrors  *prometheus.CounterVec
	ProviderTokens  *prometheus.CounterVec

	// Enhancement metrics
	EnhancementOutcomes *prometheus.CounterVec
	EnhancementDuration *prometheus.HistogramVec
	CacheHits           prometheus.Counter
	CacheMisses         prometheus.Counter
	GateInFlight        prometheus.Gauge

	// Orchestrator state metrics
	ActiveStates prometheus.Gauge
	StatesSwept  prometheus.Counter

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		PlanGenerations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planforge_plan_generations_total",
				Help: "Total number of plan generations",
			},
			[]string{"project_type", "method"},
		),
		PlanDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "planforge_plan_duration_seconds",
				Help:    "Duration of plan generation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"project_type"},
		),
		PlanPhaseCount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "planforge_plan_phase_count",
				Help:    "Number of phases per generated plan",
				Buckets: []float64{2, 3, 4, 5, 6},
			},
			[]string{"project_type"},
		),

		ProviderCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planforge_provider_calls_total",
				Help: "Total number of model provider calls",
			},
			[]string{"provider", "status"},
		),
		ProviderLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "planforge_provider_latency_seconds",
				Help:    "Latency of model provider calls",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"provider"},
		),
		ProviderErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planforge_provider_errors_total",
				Help: "Total number of model provider errors",
			},
			[]string{"provider", "kind"},
		),
		ProviderTokens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planforge_provider_tokens_total",
				Help: "Total tokens consumed by model provider calls",
			},
			[]string{"provider", "direction"},
		),

		EnhancementOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planforge_enhancement_outcomes_total",
				Help: "Enhancement results by outcome (enhanced, fallback, cached, failed)",
			},
			[]string{"outcome"},
		),
		EnhancementDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "planforge_enhancement_duration_seconds",
				Help:    "Duration of enhancement calls",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"mode"},
		),
		CacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "planforge_enhancement_cache_hits_total",
				Help: "Total enhancement cache hits",
			},
		),
		CacheMisses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "planforge_enhancement_cache_misses_total",
				Help: "Total enhancement cache misses",
			},
		),
		GateInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "planforge_enhancement_gate_in_flight",
				Help: "Model calls currently holding an admission gate slot",
			},
		),

		ActiveStates: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "planforge_active_states",
				Help: "Enhancement states currently held in memory",
			},
		),
		StatesSwept: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "planforge_states_swept_total",
				Help: "Enhancement states removed by the age sweep",
			},
		),

		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planforge_errors_total",
				Help: "Total errors by structured error code",
			},
			[]string{"code"},
		),
	}
}

// RecordError increments the error counter for a structured error code.
func (m *Metrics) RecordError(code string) {
	m.Errors.WithLabelValues(code).Inc()
}
