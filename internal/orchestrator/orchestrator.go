// Package orchestrator connects the synchronous planning path with background
// model enhancement. Plan generation never waits on the model: the base plan
// returns immediately and callers poll enhancement status by task hash.
package orchestrator

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/planforge/internal/analysis"
	"github.com/felixgeelhaar/planforge/internal/enhance"
	"github.com/felixgeelhaar/planforge/internal/errors"
	"github.com/felixgeelhaar/planforge/internal/log"
	"github.com/felixgeelhaar/planforge/internal/metrics"
	"github.com/felixgeelhaar/planforge/internal/planner"
	"github.com/felixgeelhaar/planforge/pkg/planforge/types"
)

// Sweep defaults: abandoned state is removed after MaxStateAge, checked every
// SweepInterval.
const (
	DefaultMaxStateAge   = time.Hour
	DefaultSweepInterval = 10 * time.Minute
)

// Enhancer is the slice of the enhancement service the orchestrator uses.
type Enhancer interface {
	EnhanceAll(ctx context.Context, task string, plan *types.Plan) ([]*enhance.Result, error)
}

// GenerateResult is the synchronous output of GeneratePlan.
type GenerateResult struct {
	Plan     *types.Plan         `json:"plan"`
	TaskHash string              `json:"task_hash"`
	Analysis *types.TaskAnalysis `json:"analysis"`
}

// Orchestrator owns plan generation and enhancement state.
type Orchestrator struct {
	planner  *planner.Planner
	enhancer Enhancer
	states   StateStore
	logger   *log.Logger
	metrics  *metrics.Metrics

	// hasCredential decides rule-based versus hybrid generation.
	hasCredential func() bool

	maxStateAge   time.Duration
	sweepInterval time.Duration

	// background tracks detached enhancement goroutines for drain on
	// shutdown and deterministic tests.
	background sync.WaitGroup
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPlanner overrides the default planner.
func WithPlanner(p *planner.Planner) Option {
	return func(o *Orchestrator) { o.planner = p }
}

// WithStateStore overrides the default in-memory store.
func WithStateStore(s StateStore) Option {
	return func(o *Orchestrator) { o.states = s }
}

// WithLogger overrides the default logger.
func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithMetrics attaches a metrics instance.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithCredentialCheck overrides how the orchestrator decides whether a model
// credential is available.
func WithCredentialCheck(check func() bool) Option {
	return func(o *Orchestrator) { o.hasCredential = check }
}

// WithMaxStateAge overrides the sweep age threshold.
func WithMaxStateAge(age time.Duration) Option {
	return func(o *Orchestrator) {
		if age > 0 {
			o.maxStateAge = age
		}
	}
}

// WithSweepInterval overrides how often the sweeper runs.
func WithSweepInterval(interval time.Duration) Option {
	return func(o *Orchestrator) {
		if interval > 0 {
			o.sweepInterval = interval
		}
	}
}

// New creates an orchestrator. The enhancer may be nil when no model
// credential can ever be present; pair that with a credential check that
// returns false.
func New(enhancer Enhancer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		planner:       planner.New(),
		enhancer:      enhancer,
		states:        NewMemoryStore(),
		logger:        log.DefaultLogger(),
		hasCredential: func() bool { return enhancer != nil },
		maxStateAge:   DefaultMaxStateAge,
		sweepInterval: DefaultSweepInterval,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GeneratePlan runs the synchronous fast path: analyze, plan, register
// enhancement state, kick off background enhancement, return immediately.
// It never waits on the model.
func (o *Orchestrator) GeneratePlan(ctx context.Context, task string) (*GenerateResult, error) {
	if strings.TrimSpace(task) == "" {
		return nil, errors.New(errors.ErrCodeTaskEmpty, "task description is empty").
			WithSuggestion("Describe what you want to build in a sentence or two")
	}

	start := time.Now()
	a := analysis.Analyze(task)
	plan := o.planner.PlanFromAnalysis(task, a)

	hybrid := o.hasCredential() && o.enhancer != nil
	if hybrid {
		plan.GenerationMethod = types.GenerationHybrid
	}

	taskHash := enhance.TaskHash(task)
	o.states.Register(newState(taskHash, plan, a, time.Now()))

	if o.metrics != nil {
		o.metrics.PlanGenerations.
			WithLabelValues(string(a.ProjectType), string(plan.GenerationMethod)).Inc()
		o.metrics.PlanDuration.
			WithLabelValues(string(a.ProjectType)).Observe(time.Since(start).Seconds())
		o.metrics.PlanPhaseCount.
			WithLabelValues(string(a.ProjectType)).Observe(float64(len(plan.Phases)))
		o.metrics.ActiveStates.Set(float64(o.states.Len()))
	}

	if hybrid {
		o.background.Add(1)
		// Detached from the request that returned the base plan; abandonment
		// is handled by the state sweep, not cancellation.
		go o.runEnhancement(task, taskHash, plan)
	}

	o.logger.Info("plan generated",
		"task_hash", taskHash,
		"project_type", a.ProjectType,
		"phases", len(plan.Phases),
		"method", plan.GenerationMethod)

	return &GenerateResult{Plan: plan, TaskHash: taskHash, Analysis: a}, nil
}

// runEnhancement performs the batch enhancement and writes results into the
// state. All phases succeed or fail together; progress tracks "all
// processed", not "all succeeded".
func (o *Orchestrator) runEnhancement(task, taskHash string, plan *types.Plan) {
	defer o.background.Done()

	o.states.Update(taskHash, func(s *State) {
		for i := range s.Plan.Phases {
			s.Phases[i] = types.PhaseStatusEnhancing
		}
	})

	results, err := o.enhancer.EnhanceAll(context.Background(), task, plan)

	o.states.Update(taskHash, func(s *State) {
		total := len(s.Plan.Phases)
		if err != nil {
			for i := 0; i < total; i++ {
				s.Phases[i] = types.PhaseStatusEnhancementFailed
			}
		} else {
			for i := 0; i < total && i < len(results); i++ {
				if results[i].Fallback {
					s.Phases[i] = types.PhaseStatusEnhancementFailed
				} else {
					s.Phases[i] = types.PhaseStatusEnhanced
				}
				s.Enhanced[i] = results[i].Phase
			}
		}
		s.Progress.Current = total
		s.Complete = true
	})

	if err != nil {
		o.logger.WithError(err).Warn("batch enhancement failed", "task_hash", taskHash)
		return
	}
	o.logger.Info("enhancement complete", "task_hash", taskHash, "phases", len(results))
}

// GetStatus returns a point-in-time snapshot of enhancement state. Polling is
// a pure read: it never triggers re-enhancement.
func (o *Orchestrator) GetStatus(taskHash string) (*types.StatusSnapshot, error) {
	snapshot, ok := o.states.Snapshot(taskHash)
	if !ok {
		return nil, errors.NewStateNotFoundError(taskHash)
	}
	return snapshot, nil
}

// StartSweeper launches the periodic age sweep. It stops when ctx is done.
func (o *Orchestrator) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(o.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				o.sweepOnce()
			}
		}
	}()
}

func (o *Orchestrator) sweepOnce() {
	removed := o.states.Sweep(o.maxStateAge)
	if removed > 0 {
		o.logger.Info("swept abandoned plan state", "removed", removed)
	}
	if o.metrics != nil {
		o.metrics.StatesSwept.Add(float64(removed))
		o.metrics.ActiveStates.Set(float64(o.states.Len()))
	}
}

// Drain blocks until all in-flight background enhancements finish. Used by
// graceful shutdown and tests.
func (o *Orchestrator) Drain() {
	o.background.Wait()
}
