// Package planner deterministically builds phased implementation plans from
// an analyzed task. Planning is synchronous and performs no I/O; the design
// target is well under 100ms per plan.
package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/planforge/internal/analysis"
	"github.com/felixgeelhaar/planforge/pkg/planforge/types"
)

// IDGenerator produces plan identifiers. Injected so plan construction stays
// deterministic and testable instead of reading ambient time.
type IDGenerator interface {
	PlanID() string
}

// IDGeneratorFunc adapts a function to the IDGenerator interface.
type IDGeneratorFunc func() string

// PlanID implements IDGenerator.
func (f IDGeneratorFunc) PlanID() string { return f() }

// TimestampIDs is the default generator: plan-<unix millis>.
func TimestampIDs() IDGenerator {
	return IDGeneratorFunc(func() string {
		return fmt.Sprintf("plan-%d", time.Now().UnixMilli())
	})
}

// Planner builds plans from task text.
type Planner struct {
	ids IDGenerator
}

// Option configures a Planner.
type Option func(*Planner)

// WithIDGenerator overrides the plan id source.
func WithIDGenerator(ids IDGenerator) Option {
	return func(p *Planner) {
		p.ids = ids
	}
}

// New creates a Planner with the given options.
func New(opts ...Option) *Planner {
	p := &Planner{ids: TimestampIDs()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan analyzes the task and synthesizes phases in the fixed pipeline order:
// setup → [database] → [auth] → [backend] → [frontend] → testing.
func (p *Planner) Plan(task string) *types.Plan {
	a := analysis.Analyze(task)
	return p.PlanFromAnalysis(task, a)
}

// PlanFromAnalysis builds a plan from an existing analysis, avoiding a second
// classification pass when the caller already has one.
func (p *Planner) PlanFromAnalysis(task string, a *types.TaskAnalysis) *types.Plan {
	phases := []types.Phase{buildSetupPhase(a)}

	if a.HasDatabase {
		phases = append(phases, buildDatabasePhase(a))
	}
	if a.HasAuth {
		phases = append(phases, buildAuthPhase(a))
	}
	if a.HasBackend {
		phases = append(phases, buildBackendPhase(a))
	}
	if a.HasFrontend {
		phases = append(phases, buildFrontendPhase(a))
	}
	phases = append(phases, buildTestingPhase(a))

	return &types.Plan{
		ID:               p.ids.PlanID(),
		Task:             task,
		Overview:         buildOverview(a, len(phases)),
		Phases:           phases,
		TechStack:        buildTechStack(a),
		Risks:            buildRisks(a),
		GenerationMethod: types.GenerationRuleBased,
	}
}

// buildOverview renders the templated plan summary sentence.
func buildOverview(a *types.TaskAnalysis, phaseCount int) string {
	featureList := "core functionality"
	if len(a.Features) > 0 {
		names := make([]string, len(a.Features))
		for i, f := range a.Features {
			names[i] = string(f)
		}
		featureList = strings.Join(names, ", ")
	}
	return fmt.Sprintf("A %d-phase implementation plan for a %s project covering %s.",
		phaseCount, a.ProjectType, featureList)
}

// buildTechStack appends technology names conditioned on the same flags used
// for phase generation. Duplicates are possible and acceptable; the list is
// advisory, not a normalized set.
func buildTechStack(a *types.TaskAnalysis) []string {
	var stack []string

	if a.HasFastAPI {
		stack = append(stack, "Python", "FastAPI", "Pydantic", "Uvicorn")
	} else {
		stack = append(stack, "TypeScript", "Node.js")
	}

	if a.HasFrontend {
		stack = append(stack, "React", "Vite")
	}

	if a.HasBackend && !a.HasFastAPI {
		stack = append(stack, "Node.js", "Express")
	}

	if a.HasDatabase {
		if a.DatabaseRecommendation != nil && a.DatabaseRecommendation.Recommendation == "MongoDB" {
			stack = append(stack, "MongoDB", "Mongoose")
		} else if a.HasFastAPI {
			stack = append(stack, "PostgreSQL", "SQLAlchemy")
		} else {
			stack = append(stack, "PostgreSQL", "Prisma")
		}
	}

	if a.HasAuth {
		if a.HasFastAPI {
			stack = append(stack, "python-jose", "passlib")
		} else {
			stack = append(stack, "jsonwebtoken", "bcrypt")
		}
	}

	if a.HasRealtime {
		if a.HasFastAPI {
			stack = append(stack, "WebSockets")
		} else {
			stack = append(stack, "Socket.IO")
		}
	}

	if a.HasFastAPI {
		stack = append(stack, "pytest", "ruff")
	} else {
		stack = append(stack, "Jest", "ESLint")
	}

	return stack
}

// buildRisks appends fixed advisory strings; each condition independently
// contributes its own sentence.
func buildRisks(a *types.TaskAnalysis) []string {
	var risks []string

	if a.Complexity == types.ComplexityComplex {
		risks = append(risks, "Complex feature set increases integration risk; schedule buffer time between phases.")
	}
	if a.HasAuth {
		risks = append(risks, "Authentication mistakes have outsized security impact; review token handling and session expiry carefully.")
	}
	if a.HasDatabase {
		risks = append(risks, "Schema changes after launch are costly; validate the data model against real query patterns early.")
	}
	if a.HasRealtime {
		risks = append(risks, "Realtime features complicate state synchronization; test reconnection and message ordering under load.")
	}
	if a.HasFeature(types.FeaturePayment) {
		risks = append(risks, "Payment integration requires PCI-aware handling; never store raw card data.")
	}
	if a.ProjectType == types.ProjectTypeFullstack {
		risks = append(risks, "Full-stack scope splits attention across two codebases; keep API contracts explicit to avoid drift.")
	}

	return risks
}
