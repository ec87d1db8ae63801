// Package agent provides a deterministic mock agent runner. It simulates
// executing a plan phase with canned output keyed by the phase name; no real
// execution happens.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/planforge/internal/log"
	"github.com/felixgeelhaar/planforge/pkg/planforge/types"
)

// Result is the outcome of a simulated phase run.
type Result struct {
	PhaseID types.PhaseID `json:"phase_id"`
	Success bool          `json:"success"`
	Output  string        `json:"output"`
}

// Runner executes plan phases.
type Runner interface {
	Run(ctx context.Context, phase types.Phase) (*Result, error)
}

// MockRunner is the built-in Runner: deterministic canned text, always
// successful, no side effects.
type MockRunner struct {
	logger *log.Logger
}

// NewMockRunner creates a MockRunner. It logs through the process-wide
// logger so CLI log flags apply.
func NewMockRunner() *MockRunner {
	return &MockRunner{logger: log.DefaultLogger()}
}

// cannedOutputs map phase-name keywords to simulated output, checked in order.
var cannedOutputs = []struct {
	keyword string
	output  string
}{
	{"setup", "Scaffolded the project: manifests written, dependencies installed, entrypoint compiles."},
	{"database", "Applied the schema and verified connectivity; model queries round-trip against a local instance."},
	{"auth", "Registration and login flows pass; tokens verify and expired sessions are rejected."},
	{"backend", "API routes respond with expected payloads; business logic covered by service-level checks."},
	{"frontend", "Components render and the client talks to the API; state updates propagate to the UI."},
	{"test", "Test suite executed: all cases pass, coverage recorded."},
}

// Run implements Runner with keyword-matched canned output.
func (r *MockRunner) Run(ctx context.Context, phase types.Phase) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := strings.ToLower(phase.Name)
	output := fmt.Sprintf("Completed phase %q: worked through %d planned file changes.",
		phase.Name, len(phase.Files))
	for _, canned := range cannedOutputs {
		if strings.Contains(name, canned.keyword) {
			output = canned.output
			break
		}
	}

	r.logger.Debug("mock agent run", "phase", phase.ID)

	return &Result{
		PhaseID: phase.ID,
		Success: true,
		Output:  output,
	}, nil
}
