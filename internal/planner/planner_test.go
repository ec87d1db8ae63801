package planner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/planforge/pkg/planforge/types"
)

func fixedIDs() IDGenerator {
	return IDGeneratorFunc(func() string { return "plan-test" })
}

func testPlanner() *Planner {
	return New(WithIDGenerator(fixedIDs()))
}

func TestPlanPipelineOrder(t *testing.T) {
	plan := testPlanner().Plan("fullstack app with auth and a rest api")

	require.NotEmpty(t, plan.Phases)
	assert.Equal(t, types.PhaseSetup, plan.Phases[0].ID, "setup is always first")
	assert.Equal(t, types.PhaseTesting, plan.Phases[len(plan.Phases)-1].ID, "testing is always last")

	// The full pipeline for this task: all six phases, fixed order.
	want := []types.PhaseID{
		types.PhaseSetup, types.PhaseDatabase, types.PhaseAuth,
		types.PhaseBackend, types.PhaseFrontend, types.PhaseTesting,
	}
	got := make([]types.PhaseID, len(plan.Phases))
	for i, p := range plan.Phases {
		got[i] = p.ID
	}
	assert.Equal(t, want, got)
}

func TestDependenciesPointStrictlyBackward(t *testing.T) {
	tasks := []string{
		"",
		"a cli tool for backups",
		"rest api for inventory",
		"fullstack banking platform with login and websocket chat",
		"fastapi backend api with pydantic models",
	}

	for _, task := range tasks {
		plan := testPlanner().Plan(task)

		seen := map[types.PhaseID]bool{}
		for _, phase := range plan.Phases {
			for _, dep := range phase.Dependencies {
				assert.True(t, seen[dep],
					"task %q: phase %s depends on %s which does not occur earlier",
					task, phase.ID, dep)
			}
			seen[phase.ID] = true
		}
	}
}

func TestMinimalPlanHasSetupAndTesting(t *testing.T) {
	plan := testPlanner().Plan("a command line tool for backups")

	ids := phaseIDs(plan)
	assert.Contains(t, ids, types.PhaseSetup)
	assert.Contains(t, ids, types.PhaseTesting)
	assert.NotContains(t, ids, types.PhaseFrontend)
	assert.NotContains(t, ids, types.PhaseAuth)

	// With no intermediate phases, testing falls back to depending on setup.
	last := plan.Phases[len(plan.Phases)-1]
	assert.Equal(t, []types.PhaseID{types.PhaseSetup}, last.Dependencies)
}

func TestEstimatedTimes(t *testing.T) {
	plan := testPlanner().Plan("fullstack app with auth")

	want := map[types.PhaseID]string{
		types.PhaseSetup:    "30 minutes",
		types.PhaseDatabase: "45 minutes",
		types.PhaseAuth:     "60 minutes",
		types.PhaseBackend:  "90 minutes",
		types.PhaseFrontend: "120 minutes",
		types.PhaseTesting:  "60 minutes",
	}

	for _, phase := range plan.Phases {
		assert.Equal(t, want[phase.ID], phase.EstimatedTime, "phase %s", phase.ID)
	}
}

func TestAllPhasesStartPending(t *testing.T) {
	plan := testPlanner().Plan("fullstack app with auth and payments")
	for _, phase := range plan.Phases {
		assert.Equal(t, types.PhaseStatusPending, phase.Status)
	}
}

func TestFastAPIManifests(t *testing.T) {
	plan := testPlanner().Plan("Build a FastAPI backend api with authentication and a database")

	setup := phaseByID(t, plan, types.PhaseSetup)
	assert.True(t, hasFile(setup, "app/main.py"))
	assert.False(t, hasFile(setup, "package.json"))

	auth := phaseByID(t, plan, types.PhaseAuth)
	assert.True(t, hasFile(auth, "app/routers/auth.py"))

	assert.Contains(t, plan.TechStack, "FastAPI")
	assert.Contains(t, plan.TechStack, "pytest")
	assert.NotContains(t, plan.TechStack, "Express")
}

func TestFintechDatabaseManifest(t *testing.T) {
	plan := testPlanner().Plan("a banking web app with a database")

	db := phaseByID(t, plan, types.PhaseDatabase)
	assert.True(t, hasFile(db, "src/models/account.ts"))
	assert.True(t, hasFile(db, "src/models/transaction.ts"))
	assert.False(t, hasFile(db, "src/models/user.ts"))
}

func TestEcommerceBackendManifest(t *testing.T) {
	plan := testPlanner().Plan("an online store with a shopping cart and rest api")

	be := phaseByID(t, plan, types.PhaseBackend)
	assert.True(t, hasFile(be, "src/routes/products.ts"))
	assert.True(t, hasFile(be, "src/routes/orders.ts"))
}

func TestGenerationMethodIsRuleBased(t *testing.T) {
	plan := testPlanner().Plan("simple todo app")
	assert.Equal(t, types.GenerationRuleBased, plan.GenerationMethod)
}

func TestRiskStrings(t *testing.T) {
	plan := testPlanner().Plan("fullstack banking platform with login, stripe payments, websocket chat, postgres, and email")

	joined := strings.Join(plan.Risks, "\n")
	assert.Contains(t, joined, "integration risk")
	assert.Contains(t, joined, "token handling")
	assert.Contains(t, joined, "Schema changes")
	assert.Contains(t, joined, "reconnection")
	assert.Contains(t, joined, "PCI")
	assert.Contains(t, joined, "API contracts")
}

func TestOverviewTemplate(t *testing.T) {
	plan := testPlanner().Plan("simple todo app")

	assert.Contains(t, plan.Overview, "implementation plan for a web-app project")

	empty := testPlanner().Plan("")
	assert.Contains(t, empty.Overview, "core functionality")
}

func TestTechStackAllowsDuplicates(t *testing.T) {
	// A web app with a backend lists Node.js both as runtime and as the
	// backend platform. Duplicates are expected, not a defect.
	plan := testPlanner().Plan("a blog with posts and comments")

	count := 0
	for _, tech := range plan.TechStack {
		if tech == "Node.js" {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestPlanIsIdempotent(t *testing.T) {
	task := "fullstack e-commerce store with auth, postgres, and stripe checkout"
	first := testPlanner().Plan(task)
	second := testPlanner().Plan(task)
	assert.Equal(t, first, second)
}

func TestPlanUsesInjectedIDGenerator(t *testing.T) {
	plan := testPlanner().Plan("simple todo app")
	assert.Equal(t, "plan-test", plan.ID)
	assert.Equal(t, "simple todo app", plan.Task)
}

func phaseIDs(plan *types.Plan) []types.PhaseID {
	ids := make([]types.PhaseID, len(plan.Phases))
	for i, p := range plan.Phases {
		ids[i] = p.ID
	}
	return ids
}

func phaseByID(t *testing.T, plan *types.Plan, id types.PhaseID) types.Phase {
	t.Helper()
	for _, p := range plan.Phases {
		if p.ID == id {
			return p
		}
	}
	require.Failf(t, "phase not found", "plan has no phase %s", id)
	return types.Phase{}
}

func hasFile(phase types.Phase, path string) bool {
	for _, f := range phase.Files {
		if f.Path == path {
			return true
		}
	}
	return false
}
