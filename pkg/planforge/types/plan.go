package types

// PhaseID identifies one of the fixed pipeline phases.
type PhaseID string

const (
	PhaseSetup    PhaseID = "phase-setup"
	PhaseDatabase PhaseID = "phase-database"
	PhaseAuth     PhaseID = "phase-auth"
	PhaseBackend  PhaseID = "phase-backend"
	PhaseFrontend PhaseID = "phase-frontend"
	PhaseTesting  PhaseID = "phase-testing"
)

// FileAction is the kind of change a FileChange describes.
type FileAction string

const (
	ActionCreate FileAction = "create"
	ActionModify FileAction = "modify"
	ActionDelete FileAction = "delete"
)

// PhaseStatus is the lifecycle state of a phase.
type PhaseStatus string

const (
	PhaseStatusPending           PhaseStatus = "pending"
	PhaseStatusEnhancing         PhaseStatus = "enhancing"
	PhaseStatusEnhanced          PhaseStatus = "enhanced"
	PhaseStatusEnhancementFailed PhaseStatus = "enhancement_failed"
)

// GenerationMethod records how a plan was produced.
type GenerationMethod string

const (
	GenerationRuleBased GenerationMethod = "rule-based"
	GenerationHybrid    GenerationMethod = "hybrid"
)

// FileChange is one file-level instruction inside a phase.
type FileChange struct {
	Path        string     `json:"path"`
	Action      FileAction `json:"action"`
	Description string     `json:"description"`
	Details     []string   `json:"details"`
}

// Phase is a unit of planned work. Phases are generated once per plan and
// never added or removed afterwards; only enhancement content changes.
type Phase struct {
	ID          PhaseID      `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Files       []FileChange `json:"files"`
	// Dependencies reference phase ids that occur strictly earlier in the
	// pipeline order. Never cyclic by construction.
	Dependencies  []PhaseID   `json:"dependencies"`
	EstimatedTime string      `json:"estimated_time"`
	Status        PhaseStatus `json:"status"`
}

// Plan is the deliverable. The object is never mutated after creation;
// enhancement results are stored separately keyed by phase index.
type Plan struct {
	ID       string `json:"id"`
	Task     string `json:"task"`
	Overview string `json:"overview"`
	// Phases are in pipeline generation order:
	// setup → [database] → [auth] → [backend] → [frontend] → testing.
	Phases []Phase `json:"phases"`
	// TechStack is advisory and ordered; duplicates are possible when rules
	// overlap.
	TechStack        []string         `json:"tech_stack"`
	Risks            []string         `json:"risks"`
	GenerationMethod GenerationMethod `json:"generation_method"`
}
