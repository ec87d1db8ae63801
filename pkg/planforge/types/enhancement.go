package types

// EnhancedPhase is the model-enriched content for one plan phase.
type EnhancedPhase struct {
	Description string `json:"description"`
	Reasoning   string `json:"reasoning"`

	Architecture   Architecture   `json:"architecture"`
	Implementation Implementation `json:"implementation"`

	Files []EnhancedFile `json:"files"`
}

// Architecture describes the structural guidance for a phase.
type Architecture struct {
	Components []string `json:"components"`
	DataFlow   []string `json:"data_flow"`
	Interfaces []string `json:"interfaces"`
	Patterns   []string `json:"patterns"`
	Summary    string   `json:"summary"`
}

// Implementation describes how to carry out a phase.
type Implementation struct {
	Steps         []string `json:"steps"`
	Approach      string   `json:"approach"`
	ErrorHandling string   `json:"error_handling"`
	Testing       string   `json:"testing"`
	Security      string   `json:"security"`
}

// EnhancedFile is model guidance for a single file in a phase.
type EnhancedFile struct {
	Path       string   `json:"path"`
	Purpose    string   `json:"purpose"`
	KeyChanges []string `json:"key_changes"`
}

// Progress counts processed phases against the plan total.
// Current tracks "all processed", not "all succeeded".
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// StatusSnapshot is a point-in-time copy of a plan's enhancement state,
// safe to hand to callers while background enhancement mutates the original.
type StatusSnapshot struct {
	TaskHash   string                 `json:"task_hash"`
	Plan       *Plan                  `json:"plan"`
	Analysis   *TaskAnalysis          `json:"analysis"`
	Phases     map[int]PhaseStatus    `json:"phases"`
	Enhanced   map[int]*EnhancedPhase `json:"enhanced,omitempty"`
	Progress   Progress               `json:"progress"`
	IsComplete bool                   `json:"is_complete"`
}
