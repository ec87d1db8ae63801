package enhance

import (
	"fmt"

	"github.com/felixgeelhaar/planforge/pkg/planforge/types"
)

// InvalidReason names one way an enhancement payload can fail validation.
type InvalidReason string

const (
	ReasonMissingDescription       InvalidReason = "missing_description"
	ReasonMissingReasoning         InvalidReason = "missing_reasoning"
	ReasonArchitectureIncomplete   InvalidReason = "architecture_incomplete"
	ReasonImplementationIncomplete InvalidReason = "implementation_incomplete"
	ReasonFileEntryIncomplete      InvalidReason = "file_entry_incomplete"
	ReasonNoFiles                  InvalidReason = "no_files"
)

// ValidationResult carries every reason a payload was rejected. An empty
// reason list means the payload is valid.
type ValidationResult struct {
	Reasons []InvalidReason
}

// Valid reports whether the payload passed structural validation.
func (r ValidationResult) Valid() bool { return len(r.Reasons) == 0 }

// String renders the reasons for logs and repair prompts.
func (r ValidationResult) String() string {
	if r.Valid() {
		return "valid"
	}
	return fmt.Sprintf("invalid: %v", r.Reasons)
}

func (r *ValidationResult) add(reason InvalidReason) {
	for _, existing := range r.Reasons {
		if existing == reason {
			return
		}
	}
	r.Reasons = append(r.Reasons, reason)
}

// Validate structurally checks a full-schema enhancement payload. A
// structural mismatch is a validation failure, never a crash; callers use the
// result to drive the retry path.
func Validate(e *types.EnhancedPhase) ValidationResult {
	var result ValidationResult

	if e.Description == "" {
		result.add(ReasonMissingDescription)
	}
	if e.Reasoning == "" {
		result.add(ReasonMissingReasoning)
	}

	arch := e.Architecture
	if arch.Components == nil || arch.DataFlow == nil ||
		arch.Interfaces == nil || arch.Patterns == nil || arch.Summary == "" {
		result.add(ReasonArchitectureIncomplete)
	}

	impl := e.Implementation
	if impl.Steps == nil || impl.Approach == "" || impl.ErrorHandling == "" ||
		impl.Testing == "" || impl.Security == "" {
		result.add(ReasonImplementationIncomplete)
	}

	if len(e.Files) == 0 {
		result.add(ReasonNoFiles)
	}
	for _, f := range e.Files {
		if f.Path == "" || f.Purpose == "" || f.KeyChanges == nil {
			result.add(ReasonFileEntryIncomplete)
		}
	}

	return result
}

// ValidateSimplified checks the degraded last-resort schema: only
// description, reasoning, and files are required.
func ValidateSimplified(e *types.EnhancedPhase) ValidationResult {
	var result ValidationResult

	if e.Description == "" {
		result.add(ReasonMissingDescription)
	}
	if e.Reasoning == "" {
		result.add(ReasonMissingReasoning)
	}
	if len(e.Files) == 0 {
		result.add(ReasonNoFiles)
	}
	for _, f := range e.Files {
		if f.Path == "" || f.Purpose == "" {
			result.add(ReasonFileEntryIncomplete)
		}
	}

	return result
}
