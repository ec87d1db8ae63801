package enhance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/planforge/pkg/planforge/types"
)

func validEnhancement() *types.EnhancedPhase {
	return &types.EnhancedPhase{
		Description: "expanded",
		Reasoning:   "because",
		Architecture: types.Architecture{
			Components: []string{"api"},
			DataFlow:   []string{"request to handler"},
			Interfaces: []string{"http"},
			Patterns:   []string{"repository"},
			Summary:    "layered",
		},
		Implementation: types.Implementation{
			Steps:         []string{"do the thing"},
			Approach:      "incremental",
			ErrorHandling: "wrap and return",
			Testing:       "unit tests",
			Security:      "validate input",
		},
		Files: []types.EnhancedFile{
			{Path: "src/index.ts", Purpose: "entry", KeyChanges: []string{"add server"}},
		},
	}
}

func TestValidatePasses(t *testing.T) {
	result := Validate(validEnhancement())
	assert.True(t, result.Valid())
	assert.Equal(t, "valid", result.String())
}

func TestValidateReasons(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.EnhancedPhase)
		want   InvalidReason
	}{
		{"missing description", func(e *types.EnhancedPhase) { e.Description = "" }, ReasonMissingDescription},
		{"missing reasoning", func(e *types.EnhancedPhase) { e.Reasoning = "" }, ReasonMissingReasoning},
		{"nil architecture array", func(e *types.EnhancedPhase) { e.Architecture.DataFlow = nil }, ReasonArchitectureIncomplete},
		{"missing architecture summary", func(e *types.EnhancedPhase) { e.Architecture.Summary = "" }, ReasonArchitectureIncomplete},
		{"nil steps", func(e *types.EnhancedPhase) { e.Implementation.Steps = nil }, ReasonImplementationIncomplete},
		{"missing security", func(e *types.EnhancedPhase) { e.Implementation.Security = "" }, ReasonImplementationIncomplete},
		{"no files", func(e *types.EnhancedPhase) { e.Files = nil }, ReasonNoFiles},
		{"file without path", func(e *types.EnhancedPhase) { e.Files[0].Path = "" }, ReasonFileEntryIncomplete},
		{"file without key changes", func(e *types.EnhancedPhase) { e.Files[0].KeyChanges = nil }, ReasonFileEntryIncomplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEnhancement()
			tt.mutate(e)

			result := Validate(e)
			assert.False(t, result.Valid())
			assert.Contains(t, result.Reasons, tt.want)
		})
	}
}

func TestValidateCollectsMultipleReasons(t *testing.T) {
	e := validEnhancement()
	e.Description = ""
	e.Reasoning = ""

	result := Validate(e)
	assert.Len(t, result.Reasons, 2)
}

func TestValidateSimplifiedIgnoresArchitecture(t *testing.T) {
	e := &types.EnhancedPhase{
		Description: "expanded",
		Reasoning:   "because",
		Files: []types.EnhancedFile{
			{Path: "src/index.ts", Purpose: "entry"},
		},
	}

	assert.True(t, ValidateSimplified(e).Valid())
	assert.False(t, Validate(e).Valid(), "full schema still requires architecture")
}
