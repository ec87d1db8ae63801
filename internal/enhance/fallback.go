package enhance

import (
	"fmt"

	"github.com/felixgeelhaar/planforge/pkg/planforge/types"
)

// Fallback synthesizes an enhancement from the phase's own base content. It
// is used when every model attempt has failed and never returns nil, so
// enhancement failure is always absorbed into a usable, if generic, result.
func Fallback(phase types.Phase) *types.EnhancedPhase {
	files := make([]types.EnhancedFile, 0, len(phase.Files))
	steps := make([]string, 0, len(phase.Files))
	components := make([]string, 0, len(phase.Files))

	for _, f := range phase.Files {
		keyChanges := f.Details
		if len(keyChanges) == 0 {
			keyChanges = []string{f.Description}
		}
		files = append(files, types.EnhancedFile{
			Path:       f.Path,
			Purpose:    f.Description,
			KeyChanges: keyChanges,
		})
		steps = append(steps, fmt.Sprintf("%s %s: %s", f.Action, f.Path, f.Description))
		components = append(components, f.Path)
	}
	if len(steps) == 0 {
		steps = []string{phase.Description}
	}

	return &types.EnhancedPhase{
		Description: phase.Description,
		Reasoning:   fmt.Sprintf("Derived from the base plan for the %s phase; model guidance was unavailable.", phase.Name),
		Architecture: types.Architecture{
			Components: components,
			DataFlow:   []string{},
			Interfaces: []string{},
			Patterns:   []string{},
			Summary:    fmt.Sprintf("Follow the file manifest for the %s phase.", phase.Name),
		},
		Implementation: types.Implementation{
			Steps:         steps,
			Approach:      "Work through the file manifest in order.",
			ErrorHandling: "Return errors to the caller; do not swallow failures.",
			Testing:       "Cover the new code with the plan's testing phase.",
			Security:      "Apply standard input validation and secret handling.",
		},
		Files: files,
	}
}
