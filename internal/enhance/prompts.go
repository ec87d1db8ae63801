package enhance

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/planforge/pkg/planforge/types"
)

const systemPrompt = `You are a senior software architect reviewing an implementation plan.
Respond with a single JSON object and nothing else: no markdown fences, no prose before or after the JSON.`

const fullSchema = `{
  "description": "expanded phase description",
  "reasoning": "why this phase is structured this way",
  "architecture": {
    "components": ["component name and responsibility"],
    "data_flow": ["how data moves through the phase"],
    "interfaces": ["boundaries this phase exposes or consumes"],
    "patterns": ["design patterns to apply"],
    "summary": "one-paragraph architecture summary"
  },
  "implementation": {
    "steps": ["ordered implementation step"],
    "approach": "overall implementation approach",
    "error_handling": "how failures are handled",
    "testing": "how this phase is verified",
    "security": "security considerations"
  },
  "files": [
    {"path": "file path", "purpose": "what the file is for", "key_changes": ["specific change"]}
  ]
}`

const simplifiedSchema = `{
  "description": "expanded phase description",
  "reasoning": "why this phase is structured this way",
  "files": [
    {"path": "file path", "purpose": "what the file is for", "key_changes": ["specific change"]}
  ]
}`

// buildPhasePrompt renders the full-schema prompt for one phase.
func buildPhasePrompt(task string, phase types.Phase) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Task: %s\n\n", task)
	fmt.Fprintf(&b, "Phase: %s\n", phase.Name)
	fmt.Fprintf(&b, "Phase description: %s\n", phase.Description)
	writeManifest(&b, phase)

	b.WriteString("\nExpand this phase with architectural and implementation guidance.\n")
	b.WriteString("Respond with JSON matching exactly this schema:\n")
	b.WriteString(fullSchema)
	b.WriteString("\n")

	return b.String()
}

// buildSimplifiedPrompt renders the degraded last-resort prompt for one phase.
func buildSimplifiedPrompt(task string, phase types.Phase) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Task: %s\n\n", task)
	fmt.Fprintf(&b, "Phase: %s\n", phase.Name)
	writeManifest(&b, phase)

	b.WriteString("\nRespond with JSON matching exactly this schema:\n")
	b.WriteString(simplifiedSchema)
	b.WriteString("\n")

	return b.String()
}

// buildRepairPrompt echoes the previous failure and asks for corrected JSON.
func buildRepairPrompt(original, previousError string) string {
	var b strings.Builder

	b.WriteString("Your previous response could not be used: ")
	b.WriteString(previousError)
	b.WriteString("\n\nAnswer the request again with corrected, complete JSON only.\n\n")
	b.WriteString(original)

	return b.String()
}

// buildBatchPrompt renders one prompt covering every phase of a plan. The
// response is a JSON object whose "phases" array matches the plan's phase
// order exactly.
func buildBatchPrompt(task string, plan *types.Plan) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Task: %s\n\n", task)
	fmt.Fprintf(&b, "Implementation plan with %d phases:\n\n", len(plan.Phases))

	for i, phase := range plan.Phases {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, phase.Name, phase.Description)
		writeManifest(&b, phase)
		b.WriteString("\n")
	}

	b.WriteString("Expand every phase with architectural and implementation guidance.\n")
	b.WriteString("Respond with a JSON object of the form {\"phases\": [...]}, where the\n")
	b.WriteString("phases array has one entry per phase, in the order listed above, each\n")
	b.WriteString("matching exactly this schema:\n")
	b.WriteString(fullSchema)
	b.WriteString("\n")

	return b.String()
}

func writeManifest(b *strings.Builder, phase types.Phase) {
	if len(phase.Files) == 0 {
		return
	}
	b.WriteString("Files:\n")
	for _, f := range phase.Files {
		fmt.Fprintf(b, "- %s (%s): %s\n", f.Path, f.Action, f.Description)
		for _, detail := range f.Details {
			fmt.Fprintf(b, "  - %s\n", detail)
		}
	}
}
