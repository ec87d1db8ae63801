package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/planforge/internal/orchestrator"
	"github.com/felixgeelhaar/planforge/pkg/planforge/types"
)

var planCmd = &cobra.Command{
	Use:   "plan <task>",
	Short: "Generate a phased implementation plan from a task description",
	Long: `Generate a phased implementation plan from a free-text task description.

The plan is produced immediately from built-in rules. When a model API
credential is available (ANTHROPIC_API_KEY or OPENAI_API_KEY), phases are
additionally enhanced with architecture and implementation guidance; pass
--wait to block until enhancement finishes and include it in the output.

Examples:
  # Print a plan as text
  planforge plan "Build a todo app with authentication"

  # Print the raw plan JSON
  planforge plan --json "Build a REST API for a blog"

  # Wait for model enhancement before printing
  planforge plan --wait "Build an e-commerce site"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlan,
}

var (
	planJSON bool
	planWait bool
)

func init() {
	planCmd.Flags().BoolVar(&planJSON, "json", false, "output the plan as JSON")
	planCmd.Flags().BoolVar(&planWait, "wait", false, "wait for background enhancement to finish")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	task := strings.Join(args, " ")

	orch, client, err := buildOrchestrator()
	if err != nil {
		return err
	}
	if client != nil {
		defer client.Close()
	}

	result, err := orch.GeneratePlan(cmd.Context(), task)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if planWait && result.Plan.GenerationMethod == types.GenerationHybrid {
		snapshot, err := waitForEnhancement(cmd.Context(), orch, result.TaskHash)
		if err != nil {
			return err
		}
		if planJSON {
			return writeJSON(out, snapshot)
		}
		printPlan(out, result.Plan)
		printEnhancement(out, result.Plan, snapshot)
		return nil
	}

	if planJSON {
		return writeJSON(out, result)
	}
	printPlan(out, result.Plan)
	return nil
}

// waitForEnhancement polls the orchestrator until background enhancement has
// processed every phase or the command context ends.
func waitForEnhancement(ctx context.Context, orch *orchestrator.Orchestrator, taskHash string) (*types.StatusSnapshot, error) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		snapshot, err := orch.GetStatus(taskHash)
		if err != nil {
			return nil, err
		}
		if snapshot.IsComplete {
			return snapshot, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func writeJSON(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func printPlan(w io.Writer, plan *types.Plan) {
	fmt.Fprintf(w, "Plan: %s\n", plan.ID)
	fmt.Fprintf(w, "Task: %s\n\n", plan.Task)
	fmt.Fprintf(w, "%s\n\n", plan.Overview)

	fmt.Fprintf(w, "Tech stack: %s\n", strings.Join(plan.TechStack, ", "))
	fmt.Fprintf(w, "Generation: %s\n\n", plan.GenerationMethod)

	for i, phase := range plan.Phases {
		fmt.Fprintf(w, "%d. %s (%s, %s)\n", i+1, phase.Name, phase.ID, phase.EstimatedTime)
		fmt.Fprintf(w, "   %s\n", phase.Description)
		if len(phase.Dependencies) > 0 {
			deps := make([]string, len(phase.Dependencies))
			for j, d := range phase.Dependencies {
				deps[j] = string(d)
			}
			fmt.Fprintf(w, "   depends on: %s\n", strings.Join(deps, ", "))
		}
		for _, f := range phase.Files {
			fmt.Fprintf(w, "   - %s %s: %s\n", f.Action, f.Path, f.Description)
		}
		fmt.Fprintln(w)
	}

	if len(plan.Risks) > 0 {
		fmt.Fprintln(w, "Risks:")
		for _, r := range plan.Risks {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}
}

func printEnhancement(w io.Writer, plan *types.Plan, snapshot *types.StatusSnapshot) {
	fmt.Fprintf(w, "\nEnhancement: %d/%d phases processed\n",
		snapshot.Progress.Current, snapshot.Progress.Total)

	for i, phase := range plan.Phases {
		enhanced, ok := snapshot.Enhanced[i]
		if !ok {
			fmt.Fprintf(w, "\n%s: %s\n", phase.Name, snapshot.Phases[i])
			continue
		}
		fmt.Fprintf(w, "\n%s\n", phase.Name)
		fmt.Fprintf(w, "  %s\n", enhanced.Description)
		if enhanced.Architecture.Summary != "" {
			fmt.Fprintf(w, "  architecture: %s\n", enhanced.Architecture.Summary)
		}
		for _, step := range enhanced.Implementation.Steps {
			fmt.Fprintf(w, "  * %s\n", step)
		}
	}
}
