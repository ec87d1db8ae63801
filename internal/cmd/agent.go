package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/planforge/internal/agent"
)

var agentCmd = &cobra.Command{
	Use:   "agent <task>",
	Short: "Generate a plan and execute its phases with the mock agent",
	Long: `Generate a plan for the task and run each phase through the mock
agent runner in dependency order, printing the simulated output per phase.

The mock runner produces deterministic canned output; it does not modify
any files. It exists to exercise the phase execution flow end to end.

Examples:
  # Run every phase
  planforge agent "Build a todo app with authentication"

  # Run a single phase by id
  planforge agent --phase phase-backend "Build a todo app"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAgent,
}

var agentPhase string

func init() {
	agentCmd.Flags().StringVar(&agentPhase, "phase", "", "run only the phase with this id")

	rootCmd.AddCommand(agentCmd)
}

// newAgentRunner returns the runner used by both the agent command and the
// serve endpoint.
func newAgentRunner() agent.Runner {
	return agent.NewMockRunner()
}

func runAgent(cmd *cobra.Command, args []string) error {
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

	runner := newAgentRunner()
	out := cmd.OutOrStdout()

	ran := 0
	for _, phase := range result.Plan.Phases {
		if agentPhase != "" && string(phase.ID) != agentPhase {
			continue
		}

		res, err := runner.Run(cmd.Context(), phase)
		if err != nil {
			return err
		}
		ran++

		status := "ok"
		if !res.Success {
			status = "failed"
		}
		fmt.Fprintf(out, "[%s] %s (%s)\n", status, phase.Name, phase.ID)
		fmt.Fprintf(out, "    %s\n", res.Output)
	}

	if agentPhase != "" && ran == 0 {
		return fmt.Errorf("plan has no phase with id %q", agentPhase)
	}
	return nil
}
