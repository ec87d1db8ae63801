package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/planforge/internal/provider"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check provider configuration and connectivity",
	Long: `Check whether planforge can reach a model provider.

Reports which credential environment variables are set, which provider the
current configuration selects, and whether a minimal round trip against the
provider API succeeds. planforge works without any credential; plans are
then rule-based instead of model-enhanced.

Examples:
  planforge doctor
  planforge doctor --json`,
	RunE: runDoctor,
}

var doctorJSON bool

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output the report as JSON")

	rootCmd.AddCommand(doctorCmd)
}

// doctorReport is the health check result.
type doctorReport struct {
	AnthropicKeySet bool   `json:"anthropic_key_set"`
	OpenAIKeySet    bool   `json:"openai_key_set"`
	Provider        string `json:"provider,omitempty"`
	Model           string `json:"model,omitempty"`
	Reachable       bool   `json:"reachable"`
	Mode            string `json:"mode"`
	Error           string `json:"error,omitempty"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	report := buildDoctorReport(cmd.Context())

	out := cmd.OutOrStdout()
	if doctorJSON {
		return writeJSON(out, report)
	}
	printDoctorReport(out, report)
	return nil
}

func buildDoctorReport(ctx context.Context) doctorReport {
	report := doctorReport{
		AnthropicKeySet: keySet(provider.EnvAnthropicAPIKey),
		OpenAIKeySet:    keySet(provider.EnvOpenAIAPIKey),
		Mode:            "rule-based",
	}

	client, err := newProviderClient(providerConfig{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		BaseURL:  cfg.BaseURL,
	})
	if err != nil || client == nil || !client.IsAvailable() {
		return report
	}
	defer client.Close()

	report.Provider = client.Name()
	report.Mode = "hybrid"

	healthCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.Health(healthCtx); err != nil {
		report.Error = err.Error()
		return report
	}
	report.Reachable = true
	return report
}

func printDoctorReport(w io.Writer, report doctorReport) {
	fmt.Fprintf(w, "%s set: %v\n", provider.EnvAnthropicAPIKey, report.AnthropicKeySet)
	fmt.Fprintf(w, "%s set: %v\n", provider.EnvOpenAIAPIKey, report.OpenAIKeySet)

	if report.Provider == "" {
		fmt.Fprintln(w, "\nNo model credential configured.")
		fmt.Fprintln(w, "Plans will be generated rule-based, without model enhancement.")
		fmt.Fprintf(w, "Set %s or %s to enable hybrid plans.\n",
			provider.EnvAnthropicAPIKey, provider.EnvOpenAIAPIKey)
		return
	}

	fmt.Fprintf(w, "\nProvider: %s\n", report.Provider)
	if report.Reachable {
		fmt.Fprintln(w, "Connection: ok")
		fmt.Fprintln(w, "Plans will be enhanced with model guidance.")
		return
	}
	fmt.Fprintln(w, "Connection: failed")
	if report.Error != "" {
		fmt.Fprintf(w, "  %s\n", report.Error)
	}
	fmt.Fprintln(w, "Plans will fall back to rule-based generation.")
}

func keySet(env string) bool {
	return os.Getenv(env) != ""
}
