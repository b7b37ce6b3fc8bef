// ABOUTME: CLI command to extract structured symptoms from free text
// ABOUTME: Uses the configured oracle; prints nothing useful without one
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/carepath/internal/router"
)

// NewSymptomsCmd creates the symptoms command
func NewSymptomsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "symptoms [text]",
		Short: "Extract symptoms from a description",
		Long: `Extract explicit and implicit symptoms from a free-text description.

Examples:
  carepath symptoms "my head has been pounding for two days and I feel hot"
  echo "coughing at night" | carepath symptoms --format json`,
		RunE: runSymptoms,
	}

	return cmd
}

func runSymptoms(cmd *cobra.Command, args []string) error {
	text, err := readArgOrStdin(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("no text provided")
	}

	a, err := loadApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	oracle, err := a.oracle(ctx)
	if err != nil {
		return err
	}

	analysis := router.NewSymptomExtractor(oracle, a.cfg.Timeout, a.logger).Analyze(ctx, text)
	symptoms := analysis.Symptoms()

	out := cmd.OutOrStdout()
	if wantJSON() {
		return printJSON(out, map[string]interface{}{"symptoms": symptoms, "analysis": analysis})
	}

	if len(symptoms) == 0 {
		if !quiet {
			fmt.Fprintf(out, "No symptoms found\n")
		}
		return nil
	}
	for _, s := range symptoms {
		fmt.Fprintf(out, "- %s\n", s)
	}
	if len(analysis.Durations) > 0 {
		fmt.Fprintf(out, "\nDuration: %s\n", strings.Join(analysis.Durations, ", "))
	}
	if len(analysis.Severity) > 0 {
		fmt.Fprintf(out, "Severity: %s\n", strings.Join(analysis.Severity, ", "))
	}
	return nil
}
