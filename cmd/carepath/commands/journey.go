// ABOUTME: CLI command to print a patient's journey
// ABOUTME: Accepts a patient id or full name
package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/carepath/internal/journey"
)

// NewJourneyCmd creates the journey command
func NewJourneyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journey <patient-id-or-name>",
		Short: "Show a patient's journey",
		Long: `Show a patient's diagnoses, appointments, medications, treatments and
tests as one timeline, newest first.

Examples:
  carepath journey pat1
  carepath journey "Mary Silva"
  carepath journey --format json pat2`,
		Args: cobra.MinimumNArgs(1),
		RunE: runJourney,
	}

	return cmd
}

func runJourney(cmd *cobra.Command, args []string) error {
	id := strings.Join(args, " ")

	a, err := loadApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	store, err := a.store(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	j, err := a.aggregator(store).Aggregate(ctx, id)
	if errors.Is(err, journey.ErrPatientNotFound) {
		return fmt.Errorf("no patient found with ID/name: %s", id)
	}
	if err != nil {
		return fmt.Errorf("building journey: %w", err)
	}

	out := cmd.OutOrStdout()
	if wantJSON() {
		return printJSON(out, j)
	}

	if !quiet {
		fmt.Fprintf(out, "Journey for %s (%s)\n\n", j.PatientName, j.PatientID)
	}
	if len(j.Steps) == 0 {
		if !quiet {
			fmt.Fprintf(out, "No dated records\n")
		}
		return nil
	}
	for i, step := range j.Steps {
		fmt.Fprintf(out, "%3d. %s\n", i+1, step)
	}
	return nil
}
