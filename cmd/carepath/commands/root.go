// ABOUTME: Root command, global flags and logger setup for the carepath CLI
// ABOUTME: Registers every subcommand
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Global flags
var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
 ██████  █████  ██████  ███████ ██████   █████  ████████ ██   ██
██      ██   ██ ██   ██ ██      ██   ██ ██   ██    ██    ██   ██
██      ███████ ██████  █████   ██████  ███████    ██    ███████
██      ██   ██ ██   ██ ██      ██      ██   ██    ██    ██   ██
 ██████ ██   ██ ██   ██ ███████ ██      ██   ██    ██    ██   ██
`

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "carepath",
		Short: "Route clinical queries and build patient journeys",
		Long: banner + `
Routes free-text clinical queries to the agents that can answer them
and assembles date-ordered patient journeys from the record graph.

Configuration comes from the environment (and .env): set OPENAI_API_KEY
or GEMINI_API_KEY for classification, CAREPATH_STORE to pick the store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch outputFormat {
			case "auto", "text", "json":
				return nil
			default:
				return fmt.Errorf("--format must be auto, text or json, got %q", outputFormat)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (debug logging)")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print results and errors")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, text or json")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(
		NewRouteCmd(),
		NewJourneyCmd(),
		NewSymptomsCmd(),
		NewSeedCmd(),
		NewServeCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
