// ABOUTME: CLI command to load a record graph into the configured store
// ABOUTME: Uses the embedded demo graph unless --file is given
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/carepath/internal/storage/fixture"
)

var seedFile string

// NewSeedCmd creates the seed command
func NewSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a record graph into the store",
		Long: `Replace the store's contents with a record graph.

Without --file the built-in demo graph (patients pat1 and pat2) is loaded.

Examples:
  carepath seed
  carepath seed --file records.yaml
  CAREPATH_STORE=neo4j carepath seed`,
		Args: cobra.NoArgs,
		RunE: runSeed,
	}

	cmd.Flags().StringVar(&seedFile, "file", "", "YAML graph to load instead of the demo graph")

	return cmd
}

func runSeed(cmd *cobra.Command, args []string) error {
	fx := fixture.Demo()
	if seedFile != "" {
		loaded, err := fixture.Load(seedFile)
		if err != nil {
			return err
		}
		fx = loaded
	}

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

	if err := store.Seed(ctx, fx); err != nil {
		return fmt.Errorf("seeding store: %w", err)
	}

	a.logger.Debug().Str("store", a.cfg.Store).Int("nodes", len(fx.Nodes)).Int("edges", len(fx.Edges)).Msg("seeded")
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s store with %d node(s) and %d edge(s)\n", a.cfg.Store, len(fx.Nodes), len(fx.Edges))
	}
	return nil
}
