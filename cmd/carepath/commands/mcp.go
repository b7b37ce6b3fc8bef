// ABOUTME: MCP command starts the Model Context Protocol server on stdio
// ABOUTME: Exposes routing, journeys and symptom extraction as tools
package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/harper/carepath/internal/mcp"
	"github.com/harper/carepath/internal/router"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs carepath as an MCP (Model Context Protocol) server over stdio with
the tools route_query, get_patient_journey, extract_symptoms and
validate_plan.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an MCP client)
  carepath mcp

  # Configure in the client's config file:
  # {
  #   "mcpServers": {
  #     "carepath": {
  #       "command": "carepath",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	// stdout carries the protocol, so logs go to stderr only
	a, err := loadApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	oracle, err := a.oracle(ctx)
	if err != nil {
		return err
	}
	store, err := a.store(ctx)
	if err != nil {
		return err
	}

	server := mcpserver.NewMCPServer("carepath", versionInfo.Version)
	mcp.RegisterTools(server,
		a.router(oracle),
		a.aggregator(store),
		router.NewSymptomExtractor(oracle, a.cfg.Timeout, a.logger),
		a.logger,
	)

	a.logger.Info().Str("store", a.cfg.Store).Msg("MCP server starting on stdio")

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		a.logger.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			_ = store.Close()
			return fmt.Errorf("server error: %w", err)
		}
	}

	if err := store.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("closing storage")
	}
	return nil
}
