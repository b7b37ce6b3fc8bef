// ABOUTME: Serve command starts the HTTP API for routing and journeys
// ABOUTME: Shuts down gracefully on SIGINT or SIGTERM
package commands

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper/carepath/internal/httpapi"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API.

Endpoints:
  GET  /healthz           liveness
  POST /route             {"prompt": "...", "user_id": "..."} -> action plan (?explain=true adds the trace)
  POST /patient_journey   {"patient_id": "..."} -> journey steps`,
		Example: `  carepath serve
  carepath serve --addr 127.0.0.1:9000`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default CAREPATH_HTTP_ADDR)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	addr := a.cfg.HTTPAddr
	if serveAddr != "" {
		addr = serveAddr
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
	defer func() {
		if err := store.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("closing storage")
		}
	}()

	e := httpapi.New(a.router(oracle), a.aggregator(store), a.logger)

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", addr).Str("store", a.cfg.Store).Msg("HTTP server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		a.logger.Info().Msg("shutdown signal received")
		if err := httpapi.Shutdown(e, shutdownTimeout); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		a.logger.Info().Msg("shutdown complete")
	case err, ok := <-serverErr:
		if ok && err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}
	return nil
}
