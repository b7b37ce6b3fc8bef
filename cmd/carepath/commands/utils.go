// ABOUTME: Shared wiring for CLI commands: config, logger, oracle and store
// ABOUTME: Also holds output helpers used by every command
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/harper/carepath/internal/config"
	"github.com/harper/carepath/internal/journey"
	"github.com/harper/carepath/internal/llm"
	"github.com/harper/carepath/internal/router"
	"github.com/harper/carepath/internal/storage/backend"
)

// app bundles what commands need; store and oracle are opened on demand
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
}

func loadApp(stderr io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &app{cfg: cfg, logger: newLogger(stderr, cfg.Level())}, nil
}

// newLogger honors --verbose and --quiet over the configured level
func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	switch {
	case verbose:
		level = zerolog.DebugLevel
	case quiet:
		level = zerolog.ErrorLevel
	}
	if isTerminal(w) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).
		Level(level).
		With().Timestamp().Logger()
}

// isTerminal reports whether w is a character device; logs are JSON otherwise
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

// oracle returns the configured oracle, or nil when no key is set.
// A nil oracle makes every classifier fall back to its safe default.
func (a *app) oracle(ctx context.Context) (llm.Oracle, error) {
	if !a.cfg.HasOracleKey() {
		a.logger.Warn().Str("oracle", a.cfg.Oracle).Msg("no API key set; classifiers will use safe defaults")
		return nil, nil
	}
	o, err := llm.NewOracle(ctx, a.cfg.Oracle, a.cfg.OracleConfig())
	if err != nil {
		return nil, fmt.Errorf("initializing oracle: %w", err)
	}
	return o, nil
}

func (a *app) router(o llm.Oracle) *router.Router {
	return router.New(o, router.Options{
		OracleTimeout:    a.cfg.Timeout,
		DefaultPatientID: a.cfg.DefaultPatient,
		Logger:           &a.logger,
	})
}

func (a *app) store(ctx context.Context) (backend.SeedableStore, error) {
	s, err := backend.Open(ctx, a.cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	return s, nil
}

func (a *app) aggregator(s backend.SeedableStore) *journey.Aggregator {
	return journey.New(s, a.logger)
}

// wantJSON reports whether output should be JSON
func wantJSON() bool {
	return outputFormat == "json"
}

func printJSON(w io.Writer, v interface{}) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintf(w, "%s\n", jsonData)
	return nil
}

// readArgOrStdin returns the joined args, or stdin when there are none
func readArgOrStdin(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if stdin == nil {
		stdin = os.Stdin
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
