// ABOUTME: Standalone HTTP server entry point for container deployments
// ABOUTME: Wires config, storage, oracle and router into the echo API without the CLI

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/harper/carepath/internal/config"
	"github.com/harper/carepath/internal/httpapi"
	"github.com/harper/carepath/internal/journey"
	"github.com/harper/carepath/internal/llm"
	"github.com/harper/carepath/internal/router"
	"github.com/harper/carepath/internal/storage/backend"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "carepath").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("loading config")
	}
	logger = logger.Level(cfg.Level())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var oracle llm.Oracle
	if cfg.HasOracleKey() {
		oracle, err = llm.NewOracle(ctx, cfg.Oracle, cfg.OracleConfig())
		if err != nil {
			logger.Fatal().Err(err).Msg("initializing oracle")
		}
	} else {
		logger.Warn().Str("oracle", cfg.Oracle).Msg("no API key set; classifiers will use safe defaults")
	}

	store, err := backend.Open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("initializing storage")
	}
	defer func() { _ = store.Close() }()

	r := router.New(oracle, router.Options{
		OracleTimeout:    cfg.Timeout,
		DefaultPatientID: cfg.DefaultPatient,
		Logger:           &logger,
	})
	e := httpapi.New(r, journey.New(store, logger), logger)

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.Store).Msg("HTTP server starting")
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	if err := httpapi.Shutdown(e, 10*time.Second); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
	}
}
