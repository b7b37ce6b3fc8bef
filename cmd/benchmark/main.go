// ABOUTME: Command-line runner for the routing benchmark
// ABOUTME: Routes labeled queries through the configured oracle and outputs JSON results

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"github.com/harper/carepath/benchmarks/routing"
	"github.com/harper/carepath/internal/config"
	"github.com/harper/carepath/internal/llm"
	"github.com/harper/carepath/internal/router"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	scenarioID := flag.String("test", "", "Run one scenario by id (e.g. j1, d2, o1). If empty, runs all.")
	outputPath := flag.String("output", "benchmark_results.json", "Output path for JSON results")
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if !cfg.HasOracleKey() {
		return fmt.Errorf("an API key for the %s oracle is required for benchmarks", cfg.Oracle)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	oracle, err := llm.NewOracle(ctx, cfg.Oracle, cfg.OracleConfig())
	if err != nil {
		return fmt.Errorf("initializing oracle: %w", err)
	}
	r := router.New(oracle, router.Options{
		OracleTimeout:    cfg.Timeout,
		DefaultPatientID: cfg.DefaultPatient,
		Logger:           &logger,
	})

	scenarios := routing.Scenarios()
	if *scenarioID != "" {
		s, ok := routing.GetScenario(*scenarioID)
		if !ok {
			return fmt.Errorf("unknown scenario id: %s", *scenarioID)
		}
		scenarios = []routing.Scenario{s}
	}

	fmt.Println("========================================")
	fmt.Printf("Routing Benchmark (%s)\n", oracle.Name())
	fmt.Println("========================================")

	results, err := routing.NewRunner(r, logger).RunAll(ctx, scenarios)
	if err != nil {
		return fmt.Errorf("benchmark interrupted: %w", err)
	}

	for _, res := range results {
		fmt.Printf("\n%s: %s\n", res.ScenarioID, res.Name)
		fmt.Printf("  Query:    %s\n", res.Query)
		fmt.Printf("  Workflow: %s\n", res.Plan.Workflow)
		fmt.Printf("  Status:   %s\n", res.Status)
		for _, p := range res.Score.Problems {
			fmt.Printf("  - %s\n", p)
		}
		if res.ErrorMessage != "" {
			fmt.Printf("  Error:    %s\n", res.ErrorMessage)
		}
	}

	sum := routing.Summarize(results)
	fmt.Println("\n========================================")
	fmt.Printf("Total:               %d\n", sum.Total)
	fmt.Printf("Passed:              %d\n", sum.Passed)
	fmt.Printf("Scope accuracy:      %.2f\n", sum.ScopeAccuracy)
	fmt.Printf("Workflow accuracy:   %.2f\n", sum.WorkflowAccuracy)
	fmt.Printf("Identifier accuracy: %.2f\n", sum.IdentifierAccuracy)
	fmt.Println("========================================")

	if err := routing.ExportResults(results, oracle.Name(), *outputPath); err != nil {
		return err
	}
	fmt.Printf("\nResults exported to: %s\n", *outputPath)

	if sum.Passed < sum.Total {
		return fmt.Errorf("%d of %d scenarios failed", sum.Total-sum.Passed, sum.Total)
	}
	return nil
}
