// ABOUTME: Runs labeled queries through the router and records scores
// ABOUTME: Results export as JSON for comparison across oracle backends

package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/harper/carepath/internal/models"
)

// Result statuses
const (
	StatusPass  = "PASS"
	StatusFail  = "FAIL"
	StatusError = "ERROR"
)

// PlanRouter is the part of the router the benchmark drives
type PlanRouter interface {
	RouteWithTrace(ctx context.Context, q models.Query) (models.ActionPlan, models.RouteTrace, error)
}

// Result is the outcome of one scenario
type Result struct {
	ScenarioID   string            `json:"scenario_id"`
	Name         string            `json:"name"`
	Query        string            `json:"query"`
	Status       string            `json:"status"`
	Score        Score             `json:"score"`
	Plan         models.ActionPlan `json:"plan"`
	Trace        models.RouteTrace `json:"trace"`
	Duration     time.Duration     `json:"duration_ns"`
	ErrorMessage string            `json:"error,omitempty"`
}

// Runner drives scenarios through a router
type Runner struct {
	router PlanRouter
	logger zerolog.Logger
}

// NewRunner creates a benchmark runner
func NewRunner(r PlanRouter, logger zerolog.Logger) *Runner {
	return &Runner{router: r, logger: logger}
}

// Run routes one scenario and scores the plan
func (r *Runner) Run(ctx context.Context, s Scenario) Result {
	start := time.Now()
	plan, trace, err := r.router.RouteWithTrace(ctx, models.Query{Text: s.Query, UserID: s.UserID})
	res := Result{
		ScenarioID: s.ID,
		Name:       s.Name,
		Query:      s.Query,
		Plan:       plan,
		Trace:      trace,
		Duration:   time.Since(start),
	}
	if err != nil {
		res.Status = StatusError
		res.ErrorMessage = err.Error()
		r.logger.Error().Err(err).Str("scenario", s.ID).Msg("routing failed")
		return res
	}

	res.Score = ScorePlan(plan, s.Expect)
	res.Status = StatusFail
	if res.Score.Passed() {
		res.Status = StatusPass
	}
	r.logger.Debug().
		Str("scenario", s.ID).
		Str("status", res.Status).
		Strs("stages", trace.Stages).
		Dur("took", res.Duration).
		Msg("scenario routed")
	return res
}

// RunAll runs every scenario in order, stopping early only on cancellation
func (r *Runner) RunAll(ctx context.Context, scenarios []Scenario) ([]Result, error) {
	results := make([]Result, 0, len(scenarios))
	for _, s := range scenarios {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, r.Run(ctx, s))
	}
	return results, nil
}

// Report is the exported file layout
type Report struct {
	Timestamp time.Time `json:"timestamp"`
	Oracle    string    `json:"oracle"`
	Summary   Summary   `json:"summary"`
	Results   []Result  `json:"results"`
}

// ExportResults writes results and their summary as indented JSON
func ExportResults(results []Result, oracle, outputPath string) error {
	report := Report{
		Timestamp: time.Now().UTC(),
		Oracle:    oracle,
		Summary:   Summarize(results),
		Results:   results,
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling results: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}
