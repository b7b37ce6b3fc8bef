// ABOUTME: Intent router: gates, fast path, intent classification and plan assembly
// ABOUTME: Every plan it returns has passed validation; invalid plans fail closed
package router

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/harper/carepath/internal/llm"
	"github.com/harper/carepath/internal/models"
)

// Stage names recorded in models.RouteTrace
const (
	StageScope         = "scope"
	StageFastPath      = "fast_path"
	StageActionability = "actionability"
	StageIntent        = "intent"
	StageExtract       = "extract_identifier"
	StageBuild         = "build_plan"
)

// Options configures a Router
type Options struct {
	// OracleTimeout bounds each classifier call
	OracleTimeout    time.Duration
	JourneyKeywords  []string
	StopWords        []string
	DefaultPatientID string
	Logger           *zerolog.Logger
}

// Router turns a free-text query into a validated action plan
type Router struct {
	phrases       *PhraseMatcher
	scope         *ScopeClassifier
	actionability *ActionabilityClassifier
	intent        *IntentClassifier
	extractor     *IdentifierExtractor
	builder       *PlanBuilder
	logger        zerolog.Logger
}

// New creates a Router consulting oracle
func New(oracle llm.Oracle, opts Options) *Router {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = opts.Logger.With().Str("component", "router").Logger()
	}

	return &Router{
		phrases:       NewPhraseMatcher(opts.JourneyKeywords...),
		scope:         NewScopeClassifier(oracle, opts.OracleTimeout, logger),
		actionability: NewActionabilityClassifier(oracle, opts.OracleTimeout, logger),
		intent:        NewIntentClassifier(oracle, opts.OracleTimeout, logger),
		extractor: NewIdentifierExtractor(ExtractorConfig{
			StopWords: opts.StopWords,
			DefaultID: opts.DefaultPatientID,
		}),
		builder: NewPlanBuilder(),
		logger:  logger,
	}
}

// Route classifies q and returns its action plan.
// The only errors are context cancellation and a wrapped models.ErrInvalidPlan.
func (r *Router) Route(ctx context.Context, q models.Query) (models.ActionPlan, error) {
	plan, _, err := r.RouteWithTrace(ctx, q)
	return plan, err
}

// RouteWithTrace is Route plus a record of which stages ran
func (r *Router) RouteWithTrace(ctx context.Context, q models.Query) (models.ActionPlan, models.RouteTrace, error) {
	var trace models.RouteTrace
	text := q.Normalized()

	if text == "" {
		return models.OutOfScopePlan("empty query"), trace, nil
	}

	trace.Stages = append(trace.Stages, StageScope)
	scope := r.scope.Classify(ctx, text)
	if err := ctx.Err(); err != nil {
		return models.ActionPlan{}, trace, err
	}
	if scope.Degraded {
		trace.Degraded = append(trace.Degraded, StageScope)
	}
	if !scope.IsHealthRelated {
		r.logger.Info().Msg("query is out of scope: not health related")
		return models.OutOfScopePlan("not health related"), trace, nil
	}

	trace.Stages = append(trace.Stages, StageFastPath)
	if keyword, ok := r.phrases.Match(text); ok {
		trace.FastPath = true
		r.logger.Debug().Str("keyword", keyword).Msg("journey fast path")
		return r.finish(models.IntentPatientJourney, text, q.UserID, &trace)
	}

	trace.Stages = append(trace.Stages, StageActionability)
	actionable := r.actionability.Classify(ctx, text)
	if err := ctx.Err(); err != nil {
		return models.ActionPlan{}, trace, err
	}
	if actionable.Degraded {
		trace.Degraded = append(trace.Degraded, StageActionability)
	}
	if !actionable.CanHandle {
		r.logger.Info().Str("reason", actionable.Reason).Msg("query is out of scope: no agent can handle it")
		return models.OutOfScopePlan(actionable.Reason), trace, nil
	}

	trace.Stages = append(trace.Stages, StageIntent)
	intent := r.intent.Classify(ctx, text)
	if err := ctx.Err(); err != nil {
		return models.ActionPlan{}, trace, err
	}
	if intent.Degraded {
		trace.Degraded = append(trace.Degraded, StageIntent)
	}
	return r.finish(intent.Intent, text, q.UserID, &trace)
}

// finish extracts the identifier when needed, builds and validates the plan
func (r *Router) finish(intent models.Intent, text, userID string, trace *models.RouteTrace) (models.ActionPlan, models.RouteTrace, error) {
	var patientID string
	if intent == models.IntentPatientJourney {
		trace.Stages = append(trace.Stages, StageExtract)
		patientID, trace.IdentifierRule = r.extractor.ExtractWithRule(text, userID)
		r.logger.Debug().Str("patient_id", patientID).Str("rule", trace.IdentifierRule).Msg("identifier extracted")
	}

	trace.Stages = append(trace.Stages, StageBuild)
	plan := r.builder.Build(intent, text, patientID)
	if err := plan.Validate(); err != nil {
		r.logger.Error().Err(err).Str("workflow", string(plan.Workflow)).Msg("built plan failed validation")
		return models.ActionPlan{}, *trace, fmt.Errorf("routing %s: %w", intent, err)
	}
	return plan, *trace, nil
}
