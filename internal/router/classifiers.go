// ABOUTME: Oracle-backed scope, actionability and intent classifiers
// ABOUTME: Each degrades to a documented safe default instead of returning an error
package router

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/harper/carepath/internal/llm"
	"github.com/harper/carepath/internal/models"
)

// DefaultOracleTimeout bounds a single classifier call
const DefaultOracleTimeout = 30 * time.Second

const scopePrompt = `Is this query about health/medical topics?

Query: "%s"

Respond with ONLY this JSON (no explanation):
{"is_health_related": true or false}`

const actionabilityPrompt = `Can we answer this query by:
1. Analyzing current symptoms (symptom_analyzer)
2. Predicting diseases from symptoms (disease_prediction)
3. Retrieving patient's past medical history/journey (patient_journey)

Query: "%s"

Does the query fit one of these three categories? Respond with ONLY:
{"can_handle": true or false, "reason": "brief reason"}`

const intentPrompt = `Medical chat query analysis - Be concise!

User: "%s"

Is this asking about THEIR medical history/past events (patient_journey) or CURRENT symptoms (medical_diagnosis)?

Respond with ONLY this JSON (no explanation):
{"intent": "patient_journey" or "medical_diagnosis"}`

// consultant runs one bounded oracle call and decodes the JSON payload
type consultant struct {
	oracle  llm.Oracle
	timeout time.Duration
	logger  zerolog.Logger
}

// consult returns an error for every failure mode; callers map it to their safe default
func (c consultant) consult(ctx context.Context, stage, prompt string, v any) error {
	if c.oracle == nil {
		return fmt.Errorf("%s: no oracle configured", stage)
	}

	timeout := c.timeout
	if timeout <= 0 {
		timeout = DefaultOracleTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := c.oracle.Complete(callCtx, prompt)
	if err != nil {
		return fmt.Errorf("%s: oracle call failed: %w", stage, err)
	}
	c.logger.Debug().Str("stage", stage).Str("response", truncate(raw, 200)).Msg("oracle response")

	if err := llm.DecodeJSON(raw, v); err != nil {
		return fmt.Errorf("%s: %w", stage, err)
	}
	return nil
}

func (c consultant) degraded(stage string, err error) {
	c.logger.Warn().Err(err).Str("stage", stage).Msg("classifier degraded to safe default")
}

// ScopeClassifier gates queries that are not about health at all
type ScopeClassifier struct {
	consultant
}

// NewScopeClassifier creates a scope classifier
func NewScopeClassifier(oracle llm.Oracle, timeout time.Duration, logger zerolog.Logger) *ScopeClassifier {
	return &ScopeClassifier{consultant{oracle: oracle, timeout: timeout, logger: logger}}
}

// Classify never fails; on oracle failure the query is treated as not health related
func (s *ScopeClassifier) Classify(ctx context.Context, text string) models.ScopeDecision {
	var out struct {
		IsHealthRelated *bool `json:"is_health_related"`
	}
	if err := s.consult(ctx, "scope", fmt.Sprintf(scopePrompt, text), &out); err != nil {
		s.degraded("scope", err)
		return models.ScopeDecision{IsHealthRelated: false, Degraded: true}
	}
	// A missing field reads as "no"
	return models.ScopeDecision{IsHealthRelated: out.IsHealthRelated != nil && *out.IsHealthRelated}
}

// ActionabilityClassifier gates queries no known agent can answer
type ActionabilityClassifier struct {
	consultant
}

// NewActionabilityClassifier creates an actionability classifier
func NewActionabilityClassifier(oracle llm.Oracle, timeout time.Duration, logger zerolog.Logger) *ActionabilityClassifier {
	return &ActionabilityClassifier{consultant{oracle: oracle, timeout: timeout, logger: logger}}
}

// Classify never fails; on oracle failure the query is treated as not handleable
func (a *ActionabilityClassifier) Classify(ctx context.Context, text string) models.ActionabilityDecision {
	var out struct {
		CanHandle *bool  `json:"can_handle"`
		Reason    string `json:"reason"`
	}
	if err := a.consult(ctx, "actionability", fmt.Sprintf(actionabilityPrompt, text), &out); err != nil {
		a.degraded("actionability", err)
		return models.ActionabilityDecision{CanHandle: false, Reason: "classifier unavailable", Degraded: true}
	}
	return models.ActionabilityDecision{
		CanHandle: out.CanHandle != nil && *out.CanHandle,
		Reason:    out.Reason,
	}
}

// IntentClassifier chooses between the journey and diagnosis pipelines
type IntentClassifier struct {
	consultant
}

// NewIntentClassifier creates an intent classifier
func NewIntentClassifier(oracle llm.Oracle, timeout time.Duration, logger zerolog.Logger) *IntentClassifier {
	return &IntentClassifier{consultant{oracle: oracle, timeout: timeout, logger: logger}}
}

// Classify never fails; on oracle failure or an unknown label the intent is medical_diagnosis
func (i *IntentClassifier) Classify(ctx context.Context, text string) models.IntentDecision {
	var out struct {
		Intent string `json:"intent"`
	}
	if err := i.consult(ctx, "intent", fmt.Sprintf(intentPrompt, text), &out); err != nil {
		i.degraded("intent", err)
		return models.IntentDecision{Intent: models.IntentMedicalDiagnosis, Degraded: true}
	}
	intent, ok := models.ParseIntent(out.Intent)
	if !ok {
		i.logger.Warn().Str("label", out.Intent).Msg("unknown intent label, using medical_diagnosis")
	}
	return models.IntentDecision{Intent: intent, Degraded: !ok}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
