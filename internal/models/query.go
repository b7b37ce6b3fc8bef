// ABOUTME: Query input and per-stage classification decisions for the intent router
// ABOUTME: All values are request-scoped and never mutated after construction
package models

import "strings"

// Query is a raw clinical question plus optional caller-supplied identity
type Query struct {
	Text    string            `json:"prompt"`
	UserID  string            `json:"user_id,omitempty"`
	Context map[string]string `json:"context,omitempty"`
}

// Normalized returns the query text with surrounding whitespace removed
func (q Query) Normalized() string {
	return strings.TrimSpace(q.Text)
}

// ScopeDecision says whether a query is about health at all
type ScopeDecision struct {
	IsHealthRelated bool `json:"is_health_related"`
	// Degraded is set when the oracle failed and the safe default was used
	Degraded bool `json:"-"`
}

// ActionabilityDecision says whether a known capability can answer the query
type ActionabilityDecision struct {
	CanHandle bool   `json:"can_handle"`
	Reason    string `json:"reason"`
	Degraded  bool   `json:"-"`
}

// Intent is the routing target chosen for an in-scope query
type Intent string

const (
	// IntentPatientJourney asks about the patient's past medical events
	IntentPatientJourney Intent = "patient_journey"

	// IntentMedicalDiagnosis asks about current symptoms
	IntentMedicalDiagnosis Intent = "medical_diagnosis"
)

// ParseIntent maps an oracle label onto a known intent.
// Anything unrecognized resolves to IntentMedicalDiagnosis.
func ParseIntent(label string) (Intent, bool) {
	switch Intent(strings.ToLower(strings.TrimSpace(label))) {
	case IntentPatientJourney:
		return IntentPatientJourney, true
	case IntentMedicalDiagnosis:
		return IntentMedicalDiagnosis, true
	}
	return IntentMedicalDiagnosis, false
}

// IntentDecision is the result of intent classification
type IntentDecision struct {
	Intent   Intent `json:"intent"`
	Degraded bool   `json:"-"`
}
