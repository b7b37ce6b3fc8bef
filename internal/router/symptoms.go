// ABOUTME: Oracle-backed symptom extraction feeding the structured_symptoms data flow
// ABOUTME: Returns explicit then implicit symptoms; degrades to an empty list
package router

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/harper/carepath/internal/llm"
)

const symptomPrompt = `Analyze this text for medical symptoms and related health information. Consider both explicit and implicit symptoms.

Text: "%s"

Provide your analysis in this exact JSON format:
{
    "explicit_symptoms": ["symptom1", "symptom2"],
    "implicit_symptoms": ["inferred_symptom1"],
    "duration_mentions": ["started 2 days ago", "occurs daily"],
    "severity_indicators": ["mild", "severe"],
    "contextual_health_info": ["relevant medical history", "medications"]
}

Focus on medical accuracy and completeness.`

// SymptomAnalysis is the full oracle answer
type SymptomAnalysis struct {
	Explicit   []string `json:"explicit_symptoms"`
	Implicit   []string `json:"implicit_symptoms"`
	Durations  []string `json:"duration_mentions"`
	Severity   []string `json:"severity_indicators"`
	Contextual []string `json:"contextual_health_info"`
}

// Symptoms returns explicit then implicit symptoms with blanks and repeats removed
func (a SymptomAnalysis) Symptoms() []string {
	out := []string{}
	seen := map[string]bool{}
	for _, s := range append(append([]string{}, a.Explicit...), a.Implicit...) {
		s = strings.TrimSpace(s)
		if s == "" || seen[strings.ToLower(s)] {
			continue
		}
		seen[strings.ToLower(s)] = true
		out = append(out, s)
	}
	return out
}

// SymptomExtractor asks the oracle for structured symptoms
type SymptomExtractor struct {
	consultant
}

// NewSymptomExtractor creates a symptom extractor
func NewSymptomExtractor(oracle llm.Oracle, timeout time.Duration, logger zerolog.Logger) *SymptomExtractor {
	return &SymptomExtractor{consultant{oracle: oracle, timeout: timeout, logger: logger}}
}

// Analyze returns the full analysis, or an empty one when the oracle fails
func (s *SymptomExtractor) Analyze(ctx context.Context, text string) SymptomAnalysis {
	var out SymptomAnalysis
	if err := s.consult(ctx, "symptoms", fmt.Sprintf(symptomPrompt, text), &out); err != nil {
		s.degraded("symptoms", err)
		return SymptomAnalysis{}
	}
	return out
}

// Extract returns the symptom list for text
func (s *SymptomExtractor) Extract(ctx context.Context, text string) []string {
	return s.Analyze(ctx, text).Symptoms()
}
