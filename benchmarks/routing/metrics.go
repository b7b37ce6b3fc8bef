// ABOUTME: Scoring for the routing benchmark
// ABOUTME: Compares a produced plan with a scenario's expectation check by check

package routing

import (
	"fmt"
	"strings"

	"github.com/harper/carepath/internal/models"
)

// Score is the per-check outcome for one scenario
type Score struct {
	ScopeCorrect      bool     `json:"scope_correct"`
	WorkflowCorrect   bool     `json:"workflow_correct"`
	IdentifierCorrect *bool    `json:"identifier_correct,omitempty"`
	ValidPlan         bool     `json:"valid_plan"`
	Problems          []string `json:"problems,omitempty"`
}

// Passed reports whether every applicable check passed
func (s Score) Passed() bool {
	return s.ScopeCorrect && s.WorkflowCorrect && s.ValidPlan &&
		(s.IdentifierCorrect == nil || *s.IdentifierCorrect)
}

// ScorePlan compares plan with want
func ScorePlan(plan models.ActionPlan, want Expectation) Score {
	s := Score{
		ScopeCorrect:    plan.OutOfScope == want.OutOfScope,
		WorkflowCorrect: plan.Workflow == want.Workflow,
		ValidPlan:       plan.IsValid(),
	}
	if !s.ScopeCorrect {
		s.Problems = append(s.Problems, fmt.Sprintf("out_of_scope=%t, want %t", plan.OutOfScope, want.OutOfScope))
	}
	if !s.WorkflowCorrect {
		s.Problems = append(s.Problems, fmt.Sprintf("workflow=%s, want %s", plan.Workflow, want.Workflow))
	}
	if !s.ValidPlan {
		s.Problems = append(s.Problems, "plan failed validation")
	}

	if want.Workflow == models.WorkflowPatientJourney && want.PatientID != "" {
		got := ""
		if act, ok := plan.Action(models.ActionGetJourney); ok {
			got, _ = act.Params["patient_id"].(string)
		}
		ok := strings.EqualFold(got, want.PatientID)
		s.IdentifierCorrect = &ok
		if !ok {
			s.Problems = append(s.Problems, fmt.Sprintf("patient_id=%q, want %q", got, want.PatientID))
		}
	}
	return s
}

// Summary aggregates scores over a run
type Summary struct {
	Total              int     `json:"total"`
	Passed             int     `json:"passed"`
	ScopeAccuracy      float64 `json:"scope_accuracy"`
	WorkflowAccuracy   float64 `json:"workflow_accuracy"`
	IdentifierAccuracy float64 `json:"identifier_accuracy"`
}

// Summarize computes accuracies; identifier accuracy covers only scenarios that check it
func Summarize(results []Result) Summary {
	var sum Summary
	var scope, workflow, idChecked, idCorrect int
	for _, r := range results {
		sum.Total++
		if r.Status == StatusPass {
			sum.Passed++
		}
		if r.Score.ScopeCorrect {
			scope++
		}
		if r.Score.WorkflowCorrect {
			workflow++
		}
		if r.Score.IdentifierCorrect != nil {
			idChecked++
			if *r.Score.IdentifierCorrect {
				idCorrect++
			}
		}
	}
	sum.ScopeAccuracy = ratio(scope, sum.Total)
	sum.WorkflowAccuracy = ratio(workflow, sum.Total)
	sum.IdentifierAccuracy = ratio(idCorrect, idChecked)
	return sum
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
