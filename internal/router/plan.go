// ABOUTME: Builds the action plan for a classified intent
// ABOUTME: Emits only whitelisted agent/action pairs
package router

import "github.com/harper/carepath/internal/models"

// PlanBuilder assembles action plans
type PlanBuilder struct{}

// NewPlanBuilder creates a plan builder
func NewPlanBuilder() *PlanBuilder {
	return &PlanBuilder{}
}

// Build returns the plan for intent. patientID is only used by the journey workflow.
func (b *PlanBuilder) Build(intent models.Intent, text, patientID string) models.ActionPlan {
	if intent == models.IntentPatientJourney {
		return b.journeyPlan(text, patientID)
	}
	return b.diagnosisPlan(text)
}

func (b *PlanBuilder) journeyPlan(text, patientID string) models.ActionPlan {
	return models.ActionPlan{
		Agents:   []string{models.AgentPatientJourney},
		Workflow: models.WorkflowPatientJourney,
		Actions: []models.Action{
			{
				Agent:  models.AgentPatientJourney,
				Action: models.ActionGetJourney,
				Params: map[string]any{
					"patient_id":     patientID,
					"query_type":     "general",
					"concepts":       []string{},
					"original_query": text,
				},
			},
		},
		DataFlow: []models.DataFlowEdge{},
	}
}

func (b *PlanBuilder) diagnosisPlan(text string) models.ActionPlan {
	return models.ActionPlan{
		Agents:   []string{models.AgentSymptomAnalyzer, models.AgentDiseasePrediction},
		Workflow: models.WorkflowMedicalDiagnosis,
		Actions: []models.Action{
			{
				Agent:  models.AgentSymptomAnalyzer,
				Action: models.ActionAnalyzeSymptoms,
				Params: map[string]any{
					"symptoms_text": text,
					"concepts":      []string{},
					"intent":        string(models.IntentMedicalDiagnosis),
				},
			},
			{
				// Filled in from symptom_analyzer output by the orchestrator
				Agent:  models.AgentDiseasePrediction,
				Action: models.ActionPredictDisease,
				Params: map[string]any{"symptoms": []string{}},
			},
		},
		DataFlow: []models.DataFlowEdge{
			{
				From: models.AgentSymptomAnalyzer,
				To:   models.AgentDiseasePrediction,
				Data: models.DataStructuredSymptoms,
			},
		},
	}
}
