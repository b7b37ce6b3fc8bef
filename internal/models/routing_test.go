// ABOUTME: Tests for action plan validation and the agent/action whitelist
// ABOUTME: Covers whitelist rejection and the structural plan invariants
package models

import (
	"errors"
	"testing"
)

func journeyPlan() ActionPlan {
	return ActionPlan{
		Agents:   []string{AgentPatientJourney},
		Workflow: WorkflowPatientJourney,
		Actions: []Action{{
			Agent:  AgentPatientJourney,
			Action: ActionGetJourney,
			Params: map[string]any{"patient_id": "pat1"},
		}},
		DataFlow: []DataFlowEdge{},
	}
}

func TestIsAllowedAction(t *testing.T) {
	tests := []struct {
		agent  string
		action string
		want   bool
	}{
		{AgentDiseasePrediction, ActionPredictDisease, true},
		{AgentSymptomAnalyzer, ActionAnalyzeSymptoms, true},
		{AgentPatientJourney, ActionGetJourney, true},
		{AgentPatientJourney, ActionTrackJourney, true},
		{AgentPatientJourney, ActionUpdateJourney, true},
		{AgentPatientJourney, ActionPredictDisease, false},
		{AgentSymptomAnalyzer, ActionGetJourney, false},
		{"billing", "charge", false},
	}

	for _, tt := range tests {
		t.Run(tt.agent+"/"+tt.action, func(t *testing.T) {
			if got := IsAllowedAction(tt.agent, tt.action); got != tt.want {
				t.Errorf("IsAllowedAction(%q, %q) = %v, want %v", tt.agent, tt.action, got, tt.want)
			}
		})
	}
}

func TestActionPlan_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *ActionPlan)
		wantErr bool
	}{
		{
			name:    "valid journey plan",
			mutate:  func(p *ActionPlan) {},
			wantErr: false,
		},
		{
			name: "action outside whitelist",
			mutate: func(p *ActionPlan) {
				p.Actions[0].Action = ActionPredictDisease
			},
			wantErr: true,
		},
		{
			name: "unknown agent",
			mutate: func(p *ActionPlan) {
				p.Agents = append(p.Agents, "billing")
				p.Actions = append(p.Actions, Action{Agent: "billing", Action: "charge"})
			},
			wantErr: true,
		},
		{
			name: "action agent missing from agent list",
			mutate: func(p *ActionPlan) {
				p.Actions = append(p.Actions, Action{Agent: AgentSymptomAnalyzer, Action: ActionAnalyzeSymptoms})
			},
			wantErr: true,
		},
		{
			name: "duplicate agent",
			mutate: func(p *ActionPlan) {
				p.Agents = append(p.Agents, AgentPatientJourney)
			},
			wantErr: true,
		},
		{
			name: "edge to unknown agent",
			mutate: func(p *ActionPlan) {
				p.DataFlow = append(p.DataFlow, DataFlowEdge{From: AgentPatientJourney, To: AgentDiseasePrediction, Data: "x"})
			},
			wantErr: true,
		},
		{
			name: "out of scope with actions",
			mutate: func(p *ActionPlan) {
				p.OutOfScope = true
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := journeyPlan()
			tt.mutate(&plan)

			err := plan.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPlan) {
				t.Errorf("Validate() error should wrap ErrInvalidPlan, got %v", err)
			}
			if plan.IsValid() == tt.wantErr {
				t.Errorf("IsValid() = %v, want %v", plan.IsValid(), !tt.wantErr)
			}
		})
	}
}

func TestOutOfScopePlan(t *testing.T) {
	plan := OutOfScopePlan("not health related")

	if !plan.OutOfScope {
		t.Error("OutOfScope = false, want true")
	}
	if plan.Scope != ScopeOutOfScope {
		t.Errorf("Scope = %q, want %q", plan.Scope, ScopeOutOfScope)
	}
	if plan.Workflow != WorkflowNone {
		t.Errorf("Workflow = %q, want %q", plan.Workflow, WorkflowNone)
	}
	if len(plan.Agents) != 0 || len(plan.Actions) != 0 || len(plan.DataFlow) != 0 {
		t.Errorf("out-of-scope plan should be empty, got %+v", plan)
	}
	if err := plan.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestParseIntent(t *testing.T) {
	tests := []struct {
		label  string
		want   Intent
		wantOK bool
	}{
		{"patient_journey", IntentPatientJourney, true},
		{" Medical_Diagnosis ", IntentMedicalDiagnosis, true},
		{"billing", IntentMedicalDiagnosis, false},
		{"", IntentMedicalDiagnosis, false},
	}

	for _, tt := range tests {
		got, ok := ParseIntent(tt.label)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseIntent(%q) = (%q, %v), want (%q, %v)", tt.label, got, ok, tt.want, tt.wantOK)
		}
	}
}
