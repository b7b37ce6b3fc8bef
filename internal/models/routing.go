// ABOUTME: Action plan types emitted by the intent router
// ABOUTME: Holds the agent/action whitelist and the plan invariants downstream agents rely on
package models

import (
	"errors"
	"fmt"
)

// Agent names known to the orchestrator
const (
	AgentPatientJourney    = "patient_journey"
	AgentSymptomAnalyzer   = "symptom_analyzer"
	AgentDiseasePrediction = "disease_prediction"
)

// Action names per agent
const (
	ActionGetJourney       = "get_journey"
	ActionTrackJourney     = "track_journey"
	ActionUpdateJourney    = "update_journey"
	ActionAnalyzeSymptoms  = "analyze_symptoms"
	ActionPredictDisease   = "predict_disease"
	DataStructuredSymptoms = "structured_symptoms"
)

// Workflow labels the overall shape of a plan
type Workflow string

const (
	WorkflowPatientJourney   Workflow = "patient_journey_tracking"
	WorkflowMedicalDiagnosis Workflow = "medical_diagnosis"
	WorkflowNone             Workflow = "none"
)

// ScopeOutOfScope is the scope marker carried by rejected plans
const ScopeOutOfScope = "out_of_scope"

// ErrInvalidPlan is returned when a plan breaks the whitelist or a structural invariant
var ErrInvalidPlan = errors.New("invalid action plan")

// allowedActions is the per-agent action vocabulary
var allowedActions = map[string]map[string]bool{
	AgentDiseasePrediction: {ActionPredictDisease: true},
	AgentSymptomAnalyzer:   {ActionAnalyzeSymptoms: true},
	AgentPatientJourney: {
		ActionGetJourney:    true,
		ActionTrackJourney:  true,
		ActionUpdateJourney: true,
	},
}

// IsAllowedAction reports whether agent may perform action
func IsAllowedAction(agent, action string) bool {
	return allowedActions[agent][action]
}

// Action is one instruction for a downstream agent
type Action struct {
	Agent  string         `json:"agent"`
	Action string         `json:"action"`
	Params map[string]any `json:"params"`
}

// DataFlowEdge declares that output of one agent feeds another
type DataFlowEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Data string `json:"data"`
}

// ActionPlan is the durable output of the router
type ActionPlan struct {
	Scope      string         `json:"scope,omitempty"`
	OutOfScope bool           `json:"out_of_scope"`
	Reason     string         `json:"reason,omitempty"`
	Agents     []string       `json:"agents"`
	Workflow   Workflow       `json:"workflow"`
	Actions    []Action       `json:"actions"`
	DataFlow   []DataFlowEdge `json:"data_flow"`
}

// OutOfScopePlan builds the canonical rejection plan
func OutOfScopePlan(reason string) ActionPlan {
	return ActionPlan{
		Scope:      ScopeOutOfScope,
		OutOfScope: true,
		Reason:     reason,
		Agents:     []string{},
		Workflow:   WorkflowNone,
		Actions:    []Action{},
		DataFlow:   []DataFlowEdge{},
	}
}

// Validate checks the action whitelist and the structural invariants of the plan.
// The returned error wraps ErrInvalidPlan.
func (p ActionPlan) Validate() error {
	if p.OutOfScope {
		if len(p.Agents) > 0 || len(p.Actions) > 0 || len(p.DataFlow) > 0 {
			return fmt.Errorf("%w: out-of-scope plan must be empty", ErrInvalidPlan)
		}
		return nil
	}

	agents := make(map[string]bool, len(p.Agents))
	for _, a := range p.Agents {
		if agents[a] {
			return fmt.Errorf("%w: duplicate agent %q", ErrInvalidPlan, a)
		}
		agents[a] = true
	}

	for _, act := range p.Actions {
		if !IsAllowedAction(act.Agent, act.Action) {
			return fmt.Errorf("%w: action %q not allowed for agent %q", ErrInvalidPlan, act.Action, act.Agent)
		}
		if !agents[act.Agent] {
			return fmt.Errorf("%w: action agent %q not in agent list", ErrInvalidPlan, act.Agent)
		}
	}

	for _, edge := range p.DataFlow {
		if !agents[edge.From] || !agents[edge.To] {
			return fmt.Errorf("%w: data flow %s->%s references unknown agent", ErrInvalidPlan, edge.From, edge.To)
		}
	}
	return nil
}

// IsValid is Validate as a predicate
func (p ActionPlan) IsValid() bool {
	return p.Validate() == nil
}

// Action returns the first action with the given name, if any
func (p ActionPlan) Action(name string) (Action, bool) {
	for _, a := range p.Actions {
		if a.Action == name {
			return a, true
		}
	}
	return Action{}, false
}

// RouteTrace records which router stages ran for a query.
// It is diagnostic only and never changes the plan.
type RouteTrace struct {
	Stages         []string `json:"stages"`
	FastPath       bool     `json:"fast_path"`
	Degraded       []string `json:"degraded,omitempty"`
	IdentifierRule string   `json:"identifier_rule,omitempty"`
}
