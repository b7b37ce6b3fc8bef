// ABOUTME: Labeled queries for the routing benchmark
// ABOUTME: Each scenario names the workflow and patient id a correct router produces

package routing

import "github.com/harper/carepath/internal/models"

// Scenario is one labeled query
type Scenario struct {
	ID     string
	Name   string
	Query  string
	UserID string
	Expect Expectation
}

// Expectation is the ground truth for a scenario.
// PatientID is only checked for journey plans.
type Expectation struct {
	OutOfScope bool
	Workflow   models.Workflow
	PatientID  string
}

// Scenarios returns the built-in labeled set
func Scenarios() []Scenario {
	journey := func(id string) Expectation {
		return Expectation{Workflow: models.WorkflowPatientJourney, PatientID: id}
	}
	diagnosis := Expectation{Workflow: models.WorkflowMedicalDiagnosis}
	outOfScope := Expectation{OutOfScope: true, Workflow: models.WorkflowNone}

	return []Scenario{
		{ID: "j1", Name: "Medication history by id", Query: "show medication history for pat2", Expect: journey("pat2")},
		{ID: "j2", Name: "Patient keyword", Query: "what treatments has patient pat1 received", Expect: journey("pat1")},
		{ID: "j3", Name: "Labeled id", Query: "lab results id: p17", Expect: journey("p17")},
		{ID: "j4", Name: "Caller fallback", Query: "when was my last appointment", UserID: "pat2", Expect: journey("pat2")},
		{ID: "j5", Name: "Journey without keyword", Query: "what did the doctor prescribe me in January", UserID: "pat1", Expect: journey("pat1")},
		{ID: "d1", Name: "Symptom description", Query: "I have a headache and a fever since yesterday", Expect: diagnosis},
		{ID: "d2", Name: "Possible condition", Query: "my chest feels tight when I climb stairs, what could it be", Expect: diagnosis},
		{ID: "d3", Name: "Child symptoms", Query: "my son has a rash on his arms and keeps scratching", Expect: diagnosis},
		{ID: "o1", Name: "Weather", Query: "what's the weather in Colombo tomorrow", Expect: outOfScope},
		{ID: "o2", Name: "Programming", Query: "write a python function that reverses a list", Expect: outOfScope},
		{ID: "o3", Name: "Restaurant booking", Query: "book me a table at a vegan restaurant", Expect: outOfScope},
	}
}

// GetScenario returns the scenario with id
func GetScenario(id string) (Scenario, bool) {
	for _, s := range Scenarios() {
		if s.ID == id {
			return s, true
		}
	}
	return Scenario{}, false
}
