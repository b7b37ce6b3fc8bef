// ABOUTME: End-to-end tests for seed, journey and route against a temp sqlite store
// ABOUTME: Runs without API keys so classifiers take their safe defaults

package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harper/carepath/internal/models"
)

// isolate points config at a fresh sqlite file with no oracle keys
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, k := range []string{"OPENAI_API_KEY", "GEMINI_API_KEY", "CAREPATH_ORACLE", "DATABASE_URL", "NEO4J_URI", "CAREPATH_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	t.Setenv("CAREPATH_STORE", "sqlite")
	t.Setenv("CAREPATH_DB_PATH", filepath.Join(dir, "carepath.db"))
}

func TestSeedAndJourney(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, "seed")
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if !strings.Contains(out, "Seeded sqlite store") {
		t.Errorf("seed output = %q", out)
	}

	out, err = runCLI(t, "journey", "Mary", "Silva")
	if err != nil {
		t.Fatalf("journey failed: %v", err)
	}
	if !strings.Contains(out, "Journey for Mary Silva (pat2)") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "  1. ") {
		t.Errorf("missing numbered steps:\n%s", out)
	}
}

func TestJourney_JSON(t *testing.T) {
	isolate(t)
	if _, err := runCLI(t, "seed"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	out, err := runCLI(t, "--format", "json", "journey", "pat1")
	if err != nil {
		t.Fatalf("journey failed: %v", err)
	}

	var j models.Journey
	if err := json.Unmarshal([]byte(out), &j); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if j.PatientID != "pat1" || j.PatientName != "John Doe" {
		t.Errorf("got %+v", j)
	}
	if len(j.Steps) == 0 {
		t.Error("expected journey steps for pat1")
	}
}

func TestJourney_NotFound(t *testing.T) {
	isolate(t)
	if _, err := runCLI(t, "seed"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	_, err := runCLI(t, "journey", "nobody")
	if err == nil || !strings.Contains(err.Error(), "no patient found with ID/name: nobody") {
		t.Errorf("err = %v", err)
	}
}

func TestSeed_File(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "graph.yaml")
	graph := `nodes:
  - {id: p, label: Patient, props: {patientId: p7, name: Ann Lee}}
  - {id: d, label: Diagnosis, props: {name: Asthma}}
edges:
  - {from: p, to: d, type: HAS_DIAGNOSIS, props: {diagnosedDate: "2024-06-01"}}
`
	if err := os.WriteFile(path, []byte(graph), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := runCLI(t, "seed", "--file", path); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	out, err := runCLI(t, "journey", "p7")
	if err != nil {
		t.Fatalf("journey failed: %v", err)
	}
	if !strings.Contains(out, "Asthma") {
		t.Errorf("journey missing diagnosis:\n%s", out)
	}

	// The demo graph was replaced
	if _, err := runCLI(t, "journey", "pat1"); err == nil {
		t.Error("pat1 should be gone after seeding from file")
	}
}

func TestSeed_BadFile(t *testing.T) {
	isolate(t)
	if _, err := runCLI(t, "seed", "--file", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing fixture file")
	}
}

func TestRoute_NoOracle(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, "route", "I have a headache")
	if err != nil {
		t.Fatalf("route failed: %v", err)
	}
	if !strings.Contains(out, "Out of scope: not health related") {
		t.Errorf("route output = %q", out)
	}
}

func TestRoute_ExplainJSON(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, "--format", "json", "route", "--explain", "   ")
	if err != nil {
		t.Fatalf("route failed: %v", err)
	}

	var got struct {
		Plan  models.ActionPlan `json:"plan"`
		Trace models.RouteTrace `json:"trace"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if !got.Plan.OutOfScope || got.Plan.Reason != "empty query" {
		t.Errorf("plan = %+v", got.Plan)
	}
	if len(got.Trace.Stages) != 0 {
		t.Errorf("empty query should run no stages, got %v", got.Trace.Stages)
	}
}

func TestSymptoms_RequiresText(t *testing.T) {
	isolate(t)
	if _, err := runCLI(t, "symptoms"); err == nil {
		t.Error("expected error for empty text")
	}
}

func TestSymptoms_NoOracle(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, "symptoms", "my head hurts")
	if err != nil {
		t.Fatalf("symptoms failed: %v", err)
	}
	if !strings.Contains(out, "No symptoms found") {
		t.Errorf("symptoms output = %q", out)
	}
}
