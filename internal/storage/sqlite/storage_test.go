// ABOUTME: Tests for the SQLite graph store against the demo fixture
// ABOUTME: Covers patient resolution, each traversal, date filtering and reseeding
package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/harper/carepath/internal/models"
	"github.com/harper/carepath/internal/storage"
	"github.com/harper/carepath/internal/storage/fixture"
)

func seededStore(t *testing.T) *Storage {
	t.Helper()
	store, err := NewStorageInMemory()
	if err != nil {
		t.Fatalf("NewStorageInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Seed(context.Background(), fixture.Demo()); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	return store
}

func TestResolvePatient(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	tests := []struct {
		query    string
		wantID   string
		wantName string
	}{
		{"pat1", "pat1", "John Doe"},
		{"PAT1", "pat1", "John Doe"},
		{"john doe", "pat1", "John Doe"},
		{"Mary Silva", "pat2", "Mary Silva"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p, err := store.ResolvePatient(ctx, tt.query)
			if err != nil {
				t.Fatalf("ResolvePatient() error = %v", err)
			}
			if p.ID != tt.wantID || p.Name != tt.wantName {
				t.Errorf("ResolvePatient() = %+v, want %s/%s", p, tt.wantID, tt.wantName)
			}
		})
	}

	_, err := store.ResolvePatient(ctx, "nobody")
	if !errors.Is(err, storage.ErrNoPatient) {
		t.Errorf("ResolvePatient(nobody) error = %v, want ErrNoPatient", err)
	}
}

func TestDiagnoses_SkipsUndatedAndKeepsDuplicates(t *testing.T) {
	store := seededStore(t)

	got, err := store.Diagnoses(context.Background(), "pat2")
	if err != nil {
		t.Fatalf("Diagnoses() error = %v", err)
	}
	// two dated HAS_DIAGNOSIS edges to diag2, the undated migraine is filtered
	if len(got) != 2 {
		t.Fatalf("Diagnoses() returned %d records, want 2: %+v", len(got), got)
	}
	for _, d := range got {
		if d.Name != "Type 2 Diabetes" || models.StringOr(d.Date, "") != "2024-03-02" {
			t.Errorf("unexpected diagnosis %+v", d)
		}
	}
}

func TestDiagnoses_MissingDescriptionIsNil(t *testing.T) {
	store, err := NewStorageInMemory()
	if err != nil {
		t.Fatalf("NewStorageInMemory() error = %v", err)
	}
	defer func() { _ = store.Close() }()

	fx := &fixture.Fixture{
		Nodes: []fixture.Node{
			{ID: "p", Label: "Patient", Props: map[string]any{"patientId": "p5", "name": "Ann"}},
			{ID: "d", Label: "Diagnosis", Props: map[string]any{"name": "Asthma"}},
		},
		Edges: []fixture.Edge{
			{From: "p", To: "d", Type: "HAS_DIAGNOSIS", Props: map[string]any{"diagnosedDate": "2023-07-01"}},
		},
	}
	if err := store.Seed(context.Background(), fx); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	got, err := store.Diagnoses(context.Background(), "p5")
	if err != nil {
		t.Fatalf("Diagnoses() error = %v", err)
	}
	if len(got) != 1 || got[0].Description != nil {
		t.Errorf("Diagnoses() = %+v, want one record with nil description", got)
	}
}

func TestAppointments_OptionalDoctorAndHospital(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	got, err := store.Appointments(ctx, "pat1")
	if err != nil {
		t.Fatalf("Appointments() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Appointments(pat1) returned %d, want 1", len(got))
	}
	a := got[0]
	if a.Type != "Consultation" || models.StringOr(a.Doctor, "") != "Dr. Jane Smith" || models.StringOr(a.Hospital, "") != "City General Hospital" {
		t.Errorf("unexpected appointment %+v", a)
	}

	got, err = store.Appointments(ctx, "pat2")
	if err != nil {
		t.Fatalf("Appointments() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Appointments(pat2) returned %d, want 2", len(got))
	}
	if got[0].Hospital != nil || models.StringOr(got[0].Doctor, "") != "Dr. Ravi Perera" {
		t.Errorf("follow-up should have a doctor and no hospital: %+v", got[0])
	}
	if got[1].Status != nil || got[1].Doctor != nil {
		t.Errorf("teleconsult should have no status or doctor: %+v", got[1])
	}
}

func TestMedicationsTreatmentsTests(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	meds, err := store.Medications(ctx, "pat1")
	if err != nil {
		t.Fatalf("Medications() error = %v", err)
	}
	if len(meds) != 1 || meds[0].Name != "Lisinopril" || models.StringOr(meds[0].Dosage, "") != "10mg" {
		t.Errorf("Medications() = %+v", meds)
	}

	treats, err := store.Treatments(ctx, "pat2")
	if err != nil {
		t.Fatalf("Treatments() error = %v", err)
	}
	if len(treats) != 1 || treats[0].EndDate != nil || treats[0].Status != nil {
		t.Errorf("Treatments() = %+v, want open-ended treatment without status", treats)
	}

	tests, err := store.Tests(ctx, "pat1")
	if err != nil {
		t.Fatalf("Tests() error = %v", err)
	}
	if len(tests) != 1 || models.StringOr(tests[0].Result, "") != "140/90" {
		t.Errorf("Tests() = %+v", tests)
	}
}

func TestSeed_Replaces(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	fx := &fixture.Fixture{
		Nodes: []fixture.Node{{ID: "p", Label: "Patient", Props: map[string]any{"patientId": "p5", "name": "Ann"}}},
	}
	if err := store.Seed(ctx, fx); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	if _, err := store.ResolvePatient(ctx, "pat1"); !errors.Is(err, storage.ErrNoPatient) {
		t.Errorf("pat1 should be gone after reseed, got %v", err)
	}
	if _, err := store.ResolvePatient(ctx, "p5"); err != nil {
		t.Errorf("ResolvePatient(p5) error = %v", err)
	}
}

func TestNewStorageWithPath_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "carepath.db")
	ctx := context.Background()

	store, err := NewStorageWithPath(path)
	if err != nil {
		t.Fatalf("NewStorageWithPath() error = %v", err)
	}
	if err := store.Seed(ctx, fixture.Demo()); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	_ = store.Close()

	store, err = NewStorageWithPath(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer func() { _ = store.Close() }()

	if _, err := store.ResolvePatient(ctx, "pat2"); err != nil {
		t.Errorf("ResolvePatient() after reopen error = %v", err)
	}
}
