// ABOUTME: Read-only contract of the patient record graph
// ABOUTME: One patient lookup plus one traversal per journey category
package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/harper/carepath/internal/models"
	"github.com/harper/carepath/internal/storage/fixture"
)

// ErrNoPatient is returned by ResolvePatient when nothing matches
var ErrNoPatient = errors.New("no patient found")

// Store is the graph store the journey aggregator reads from.
// Traversals only return relationships whose defining date is present.
type Store interface {
	// ResolvePatient matches idOrName case-insensitively against patientId or name
	ResolvePatient(ctx context.Context, idOrName string) (models.Patient, error)

	Diagnoses(ctx context.Context, patientID string) ([]models.DiagnosisRecord, error)
	Appointments(ctx context.Context, patientID string) ([]models.AppointmentRecord, error)
	Medications(ctx context.Context, patientID string) ([]models.MedicationRecord, error)
	Treatments(ctx context.Context, patientID string) ([]models.TreatmentRecord, error)
	Tests(ctx context.Context, patientID string) ([]models.TestRecord, error)

	Close() error
}

// Seeder loads a fixture graph into a store
type Seeder interface {
	Seed(ctx context.Context, fx *fixture.Fixture) error
}

// DefaultDataDir returns the data directory, honoring XDG_DATA_HOME overrides
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = xdg.DataHome
	}
	return filepath.Join(dataHome, "carepath")
}

// DefaultDBPath returns the default SQLite file path
func DefaultDBPath() string {
	return filepath.Join(DefaultDataDir(), "carepath.db")
}
