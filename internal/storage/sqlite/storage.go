// ABOUTME: SQLite implementation of the patient record graph store
// ABOUTME: Nodes and edges live in two tables with JSON props
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/harper/carepath/internal/models"
	"github.com/harper/carepath/internal/storage"
	"github.com/harper/carepath/internal/storage/fixture"
	"github.com/harper/carepath/internal/storage/graphsql"
)

// Storage serves journey lookups from a SQLite property graph
type Storage struct {
	db *DB
	q  graphsql.Queries
}

var (
	_ storage.Store  = (*Storage)(nil)
	_ storage.Seeder = (*Storage)(nil)
)

// NewStorage opens the default database file
func NewStorage() (*Storage, error) {
	return NewStorageWithPath(storage.DefaultDBPath())
}

// NewStorageWithPath opens or creates the database at dbPath
func NewStorageWithPath(dbPath string) (*Storage, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Storage{db: db, q: graphsql.SQLite.Queries()}, nil
}

// NewStorageInMemory creates an in-memory storage (for testing)
func NewStorageInMemory() (*Storage, error) {
	db, err := OpenInMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	return &Storage{db: db, q: graphsql.SQLite.Queries()}, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ResolvePatient finds the patient whose patientId or name equals idOrName, ignoring case
func (s *Storage) ResolvePatient(ctx context.Context, idOrName string) (models.Patient, error) {
	var p models.Patient
	err := s.db.QueryRowContext(ctx, s.q.ResolvePatient, idOrName).Scan(&p.ID, &p.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Patient{}, storage.ErrNoPatient
	}
	if err != nil {
		return models.Patient{}, fmt.Errorf("resolving patient: %w", err)
	}
	return p, nil
}

// Diagnoses returns dated HAS_DIAGNOSIS relationships
func (s *Storage) Diagnoses(ctx context.Context, patientID string) ([]models.DiagnosisRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.q.Diagnoses, patientID)
	if err != nil {
		return nil, fmt.Errorf("querying diagnoses: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return graphsql.ScanDiagnoses(rows)
}

// Appointments returns dated HAS_APPOINTMENT relationships with doctor and hospital
func (s *Storage) Appointments(ctx context.Context, patientID string) ([]models.AppointmentRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.q.Appointments, patientID)
	if err != nil {
		return nil, fmt.Errorf("querying appointments: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return graphsql.ScanAppointments(rows)
}

// Medications returns dated TAKES_MEDICATION relationships
func (s *Storage) Medications(ctx context.Context, patientID string) ([]models.MedicationRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.q.Medications, patientID)
	if err != nil {
		return nil, fmt.Errorf("querying medications: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return graphsql.ScanMedications(rows)
}

// Treatments returns RECEIVES_TREATMENT relationships that have a start date
func (s *Storage) Treatments(ctx context.Context, patientID string) ([]models.TreatmentRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.q.Treatments, patientID)
	if err != nil {
		return nil, fmt.Errorf("querying treatments: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return graphsql.ScanTreatments(rows)
}

// Tests returns dated UNDERWENT_TEST relationships
func (s *Storage) Tests(ctx context.Context, patientID string) ([]models.TestRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.q.Tests, patientID)
	if err != nil {
		return nil, fmt.Errorf("querying tests: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return graphsql.ScanTests(rows)
}

// Seed replaces the whole graph with fx in one transaction
func (s *Storage) Seed(ctx context.Context, fx *fixture.Fixture) error {
	tx, err := s.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.q.ClearEdges); err != nil {
		return fmt.Errorf("clearing edges: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.q.ClearNodes); err != nil {
		return fmt.Errorf("clearing nodes: %w", err)
	}

	for _, n := range fx.Nodes {
		props, err := graphsql.MarshalProps(n.Props)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, s.q.InsertNode, n.ID, n.Label, props); err != nil {
			return fmt.Errorf("inserting node %s: %w", n.ID, err)
		}
	}
	for _, e := range fx.Edges {
		props, err := graphsql.MarshalProps(e.Props)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, s.q.InsertEdge, e.From, e.To, e.Type, props); err != nil {
			return fmt.Errorf("inserting edge %s->%s: %w", e.From, e.To, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}
	return nil
}
