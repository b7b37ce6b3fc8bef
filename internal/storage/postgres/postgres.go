// ABOUTME: Postgres implementation of the patient record graph store
// ABOUTME: Same nodes/edges layout as SQLite with jsonb props, served from a pgx pool
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harper/carepath/internal/models"
	"github.com/harper/carepath/internal/storage"
	"github.com/harper/carepath/internal/storage/fixture"
	"github.com/harper/carepath/internal/storage/graphsql"
)

// Pool sizing for a read-mostly service
const (
	DefaultMaxConns int32 = 10
	DefaultMinConns int32 = 1
)

// Store serves journey lookups from Postgres
type Store struct {
	pool *pgxpool.Pool
	q    graphsql.Queries
}

var (
	_ storage.Store  = (*Store)(nil)
	_ storage.Seeder = (*Store)(nil)
)

// NewPool parses databaseURL, connects and pings
func NewPool(ctx context.Context, databaseURL string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.MaxConns = maxConns
	cfg.MinConns = minConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Open connects to databaseURL and ensures the graph tables exist
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := NewPool(ctx, databaseURL, DefaultMaxConns, DefaultMinConns)
	if err != nil {
		return nil, err
	}
	s := New(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing pool
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, q: graphsql.Postgres.Queries()}
}

// Migrate creates the nodes and edges tables if missing
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, graphsql.Postgres.Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close releases the pool
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// ResolvePatient finds the patient whose patientId or name equals idOrName, ignoring case
func (s *Store) ResolvePatient(ctx context.Context, idOrName string) (models.Patient, error) {
	var p models.Patient
	err := s.pool.QueryRow(ctx, s.q.ResolvePatient, idOrName).Scan(&p.ID, &p.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Patient{}, storage.ErrNoPatient
	}
	if err != nil {
		return models.Patient{}, fmt.Errorf("resolve patient: %w", err)
	}
	return p, nil
}

func (s *Store) query(ctx context.Context, what, sql, patientID string) (pgx.Rows, error) {
	rows, err := s.pool.Query(ctx, sql, patientID)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", what, err)
	}
	return rows, nil
}

// Diagnoses returns dated HAS_DIAGNOSIS relationships
func (s *Store) Diagnoses(ctx context.Context, patientID string) ([]models.DiagnosisRecord, error) {
	rows, err := s.query(ctx, "diagnoses", s.q.Diagnoses, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return graphsql.ScanDiagnoses(rows)
}

// Appointments returns dated HAS_APPOINTMENT relationships with doctor and hospital
func (s *Store) Appointments(ctx context.Context, patientID string) ([]models.AppointmentRecord, error) {
	rows, err := s.query(ctx, "appointments", s.q.Appointments, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return graphsql.ScanAppointments(rows)
}

// Medications returns dated TAKES_MEDICATION relationships
func (s *Store) Medications(ctx context.Context, patientID string) ([]models.MedicationRecord, error) {
	rows, err := s.query(ctx, "medications", s.q.Medications, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return graphsql.ScanMedications(rows)
}

// Treatments returns RECEIVES_TREATMENT relationships that have a start date
func (s *Store) Treatments(ctx context.Context, patientID string) ([]models.TreatmentRecord, error) {
	rows, err := s.query(ctx, "treatments", s.q.Treatments, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return graphsql.ScanTreatments(rows)
}

// Tests returns dated UNDERWENT_TEST relationships
func (s *Store) Tests(ctx context.Context, patientID string) ([]models.TestRecord, error) {
	rows, err := s.query(ctx, "tests", s.q.Tests, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return graphsql.ScanTests(rows)
}

// Seed replaces the whole graph with fx in one transaction
func (s *Store) Seed(ctx context.Context, fx *fixture.Fixture) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, s.q.ClearEdges); err != nil {
		return fmt.Errorf("clear edges: %w", err)
	}
	if _, err := tx.Exec(ctx, s.q.ClearNodes); err != nil {
		return fmt.Errorf("clear nodes: %w", err)
	}

	batch := &pgx.Batch{}
	for _, n := range fx.Nodes {
		props, err := graphsql.MarshalProps(n.Props)
		if err != nil {
			return err
		}
		batch.Queue(s.q.InsertNode, n.ID, n.Label, props)
	}
	for _, e := range fx.Edges {
		props, err := graphsql.MarshalProps(e.Props)
		if err != nil {
			return err
		}
		batch.Queue(s.q.InsertEdge, e.From, e.To, e.Type, props)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert graph: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}
