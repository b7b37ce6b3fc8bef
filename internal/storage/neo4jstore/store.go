// ABOUTME: Neo4j implementation of the patient record graph store
// ABOUTME: Runs the journey Cypher queries in read transactions
package neo4jstore

import (
	"context"
	"fmt"
	"regexp"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/harper/carepath/internal/models"
	"github.com/harper/carepath/internal/storage"
	"github.com/harper/carepath/internal/storage/fixture"
)

// Config holds connection settings
type Config struct {
	URI      string
	User     string
	Password string
	Database string
}

// DefaultDatabase is used when Config.Database is empty
const DefaultDatabase = "neo4j"

// Store serves journey lookups from Neo4j
type Store struct {
	driver   neo4j.DriverWithContext
	database string
}

var (
	_ storage.Store  = (*Store)(nil)
	_ storage.Seeder = (*Store)(nil)
)

const (
	cypherResolvePatient = `
MATCH (p:Patient)
WHERE toLower(p.patientId) = toLower($patient_id) OR toLower(p.name) = toLower($patient_id)
RETURN p.patientId AS id, p.name AS patient_name
ORDER BY p.patientId
LIMIT 1`

	cypherDiagnoses = `
MATCH (p:Patient)-[hd:HAS_DIAGNOSIS]->(diag:Diagnosis)
WHERE p.patientId = $patient_id AND diag.name IS NOT NULL AND hd.diagnosedDate IS NOT NULL
RETURN diag.name AS name, diag.description AS desc, hd.diagnosedDate AS date`

	cypherAppointments = `
MATCH (p:Patient)-[ha:HAS_APPOINTMENT]->(appt:Appointment)
WHERE p.patientId = $patient_id AND appt.type IS NOT NULL AND ha.appointmentDate IS NOT NULL
OPTIONAL MATCH (appt)-[:WITH_DOCTOR]->(doc:Doctor)
OPTIONAL MATCH (appt)-[:AT_HOSPITAL]->(hosp:Hospital)
RETURN appt.type AS type, ha.appointmentDate AS date, ha.status AS status,
       doc.name AS doctor_name, hosp.name AS hospital_name`

	cypherMedications = `
MATCH (p:Patient)-[tm:TAKES_MEDICATION]->(med:Medication)
WHERE p.patientId = $patient_id AND med.name IS NOT NULL AND tm.prescribedDate IS NOT NULL
RETURN med.name AS name, med.dosage AS dosage, med.frequency AS freq, tm.prescribedDate AS date`

	cypherTreatments = `
MATCH (p:Patient)-[rt:RECEIVES_TREATMENT]->(treat:Treatment)
WHERE p.patientId = $patient_id AND treat.name IS NOT NULL AND rt.startDate IS NOT NULL
RETURN treat.name AS name, rt.startDate AS start, rt.endDate AS end, treat.status AS status`

	cypherTests = `
MATCH (p:Patient)-[ut:UNDERWENT_TEST]->(test:Test)
WHERE p.patientId = $patient_id AND test.name IS NOT NULL AND ut.performedDate IS NOT NULL
RETURN test.name AS name, ut.performedDate AS date, test.result AS result, test.status AS status`
)

// Open connects and verifies connectivity
func Open(ctx context.Context, cfg Config) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("connect to neo4j: %w", err)
	}

	db := cfg.Database
	if db == "" {
		db = DefaultDatabase
	}
	return &Store{driver: driver, database: db}, nil
}

// Close shuts the driver down
func (s *Store) Close() error {
	return s.driver.Close(context.Background())
}

func (s *Store) read(ctx context.Context, cypher, patientID string) ([]*neo4j.Record, error) {
	result, err := neo4j.ExecuteQuery(ctx, s.driver, cypher,
		map[string]any{"patient_id": patientID},
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database),
		neo4j.ExecuteQueryWithReadersRouting())
	if err != nil {
		return nil, err
	}
	return result.Records, nil
}

// ResolvePatient finds the patient whose patientId or name equals idOrName, ignoring case
func (s *Store) ResolvePatient(ctx context.Context, idOrName string) (models.Patient, error) {
	records, err := s.read(ctx, cypherResolvePatient, idOrName)
	if err != nil {
		return models.Patient{}, fmt.Errorf("resolve patient: %w", err)
	}
	if len(records) == 0 {
		return models.Patient{}, storage.ErrNoPatient
	}
	return models.Patient{
		ID:   stringValue(records[0], "id"),
		Name: stringValue(records[0], "patient_name"),
	}, nil
}

// Diagnoses returns dated HAS_DIAGNOSIS relationships
func (s *Store) Diagnoses(ctx context.Context, patientID string) ([]models.DiagnosisRecord, error) {
	records, err := s.read(ctx, cypherDiagnoses, patientID)
	if err != nil {
		return nil, fmt.Errorf("query diagnoses: %w", err)
	}
	out := make([]models.DiagnosisRecord, 0, len(records))
	for _, r := range records {
		out = append(out, models.DiagnosisRecord{
			Name:        stringValue(r, "name"),
			Description: optString(r, "desc"),
			Date:        optString(r, "date"),
		})
	}
	return out, nil
}

// Appointments returns dated HAS_APPOINTMENT relationships with doctor and hospital
func (s *Store) Appointments(ctx context.Context, patientID string) ([]models.AppointmentRecord, error) {
	records, err := s.read(ctx, cypherAppointments, patientID)
	if err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}
	out := make([]models.AppointmentRecord, 0, len(records))
	for _, r := range records {
		out = append(out, models.AppointmentRecord{
			Type:     stringValue(r, "type"),
			Date:     optString(r, "date"),
			Status:   optString(r, "status"),
			Doctor:   optString(r, "doctor_name"),
			Hospital: optString(r, "hospital_name"),
		})
	}
	return out, nil
}

// Medications returns dated TAKES_MEDICATION relationships
func (s *Store) Medications(ctx context.Context, patientID string) ([]models.MedicationRecord, error) {
	records, err := s.read(ctx, cypherMedications, patientID)
	if err != nil {
		return nil, fmt.Errorf("query medications: %w", err)
	}
	out := make([]models.MedicationRecord, 0, len(records))
	for _, r := range records {
		out = append(out, models.MedicationRecord{
			Name:      stringValue(r, "name"),
			Dosage:    optString(r, "dosage"),
			Frequency: optString(r, "freq"),
			Date:      optString(r, "date"),
		})
	}
	return out, nil
}

// Treatments returns RECEIVES_TREATMENT relationships that have a start date
func (s *Store) Treatments(ctx context.Context, patientID string) ([]models.TreatmentRecord, error) {
	records, err := s.read(ctx, cypherTreatments, patientID)
	if err != nil {
		return nil, fmt.Errorf("query treatments: %w", err)
	}
	out := make([]models.TreatmentRecord, 0, len(records))
	for _, r := range records {
		out = append(out, models.TreatmentRecord{
			Name:      stringValue(r, "name"),
			StartDate: optString(r, "start"),
			EndDate:   optString(r, "end"),
			Status:    optString(r, "status"),
		})
	}
	return out, nil
}

// Tests returns dated UNDERWENT_TEST relationships
func (s *Store) Tests(ctx context.Context, patientID string) ([]models.TestRecord, error) {
	records, err := s.read(ctx, cypherTests, patientID)
	if err != nil {
		return nil, fmt.Errorf("query tests: %w", err)
	}
	out := make([]models.TestRecord, 0, len(records))
	for _, r := range records {
		out = append(out, models.TestRecord{
			Name:   stringValue(r, "name"),
			Date:   optString(r, "date"),
			Result: optString(r, "result"),
			Status: optString(r, "status"),
		})
	}
	return out, nil
}

var cypherIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Seed wipes the database and writes fx in a single write transaction.
// Fixture node ids are kept in a uid property so edges can find their endpoints.
func (s *Store) Seed(ctx context.Context, fx *fixture.Fixture) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.database,
	})
	defer func() { _ = session.Close(ctx) }()

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, "MATCH (n) DETACH DELETE n", nil); err != nil {
			return nil, fmt.Errorf("clear graph: %w", err)
		}
		for _, n := range fx.Nodes {
			stmt, err := createNodeCypher(n.Label)
			if err != nil {
				return nil, err
			}
			params := map[string]any{"uid": n.ID, "props": fixture.PropsOrEmpty(n.Props)}
			if _, err := tx.Run(ctx, stmt, params); err != nil {
				return nil, fmt.Errorf("create node %s: %w", n.ID, err)
			}
		}
		for _, e := range fx.Edges {
			stmt, err := createEdgeCypher(e.Type)
			if err != nil {
				return nil, err
			}
			params := map[string]any{"from": e.From, "to": e.To, "props": fixture.PropsOrEmpty(e.Props)}
			if _, err := tx.Run(ctx, stmt, params); err != nil {
				return nil, fmt.Errorf("create edge %s->%s: %w", e.From, e.To, err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("seed neo4j: %w", err)
	}
	return nil
}

// Labels and relationship types cannot be parameters in Cypher
func createNodeCypher(label string) (string, error) {
	if !cypherIdentifier.MatchString(label) {
		return "", fmt.Errorf("invalid node label %q", label)
	}
	return fmt.Sprintf("CREATE (n:%s) SET n = $props, n.uid = $uid", label), nil
}

func createEdgeCypher(relType string) (string, error) {
	if !cypherIdentifier.MatchString(relType) {
		return "", fmt.Errorf("invalid relationship type %q", relType)
	}
	return fmt.Sprintf("MATCH (a {uid: $from}), (b {uid: $to}) CREATE (a)-[r:%s]->(b) SET r = $props", relType), nil
}

func stringValue(r *neo4j.Record, key string) string {
	return models.StringOr(optString(r, key), "")
}

// optString maps a missing or null column to nil and stringifies non-string scalars
func optString(r *neo4j.Record, key string) *string {
	v, ok := r.Get(key)
	if !ok || v == nil {
		return nil
	}
	if s, ok := v.(string); ok {
		return &s
	}
	s := fmt.Sprint(v)
	return &s
}
