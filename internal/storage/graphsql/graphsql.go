// ABOUTME: Property-graph schema and journey queries shared by the SQL stores
// ABOUTME: A Dialect renders JSON property access and parameters for SQLite or Postgres
package graphsql

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harper/carepath/internal/models"
	"github.com/harper/carepath/internal/storage/fixture"
)

// Relationship types and node labels of the record graph
const (
	LabelPatient     = "Patient"
	LabelDiagnosis   = "Diagnosis"
	LabelAppointment = "Appointment"
	LabelMedication  = "Medication"
	LabelTreatment   = "Treatment"
	LabelTest        = "Test"
	LabelDoctor      = "Doctor"
	LabelHospital    = "Hospital"

	RelHasDiagnosis      = "HAS_DIAGNOSIS"
	RelHasAppointment    = "HAS_APPOINTMENT"
	RelTakesMedication   = "TAKES_MEDICATION"
	RelReceivesTreatment = "RECEIVES_TREATMENT"
	RelUnderwentTest     = "UNDERWENT_TEST"
	RelWithDoctor        = "WITH_DOCTOR"
	RelAtHospital        = "AT_HOSPITAL"
)

// Dialect captures the SQL differences between the embedded and server stores
type Dialect struct {
	Name     string
	Schema   string
	prop     func(alias, key string) string
	param    func(n int) string
	jsonCast string
}

// SQLite stores props as JSON text and reads them with json_extract
var SQLite = Dialect{
	Name: "sqlite",
	Schema: `
CREATE TABLE IF NOT EXISTS nodes (
    id TEXT PRIMARY KEY,
    label TEXT NOT NULL,
    props TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS edges (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    src TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
    dst TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
    type TEXT NOT NULL,
    props TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_nodes_label ON nodes(label);
CREATE INDEX IF NOT EXISTS idx_edges_src_type ON edges(src, type);
`,
	prop: func(alias, key string) string {
		return fmt.Sprintf("json_extract(%s.props, '$.%s')", alias, key)
	},
	param: func(n int) string { return fmt.Sprintf("?%d", n) },
}

// Postgres stores props as jsonb and reads them with ->>
var Postgres = Dialect{
	Name: "postgres",
	Schema: `
CREATE TABLE IF NOT EXISTS nodes (
    id TEXT PRIMARY KEY,
    label TEXT NOT NULL,
    props JSONB NOT NULL DEFAULT '{}'::jsonb
);

CREATE TABLE IF NOT EXISTS edges (
    id BIGSERIAL PRIMARY KEY,
    src TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
    dst TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
    type TEXT NOT NULL,
    props JSONB NOT NULL DEFAULT '{}'::jsonb
);

CREATE INDEX IF NOT EXISTS idx_nodes_label ON nodes(label);
CREATE INDEX IF NOT EXISTS idx_edges_src_type ON edges(src, type);
`,
	prop: func(alias, key string) string {
		return fmt.Sprintf("%s.props->>'%s'", alias, key)
	},
	param:    func(n int) string { return fmt.Sprintf("$%d", n) },
	jsonCast: "::jsonb",
}

// Queries holds the rendered statements for one dialect.
// Every query takes a single parameter: the patient id (or id-or-name for ResolvePatient).
type Queries struct {
	ResolvePatient string
	Diagnoses      string
	Appointments   string
	Medications    string
	Treatments     string
	Tests          string

	ClearEdges string
	ClearNodes string
	InsertNode string
	InsertEdge string
}

// Queries renders the statement set for d
func (d Dialect) Queries() Queries {
	p := d.prop
	arg := d.param(1)

	patientJoin := func(rel, label string) string {
		return fmt.Sprintf(`FROM nodes p
JOIN edges e ON e.src = p.id AND e.type = '%s'
JOIN nodes n ON n.id = e.dst AND n.label = '%s'
WHERE p.label = '%s' AND %s = %s`, rel, label, LabelPatient, p("p", "patientId"), arg)
	}

	return Queries{
		ResolvePatient: fmt.Sprintf(`SELECT %[1]s, %[2]s
FROM nodes p
WHERE p.label = '%[3]s' AND %[1]s IS NOT NULL
  AND (lower(%[1]s) = lower(%[4]s) OR lower(%[2]s) = lower(%[4]s))
ORDER BY %[1]s
LIMIT 1`, p("p", "patientId"), p("p", "name"), LabelPatient, arg),

		Diagnoses: fmt.Sprintf(`SELECT %s, %s, %s
%s
  AND %s IS NOT NULL AND %s IS NOT NULL
ORDER BY e.id`,
			p("n", "name"), p("n", "description"), p("e", "diagnosedDate"),
			patientJoin(RelHasDiagnosis, LabelDiagnosis),
			p("n", "name"), p("e", "diagnosedDate")),

		Appointments: fmt.Sprintf(`SELECT %s, %s, %s, %s, %s
%s
LEFT JOIN edges wd ON wd.src = n.id AND wd.type = '%s'
LEFT JOIN nodes doc ON doc.id = wd.dst AND doc.label = '%s'
LEFT JOIN edges ah ON ah.src = n.id AND ah.type = '%s'
LEFT JOIN nodes hosp ON hosp.id = ah.dst AND hosp.label = '%s'
WHERE %s IS NOT NULL AND %s IS NOT NULL
ORDER BY e.id, wd.id, ah.id`,
			p("n", "type"), p("e", "appointmentDate"), p("e", "status"), p("doc", "name"), p("hosp", "name"),
			strings.Replace(patientJoin(RelHasAppointment, LabelAppointment), "WHERE p.label", "AND p.label", 1),
			RelWithDoctor, LabelDoctor, RelAtHospital, LabelHospital,
			p("n", "type"), p("e", "appointmentDate")),

		Medications: fmt.Sprintf(`SELECT %s, %s, %s, %s
%s
  AND %s IS NOT NULL AND %s IS NOT NULL
ORDER BY e.id`,
			p("n", "name"), p("n", "dosage"), p("n", "frequency"), p("e", "prescribedDate"),
			patientJoin(RelTakesMedication, LabelMedication),
			p("n", "name"), p("e", "prescribedDate")),

		Treatments: fmt.Sprintf(`SELECT %s, %s, %s, %s
%s
  AND %s IS NOT NULL AND %s IS NOT NULL
ORDER BY e.id`,
			p("n", "name"), p("e", "startDate"), p("e", "endDate"), p("n", "status"),
			patientJoin(RelReceivesTreatment, LabelTreatment),
			p("n", "name"), p("e", "startDate")),

		Tests: fmt.Sprintf(`SELECT %s, %s, %s, %s
%s
  AND %s IS NOT NULL AND %s IS NOT NULL
ORDER BY e.id`,
			p("n", "name"), p("e", "performedDate"), p("n", "result"), p("n", "status"),
			patientJoin(RelUnderwentTest, LabelTest),
			p("n", "name"), p("e", "performedDate")),

		ClearEdges: "DELETE FROM edges",
		ClearNodes: "DELETE FROM nodes",
		InsertNode: fmt.Sprintf("INSERT INTO nodes (id, label, props) VALUES (%s, %s, %s%s)",
			d.param(1), d.param(2), d.param(3), d.jsonCast),
		InsertEdge: fmt.Sprintf("INSERT INTO edges (src, dst, type, props) VALUES (%s, %s, %s, %s%s)",
			d.param(1), d.param(2), d.param(3), d.param(4), d.jsonCast),
	}
}

// Rows is the cursor surface shared by database/sql and pgx
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// ScanDiagnoses reads rows produced by Queries.Diagnoses
func ScanDiagnoses(rows Rows) ([]models.DiagnosisRecord, error) {
	var out []models.DiagnosisRecord
	for rows.Next() {
		var r models.DiagnosisRecord
		if err := rows.Scan(&r.Name, &r.Description, &r.Date); err != nil {
			return nil, fmt.Errorf("scanning diagnosis: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ScanAppointments reads rows produced by Queries.Appointments
func ScanAppointments(rows Rows) ([]models.AppointmentRecord, error) {
	var out []models.AppointmentRecord
	for rows.Next() {
		var r models.AppointmentRecord
		if err := rows.Scan(&r.Type, &r.Date, &r.Status, &r.Doctor, &r.Hospital); err != nil {
			return nil, fmt.Errorf("scanning appointment: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ScanMedications reads rows produced by Queries.Medications
func ScanMedications(rows Rows) ([]models.MedicationRecord, error) {
	var out []models.MedicationRecord
	for rows.Next() {
		var r models.MedicationRecord
		if err := rows.Scan(&r.Name, &r.Dosage, &r.Frequency, &r.Date); err != nil {
			return nil, fmt.Errorf("scanning medication: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ScanTreatments reads rows produced by Queries.Treatments
func ScanTreatments(rows Rows) ([]models.TreatmentRecord, error) {
	var out []models.TreatmentRecord
	for rows.Next() {
		var r models.TreatmentRecord
		if err := rows.Scan(&r.Name, &r.StartDate, &r.EndDate, &r.Status); err != nil {
			return nil, fmt.Errorf("scanning treatment: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ScanTests reads rows produced by Queries.Tests
func ScanTests(rows Rows) ([]models.TestRecord, error) {
	var out []models.TestRecord
	for rows.Next() {
		var r models.TestRecord
		if err := rows.Scan(&r.Name, &r.Date, &r.Result, &r.Status); err != nil {
			return nil, fmt.Errorf("scanning test: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// MarshalProps encodes node or edge props for the props column
func MarshalProps(props map[string]any) (string, error) {
	b, err := json.Marshal(fixture.PropsOrEmpty(props))
	if err != nil {
		return "", fmt.Errorf("encoding props: %w", err)
	}
	return string(b), nil
}
