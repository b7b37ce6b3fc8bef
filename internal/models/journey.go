// ABOUTME: Patient record and timeline types used by the journey aggregator
// ABOUTME: Optional store fields are pointers so "absent" differs from "empty"
package models

// Patient is a resolved patient node
type Patient struct {
	ID   string `json:"patient_id"`
	Name string `json:"patient_name"`
}

// DiagnosisRecord is one HAS_DIAGNOSIS relationship
type DiagnosisRecord struct {
	Name        string
	Description *string
	Date        *string
}

// AppointmentRecord is one HAS_APPOINTMENT relationship with its optional doctor and hospital
type AppointmentRecord struct {
	Type     string
	Date     *string
	Status   *string
	Doctor   *string
	Hospital *string
}

// MedicationRecord is one TAKES_MEDICATION relationship
type MedicationRecord struct {
	Name      string
	Dosage    *string
	Frequency *string
	Date      *string
}

// TreatmentRecord is one RECEIVES_TREATMENT relationship
type TreatmentRecord struct {
	Name      string
	StartDate *string
	EndDate   *string
	Status    *string
}

// TestRecord is one UNDERWENT_TEST relationship
type TestRecord struct {
	Name   string
	Date   *string
	Result *string
	Status *string
}

// TimelineEntry is a rendered event and the date it sorts on
type TimelineEntry struct {
	SortKey string
	Text    string
}

// Journey is the date-ordered narrative for one patient
type Journey struct {
	PatientID   string   `json:"patient_id"`
	PatientName string   `json:"patient_name"`
	Steps       []string `json:"journey_steps"`
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}

// StringOr dereferences p, returning fallback when p is nil
func StringOr(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}
