// ABOUTME: Narrative templates for each journey category
// ABOUTME: Absent optional fields render as fixed fallback text
package journey

import (
	"fmt"

	"github.com/harper/carepath/internal/models"
)

// Fallback text for absent optional fields
const (
	UnknownDate     = "Unknown Date"
	UnknownProvider = "Unknown Provider"
	UnknownLocation = "Unknown Location"
	Unknown         = "Unknown"
	UnknownEndDate  = "Unknown End Date"
)

func renderDiagnosis(r models.DiagnosisRecord) (models.TimelineEntry, bool) {
	if r.Name == "" || r.Date == nil {
		return models.TimelineEntry{}, false
	}
	return models.TimelineEntry{
		SortKey: *r.Date,
		Text: fmt.Sprintf("Diagnosed with %s (%s) on %s",
			r.Name, models.StringOr(r.Description, ""), *r.Date),
	}, true
}

func renderAppointment(r models.AppointmentRecord) (models.TimelineEntry, bool) {
	if r.Type == "" || r.Date == nil {
		return models.TimelineEntry{}, false
	}
	return models.TimelineEntry{
		SortKey: *r.Date,
		Text: fmt.Sprintf("Had a %s appointment on %s (%s) with %s at %s",
			r.Type, *r.Date,
			models.StringOr(r.Status, Unknown),
			nonEmptyOr(r.Doctor, UnknownProvider),
			nonEmptyOr(r.Hospital, UnknownLocation)),
	}, true
}

func renderMedication(r models.MedicationRecord) (models.TimelineEntry, bool) {
	if r.Name == "" || r.Date == nil {
		return models.TimelineEntry{}, false
	}
	return models.TimelineEntry{
		SortKey: *r.Date,
		Text: fmt.Sprintf("Prescribed %s %s %s on %s",
			r.Name, models.StringOr(r.Dosage, ""), models.StringOr(r.Frequency, ""), *r.Date),
	}, true
}

func renderTreatment(r models.TreatmentRecord) (models.TimelineEntry, bool) {
	if r.Name == "" || r.StartDate == nil {
		return models.TimelineEntry{}, false
	}
	return models.TimelineEntry{
		SortKey: *r.StartDate,
		Text: fmt.Sprintf("Started treatment: %s from %s to %s (Status: %s)",
			r.Name, *r.StartDate,
			models.StringOr(r.EndDate, UnknownEndDate),
			models.StringOr(r.Status, Unknown)),
	}, true
}

func renderTest(r models.TestRecord) (models.TimelineEntry, bool) {
	if r.Name == "" || r.Date == nil {
		return models.TimelineEntry{}, false
	}
	return models.TimelineEntry{
		SortKey: *r.Date,
		Text: fmt.Sprintf("Had %s on %s - Result: %s (Status: %s)",
			r.Name, *r.Date,
			models.StringOr(r.Result, Unknown),
			models.StringOr(r.Status, Unknown)),
	}, true
}

// Provider and facility names fall back on empty as well as absent
func nonEmptyOr(p *string, fallback string) string {
	if p == nil || *p == "" {
		return fallback
	}
	return *p
}

func renderAll[T any](records []T, render func(T) (models.TimelineEntry, bool)) []models.TimelineEntry {
	out := make([]models.TimelineEntry, 0, len(records))
	for _, r := range records {
		if e, ok := render(r); ok {
			out = append(out, e)
		}
	}
	return out
}
