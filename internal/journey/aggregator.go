// ABOUTME: Builds a patient's date-ordered journey from five record categories
// ABOUTME: Lookups run concurrently, merging stays in fixed category order
package journey

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/harper/carepath/internal/models"
	"github.com/harper/carepath/internal/storage"
)

// ErrPatientNotFound is returned when no patient matches the identifier
var ErrPatientNotFound = errors.New("patient not found")

// category is one record lookup and its renderer
type category struct {
	name  string
	fetch func(ctx context.Context, s storage.Store, patientID string) ([]models.TimelineEntry, error)
}

// categories in dedup precedence order
var categories = []category{
	{"diagnoses", func(ctx context.Context, s storage.Store, id string) ([]models.TimelineEntry, error) {
		recs, err := s.Diagnoses(ctx, id)
		return renderAll(recs, renderDiagnosis), err
	}},
	{"appointments", func(ctx context.Context, s storage.Store, id string) ([]models.TimelineEntry, error) {
		recs, err := s.Appointments(ctx, id)
		return renderAll(recs, renderAppointment), err
	}},
	{"medications", func(ctx context.Context, s storage.Store, id string) ([]models.TimelineEntry, error) {
		recs, err := s.Medications(ctx, id)
		return renderAll(recs, renderMedication), err
	}},
	{"treatments", func(ctx context.Context, s storage.Store, id string) ([]models.TimelineEntry, error) {
		recs, err := s.Treatments(ctx, id)
		return renderAll(recs, renderTreatment), err
	}},
	{"tests", func(ctx context.Context, s storage.Store, id string) ([]models.TimelineEntry, error) {
		recs, err := s.Tests(ctx, id)
		return renderAll(recs, renderTest), err
	}},
}

// Aggregator reads a Store and renders journeys
type Aggregator struct {
	store  storage.Store
	logger zerolog.Logger
}

// New creates an Aggregator
func New(store storage.Store, logger zerolog.Logger) *Aggregator {
	return &Aggregator{store: store, logger: logger.With().Str("component", "journey").Logger()}
}

// Aggregate resolves idOrName and returns the patient's journey, newest first.
// An unknown patient yields ErrPatientNotFound and no journey.
func (a *Aggregator) Aggregate(ctx context.Context, idOrName string) (models.Journey, error) {
	patient, err := a.store.ResolvePatient(ctx, idOrName)
	if errors.Is(err, storage.ErrNoPatient) {
		return models.Journey{}, fmt.Errorf("%w: %s", ErrPatientNotFound, idOrName)
	}
	if err != nil {
		return models.Journey{}, fmt.Errorf("resolving patient %q: %w", idOrName, err)
	}

	// indexed by category so completion order cannot affect the merge
	results := make([][]models.TimelineEntry, len(categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range categories {
		g.Go(func() error {
			entries, err := c.fetch(gctx, a.store, patient.ID)
			if err != nil {
				return fmt.Errorf("fetching %s: %w", c.name, err)
			}
			results[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return models.Journey{}, ctx.Err()
		}
		return models.Journey{}, err
	}
	if err := ctx.Err(); err != nil {
		return models.Journey{}, err
	}

	entries := Merge(results...)
	steps := make([]string, len(entries))
	for i, e := range entries {
		steps[i] = e.Text
	}

	a.logger.Debug().
		Str("patient_id", patient.ID).
		Int("steps", len(steps)).
		Msg("journey aggregated")

	return models.Journey{
		PatientID:   patient.ID,
		PatientName: patient.Name,
		Steps:       steps,
	}, nil
}

// Merge concatenates groups in order, drops repeated texts keeping the first,
// then stable-sorts by SortKey descending. Empty keys sort last.
func Merge(groups ...[]models.TimelineEntry) []models.TimelineEntry {
	seen := make(map[string]bool)
	out := []models.TimelineEntry{}
	for _, group := range groups {
		for _, e := range group {
			if seen[e.Text] {
				continue
			}
			seen[e.Text] = true
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortKey > out[j].SortKey
	})
	return out
}
