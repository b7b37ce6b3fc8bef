// ABOUTME: HTTP surface for query routing and patient journeys
// ABOUTME: Mirrors the MCP tools as JSON endpoints on an echo server
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/harper/carepath/internal/journey"
	"github.com/harper/carepath/internal/models"
)

// PlanRouter produces action plans and the trace of how they were reached
type PlanRouter interface {
	RouteWithTrace(ctx context.Context, q models.Query) (models.ActionPlan, models.RouteTrace, error)
}

// ExplainedPlan is the body of POST /route?explain=true
type ExplainedPlan struct {
	Plan  models.ActionPlan `json:"plan"`
	Trace models.RouteTrace `json:"trace"`
}

// JourneyBuilder produces patient journeys
type JourneyBuilder interface {
	Aggregate(ctx context.Context, idOrName string) (models.Journey, error)
}

// JourneyRequest is the body of POST /patient_journey
type JourneyRequest struct {
	Prompt    string   `json:"prompt,omitempty"`
	PatientID string   `json:"patient_id"`
	Symptoms  []string `json:"symptoms,omitempty"`
}

// JourneyResult is the success payload of POST /patient_journey
type JourneyResult struct {
	JourneySteps []string `json:"journey_steps"`
	Confidence   float64  `json:"confidence"`
	PatientName  string   `json:"patient_name,omitempty"`
}

// JourneyResponse carries either a result or an error
type JourneyResponse struct {
	Result *JourneyResult `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// Server holds the handlers' collaborators
type Server struct {
	router   PlanRouter
	journeys JourneyBuilder
	logger   zerolog.Logger
}

// New builds the echo instance with middleware and routes
func New(planRouter PlanRouter, journeys JourneyBuilder, logger zerolog.Logger) *echo.Echo {
	s := &Server{router: planRouter, journeys: journeys, logger: logger}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(Recovery(logger))
	e.Use(RequestID())
	e.Use(Logger(logger))

	e.GET("/healthz", s.health)
	e.POST("/route", s.route)
	e.POST("/patient_journey", s.patientJourney)
	return e
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) route(c echo.Context) error {
	var q models.Query
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	plan, trace, err := s.router.RouteWithTrace(c.Request().Context(), q)
	switch {
	case errors.Is(err, models.ErrInvalidPlan):
		s.logger.Error().Err(err).Msg("routing produced an invalid plan")
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "routing failed"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "request cancelled"})
	case err != nil:
		s.logger.Error().Err(err).Msg("routing failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "routing failed"})
	}

	if c.QueryParam("explain") == "true" {
		return c.JSON(http.StatusOK, ExplainedPlan{Plan: plan, Trace: trace})
	}
	return c.JSON(http.StatusOK, plan)
}

func (s *Server) patientJourney(c echo.Context) error {
	var req JourneyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, JourneyResponse{Error: "invalid request body"})
	}
	if req.PatientID == "" {
		return c.JSON(http.StatusBadRequest, JourneyResponse{Error: "patient_id is required"})
	}

	j, err := s.journeys.Aggregate(c.Request().Context(), req.PatientID)
	switch {
	case errors.Is(err, journey.ErrPatientNotFound):
		return c.JSON(http.StatusNotFound, JourneyResponse{Error: "No patient found with ID/name: " + req.PatientID})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusServiceUnavailable, JourneyResponse{Error: "request cancelled"})
	case err != nil:
		s.logger.Error().Err(err).Str("patient_id", req.PatientID).Msg("journey failed")
		return c.JSON(http.StatusInternalServerError, JourneyResponse{Error: "failed to build journey"})
	}

	return c.JSON(http.StatusOK, JourneyResponse{Result: &JourneyResult{
		JourneySteps: j.Steps,
		Confidence:   1.0,
		PatientName:  j.PatientName,
	}})
}

// Shutdown gracefully stops e within timeout
func Shutdown(e *echo.Echo, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return e.Shutdown(ctx)
}
