// ABOUTME: MCP tool handler implementations for the carepath server
// ABOUTME: Tool failures are returned as tool errors, never as protocol errors
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/harper/carepath/internal/journey"
	"github.com/harper/carepath/internal/models"
	"github.com/harper/carepath/internal/router"
)

// PlanRouter produces action plans
type PlanRouter interface {
	RouteWithTrace(ctx context.Context, q models.Query) (models.ActionPlan, models.RouteTrace, error)
}

// JourneyBuilder produces patient journeys
type JourneyBuilder interface {
	Aggregate(ctx context.Context, idOrName string) (models.Journey, error)
}

// SymptomSource produces structured symptoms
type SymptomSource interface {
	Analyze(ctx context.Context, text string) router.SymptomAnalysis
}

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	router   PlanRouter
	journeys JourneyBuilder
	symptoms SymptomSource
	logger   zerolog.Logger
}

// NewHandlers creates handlers; any collaborator may be nil, which disables its tool
func NewHandlers(planRouter PlanRouter, journeys JourneyBuilder, symptoms SymptomSource, logger zerolog.Logger) *Handlers {
	return &Handlers{
		router:   planRouter,
		journeys: journeys,
		symptoms: symptoms,
		logger:   logger.With().Str("component", "mcp").Logger(),
	}
}

// RouteQuery handles the route_query tool
func (h *Handlers) RouteQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := request.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError("prompt argument is required and must be a string"), nil
	}
	if h.router == nil {
		return mcp.NewToolResultError("router is not configured"), nil
	}

	q := models.Query{Text: prompt, UserID: request.GetString("user_id", "")}
	plan, trace, err := h.router.RouteWithTrace(ctx, q)
	if err != nil {
		h.logger.Error().Err(err).Msg("routing failed")
		return mcp.NewToolResultError(fmt.Sprintf("routing failed: %v", err)), nil
	}

	response := map[string]interface{}{"plan": plan}
	if request.GetBool("explain", false) {
		response["trace"] = trace
	}
	return jsonResult(response)
}

// GetPatientJourney handles the get_patient_journey tool
func (h *Handlers) GetPatientJourney(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	patientID, err := request.RequireString("patient_id")
	if err != nil || patientID == "" {
		return mcp.NewToolResultError("patient_id argument is required and must be a string"), nil
	}
	if h.journeys == nil {
		return mcp.NewToolResultError("journey store is not configured"), nil
	}

	j, err := h.journeys.Aggregate(ctx, patientID)
	if errors.Is(err, journey.ErrPatientNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("No patient found with ID/name: %s", patientID)), nil
	}
	if err != nil {
		h.logger.Error().Err(err).Str("patient_id", patientID).Msg("journey failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to build journey: %v", err)), nil
	}

	return jsonResult(j)
}

// ExtractSymptoms handles the extract_symptoms tool
func (h *Handlers) ExtractSymptoms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}
	if h.symptoms == nil {
		return mcp.NewToolResultError("symptom extraction is not configured"), nil
	}

	analysis := h.symptoms.Analyze(ctx, text)
	return jsonResult(map[string]interface{}{
		"symptoms": analysis.Symptoms(),
		"analysis": analysis,
	})
}

// ValidatePlan handles the validate_plan tool
func (h *Handlers) ValidatePlan(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return mcp.NewToolResultError("plan argument is required"), nil
	}
	raw, exists := args["plan"]
	if !exists {
		return mcp.NewToolResultError("plan argument is required"), nil
	}

	// Round-trip through JSON to get the typed plan
	data, err := json.Marshal(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid plan: %v", err)), nil
	}
	var plan models.ActionPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid plan: %v", err)), nil
	}

	response := map[string]interface{}{"valid": true}
	if err := plan.Validate(); err != nil {
		response["valid"] = false
		response["error"] = err.Error()
	}
	return jsonResult(response)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
