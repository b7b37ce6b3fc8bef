// ABOUTME: MCP tool definitions and registration for the carepath server
// ABOUTME: Defines JSON schemas for the routing, journey, symptom and validation tools
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// Tool names
const (
	ToolRouteQuery        = "route_query"
	ToolGetPatientJourney = "get_patient_journey"
	ToolExtractSymptoms   = "extract_symptoms"
	ToolValidatePlan      = "validate_plan"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, planRouter PlanRouter, journeys JourneyBuilder, symptoms SymptomSource, logger zerolog.Logger) *Handlers {
	handlers := NewHandlers(planRouter, journeys, symptoms, logger)

	// 1. route_query - classify a clinical query into an action plan
	server.AddTool(mcp.Tool{
		Name:        ToolRouteQuery,
		Description: "Classify a free-text clinical query and return the action plan naming the agents and actions that should handle it. Out-of-scope queries return an empty plan with out_of_scope=true.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"prompt": map[string]interface{}{
					"type":        "string",
					"description": "The user's query",
				},
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "Optional known patient identifier used when the query names none",
				},
				"explain": map[string]interface{}{
					"type":        "boolean",
					"description": "Include the stages the router ran (default: false)",
					"default":     false,
				},
			},
			Required: []string{"prompt"},
		},
	}, handlers.RouteQuery)

	// 2. get_patient_journey - date-ordered narrative for one patient
	server.AddTool(mcp.Tool{
		Name:        ToolGetPatientJourney,
		Description: "Get a patient's journey: diagnoses, appointments, medications, treatments and tests as one narrative, newest first.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"patient_id": map[string]interface{}{
					"type":        "string",
					"description": "Patient ID or full name (case-insensitive)",
				},
			},
			Required: []string{"patient_id"},
		},
	}, handlers.GetPatientJourney)

	// 3. extract_symptoms - structured symptoms from free text
	server.AddTool(mcp.Tool{
		Name:        ToolExtractSymptoms,
		Description: "Extract explicit and implicit symptoms, durations and severity from a free-text description.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Symptom description",
				},
			},
			Required: []string{"text"},
		},
	}, handlers.ExtractSymptoms)

	// 4. validate_plan - check an action plan against the agent/action whitelist
	server.AddTool(mcp.Tool{
		Name:        ToolValidatePlan,
		Description: "Validate an action plan: every action must be allowed for its agent and reference only listed agents.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"plan": map[string]interface{}{
					"type":        "object",
					"description": "Action plan as returned by route_query",
				},
			},
			Required: []string{"plan"},
		},
	}, handlers.ValidatePlan)

	return handlers
}
