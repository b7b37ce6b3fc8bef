// ABOUTME: Tests for MCP tool handlers
// ABOUTME: Wires a scripted oracle and the seeded SQLite demo graph behind the tools
package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/carepath/internal/journey"
	"github.com/harper/carepath/internal/llm"
	"github.com/harper/carepath/internal/models"
	"github.com/harper/carepath/internal/router"
	"github.com/harper/carepath/internal/storage/fixture"
	"github.com/harper/carepath/internal/storage/sqlite"
)

// scriptedOracle answers by recognizing which classifier prompt it was sent
var scriptedOracle = llm.OracleFunc(func(_ context.Context, prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "is_health_related"):
		return `{"is_health_related": true}`, nil
	case strings.Contains(prompt, "can_handle"):
		return `{"can_handle": true, "reason": "symptoms"}`, nil
	case strings.Contains(prompt, "explicit_symptoms"):
		return `{"explicit_symptoms": ["headache"], "implicit_symptoms": ["fever"], "duration_mentions": ["2 days"]}`, nil
	default:
		return `{"intent": "medical_diagnosis"}`, nil
	}
})

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	store, err := sqlite.NewStorageInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Seed(context.Background(), fixture.Demo()))

	return NewHandlers(
		router.New(scriptedOracle, router.Options{OracleTimeout: time.Second}),
		journey.New(store, zerolog.Nop()),
		router.NewSymptomExtractor(scriptedOracle, time.Second, zerolog.Nop()),
		zerolog.Nop(),
	)
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func TestRouteQuery(t *testing.T) {
	h := newTestHandlers(t)

	res, err := h.RouteQuery(context.Background(), callRequest(ToolRouteQuery, map[string]any{
		"prompt":  "show medication history for pat2",
		"explain": true,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var out struct {
		Plan  models.ActionPlan `json:"plan"`
		Trace models.RouteTrace `json:"trace"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, models.WorkflowPatientJourney, out.Plan.Workflow)
	assert.Equal(t, "pat2", out.Plan.Actions[0].Params["patient_id"])
	assert.True(t, out.Trace.FastPath)
}

func TestRouteQuery_MissingPrompt(t *testing.T) {
	h := newTestHandlers(t)

	res, err := h.RouteQuery(context.Background(), callRequest(ToolRouteQuery, map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestGetPatientJourney(t *testing.T) {
	h := newTestHandlers(t)

	res, err := h.GetPatientJourney(context.Background(), callRequest(ToolGetPatientJourney, map[string]any{
		"patient_id": "john doe",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var j models.Journey
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &j))
	assert.Equal(t, "John Doe", j.PatientName)
	assert.Len(t, j.Steps, 5)
}

func TestGetPatientJourney_NotFound(t *testing.T) {
	h := newTestHandlers(t)

	res, err := h.GetPatientJourney(context.Background(), callRequest(ToolGetPatientJourney, map[string]any{
		"patient_id": "pat404",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "No patient found with ID/name: pat404")
}

func TestExtractSymptoms(t *testing.T) {
	h := newTestHandlers(t)

	res, err := h.ExtractSymptoms(context.Background(), callRequest(ToolExtractSymptoms, map[string]any{
		"text": "my head hurts and I feel hot since Monday",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var out struct {
		Symptoms []string `json:"symptoms"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, []string{"headache", "fever"}, out.Symptoms)
}

func TestValidatePlan(t *testing.T) {
	h := newTestHandlers(t)

	tests := []struct {
		name  string
		plan  map[string]any
		valid bool
	}{
		{
			"journey plan",
			map[string]any{
				"agents":   []any{"patient_journey"},
				"workflow": "patient_journey_tracking",
				"actions":  []any{map[string]any{"agent": "patient_journey", "action": "get_journey", "params": map[string]any{"patient_id": "pat1"}}},
			},
			true,
		},
		{
			"action outside whitelist",
			map[string]any{
				"agents":   []any{"patient_journey"},
				"workflow": "patient_journey_tracking",
				"actions":  []any{map[string]any{"agent": "patient_journey", "action": "predict_disease"}},
			},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h.ValidatePlan(context.Background(), callRequest(ToolValidatePlan, map[string]any{"plan": tt.plan}))
			require.NoError(t, err)
			require.False(t, res.IsError)

			var out struct {
				Valid bool `json:"valid"`
			}
			require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
			assert.Equal(t, tt.valid, out.Valid)
		})
	}
}

func TestRegisterTools(t *testing.T) {
	server := mcpserver.NewMCPServer("carepath-test", "0.0.0", mcpserver.WithToolCapabilities(false))
	h := RegisterTools(server, nil, nil, nil, zerolog.Nop())
	require.NotNil(t, h)

	res, err := h.GetPatientJourney(context.Background(), callRequest(ToolGetPatientJourney, map[string]any{"patient_id": "pat1"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
