// ABOUTME: Oracle backend selection by name
// ABOUTME: Keeps CLI, MCP and HTTP surfaces agnostic of the concrete client
package llm

import (
	"context"
	"fmt"
)

// Backend names accepted by NewOracle
const (
	BackendOpenAI = "openai"
	BackendGemini = "gemini"
)

// NewOracle builds the named oracle backend
func NewOracle(ctx context.Context, backend string, config *ClientConfig) (Oracle, error) {
	switch backend {
	case BackendOpenAI, "":
		return NewOpenAIClientWithConfig(config)
	case BackendGemini:
		return NewGeminiClient(ctx, config)
	default:
		return nil, fmt.Errorf("unknown oracle backend %q", backend)
	}
}
