// ABOUTME: Oracle abstraction over language-model completion backends
// ABOUTME: Lenient JSON extraction shared by every classifier that reads oracle output
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is returned when a response contains no {...} span
var ErrNoJSON = errors.New("llm: no JSON object in response")

// Oracle completes a prompt with free text.
// Implementations must honor ctx cancellation and deadlines.
type Oracle interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// OracleFunc adapts a plain function to the Oracle interface
type OracleFunc func(ctx context.Context, prompt string) (string, error)

// Complete calls f
func (f OracleFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Name identifies the adapter
func (f OracleFunc) Name() string { return "func" }

// ExtractJSON returns the substring from the first '{' to the last '}'.
// Models often wrap the object in prose or code fences; this tolerates both.
func ExtractJSON(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "", ErrNoJSON
	}
	return raw[start : end+1], nil
}

// DecodeJSON extracts the JSON span from raw and unmarshals it into v
func DecodeJSON(raw string, v any) error {
	span, err := ExtractJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(span), v); err != nil {
		return fmt.Errorf("llm: failed to parse JSON: %w", err)
	}
	return nil
}
