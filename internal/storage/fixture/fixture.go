// ABOUTME: YAML fixture format for seeding the patient record graph
// ABOUTME: Embeds a demo graph used by the seed command and store tests
package fixture

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed demo.yaml
var demoYAML []byte

// Node is one labeled vertex
type Node struct {
	ID    string         `yaml:"id"`
	Label string         `yaml:"label"`
	Props map[string]any `yaml:"props"`
}

// Edge is one typed, directed relationship
type Edge struct {
	From  string         `yaml:"from"`
	To    string         `yaml:"to"`
	Type  string         `yaml:"type"`
	Props map[string]any `yaml:"props"`
}

// Fixture is a whole graph
type Fixture struct {
	Nodes []Node `yaml:"nodes"`
	Edges []Edge `yaml:"edges"`
}

// Labels and relationship types are spliced into Cypher, so keep them to identifiers
var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Demo returns the embedded demo graph
func Demo() *Fixture {
	fx, err := Parse(demoYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded demo fixture is invalid: %v", err))
	}
	return fx
}

// Load reads and validates a fixture file
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates fixture YAML
func Parse(data []byte) (*Fixture, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	if err := fx.Validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

// Validate checks ids are unique, labels and types are identifiers, and edges point at known nodes
func (fx *Fixture) Validate() error {
	ids := make(map[string]bool, len(fx.Nodes))
	for i, n := range fx.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node %d: id is required", i)
		}
		if ids[n.ID] {
			return fmt.Errorf("node %q: duplicate id", n.ID)
		}
		if !identifier.MatchString(n.Label) {
			return fmt.Errorf("node %q: invalid label %q", n.ID, n.Label)
		}
		ids[n.ID] = true
	}
	for i, e := range fx.Edges {
		if !identifier.MatchString(e.Type) {
			return fmt.Errorf("edge %d: invalid type %q", i, e.Type)
		}
		if !ids[e.From] || !ids[e.To] {
			return fmt.Errorf("edge %d (%s): unknown endpoint %q -> %q", i, e.Type, e.From, e.To)
		}
	}
	return nil
}

// PropsOrEmpty never returns nil so callers can marshal "{}"
func PropsOrEmpty(p map[string]any) map[string]any {
	if p == nil {
		return map[string]any{}
	}
	return p
}
