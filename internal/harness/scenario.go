package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/rdfsql/internal/planfile"
)

// Scenario is one conformance scenario.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// Model holds model file settings. endpoint is not allowed.
	Model map[string]any `yaml:"model,omitempty"`

	// Graph is inline N-Quads data.
	Graph string `yaml:"graph,omitempty"`

	// GraphFile is an N-Quads file, relative to the scenario file.
	GraphFile string `yaml:"graph_file,omitempty"`

	// Queries run in order against the same engine.
	Queries []QueryStep `yaml:"queries"`
}

// QueryStep runs one plan.
type QueryStep struct {
	Name   string        `yaml:"name"`
	Plan   planfile.Plan `yaml:"plan"`
	Expect *Expect       `yaml:"expect,omitempty"`
}

// Expect lists the checks for one query. Unset fields are not checked.
type Expect struct {
	Error         string        `yaml:"error,omitempty"`
	QueryContains []string      `yaml:"query_contains,omitempty"`
	Columns       []string      `yaml:"columns,omitempty"`
	Rows          [][]yaml.Node `yaml:"rows,omitempty"`
	RowCount      *int          `yaml:"row_count,omitempty"`
}

// LoadScenario reads and validates a scenario file. A relative graph_file
// is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.GraphFile != "" && !filepath.IsAbs(s.GraphFile) {
		s.GraphFile = filepath.Join(filepath.Dir(path), s.GraphFile)
	}
	return s, nil
}

// ParseScenario decodes and validates scenario YAML. Unknown fields are
// rejected.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if _, ok := s.Model["endpoint"]; ok {
		return fmt.Errorf("model: endpoint is set by the harness")
	}
	if s.Graph != "" && s.GraphFile != "" {
		return fmt.Errorf("graph and graph_file are mutually exclusive")
	}
	if len(s.Queries) == 0 {
		return fmt.Errorf("queries list is required and must be non-empty")
	}

	names := make(map[string]bool, len(s.Queries))
	for i, q := range s.Queries {
		if q.Name == "" {
			return fmt.Errorf("queries[%d]: name is required", i)
		}
		if names[q.Name] {
			return fmt.Errorf("queries[%d]: duplicate name %q", i, q.Name)
		}
		names[q.Name] = true

		if err := q.Plan.Validate(); err != nil {
			return fmt.Errorf("queries[%d].plan: %w", i, err)
		}
		if q.Expect != nil && q.Expect.RowCount != nil && *q.Expect.RowCount < 0 {
			return fmt.Errorf("queries[%d].expect: row_count must be non-negative", i)
		}
	}
	return nil
}
