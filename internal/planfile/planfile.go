// Package planfile reads operator trees written as YAML.
//
// A plan names a table and lists operators from the scan upward:
//
//	table: age
//	ops:
//	  - filter: {column: o, ranges: [{lower: 30, upper: 41}]}
//	  - sort: [{column: s, direction: desc}]
//	  - limit: {fetch: 1}
//
// Columns are referenced by name and resolved against the output of the
// operator below. Literal operands are typed by the column they compare.
package planfile

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Plan is a parsed plan file.
type Plan struct {
	Table string `yaml:"table"`
	Ops   []Op   `yaml:"ops"`
}

// Op is one operator. Exactly one field is set.
type Op struct {
	Filter  *PredicateSpec `yaml:"filter,omitempty"`
	Project []string       `yaml:"project,omitempty"`
	Sort    []SortSpec     `yaml:"sort,omitempty"`
	Limit   *LimitSpec     `yaml:"limit,omitempty"`
}

// PredicateSpec is a filter condition. A leaf sets Column with either Op
// and Value (comparison) or Ranges (search); compounds set And, Or or Not.
type PredicateSpec struct {
	Column string          `yaml:"column,omitempty"`
	Op     string          `yaml:"op,omitempty"`
	Value  yaml.Node       `yaml:"value,omitempty"`
	Ranges []RangeSpec     `yaml:"ranges,omitempty"`
	And    []PredicateSpec `yaml:"and,omitempty"`
	Or     []PredicateSpec `yaml:"or,omitempty"`
	Not    *PredicateSpec  `yaml:"not,omitempty"`
}

// RangeSpec is one search interval. Point is shorthand for lower = upper.
type RangeSpec struct {
	Point yaml.Node `yaml:"point,omitempty"`
	Lower yaml.Node `yaml:"lower,omitempty"`
	Upper yaml.Node `yaml:"upper,omitempty"`
}

// SortSpec is one sort key. Direction is asc (default) or desc.
type SortSpec struct {
	Column    string `yaml:"column"`
	Direction string `yaml:"direction,omitempty"`
}

// LimitSpec is a fetch/offset window. A zero fetch with a non-zero offset
// skips rows without limiting them.
type LimitSpec struct {
	Fetch  int64 `yaml:"fetch"`
	Offset int64 `yaml:"offset,omitempty"`
}

// Load reads a plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}
	return Parse(data)
}

// Parse decodes plan YAML. Unknown fields are rejected.
func Parse(data []byte) (*Plan, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Plan
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("parsing plan: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("parsing plan: %w", err)
	}
	return &p, nil
}

// Validate checks that the plan names a table and that every op sets
// exactly one operator.
func (p *Plan) Validate() error {
	if p.Table == "" {
		return fmt.Errorf("table is required")
	}
	for i, op := range p.Ops {
		if n := op.count(); n != 1 {
			return fmt.Errorf("op %d: expected exactly one operator, got %d", i, n)
		}
	}
	return nil
}

func (op Op) count() int {
	n := 0
	if op.Filter != nil {
		n++
	}
	if op.Project != nil {
		n++
	}
	if op.Sort != nil {
		n++
	}
	if op.Limit != nil {
		n++
	}
	return n
}

// Kind names the operator.
func (op Op) Kind() string {
	switch {
	case op.Filter != nil:
		return "filter"
	case op.Project != nil:
		return "project"
	case op.Sort != nil:
		return "sort"
	case op.Limit != nil:
		return "limit"
	default:
		return "empty"
	}
}
