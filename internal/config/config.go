// Package config loads and validates rdfsql model files.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/rdfsql/internal/planir"
	"github.com/roach88/rdfsql/internal/schema"
)

//go:embed schema.cue
var schemaCUE string

// Model is a validated model file.
type Model struct {
	Endpoint        string  `json:"endpoint" yaml:"endpoint"`
	TableMode       string  `json:"table_mode" yaml:"table_mode"`
	NamedGraphs     bool    `json:"named_graphs" yaml:"named_graphs"`
	ProbeLimit      int     `json:"probe_limit" yaml:"probe_limit"`
	ColumnLimit     int     `json:"column_limit" yaml:"column_limit"`
	DefaultToString bool    `json:"default_to_string" yaml:"default_to_string"`
	Timeout         string  `json:"timeout" yaml:"timeout"`
	RetryMax        int     `json:"retry_max" yaml:"retry_max"`
	Tables          []Table `json:"tables,omitempty" yaml:"tables,omitempty"`
}

// Table declares a mapping-mode table.
type Table struct {
	Name    string   `json:"name" yaml:"name"`
	Class   string   `json:"class" yaml:"class"`
	Columns []Column `json:"columns" yaml:"columns"`
}

// Column maps a column name to a predicate IRI.
type Column struct {
	Name     string `json:"name" yaml:"name"`
	Property string `json:"property" yaml:"property"`
}

// Default returns a model for endpoint with every default applied.
func Default(endpoint string) Model {
	return Model{
		Endpoint:        endpoint,
		TableMode:       "property",
		ProbeLimit:      10,
		ColumnLimit:     25,
		DefaultToString: true,
		Timeout:         "30s",
		RetryMax:        3,
	}
}

// Load reads a model file. The format follows the extension: .yaml, .yml
// and .json are read as YAML, .cue is compiled as CUE.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRead, Message: fmt.Sprintf("reading model: %v", err)}
	}
	return Parse(path, data)
}

// Parse validates model source. name selects the format by extension and
// labels positions in errors.
func Parse(name string, data []byte) (*Model, error) {
	ctx := cuecontext.New()

	var value cue.Value
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".cue":
		value = ctx.CompileBytes(data, cue.Filename(name))
		if err := value.Err(); err != nil {
			return nil, formatCUEError(ErrCodeParse, err)
		}
	case ".yaml", ".yml", ".json":
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, &LoadError{Code: ErrCodeParse, Message: fmt.Sprintf("%s: %v", name, err)}
		}
		if raw == nil {
			raw = map[string]any{}
		}
		value = ctx.Encode(raw)
		if err := value.Err(); err != nil {
			return nil, formatCUEError(ErrCodeParse, err)
		}
	default:
		return nil, &LoadError{Code: ErrCodeFormat, Message: fmt.Sprintf("unsupported model format %q", ext)}
	}

	def := ctx.CompileString(schemaCUE, cue.Filename("schema.cue")).LookupPath(cue.ParsePath("#Model"))
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("compiling model schema: %w", err)
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(ErrCodeSchema, err)
	}

	var m Model
	if err := unified.Decode(&m); err != nil {
		return nil, formatCUEError(ErrCodeSchema, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks rules #Model cannot express.
func (m Model) Validate() error {
	mode, err := planir.ParseMode(m.TableMode)
	if err != nil {
		return &LoadError{Code: ErrCodeInvalid, Message: err.Error()}
	}
	if _, err := m.TimeoutDuration(); err != nil {
		return &LoadError{Code: ErrCodeInvalid, Message: err.Error()}
	}
	if mode == planir.ModeMapping && len(m.Tables) == 0 {
		return &LoadError{Code: ErrCodeInvalid, Message: "mapping mode requires at least one table"}
	}

	seen := make(map[string]bool, len(m.Tables))
	for _, t := range m.Tables {
		if seen[t.Name] {
			return &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("duplicate table %q", t.Name)}
		}
		seen[t.Name] = true

		cols := make(map[string]bool, len(t.Columns))
		for _, c := range t.Columns {
			if cols[c.Name] {
				return &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("table %s: duplicate column %q", t.Name, c.Name)}
			}
			cols[c.Name] = true
		}
	}
	return nil
}

// TimeoutDuration parses Timeout. An empty timeout means no limit.
func (m Model) TimeoutDuration() (time.Duration, error) {
	if m.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(m.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", m.Timeout, err)
	}
	return d, nil
}

// SchemaConfig converts the model into a schema configuration.
func (m Model) SchemaConfig() (schema.Config, error) {
	mode, err := planir.ParseMode(m.TableMode)
	if err != nil {
		return schema.Config{}, err
	}

	cfg := schema.Config{
		Mode:            mode,
		NamedGraphs:     m.NamedGraphs,
		SampleLimit:     m.ProbeLimit,
		ColumnLimit:     m.ColumnLimit,
		DefaultToString: m.DefaultToString,
	}
	for _, t := range m.Tables {
		tm := schema.TableMapping{Name: t.Name, Class: t.Class}
		for _, c := range t.Columns {
			tm.Columns = append(tm.Columns, planir.ColumnSpec{Name: c.Name, Predicate: c.Property})
		}
		cfg.Tables = append(cfg.Tables, tm)
	}
	return cfg, nil
}

// formatCUEError keeps the first error's position and the full detail text.
func formatCUEError(code string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}

	le := &LoadError{
		Code:    code,
		Message: strings.TrimSpace(cueerrors.Details(err, nil)),
	}
	if positions := cueerrors.Positions(errs[0]); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
