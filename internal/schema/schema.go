package schema

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/roach88/rdfsql/internal/endpoint"
	"github.com/roach88/rdfsql/internal/planir"
	"github.com/roach88/rdfsql/internal/probe"
)

// ErrTableNotFound is returned for an unknown table name.
var ErrTableNotFound = errors.New("table not found")

// Config controls table enumeration and type probing.
type Config struct {
	Mode            planir.Mode
	NamedGraphs     bool
	SampleLimit     int  // distinct objects sampled per column
	ColumnLimit     int  // properties discovered per class
	DefaultToString bool // unrecognized datatypes become string columns
	Tables          []TableMapping
}

// TableMapping declares one mapping-mode table.
type TableMapping struct {
	Name    string
	Class   string
	Columns []planir.ColumnSpec
}

// Option configures a Schema.
type Option func(*Schema)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Schema) { s.logger = l }
}

// Schema is the set of tables served by one endpoint. The endpoint is
// owned by the schema and released by Close.
type Schema struct {
	ep     endpoint.Endpoint
	cfg    Config
	prober *probe.Prober
	logger *slog.Logger

	mu     sync.RWMutex
	tables map[string]*Table
	group  singleflight.Group
}

// New creates a schema over ep. Tables are enumerated on first use.
func New(ep endpoint.Endpoint, cfg Config, opts ...Option) *Schema {
	if cfg.SampleLimit <= 0 {
		cfg.SampleLimit = probe.DefaultSampleLimit
	}
	if cfg.ColumnLimit <= 0 {
		cfg.ColumnLimit = probe.DefaultColumnLimit
	}

	s := &Schema{ep: ep, cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.prober = probe.New(ep, probe.WithNamedGraphs(cfg.NamedGraphs), probe.WithLogger(s.logger))
	return s
}

// Endpoint returns the endpoint the schema queries.
func (s *Schema) Endpoint() endpoint.Endpoint { return s.ep }

// Prober returns the schema's prober.
func (s *Schema) Prober() *probe.Prober { return s.prober }

// Config returns the schema configuration with defaults applied.
func (s *Schema) Config() Config { return s.cfg }

// Tables returns every table keyed by name. The map is a copy; changing it
// does not affect the schema.
func (s *Schema) Tables(ctx context.Context) (map[string]*Table, error) {
	tables, err := s.cachedTables(ctx)
	if err != nil {
		return nil, err
	}
	return maps.Clone(tables), nil
}

// cachedTables returns the memoized table map. Callers must not modify it.
func (s *Schema) cachedTables(ctx context.Context) (map[string]*Table, error) {
	s.mu.RLock()
	tables := s.tables
	s.mu.RUnlock()
	if tables != nil {
		return tables, nil
	}

	v, err, _ := s.group.Do("tables", func() (interface{}, error) {
		s.mu.RLock()
		cached := s.tables
		s.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		built, err := s.enumerate(ctx)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.tables = built
		s.mu.Unlock()
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]*Table), nil
}

// TableNames returns the sorted table names.
func (s *Schema) TableNames(ctx context.Context) ([]string, error) {
	tables, err := s.cachedTables(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Table looks up one table.
func (s *Schema) Table(ctx context.Context, name string) (*Table, error) {
	tables, err := s.cachedTables(ctx)
	if err != nil {
		return nil, err
	}
	t, ok := tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return t, nil
}

// Close closes the endpoint.
func (s *Schema) Close() error {
	return s.ep.Close()
}

func (s *Schema) enumerate(ctx context.Context) (map[string]*Table, error) {
	tables := make(map[string]*Table)

	switch s.cfg.Mode {
	case planir.ModeProperty:
		props, err := s.prober.DiscoverProperties(ctx)
		if err != nil {
			return nil, fmt.Errorf("enumerate tables: %w", err)
		}
		for name, iri := range props {
			t := s.newTable(name, planir.ModeProperty)
			t.predicate = iri
			tables[name] = t
		}

	case planir.ModeClass:
		classes, err := s.prober.DiscoverClasses(ctx)
		if err != nil {
			return nil, fmt.Errorf("enumerate tables: %w", err)
		}
		for name, iri := range classes {
			t := s.newTable(name, planir.ModeClass)
			t.class = iri
			tables[name] = t
		}

	case planir.ModeMapping:
		for _, m := range s.cfg.Tables {
			if _, dup := tables[m.Name]; dup {
				return nil, fmt.Errorf("enumerate tables: duplicate table %q", m.Name)
			}
			t := s.newTable(m.Name, planir.ModeMapping)
			t.class = m.Class
			t.mapping = append([]planir.ColumnSpec(nil), m.Columns...)
			tables[m.Name] = t
		}

	default:
		return nil, fmt.Errorf("enumerate tables: unsupported table mode %v", s.cfg.Mode)
	}

	s.logger.Info("schema tables enumerated",
		"mode", s.cfg.Mode.String(),
		"tables", len(tables))
	return tables, nil
}

func (s *Schema) newTable(name string, mode planir.Mode) *Table {
	return &Table{
		name:   name,
		mode:   mode,
		ep:     s.ep,
		prober: s.prober,
		cfg:    s.cfg,
		logger: s.logger,
	}
}
