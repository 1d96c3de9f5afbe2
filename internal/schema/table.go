package schema

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/roach88/rdfsql/internal/endpoint"
	"github.com/roach88/rdfsql/internal/planir"
	"github.com/roach88/rdfsql/internal/probe"
	"github.com/roach88/rdfsql/internal/rdf"
	"github.com/roach88/rdfsql/internal/scalar"
)

// Column is a resolved table column.
type Column struct {
	Name      string
	Predicate string // empty for the subject column
	Type      scalar.Type
}

// Table is one virtual table. Its binding and column types are resolved on
// first use and kept for the table's lifetime; a failed resolution is not
// cached.
type Table struct {
	name      string
	mode      planir.Mode
	predicate string              // property mode
	class     string              // class and mapping modes
	mapping   []planir.ColumnSpec // mapping mode

	ep     endpoint.Endpoint
	prober *probe.Prober
	cfg    Config
	logger *slog.Logger

	mu    sync.RWMutex
	meta  *tableMeta
	group singleflight.Group
}

type tableMeta struct {
	binding planir.Binding
	columns []Column
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Mode returns the table mode.
func (t *Table) Mode() planir.Mode { return t.mode }

// Binding returns the table's binding, discovering class columns if needed.
func (t *Table) Binding(ctx context.Context) (planir.Binding, error) {
	m, err := t.metadata(ctx)
	if err != nil {
		return planir.Binding{}, err
	}
	return m.binding, nil
}

// Columns returns the resolved columns, subject first.
func (t *Table) Columns(ctx context.Context) ([]Column, error) {
	m, err := t.metadata(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Column, len(m.columns))
	copy(out, m.columns)
	return out, nil
}

// Scan returns the leaf operator reading this table.
func (t *Table) Scan(ctx context.Context) (planir.Scan, error) {
	b, err := t.Binding(ctx)
	if err != nil {
		return planir.Scan{}, err
	}
	return planir.Scan{Table: t.name, Binding: b}, nil
}

// RunQuery executes compiled query text and decodes the solutions.
//
// Variables named after a column take that column's type: string columns
// receive the lexical form of whatever term is bound, other columns are
// decoded by datatype. Other variables are decoded by datatype.
func (t *Table) RunQuery(ctx context.Context, query string) (*Rows, error) {
	m, err := t.metadata(ctx)
	if err != nil {
		return nil, err
	}

	cur, err := t.ep.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("run query on %s: %w", t.name, err)
	}
	defer cur.Close()

	vars := cur.Vars()
	types := make([]scalar.Type, len(vars))
	byName := make(map[string]scalar.Type, len(m.columns))
	for _, c := range m.columns {
		byName[c.Name] = c.Type
	}
	typed := make([]bool, len(vars))
	for i, v := range vars {
		types[i], typed[i] = byName[v]
	}

	var data [][]any
	for cur.Next() {
		row := cur.Row()
		vals := make([]any, len(vars))
		for i := range vars {
			var term rdf.Term
			if i < len(row) {
				term = row[i]
			}
			if typed[i] && types[i] == scalar.String {
				vals[i] = scalar.Lexical(term)
				continue
			}
			v, err := scalar.Decode(term)
			if err != nil {
				return nil, fmt.Errorf("run query on %s: column %s: %w", t.name, vars[i], err)
			}
			vals[i] = v
		}
		data = append(data, vals)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("run query on %s: %w", t.name, err)
	}

	return NewRows(vars, types, data), nil
}

func (t *Table) metadata(ctx context.Context) (*tableMeta, error) {
	t.mu.RLock()
	m := t.meta
	t.mu.RUnlock()
	if m != nil {
		return m, nil
	}

	v, err, _ := t.group.Do("meta", func() (interface{}, error) {
		t.mu.RLock()
		cached := t.meta
		t.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		resolved, err := t.resolve(ctx)
		if err != nil {
			return nil, err
		}

		t.mu.Lock()
		t.meta = resolved
		t.mu.Unlock()
		return resolved, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*tableMeta), nil
}

func (t *Table) resolve(ctx context.Context) (*tableMeta, error) {
	var binding planir.Binding
	switch t.mode {
	case planir.ModeProperty:
		binding = planir.PropertyBinding(t.predicate)
	case planir.ModeClass:
		cols, err := t.prober.DiscoverColumnsForClass(ctx, t.class, t.cfg.ColumnLimit)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", t.name, err)
		}
		binding = planir.ClassBinding(planir.ModeClass, t.class, cols)
	case planir.ModeMapping:
		binding = planir.ClassBinding(planir.ModeMapping, t.class, t.mapping)
	default:
		return nil, fmt.Errorf("table %s: unknown mode %v", t.name, t.mode)
	}

	names := binding.ColumnNames()
	columns := make([]Column, len(names))
	columns[0] = Column{Name: names[0], Type: scalar.String}
	for i := 1; i < len(names); i++ {
		pred := binding.ColumnPredicate(i)
		typ, err := t.prober.ColumnType(ctx, pred, t.mode, t.cfg.SampleLimit, t.cfg.DefaultToString)
		if err != nil {
			return nil, fmt.Errorf("table %s: column %s: %w", t.name, names[i], err)
		}
		columns[i] = Column{Name: names[i], Predicate: pred, Type: typ}
	}

	t.logger.Debug("table resolved",
		"table", t.name,
		"mode", t.mode.String(),
		"columns", len(columns))
	return &tableMeta{binding: binding, columns: columns}, nil
}
