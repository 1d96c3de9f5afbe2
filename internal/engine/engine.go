package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/rdfsql/internal/planfile"
	"github.com/roach88/rdfsql/internal/planir"
	"github.com/roach88/rdfsql/internal/probe"
	"github.com/roach88/rdfsql/internal/querysparql"
	"github.com/roach88/rdfsql/internal/scalar"
	"github.com/roach88/rdfsql/internal/schema"
)

// Engine compiles operator trees and runs them against a schema.
//
// Thread-safety: Execute and Compile are safe for concurrent use; table
// metadata is memoized inside the schema.
type Engine struct {
	schema *schema.Schema
	ids    QueryIDGenerator
	logger *slog.Logger
}

// Result is one executed plan.
type Result struct {
	QueryID string
	Query   querysparql.Query
	Rows    *schema.Rows
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithIDGenerator sets the query id source. Defaults to UUIDv7Generator.
func WithIDGenerator(g QueryIDGenerator) Option {
	return func(e *Engine) {
		if g != nil {
			e.ids = g
		}
	}
}

// New creates an engine over s. The engine takes ownership of s.
func New(s *schema.Schema, opts ...Option) *Engine {
	e := &Engine{
		schema: s,
		ids:    UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Schema returns the engine's schema.
func (e *Engine) Schema() *schema.Schema {
	return e.schema
}

// Close releases the schema's endpoint.
func (e *Engine) Close() error {
	return e.schema.Close()
}

// Scan returns the leaf operator for a table.
func (e *Engine) Scan(ctx context.Context, table string) (planir.Scan, error) {
	t, err := e.schema.Table(ctx, table)
	if err != nil {
		return planir.Scan{}, err
	}
	return t.Scan(ctx)
}

// Build resolves a plan file's table and stacks its operators on the
// table's scan. Operand literals are typed by the resolved columns.
func (e *Engine) Build(ctx context.Context, p *planfile.Plan) (planir.Node, error) {
	t, err := e.schema.Table(ctx, p.Table)
	if err != nil {
		return nil, lookupError("", p.Table, err)
	}
	scan, err := t.Scan(ctx)
	if err != nil {
		return nil, &QueryError{Code: classifyRunError(err), Table: p.Table, Err: err}
	}
	cols, err := t.Columns(ctx)
	if err != nil {
		return nil, &QueryError{Code: classifyRunError(err), Table: p.Table, Err: err}
	}
	node, err := planfile.Build(p, scan, cols)
	if err != nil {
		return nil, &QueryError{Code: ErrCodeInvalidPlan, Table: p.Table, Err: err}
	}
	return node, nil
}

// Compile renders node as query text using the schema's graph settings.
func (e *Engine) Compile(node planir.Node) (querysparql.Query, error) {
	return querysparql.Compile(node, querysparql.WithNamedGraphs(e.schema.Config().NamedGraphs))
}

// Execute compiles node, sends it to the endpoint and decodes the rows.
func (e *Engine) Execute(ctx context.Context, node planir.Node) (*Result, error) {
	id := e.ids.Generate()
	start := time.Now()

	q, err := e.Compile(node)
	if err != nil {
		code := ErrCodeInvalidPlan
		if querysparql.IsUnsupported(err) {
			code = ErrCodeUnsupported
		}
		e.logger.Warn("plan rejected",
			"query_id", id,
			"code", string(code),
			"error", err)
		return nil, &QueryError{Code: code, QueryID: id, Err: err}
	}

	e.logger.Debug("query compiled",
		"query_id", id,
		"table", q.Table,
		"columns", q.Columns,
		"sparql", q.Text)

	table, err := e.schema.Table(ctx, q.Table)
	if err != nil {
		return nil, lookupError(id, q.Table, err)
	}

	rows, err := table.RunQuery(ctx, q.Text)
	if err != nil {
		code := classifyRunError(err)
		e.logger.Error("query failed",
			"query_id", id,
			"table", q.Table,
			"code", string(code),
			"error", err)
		return nil, &QueryError{Code: code, QueryID: id, Table: q.Table, Err: err}
	}

	e.logger.Info("query executed",
		"query_id", id,
		"table", q.Table,
		"rows", rows.Len(),
		"duration", time.Since(start))

	return &Result{QueryID: id, Query: q, Rows: rows}, nil
}

func lookupError(id, table string, err error) *QueryError {
	code := ErrCodeEndpoint
	if errors.Is(err, schema.ErrTableNotFound) {
		code = ErrCodeTableNotFound
	}
	return &QueryError{Code: code, QueryID: id, Table: table, Err: err}
}

func classifyRunError(err error) QueryErrorCode {
	switch {
	case scalar.IsDecodeError(err):
		return ErrCodeDecode
	case probe.IsAmbiguousType(err), scalar.IsUnsupportedDatatype(err):
		return ErrCodeSchema
	default:
		return ErrCodeEndpoint
	}
}

// Describe returns a table's resolved columns.
func (e *Engine) Describe(ctx context.Context, table string) ([]schema.Column, error) {
	t, err := e.schema.Table(ctx, table)
	if err != nil {
		return nil, err
	}
	cols, err := t.Columns(ctx)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}
	return cols, nil
}
