package querysparql

import (
	"fmt"

	"github.com/roach88/rdfsql/internal/planir"
)

// Query is a compiled query. Text is deterministic for a given tree.
type Query struct {
	Text     string
	Table    string
	Columns  []string // selected columns, in SELECT order
	Distinct bool
}

// Option configures compilation.
type Option func(*Implementor)

// WithNamedGraphs wraps the pattern block in GRAPH ?_g { ... }.
func WithNamedGraphs(enabled bool) Option {
	return func(im *Implementor) { im.namedGraphs = enabled }
}

// Compile turns an operator tree into query text.
func Compile(node planir.Node, opts ...Option) (Query, error) {
	if node == nil {
		return Query{}, fmt.Errorf("cannot compile nil plan")
	}
	if err := planir.Validate(node); err != nil {
		return Query{}, fmt.Errorf("compile: %w", err)
	}

	im := NewImplementor()
	for _, opt := range opts {
		opt(im)
	}
	if err := im.Visit(node); err != nil {
		return Query{}, fmt.Errorf("compile: %w", err)
	}

	text, err := im.Render()
	if err != nil {
		return Query{}, fmt.Errorf("compile: %w", err)
	}

	return Query{
		Text:     text,
		Table:    im.table,
		Columns:  im.Columns(),
		Distinct: im.Distinct(),
	}, nil
}
