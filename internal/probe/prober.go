package probe

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/roach88/rdfsql/internal/endpoint"
	"github.com/roach88/rdfsql/internal/planir"
	"github.com/roach88/rdfsql/internal/rdf"
	"github.com/roach88/rdfsql/internal/scalar"
)

// DefaultSampleLimit is the number of distinct objects sampled per predicate.
const DefaultSampleLimit = 10

// DefaultColumnLimit caps the number of columns discovered for a class.
const DefaultColumnLimit = 25

// Prober issues discovery queries against one endpoint.
// A Prober holds no mutable state and is safe for concurrent use.
type Prober struct {
	ep          endpoint.Endpoint
	namedGraphs bool
	logger      *slog.Logger
}

// Option configures a Prober.
type Option func(*Prober)

// WithNamedGraphs wraps every pattern in GRAPH ?_g { ... } so only data in
// named graphs is seen.
func WithNamedGraphs(enabled bool) Option {
	return func(p *Prober) { p.namedGraphs = enabled }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Prober) { p.logger = l }
}

// New creates a Prober over ep.
func New(ep endpoint.Endpoint, opts ...Option) *Prober {
	p := &Prober{ep: ep, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DiscoverProperties returns every predicate other than rdf:type, keyed by
// table name. Names are made unique in IRI order.
func (p *Prober) DiscoverProperties(ctx context.Context) (map[string]string, error) {
	iris, err := p.selectIRIs(ctx, p.propertiesQuery())
	if err != nil {
		return nil, fmt.Errorf("discover properties: %w", err)
	}
	return nameByLocal(iris), nil
}

// DiscoverClasses returns every rdf:type object, keyed by table name.
func (p *Prober) DiscoverClasses(ctx context.Context) (map[string]string, error) {
	iris, err := p.selectIRIs(ctx, p.classesQuery())
	if err != nil {
		return nil, fmt.Errorf("discover classes: %w", err)
	}
	return nameByLocal(iris), nil
}

// ProbeObjectTypes samples up to limit distinct objects of predicate and
// returns their datatypes.
func (p *Prober) ProbeObjectTypes(ctx context.Context, predicate string, limit int) (TypeSet, error) {
	if !rdf.ValidIRI(predicate) {
		return TypeSet{}, fmt.Errorf("probe object types: invalid predicate IRI %q", predicate)
	}
	if limit <= 0 {
		limit = DefaultSampleLimit
	}

	cur, err := p.ep.Query(ctx, p.objectsQuery(predicate, limit))
	if err != nil {
		return TypeSet{}, fmt.Errorf("probe object types of %s: %w", predicate, err)
	}
	rows, err := endpoint.Collect(cur)
	if err != nil {
		return TypeSet{}, fmt.Errorf("probe object types of %s: %w", predicate, err)
	}

	set := NewTypeSet(predicate)
	for _, row := range rows {
		if len(row) == 0 || row[0] == nil {
			continue
		}
		if lit, ok := row[0].(rdf.Literal); ok {
			set.Add(lit.DatatypeIRI())
		} else {
			set.Add(NonLiteral)
		}
	}

	p.logger.Debug("probed object types",
		"predicate", predicate,
		"sampled", len(rows),
		"datatypes", set.Datatypes())
	return set, nil
}

// DiscoverColumnsForClass returns up to limit property columns used by
// instances of class, in IRI order, named by ColumnName and made unique.
func (p *Prober) DiscoverColumnsForClass(ctx context.Context, class string, limit int) ([]planir.ColumnSpec, error) {
	if !rdf.ValidIRI(class) {
		return nil, fmt.Errorf("discover columns: invalid class IRI %q", class)
	}
	if limit <= 0 {
		limit = DefaultColumnLimit
	}

	iris, err := p.selectIRIs(ctx, p.classPropertiesQuery(class, limit))
	if err != nil {
		return nil, fmt.Errorf("discover columns for %s: %w", class, err)
	}
	return UniqueColumns(iris), nil
}

// ColumnType probes a predicate and resolves its column type.
func (p *Prober) ColumnType(ctx context.Context, predicate string, mode planir.Mode, limit int, defaultToString bool) (scalar.Type, error) {
	set, err := p.ProbeObjectTypes(ctx, predicate, limit)
	if err != nil {
		return scalar.String, err
	}
	return ResolveType(set, mode, defaultToString)
}

// selectIRIs runs a single-variable query and keeps the IRI solutions.
func (p *Prober) selectIRIs(ctx context.Context, query string) ([]string, error) {
	cur, err := p.ep.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	rows, err := endpoint.Collect(cur)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		if iri, ok := row[0].(rdf.IRI); ok {
			out = append(out, string(iri))
		}
	}
	return out, nil
}

func nameByLocal(iris []string) map[string]string {
	namer := newUniqueNamer()
	out := make(map[string]string, len(iris))
	for _, iri := range iris {
		out[namer.next(TableName(iri))] = iri
	}
	return out
}

var notTypeFilter = "FILTER (?p != <" + rdf.RDFType + ">)"

func (p *Prober) propertiesQuery() string {
	return p.render("SELECT DISTINCT ?p", []string{"?s ?p ?o ."}, notTypeFilter, "ORDER BY ASC(?p)")
}

func (p *Prober) classesQuery() string {
	return p.render("SELECT DISTINCT ?c", []string{"?s a ?c ."}, "", "ORDER BY ASC(?c)")
}

func (p *Prober) objectsQuery(predicate string, limit int) string {
	return p.render("SELECT DISTINCT ?o",
		[]string{"?s <" + predicate + "> ?o ."},
		"",
		"LIMIT "+strconv.Itoa(limit))
}

func (p *Prober) classPropertiesQuery(class string, limit int) string {
	return p.render("SELECT DISTINCT ?p",
		[]string{"?s a <" + class + "> .", "?s ?p ?o ."},
		notTypeFilter,
		"ORDER BY ASC(?p)\nLIMIT "+strconv.Itoa(limit))
}

func (p *Prober) render(selectLine string, patterns []string, filter, tail string) string {
	var b strings.Builder
	b.WriteString(selectLine)
	b.WriteString("\nWHERE {\n")
	indent := "  "
	if p.namedGraphs {
		b.WriteString("  GRAPH ?_g {\n")
		indent = "    "
	}
	for _, line := range patterns {
		b.WriteString(indent)
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if p.namedGraphs {
		b.WriteString("  }\n")
	}
	if filter != "" {
		b.WriteString("  ")
		b.WriteString(filter)
		b.WriteByte('\n')
	}
	b.WriteString("}")
	if tail != "" {
		b.WriteByte('\n')
		b.WriteString(tail)
	}
	return b.String()
}
