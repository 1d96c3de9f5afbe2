package querysparql

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/rdfsql/internal/planir"
	"github.com/roach88/rdfsql/internal/rdf"
)

// Implementor accumulates query state during one bottom-up visit.
// It is single use: create one per compiled tree and never share it.
type Implementor struct {
	table       string
	binding     planir.Binding
	scanned     bool
	namedGraphs bool

	// outputs maps the current node's output positions to table columns.
	outputs   []int
	projected bool

	sortKeys []sortKey
	filters  map[int]string // table column -> fragment

	hasLimit bool
	limit    int64
	offset   int64
}

type sortKey struct {
	column    int
	direction planir.Direction
}

// NewImplementor returns an empty accumulator.
func NewImplementor() *Implementor {
	return &Implementor{filters: make(map[int]string)}
}

// Visit walks node bottom-up, children before parents.
func (im *Implementor) Visit(node planir.Node) error {
	switch n := node.(type) {
	case planir.Scan:
		return im.visitScan(n)
	case *planir.Scan:
		return im.visitScan(*n)
	case planir.Filter:
		return im.visitFilter(n)
	case *planir.Filter:
		return im.visitFilter(*n)
	case planir.Project:
		return im.visitProject(n)
	case *planir.Project:
		return im.visitProject(*n)
	case planir.Sort:
		return im.visitSort(n)
	case *planir.Sort:
		return im.visitSort(*n)
	case planir.Limit:
		return im.visitLimit(n)
	case *planir.Limit:
		return im.visitLimit(*n)
	case nil:
		return fmt.Errorf("visit: nil node")
	default:
		return unsupported("node type %T", node)
	}
}

func (im *Implementor) visitScan(s planir.Scan) error {
	if im.scanned {
		return unsupported("more than one scan")
	}
	im.scanned = true
	im.table = s.Table
	im.binding = s.Binding

	width := len(s.Binding.ColumnNames())
	im.outputs = make([]int, width)
	for i := range im.outputs {
		im.outputs[i] = i
	}
	return nil
}

func (im *Implementor) visitFilter(f planir.Filter) error {
	if err := im.Visit(f.Input); err != nil {
		return err
	}
	if im.windowed() {
		return unsupported("filter above limit")
	}

	frags, err := TranslatePredicate(f.Condition)
	if err != nil {
		return err
	}
	cols := make([]int, 0, len(frags))
	for col := range frags {
		cols = append(cols, col)
	}
	sort.Ints(cols)

	for _, col := range cols {
		base, err := im.base(col)
		if err != nil {
			return fmt.Errorf("filter: %w", err)
		}
		frag := frags[col]
		if prev, ok := im.filters[base]; ok {
			im.filters[base] = group(prev) + " && " + group(frag)
		} else {
			im.filters[base] = frag
		}
	}
	return nil
}

func (im *Implementor) visitProject(p planir.Project) error {
	if err := im.Visit(p.Input); err != nil {
		return err
	}
	if len(p.Columns) == 0 {
		return nil
	}

	outputs := make([]int, len(p.Columns))
	for i, col := range p.Columns {
		base, err := im.base(col)
		if err != nil {
			return fmt.Errorf("project: %w", err)
		}
		outputs[i] = base
	}
	im.outputs = outputs
	im.projected = true
	return nil
}

func (im *Implementor) visitSort(s planir.Sort) error {
	if err := im.Visit(s.Input); err != nil {
		return err
	}
	if im.windowed() {
		return unsupported("sort above limit")
	}

	// The outermost sort defines the final order.
	keys := make([]sortKey, len(s.Keys))
	for i, k := range s.Keys {
		base, err := im.base(k.Column)
		if err != nil {
			return fmt.Errorf("sort: %w", err)
		}
		keys[i] = sortKey{column: base, direction: k.Direction}
	}
	im.sortKeys = keys
	return nil
}

func (im *Implementor) visitLimit(l planir.Limit) error {
	if err := im.Visit(l.Input); err != nil {
		return err
	}
	if l.Fetch < 0 || l.Offset < 0 {
		return fmt.Errorf("limit: negative fetch or offset (%d, %d)", l.Fetch, l.Offset)
	}

	if !im.windowed() {
		im.hasLimit = l.Fetch > 0
		im.limit = l.Fetch
		im.offset = l.Offset
		return nil
	}

	// Compose with the inner limit: skip further into the window it kept.
	inner, innerCapped := im.limit, im.hasLimit
	im.offset += l.Offset
	switch {
	case innerCapped:
		remaining := inner - l.Offset
		if remaining < 0 {
			remaining = 0
		}
		if l.Fetch > 0 && l.Fetch < remaining {
			remaining = l.Fetch
		}
		im.hasLimit = true
		im.limit = remaining
	case l.Fetch > 0:
		im.hasLimit = true
		im.limit = l.Fetch
	}
	return nil
}

// windowed reports whether a limit or offset has been recorded.
func (im *Implementor) windowed() bool {
	return im.hasLimit || im.offset > 0
}

// base maps an input position of the current node to a table column.
func (im *Implementor) base(col int) (int, error) {
	if !im.scanned {
		return 0, fmt.Errorf("no scan below operator")
	}
	if col < 0 || col >= len(im.outputs) {
		return 0, fmt.Errorf("column index %d out of range [0, %d)", col, len(im.outputs))
	}
	return im.outputs[col], nil
}

// Columns returns the selected output column names.
func (im *Implementor) Columns() []string {
	names := im.binding.ColumnNames()
	out := make([]string, len(im.outputs))
	for i, base := range im.outputs {
		out[i] = names[base]
	}
	return out
}

// Distinct reports whether the query selects DISTINCT.
func (im *Implementor) Distinct() bool {
	return im.binding.Mode != planir.ModeProperty
}

// Render assembles the query text. It does not modify the accumulator.
func (im *Implementor) Render() (string, error) {
	if !im.scanned {
		return "", fmt.Errorf("render: no scan visited")
	}

	names := im.binding.ColumnNames()
	vars := make([]string, len(names))
	for i, name := range names {
		if !validVarName(name) {
			return "", fmt.Errorf("render: invalid column name %q", name)
		}
		vars[i] = "?" + name
	}

	var b strings.Builder

	b.WriteString("SELECT ")
	if im.Distinct() {
		b.WriteString("DISTINCT ")
	}
	for i, base := range im.outputs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(vars[base])
	}
	b.WriteString("\nWHERE {\n")

	patterns, err := im.patterns(vars)
	if err != nil {
		return "", err
	}
	indent := "  "
	if im.namedGraphs {
		b.WriteString("  GRAPH ?_g {\n")
		indent = "    "
	}
	for _, p := range patterns {
		b.WriteString(indent)
		b.WriteString(p)
		b.WriteByte('\n')
	}
	if im.namedGraphs {
		b.WriteString("  }\n")
	}

	if len(im.filters) > 0 {
		cols := make([]int, 0, len(im.filters))
		for col := range im.filters {
			cols = append(cols, col)
		}
		sort.Ints(cols)

		frags := make([]string, len(cols))
		for i, col := range cols {
			frag := strings.ReplaceAll(im.filters[col], Placeholder, vars[col])
			if len(cols) > 1 {
				frag = group(frag)
			}
			frags[i] = frag
		}
		b.WriteString("  FILTER (")
		b.WriteString(strings.Join(frags, " && "))
		b.WriteString(")\n")
	}
	b.WriteString("}")

	if len(im.sortKeys) > 0 {
		b.WriteString("\nORDER BY")
		for _, k := range im.sortKeys {
			b.WriteByte(' ')
			b.WriteString(k.direction.String())
			b.WriteByte('(')
			b.WriteString(vars[k.column])
			b.WriteByte(')')
		}
	}
	if im.hasLimit {
		b.WriteString("\nLIMIT ")
		b.WriteString(strconv.FormatInt(im.limit, 10))
	}
	if im.offset > 0 {
		b.WriteString("\nOFFSET ")
		b.WriteString(strconv.FormatInt(im.offset, 10))
	}

	return b.String(), nil
}

func (im *Implementor) patterns(vars []string) ([]string, error) {
	switch im.binding.Mode {
	case planir.ModeProperty:
		if !rdf.ValidIRI(im.binding.Predicate) {
			return nil, fmt.Errorf("render: invalid predicate IRI %q", im.binding.Predicate)
		}
		return []string{vars[0] + " <" + im.binding.Predicate + "> " + vars[1] + " ."}, nil

	case planir.ModeClass, planir.ModeMapping:
		if !rdf.ValidIRI(im.binding.Class) {
			return nil, fmt.Errorf("render: invalid class IRI %q", im.binding.Class)
		}
		out := make([]string, 0, len(im.binding.Columns)+1)
		out = append(out, vars[0]+" a <"+im.binding.Class+"> .")
		for i, col := range im.binding.Columns {
			if !rdf.ValidIRI(col.Predicate) {
				return nil, fmt.Errorf("render: invalid predicate IRI %q for column %s", col.Predicate, col.Name)
			}
			out = append(out, "OPTIONAL { "+vars[0]+" <"+col.Predicate+"> "+vars[i+1]+" }")
		}
		return out, nil

	default:
		return nil, fmt.Errorf("render: unknown table mode %v", im.binding.Mode)
	}
}

func validVarName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}
