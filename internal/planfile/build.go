package planfile

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/rdfsql/internal/planir"
	"github.com/roach88/rdfsql/internal/rdf"
	"github.com/roach88/rdfsql/internal/scalar"
	"github.com/roach88/rdfsql/internal/schema"
)

var compOps = map[string]planir.CompOp{
	"=":    planir.OpEq,
	"==":   planir.OpEq,
	"!=":   planir.OpNeq,
	"<>":   planir.OpNeq,
	">":    planir.OpGt,
	">=":   planir.OpGte,
	"<":    planir.OpLt,
	"<=":   planir.OpLte,
	"like": planir.OpLike,
}

// Build stacks the plan's operators on scan. columns types the operands of
// filter leaves; it is normally the scanned table's resolved columns.
func Build(p *Plan, scan planir.Scan, columns []schema.Column) (planir.Node, error) {
	types := make(map[string]scalar.Type, len(columns))
	for _, c := range columns {
		types[c.Name] = c.Type
	}
	b := &builder{types: types}

	var node planir.Node = scan
	for i, op := range p.Ops {
		out, err := planir.OutputColumns(node)
		if err != nil {
			return nil, fmt.Errorf("op %d (%s): %w", i, op.Kind(), err)
		}
		next, err := b.apply(node, out, op)
		if err != nil {
			return nil, fmt.Errorf("op %d (%s): %w", i, op.Kind(), err)
		}
		node = next
	}
	return node, nil
}

type builder struct {
	types map[string]scalar.Type
}

func (b *builder) apply(input planir.Node, out []string, op Op) (planir.Node, error) {
	switch {
	case op.Filter != nil:
		cond, err := b.predicate(*op.Filter, out)
		if err != nil {
			return nil, err
		}
		return planir.Filter{Input: input, Condition: cond}, nil

	case op.Project != nil:
		cols := make([]int, len(op.Project))
		for i, name := range op.Project {
			idx, err := indexOf(out, name)
			if err != nil {
				return nil, err
			}
			cols[i] = idx
		}
		return planir.Project{Input: input, Columns: cols}, nil

	case op.Sort != nil:
		keys := make([]planir.SortKey, len(op.Sort))
		for i, s := range op.Sort {
			idx, err := indexOf(out, s.Column)
			if err != nil {
				return nil, err
			}
			dir, err := parseDirection(s.Direction)
			if err != nil {
				return nil, err
			}
			keys[i] = planir.SortKey{Column: idx, Direction: dir}
		}
		return planir.Sort{Input: input, Keys: keys}, nil

	case op.Limit != nil:
		return planir.Limit{Input: input, Fetch: op.Limit.Fetch, Offset: op.Limit.Offset}, nil

	default:
		return nil, fmt.Errorf("empty operator")
	}
}

func indexOf(out []string, name string) (int, error) {
	for i, c := range out {
		if c == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown column %q (have %s)", name, strings.Join(out, ", "))
}

func parseDirection(s string) (planir.Direction, error) {
	switch strings.ToLower(s) {
	case "", "asc", "ascending":
		return planir.Ascending, nil
	case "desc", "descending":
		return planir.Descending, nil
	default:
		return planir.Ascending, fmt.Errorf("unknown sort direction %q", s)
	}
}

func (b *builder) predicate(spec PredicateSpec, out []string) (planir.Predicate, error) {
	switch {
	case spec.And != nil:
		preds, err := b.predicates(spec.And, out)
		if err != nil {
			return nil, fmt.Errorf("and: %w", err)
		}
		return planir.And{Predicates: preds}, nil

	case spec.Or != nil:
		preds, err := b.predicates(spec.Or, out)
		if err != nil {
			return nil, fmt.Errorf("or: %w", err)
		}
		return planir.Or{Predicates: preds}, nil

	case spec.Not != nil:
		inner, err := b.predicate(*spec.Not, out)
		if err != nil {
			return nil, fmt.Errorf("not: %w", err)
		}
		return planir.Not{Predicate: inner}, nil
	}

	idx, err := indexOf(out, spec.Column)
	if err != nil {
		return nil, err
	}
	typ := b.types[spec.Column]

	if spec.Ranges != nil {
		ranges := make([]planir.Range, len(spec.Ranges))
		for i, r := range spec.Ranges {
			rng, err := b.rangeOf(r, spec.Column, typ)
			if err != nil {
				return nil, fmt.Errorf("range %d: %w", i, err)
			}
			ranges[i] = rng
		}
		return planir.Search{Column: idx, Ranges: ranges}, nil
	}

	op, ok := compOps[strings.ToLower(spec.Op)]
	if !ok {
		return nil, fmt.Errorf("unknown comparison operator %q", spec.Op)
	}
	v, err := coerce(spec.Value, typ)
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", spec.Column, err)
	}
	if v == nil {
		return nil, fmt.Errorf("column %s: missing value", spec.Column)
	}
	return planir.Comparison{Column: idx, Op: op, Value: v}, nil
}

func (b *builder) predicates(specs []PredicateSpec, out []string) ([]planir.Predicate, error) {
	preds := make([]planir.Predicate, len(specs))
	for i, s := range specs {
		p, err := b.predicate(s, out)
		if err != nil {
			return nil, err
		}
		preds[i] = p
	}
	return preds, nil
}

func (b *builder) rangeOf(r RangeSpec, column string, typ scalar.Type) (planir.Range, error) {
	if r.Point.Kind != 0 {
		v, err := coerce(r.Point, typ)
		if err != nil {
			return planir.Range{}, fmt.Errorf("column %s: %w", column, err)
		}
		return planir.Point(v), nil
	}
	lo, err := coerce(r.Lower, typ)
	if err != nil {
		return planir.Range{}, fmt.Errorf("column %s: %w", column, err)
	}
	hi, err := coerce(r.Upper, typ)
	if err != nil {
		return planir.Range{}, fmt.Errorf("column %s: %w", column, err)
	}
	return planir.Range{Lower: lo, Upper: hi}, nil
}

// coerce converts a YAML scalar to an operand of the column's type. An
// absent node yields nil.
func coerce(n yaml.Node, typ scalar.Type) (planir.Value, error) {
	if n.Kind == 0 {
		return nil, nil
	}
	if n.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("line %d: operand must be a scalar", n.Line)
	}

	text := n.Value
	switch typ {
	case scalar.TinyInt, scalar.SmallInt, scalar.Integer, scalar.BigInt:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %q is not an integer", n.Line, text)
		}
		return planir.Int(i), nil
	case scalar.Decimal, scalar.Float, scalar.Double:
		d, err := planir.NewDecimal(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %q is not a number", n.Line, text)
		}
		return d, nil
	case scalar.Bool:
		v, err := strconv.ParseBool(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %q is not a boolean", n.Line, text)
		}
		return planir.Bool(v), nil
	}
	if datatype, ok := typ.TemporalDatatype(); ok {
		if _, err := scalar.DecodeLiteral(rdf.NewLiteral(text, datatype)); err != nil {
			return nil, fmt.Errorf("line %d: %q is not a valid %s", n.Line, text, typ)
		}
		return planir.Typed{Lexical: text, Datatype: datatype}, nil
	}
	return planir.String(text), nil
}
