package triplestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/roach88/rdfsql/internal/rdf"
	"github.com/roach88/rdfsql/internal/scalar"
)

var (
	errUnbound      = errors.New("unbound variable")
	errIncomparable = errors.New("incomparable terms")
	errNotBoolean   = errors.New("no effective boolean value")
)

// solution maps variable names to bound terms.
type solution map[string]rdf.Term

func (s solution) clone() solution {
	c := make(solution, len(s)+3)
	for k, v := range s {
		c[k] = v
	}
	return c
}

// evaluator runs a parsed query against the quads table.
//
// Each triple pattern is answered by its own SQL query with the bindings
// known so far substituted in, so solutions are joined by nested loops.
// Result sets are read fully before the next statement runs because the
// store holds a single connection.
type evaluator struct {
	db *sql.DB
}

func (ev *evaluator) run(ctx context.Context, q *selectQuery) ([]string, [][]rdf.Term, error) {
	sols, err := ev.evalGroup(ctx, q.Where, nil, []solution{{}})
	if err != nil {
		return nil, nil, err
	}

	if len(q.OrderBy) > 0 {
		orderSolutions(sols, q.OrderBy)
	}

	vars := q.Vars
	if vars == nil {
		vars = collectVars(q.Where, nil)
	}

	rows := make([][]rdf.Term, 0, len(sols))
	seen := make(map[string]struct{})
	for _, sol := range sols {
		row := make([]rdf.Term, len(vars))
		for i, v := range vars {
			row[i] = sol[v]
		}
		if q.Distinct {
			key := rowKey(row)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		rows = append(rows, row)
	}

	if q.Offset > 0 {
		if q.Offset >= int64(len(rows)) {
			rows = rows[:0]
		} else {
			rows = rows[q.Offset:]
		}
	}
	if q.Limit >= 0 && q.Limit < int64(len(rows)) {
		rows = rows[:q.Limit]
	}
	return vars, rows, nil
}

func rowKey(row []rdf.Term) string {
	var b strings.Builder
	for _, t := range row {
		if t == nil {
			b.WriteString("\x01")
		} else {
			b.WriteString(t.String())
		}
		b.WriteByte(0)
	}
	return b.String()
}

// collectVars lists variables in order of first appearance.
func collectVars(g *group, vars []string) []string {
	add := func(n node) {
		if !n.isVar() {
			return
		}
		for _, v := range vars {
			if v == n.Var {
				return
			}
		}
		vars = append(vars, n.Var)
	}
	for _, el := range g.Elements {
		switch e := el.(type) {
		case triplePattern:
			add(e.S)
			add(e.P)
			add(e.O)
		case optionalGroup:
			vars = collectVars(e.Group, vars)
		case graphGroup:
			add(e.Graph)
			vars = collectVars(e.Group, vars)
		case subGroup:
			vars = collectVars(e.Group, vars)
		}
	}
	return vars
}

// evalGroup joins the group's elements onto input and applies its filters.
// A nil graph matches the union of all graphs; otherwise only named graphs.
func (ev *evaluator) evalGroup(ctx context.Context, g *group, graph *node, input []solution) ([]solution, error) {
	sols := input
	for _, el := range g.Elements {
		if len(sols) == 0 {
			break
		}
		var next []solution
		switch e := el.(type) {
		case triplePattern:
			for _, sol := range sols {
				matched, err := ev.matchPattern(ctx, e, graph, sol)
				if err != nil {
					return nil, err
				}
				next = append(next, matched...)
			}
		case optionalGroup:
			for _, sol := range sols {
				extended, err := ev.evalGroup(ctx, e.Group, graph, []solution{sol})
				if err != nil {
					return nil, err
				}
				if len(extended) == 0 {
					next = append(next, sol)
				} else {
					next = append(next, extended...)
				}
			}
		case graphGroup:
			gn := e.Graph
			var err error
			if next, err = ev.evalGroup(ctx, e.Group, &gn, sols); err != nil {
				return nil, err
			}
		case subGroup:
			var err error
			if next, err = ev.evalGroup(ctx, e.Group, graph, sols); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unknown group element %T", el)
		}
		sols = next
	}

	if len(g.Filters) == 0 {
		return sols, nil
	}
	kept := sols[:0:0]
	for _, sol := range sols {
		if passes(g.Filters, sol) {
			kept = append(kept, sol)
		}
	}
	return kept, nil
}

func passes(filters []expr, sol solution) bool {
	for _, f := range filters {
		ok, err := evalBool(f, sol)
		if err != nil || !ok {
			return false
		}
	}
	return true
}

// resolve substitutes a bound variable with its value.
func resolve(n node, sol solution) node {
	if n.isVar() {
		if t, ok := sol[n.Var]; ok && t != nil {
			return node{Term: t}
		}
	}
	return n
}

func (ev *evaluator) matchPattern(ctx context.Context, tp triplePattern, graph *node, sol solution) ([]solution, error) {
	s, p, o := resolve(tp.S, sol), resolve(tp.P, sol), resolve(tp.O, sol)

	var where []string
	var args []any

	if !s.isVar() {
		v, kind, _, _, err := encodeTerm(s.Term)
		if err != nil || kind == kindLiteral {
			return nil, nil
		}
		where = append(where, "s = ?", "s_kind = ?")
		args = append(args, v, kind)
	}
	if !p.isVar() {
		iri, ok := p.Term.(rdf.IRI)
		if !ok {
			return nil, nil
		}
		where = append(where, "p = ?")
		args = append(args, string(iri))
	}
	if !o.isVar() {
		v, kind, dt, lang, err := encodeTerm(o.Term)
		if err != nil {
			return nil, nil
		}
		where = append(where, "o = ?", "o_kind = ?", "o_datatype = ?", "o_lang = ?")
		args = append(args, v, kind, dt, lang)
	}

	var g node
	if graph != nil {
		g = resolve(*graph, sol)
		where = append(where, "g != ''")
		if !g.isVar() {
			iri, ok := g.Term.(rdf.IRI)
			if !ok {
				return nil, nil
			}
			where = append(where, "g = ?")
			args = append(args, string(iri))
		}
	}

	query := "SELECT g, s, s_kind, p, o, o_kind, o_datatype, o_lang FROM quads"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := ev.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to match pattern: %w", err)
	}
	type quadRow struct {
		g, s, p, o       string
		sKind, oKind     int
		oDatatype, oLang string
	}
	var matched []quadRow
	for rows.Next() {
		var r quadRow
		if err := rows.Scan(&r.g, &r.s, &r.sKind, &r.p, &r.o, &r.oKind, &r.oDatatype, &r.oLang); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan quad: %w", err)
		}
		matched = append(matched, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate quads: %w", err)
	}
	rows.Close()

	var out []solution
	seen := make(map[quadRow]struct{})
	for _, r := range matched {
		if graph == nil {
			// Union of graphs: the same triple in two graphs matches once.
			key := r
			key.g = ""
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		next := sol.clone()
		if !bind(next, s, decodeTerm(r.s, r.sKind, "", "")) ||
			!bind(next, p, rdf.IRI(r.p)) ||
			!bind(next, o, decodeTerm(r.o, r.oKind, r.oDatatype, r.oLang)) {
			continue
		}
		if graph != nil && !bind(next, g, rdf.IRI(r.g)) {
			continue
		}
		out = append(out, next)
	}
	return out, nil
}

// bind assigns t to a variable position. A variable bound earlier in the
// same pattern must agree.
func bind(sol solution, n node, t rdf.Term) bool {
	if !n.isVar() {
		return true
	}
	if prev, ok := sol[n.Var]; ok && prev != nil {
		return rdf.Equal(prev, t)
	}
	sol[n.Var] = t
	return true
}

// ---------------- expressions ---------------------------------------------

func evalTerm(e expr, sol solution) (rdf.Term, error) {
	switch x := e.(type) {
	case varExpr:
		t, ok := sol[x.Name]
		if !ok || t == nil {
			return nil, errUnbound
		}
		return t, nil
	case constExpr:
		return x.Term, nil
	default:
		b, err := evalBool(e, sol)
		if err != nil {
			return nil, err
		}
		return boolLiteral(b), nil
	}
}

func boolLiteral(b bool) rdf.Literal {
	if b {
		return rdf.NewLiteral("true", rdf.XSDBoolean)
	}
	return rdf.NewLiteral("false", rdf.XSDBoolean)
}

func evalBool(e expr, sol solution) (bool, error) {
	switch x := e.(type) {
	case notExpr:
		b, err := evalBool(x.Operand, sol)
		return !b, err

	case binaryExpr:
		switch x.Op {
		case tokAnd:
			l, lerr := evalBool(x.Left, sol)
			r, rerr := evalBool(x.Right, sol)
			switch {
			case lerr == nil && !l, rerr == nil && !r:
				return false, nil
			case lerr != nil:
				return false, lerr
			case rerr != nil:
				return false, rerr
			}
			return true, nil
		case tokOr:
			l, lerr := evalBool(x.Left, sol)
			r, rerr := evalBool(x.Right, sol)
			switch {
			case lerr == nil && l, rerr == nil && r:
				return true, nil
			case lerr != nil:
				return false, lerr
			case rerr != nil:
				return false, rerr
			}
			return false, nil
		}
		left, err := evalTerm(x.Left, sol)
		if err != nil {
			return false, err
		}
		right, err := evalTerm(x.Right, sol)
		if err != nil {
			return false, err
		}
		return compare(x.Op, left, right)

	default:
		t, err := evalTerm(e, sol)
		if err != nil {
			return false, err
		}
		return effectiveBool(t)
	}
}

func effectiveBool(t rdf.Term) (bool, error) {
	lit, ok := t.(rdf.Literal)
	if !ok {
		return false, errNotBoolean
	}
	dt := lit.DatatypeIRI()
	switch {
	case dt == rdf.XSDBoolean:
		v, err := scalar.DecodeLiteral(lit)
		if err != nil {
			return false, err
		}
		return v.(bool), nil
	case rdf.IsNumericDatatype(dt):
		d, err := decimal.NewFromString(strings.TrimSpace(lit.Lexical))
		if err != nil {
			return false, err
		}
		return !d.IsZero(), nil
	case dt == rdf.XSDString:
		return lit.Lexical != "", nil
	default:
		return false, errNotBoolean
	}
}

// compare applies a comparison operator. Equality falls back to term
// identity; ordering requires comparable literals.
func compare(op TokenKind, a, b rdf.Term) (bool, error) {
	la, aok := a.(rdf.Literal)
	lb, bok := b.(rdf.Literal)
	c, err := 0, errIncomparable
	if aok && bok {
		c, err = compareLiterals(la, lb)
	}

	switch op {
	case tokEq:
		if err != nil {
			return rdf.Equal(a, b), nil
		}
		return c == 0, nil
	case tokNeq:
		if err != nil {
			return !rdf.Equal(a, b), nil
		}
		return c != 0, nil
	}
	if err != nil {
		return false, err
	}
	switch op {
	case tokLt:
		return c < 0, nil
	case tokLte:
		return c <= 0, nil
	case tokGt:
		return c > 0, nil
	case tokGte:
		return c >= 0, nil
	default:
		return false, fmt.Errorf("unknown operator %s", tokenKindName(op))
	}
}

type valueClass int

const (
	classOther valueClass = iota
	classNumeric
	classString
	classBoolean
	classDate
	classTime
	classDateTime
)

func classify(l rdf.Literal) valueClass {
	dt := l.DatatypeIRI()
	switch {
	case rdf.IsNumericDatatype(dt):
		return classNumeric
	case dt == rdf.XSDString:
		return classString
	case dt == rdf.XSDBoolean:
		return classBoolean
	case dt == rdf.XSDDate:
		return classDate
	case dt == rdf.XSDTime:
		return classTime
	case dt == rdf.XSDDateTime, dt == rdf.XSDDateTimeStamp:
		return classDateTime
	default:
		return classOther
	}
}

// compareLiterals orders two literals of the same value space.
func compareLiterals(a, b rdf.Literal) (int, error) {
	ca, cb := classify(a), classify(b)
	if ca != cb || ca == classOther {
		return 0, errIncomparable
	}
	switch ca {
	case classNumeric:
		x, err := decimal.NewFromString(strings.TrimSpace(a.Lexical))
		if err != nil {
			return 0, err
		}
		y, err := decimal.NewFromString(strings.TrimSpace(b.Lexical))
		if err != nil {
			return 0, err
		}
		return x.Cmp(y), nil
	case classString:
		return strings.Compare(a.Lexical, b.Lexical), nil
	default:
		x, err := scalar.DecodeLiteral(a)
		if err != nil {
			return 0, err
		}
		y, err := scalar.DecodeLiteral(b)
		if err != nil {
			return 0, err
		}
		switch xv := x.(type) {
		case bool:
			yv := y.(bool)
			switch {
			case xv == yv:
				return 0, nil
			case !xv:
				return -1, nil
			default:
				return 1, nil
			}
		case time.Time:
			return xv.Compare(y.(time.Time)), nil
		}
		return 0, errIncomparable
	}
}

// ---------------- ordering ------------------------------------------------

// termRank orders unbound < blank node < IRI < literal.
func termRank(t rdf.Term) int {
	switch t.(type) {
	case nil:
		return 0
	case rdf.BlankNode:
		return 1
	case rdf.IRI:
		return 2
	default:
		return 3
	}
}

func compareTerms(a, b rdf.Term) int {
	if ra, rb := termRank(a), termRank(b); ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch x := a.(type) {
	case nil:
		return 0
	case rdf.BlankNode:
		return strings.Compare(string(x), string(b.(rdf.BlankNode)))
	case rdf.IRI:
		return strings.Compare(string(x), string(b.(rdf.IRI)))
	case rdf.Literal:
		y := b.(rdf.Literal)
		if c, err := compareLiterals(x, y); err == nil {
			return c
		}
		if c := strings.Compare(x.Lexical, y.Lexical); c != 0 {
			return c
		}
		if c := strings.Compare(x.DatatypeIRI(), y.DatatypeIRI()); c != 0 {
			return c
		}
		return strings.Compare(x.Lang, y.Lang)
	}
	return 0
}

func orderSolutions(sols []solution, keys []orderKey) {
	// Evaluate keys once; an evaluation error sorts as unbound.
	values := make([][]rdf.Term, len(sols))
	for i, sol := range sols {
		values[i] = make([]rdf.Term, len(keys))
		for k, key := range keys {
			if t, err := evalTerm(key.Expr, sol); err == nil {
				values[i][k] = t
			}
		}
	}
	idx := make([]int, len(sols))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		for k, key := range keys {
			c := compareTerms(values[idx[i]][k], values[idx[j]][k])
			if c == 0 {
				continue
			}
			if key.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	sorted := make([]solution, len(sols))
	for i, j := range idx {
		sorted[i] = sols[j]
	}
	copy(sols, sorted)
}
