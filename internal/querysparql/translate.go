package querysparql

import (
	"strings"

	"github.com/roach88/rdfsql/internal/planir"
	"github.com/roach88/rdfsql/internal/rdf"
)

// Placeholder stands for the filtered column's variable inside a fragment.
const Placeholder = "%VAR%"

var comparisonOps = map[planir.CompOp]string{
	planir.OpEq:  "=",
	planir.OpNeq: "!=",
	planir.OpGt:  ">",
	planir.OpGte: ">=",
	planir.OpLt:  "<",
	planir.OpLte: "<=",
}

// TranslateComparison renders "Placeholder op literal".
func TranslateComparison(op planir.CompOp, v planir.Value) (string, error) {
	sym, ok := comparisonOps[op]
	if !ok {
		return "", unsupported("%s comparison", op)
	}
	lit, err := FormatValue(v)
	if err != nil {
		return "", err
	}
	return Placeholder + " " + sym + " " + lit, nil
}

// TranslateSearch renders a union of ranges. Points become equalities,
// intervals become (P >= lo && P <= hi), half-open intervals keep their one
// bound. Duplicate fragments are dropped, keeping the first.
func TranslateSearch(ranges []planir.Range) (string, error) {
	if len(ranges) == 0 {
		return "", unsupported("search without ranges")
	}

	seen := make(map[string]bool, len(ranges))
	var parts []string
	for _, r := range ranges {
		frag, err := translateRange(r)
		if err != nil {
			return "", err
		}
		if seen[frag] {
			continue
		}
		seen[frag] = true
		parts = append(parts, frag)
	}
	return strings.Join(parts, " || "), nil
}

func translateRange(r planir.Range) (string, error) {
	switch {
	case r.Lower != nil && r.Upper != nil:
		lo, err := FormatValue(r.Lower)
		if err != nil {
			return "", err
		}
		if planir.ValuesEqual(r.Lower, r.Upper) {
			return Placeholder + " = " + lo, nil
		}
		hi, err := FormatValue(r.Upper)
		if err != nil {
			return "", err
		}
		return "(" + Placeholder + " >= " + lo + " && " + Placeholder + " <= " + hi + ")", nil
	case r.Lower != nil:
		lo, err := FormatValue(r.Lower)
		if err != nil {
			return "", err
		}
		return Placeholder + " >= " + lo, nil
	case r.Upper != nil:
		hi, err := FormatValue(r.Upper)
		if err != nil {
			return "", err
		}
		return Placeholder + " <= " + hi, nil
	default:
		return "", unsupported("unbounded search range")
	}
}

// TranslatePredicate splits a filter condition into fragments keyed by the
// input column they test. A conjunction of leaves is accepted; two leaves on
// the same column are joined with &&.
func TranslatePredicate(p planir.Predicate) (map[int]string, error) {
	out := make(map[int]string)
	if err := translateInto(p, out); err != nil {
		return nil, err
	}
	return out, nil
}

func translateInto(p planir.Predicate, out map[int]string) error {
	var (
		col  int
		frag string
		err  error
	)

	switch pred := p.(type) {
	case planir.Comparison:
		col = pred.Column
		frag, err = TranslateComparison(pred.Op, pred.Value)
	case *planir.Comparison:
		col = pred.Column
		frag, err = TranslateComparison(pred.Op, pred.Value)
	case planir.Search:
		col = pred.Column
		frag, err = TranslateSearch(pred.Ranges)
	case *planir.Search:
		col = pred.Column
		frag, err = TranslateSearch(pred.Ranges)
	case planir.And:
		return translateAll(pred.Predicates, out)
	case *planir.And:
		return translateAll(pred.Predicates, out)
	case planir.Or, *planir.Or:
		return unsupported("OR predicate")
	case planir.Not, *planir.Not:
		return unsupported("NOT predicate")
	default:
		return unsupported("predicate type %T", p)
	}
	if err != nil {
		return err
	}

	if prev, ok := out[col]; ok {
		out[col] = group(prev) + " && " + group(frag)
	} else {
		out[col] = frag
	}
	return nil
}

func translateAll(preds []planir.Predicate, out map[int]string) error {
	if len(preds) == 0 {
		return unsupported("empty conjunction")
	}
	for _, p := range preds {
		if err := translateInto(p, out); err != nil {
			return err
		}
	}
	return nil
}

// group parenthesises a disjunction so it can be AND-ed.
func group(frag string) string {
	if strings.Contains(frag, " || ") {
		return "(" + frag + ")"
	}
	return frag
}

// FormatValue renders an operand as a SPARQL literal. Strings are single
// quoted; numbers and booleans are bare. Typed operands carry their datatype.
func FormatValue(v planir.Value) (string, error) {
	switch val := v.(type) {
	case planir.String:
		return quote(string(val)), nil
	case planir.Int:
		return val.String(), nil
	case planir.Decimal:
		return val.String(), nil
	case planir.Bool:
		return val.String(), nil
	case planir.Typed:
		if !rdf.ValidIRI(val.Datatype) || strings.Contains(val.Datatype, Placeholder) {
			return "", unsupported("invalid datatype IRI %q", val.Datatype)
		}
		return quote(val.Lexical) + "^^<" + val.Datatype + ">", nil
	case nil:
		return "", unsupported("nil operand")
	default:
		return "", unsupported("operand type %T", v)
	}
}

var quoteReplacer = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	Placeholder, `\u0025VAR%`,
)

func quote(s string) string {
	return "'" + quoteReplacer.Replace(s) + "'"
}
