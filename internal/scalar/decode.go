package scalar

import (
	"errors"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/roach88/rdfsql/internal/rdf"
)

var errOutOfRange = errors.New("value out of 64-bit integer range")

// Lexical grammars of xsd:decimal and xsd:float/xsd:double. strconv and
// decimal accept forms outside them (hex floats, "inf", exponents on decimals).
var (
	decimalLexical = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)
	floatLexical   = regexp.MustCompile(`^([+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?|[+-]?INF|NaN)$`)
)

// Layouts accepted for the XSD temporal datatypes. The timezone suffix is
// optional except for xsd:dateTimeStamp.
var (
	dateLayouts = []string{
		"2006-01-02Z07:00",
		"2006-01-02",
	}
	timeLayouts = []string{
		"15:04:05.999999999Z07:00",
		"15:04:05.999999999",
	}
	dateTimeLayouts = []string{
		"2006-01-02T15:04:05.999999999Z07:00",
		"2006-01-02T15:04:05.999999999",
	}
	dateTimeStampLayouts = []string{
		"2006-01-02T15:04:05.999999999Z07:00",
	}
)

// Decode converts a term into the Go value for its datatype.
// A nil term (unbound variable) decodes to nil.
func Decode(term rdf.Term) (any, error) {
	switch t := term.(type) {
	case nil:
		return nil, nil
	case rdf.IRI:
		return string(t), nil
	case rdf.BlankNode:
		return string(t), nil
	case rdf.Literal:
		return DecodeLiteral(t)
	default:
		return nil, &DecodeError{Lexical: term.String(), Datatype: "unknown"}
	}
}

// Lexical returns the string form of a term: the IRI, the blank node label,
// or the literal's lexical form. A nil term returns nil.
func Lexical(term rdf.Term) any {
	switch t := term.(type) {
	case nil:
		return nil
	case rdf.IRI:
		return string(t)
	case rdf.BlankNode:
		return string(t)
	case rdf.Literal:
		return t.Lexical
	default:
		return term.String()
	}
}

// DecodeLiteral parses a literal according to its declared datatype.
func DecodeLiteral(lit rdf.Literal) (any, error) {
	datatype := lit.DatatypeIRI()
	if unsupportedDatatypes[datatype] {
		return nil, &UnsupportedDatatypeError{Datatype: datatype}
	}
	typ, ok := datatypeTypes[datatype]
	if !ok {
		return lit.Lexical, nil
	}

	// XSD whitespace facet is "collapse" for every non-string type.
	lex := lit.Lexical
	if typ != String {
		lex = strings.TrimSpace(lex)
	}

	v, err := parse(typ, lex)
	if err != nil {
		return nil, &DecodeError{Lexical: lit.Lexical, Datatype: datatype, Err: err}
	}
	return v, nil
}

func parse(typ Type, lex string) (any, error) {
	switch typ {
	case String:
		return lex, nil
	case Bool:
		return parseBool(lex)
	case TinyInt:
		n, err := strconv.ParseInt(lex, 10, 8)
		return int8(n), err
	case SmallInt:
		n, err := strconv.ParseInt(lex, 10, 16)
		return int16(n), err
	case Integer:
		n, err := strconv.ParseInt(lex, 10, 32)
		return int32(n), err
	case BigInt:
		return parseBigInt(lex)
	case Decimal:
		if !decimalLexical.MatchString(lex) {
			return nil, errors.New("invalid decimal")
		}
		return decimal.NewFromString(lex)
	case Float:
		if !floatLexical.MatchString(lex) {
			return nil, errors.New("invalid float")
		}
		f, err := strconv.ParseFloat(lex, 32)
		return float32(f), err
	case Double:
		if !floatLexical.MatchString(lex) {
			return nil, errors.New("invalid double")
		}
		return strconv.ParseFloat(lex, 64)
	case Date:
		return parseTime(lex, dateLayouts)
	case Time:
		lex, _ = endOfDay(lex, "")
		return parseTime(lex, timeLayouts)
	case Timestamp:
		return parseDateTime(lex, dateTimeLayouts)
	case TimestampTZ:
		return parseDateTime(lex, dateTimeStampLayouts)
	default:
		return nil, errors.New("no decoder for " + typ.String())
	}
}

func parseBool(lex string) (bool, error) {
	switch lex {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, errors.New("invalid boolean")
	}
}

// parseBigInt normalizes arbitrary-width integers to int64.
func parseBigInt(lex string) (int64, error) {
	n, ok := new(big.Int).SetString(lex, 10)
	if !ok {
		return 0, errors.New("invalid integer")
	}
	if !n.IsInt64() {
		return 0, errOutOfRange
	}
	return n.Int64(), nil
}

func parseTime(lex string, layouts []string) (time.Time, error) {
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, lex)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseDateTime parses a dateTime, reading "T24:00:00" as midnight of the
// following day.
func parseDateTime(lex string, layouts []string) (time.Time, error) {
	lex, nextDay := endOfDay(lex, "T")
	t, err := parseTime(lex, layouts)
	if err != nil || !nextDay {
		return t, err
	}
	return t.AddDate(0, 0, 1), nil
}

// endOfDay rewrites the XSD end-of-day time 24:00:00 (with an optional
// all-zero fraction) following prefix to 00:00:00. It reports whether the
// rewrite happened.
func endOfDay(lex, prefix string) (string, bool) {
	marker := prefix + "24:00:00"
	i := strings.Index(lex, marker)
	if i < 0 || (prefix == "" && i != 0) {
		return lex, false
	}
	rest := lex[i+len(marker):]
	if strings.HasPrefix(rest, ".") {
		j := 1
		for j < len(rest) && rest[j] == '0' {
			j++
		}
		if j == 1 || (j < len(rest) && rest[j] >= '0' && rest[j] <= '9') {
			return lex, false
		}
		rest = rest[j:]
	}
	return lex[:i] + prefix + "00:00:00" + rest, true
}
