package planir

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Node is a relational operator.
// This is a sealed interface - only types in this package implement it.
type Node interface {
	planNode() // Marker method - seals interface to this package
}

// Predicate is a filter condition over input column indices.
// This is a sealed interface - only types in this package implement it.
type Predicate interface {
	predicateNode()
}

// Value is a literal operand of a predicate.
// This is a sealed interface - only types in this package implement it.
type Value interface {
	planValue()

	// String returns the value's plain text form, without quoting.
	String() string
}

// Scan reads every row of one table.
type Scan struct {
	Table   string  // Table name, for diagnostics
	Binding Binding // Table semantics
}

func (Scan) planNode() {}

// Filter keeps the input rows matching Condition.
type Filter struct {
	Input     Node
	Condition Predicate
}

func (Filter) planNode() {}

// Project outputs the listed input columns in order.
// An empty Columns list keeps every input column.
type Project struct {
	Input   Node
	Columns []int
}

func (Project) planNode() {}

// Direction is a sort direction.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// String returns the SPARQL keyword for the direction.
func (d Direction) String() string {
	if d == Descending {
		return "DESC"
	}
	return "ASC"
}

// SortKey orders rows by one input column.
type SortKey struct {
	Column    int
	Direction Direction
}

// Sort orders the input rows by Keys, most significant first.
type Sort struct {
	Input Node
	Keys  []SortKey
}

func (Sort) planNode() {}

// Limit returns at most Fetch rows after skipping Offset rows.
// A zero Fetch disables the cap.
type Limit struct {
	Input  Node
	Fetch  int64
	Offset int64
}

func (Limit) planNode() {}

// CompOp is a comparison operator.
type CompOp int

const (
	OpEq CompOp = iota
	OpNeq
	OpGt
	OpGte
	OpLt
	OpLte
	OpLike
)

var compOpNames = [...]string{"=", "<>", ">", ">=", "<", "<=", "LIKE"}

// String returns the SQL spelling of the operator.
func (op CompOp) String() string {
	if int(op) >= 0 && int(op) < len(compOpNames) {
		return compOpNames[op]
	}
	return "CompOp(" + strconv.Itoa(int(op)) + ")"
}

// Comparison compares one input column with a literal.
type Comparison struct {
	Column int
	Op     CompOp
	Value  Value
}

func (Comparison) predicateNode() {}

// Range is an interval over one column. A nil bound is unbounded; both
// bounds, when present, are inclusive. Lower == Upper is a point.
type Range struct {
	Lower Value
	Upper Value
}

// Point returns the range holding exactly v.
func Point(v Value) Range {
	return Range{Lower: v, Upper: v}
}

// Between returns the closed range [lo, hi].
func Between(lo, hi Value) Range {
	return Range{Lower: lo, Upper: hi}
}

// Search tests one input column against a normalized union of ranges.
type Search struct {
	Column int
	Ranges []Range
}

func (Search) predicateNode() {}

// And holds when every predicate holds.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or holds when any predicate holds.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// Not negates a predicate.
type Not struct {
	Predicate Predicate
}

func (Not) predicateNode() {}

// String is a character operand.
type String string

func (String) planValue() {}

func (s String) String() string { return string(s) }

// Int is an exact integer operand.
type Int int64

func (Int) planValue() {}

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

// Decimal is an arbitrary-precision numeric operand.
type Decimal struct {
	decimal.Decimal
}

func (Decimal) planValue() {}

// String returns the decimal without exponent.
func (d Decimal) String() string { return d.Decimal.String() }

// NewDecimal parses a decimal operand.
func NewDecimal(s string) (Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{d}, nil
}

// Bool is a boolean operand.
type Bool bool

func (Bool) planValue() {}

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

// Typed is an operand carried as a lexical form with an explicit datatype
// IRI, used for dates and times.
type Typed struct {
	Lexical  string
	Datatype string
}

func (Typed) planValue() {}

func (t Typed) String() string { return t.Lexical }

// ValuesEqual reports whether two operands have the same kind and value.
func ValuesEqual(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Int:
		y, ok := b.(Int)
		return ok && x == y
	case Decimal:
		y, ok := b.(Decimal)
		return ok && x.Equal(y.Decimal)
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case Typed:
		y, ok := b.(Typed)
		return ok && x == y
	default:
		return false
	}
}
