package scalar

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/roach88/rdfsql/internal/rdf"
)

// Type is the scalar type of a table column.
type Type int

const (
	String Type = iota
	Bool
	TinyInt
	SmallInt
	Integer
	BigInt
	Decimal
	Float
	Double
	Date
	Time
	Timestamp
	TimestampTZ
)

var typeNames = map[Type]string{
	String:      "VARCHAR",
	Bool:        "BOOLEAN",
	TinyInt:     "TINYINT",
	SmallInt:    "SMALLINT",
	Integer:     "INTEGER",
	BigInt:      "BIGINT",
	Decimal:     "DECIMAL",
	Float:       "FLOAT",
	Double:      "DOUBLE",
	Date:        "DATE",
	Time:        "TIME",
	Timestamp:   "TIMESTAMP",
	TimestampTZ: "TIMESTAMP_WITH_LOCAL_TIME_ZONE",
}

// String returns the SQL name of the type.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// IsNumeric reports whether values of this type render unquoted in filters.
func (t Type) IsNumeric() bool {
	switch t {
	case TinyInt, SmallInt, Integer, BigInt, Decimal, Float, Double:
		return true
	default:
		return false
	}
}

// IsCharacter reports whether values of this type render quoted in filters.
func (t Type) IsCharacter() bool {
	return t == String
}

// Accepts reports whether v is the Go representation Decode produces for
// this type. A nil value (unbound column) is accepted by every type.
func (t Type) Accepts(v any) bool {
	if v == nil {
		return true
	}
	switch t {
	case String:
		_, ok := v.(string)
		return ok
	case Bool:
		_, ok := v.(bool)
		return ok
	case TinyInt:
		_, ok := v.(int8)
		return ok
	case SmallInt:
		_, ok := v.(int16)
		return ok
	case Integer:
		_, ok := v.(int32)
		return ok
	case BigInt:
		_, ok := v.(int64)
		return ok
	case Decimal:
		_, ok := v.(decimal.Decimal)
		return ok
	case Float:
		_, ok := v.(float32)
		return ok
	case Double:
		_, ok := v.(float64)
		return ok
	case Date, Time, Timestamp, TimestampTZ:
		_, ok := v.(time.Time)
		return ok
	default:
		return false
	}
}

var datatypeTypes = map[string]Type{
	rdf.XSDBoolean:       Bool,
	rdf.XSDByte:          TinyInt,
	rdf.XSDShort:         SmallInt,
	rdf.XSDInt:           Integer,
	rdf.XSDInteger:       BigInt,
	rdf.XSDLong:          BigInt,
	rdf.XSDDecimal:       Decimal,
	rdf.XSDFloat:         Float,
	rdf.XSDDouble:        Double,
	rdf.XSDDate:          Date,
	rdf.XSDTime:          Time,
	rdf.XSDDateTime:      Timestamp,
	rdf.XSDDateTimeStamp: TimestampTZ,
	rdf.XSDString:        String,
}

// TemporalDatatype returns the XSD datatype IRI of a date or time type and
// false for every other type.
func (t Type) TemporalDatatype() (string, bool) {
	switch t {
	case Date:
		return rdf.XSDDate, true
	case Time:
		return rdf.XSDTime, true
	case Timestamp:
		return rdf.XSDDateTime, true
	case TimestampTZ:
		return rdf.XSDDateTimeStamp, true
	default:
		return "", false
	}
}

var unsupportedDatatypes = map[string]bool{
	rdf.XSDUnsignedByte:       true,
	rdf.XSDUnsignedShort:      true,
	rdf.XSDUnsignedInt:        true,
	rdf.XSDUnsignedLong:       true,
	rdf.XSDNonNegativeInteger: true,
	rdf.XSDPositiveInteger:    true,
	rdf.XSDNonPositiveInteger: true,
	rdf.XSDNegativeInteger:    true,
}

// FromDatatype maps a datatype IRI to a column type.
//
// The unsigned and sign-restricted integer families are always rejected.
// Any other unrecognized datatype maps to String when defaultToString is
// set and is rejected otherwise.
func FromDatatype(datatype string, defaultToString bool) (Type, error) {
	if t, ok := datatypeTypes[datatype]; ok {
		return t, nil
	}
	if unsupportedDatatypes[datatype] {
		return String, &UnsupportedDatatypeError{Datatype: datatype}
	}
	if defaultToString {
		return String, nil
	}
	return String, &UnsupportedDatatypeError{Datatype: datatype}
}
