// Package scalar maps RDF literal datatypes onto the scalar column types of
// a relational row and decodes literals into Go values.
//
// Decoded Go types per column type:
//
//	Bool        bool
//	TinyInt     int8
//	SmallInt    int16
//	Integer     int32
//	BigInt      int64 (xsd:integer and xsd:long; values outside int64 fail)
//	Decimal     decimal.Decimal
//	Float       float32
//	Double      float64
//	Date        time.Time
//	Time        time.Time
//	Timestamp   time.Time
//	TimestampTZ time.Time
//	String      string
//
// IRIs and blank nodes decode to their identifier string. A malformed
// literal is always an error; no value is substituted.
package scalar
