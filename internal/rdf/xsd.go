package rdf

// Namespaces used by the prober and the decoder.
const (
	XSDNamespace = "http://www.w3.org/2001/XMLSchema#"
	RDFNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
)

// RDF vocabulary.
const (
	RDFType       = RDFNamespace + "type"
	RDFLangString = RDFNamespace + "langString"
)

// XSD datatypes.
const (
	XSDBoolean       = XSDNamespace + "boolean"
	XSDByte          = XSDNamespace + "byte"
	XSDShort         = XSDNamespace + "short"
	XSDInt           = XSDNamespace + "int"
	XSDInteger       = XSDNamespace + "integer"
	XSDLong          = XSDNamespace + "long"
	XSDDecimal       = XSDNamespace + "decimal"
	XSDFloat         = XSDNamespace + "float"
	XSDDouble        = XSDNamespace + "double"
	XSDDate          = XSDNamespace + "date"
	XSDTime          = XSDNamespace + "time"
	XSDDateTime      = XSDNamespace + "dateTime"
	XSDDateTimeStamp = XSDNamespace + "dateTimeStamp"
	XSDString        = XSDNamespace + "string"

	XSDUnsignedByte        = XSDNamespace + "unsignedByte"
	XSDUnsignedShort       = XSDNamespace + "unsignedShort"
	XSDUnsignedInt         = XSDNamespace + "unsignedInt"
	XSDUnsignedLong        = XSDNamespace + "unsignedLong"
	XSDNonNegativeInteger  = XSDNamespace + "nonNegativeInteger"
	XSDPositiveInteger     = XSDNamespace + "positiveInteger"
	XSDNonPositiveInteger  = XSDNamespace + "nonPositiveInteger"
	XSDNegativeInteger     = XSDNamespace + "negativeInteger"
)

// numericDatatypes lists the datatypes compared numerically in filters.
var numericDatatypes = map[string]bool{
	XSDByte:               true,
	XSDShort:              true,
	XSDInt:                true,
	XSDInteger:            true,
	XSDLong:               true,
	XSDDecimal:            true,
	XSDFloat:              true,
	XSDDouble:             true,
	XSDUnsignedByte:       true,
	XSDUnsignedShort:      true,
	XSDUnsignedInt:        true,
	XSDUnsignedLong:       true,
	XSDNonNegativeInteger: true,
	XSDPositiveInteger:    true,
	XSDNonPositiveInteger: true,
	XSDNegativeInteger:    true,
}

// IsNumericDatatype reports whether the datatype belongs to the XSD numeric
// hierarchy.
func IsNumericDatatype(datatype string) bool {
	return numericDatatypes[datatype]
}
