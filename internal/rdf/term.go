package rdf

import (
	"strings"
)

// Term is a sealed interface representing an RDF term.
// Only IRI, BlankNode and Literal implement it.
type Term interface {
	rdfTerm() // Sealed - only these types implement it

	// String returns the N-Triples form of the term.
	String() string
}

// IRI is an absolute IRI, stored without angle brackets.
type IRI string

func (IRI) rdfTerm() {}

// String returns the IRI in angle brackets.
func (i IRI) String() string {
	return "<" + string(i) + ">"
}

// BlankNode is a blank node, stored without the "_:" prefix.
type BlankNode string

func (BlankNode) rdfTerm() {}

// String returns the blank node label with its "_:" prefix.
func (b BlankNode) String() string {
	return "_:" + string(b)
}

// Literal is an RDF literal.
//
// Datatype is empty for simple literals and for language-tagged literals;
// use DatatypeIRI for the RDF 1.1 effective datatype.
type Literal struct {
	Lexical  string
	Datatype string
	Lang     string
}

func (Literal) rdfTerm() {}

// NewLiteral creates a typed literal.
func NewLiteral(lexical, datatype string) Literal {
	if datatype == XSDString {
		datatype = ""
	}
	return Literal{Lexical: lexical, Datatype: datatype}
}

// NewString creates a simple (xsd:string) literal.
func NewString(lexical string) Literal {
	return Literal{Lexical: lexical}
}

// NewLangString creates a language-tagged literal.
func NewLangString(lexical, lang string) Literal {
	return Literal{Lexical: lexical, Lang: strings.ToLower(lang)}
}

// DatatypeIRI returns the effective datatype: the declared one, rdf:langString
// for language-tagged literals, or xsd:string for simple literals.
func (l Literal) DatatypeIRI() string {
	switch {
	case l.Datatype != "":
		return l.Datatype
	case l.Lang != "":
		return RDFLangString
	default:
		return XSDString
	}
}

// String returns the N-Triples form of the literal.
func (l Literal) String() string {
	var b strings.Builder
	b.WriteByte('"')
	b.WriteString(EscapeString(l.Lexical))
	b.WriteByte('"')
	switch {
	case l.Lang != "":
		b.WriteByte('@')
		b.WriteString(l.Lang)
	case l.Datatype != "" && l.Datatype != XSDString:
		b.WriteString("^^<")
		b.WriteString(l.Datatype)
		b.WriteByte('>')
	}
	return b.String()
}

// EscapeString escapes a lexical form for use inside a double-quoted
// N-Triples or SPARQL string.
func EscapeString(s string) string {
	if !strings.ContainsAny(s, "\"\\\n\r\t") {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Equal reports whether two terms are the same RDF term.
// Two nil terms (both unbound) are equal.
func Equal(a, b Term) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case IRI:
		y, ok := b.(IRI)
		return ok && x == y
	case BlankNode:
		y, ok := b.(BlankNode)
		return ok && x == y
	case Literal:
		y, ok := b.(Literal)
		return ok && x.Lexical == y.Lexical && x.DatatypeIRI() == y.DatatypeIRI() && x.Lang == y.Lang
	default:
		return false
	}
}

// IsLiteral reports whether t is a literal.
func IsLiteral(t Term) bool {
	_, ok := t.(Literal)
	return ok
}
