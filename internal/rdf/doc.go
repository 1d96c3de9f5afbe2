// Package rdf provides the RDF term types shared by the prober, the local
// triple store, the HTTP endpoint and the literal decoder.
//
// This package contains value types only. It imports nothing internal, so
// every other package can depend on it without cycles.
//
// Key design constraints:
//   - Term is a sealed interface: IRI, BlankNode and Literal are the only terms
//   - An unbound variable is represented by a nil Term, never by a zero value
//   - Literals keep their lexical form; parsing into Go scalars belongs to
//     internal/scalar
package rdf
