// Package probe discovers table layouts by sampling an RDF endpoint.
//
// The prober lists predicates and classes, samples the objects of a
// predicate to infer a column type, and names columns after their
// predicates. Every query it sends is a plain SELECT that the HTTP endpoint
// and the local triple store both answer.
//
// Type resolution (ResolveType) follows a fixed policy:
//
//	no sample, or only IRIs/blank nodes  -> string
//	exactly one literal datatype          -> scalar.FromDatatype
//	several datatypes, class or mapping   -> string
//	several datatypes, property table     -> *AmbiguousTypeError
package probe
