// Package planir provides the relational operator tree that is compiled
// into a single SPARQL SELECT query.
//
// The tree is built by the host (a plan file, a test, an optimizer) and
// handed to internal/querysparql. This package holds values only; it has no
// knowledge of SPARQL text.
//
// OPERATORS:
//
//	Scan     - leaf; reads one table through its Binding
//	Filter   - keeps rows matching a Predicate over input columns
//	Project  - narrows and reorders the input columns
//	Sort     - orders rows by one or more input columns
//	Limit    - caps the row count, with an optional offset
//
// Column indices in Filter, Project and Sort are relative to the node's
// input, so a Sort above a Project refers to projected positions.
//
// TABLE BINDINGS:
//
// A Scan carries the Binding that gives its table semantics:
//
//	ModeProperty  one predicate; columns are exactly (s, o)
//	ModeClass     one rdf:type class; columns are s plus discovered properties
//	ModeMapping   one class; columns are s plus explicitly configured properties
//
// The subject column "s" is always first and always string-typed. Property
// columns of class and mapping tables are optional: a subject with no value
// for a column still produces a row.
//
// SEALED INTERFACES:
//
// Node, Predicate and Value are sealed with marker methods. Compilers switch
// exhaustively over them; both value and pointer forms are accepted.
//
//	switch n := node.(type) {
//	case Scan, *Scan:
//	case Filter, *Filter:
//	...
//	}
//
// PREDICATES:
//
// Comparison and Search are the leaves a compiler may translate. And, Or and
// Not exist so a host can describe conditions the compiler must reject
// rather than silently drop; And is accepted when every conjunct is a leaf.
package planir
