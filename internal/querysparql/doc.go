// Package querysparql compiles a planir operator tree into one SPARQL
// SELECT query.
//
// Compilation visits the tree bottom-up into an Implementor, a single-use
// accumulator, then renders the query in a fixed clause order:
//
//	SELECT [DISTINCT] ?v ...
//	WHERE {
//	  <pattern block>
//	  FILTER (<fragment> && ...)
//	}
//	ORDER BY DIR(?v) ...
//	LIMIT n
//	OFFSET m
//
// Property tables bind one mandatory triple ?s <p> ?o. Class and mapping
// tables bind ?s a <C> plus one OPTIONAL { ?s <p> ?col } per column, and
// select DISTINCT. Omitted clauses produce no line.
//
// Filters are translated before variable names are known: fragments carry
// Placeholder, which rendering replaces with the column's variable.
//
// Anything outside this shape is rejected with *UnsupportedError; no
// partial query is ever produced.
package querysparql
