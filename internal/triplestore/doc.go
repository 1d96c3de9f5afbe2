// Package triplestore is a SQLite-backed quad store with an evaluator for
// the SPARQL subset rdfsql emits: SELECT [DISTINCT], basic graph patterns,
// OPTIONAL, GRAPH, FILTER comparisons with && || and !, ORDER BY, LIMIT and
// OFFSET.
//
// The default graph is the union of all graphs. GRAPH blocks match only
// named graphs.
package triplestore
