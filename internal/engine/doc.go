// Package engine runs relational plans against an RDF schema.
//
// An Engine owns a schema.Schema and answers plans in three steps:
//
//  1. Compile the operator tree into SPARQL text (querysparql.Compile).
//  2. Send the text to the endpoint through the scanned table.
//  3. Decode each solution into typed row values (schema.Table.RunQuery).
//
// Every execution gets a query id (UUIDv7 by default) that appears in the
// log lines and in any QueryError it returns.
//
// Open builds the endpoint from a model: http:// and https:// endpoints use
// the SPARQL protocol over HTTP, sqlite:<path> endpoints use a local
// triple store.
package engine
