// Package schema exposes an RDF endpoint as a set of virtual tables.
//
// A Schema enumerates its tables once, in one of three modes (property,
// class or mapping), and each Table resolves its binding and column types
// once on first use. Both caches live as long as their owner and are never
// refreshed; concurrent first accesses are collapsed into a single probe.
package schema
