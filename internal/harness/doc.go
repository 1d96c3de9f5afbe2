// Package harness runs conformance scenarios against a local triple store.
//
// A scenario loads a graph, opens an engine over it with the given model
// settings and runs a list of plans, checking each against expectations.
//
// # Scenario Format
//
//	name: range_filter
//	description: "Ages between 30 and 41"
//	model:
//	  table_mode: property
//	graph: |
//	  <http://example.com/a> <http://xmlns.com/foaf/0.1/age> "40"^^<http://www.w3.org/2001/XMLSchema#integer> .
//	queries:
//	  - name: in_range
//	    plan:
//	      table: age
//	      ops:
//	        - filter: {column: o, ranges: [{lower: 30, upper: 41}]}
//	    expect:
//	      query_contains: ["FILTER ((?o >= 30 && ?o <= 41))"]
//	      columns: [s, o]
//	      rows:
//	        - [http://example.com/a, 40]
//
// The model block accepts every model file field except endpoint, which
// the harness points at a fresh store. graph holds inline N-Quads;
// graph_file names a file relative to the scenario.
//
// # Expectations
//
//   - error: the failure's error code, or a substring of its message
//   - query_contains: substrings of the generated query text
//   - columns: the result column names
//   - rows: the result rows in order; cells compare as text and ~ is null
//   - row_count: the number of result rows
//
// # Deterministic Output
//
// Query ids are fixed per scenario ("<name>-1", "<name>-2", ...), so a
// run's snapshot is stable and can be compared with RunWithGolden.
package harness
