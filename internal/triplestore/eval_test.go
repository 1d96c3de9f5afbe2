package triplestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rdfsql/internal/rdf"
)

func TestEval_DistinctPredicates(t *testing.T) {
	s := createTestStore(t, peopleNQuads)

	vars, rows := query(t, s, `SELECT DISTINCT ?p
WHERE {
  ?s ?p ?o .
  FILTER (?p != <http://www.w3.org/1999/02/22-rdf-syntax-ns#type>)
}
ORDER BY ASC(?p)`)

	assert.Equal(t, []string{"p"}, vars)
	assert.Equal(t, []string{
		"<http://xmlns.com/foaf/0.1/age>",
		"<http://xmlns.com/foaf/0.1/knows>",
		"<http://xmlns.com/foaf/0.1/name>",
	}, column(rows, 0))
}

func TestEval_DistinctClasses(t *testing.T) {
	s := createTestStore(t, peopleNQuads)

	_, rows := query(t, s, `SELECT DISTINCT ?c WHERE { ?s a ?c . } ORDER BY ASC(?c)`)
	assert.Equal(t, []string{"<http://ex.org/Dog>", "<http://xmlns.com/foaf/0.1/Person>"}, column(rows, 0))
}

func TestEval_OptionalKeepsRows(t *testing.T) {
	s := createTestStore(t, peopleNQuads)

	_, rows := query(t, s, `SELECT DISTINCT ?s ?knows
WHERE {
  ?s a <http://xmlns.com/foaf/0.1/Person> .
  OPTIONAL { ?s <http://xmlns.com/foaf/0.1/knows> ?knows . }
}
ORDER BY ASC(?s)`)

	require.Len(t, rows, 2)
	assert.Equal(t, rdf.IRI("http://ex.org/id/jane"), rows[0][0])
	assert.Equal(t, rdf.IRI("http://ex.org/id/john"), rows[0][1])
	assert.Equal(t, rdf.IRI("http://ex.org/id/john"), rows[1][0])
	assert.Nil(t, rows[1][1])
}

func TestEval_NumericRangeFilter(t *testing.T) {
	s := createTestStore(t, peopleNQuads)

	_, rows := query(t, s, `SELECT ?s ?o
WHERE {
  ?s <http://xmlns.com/foaf/0.1/age> ?o .
  FILTER ((?o >= 30 && ?o <= 41))
}`)

	require.Len(t, rows, 1)
	assert.Equal(t, rdf.IRI("http://ex.org/id/jane"), rows[0][0])
	assert.Equal(t, rdf.NewLiteral("40", rdf.XSDInteger), rows[0][1])
}

func TestEval_NumericEqualityAcrossDatatypes(t *testing.T) {
	s := createTestStore(t, peopleNQuads)

	_, rows := query(t, s, `SELECT ?s WHERE { ?s <http://xmlns.com/foaf/0.1/age> ?o . FILTER (?o = 42.0) }`)
	assert.Equal(t, []string{"<http://ex.org/id/john>"}, column(rows, 0))
}

func TestEval_StringFilters(t *testing.T) {
	s := createTestStore(t, peopleNQuads)

	tests := []struct {
		name   string
		filter string
		want   []string
	}{
		{"equal", `?o = 'John Doe'`, []string{"<http://ex.org/id/john>"}},
		{"not equal", `?o != 'John Doe'`, []string{"<http://ex.org/id/jane>"}},
		{"less than", `?o < "K"`, []string{"<http://ex.org/id/john>", "<http://ex.org/id/jane>"}},
		{"or", `?o = 'John Doe' || ?o = 'Jane Doe'`, []string{"<http://ex.org/id/john>", "<http://ex.org/id/jane>"}},
		{"not", `!(?o = 'John Doe')`, []string{"<http://ex.org/id/jane>"}},
		{"string vs number never equal", `?o = 42`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, rows := query(t, s, `SELECT ?s WHERE { ?s <http://xmlns.com/foaf/0.1/name> ?o . FILTER (`+tt.filter+`) }`)
			if tt.want == nil {
				assert.Empty(t, rows)
				return
			}
			assert.Equal(t, tt.want, column(rows, 0))
		})
	}
}

func TestEval_IncomparableOrderingFiltersOut(t *testing.T) {
	s := createTestStore(t, peopleNQuads)

	// An IRI has no ordering against a number, so the filter is false.
	_, rows := query(t, s, `SELECT ?s WHERE { ?s <http://xmlns.com/foaf/0.1/knows> ?o . FILTER (?o > 1) }`)
	assert.Empty(t, rows)
}

func TestEval_UnboundVariableFiltersOut(t *testing.T) {
	s := createTestStore(t, peopleNQuads)

	_, rows := query(t, s, `SELECT ?s WHERE { ?s a <http://xmlns.com/foaf/0.1/Person> . FILTER (?missing = 1) }`)
	assert.Empty(t, rows)
}

func TestEval_OrderLimitOffset(t *testing.T) {
	s := createTestStore(t, peopleNQuads)

	_, rows := query(t, s, `SELECT ?s ?o WHERE { ?s <http://xmlns.com/foaf/0.1/name> ?o . } ORDER BY DESC(?s) LIMIT 1`)
	require.Len(t, rows, 1)
	assert.Equal(t, rdf.NewString("John Doe"), rows[0][1])

	_, rows = query(t, s, `SELECT ?s WHERE { ?s <http://xmlns.com/foaf/0.1/name> ?o . } ORDER BY DESC(?s) LIMIT 1 OFFSET 1`)
	assert.Equal(t, []string{"<http://ex.org/id/jane>"}, column(rows, 0))

	_, rows = query(t, s, `SELECT ?s WHERE { ?s <http://xmlns.com/foaf/0.1/name> ?o . } OFFSET 5`)
	assert.Empty(t, rows)

	_, rows = query(t, s, `SELECT ?s WHERE { ?s <http://xmlns.com/foaf/0.1/name> ?o . } LIMIT 0`)
	assert.Empty(t, rows)
}

func TestEval_OrderByNumericValue(t *testing.T) {
	s := createTestStore(t, `
<http://ex.org/a> <http://ex.org/n> "9"^^<http://www.w3.org/2001/XMLSchema#integer> .
<http://ex.org/b> <http://ex.org/n> "10"^^<http://www.w3.org/2001/XMLSchema#integer> .
<http://ex.org/c> <http://ex.org/n> "-1.5"^^<http://www.w3.org/2001/XMLSchema#decimal> .
`)

	_, rows := query(t, s, `SELECT ?s WHERE { ?s <http://ex.org/n> ?n . } ORDER BY ASC(?n)`)
	assert.Equal(t, []string{"<http://ex.org/c>", "<http://ex.org/a>", "<http://ex.org/b>"}, column(rows, 0))
}

func TestEval_TemporalAndBooleanComparison(t *testing.T) {
	s := createTestStore(t, `
<http://ex.org/a> <http://ex.org/d> "2020-01-01"^^<http://www.w3.org/2001/XMLSchema#date> .
<http://ex.org/b> <http://ex.org/d> "2021-06-30"^^<http://www.w3.org/2001/XMLSchema#date> .
<http://ex.org/a> <http://ex.org/ok> "true"^^<http://www.w3.org/2001/XMLSchema#boolean> .
<http://ex.org/b> <http://ex.org/ok> "false"^^<http://www.w3.org/2001/XMLSchema#boolean> .
`)

	_, rows := query(t, s, `SELECT ?s WHERE { ?s <http://ex.org/d> ?d . FILTER (?d > "2020-12-31"^^<http://www.w3.org/2001/XMLSchema#date>) }`)
	assert.Equal(t, []string{"<http://ex.org/b>"}, column(rows, 0))

	_, rows = query(t, s, `SELECT ?s WHERE { ?s <http://ex.org/ok> ?v . FILTER (?v = true) }`)
	assert.Equal(t, []string{"<http://ex.org/a>"}, column(rows, 0))

	_, rows = query(t, s, `SELECT ?s WHERE { ?s <http://ex.org/ok> ?v . FILTER (?v) }`)
	assert.Equal(t, []string{"<http://ex.org/a>"}, column(rows, 0))
}

func TestEval_SelectStar(t *testing.T) {
	s := createTestStore(t, peopleNQuads)

	vars, rows := query(t, s, `SELECT * WHERE { ?who <http://xmlns.com/foaf/0.1/knows> ?whom . }`)
	assert.Equal(t, []string{"who", "whom"}, vars)
	require.Len(t, rows, 1)
}

func TestEval_RepeatedVariable(t *testing.T) {
	s := createTestStore(t, `
<http://ex.org/a> <http://ex.org/self> <http://ex.org/a> .
<http://ex.org/b> <http://ex.org/self> <http://ex.org/a> .
`)

	_, rows := query(t, s, `SELECT ?x WHERE { ?x <http://ex.org/self> ?x . }`)
	assert.Equal(t, []string{"<http://ex.org/a>"}, column(rows, 0))
}

func TestEval_NamedGraphs(t *testing.T) {
	s := createTestStore(t, `
<http://ex.org/a> <http://ex.org/p> "1" <http://ex.org/g1> .
<http://ex.org/a> <http://ex.org/p> "1" <http://ex.org/g2> .
<http://ex.org/b> <http://ex.org/p> "2" .
`)

	// The default graph is the union of all graphs, without duplicates.
	_, rows := query(t, s, `SELECT ?s WHERE { ?s <http://ex.org/p> ?o . }`)
	assert.Equal(t, []string{"<http://ex.org/a>", "<http://ex.org/b>"}, column(rows, 0))

	// GRAPH only matches named graphs.
	_, rows = query(t, s, `SELECT ?s ?g WHERE { GRAPH ?g { ?s <http://ex.org/p> ?o . } }`)
	assert.Equal(t, []string{"<http://ex.org/a>", "<http://ex.org/a>"}, column(rows, 0))
	assert.Equal(t, []string{"<http://ex.org/g1>", "<http://ex.org/g2>"}, column(rows, 1))

	_, rows = query(t, s, `SELECT DISTINCT ?s WHERE { GRAPH ?_g { ?s <http://ex.org/p> ?o . } }`)
	assert.Equal(t, []string{"<http://ex.org/a>"}, column(rows, 0))

	_, rows = query(t, s, `SELECT ?s WHERE { GRAPH <http://ex.org/g2> { ?s ?p ?o . } }`)
	assert.Equal(t, []string{"<http://ex.org/a>"}, column(rows, 0))
}

func TestEval_LanguageTaggedLiteral(t *testing.T) {
	s := createTestStore(t, `
<http://ex.org/a> <http://ex.org/label> "chat"@fr .
<http://ex.org/b> <http://ex.org/label> "chat"@en .
`)

	_, rows := query(t, s, `SELECT ?s WHERE { ?s <http://ex.org/label> "chat"@EN . }`)
	assert.Equal(t, []string{"<http://ex.org/b>"}, column(rows, 0))
}

func TestCompareTerms_Rank(t *testing.T) {
	assert.Equal(t, -1, compareTerms(nil, rdf.BlankNode("b")))
	assert.Equal(t, -1, compareTerms(rdf.BlankNode("b"), rdf.IRI("http://a")))
	assert.Equal(t, -1, compareTerms(rdf.IRI("http://z"), rdf.NewString("a")))
	assert.Equal(t, 1, compareTerms(rdf.NewLiteral("10", rdf.XSDInteger), rdf.NewLiteral("9", rdf.XSDInteger)))
	assert.Equal(t, 0, compareTerms(nil, nil))
}
