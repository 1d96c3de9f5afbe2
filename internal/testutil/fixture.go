package testutil

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/rdfsql/internal/triplestore"
)

// FOAF IRIs used by the sample graph.
const (
	FOAFPerson = "http://xmlns.com/foaf/0.1/Person"
	FOAFName   = "http://xmlns.com/foaf/0.1/name"
	FOAFAge    = "http://xmlns.com/foaf/0.1/age"
	FOAFKnows  = "http://xmlns.com/foaf/0.1/knows"

	JohnDoe = "http://www.example.com/id/johndoe"
	JaneDoe = "http://www.example.com/id/janedoe"
)

// FOAFGraph is a two-person FOAF graph in N-Triples.
const FOAFGraph = `<http://www.example.com/id/johndoe> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://xmlns.com/foaf/0.1/Person> .
<http://www.example.com/id/johndoe> <http://xmlns.com/foaf/0.1/name> "John Doe" .
<http://www.example.com/id/johndoe> <http://xmlns.com/foaf/0.1/age> "42"^^<http://www.w3.org/2001/XMLSchema#integer> .
<http://www.example.com/id/janedoe> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://xmlns.com/foaf/0.1/Person> .
<http://www.example.com/id/janedoe> <http://xmlns.com/foaf/0.1/name> "Jane Doe" .
<http://www.example.com/id/janedoe> <http://xmlns.com/foaf/0.1/age> "40"^^<http://www.w3.org/2001/XMLSchema#integer> .
`

// NewStore opens a store in a temp dir, loads nquads into it and closes it
// when the test ends.
func NewStore(t testing.TB, nquads string) *triplestore.Store {
	t.Helper()

	s, err := triplestore.Open(filepath.Join(t.TempDir(), "graph.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	if nquads != "" {
		_, err := s.Load(context.Background(), strings.NewReader(nquads))
		require.NoError(t, err)
	}
	return s
}

// NewFOAFStore returns a store holding FOAFGraph.
func NewFOAFStore(t testing.TB) *triplestore.Store {
	t.Helper()
	return NewStore(t, FOAFGraph)
}
