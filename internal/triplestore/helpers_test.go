package triplestore

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/rdfsql/internal/endpoint"
	"github.com/roach88/rdfsql/internal/rdf"
)

const peopleNQuads = `
<http://ex.org/id/john> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://xmlns.com/foaf/0.1/Person> .
<http://ex.org/id/john> <http://xmlns.com/foaf/0.1/name> "John Doe" .
<http://ex.org/id/john> <http://xmlns.com/foaf/0.1/age> "42"^^<http://www.w3.org/2001/XMLSchema#integer> .
<http://ex.org/id/jane> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://xmlns.com/foaf/0.1/Person> .
<http://ex.org/id/jane> <http://xmlns.com/foaf/0.1/name> "Jane Doe" .
<http://ex.org/id/jane> <http://xmlns.com/foaf/0.1/age> "40"^^<http://www.w3.org/2001/XMLSchema#integer> .
<http://ex.org/id/jane> <http://xmlns.com/foaf/0.1/knows> <http://ex.org/id/john> .
<http://ex.org/id/rex> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://ex.org/Dog> .
`

// createTestStore opens a file-backed store in a temp dir and loads nquads.
func createTestStore(t *testing.T, nquads string) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	if nquads != "" {
		_, err := s.Load(context.Background(), strings.NewReader(nquads))
		require.NoError(t, err)
	}
	return s
}

// query runs q and returns the variables and rows.
func query(t *testing.T, s *Store, q string) ([]string, [][]rdf.Term) {
	t.Helper()
	cur, err := s.Query(context.Background(), q)
	require.NoError(t, err)
	vars := cur.Vars()
	rows, err := endpoint.Collect(cur)
	require.NoError(t, err)
	return vars, rows
}

// column returns the string form of one column, with "" for unbound.
func column(rows [][]rdf.Term, i int) []string {
	out := make([]string, len(rows))
	for r, row := range rows {
		if row[i] != nil {
			out[r] = row[i].String()
		}
	}
	return out
}
