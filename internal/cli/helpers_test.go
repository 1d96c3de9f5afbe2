package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/rdfsql/internal/testutil"
	"github.com/roach88/rdfsql/internal/triplestore"
)

// testEnv is a temp dir holding a FOAF store and a model file pointing at it.
type testEnv struct {
	dir   string
	db    string
	model string
}

func newTestEnv(t *testing.T, modelExtra string) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:   dir,
		db:    filepath.Join(dir, "graph.db"),
		model: filepath.Join(dir, "rdfsql.yaml"),
	}

	st, err := triplestore.Open(env.db)
	require.NoError(t, err)
	_, err = st.Load(context.Background(), strings.NewReader(testutil.FOAFGraph))
	require.NoError(t, err)
	require.NoError(t, st.Close())

	env.write(t, "rdfsql.yaml", "endpoint: \"sqlite:"+env.db+"\"\n"+modelExtra)
	return env
}

func (e *testEnv) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// run executes the root command and returns stdout, stderr and the error.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

const rangePlan = `table: age
ops:
  - filter: {column: o, ranges: [{lower: 30, upper: 41}]}
`
