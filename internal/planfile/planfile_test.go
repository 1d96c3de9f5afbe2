package planfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rdfsql/internal/planir"
	"github.com/roach88/rdfsql/internal/rdf"
	"github.com/roach88/rdfsql/internal/scalar"
	"github.com/roach88/rdfsql/internal/schema"
)

const ageIRI = "http://xmlns.com/foaf/0.1/age"

func ageScan() (planir.Scan, []schema.Column) {
	scan := planir.Scan{Table: "age", Binding: planir.PropertyBinding(ageIRI)}
	cols := []schema.Column{
		{Name: "s", Type: scalar.String},
		{Name: "o", Predicate: ageIRI, Type: scalar.BigInt},
	}
	return scan, cols
}

func personScan() (planir.Scan, []schema.Column) {
	scan := planir.Scan{Table: "Person", Binding: planir.ClassBinding(planir.ModeClass,
		"http://xmlns.com/foaf/0.1/Person",
		[]planir.ColumnSpec{
			{Name: "name", Predicate: "http://xmlns.com/foaf/0.1/name"},
			{Name: "height", Predicate: "http://example.org/height"},
			{Name: "active", Predicate: "http://example.org/active"},
		})}
	cols := []schema.Column{
		{Name: "s", Type: scalar.String},
		{Name: "name", Type: scalar.String},
		{Name: "height", Type: scalar.Decimal},
		{Name: "active", Type: scalar.Bool},
	}
	return scan, cols
}

func TestParse(t *testing.T) {
	p, err := Parse([]byte(`
table: age
ops:
  - filter: {column: o, ranges: [{lower: 30, upper: 41}]}
  - sort: [{column: s, direction: desc}]
  - limit: {fetch: 1, offset: 2}
`))
	require.NoError(t, err)

	assert.Equal(t, "age", p.Table)
	require.Len(t, p.Ops, 3)
	assert.Equal(t, "filter", p.Ops[0].Kind())
	assert.Equal(t, "sort", p.Ops[1].Kind())
	assert.Equal(t, "limit", p.Ops[2].Kind())
	assert.Equal(t, &LimitSpec{Fetch: 1, Offset: 2}, p.Ops[2].Limit)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing table", "ops: []", "table is required"},
		{"unknown field", "table: age\nbogus: 1", "field bogus not found"},
		{"two operators", "table: age\nops:\n  - {project: [s], limit: {fetch: 1}}", "got 2"},
		{"no operator", "table: age\nops:\n  - {}", "got 0"},
		{"bad yaml", "table: [", "parsing plan"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("table: name\n"), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "name", p.Table)
	assert.Empty(t, p.Ops)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading plan")
}

func TestBuild_RangeSortLimit(t *testing.T) {
	scan, cols := ageScan()
	p, err := Parse([]byte(`
table: age
ops:
  - filter: {column: o, ranges: [{lower: 30, upper: 41}, {point: 50}]}
  - sort: [{column: s, direction: desc}]
  - limit: {fetch: 1}
`))
	require.NoError(t, err)

	got, err := Build(p, scan, cols)
	require.NoError(t, err)

	want := planir.Limit{
		Fetch: 1,
		Input: planir.Sort{
			Keys: []planir.SortKey{{Column: 0, Direction: planir.Descending}},
			Input: planir.Filter{
				Input: scan,
				Condition: planir.Search{Column: 1, Ranges: []planir.Range{
					planir.Between(planir.Int(30), planir.Int(41)),
					planir.Point(planir.Int(50)),
				}},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, planir.Validate(got))
}

func TestBuild_ProjectResolvesAgainstInput(t *testing.T) {
	scan, cols := personScan()
	p, err := Parse([]byte(`
table: Person
ops:
  - project: [name, s]
  - sort: [{column: s}]
`))
	require.NoError(t, err)

	got, err := Build(p, scan, cols)
	require.NoError(t, err)

	want := planir.Sort{
		Keys:  []planir.SortKey{{Column: 1, Direction: planir.Ascending}},
		Input: planir.Project{Input: scan, Columns: []int{1, 0}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_CoercesByColumnType(t *testing.T) {
	scan, cols := personScan()
	p, err := Parse([]byte(`
table: Person
ops:
  - filter:
      and:
        - {column: name, op: like, value: "J%"}
        - {column: active, op: "=", value: true}
        - not: {column: height, op: ">", value: 1.85}
        - or:
            - {column: name, op: "<>", value: 42}
`))
	require.NoError(t, err)

	node, err := Build(p, scan, cols)
	require.NoError(t, err)

	f, ok := node.(planir.Filter)
	require.True(t, ok)
	and, ok := f.Condition.(planir.And)
	require.True(t, ok)
	require.Len(t, and.Predicates, 4)

	assert.Equal(t, planir.Comparison{Column: 1, Op: planir.OpLike, Value: planir.String("J%")}, and.Predicates[0])
	assert.Equal(t, planir.Comparison{Column: 3, Op: planir.OpEq, Value: planir.Bool(true)}, and.Predicates[1])

	not, ok := and.Predicates[2].(planir.Not)
	require.True(t, ok)
	cmpHeight, ok := not.Predicate.(planir.Comparison)
	require.True(t, ok)
	assert.Equal(t, planir.OpGt, cmpHeight.Op)
	assert.Equal(t, "1.85", cmpHeight.Value.String())
	assert.IsType(t, planir.Decimal{}, cmpHeight.Value)

	or, ok := and.Predicates[3].(planir.Or)
	require.True(t, ok)
	assert.Equal(t, planir.Comparison{Column: 1, Op: planir.OpNeq, Value: planir.String("42")}, or.Predicates[0])
}

func TestBuild_TemporalOperandsAreTyped(t *testing.T) {
	scan := planir.Scan{Table: "born", Binding: planir.PropertyBinding("http://ex.org/born")}
	cols := []schema.Column{
		{Name: "s", Type: scalar.String},
		{Name: "o", Predicate: "http://ex.org/born", Type: scalar.Date},
	}
	p, err := Parse([]byte("table: born\nops:\n  - filter: {column: o, ranges: [{lower: 2000-01-01, upper: '2009-12-31'}]}\n"))
	require.NoError(t, err)

	node, err := Build(p, scan, cols)
	require.NoError(t, err)

	want := planir.Filter{Input: scan, Condition: planir.Search{Column: 1, Ranges: []planir.Range{
		planir.Between(
			planir.Typed{Lexical: "2000-01-01", Datatype: rdf.XSDDate},
			planir.Typed{Lexical: "2009-12-31", Datatype: rdf.XSDDate},
		),
	}}}
	if diff := cmp.Diff(want, node); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}

	bad, err := Parse([]byte("table: born\nops:\n  - filter: {column: o, op: '>', value: 01/02/2000}\n"))
	require.NoError(t, err)
	_, err = Build(bad, scan, cols)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a valid DATE")
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown column", "table: age\nops:\n  - project: [missing]", `unknown column "missing"`},
		{"projected away", "table: age\nops:\n  - project: [s]\n  - sort: [{column: o}]", "op 1 (sort)"},
		{"bad direction", "table: age\nops:\n  - sort: [{column: s, direction: up}]", "unknown sort direction"},
		{"bad operator", "table: age\nops:\n  - filter: {column: o, op: '~', value: 1}", "unknown comparison operator"},
		{"not an integer", "table: age\nops:\n  - filter: {column: o, op: '=', value: abc}", "is not an integer"},
		{"missing value", "table: age\nops:\n  - filter: {column: o, op: '='}", "missing value"},
		{"non-scalar", "table: age\nops:\n  - filter: {column: o, op: '=', value: [1]}", "must be a scalar"},
	}
	scan, cols := ageScan()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)
			_, err = Build(p, scan, cols)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
