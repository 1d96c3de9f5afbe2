package querysparql

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rdfsql/internal/planir"
)

const foaf = "http://xmlns.com/foaf/0.1/"

func personScan() planir.Scan {
	return planir.Scan{
		Table: "Person",
		Binding: planir.ClassBinding(planir.ModeClass, foaf+"Person", []planir.ColumnSpec{
			{Name: "name", Predicate: foaf + "name"},
			{Name: "age", Predicate: foaf + "age"},
		}),
	}
}

func propertyScan(local string) planir.Scan {
	return planir.Scan{Table: local, Binding: planir.PropertyBinding(foaf + local)}
}

func TestCompile_ScenarioA_ClassProjection(t *testing.T) {
	q, err := Compile(planir.Project{Input: personScan(), Columns: []int{0, 1}})
	require.NoError(t, err)

	assert.Equal(t, "SELECT DISTINCT ?s ?name\n"+
		"WHERE {\n"+
		"  ?s a <http://xmlns.com/foaf/0.1/Person> .\n"+
		"  OPTIONAL { ?s <http://xmlns.com/foaf/0.1/name> ?name }\n"+
		"  OPTIONAL { ?s <http://xmlns.com/foaf/0.1/age> ?age }\n"+
		"}", q.Text)
	assert.Equal(t, []string{"s", "name"}, q.Columns)
	assert.True(t, q.Distinct)
	assert.Equal(t, "Person", q.Table)
}

func TestCompile_ScenarioB_MergedRange(t *testing.T) {
	node := planir.Filter{
		Input: propertyScan("age"),
		Condition: planir.Search{Column: 1, Ranges: []planir.Range{
			planir.Between(planir.Int(30), planir.Int(41)),
		}},
	}

	q, err := Compile(node)
	require.NoError(t, err)

	assert.Contains(t, q.Text, "(?o >= 30 && ?o <= 41)")
	assert.Equal(t, 1, strings.Count(q.Text, "FILTER"))
	assert.NotContains(t, q.Text, "DISTINCT")
	assert.Equal(t, []string{"s", "o"}, q.Columns)
}

func TestCompile_ScenarioC_SortLimit(t *testing.T) {
	node := planir.Limit{
		Input: planir.Sort{
			Input: propertyScan("name"),
			Keys:  []planir.SortKey{{Column: 0, Direction: planir.Descending}},
		},
		Fetch: 1,
	}

	q, err := Compile(node)
	require.NoError(t, err)

	assert.Equal(t, "SELECT ?s ?o\n"+
		"WHERE {\n"+
		"  ?s <http://xmlns.com/foaf/0.1/name> ?o .\n"+
		"}\n"+
		"ORDER BY DESC(?s)\n"+
		"LIMIT 1", q.Text)
}

func TestCompile_Deterministic(t *testing.T) {
	trees := []planir.Node{
		personScan(),
		planir.Filter{Input: personScan(), Condition: planir.And{Predicates: []planir.Predicate{
			planir.Comparison{Column: 2, Op: planir.OpGt, Value: planir.Int(1)},
			planir.Comparison{Column: 1, Op: planir.OpEq, Value: planir.String("x")},
			planir.Comparison{Column: 0, Op: planir.OpNeq, Value: planir.String("y")},
		}}},
		planir.Limit{Input: planir.Sort{Input: propertyScan("age"), Keys: []planir.SortKey{{Column: 1}}}, Fetch: 3, Offset: 1},
	}

	for _, tree := range trees {
		first, err := Compile(tree)
		require.NoError(t, err)
		for i := 0; i < 20; i++ {
			again, err := Compile(tree)
			require.NoError(t, err)
			require.Equal(t, first.Text, again.Text)
		}
	}
}

func TestCompile_FiltersOrderedByColumn(t *testing.T) {
	node := planir.Filter{Input: personScan(), Condition: planir.And{Predicates: []planir.Predicate{
		planir.Comparison{Column: 2, Op: planir.OpGt, Value: planir.Int(1)},
		planir.Comparison{Column: 1, Op: planir.OpEq, Value: planir.String("x")},
	}}}

	q, err := Compile(node)
	require.NoError(t, err)
	assert.Contains(t, q.Text, "FILTER (?name = 'x' && ?age > 1)")
}

func TestCompile_EqualityQuoting(t *testing.T) {
	str, err := Compile(planir.Filter{
		Input:     propertyScan("name"),
		Condition: planir.Comparison{Column: 1, Op: planir.OpEq, Value: planir.String("John Doe")},
	})
	require.NoError(t, err)
	assert.Contains(t, str.Text, "FILTER (?o = 'John Doe')")

	num, err := Compile(planir.Filter{
		Input:     propertyScan("age"),
		Condition: planir.Comparison{Column: 1, Op: planir.OpEq, Value: planir.Int(42)},
	})
	require.NoError(t, err)
	assert.Contains(t, num.Text, "FILTER (?o = 42)")
}

func TestCompile_PointAndIntervalSearch(t *testing.T) {
	q, err := Compile(planir.Filter{
		Input: propertyScan("age"),
		Condition: planir.Search{Column: 1, Ranges: []planir.Range{
			planir.Point(planir.Int(20)),
			planir.Between(planir.Int(30), planir.Int(41)),
		}},
	})
	require.NoError(t, err)
	assert.Contains(t, q.Text, "FILTER (?o = 20 || (?o >= 30 && ?o <= 41))")
}

func TestCompile_DisjunctionGroupedWhenAnded(t *testing.T) {
	q, err := Compile(planir.Filter{
		Input: personScan(),
		Condition: planir.And{Predicates: []planir.Predicate{
			planir.Search{Column: 2, Ranges: []planir.Range{planir.Point(planir.Int(40)), planir.Point(planir.Int(42))}},
			planir.Comparison{Column: 0, Op: planir.OpNeq, Value: planir.String("x")},
		}},
	})
	require.NoError(t, err)
	assert.Contains(t, q.Text, "FILTER (?s != 'x' && (?age = 40 || ?age = 42))")
}

func TestCompile_EmptyProjectionSelectsAll(t *testing.T) {
	for _, node := range []planir.Node{
		personScan(),
		planir.Project{Input: personScan()},
		&planir.Project{Input: personScan(), Columns: []int{}},
	} {
		q, err := Compile(node)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(q.Text, "SELECT DISTINCT ?s ?name ?age\n"))
		assert.Equal(t, []string{"s", "name", "age"}, q.Columns)
	}
}

func TestCompile_SortAboveProject(t *testing.T) {
	node := planir.Sort{
		Input: planir.Project{Input: personScan(), Columns: []int{2, 1}},
		Keys:  []planir.SortKey{{Column: 0, Direction: planir.Descending}, {Column: 1}},
	}

	q, err := Compile(node)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(q.Text, "SELECT DISTINCT ?age ?name\n"))
	assert.Contains(t, q.Text, "ORDER BY DESC(?age) ASC(?name)")
}

func TestCompile_FilterOnUnprojectedColumn(t *testing.T) {
	node := planir.Project{
		Input: planir.Filter{
			Input:     personScan(),
			Condition: planir.Comparison{Column: 2, Op: planir.OpGte, Value: planir.Int(18)},
		},
		Columns: []int{1},
	}

	q, err := Compile(node)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(q.Text, "SELECT DISTINCT ?name\n"))
	assert.Contains(t, q.Text, "FILTER (?age >= 18)")
}

func TestCompile_StackedFiltersSameColumn(t *testing.T) {
	node := planir.Filter{
		Input:     planir.Filter{Input: propertyScan("age"), Condition: planir.Comparison{Column: 1, Op: planir.OpGt, Value: planir.Int(30)}},
		Condition: planir.Comparison{Column: 1, Op: planir.OpLt, Value: planir.Int(41)},
	}

	q, err := Compile(node)
	require.NoError(t, err)
	assert.Contains(t, q.Text, "FILTER (?o > 30 && ?o < 41)")
}

func TestCompile_Limits(t *testing.T) {
	tests := []struct {
		name string
		node planir.Node
		want string
	}{
		{"zero fetch disables", planir.Limit{Input: propertyScan("age")}, "}"},
		{"offset only", planir.Limit{Input: propertyScan("age"), Offset: 2}, "}\nOFFSET 2"},
		{"fetch and offset", planir.Limit{Input: propertyScan("age"), Fetch: 5, Offset: 2}, "}\nLIMIT 5\nOFFSET 2"},
		{
			"nested limits keep the tighter cap",
			planir.Limit{Input: planir.Limit{Input: propertyScan("age"), Fetch: 10}, Fetch: 3},
			"}\nLIMIT 3",
		},
		{
			"outer offset inside inner window",
			planir.Limit{Input: planir.Limit{Input: propertyScan("age"), Fetch: 10, Offset: 1}, Fetch: 5, Offset: 8},
			"}\nLIMIT 2\nOFFSET 9",
		},
		{
			"outer offset past inner window",
			planir.Limit{Input: planir.Limit{Input: propertyScan("age"), Fetch: 2}, Offset: 4},
			"}\nLIMIT 0\nOFFSET 4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Compile(tt.node)
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(q.Text, tt.want), "got:\n%s", q.Text)
		})
	}
}

func TestCompile_Unsupported(t *testing.T) {
	limited := planir.Limit{Input: propertyScan("age"), Fetch: 1}

	tests := []struct {
		name string
		node planir.Node
	}{
		{"filter above limit", planir.Filter{Input: limited, Condition: planir.Comparison{Column: 1, Op: planir.OpEq, Value: planir.Int(1)}}},
		{"sort above limit", planir.Sort{Input: limited, Keys: []planir.SortKey{{Column: 0}}}},
		{"sort above offset", planir.Sort{Input: planir.Limit{Input: propertyScan("age"), Offset: 3}, Keys: []planir.SortKey{{Column: 0}}}},
		{"like", planir.Filter{Input: propertyScan("name"), Condition: planir.Comparison{Column: 1, Op: planir.OpLike, Value: planir.String("J%")}}},
		{"or", planir.Filter{Input: propertyScan("name"), Condition: planir.Or{Predicates: []planir.Predicate{
			planir.Comparison{Column: 1, Op: planir.OpEq, Value: planir.String("a")},
			planir.Comparison{Column: 0, Op: planir.OpEq, Value: planir.String("b")},
		}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Compile(tt.node)
			require.Error(t, err)
			assert.True(t, IsUnsupported(err))
			assert.Empty(t, q.Text)
		})
	}
}

func TestCompile_InvalidTrees(t *testing.T) {
	tests := []struct {
		name string
		node planir.Node
	}{
		{"nil", nil},
		{"index out of range", planir.Project{Input: propertyScan("age"), Columns: []int{3}}},
		{"bad predicate iri", planir.Scan{Table: "x", Binding: planir.PropertyBinding("http://x/a b")}},
		{"bad column name", planir.Scan{Table: "x", Binding: planir.ClassBinding(planir.ModeMapping, foaf+"Person", []planir.ColumnSpec{
			{Name: "full name", Predicate: foaf + "name"},
		})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.node)
			require.Error(t, err)
			assert.False(t, IsUnsupported(err))
		})
	}
}

func TestCompile_Golden(t *testing.T) {
	tests := []struct {
		name string
		node planir.Node
		opts []Option
	}{
		{
			name: "class_projection",
			node: planir.Project{Input: personScan(), Columns: []int{0, 1}},
		},
		{
			name: "property_range_filter",
			node: planir.Filter{Input: propertyScan("age"), Condition: planir.Search{Column: 1, Ranges: []planir.Range{
				planir.Between(planir.Int(30), planir.Int(41)),
			}}},
		},
		{
			name: "property_sort_limit",
			node: planir.Limit{
				Input: planir.Sort{Input: propertyScan("name"), Keys: []planir.SortKey{{Column: 0, Direction: planir.Descending}}},
				Fetch: 1,
			},
		},
		{
			name: "class_full_named_graphs",
			node: planir.Limit{
				Input: planir.Sort{
					Input: planir.Project{
						Input: planir.Filter{Input: personScan(), Condition: planir.And{Predicates: []planir.Predicate{
							planir.Comparison{Column: 1, Op: planir.OpEq, Value: planir.String("John Doe")},
							planir.Search{Column: 2, Ranges: []planir.Range{
								planir.Point(planir.Int(40)),
								planir.Between(planir.Int(42), planir.Int(50)),
							}},
						}}},
						Columns: []int{2, 0},
					},
					Keys: []planir.SortKey{{Column: 0, Direction: planir.Descending}, {Column: 1}},
				},
				Fetch:  10,
				Offset: 5,
			},
			opts: []Option{WithNamedGraphs(true)},
		},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Compile(tt.node, tt.opts...)
			require.NoError(t, err)
			g.Assert(t, tt.name, []byte(q.Text))
		})
	}
}
