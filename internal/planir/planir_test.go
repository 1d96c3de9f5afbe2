package planir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const foaf = "http://xmlns.com/foaf/0.1/"

func personBinding() Binding {
	return ClassBinding(ModeClass, foaf+"Person", []ColumnSpec{
		{Name: "xmlns_name", Predicate: foaf + "name"},
		{Name: "xmlns_age", Predicate: foaf + "age"},
	})
}

func TestSealedInterfaces(t *testing.T) {
	var _ Node = Scan{}
	var _ Node = Filter{}
	var _ Node = Project{}
	var _ Node = Sort{}
	var _ Node = Limit{}
	var _ Node = &Limit{}

	var _ Predicate = Comparison{}
	var _ Predicate = Search{}
	var _ Predicate = And{}
	var _ Predicate = Or{}
	var _ Predicate = Not{}

	var _ Value = String("x")
	var _ Value = Int(1)
	var _ Value = Decimal{}
	var _ Value = Bool(true)
}

func TestBindingColumnNames(t *testing.T) {
	assert.Equal(t, []string{"s", "o"}, PropertyBinding(foaf+"age").ColumnNames())
	assert.Equal(t, []string{"s", "xmlns_name", "xmlns_age"}, personBinding().ColumnNames())

	b := personBinding()
	assert.Equal(t, "", b.ColumnPredicate(0))
	assert.Equal(t, foaf+"age", b.ColumnPredicate(2))
	assert.Equal(t, foaf+"age", PropertyBinding(foaf+"age").ColumnPredicate(1))
}

func TestClassBindingCopiesColumns(t *testing.T) {
	cols := []ColumnSpec{{Name: "a", Predicate: "urn:a"}}
	b := ClassBinding(ModeMapping, "urn:C", cols)
	cols[0].Name = "changed"
	assert.Equal(t, "a", b.Columns[0].Name)
}

func TestParseMode(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want Mode
	}{
		{"", ModeProperty},
		{"property", ModeProperty},
		{"class", ModeClass},
		{"mapping", ModeMapping},
	} {
		got, err := ParseMode(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		if tt.in != "" {
			assert.Equal(t, tt.in, got.String())
		}
	}

	_, err := ParseMode("graph")
	require.Error(t, err)
}

func TestOutputColumns(t *testing.T) {
	scan := Scan{Table: "Person", Binding: personBinding()}

	tests := []struct {
		name string
		node Node
		want []string
	}{
		{"scan", scan, []string{"s", "xmlns_name", "xmlns_age"}},
		{"empty project", Project{Input: scan}, []string{"s", "xmlns_name", "xmlns_age"}},
		{"project reorders", &Project{Input: scan, Columns: []int{2, 0}}, []string{"xmlns_age", "s"}},
		{
			"sort above project",
			Sort{Input: Project{Input: scan, Columns: []int{1}}, Keys: []SortKey{{Column: 0, Direction: Descending}}},
			[]string{"xmlns_name"},
		},
		{"limit", Limit{Input: scan, Fetch: 1}, []string{"s", "xmlns_name", "xmlns_age"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OutputColumns(tt.node)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate_Errors(t *testing.T) {
	scan := Scan{Table: "age", Binding: PropertyBinding(foaf + "age")}

	tests := []struct {
		name string
		node Node
		msg  string
	}{
		{"nil", nil, "nil node"},
		{"no predicate", Scan{Table: "x", Binding: Binding{Mode: ModeProperty}}, "without predicate"},
		{"no class", Scan{Table: "x", Binding: Binding{Mode: ModeClass}}, "without class"},
		{
			"duplicate column",
			Scan{Table: "x", Binding: ClassBinding(ModeMapping, "urn:C", []ColumnSpec{{"a", "urn:a"}, {"a", "urn:b"}})},
			"duplicate column",
		},
		{"project out of range", Project{Input: scan, Columns: []int{2}}, "out of range"},
		{"sort out of range", Sort{Input: scan, Keys: []SortKey{{Column: -1}}}, "out of range"},
		{"filter out of range", Filter{Input: scan, Condition: Comparison{Column: 5, Op: OpEq, Value: Int(1)}}, "out of range"},
		{"filter nil value", Filter{Input: scan, Condition: Comparison{Column: 1, Op: OpEq}}, "nil value"},
		{"search without ranges", Filter{Input: scan, Condition: Search{Column: 1}}, "no ranges"},
		{"empty and", Filter{Input: scan, Condition: And{}}, "empty compound"},
		{"negative limit", Limit{Input: scan, Fetch: -1}, "negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.node)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestValuesEqual(t *testing.T) {
	d1, err := NewDecimal("1.50")
	require.NoError(t, err)
	d2, err := NewDecimal("1.5")
	require.NoError(t, err)

	assert.True(t, ValuesEqual(d1, d2))
	assert.True(t, ValuesEqual(Int(3), Int(3)))
	assert.False(t, ValuesEqual(Int(3), String("3")))
	assert.True(t, ValuesEqual(nil, nil))
	assert.False(t, ValuesEqual(Bool(true), nil))
}

func TestValueStrings(t *testing.T) {
	assert.Equal(t, "abc", String("abc").String())
	assert.Equal(t, "-4", Int(-4).String())
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, "<>", OpNeq.String())
	assert.Equal(t, "DESC", Descending.String())
	assert.Equal(t, "ASC", Ascending.String())
}
