package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/roach88/rdfsql/internal/planfile"
	"github.com/roach88/rdfsql/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRun_PersonMapping(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/person_mapping.yaml")
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)

	require.Len(t, result.Queries, 3)
	assert.Equal(t, "person_mapping-1", result.Queries[0].QueryID)
	assert.Equal(t, []string{"VARCHAR"}, result.Queries[0].Types)
	assert.Equal(t, [][]string{{"John Doe", "42"}, {"Jane Doe", "40"}}, result.Queries[1].Rows)
	assert.Equal(t, "INVALID_PLAN", result.Queries[2].Code)
}

func TestRun_PropertyGolden(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/property_age.yaml")
	require.NoError(t, err)

	result, err := RunWithGolden(t, s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_ReportsFailedExpectations(t *testing.T) {
	rowCount := 5
	s := &Scenario{
		Name:        "failing",
		Description: "Expectations that do not hold",
		Graph:       testutil.FOAFGraph,
		Queries: []QueryStep{
			{
				Name: "wrong_count",
				Plan: planfile.Plan{Table: "name"},
				Expect: &Expect{
					Columns:       []string{"s", "name"},
					RowCount:      &rowCount,
					QueryContains: []string{"LIMIT"},
				},
			},
			{
				Name:   "expected_failure",
				Plan:   planfile.Plan{Table: "name"},
				Expect: &Expect{Error: "UNSUPPORTED_PLAN"},
			},
			{
				Name: "unexpected_failure",
				Plan: planfile.Plan{Table: "nope"},
			},
		},
	}

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], `wrong_count: query does not contain "LIMIT"`)
	assert.Contains(t, result.Errors[1], "wrong_count: columns: expected [s name], got [s o]")
	assert.Contains(t, result.Errors[2], "wrong_count: row_count: expected 5, got 2")
	assert.Contains(t, result.Errors[3], `expected_failure: expected error "UNSUPPORTED_PLAN", query succeeded`)
	assert.Contains(t, result.Errors[4], "unexpected_failure: unexpected error: TABLE_NOT_FOUND")
}

func TestRun_InvalidModel(t *testing.T) {
	s := &Scenario{
		Name:        "bad_model",
		Description: "Mapping mode without tables",
		Model:       map[string]any{"table_mode": "mapping"},
		Queries:     []QueryStep{{Name: "q", Plan: planfile.Plan{Table: "x"}}},
	}

	_, err := Run(context.Background(), s)
	assert.ErrorContains(t, err, "invalid model")
}

func TestRun_BadGraph(t *testing.T) {
	s := &Scenario{
		Name:        "bad_graph",
		Description: "Unparseable N-Quads",
		Graph:       "not a triple\n",
		Queries:     []QueryStep{{Name: "q", Plan: planfile.Plan{Table: "x"}}},
	}

	_, err := Run(context.Background(), s)
	assert.ErrorContains(t, err, "failed to load graph")
}

func TestCheckExpect_Rows(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: rows
description: cell comparison
queries:
  - name: q
    plan: {table: t}
    expect:
      rows:
        - [a, ~]
        - [1.50, true]
`))
	require.NoError(t, err)
	step := s.Queries[0]

	assert.Empty(t, checkExpect(step, QueryOutcome{Rows: [][]string{{"a", "null"}, {"1.50", "true"}}}))

	errs := checkExpect(step, QueryOutcome{Rows: [][]string{{"a", "b"}, {"1.5", "true"}}})
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], `row 0 cell 1: expected "null", got "b"`)
	assert.Contains(t, errs[1], `row 1 cell 0: expected "1.50", got "1.5"`)

	errs = checkExpect(step, QueryOutcome{Rows: [][]string{{"a", "null"}}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "expected 2 rows, got 1")
}

func TestSnapshot_Error(t *testing.T) {
	r := NewResult()
	r.Queries = append(r.Queries, QueryOutcome{Name: "q", Code: "X", Error: "X: boom"})
	assert.Equal(t, "# s\n\n## q\nerror: X: boom\n", string(Snapshot("s", r)))
}
