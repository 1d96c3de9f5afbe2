package harness

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders a result as stable text: each query's text, columns
// with types, and rows, or its error.
func Snapshot(name string, r *Result) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", name)
	for _, q := range r.Queries {
		fmt.Fprintf(&b, "\n## %s\n", q.Name)
		if q.Error != "" {
			fmt.Fprintf(&b, "error: %s\n", q.Error)
			continue
		}
		fmt.Fprintf(&b, "id: %s\n", q.QueryID)
		b.WriteString(q.Query)
		b.WriteString("\n--\n")

		header := make([]string, len(q.Columns))
		for i, c := range q.Columns {
			header[i] = c + ":" + q.Types[i]
		}
		b.WriteString(strings.Join(header, " | "))
		b.WriteByte('\n')
		for _, row := range q.Rows {
			b.WriteString(strings.Join(row, " | "))
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "(%d rows)\n", len(q.Rows))
	}
	return []byte(b.String())
}

// RunWithGolden runs a scenario and compares its snapshot with
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, Snapshot(scenario.Name, result))
	return result, nil
}
