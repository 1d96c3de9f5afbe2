package harness

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// checkExpect compares one outcome with its step's expectations and
// returns a message per mismatch.
func checkExpect(step QueryStep, out QueryOutcome) []string {
	exp := step.Expect
	if exp == nil {
		if out.Error != "" {
			return []string{"unexpected error: " + out.Error}
		}
		return nil
	}

	if exp.Error != "" {
		if out.Error == "" {
			return []string{fmt.Sprintf("expected error %q, query succeeded", exp.Error)}
		}
		if exp.Error != out.Code && !strings.Contains(out.Error, exp.Error) {
			return []string{fmt.Sprintf("expected error %q, got %s", exp.Error, out.Error)}
		}
		return nil
	}
	if out.Error != "" {
		return []string{"unexpected error: " + out.Error}
	}

	var errs []string
	for _, sub := range exp.QueryContains {
		if !strings.Contains(out.Query, sub) {
			errs = append(errs, fmt.Sprintf("query does not contain %q:\n%s", sub, out.Query))
		}
	}
	if exp.Columns != nil && !equalStrings(exp.Columns, out.Columns) {
		errs = append(errs, fmt.Sprintf("columns: expected %v, got %v", exp.Columns, out.Columns))
	}
	if exp.RowCount != nil && *exp.RowCount != len(out.Rows) {
		errs = append(errs, fmt.Sprintf("row_count: expected %d, got %d", *exp.RowCount, len(out.Rows)))
	}
	if exp.Rows != nil {
		errs = append(errs, compareRows(exp.Rows, out.Rows)...)
	}
	return errs
}

func compareRows(want [][]yaml.Node, got [][]string) []string {
	if len(want) != len(got) {
		return []string{fmt.Sprintf("rows: expected %d rows, got %d: %v", len(want), len(got), got)}
	}

	var errs []string
	for i := range want {
		if len(want[i]) != len(got[i]) {
			errs = append(errs, fmt.Sprintf("row %d: expected %d cells, got %d", i, len(want[i]), len(got[i])))
			continue
		}
		for j, cell := range want[i] {
			text, err := cellText(cell)
			if err != nil {
				errs = append(errs, fmt.Sprintf("row %d cell %d: %v", i, j, err))
				continue
			}
			if text != got[i][j] {
				errs = append(errs, fmt.Sprintf("row %d cell %d: expected %q, got %q", i, j, text, got[i][j]))
			}
		}
	}
	return errs
}

func cellText(n yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("line %d: cell must be a scalar", n.Line)
	}
	if n.ShortTag() == "!!null" {
		return "null", nil
	}
	return n.Value, nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
