package planir

import (
	"fmt"
)

// OutputColumns returns the names of the columns a node produces.
// The tree is validated on the way; see Validate.
func OutputColumns(node Node) ([]string, error) {
	switch n := node.(type) {
	case nil:
		return nil, fmt.Errorf("nil node")
	case Scan:
		return scanColumns(n)
	case *Scan:
		return scanColumns(*n)
	case Filter:
		return filterColumns(n)
	case *Filter:
		return filterColumns(*n)
	case Project:
		return projectColumns(n)
	case *Project:
		return projectColumns(*n)
	case Sort:
		return sortColumns(n)
	case *Sort:
		return sortColumns(*n)
	case Limit:
		return limitColumns(n)
	case *Limit:
		return limitColumns(*n)
	default:
		return nil, fmt.Errorf("unknown node type: %T", node)
	}
}

// Validate checks that every column index in the tree refers to a column
// of the node's input and that limits are non-negative.
//
// Validate is a pure function with no side effects.
func Validate(node Node) error {
	_, err := OutputColumns(node)
	return err
}

func scanColumns(s Scan) ([]string, error) {
	b := s.Binding
	switch b.Mode {
	case ModeProperty:
		if b.Predicate == "" {
			return nil, fmt.Errorf("scan %s: property table without predicate", s.Table)
		}
	case ModeClass, ModeMapping:
		if b.Class == "" {
			return nil, fmt.Errorf("scan %s: %s table without class", s.Table, b.Mode)
		}
		seen := map[string]bool{SubjectColumn: true}
		for _, c := range b.Columns {
			if seen[c.Name] {
				return nil, fmt.Errorf("scan %s: duplicate column %q", s.Table, c.Name)
			}
			seen[c.Name] = true
		}
	default:
		return nil, fmt.Errorf("scan %s: unknown mode %v", s.Table, b.Mode)
	}
	return b.ColumnNames(), nil
}

func filterColumns(f Filter) ([]string, error) {
	cols, err := OutputColumns(f.Input)
	if err != nil {
		return nil, err
	}
	if f.Condition == nil {
		return nil, fmt.Errorf("filter: nil condition")
	}
	if err := checkPredicate(f.Condition, len(cols)); err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	return cols, nil
}

func projectColumns(p Project) ([]string, error) {
	cols, err := OutputColumns(p.Input)
	if err != nil {
		return nil, err
	}
	if len(p.Columns) == 0 {
		return cols, nil
	}
	out := make([]string, 0, len(p.Columns))
	for _, idx := range p.Columns {
		if err := checkIndex(idx, len(cols)); err != nil {
			return nil, fmt.Errorf("project: %w", err)
		}
		out = append(out, cols[idx])
	}
	return out, nil
}

func sortColumns(s Sort) ([]string, error) {
	cols, err := OutputColumns(s.Input)
	if err != nil {
		return nil, err
	}
	for _, k := range s.Keys {
		if err := checkIndex(k.Column, len(cols)); err != nil {
			return nil, fmt.Errorf("sort: %w", err)
		}
	}
	return cols, nil
}

func limitColumns(l Limit) ([]string, error) {
	cols, err := OutputColumns(l.Input)
	if err != nil {
		return nil, err
	}
	if l.Fetch < 0 || l.Offset < 0 {
		return nil, fmt.Errorf("limit: negative fetch or offset (%d, %d)", l.Fetch, l.Offset)
	}
	return cols, nil
}

func checkIndex(idx, width int) error {
	if idx < 0 || idx >= width {
		return fmt.Errorf("column index %d out of range [0, %d)", idx, width)
	}
	return nil
}

func checkPredicate(p Predicate, width int) error {
	switch pred := p.(type) {
	case Comparison:
		return checkComparison(pred, width)
	case *Comparison:
		return checkComparison(*pred, width)
	case Search:
		return checkSearch(pred, width)
	case *Search:
		return checkSearch(*pred, width)
	case And:
		return checkAll(pred.Predicates, width)
	case *And:
		return checkAll(pred.Predicates, width)
	case Or:
		return checkAll(pred.Predicates, width)
	case *Or:
		return checkAll(pred.Predicates, width)
	case Not:
		return checkPredicate(pred.Predicate, width)
	case *Not:
		return checkPredicate(pred.Predicate, width)
	case nil:
		return fmt.Errorf("nil predicate")
	default:
		return fmt.Errorf("unknown predicate type: %T", p)
	}
}

func checkComparison(c Comparison, width int) error {
	if c.Value == nil {
		return fmt.Errorf("comparison on column %d: nil value", c.Column)
	}
	return checkIndex(c.Column, width)
}

func checkSearch(s Search, width int) error {
	if len(s.Ranges) == 0 {
		return fmt.Errorf("search on column %d: no ranges", s.Column)
	}
	for _, r := range s.Ranges {
		if r.Lower == nil && r.Upper == nil {
			return fmt.Errorf("search on column %d: unbounded range", s.Column)
		}
	}
	return checkIndex(s.Column, width)
}

func checkAll(preds []Predicate, width int) error {
	if len(preds) == 0 {
		return fmt.Errorf("empty compound predicate")
	}
	for _, p := range preds {
		if err := checkPredicate(p, width); err != nil {
			return err
		}
	}
	return nil
}
