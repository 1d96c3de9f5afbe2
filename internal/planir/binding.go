package planir

import "fmt"

// SubjectColumn is the name of the first column of every table.
const SubjectColumn = "s"

// ObjectColumn is the name of the second column of a property table.
const ObjectColumn = "o"

// Mode selects how a table is mapped onto the graph.
type Mode int

const (
	ModeProperty Mode = iota
	ModeClass
	ModeMapping
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeProperty:
		return "property"
	case ModeClass:
		return "class"
	case ModeMapping:
		return "mapping"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses a configuration mode name. The empty string is property.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "property":
		return ModeProperty, nil
	case "class":
		return ModeClass, nil
	case "mapping":
		return ModeMapping, nil
	default:
		return ModeProperty, fmt.Errorf("unknown table mode %q", s)
	}
}

// ColumnSpec names one property column of a class or mapping table.
type ColumnSpec struct {
	Name      string
	Predicate string
}

// Binding describes a table's semantics. It is immutable once built.
//
// Property tables use Predicate; class and mapping tables use Class and
// Columns. Columns never includes the subject column.
type Binding struct {
	Mode      Mode
	Predicate string
	Class     string
	Columns   []ColumnSpec
}

// PropertyBinding returns the binding of a property table.
func PropertyBinding(predicate string) Binding {
	return Binding{Mode: ModeProperty, Predicate: predicate}
}

// ClassBinding returns the binding of a class or mapping table.
func ClassBinding(mode Mode, class string, columns []ColumnSpec) Binding {
	cols := make([]ColumnSpec, len(columns))
	copy(cols, columns)
	return Binding{Mode: mode, Class: class, Columns: cols}
}

// ColumnNames returns the table's column names in order, subject first.
func (b Binding) ColumnNames() []string {
	if b.Mode == ModeProperty {
		return []string{SubjectColumn, ObjectColumn}
	}
	names := make([]string, 0, len(b.Columns)+1)
	names = append(names, SubjectColumn)
	for _, c := range b.Columns {
		names = append(names, c.Name)
	}
	return names
}

// ColumnPredicate returns the predicate bound to column i, or "" for the
// subject column.
func (b Binding) ColumnPredicate(i int) string {
	if i <= 0 {
		return ""
	}
	if b.Mode == ModeProperty {
		return b.Predicate
	}
	if i-1 < len(b.Columns) {
		return b.Columns[i-1].Predicate
	}
	return ""
}
