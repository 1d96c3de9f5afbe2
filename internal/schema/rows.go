package schema

import (
	"github.com/roach88/rdfsql/internal/scalar"
)

// Rows is a cursor over decoded query results.
type Rows struct {
	Columns []string
	Types   []scalar.Type
	data    [][]any
	pos     int
}

// NewRows wraps decoded values. It is used by tests and by callers that
// assemble results themselves.
func NewRows(columns []string, types []scalar.Type, data [][]any) *Rows {
	return &Rows{Columns: columns, Types: types, data: data, pos: -1}
}

// Next advances to the next row.
func (r *Rows) Next() bool {
	if r.pos+1 >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

// Values returns the current row.
func (r *Rows) Values() []any {
	if r.pos < 0 || r.pos >= len(r.data) {
		return nil
	}
	return r.data[r.pos]
}

// Value returns the first value of the current row. Single-column queries
// read their results this way.
func (r *Rows) Value() any {
	vals := r.Values()
	if len(vals) == 0 {
		return nil
	}
	return vals[0]
}

// Len returns the total number of rows.
func (r *Rows) Len() int { return len(r.data) }

// All returns every row regardless of the cursor position.
func (r *Rows) All() [][]any { return r.data }
