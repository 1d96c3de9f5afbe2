package harness

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation held.
	Pass bool `json:"pass"`

	// Errors lists failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Queries holds one outcome per query step, in order.
	Queries []QueryOutcome `json:"queries"`
}

// QueryOutcome records what one query step produced.
type QueryOutcome struct {
	Name    string     `json:"name"`
	QueryID string     `json:"query_id,omitempty"`
	Query   string     `json:"query,omitempty"`
	Columns []string   `json:"columns,omitempty"`
	Types   []string   `json:"types,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`

	// Code and Error are set when the step failed.
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Errors:  []string{},
		Queries: []QueryOutcome{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
