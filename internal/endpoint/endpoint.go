// Package endpoint defines the query-execution collaborator the compiler and
// prober run their SPARQL text against, and an HTTP implementation speaking
// the SPARQL 1.1 protocol.
package endpoint

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/rdfsql/internal/rdf"
)

// Endpoint executes SPARQL SELECT queries.
// It is opened once per schema and closed explicitly by its owner.
type Endpoint interface {
	Query(ctx context.Context, query string) (Cursor, error)
	Close() error
}

// Cursor iterates over the solutions of one query.
//
// Row returns one term per variable in Vars order; an unbound variable is
// nil. The caller must Close the cursor.
type Cursor interface {
	Vars() []string
	Next() bool
	Row() []rdf.Term
	Err() error
	Close() error
}

// TransportError reports a failure talking to the endpoint.
type TransportError struct {
	Endpoint   string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("endpoint %s: status %d: %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("endpoint %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError returns true if err is or wraps a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// sliceCursor serves solutions that are already in memory.
type sliceCursor struct {
	vars   []string
	rows   [][]rdf.Term
	pos    int
	closed bool
}

// NewCursor returns a cursor over materialized rows.
func NewCursor(vars []string, rows [][]rdf.Term) Cursor {
	return &sliceCursor{vars: vars, rows: rows, pos: -1}
}

func (c *sliceCursor) Vars() []string { return c.vars }

func (c *sliceCursor) Next() bool {
	if c.closed || c.pos+1 >= len(c.rows) {
		return false
	}
	c.pos++
	return true
}

func (c *sliceCursor) Row() []rdf.Term {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil
	}
	return c.rows[c.pos]
}

func (c *sliceCursor) Err() error { return nil }

func (c *sliceCursor) Close() error {
	c.closed = true
	return nil
}

// Collect drains a cursor into memory and closes it.
func Collect(cur Cursor) ([][]rdf.Term, error) {
	defer cur.Close()
	var rows [][]rdf.Term
	for cur.Next() {
		row := cur.Row()
		cp := make([]rdf.Term, len(row))
		copy(cp, row)
		rows = append(rows, cp)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}
