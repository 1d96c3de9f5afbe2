package engine

import (
	"errors"
	"fmt"
	"strings"
)

// QueryError reports a failed plan execution.
type QueryError struct {
	// Code identifies the error category.
	Code QueryErrorCode

	// QueryID identifies the execution.
	QueryID string

	// Table is the scanned table, when known.
	Table string

	// Err is the underlying failure.
	Err error
}

// QueryErrorCode categorizes execution errors.
type QueryErrorCode string

const (
	// ErrCodeTableNotFound indicates the plan scans an unknown table.
	ErrCodeTableNotFound QueryErrorCode = "TABLE_NOT_FOUND"

	// ErrCodeSchema indicates the table's columns could not be resolved.
	ErrCodeSchema QueryErrorCode = "SCHEMA_FAILED"

	// ErrCodeUnsupported indicates the plan shape has no SPARQL form.
	ErrCodeUnsupported QueryErrorCode = "UNSUPPORTED_PLAN"

	// ErrCodeInvalidPlan indicates a malformed operator tree.
	ErrCodeInvalidPlan QueryErrorCode = "INVALID_PLAN"

	// ErrCodeEndpoint indicates the endpoint call failed.
	ErrCodeEndpoint QueryErrorCode = "ENDPOINT_FAILED"

	// ErrCodeDecode indicates a result value could not be decoded.
	ErrCodeDecode QueryErrorCode = "DECODE_FAILED"
)

// Error implements the error interface.
func (e *QueryError) Error() string {
	var ctx []string
	if e.QueryID != "" {
		ctx = append(ctx, "query="+e.QueryID)
	}
	if e.Table != "" {
		ctx = append(ctx, "table="+e.Table)
	}
	if len(ctx) == 0 {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %v (%s)", e.Code, e.Err, strings.Join(ctx, ", "))
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// ErrorCode returns the QueryError code of err, or "" if err is not one.
func ErrorCode(err error) QueryErrorCode {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Code
	}
	return ""
}

// IsUnsupportedError returns true if err is an unsupported-plan error.
func IsUnsupportedError(err error) bool {
	return ErrorCode(err) == ErrCodeUnsupported
}
