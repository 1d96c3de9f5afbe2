package querysparql

import (
	"errors"
	"fmt"
)

// UnsupportedError reports a predicate or plan shape that cannot be
// expressed as a single query.
type UnsupportedError struct {
	What string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported: %s", e.What)
}

// IsUnsupported returns true if err is or wraps an UnsupportedError.
func IsUnsupported(err error) bool {
	var ue *UnsupportedError
	return errors.As(err, &ue)
}

func unsupported(format string, args ...any) error {
	return &UnsupportedError{What: fmt.Sprintf(format, args...)}
}
