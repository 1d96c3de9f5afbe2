package scalar

import (
	"errors"
	"fmt"
)

// UnsupportedDatatypeError reports a datatype with no column type.
type UnsupportedDatatypeError struct {
	Datatype string
}

func (e *UnsupportedDatatypeError) Error() string {
	return fmt.Sprintf("unsupported datatype %s", e.Datatype)
}

// DecodeError reports a literal whose lexical form is invalid for its
// declared datatype.
type DecodeError struct {
	Lexical  string
	Datatype string
	Err      error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %q as %s: %v", e.Lexical, e.Datatype, e.Err)
	}
	return fmt.Sprintf("decode %q as %s", e.Lexical, e.Datatype)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsUnsupportedDatatype returns true if err is or wraps an
// UnsupportedDatatypeError.
func IsUnsupportedDatatype(err error) bool {
	var ue *UnsupportedDatatypeError
	return errors.As(err, &ue)
}

// IsDecodeError returns true if err is or wraps a DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
