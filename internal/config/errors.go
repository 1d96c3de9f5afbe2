package config

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
)

// Load error codes (E200-E209).
const (
	ErrCodeRead    = "E201" // model file could not be read
	ErrCodeParse   = "E202" // YAML/JSON/CUE syntax error
	ErrCodeSchema  = "E203" // model does not satisfy #Model
	ErrCodeInvalid = "E204" // cross-field rule violated
	ErrCodeFormat  = "E205" // unknown file extension
)

// LoadError describes a model that could not be loaded.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsLoadError returns true if err is or wraps a LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// ErrorCode returns the LoadError code of err, or "" if err is not one.
func ErrorCode(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}
