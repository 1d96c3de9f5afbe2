package probe

import (
	"errors"
	"fmt"
	"strings"
)

// AmbiguousTypeError reports a property-table predicate whose sampled
// objects carry more than one datatype.
type AmbiguousTypeError struct {
	Predicate string
	Datatypes []string // sorted; "" stands for IRI or blank node objects
}

func (e *AmbiguousTypeError) Error() string {
	names := make([]string, len(e.Datatypes))
	for i, dt := range e.Datatypes {
		if dt == NonLiteral {
			names[i] = "<non-literal>"
		} else {
			names[i] = dt
		}
	}
	return fmt.Sprintf("too many object types for property %s: %s", e.Predicate, strings.Join(names, ", "))
}

// IsAmbiguousType returns true if err is or wraps an AmbiguousTypeError.
func IsAmbiguousType(err error) bool {
	var ae *AmbiguousTypeError
	return errors.As(err, &ae)
}
