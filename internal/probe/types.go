package probe

import (
	"fmt"
	"sort"

	"github.com/roach88/rdfsql/internal/planir"
	"github.com/roach88/rdfsql/internal/scalar"
)

// NonLiteral marks IRI and blank node objects in a TypeSet.
const NonLiteral = ""

// TypeSet is the set of distinct object datatypes seen for one predicate
// within a bounded sample. It is used once to resolve a column type.
type TypeSet struct {
	Predicate string
	types     map[string]struct{}
}

// NewTypeSet returns a set holding the given datatypes.
func NewTypeSet(predicate string, datatypes ...string) TypeSet {
	s := TypeSet{Predicate: predicate, types: make(map[string]struct{}, len(datatypes))}
	for _, dt := range datatypes {
		s.types[dt] = struct{}{}
	}
	return s
}

// Add records a datatype; use NonLiteral for IRIs and blank nodes.
func (s *TypeSet) Add(datatype string) {
	if s.types == nil {
		s.types = make(map[string]struct{})
	}
	s.types[datatype] = struct{}{}
}

// Len returns the number of distinct datatypes.
func (s TypeSet) Len() int { return len(s.types) }

// Contains reports whether the datatype was seen.
func (s TypeSet) Contains(datatype string) bool {
	_, ok := s.types[datatype]
	return ok
}

// Datatypes returns the datatypes in sorted order.
func (s TypeSet) Datatypes() []string {
	out := make([]string, 0, len(s.types))
	for dt := range s.types {
		out = append(out, dt)
	}
	sort.Strings(out)
	return out
}

// ResolveType decides the column type for a sampled predicate.
//
// Ambiguity is fatal only for property tables; class and mapping tables
// fall back to string because subjects of one class may use a property
// with different datatypes.
func ResolveType(set TypeSet, mode planir.Mode, defaultToString bool) (scalar.Type, error) {
	switch set.Len() {
	case 0:
		return scalar.String, nil
	case 1:
		dt := set.Datatypes()[0]
		if dt == NonLiteral {
			return scalar.String, nil
		}
		t, err := scalar.FromDatatype(dt, defaultToString)
		if err != nil {
			return scalar.String, fmt.Errorf("resolve type of %s: %w", set.Predicate, err)
		}
		return t, nil
	default:
		if mode == planir.ModeProperty {
			return scalar.String, &AmbiguousTypeError{Predicate: set.Predicate, Datatypes: set.Datatypes()}
		}
		return scalar.String, nil
	}
}
