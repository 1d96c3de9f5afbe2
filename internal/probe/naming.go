package probe

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/rdfsql/internal/planir"
	"github.com/roach88/rdfsql/internal/rdf"
)

// ColumnName derives a column name from a predicate IRI: the second-to-last
// label of the namespace host, an underscore, and the local name.
//
//	http://xmlns.com/foaf/0.1/name  ->  xmlns_name
//
// A single-label host is used whole; an IRI without a host yields the
// local name alone.
func ColumnName(predicate string) string {
	iri := rdf.IRI(predicate)
	local := iri.LocalName()
	if local == "" {
		local = "value"
	}

	domain := ""
	if host := iri.Host(); host != "" {
		labels := strings.Split(host, ".")
		if len(labels) >= 2 {
			domain = labels[len(labels)-2]
		} else {
			domain = labels[0]
		}
	}

	if domain == "" {
		return Sanitize(local)
	}
	return Sanitize(domain + "_" + local)
}

// TableName derives a table name from a predicate or class IRI: its local
// name, sanitized.
func TableName(iri string) string {
	local := rdf.IRI(iri).LocalName()
	if local == "" {
		local = "table"
	}
	return Sanitize(local)
}

// Sanitize NFC-normalizes a name and replaces every character outside
// [A-Za-z0-9_] with an underscore. Leading underscores are dropped and a
// leading digit gets a "c" prefix.
func Sanitize(name string) string {
	name = norm.NFC.String(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := strings.TrimLeft(b.String(), "_")
	if out == "" {
		return "c"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "c" + out
	}
	return out
}

// uniqueNamer hands out names that do not collide with earlier ones by
// appending _0, _1, ... to later duplicates.
type uniqueNamer struct {
	used map[string]bool
}

func newUniqueNamer(reserved ...string) *uniqueNamer {
	n := &uniqueNamer{used: make(map[string]bool)}
	for _, r := range reserved {
		n.used[r] = true
	}
	return n
}

func (n *uniqueNamer) next(name string) string {
	if !n.used[name] {
		n.used[name] = true
		return name
	}
	for i := 0; ; i++ {
		candidate := name + "_" + strconv.Itoa(i)
		if !n.used[candidate] {
			n.used[candidate] = true
			return candidate
		}
	}
}

// UniqueColumns names columns for the given predicates in order. The
// subject column name is reserved.
func UniqueColumns(predicates []string) []planir.ColumnSpec {
	namer := newUniqueNamer(planir.SubjectColumn)
	cols := make([]planir.ColumnSpec, 0, len(predicates))
	for _, p := range predicates {
		cols = append(cols, planir.ColumnSpec{Name: namer.next(ColumnName(p)), Predicate: p})
	}
	return cols
}
