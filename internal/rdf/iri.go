package rdf

import (
	"net/url"
	"strings"
)

// Namespace returns the namespace part of the IRI: everything up to and
// including the last '#', '/' or ':'.
func (i IRI) Namespace() string {
	s := string(i)
	return s[:splitPoint(s)]
}

// LocalName returns the part of the IRI after its namespace.
// It is empty when the IRI ends with a separator.
func (i IRI) LocalName() string {
	s := string(i)
	return s[splitPoint(s):]
}

// Host returns the host of the IRI's namespace, or "" when the namespace
// has no authority (urn:, mailto:, ...).
func (i IRI) Host() string {
	u, err := url.Parse(i.Namespace())
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func splitPoint(s string) int {
	if idx := strings.LastIndexByte(s, '#'); idx >= 0 {
		return idx + 1
	}
	if idx := strings.LastIndexByte(s, '/'); idx >= 0 {
		return idx + 1
	}
	if idx := strings.LastIndexByte(s, ':'); idx >= 0 {
		return idx + 1
	}
	return 0
}

// ValidIRI reports whether s can be written between angle brackets in a
// SPARQL query without escaping: it must be non-empty, contain a scheme and
// none of the characters the IRIREF production forbids.
func ValidIRI(s string) bool {
	if s == "" || !strings.Contains(s, ":") {
		return false
	}
	for _, r := range s {
		if r <= 0x20 {
			return false
		}
		switch r {
		case '<', '>', '"', '{', '}', '|', '^', '`', '\\':
			return false
		}
	}
	return true
}
