package triplestore

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/rdfsql/internal/rdf"
)

// ParseNQuads reads N-Triples or N-Quads. Lexical forms and IRIs are
// normalized to NFC.
func ParseNQuads(r io.Reader) ([]Quad, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var quads []Quad
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		q, err := parseQuadLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		quads = append(quads, q)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read quads: %w", err)
	}
	return quads, nil
}

// Load parses N-Quads from r and adds them to the store.
// It returns the number of new quads.
func (s *Store) Load(ctx context.Context, r io.Reader) (int, error) {
	quads, err := ParseNQuads(r)
	if err != nil {
		return 0, err
	}
	return s.Add(ctx, quads...)
}

type lineReader struct {
	line string
	pos  int
}

func parseQuadLine(line string) (Quad, error) {
	lr := &lineReader{line: line}

	subj, err := lr.term()
	if err != nil {
		return Quad{}, fmt.Errorf("subject: %w", err)
	}
	if rdf.IsLiteral(subj) {
		return Quad{}, fmt.Errorf("subject: literal not allowed")
	}
	pred, err := lr.term()
	if err != nil {
		return Quad{}, fmt.Errorf("predicate: %w", err)
	}
	predIRI, ok := pred.(rdf.IRI)
	if !ok {
		return Quad{}, fmt.Errorf("predicate: expected IRI, got %s", pred)
	}
	obj, err := lr.term()
	if err != nil {
		return Quad{}, fmt.Errorf("object: %w", err)
	}

	q := Quad{S: subj, P: predIRI, O: obj}

	lr.skipSpace()
	if lr.peek() == '<' {
		g, err := lr.term()
		if err != nil {
			return Quad{}, fmt.Errorf("graph: %w", err)
		}
		q.Graph = g.(rdf.IRI)
	}

	lr.skipSpace()
	if lr.peek() != '.' {
		return Quad{}, fmt.Errorf("expected '.' at column %d", lr.pos+1)
	}
	lr.pos++
	lr.skipSpace()
	if lr.pos < len(lr.line) && lr.line[lr.pos] != '#' {
		return Quad{}, fmt.Errorf("unexpected trailing text at column %d", lr.pos+1)
	}
	return q, nil
}

func (lr *lineReader) peek() byte {
	if lr.pos >= len(lr.line) {
		return 0
	}
	return lr.line[lr.pos]
}

func (lr *lineReader) skipSpace() {
	for lr.pos < len(lr.line) && (lr.line[lr.pos] == ' ' || lr.line[lr.pos] == '\t') {
		lr.pos++
	}
}

func (lr *lineReader) term() (rdf.Term, error) {
	lr.skipSpace()
	switch lr.peek() {
	case '<':
		iri, err := lr.iri()
		if err != nil {
			return nil, err
		}
		return rdf.IRI(iri), nil
	case '_':
		return lr.blank()
	case '"':
		return lr.literal()
	case 0:
		return nil, fmt.Errorf("unexpected end of line")
	default:
		return nil, fmt.Errorf("unexpected %q at column %d", lr.peek(), lr.pos+1)
	}
}

func (lr *lineReader) iri() (string, error) {
	start := lr.pos
	end := strings.IndexByte(lr.line[start:], '>')
	if end < 0 {
		return "", fmt.Errorf("unterminated IRI at column %d", start+1)
	}
	raw := lr.line[start+1 : start+end]
	lr.pos = start + end + 1
	value, err := unescape(raw)
	if err != nil {
		return "", err
	}
	value = norm.NFC.String(value)
	if !rdf.ValidIRI(value) {
		return "", fmt.Errorf("invalid IRI <%s>", value)
	}
	return value, nil
}

func (lr *lineReader) blank() (rdf.Term, error) {
	if !strings.HasPrefix(lr.line[lr.pos:], "_:") {
		return nil, fmt.Errorf("invalid blank node at column %d", lr.pos+1)
	}
	lr.pos += 2
	start := lr.pos
	for lr.pos < len(lr.line) && isNamePart(lr.line[lr.pos]) {
		lr.pos++
	}
	// A trailing '.' belongs to the statement terminator.
	if lr.pos == start {
		return nil, fmt.Errorf("empty blank node label at column %d", start+1)
	}
	return rdf.BlankNode(lr.line[start:lr.pos]), nil
}

func (lr *lineReader) literal() (rdf.Term, error) {
	start := lr.pos
	lr.pos++ // opening quote
	var raw strings.Builder
	closed := false
	for lr.pos < len(lr.line) {
		ch := lr.line[lr.pos]
		if ch == '\\' && lr.pos+1 < len(lr.line) {
			raw.WriteByte(ch)
			raw.WriteByte(lr.line[lr.pos+1])
			lr.pos += 2
			continue
		}
		if ch == '"' {
			closed = true
			lr.pos++
			break
		}
		raw.WriteByte(ch)
		lr.pos++
	}
	if !closed {
		return nil, fmt.Errorf("unterminated literal at column %d", start+1)
	}
	lexical, err := unescape(raw.String())
	if err != nil {
		return nil, err
	}
	lexical = norm.NFC.String(lexical)

	switch {
	case lr.peek() == '@':
		lr.pos++
		tagStart := lr.pos
		for lr.pos < len(lr.line) && (isLetter(lr.line[lr.pos]) || isDigit(lr.line[lr.pos]) || lr.line[lr.pos] == '-') {
			lr.pos++
		}
		if lr.pos == tagStart {
			return nil, fmt.Errorf("empty language tag at column %d", tagStart+1)
		}
		return rdf.NewLangString(lexical, lr.line[tagStart:lr.pos]), nil
	case strings.HasPrefix(lr.line[lr.pos:], "^^"):
		lr.pos += 2
		if lr.peek() != '<' {
			return nil, fmt.Errorf("expected datatype IRI at column %d", lr.pos+1)
		}
		dt, err := lr.iri()
		if err != nil {
			return nil, err
		}
		return rdf.NewLiteral(lexical, dt), nil
	default:
		return rdf.NewString(lexical), nil
	}
}

// unescape resolves ECHAR and UCHAR escapes.
func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		if i+1 >= len(s) {
			return "", fmt.Errorf("dangling escape")
		}
		i++
		switch s[i] {
		case 't':
			b.WriteByte('\t')
		case 'b':
			b.WriteByte('\b')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 'f':
			b.WriteByte('\f')
		case '"', '\'', '\\':
			b.WriteByte(s[i])
		case 'u', 'U':
			n := 4
			if s[i] == 'U' {
				n = 8
			}
			if i+n >= len(s) {
				return "", fmt.Errorf("truncated \\%c escape", s[i])
			}
			code, err := strconv.ParseUint(s[i+1:i+1+n], 16, 32)
			if err != nil {
				return "", fmt.Errorf("invalid \\%c escape: %w", s[i], err)
			}
			b.WriteRune(rune(code))
			i += n
		default:
			return "", fmt.Errorf("unknown escape \\%c", s[i])
		}
	}
	return b.String(), nil
}
