package triplestore

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// TokenKind identifies the type of a lexer token.
type TokenKind int

const (
	// Special
	tokEOF TokenKind = iota

	// Terms
	tokVar     // ?s or $s
	tokIRI     // <http://...>
	tokPName   // foaf:name, foaf:
	tokString  // 'x' or "x"
	tokLangTag // @en
	tokInteger // 42
	tokDecimal // 4.2
	tokDouble  // 4.2e1

	// Keywords (case-insensitive, except "a")
	tokSelect
	tokDistinct
	tokWhere
	tokOptional
	tokGraph
	tokFilter
	tokOrder
	tokBy
	tokAsc
	tokDesc
	tokLimit
	tokOffset
	tokPrefix
	tokTrue
	tokFalse
	tokA

	// Operators
	tokEq      // =
	tokNeq     // !=
	tokLt      // <
	tokGt      // >
	tokLte     // <=
	tokGte     // >=
	tokAnd     // &&
	tokOr      // ||
	tokBang    // !
	tokCaretDT // ^^
	tokMinus   // -
	tokPlus    // +

	// Punctuation
	tokLBrace // {
	tokRBrace // }
	tokLParen // (
	tokRParen // )
	tokDot    // .
	tokStar   // *
)

var tokenNames = map[TokenKind]string{
	tokEOF: "EOF", tokVar: "VAR", tokIRI: "IRI", tokPName: "PNAME",
	tokString: "STRING", tokLangTag: "LANGTAG", tokInteger: "INTEGER",
	tokDecimal: "DECIMAL", tokDouble: "DOUBLE",
	tokSelect: "SELECT", tokDistinct: "DISTINCT", tokWhere: "WHERE",
	tokOptional: "OPTIONAL", tokGraph: "GRAPH", tokFilter: "FILTER",
	tokOrder: "ORDER", tokBy: "BY", tokAsc: "ASC", tokDesc: "DESC",
	tokLimit: "LIMIT", tokOffset: "OFFSET", tokPrefix: "PREFIX",
	tokTrue: "TRUE", tokFalse: "FALSE", tokA: "a",
	tokEq: "=", tokNeq: "!=", tokLt: "<", tokGt: ">", tokLte: "<=", tokGte: ">=",
	tokAnd: "&&", tokOr: "||", tokBang: "!", tokCaretDT: "^^", tokMinus: "-", tokPlus: "+",
	tokLBrace: "{", tokRBrace: "}", tokLParen: "(", tokRParen: ")", tokDot: ".", tokStar: "*",
}

func tokenKindName(k TokenKind) string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return "???"
}

// Token is a single lexer token with its kind, decoded text, and position.
type Token struct {
	Kind TokenKind
	Text string
	Pos  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d", tokenKindName(t.Kind), t.Text, t.Pos)
}

// keywords maps uppercase keyword text to token kind.
var keywords = map[string]TokenKind{
	"SELECT":   tokSelect,
	"DISTINCT": tokDistinct,
	"WHERE":    tokWhere,
	"OPTIONAL": tokOptional,
	"GRAPH":    tokGraph,
	"FILTER":   tokFilter,
	"ORDER":    tokOrder,
	"BY":       tokBy,
	"ASC":      tokAsc,
	"DESC":     tokDesc,
	"LIMIT":    tokLimit,
	"OFFSET":   tokOffset,
	"PREFIX":   tokPrefix,
	"TRUE":     tokTrue,
	"FALSE":    tokFalse,
}

// lexer holds the state for tokenising a query string.
type lexer struct {
	input  string
	pos    int
	tokens []Token
}

// tokenize converts a query string into a slice of tokens.
func tokenize(input string) ([]Token, error) {
	l := &lexer{input: input}
	if err := l.scan(); err != nil {
		return nil, err
	}
	return l.tokens, nil
}

func (l *lexer) scan() error {
	for l.pos < len(l.input) {
		l.skipWhitespaceAndComments()
		if l.pos >= len(l.input) {
			break
		}

		ch := l.input[l.pos]

		switch {
		case ch == '{':
			l.emit(tokLBrace, "{")
		case ch == '}':
			l.emit(tokRBrace, "}")
		case ch == '(':
			l.emit(tokLParen, "(")
		case ch == ')':
			l.emit(tokRParen, ")")
		case ch == '*':
			l.emit(tokStar, "*")
		case ch == '+':
			l.emit(tokPlus, "+")
		case ch == '-':
			l.emit(tokMinus, "-")
		case ch == '=':
			l.emit(tokEq, "=")

		case ch == '.':
			if isDigit(l.peek(1)) {
				l.scanNumber()
			} else {
				l.emit(tokDot, ".")
			}

		case ch == '!':
			if l.peek(1) == '=' {
				l.emitN(tokNeq, "!=", 2)
			} else {
				l.emit(tokBang, "!")
			}

		case ch == '&':
			if l.peek(1) != '&' {
				return fmt.Errorf("sparql lexer: unexpected '&' at position %d", l.pos)
			}
			l.emitN(tokAnd, "&&", 2)

		case ch == '|':
			if l.peek(1) != '|' {
				return fmt.Errorf("sparql lexer: unexpected '|' at position %d", l.pos)
			}
			l.emitN(tokOr, "||", 2)

		case ch == '^':
			if l.peek(1) != '^' {
				return fmt.Errorf("sparql lexer: unexpected '^' at position %d", l.pos)
			}
			l.emitN(tokCaretDT, "^^", 2)

		case ch == '<':
			if !l.scanIRI() {
				if l.peek(1) == '=' {
					l.emitN(tokLte, "<=", 2)
				} else {
					l.emit(tokLt, "<")
				}
			}

		case ch == '>':
			if l.peek(1) == '=' {
				l.emitN(tokGte, ">=", 2)
			} else {
				l.emit(tokGt, ">")
			}

		case ch == '?' || ch == '$':
			if err := l.scanVar(); err != nil {
				return err
			}

		case ch == '@':
			if err := l.scanLangTag(); err != nil {
				return err
			}

		case ch == '\'' || ch == '"':
			if err := l.scanString(ch); err != nil {
				return err
			}

		case isDigit(ch):
			l.scanNumber()

		case isNameStart(ch) || ch == ':':
			l.scanNameOrKeyword()

		default:
			return fmt.Errorf("sparql lexer: unexpected character %q at position %d", ch, l.pos)
		}
	}

	l.tokens = append(l.tokens, Token{Kind: tokEOF, Pos: l.pos})
	return nil
}

// emit adds a single-char token and advances.
func (l *lexer) emit(kind TokenKind, text string) {
	l.tokens = append(l.tokens, Token{Kind: kind, Text: text, Pos: l.pos})
	l.pos++
}

// emitN adds a multi-char token and advances by n.
func (l *lexer) emitN(kind TokenKind, text string, n int) {
	l.tokens = append(l.tokens, Token{Kind: kind, Text: text, Pos: l.pos})
	l.pos += n
}

// peek returns the byte at pos+offset, or 0 if out of bounds.
func (l *lexer) peek(offset int) byte {
	idx := l.pos + offset
	if idx >= len(l.input) {
		return 0
	}
	return l.input[idx]
}

func (l *lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch {
		case isWhitespace(ch):
			l.pos++
		case ch == '#':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

// scanIRI scans <...> when the text after '<' forms an IRI reference.
// It reports false, consuming nothing, when '<' is a comparison operator.
func (l *lexer) scanIRI() bool {
	start := l.pos
	i := l.pos + 1
	for i < len(l.input) {
		ch := l.input[i]
		if ch == '>' {
			l.tokens = append(l.tokens, Token{Kind: tokIRI, Text: l.input[start+1 : i], Pos: start})
			l.pos = i + 1
			return true
		}
		if ch <= ' ' || strings.IndexByte("<\"{}|^`\\", ch) >= 0 {
			return false
		}
		i++
	}
	return false
}

func (l *lexer) scanVar() error {
	start := l.pos
	l.pos++ // skip '?' or '$'
	for l.pos < len(l.input) && isNamePart(l.input[l.pos]) {
		l.pos++
	}
	if l.pos == start+1 {
		return fmt.Errorf("sparql lexer: empty variable name at position %d", start)
	}
	l.tokens = append(l.tokens, Token{Kind: tokVar, Text: l.input[start+1 : l.pos], Pos: start})
	return nil
}

func (l *lexer) scanLangTag() error {
	start := l.pos
	l.pos++ // skip '@'
	for l.pos < len(l.input) && (isLetter(l.input[l.pos]) || isDigit(l.input[l.pos]) || l.input[l.pos] == '-') {
		l.pos++
	}
	if l.pos == start+1 {
		return fmt.Errorf("sparql lexer: empty language tag at position %d", start)
	}
	l.tokens = append(l.tokens, Token{Kind: tokLangTag, Text: strings.ToLower(l.input[start+1 : l.pos]), Pos: start})
	return nil
}

// scanString scans a single-quoted or double-quoted string literal,
// decoding escape sequences.
func (l *lexer) scanString(quote byte) error {
	start := l.pos
	l.pos++ // skip opening quote
	var b strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '\\' {
			if l.pos+1 >= len(l.input) {
				break
			}
			l.pos++
			switch esc := l.input[l.pos]; esc {
			case '\\', '\'', '"':
				b.WriteByte(esc)
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case 'u', 'U':
				n := 4
				if esc == 'U' {
					n = 8
				}
				if l.pos+n >= len(l.input) {
					return fmt.Errorf("sparql lexer: short \\%c escape at position %d", esc, l.pos)
				}
				code, err := strconv.ParseUint(l.input[l.pos+1:l.pos+1+n], 16, 32)
				if err != nil || !utf8.ValidRune(rune(code)) {
					return fmt.Errorf("sparql lexer: invalid \\%c escape at position %d", esc, l.pos)
				}
				b.WriteRune(rune(code))
				l.pos += n
			default:
				return fmt.Errorf("sparql lexer: invalid escape \\%c at position %d", esc, l.pos)
			}
			l.pos++
			continue
		}
		if ch == quote {
			l.pos++ // skip closing quote
			l.tokens = append(l.tokens, Token{Kind: tokString, Text: b.String(), Pos: start})
			return nil
		}
		if ch == '\n' || ch == '\r' {
			break
		}
		b.WriteByte(ch)
		l.pos++
	}
	return fmt.Errorf("sparql lexer: unterminated string starting at position %d", start)
}

// scanNumber scans an integer, decimal or double literal.
func (l *lexer) scanNumber() {
	start := l.pos
	kind := tokInteger
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	if l.peek(0) == '.' && isDigit(l.peek(1)) {
		kind = tokDecimal
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	if c := l.peek(0); c == 'e' || c == 'E' {
		off := 1
		if s := l.peek(1); s == '+' || s == '-' {
			off = 2
		}
		if isDigit(l.peek(off)) {
			kind = tokDouble
			l.pos += off
			for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
				l.pos++
			}
		}
	}
	l.tokens = append(l.tokens, Token{Kind: kind, Text: l.input[start:l.pos], Pos: start})
}

// scanNameOrKeyword scans a keyword, the "a" shorthand, or a prefixed name.
func (l *lexer) scanNameOrKeyword() {
	start := l.pos
	for l.pos < len(l.input) && (isNamePart(l.input[l.pos]) || l.input[l.pos] == '-') {
		l.pos++
	}
	if l.peek(0) == ':' {
		l.pos++
		for l.pos < len(l.input) && (isNamePart(l.input[l.pos]) || l.input[l.pos] == '-' ||
			(l.input[l.pos] == '.' && isNamePart(l.peek(1)))) {
			l.pos++
		}
		l.tokens = append(l.tokens, Token{Kind: tokPName, Text: l.input[start:l.pos], Pos: start})
		return
	}

	text := l.input[start:l.pos]
	if text == "a" {
		l.tokens = append(l.tokens, Token{Kind: tokA, Text: text, Pos: start})
		return
	}
	if kind, ok := keywords[strings.ToUpper(text)]; ok {
		l.tokens = append(l.tokens, Token{Kind: kind, Text: text, Pos: start})
		return
	}
	// A bare word that is not a keyword is a prefixed name with no colon;
	// the parser rejects it.
	l.tokens = append(l.tokens, Token{Kind: tokPName, Text: text, Pos: start})
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isNameStart(ch byte) bool {
	return isLetter(ch) || ch == '_' || ch >= 0x80
}

func isNamePart(ch byte) bool {
	return isNameStart(ch) || isDigit(ch)
}
