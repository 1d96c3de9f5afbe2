package triplestore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/rdfsql/internal/rdf"
)

// --------------------------------------------------------------------------
// SPARQL subset parser - recursive descent over the token stream.
//
// Supported grammar:
//
//   Query      → Prologue SELECT [DISTINCT] ( Var+ | '*' ) [WHERE] Group
//                [ORDER BY OrderKey+] [LIMIT int] [OFFSET int] (LIMIT/OFFSET in any order)
//   Prologue   → ( PREFIX PNAME IRI )*
//   Group      → '{' ( Triple ['.'] | OPTIONAL Group | GRAPH VarOrIRI Group
//                      | Group | FILTER '(' Expr ')' )* '}'
//   Triple     → VarOrTerm ( Var | IRI | PNAME | 'a' ) VarOrTerm
//   Expr       → OrExpr
//   OrExpr     → AndExpr ( '||' AndExpr )*
//   AndExpr    → UnaryExpr ( '&&' UnaryExpr )*
//   UnaryExpr  → '!' UnaryExpr | Comparison
//   Comparison → Primary [ ('=' | '!=' | '<' | '>' | '<=' | '>=') Primary ]
//   Primary    → '(' Expr ')' | Var | Literal | IRI | PNAME
//   OrderKey   → ( ASC | DESC ) '(' Expr ')' | Var
// --------------------------------------------------------------------------

// parser holds the state for parsing a token stream.
type parser struct {
	tokens   []Token
	pos      int
	prefixes map[string]string
}

// parseQuery tokenises and parses a query string.
func parseQuery(input string) (*selectQuery, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens, prefixes: make(map[string]string)}
	return p.parseSelect()
}

// ---------------- helpers -------------------------------------------------

// cur returns the current token.
func (p *parser) cur() Token {
	if p.pos >= len(p.tokens) {
		return Token{Kind: tokEOF}
	}
	return p.tokens[p.pos]
}

// advance moves to the next token and returns the consumed one.
func (p *parser) advance() Token {
	t := p.cur()
	p.pos++
	return t
}

// expect consumes a token of the given kind or returns an error.
func (p *parser) expect(kind TokenKind) (Token, error) {
	t := p.cur()
	if t.Kind != kind {
		return t, fmt.Errorf("sparql parser: expected %s but got %s at position %d",
			tokenKindName(kind), tokenKindName(t.Kind), t.Pos)
	}
	p.pos++
	return t, nil
}

// is checks if the current token matches the given kind.
func (p *parser) is(kind TokenKind) bool {
	return p.cur().Kind == kind
}

// match consumes the current token if it matches the kind, returning true.
func (p *parser) match(kind TokenKind) bool {
	if p.is(kind) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("sparql parser: "+format+" at position %d", append(args, p.cur().Pos)...)
}

// ---------------- query ---------------------------------------------------

func (p *parser) parseSelect() (*selectQuery, error) {
	for p.is(tokPrefix) {
		p.advance()
		name, err := p.expect(tokPName)
		if err != nil {
			return nil, err
		}
		if !strings.HasSuffix(name.Text, ":") {
			return nil, fmt.Errorf("sparql parser: prefix %q must end with ':' at position %d", name.Text, name.Pos)
		}
		iri, err := p.expect(tokIRI)
		if err != nil {
			return nil, err
		}
		p.prefixes[strings.TrimSuffix(name.Text, ":")] = iri.Text
	}

	q := &selectQuery{Limit: -1}

	if _, err := p.expect(tokSelect); err != nil {
		return nil, err
	}
	q.Distinct = p.match(tokDistinct)

	if p.match(tokStar) {
		q.Vars = nil
	} else {
		for p.is(tokVar) {
			q.Vars = append(q.Vars, p.advance().Text)
		}
		if len(q.Vars) == 0 {
			return nil, p.errorf("expected variables or '*'")
		}
	}

	p.match(tokWhere)
	g, err := p.parseGroup()
	if err != nil {
		return nil, err
	}
	q.Where = g

	if p.match(tokOrder) {
		if _, err := p.expect(tokBy); err != nil {
			return nil, err
		}
		for {
			key, ok, err := p.parseOrderKey()
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
			q.OrderBy = append(q.OrderBy, key)
		}
		if len(q.OrderBy) == 0 {
			return nil, p.errorf("expected order key")
		}
	}

	for p.is(tokLimit) || p.is(tokOffset) {
		kind := p.advance().Kind
		tok, err := p.expect(tokInteger)
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("sparql parser: invalid count %q at position %d", tok.Text, tok.Pos)
		}
		if kind == tokLimit {
			q.Limit = n
		} else {
			q.Offset = n
		}
	}

	if !p.is(tokEOF) {
		return nil, p.errorf("unexpected %s", tokenKindName(p.cur().Kind))
	}
	return q, nil
}

func (p *parser) parseOrderKey() (orderKey, bool, error) {
	switch {
	case p.is(tokAsc) || p.is(tokDesc):
		desc := p.advance().Kind == tokDesc
		if _, err := p.expect(tokLParen); err != nil {
			return orderKey{}, false, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return orderKey{}, false, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return orderKey{}, false, err
		}
		return orderKey{Expr: e, Desc: desc}, true, nil
	case p.is(tokVar):
		return orderKey{Expr: varExpr{Name: p.advance().Text}}, true, nil
	default:
		return orderKey{}, false, nil
	}
}

// ---------------- group ---------------------------------------------------

func (p *parser) parseGroup() (*group, error) {
	if _, err := p.expect(tokLBrace); err != nil {
		return nil, err
	}
	g := &group{}

	for !p.is(tokRBrace) {
		switch {
		case p.is(tokEOF):
			return nil, p.errorf("unterminated group")

		case p.match(tokOptional):
			inner, err := p.parseGroup()
			if err != nil {
				return nil, err
			}
			g.Elements = append(g.Elements, optionalGroup{Group: inner})

		case p.match(tokGraph):
			name, err := p.parseVarOrIRI()
			if err != nil {
				return nil, err
			}
			inner, err := p.parseGroup()
			if err != nil {
				return nil, err
			}
			g.Elements = append(g.Elements, graphGroup{Graph: name, Group: inner})

		case p.is(tokLBrace):
			inner, err := p.parseGroup()
			if err != nil {
				return nil, err
			}
			g.Elements = append(g.Elements, subGroup{Group: inner})

		case p.match(tokFilter):
			if _, err := p.expect(tokLParen); err != nil {
				return nil, err
			}
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokRParen); err != nil {
				return nil, err
			}
			g.Filters = append(g.Filters, e)

		default:
			tp, err := p.parseTriple()
			if err != nil {
				return nil, err
			}
			g.Elements = append(g.Elements, tp)
		}
		p.match(tokDot)
	}
	p.advance() // '}'
	return g, nil
}

func (p *parser) parseTriple() (triplePattern, error) {
	s, err := p.parseVarOrTerm()
	if err != nil {
		return triplePattern{}, err
	}

	var pred node
	if p.match(tokA) {
		pred = node{Term: rdf.IRI(rdf.RDFType)}
	} else {
		pred, err = p.parseVarOrIRI()
		if err != nil {
			return triplePattern{}, err
		}
	}

	o, err := p.parseVarOrTerm()
	if err != nil {
		return triplePattern{}, err
	}
	return triplePattern{S: s, P: pred, O: o}, nil
}

func (p *parser) parseVarOrIRI() (node, error) {
	switch p.cur().Kind {
	case tokVar:
		return node{Var: p.advance().Text}, nil
	case tokIRI, tokPName:
		iri, err := p.parseIRI()
		if err != nil {
			return node{}, err
		}
		return node{Term: iri}, nil
	default:
		return node{}, p.errorf("expected variable or IRI, got %s", tokenKindName(p.cur().Kind))
	}
}

func (p *parser) parseVarOrTerm() (node, error) {
	if p.is(tokVar) {
		return node{Var: p.advance().Text}, nil
	}
	t, err := p.parseTerm()
	if err != nil {
		return node{}, err
	}
	return node{Term: t}, nil
}

func (p *parser) parseIRI() (rdf.IRI, error) {
	tok := p.advance()
	switch tok.Kind {
	case tokIRI:
		return rdf.IRI(tok.Text), nil
	case tokPName:
		idx := strings.IndexByte(tok.Text, ':')
		if idx < 0 {
			return "", fmt.Errorf("sparql parser: unexpected word %q at position %d", tok.Text, tok.Pos)
		}
		ns, ok := p.prefixes[tok.Text[:idx]]
		if !ok {
			return "", fmt.Errorf("sparql parser: undeclared prefix %q at position %d", tok.Text[:idx], tok.Pos)
		}
		return rdf.IRI(ns + tok.Text[idx+1:]), nil
	default:
		return "", fmt.Errorf("sparql parser: expected IRI but got %s at position %d", tokenKindName(tok.Kind), tok.Pos)
	}
}

// parseTerm parses a constant: IRI, literal, number or boolean.
func (p *parser) parseTerm() (rdf.Term, error) {
	switch tok := p.cur(); tok.Kind {
	case tokIRI, tokPName:
		return p.parseIRI()

	case tokString:
		p.advance()
		if p.is(tokLangTag) {
			return rdf.NewLangString(tok.Text, p.advance().Text), nil
		}
		if p.match(tokCaretDT) {
			dt, err := p.parseIRI()
			if err != nil {
				return nil, err
			}
			return rdf.NewLiteral(tok.Text, string(dt)), nil
		}
		return rdf.NewString(tok.Text), nil

	case tokInteger, tokDecimal, tokDouble:
		p.advance()
		return numericLiteral(tok, ""), nil

	case tokMinus, tokPlus:
		p.advance()
		num := p.cur()
		if num.Kind != tokInteger && num.Kind != tokDecimal && num.Kind != tokDouble {
			return nil, p.errorf("expected number after sign")
		}
		p.advance()
		sign := ""
		if tok.Kind == tokMinus {
			sign = "-"
		}
		return numericLiteral(num, sign), nil

	case tokTrue, tokFalse:
		p.advance()
		return rdf.NewLiteral(strings.ToLower(tok.Text), rdf.XSDBoolean), nil

	default:
		return nil, p.errorf("expected term, got %s", tokenKindName(tok.Kind))
	}
}

func numericLiteral(tok Token, sign string) rdf.Literal {
	switch tok.Kind {
	case tokDecimal:
		return rdf.NewLiteral(sign+tok.Text, rdf.XSDDecimal)
	case tokDouble:
		return rdf.NewLiteral(sign+tok.Text, rdf.XSDDouble)
	default:
		return rdf.NewLiteral(sign+tok.Text, rdf.XSDInteger)
	}
}

// ---------------- expressions ---------------------------------------------

func (p *parser) parseExpr() (expr, error) {
	return p.parseOrExpr()
}

func (p *parser) parseOrExpr() (expr, error) {
	left, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}
	for p.match(tokOr) {
		right, err := p.parseAndExpr()
		if err != nil {
			return nil, err
		}
		left = binaryExpr{Op: tokOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAndExpr() (expr, error) {
	left, err := p.parseUnaryExpr()
	if err != nil {
		return nil, err
	}
	for p.match(tokAnd) {
		right, err := p.parseUnaryExpr()
		if err != nil {
			return nil, err
		}
		left = binaryExpr{Op: tokAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnaryExpr() (expr, error) {
	if p.match(tokBang) {
		operand, err := p.parseUnaryExpr()
		if err != nil {
			return nil, err
		}
		return notExpr{Operand: operand}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (expr, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	switch op := p.cur().Kind; op {
	case tokEq, tokNeq, tokLt, tokGt, tokLte, tokGte:
		p.advance()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return binaryExpr{Op: op, Left: left, Right: right}, nil
	default:
		return left, nil
	}
}

func (p *parser) parsePrimary() (expr, error) {
	switch {
	case p.match(tokLParen):
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return e, nil
	case p.is(tokVar):
		return varExpr{Name: p.advance().Text}, nil
	default:
		t, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return constExpr{Term: t}, nil
	}
}
