package triplestore

import (
	"github.com/roach88/rdfsql/internal/rdf"
)

// selectQuery is a parsed SELECT query.
type selectQuery struct {
	Distinct bool
	Vars     []string // nil means SELECT *
	Where    *group
	OrderBy  []orderKey
	Limit    int64 // -1 when absent
	Offset   int64
}

// group is a { ... } block. Filters apply to the whole group.
type group struct {
	Elements []element
	Filters  []expr
}

// element is a member of a group.
type element interface {
	groupElement()
}

// node is a triple-pattern position: a variable or a constant term.
type node struct {
	Var  string
	Term rdf.Term
}

func (n node) isVar() bool { return n.Var != "" }

type triplePattern struct {
	S, P, O node
}

func (triplePattern) groupElement() {}

type optionalGroup struct {
	Group *group
}

func (optionalGroup) groupElement() {}

type graphGroup struct {
	Graph node
	Group *group
}

func (graphGroup) groupElement() {}

type subGroup struct {
	Group *group
}

func (subGroup) groupElement() {}

// expr is a FILTER or ORDER BY expression.
type expr interface {
	exprNode()
}

type varExpr struct {
	Name string
}

func (varExpr) exprNode() {}

type constExpr struct {
	Term rdf.Term
}

func (constExpr) exprNode() {}

type binaryExpr struct {
	Op    TokenKind // tokEq, tokNeq, tokLt, tokGt, tokLte, tokGte, tokAnd, tokOr
	Left  expr
	Right expr
}

func (binaryExpr) exprNode() {}

type notExpr struct {
	Operand expr
}

func (notExpr) exprNode() {}

type orderKey struct {
	Expr expr
	Desc bool
}
