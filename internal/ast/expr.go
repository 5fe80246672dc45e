// Package ast holds the expression and statement trees built by the
// parser.  Nodes are plain data; evaluation lives in package exec.
package ast

import (
	"strconv"
	"strings"

	"linebasic/internal/token"
	"linebasic/internal/value"
)

type Expr interface {
	String() string
	exprNode()
}

type Literal struct {
	Value value.Value
}

// Variable is a scalar, or an array element when Subscripts is not empty.
type Variable struct {
	Name       string
	Subscripts []Expr
}

type Unary struct {
	Op      token.Kind // MINUS, BANG or NOT
	Operand Expr
}

type Binary struct {
	Left  Expr
	Op    token.Kind
	Right Expr
}

// Call is a builtin (Builtin set) or a DEF FN function (Builtin == ILLEGAL).
type Call struct {
	Name    string
	Builtin token.Kind
	Args    []Expr
}

type Group struct {
	Inner Expr
}

func (*Literal) exprNode()  {}
func (*Variable) exprNode() {}
func (*Unary) exprNode()    {}
func (*Binary) exprNode()   {}
func (*Call) exprNode()     {}
func (*Group) exprNode()    {}

func (l *Literal) String() string {

	if s, ok := l.Value.(value.String); ok {
		return quote(string(s))
	}

	return l.Value.String()
}

func (v *Variable) String() string {

	if len(v.Subscripts) == 0 {
		return v.Name
	}

	return v.Name + "(" + joinExprs(v.Subscripts) + ")"
}

func (u *Unary) String() string {

	if u.Op == token.NOT {
		return "NOT " + u.Operand.String()
	}

	return u.Op.String() + u.Operand.String()
}

func (b *Binary) String() string {

	return b.Left.String() + " " + b.Op.String() + " " + b.Right.String()
}

func (c *Call) String() string {

	return c.Name + "(" + joinExprs(c.Args) + ")"
}

func (g *Group) String() string {

	return "(" + g.Inner.String() + ")"
}

func joinExprs(list []Expr) string {

	parts := make([]string, len(list))
	for i, e := range list {
		parts[i] = e.String()
	}

	return strings.Join(parts, ", ")
}

// quote renders s as a BASIC string literal, doubling embedded quotes.
func quote(s string) string {

	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func itoa(n int) string {

	return strconv.Itoa(n)
}
