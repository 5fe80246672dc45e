package parser

import (
	"math"
	"strconv"
	"strings"

	"linebasic/internal/ast"
	"linebasic/internal/basicerr"
	"linebasic/internal/token"
	"linebasic/internal/value"
)

// Binding strength of each binary operator under Standard precedence.
var binaryPrecedence = map[token.Kind]int{
	token.OR:    1,
	token.AND:   2,
	token.EQ:    3,
	token.NE:    3,
	token.LT:    3,
	token.LE:    3,
	token.GT:    3,
	token.GE:    3,
	token.PLUS:  4,
	token.MINUS: 4,
	token.STAR:  5,
	token.SLASH: 5,
	token.MOD:   5,
	token.CARET: 6,
}

func isBinary(k token.Kind) bool {

	_, ok := binaryPrecedence[k]

	return ok
}

func (p *parser) parseExpr() (ast.Expr, error) {

	if p.opts.Precedence == Standard {
		return p.parseClimbing(1)
	}

	//
	// The dialect evaluates strictly left to right: 1 + 2 * 3 is 9.
	// Only parentheses change the order
	//

	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for isBinary(p.cur().Kind) {
		op := p.next().Kind

		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}

		left = &ast.Binary{Left: left, Op: op, Right: right}
	}

	return left, nil
}

// parseClimbing is precedence climbing; ^ associates to the right.
func (p *parser) parseClimbing(minPrec int) (ast.Expr, error) {

	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for {
		op := p.cur().Kind

		prec, ok := binaryPrecedence[op]
		if !ok || prec < minPrec {
			return left, nil
		}

		p.next()

		nextMin := prec + 1
		if op == token.CARET {
			nextMin = prec
		}

		right, err := p.parseClimbing(nextMin)
		if err != nil {
			return nil, err
		}

		left = &ast.Binary{Left: left, Op: op, Right: right}
	}
}

func (p *parser) parseTerm() (ast.Expr, error) {

	tok := p.cur()

	switch tok.Kind {
	default:
		if tok.Kind.IsBuiltin() {
			return p.parseBuiltin()
		}

		return nil, p.errorf("%s: unexpected %s in expression", basicerr.ESYNTAX, tok)

	case token.MINUS, token.BANG, token.NOT:
		p.next()
		operand, err := p.parseTerm()
		if err != nil {
			return nil, err
		}

		return &ast.Unary{Op: tok.Kind, Operand: operand}, nil

	case token.PLUS:
		p.next()
		return p.parseTerm()

	case token.INTEGER, token.REAL:
		p.next()
		return p.number(tok)

	case token.STRING:
		p.next()
		return &ast.Literal{Value: value.String(tok.Text)}, nil

	case token.TRUE:
		p.next()
		return &ast.Literal{Value: value.Boolean(true)}, nil

	case token.FALSE:
		p.next()
		return &ast.Literal{Value: value.Boolean(false)}, nil

	case token.LPAREN:
		p.next()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}

		return &ast.Group{Inner: inner}, nil

	case token.IDENT:
		p.next()

		// FN names are always calls; DEF FNA = ... takes no argument list
		if strings.HasPrefix(tok.Text, "FN") {
			if !p.accept(token.LPAREN) {
				return &ast.Call{Name: tok.Text, Builtin: token.ILLEGAL}, nil
			}

			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}

			return &ast.Call{Name: tok.Text, Builtin: token.ILLEGAL, Args: args}, nil
		}

		v := &ast.Variable{Name: tok.Text}
		if p.accept(token.LPAREN) {
			subs, err := p.parseArgs()
			if err != nil {
				return nil, err
			}

			v.Subscripts = subs
		}

		return v, nil
	}
}

// parseBuiltin accepts RND without an argument list, like most BASICs.
func (p *parser) parseBuiltin() (ast.Expr, error) {

	tok := p.next()

	call := &ast.Call{Name: tok.Text, Builtin: tok.Kind}

	if !p.accept(token.LPAREN) {
		if tok.Kind == token.RND {
			return call, nil
		}

		return nil, p.errorf("%s: %s needs arguments", basicerr.ESYNTAX, tok.Text)
	}

	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}

	call.Args = args

	return call, nil
}

// parseArgs reads a comma separated list after '(' up to and including ')'.
func (p *parser) parseArgs() ([]ast.Expr, error) {

	var args []ast.Expr

	if p.accept(token.RPAREN) {
		return args, nil
	}

	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		args = append(args, e)

		if p.accept(token.RPAREN) {
			return args, nil
		}

		if _, err := p.expect(token.COMMA); err != nil {
			return nil, err
		}
	}
}

//
// Integer literals are Integer when they fit 32 bits and Long
// otherwise.  The lexer has already refused anything wider than that
//

func (p *parser) number(tok token.Token) (*ast.Literal, error) {

	if tok.Kind == token.REAL {
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, p.errorf("%s: %s", basicerr.EILLEGALNUMBER, tok.Text)
		}

		return &ast.Literal{Value: value.Real(f)}, nil
	}

	n, err := strconv.ParseInt(tok.Text, 10, 64)
	if err != nil {
		return nil, p.errorf("%s: %s", basicerr.EILLEGALNUMBER, tok.Text)
	}

	if n > math.MaxInt32 {
		return &ast.Literal{Value: value.Long(n)}, nil
	}

	return &ast.Literal{Value: value.Integer(n)}, nil
}
