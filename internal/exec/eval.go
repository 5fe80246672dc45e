package exec

import (
	"linebasic/internal/ast"
	"linebasic/internal/basicerr"
	"linebasic/internal/token"
	"linebasic/internal/value"
)

var binaryOps = map[token.Kind]value.Op{
	token.PLUS:  value.OpPlus,
	token.MINUS: value.OpMinus,
	token.STAR:  value.OpMultiply,
	token.SLASH: value.OpDivide,
	token.MOD:   value.OpModulo,
	token.CARET: value.OpPower,
	token.EQ:    value.OpEquals,
	token.NE:    value.OpNotEqual,
	token.LT:    value.OpSmaller,
	token.LE:    value.OpSmallerEqual,
	token.GT:    value.OpLarger,
	token.GE:    value.OpLargerEqual,
}

// eval computes x; operands are always evaluated left before right.
func (e *Engine) eval(x ast.Expr) (value.Value, error) {

	switch x := x.(type) {
	default:
		return nil, basicerr.Runtimef("cannot evaluate %T", x)

	case *ast.Literal:
		return x.Value, nil

	case *ast.Group:
		return e.eval(x.Inner)

	case *ast.Variable:
		if len(x.Subscripts) == 0 {
			if v, ok := e.param(x.Name); ok {
				return v, nil
			}

			return e.ctx.Vars.Get(x.Name), nil
		}

		subs, err := e.subscripts(x.Subscripts)
		if err != nil {
			return nil, err
		}

		return e.ctx.Vars.GetElement(x.Name, subs)

	case *ast.Unary:
		v, err := e.eval(x.Operand)
		if err != nil {
			return nil, err
		}

		if x.Op == token.MINUS {
			return value.Negate(v)
		}

		return value.Not(v)

	case *ast.Binary:
		l, err := e.eval(x.Left)
		if err != nil {
			return nil, err
		}

		r, err := e.eval(x.Right)
		if err != nil {
			return nil, err
		}

		switch x.Op {
		case token.AND:
			return value.LogicalAnd(l, r)

		case token.OR:
			return value.LogicalOr(l, r)
		}

		op, ok := binaryOps[x.Op]
		if !ok {
			return nil, basicerr.Runtimef("unknown operator %s", x.Op)
		}

		return value.Apply(op, l, r)

	case *ast.Call:
		if x.Builtin != token.ILLEGAL {
			return e.callBuiltin(x)
		}

		return e.callFunction(x)
	}
}

func (e *Engine) evalAs(x ast.Expr, kind value.Kind) (value.Value, error) {

	v, err := e.eval(x)
	if err != nil {
		return nil, err
	}

	return value.Coerce(v, kind)
}

func (e *Engine) evalInt(x ast.Expr) (int, error) {

	v, err := e.eval(x)
	if err != nil {
		return 0, err
	}

	return value.ToInt(v)
}

func (e *Engine) subscripts(list []ast.Expr) ([]int, error) {

	subs := make([]int, len(list))

	for i, x := range list {
		n, err := e.evalInt(x)
		if err != nil {
			return nil, err
		}

		subs[i] = n
	}

	return subs, nil
}

// store assigns v to a scalar or an array element, converting it to the
// type the name declares.
func (e *Engine) store(target *ast.Variable, v value.Value) error {

	if len(target.Subscripts) == 0 {
		return e.ctx.Vars.Set(target.Name, v)
	}

	subs, err := e.subscripts(target.Subscripts)
	if err != nil {
		return err
	}

	return e.ctx.Vars.SetElement(target.Name, subs, v)
}

// param looks a name up in the bindings of the innermost function call.
func (e *Engine) param(name string) (value.Value, bool) {

	if len(e.params) == 0 {
		return nil, false
	}

	v, ok := e.params[len(e.params)-1][name]

	return v, ok
}

//
// A user function evaluates its body with the parameters bound over
// the globals.  Bindings live only for the duration of the call, so a
// function can read but never change a global of the same name
//

func (e *Engine) callFunction(call *ast.Call) (value.Value, error) {

	def, err := e.ctx.Function(call.Name)
	if err != nil {
		return nil, err
	}

	if len(call.Args) != len(def.Params) {
		return nil, basicerr.Runtimef("%s: %s takes %d, got %d", basicerr.EFUNCARGS,
			call.Name, len(def.Params), len(call.Args))
	}

	if len(e.params) >= e.opts.FnRecursionMax {
		return nil, basicerr.Runtimef("%s", basicerr.EFNRECURSION)
	}

	bindings := make(map[string]value.Value, len(def.Params))

	for i, name := range def.Params {
		v, err := e.evalAs(call.Args[i], value.KindOfName(name))
		if err != nil {
			return nil, err
		}

		bindings[name] = v
	}

	e.params = append(e.params, bindings)
	v, err := e.eval(def.Body)
	e.params = e.params[:len(e.params)-1]

	if err != nil {
		return nil, err
	}

	if hasSuffix(call.Name) {
		return value.Coerce(v, value.KindOfName(call.Name))
	}

	return v, nil
}

func hasSuffix(name string) bool {

	if name == "" {
		return false
	}

	switch name[len(name)-1] {
	case '%', '&', '#', '$', '?':
		return true
	}

	return false
}
