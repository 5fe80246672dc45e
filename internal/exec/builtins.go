package exec

import (
	"math"
	"strconv"
	"strings"

	"linebasic/internal/ast"
	"linebasic/internal/basicerr"
	"linebasic/internal/token"
	"linebasic/internal/value"
)

type arity struct {
	min, max int
}

var builtinArity = map[token.Kind]arity{
	token.ABS:    {1, 1},
	token.ASC:    {1, 1},
	token.ATN:    {1, 1},
	token.CDBL:   {1, 1},
	token.CHRS:   {1, 1},
	token.CINT:   {1, 1},
	token.CLNG:   {1, 1},
	token.COS:    {1, 1},
	token.EXP:    {1, 1},
	token.INSTR:  {2, 3},
	token.INT:    {1, 1},
	token.LCASES: {1, 1},
	token.LEFTS:  {2, 2},
	token.LEN:    {1, 1},
	token.LOG:    {1, 1},
	token.MIDS:   {2, 3},
	token.RIGHTS: {2, 2},
	token.RND:    {0, 1},
	token.SGN:    {1, 1},
	token.SIN:    {1, 1},
	token.SQR:    {1, 1},
	token.STRS:   {1, 1},
	token.TAN:    {1, 1},
	token.UCASES: {1, 1},
	token.VAL:    {1, 1},
}

func illegalCall(name string, v value.Value) error {

	return basicerr.Runtimef("%s: %s(%s)", basicerr.EILLEGALFUNCCALL, name, v)
}

func str(name string, v value.Value) (string, error) {

	s, ok := v.(value.String)
	if !ok {
		return "", basicerr.Mismatch("%s needs a String, not %s", name, v.Kind())
	}

	return string(s), nil
}

func (e *Engine) callBuiltin(call *ast.Call) (value.Value, error) {

	a := builtinArity[call.Builtin]
	if len(call.Args) < a.min || len(call.Args) > a.max {
		return nil, basicerr.Runtimef("%s: %s", basicerr.EFUNCARGS, call.Name)
	}

	args := make([]value.Value, len(call.Args))
	for i, x := range call.Args {
		v, err := e.eval(x)
		if err != nil {
			return nil, err
		}

		args[i] = v
	}

	switch call.Builtin {
	case token.RND:
		return value.Real(e.rng.Float64()), nil

	case token.ASC, token.LCASES, token.LEN, token.UCASES, token.VAL,
		token.LEFTS, token.RIGHTS, token.MIDS, token.INSTR:
		return stringBuiltin(call, args)

	case token.CHRS:
		n, err := value.ToInt(args[0])
		if err != nil {
			return nil, err
		}

		if n < 0 || n > 255 {
			return nil, illegalCall(call.Name, args[0])
		}

		return value.String([]byte{byte(n)}), nil

	case token.STRS:
		if !args[0].Kind().IsNumeric() {
			return nil, basicerr.Mismatch("STR$ needs a number, not %s", args[0].Kind())
		}

		return value.String(args[0].String()), nil
	}

	return numericBuiltin(call, args[0])
}

//
// Numeric builtins keep Integer and Long arguments exact where that
// makes sense (ABS, INT, SGN) and compute in floating point otherwise
//

func numericBuiltin(call *ast.Call, arg value.Value) (value.Value, error) {

	x, err := value.ToFloat(arg)
	if err != nil {
		return nil, err
	}

	switch call.Builtin {
	default:
		return nil, basicerr.Runtimef("%s: %s", basicerr.EUNDEFINEDFUNC, call.Name)

	case token.ABS:
		if x < 0 {
			return value.Negate(arg)
		}

		return arg, nil

	case token.SGN:
		switch {
		case x > 0:
			return value.Integer(1), nil

		case x < 0:
			return value.Integer(-1), nil
		}

		return value.Integer(0), nil

	case token.INT:
		if arg.Kind() != value.RealKind {
			return arg, nil
		}

		return value.Real(math.Floor(x)), nil

	case token.CDBL:
		return value.Real(x), nil

	case token.CINT:
		return value.Coerce(value.Real(math.Round(x)), value.IntegerKind)

	case token.CLNG:
		return value.Coerce(value.Real(math.Round(x)), value.LongKind)

	case token.ATN:
		return value.Real(math.Atan(x)), nil

	case token.COS:
		return value.Real(math.Cos(x)), nil

	case token.SIN:
		return value.Real(math.Sin(x)), nil

	case token.TAN:
		return value.Real(math.Tan(x)), nil

	case token.EXP:
		return value.Real(math.Exp(x)), nil

	case token.LOG:
		if x <= 0 {
			return nil, illegalCall(call.Name, arg)
		}

		return value.Real(math.Log(x)), nil

	case token.SQR:
		if x < 0 {
			return nil, illegalCall(call.Name, arg)
		}

		return value.Real(math.Sqrt(x)), nil
	}
}

// String positions are 1-based, as in every BASIC.
func stringBuiltin(call *ast.Call, args []value.Value) (value.Value, error) {

	if call.Builtin == token.INSTR {
		return instr(call, args)
	}

	s, err := str(call.Name, args[0])
	if err != nil {
		return nil, err
	}

	switch call.Builtin {
	default:
		return nil, basicerr.Runtimef("%s: %s", basicerr.EUNDEFINEDFUNC, call.Name)

	case token.ASC:
		if s == "" {
			return nil, illegalCall(call.Name, args[0])
		}

		return value.Integer(s[0]), nil

	case token.LEN:
		return value.Integer(len(s)), nil

	case token.LCASES:
		return value.String(strings.ToLower(s)), nil

	case token.UCASES:
		return value.String(strings.ToUpper(s)), nil

	case token.VAL:
		return val(s), nil

	case token.LEFTS, token.RIGHTS:
		n, err := value.ToInt(args[1])
		if err != nil {
			return nil, err
		}

		if n < 0 {
			return nil, illegalCall(call.Name, args[1])
		}

		n = min(n, len(s))

		if call.Builtin == token.LEFTS {
			return value.String(s[:n]), nil
		}

		return value.String(s[len(s)-n:]), nil

	case token.MIDS:
		start, err := value.ToInt(args[1])
		if err != nil {
			return nil, err
		}

		if start < 1 {
			return nil, illegalCall(call.Name, args[1])
		}

		n := len(s)
		if len(args) == 3 {
			if n, err = value.ToInt(args[2]); err != nil {
				return nil, err
			}

			if n < 0 {
				return nil, illegalCall(call.Name, args[2])
			}
		}

		if start > len(s) {
			return value.String(""), nil
		}

		n = min(n, len(s)-start+1)

		return value.String(s[start-1 : start-1+n]), nil
	}
}

// INSTR([start,] haystack, needle) is the 1-based match position, 0 if none.
func instr(call *ast.Call, args []value.Value) (value.Value, error) {

	start := 1

	if len(args) == 3 {
		n, err := value.ToInt(args[0])
		if err != nil {
			return nil, err
		}

		if n < 1 {
			return nil, illegalCall(call.Name, args[0])
		}

		start = n
		args = args[1:]
	}

	hay, err := str(call.Name, args[0])
	if err != nil {
		return nil, err
	}

	needle, err := str(call.Name, args[1])
	if err != nil {
		return nil, err
	}

	if start > len(hay) {
		return value.Integer(0), nil
	}

	i := strings.Index(hay[start-1:], needle)
	if i < 0 {
		return value.Integer(0), nil
	}

	return value.Integer(start + i), nil
}

// val reads a number the way a numeric literal is written; junk is 0.
func val(s string) value.Value {

	s = strings.TrimSpace(s)

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n >= math.MinInt32 && n <= math.MaxInt32 {
			return value.Integer(n)
		}

		return value.Long(n)
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return value.Real(f)
	}

	return value.Real(0)
}
