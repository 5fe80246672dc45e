package value

import (
	"math"

	"linebasic/internal/basicerr"
)

type Op int

const (
	OpPlus Op = iota
	OpMinus
	OpMultiply
	OpDivide
	OpModulo
	OpPower
	OpEquals
	OpNotEqual
	OpSmaller
	OpSmallerEqual
	OpLarger
	OpLargerEqual
)

var opNames = [...]string{
	OpPlus:         "+",
	OpMinus:        "-",
	OpMultiply:     "*",
	OpDivide:       "/",
	OpModulo:       "MOD",
	OpPower:        "^",
	OpEquals:       "=",
	OpNotEqual:     "<>",
	OpSmaller:      "<",
	OpSmallerEqual: "<=",
	OpLarger:       ">",
	OpLargerEqual:  ">=",
}

func (op Op) String() string {

	return opNames[op]
}

func (op Op) IsComparison() bool {

	return op >= OpEquals
}

// Apply dispatches op to the matching method of a.
func Apply(op Op, a, b Value) (Value, error) {

	switch op {
	default:
		return nil, basicerr.Runtimef("unknown operator %d", int(op))

	case OpPlus:
		return a.Plus(b)

	case OpMinus:
		return a.Minus(b)

	case OpMultiply:
		return a.Multiply(b)

	case OpDivide:
		return a.Divide(b)

	case OpModulo:
		return a.Modulo(b)

	case OpPower:
		return a.Power(b)

	case OpEquals:
		return a.Equals(b)

	case OpNotEqual:
		return a.NotEqual(b)

	case OpSmaller:
		return a.SmallerThan(b)

	case OpSmallerEqual:
		return a.SmallerEqualThan(b)

	case OpLarger:
		return a.LargerThan(b)

	case OpLargerEqual:
		return a.LargerEqualThan(b)
	}
}

func mismatch(op Op, a, b Value) error {

	return basicerr.Mismatch("%s %s %s", a.Kind(), op, b.Kind())
}

//
// numeric handles every combination of the three numeric variants.
// Matching variants stay in their own domain, Integer or Long mixed with
// Real widens to Real, and anything else is a mismatch
//

func numeric(op Op, a, b Value) (Value, error) {

	ak, bk := a.Kind(), b.Kind()

	switch {
	default:
		return nil, mismatch(op, a, b)

	case ak == IntegerKind && bk == IntegerKind:
		r, err := integral(op, int64(a.(Integer)), int64(b.(Integer)), 32)
		if err != nil || op.IsComparison() {
			return r, err
		}

		if l, ok := r.(Long); ok {
			return Integer(int32(l)), nil
		}

		return r, nil

	case ak == LongKind && bk == LongKind:
		return integral(op, int64(a.(Long)), int64(b.(Long)), 64)

	case ak.IsNumeric() && bk.IsNumeric() && (ak == RealKind || bk == RealKind):
		return floating(op, toFloat(a), toFloat(b))
	}
}

//
// integral works in int64 and reports results as Long; the Integer
// caller narrows them back, wrapping like the hardware would.  Go
// defines MinInt64 / -1 as MinInt64, so no special case is needed
//

func integral(op Op, x, y int64, bits int) (Value, error) {

	switch op {
	default:
		return compare(op, cmpInt(x, y)), nil

	case OpPlus:
		return Long(x + y), nil

	case OpMinus:
		return Long(x - y), nil

	case OpMultiply:
		return Long(x * y), nil

	case OpDivide:
		if y == 0 {
			return nil, divideByZero()
		}

		return Long(x / y), nil

	case OpModulo:
		if y == 0 {
			return nil, divideByZero()
		}

		return Long(x % y), nil

	case OpPower:
		if y < 0 {
			return Real(math.Pow(float64(x), float64(y))), nil
		}

		f := math.Trunc(math.Pow(float64(x), float64(y)))
		limit := math.Ldexp(1, bits-1)
		if f >= limit || f < -limit {
			return nil, basicerr.Runtimef("%s: %d ^ %d", basicerr.EOVERFLOW, x, y)
		}

		return Long(int64(f)), nil
	}
}

func floating(op Op, x, y float64) (Value, error) {

	switch op {
	default:
		return compare(op, cmpFloat(x, y)), nil

	case OpPlus:
		return Real(x + y), nil

	case OpMinus:
		return Real(x - y), nil

	case OpMultiply:
		return Real(x * y), nil

	case OpDivide:
		if y == 0 {
			return nil, divideByZero()
		}

		return Real(x / y), nil

	case OpModulo:
		if y == 0 {
			return nil, divideByZero()
		}

		return Real(math.Mod(x, y)), nil

	case OpPower:
		return Real(math.Pow(x, y)), nil
	}
}

func divideByZero() error {

	return basicerr.New(basicerr.DivideByZero, basicerr.EDIVISIONBYZERO)
}

func cmpInt(x, y int64) int {

	switch {
	case x < y:
		return -1

	case x > y:
		return 1
	}

	return 0
}

func cmpFloat(x, y float64) int {

	switch {
	case x < y:
		return -1

	case x > y:
		return 1
	}

	return 0
}

func compare(op Op, c int) Value {

	switch op {
	default:
		return Boolean(c == 0)

	case OpNotEqual:
		return Boolean(c != 0)

	case OpSmaller:
		return Boolean(c < 0)

	case OpSmallerEqual:
		return Boolean(c <= 0)

	case OpLarger:
		return Boolean(c > 0)

	case OpLargerEqual:
		return Boolean(c >= 0)
	}
}

func text(op Op, a String, b Value) (Value, error) {

	s, ok := b.(String)
	if !ok {
		return nil, mismatch(op, a, b)
	}

	switch {
	default:
		return nil, mismatch(op, a, b)

	case op == OpPlus:
		return a + s, nil

	case op.IsComparison():
		c := 0
		if a < s {
			c = -1
		} else if a > s {
			c = 1
		}

		return compare(op, c), nil
	}
}

func logical(op Op, a Boolean, b Value) (Value, error) {

	o, ok := b.(Boolean)
	if !ok {
		return nil, mismatch(op, a, b)
	}

	switch op {
	default:
		return nil, mismatch(op, a, b)

	case OpPlus:
		return a || o, nil

	case OpMultiply:
		return a && o, nil

	case OpPower, OpEquals:
		return Boolean(a == o), nil

	case OpNotEqual:
		return Boolean(a != o), nil
	}
}

func (i Integer) Plus(o Value) (Value, error)             { return numeric(OpPlus, i, o) }
func (i Integer) Minus(o Value) (Value, error)            { return numeric(OpMinus, i, o) }
func (i Integer) Multiply(o Value) (Value, error)         { return numeric(OpMultiply, i, o) }
func (i Integer) Divide(o Value) (Value, error)           { return numeric(OpDivide, i, o) }
func (i Integer) Modulo(o Value) (Value, error)           { return numeric(OpModulo, i, o) }
func (i Integer) Power(o Value) (Value, error)            { return numeric(OpPower, i, o) }
func (i Integer) Equals(o Value) (Value, error)           { return numeric(OpEquals, i, o) }
func (i Integer) NotEqual(o Value) (Value, error)         { return numeric(OpNotEqual, i, o) }
func (i Integer) SmallerThan(o Value) (Value, error)      { return numeric(OpSmaller, i, o) }
func (i Integer) SmallerEqualThan(o Value) (Value, error) { return numeric(OpSmallerEqual, i, o) }
func (i Integer) LargerThan(o Value) (Value, error)       { return numeric(OpLarger, i, o) }
func (i Integer) LargerEqualThan(o Value) (Value, error)  { return numeric(OpLargerEqual, i, o) }

func (l Long) Plus(o Value) (Value, error)             { return numeric(OpPlus, l, o) }
func (l Long) Minus(o Value) (Value, error)            { return numeric(OpMinus, l, o) }
func (l Long) Multiply(o Value) (Value, error)         { return numeric(OpMultiply, l, o) }
func (l Long) Divide(o Value) (Value, error)           { return numeric(OpDivide, l, o) }
func (l Long) Modulo(o Value) (Value, error)           { return numeric(OpModulo, l, o) }
func (l Long) Power(o Value) (Value, error)            { return numeric(OpPower, l, o) }
func (l Long) Equals(o Value) (Value, error)           { return numeric(OpEquals, l, o) }
func (l Long) NotEqual(o Value) (Value, error)         { return numeric(OpNotEqual, l, o) }
func (l Long) SmallerThan(o Value) (Value, error)      { return numeric(OpSmaller, l, o) }
func (l Long) SmallerEqualThan(o Value) (Value, error) { return numeric(OpSmallerEqual, l, o) }
func (l Long) LargerThan(o Value) (Value, error)       { return numeric(OpLarger, l, o) }
func (l Long) LargerEqualThan(o Value) (Value, error)  { return numeric(OpLargerEqual, l, o) }

func (r Real) Plus(o Value) (Value, error)             { return numeric(OpPlus, r, o) }
func (r Real) Minus(o Value) (Value, error)            { return numeric(OpMinus, r, o) }
func (r Real) Multiply(o Value) (Value, error)         { return numeric(OpMultiply, r, o) }
func (r Real) Divide(o Value) (Value, error)           { return numeric(OpDivide, r, o) }
func (r Real) Modulo(o Value) (Value, error)           { return numeric(OpModulo, r, o) }
func (r Real) Power(o Value) (Value, error)            { return numeric(OpPower, r, o) }
func (r Real) Equals(o Value) (Value, error)           { return numeric(OpEquals, r, o) }
func (r Real) NotEqual(o Value) (Value, error)         { return numeric(OpNotEqual, r, o) }
func (r Real) SmallerThan(o Value) (Value, error)      { return numeric(OpSmaller, r, o) }
func (r Real) SmallerEqualThan(o Value) (Value, error) { return numeric(OpSmallerEqual, r, o) }
func (r Real) LargerThan(o Value) (Value, error)       { return numeric(OpLarger, r, o) }
func (r Real) LargerEqualThan(o Value) (Value, error)  { return numeric(OpLargerEqual, r, o) }

func (s String) Plus(o Value) (Value, error)             { return text(OpPlus, s, o) }
func (s String) Minus(o Value) (Value, error)            { return text(OpMinus, s, o) }
func (s String) Multiply(o Value) (Value, error)         { return text(OpMultiply, s, o) }
func (s String) Divide(o Value) (Value, error)           { return text(OpDivide, s, o) }
func (s String) Modulo(o Value) (Value, error)           { return text(OpModulo, s, o) }
func (s String) Power(o Value) (Value, error)            { return text(OpPower, s, o) }
func (s String) Equals(o Value) (Value, error)           { return text(OpEquals, s, o) }
func (s String) NotEqual(o Value) (Value, error)         { return text(OpNotEqual, s, o) }
func (s String) SmallerThan(o Value) (Value, error)      { return text(OpSmaller, s, o) }
func (s String) SmallerEqualThan(o Value) (Value, error) { return text(OpSmallerEqual, s, o) }
func (s String) LargerThan(o Value) (Value, error)       { return text(OpLarger, s, o) }
func (s String) LargerEqualThan(o Value) (Value, error)  { return text(OpLargerEqual, s, o) }

func (b Boolean) Plus(o Value) (Value, error)             { return logical(OpPlus, b, o) }
func (b Boolean) Minus(o Value) (Value, error)            { return logical(OpMinus, b, o) }
func (b Boolean) Multiply(o Value) (Value, error)         { return logical(OpMultiply, b, o) }
func (b Boolean) Divide(o Value) (Value, error)           { return logical(OpDivide, b, o) }
func (b Boolean) Modulo(o Value) (Value, error)           { return logical(OpModulo, b, o) }
func (b Boolean) Power(o Value) (Value, error)            { return logical(OpPower, b, o) }
func (b Boolean) Equals(o Value) (Value, error)           { return logical(OpEquals, b, o) }
func (b Boolean) NotEqual(o Value) (Value, error)         { return logical(OpNotEqual, b, o) }
func (b Boolean) SmallerThan(o Value) (Value, error)      { return logical(OpSmaller, b, o) }
func (b Boolean) SmallerEqualThan(o Value) (Value, error) { return logical(OpSmallerEqual, b, o) }
func (b Boolean) LargerThan(o Value) (Value, error)       { return logical(OpLarger, b, o) }
func (b Boolean) LargerEqualThan(o Value) (Value, error)  { return logical(OpLargerEqual, b, o) }
