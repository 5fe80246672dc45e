// Package value implements the runtime value model: five immutable
// variants with arithmetic, comparison and coercion rules.
package value

import (
	"math"
	"strconv"
	"strings"

	"linebasic/internal/basicerr"
)

type Kind int

const (
	IntegerKind Kind = iota
	LongKind
	RealKind
	StringKind
	BooleanKind
)

var kindNames = [...]string{
	IntegerKind: "Integer",
	LongKind:    "Long",
	RealKind:    "Real",
	StringKind:  "String",
	BooleanKind: "Boolean",
}

func (k Kind) String() string {

	return kindNames[k]
}

func (k Kind) IsNumeric() bool {

	return k == IntegerKind || k == LongKind || k == RealKind
}

//
// Every operation returns a brand new Value or an error, and never
// touches its operands.  A nil Value is never returned together with
// a nil error
//

type Value interface {
	Kind() Kind
	String() string

	Plus(Value) (Value, error)
	Minus(Value) (Value, error)
	Multiply(Value) (Value, error)
	Divide(Value) (Value, error)
	Modulo(Value) (Value, error)
	Power(Value) (Value, error)

	Equals(Value) (Value, error)
	NotEqual(Value) (Value, error)
	SmallerThan(Value) (Value, error)
	SmallerEqualThan(Value) (Value, error)
	LargerThan(Value) (Value, error)
	LargerEqualThan(Value) (Value, error)
}

type Integer int32
type Long int64
type Real float64
type String string
type Boolean bool

func (Integer) Kind() Kind { return IntegerKind }
func (Long) Kind() Kind    { return LongKind }
func (Real) Kind() Kind    { return RealKind }
func (String) Kind() Kind  { return StringKind }
func (Boolean) Kind() Kind { return BooleanKind }

func (i Integer) String() string { return strconv.FormatInt(int64(i), 10) }
func (l Long) String() string    { return strconv.FormatInt(int64(l), 10) }
func (r Real) String() string    { return formatReal(float64(r)) }
func (s String) String() string  { return string(s) }

func (b Boolean) String() string {

	if b {
		return "TRUE"
	}

	return "FALSE"
}

//
// Reals print in their shortest exact form.  Integral values keep a
// trailing '.0' so a Real never looks like an Integer.  Very large or
// very small magnitudes switch to exponent form
//

func formatReal(f float64) string {

	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-3 || abs >= 1e7) {
		return strconv.FormatFloat(f, 'E', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}

// KindOfName returns the type a variable name declares through its suffix.
func KindOfName(name string) Kind {

	if name == "" {
		return RealKind
	}

	switch name[len(name)-1] {
	default:
		return RealKind

	case '%':
		return IntegerKind

	case '&':
		return LongKind

	case '#':
		return RealKind

	case '$':
		return StringKind

	case '?':
		return BooleanKind
	}
}

func Zero(k Kind) Value {

	switch k {
	default:
		return Real(0)

	case IntegerKind:
		return Integer(0)

	case LongKind:
		return Long(0)

	case StringKind:
		return String("")

	case BooleanKind:
		return Boolean(false)
	}
}

//
// Coerce converts v for storage into a variable of kind k.  This is the
// only place implicit conversion happens: numeric kinds convert among
// themselves (Reals truncate toward zero), everything else must already
// match
//

func Coerce(v Value, k Kind) (Value, error) {

	if v.Kind() == k {
		return v, nil
	}

	if !v.Kind().IsNumeric() || !k.IsNumeric() {
		return nil, basicerr.Mismatch("cannot assign %s to %s", v.Kind(), k)
	}

	switch k {
	default:
		return Real(toFloat(v)), nil

	case IntegerKind:
		n, err := toInt64(v)
		if err != nil {
			return nil, err
		}

		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, basicerr.Runtimef("%s: %s does not fit an Integer",
				basicerr.EOVERFLOW, v)
		}

		return Integer(n), nil

	case LongKind:
		n, err := toInt64(v)
		if err != nil {
			return nil, err
		}

		return Long(n), nil
	}
}

func toFloat(v Value) float64 {

	switch v := v.(type) {
	default:
		return 0

	case Integer:
		return float64(v)

	case Long:
		return float64(v)

	case Real:
		return float64(v)
	}
}

func toInt64(v Value) (int64, error) {

	switch v := v.(type) {
	default:
		return 0, basicerr.Mismatch("%s is not numeric", v.Kind())

	case Integer:
		return int64(v), nil

	case Long:
		return int64(v), nil

	case Real:
		f := math.Trunc(float64(v))
		if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, basicerr.Runtimef("%s: %s does not fit a Long",
				basicerr.EOVERFLOW, v)
		}

		return int64(f), nil
	}
}

// ToInt returns v as a Go int; Reals truncate.
func ToInt(v Value) (int, error) {

	n, err := toInt64(v)

	return int(n), err
}

// ToFloat returns any numeric v as a float64.
func ToFloat(v Value) (float64, error) {

	if !v.Kind().IsNumeric() {
		return 0, basicerr.Mismatch("%s is not numeric", v.Kind())
	}

	return toFloat(v), nil
}

// Truth interprets v as a condition: Booleans as is, numbers as non-zero.
func Truth(v Value) (bool, error) {

	switch v := v.(type) {
	default:
		return false, basicerr.Mismatch("%s is not a condition", v.Kind())

	case Boolean:
		return bool(v), nil

	case Integer, Long, Real:
		return toFloat(v) != 0, nil
	}
}

func Negate(v Value) (Value, error) {

	switch v := v.(type) {
	default:
		return nil, basicerr.Mismatch("cannot negate %s", v.Kind())

	case Integer:
		return -v, nil

	case Long:
		return -v, nil

	case Real:
		return -v, nil
	}
}

func Not(v Value) (Value, error) {

	b, ok := v.(Boolean)
	if !ok {
		return nil, basicerr.Mismatch("NOT needs a Boolean, not %s", v.Kind())
	}

	return !b, nil
}

func LogicalAnd(a, b Value) (Value, error) {

	l, r, err := booleans("AND", a, b)
	if err != nil {
		return nil, err
	}

	return l && r, nil
}

func LogicalOr(a, b Value) (Value, error) {

	l, r, err := booleans("OR", a, b)
	if err != nil {
		return nil, err
	}

	return l || r, nil
}

func booleans(op string, a, b Value) (Boolean, Boolean, error) {

	l, lok := a.(Boolean)
	r, rok := b.(Boolean)

	if !lok || !rok {
		return false, false, basicerr.Mismatch("%s %s %s", a.Kind(), op, b.Kind())
	}

	return l, r, nil
}
