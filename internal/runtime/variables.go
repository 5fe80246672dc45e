package runtime

import (
	"github.com/google/btree"

	"linebasic/internal/basicerr"
	"linebasic/internal/value"
)

//
// BASIC lets a scalar and an array share a name, so the two live in
// separate trees.  An array referenced before any DIM is created on the
// spot with an upper bound of ImplicitDim in every dimension
//

const ImplicitDim = 10

type symbol struct {
	name   string
	kind   value.Kind
	scalar value.Value
	bounds []int // inclusive upper bound per dimension
	cells  []value.Value
}

func lessSymbol(a, b *symbol) bool {

	return a.name < b.name
}

// TraceFunc is told about every store; subs is nil for scalars.
type TraceFunc func(name string, subs []int, old, cur value.Value)

type Variables struct {
	scalars *btree.BTreeG[*symbol]
	arrays  *btree.BTreeG[*symbol]
	base    int
	trace   TraceFunc
}

func NewVariables() *Variables {

	v := &Variables{
		scalars: btree.NewG(4, lessSymbol),
		arrays:  btree.NewG(4, lessSymbol),
	}

	return v
}

func (v *Variables) Reset() {

	v.scalars.Clear(false)
	v.arrays.Clear(false)
	v.base = 0
}

func (v *Variables) SetTrace(fn TraceFunc) {

	v.trace = fn
}

// SetBase implements OPTION BASE; only 0 and 1 are accepted.
func (v *Variables) SetBase(base int) error {

	if base != 0 && base != 1 {
		return basicerr.Runtimef("%s BASE %d", basicerr.EUNSUPPORTEDPRAGM, base)
	}

	v.base = base

	return nil
}

func (v *Variables) Base() int {

	return v.base
}

//
// Get returns the value of a scalar.  A variable that was never
// assigned reads as the zero value of its type; reading does not
// create it
//

func (v *Variables) Get(name string) value.Value {

	if sym, ok := v.scalars.Get(&symbol{name: name}); ok {
		return sym.scalar
	}

	return value.Zero(value.KindOfName(name))
}

// Lookup is Get, but reports whether the variable exists.
func (v *Variables) Lookup(name string) (value.Value, bool) {

	if sym, ok := v.scalars.Get(&symbol{name: name}); ok {
		return sym.scalar, true
	}

	return nil, false
}

// Set coerces val to the type of name and stores it, last write wins.
func (v *Variables) Set(name string, val value.Value) error {

	kind := value.KindOfName(name)

	cv, err := value.Coerce(val, kind)
	if err != nil {
		return err
	}

	sym, ok := v.scalars.Get(&symbol{name: name})
	if !ok {
		sym = &symbol{name: name, kind: kind, scalar: value.Zero(kind)}
		v.scalars.ReplaceOrInsert(sym)
	}

	if v.trace != nil {
		v.trace(name, nil, sym.scalar, cv)
	}

	sym.scalar = cv

	return nil
}

// Dim creates an array with the given inclusive upper bounds.
func (v *Variables) Dim(name string, bounds []int) error {

	if _, ok := v.arrays.Get(&symbol{name: name}); ok {
		return basicerr.Runtimef("%s: %s", basicerr.EDUPLICATEDIM, name)
	}

	_, err := v.createArray(name, bounds)

	return err
}

func (v *Variables) createArray(name string, bounds []int) (*symbol, error) {

	if len(bounds) == 0 {
		return nil, basicerr.Runtimef("%s: %s", basicerr.EDIMENSIONS, name)
	}

	size := 1

	for _, b := range bounds {
		if b < v.base {
			return nil, basicerr.Runtimef("%s: %s(%d)", basicerr.ESUBSCRIPTERROR, name, b)
		}

		size *= b - v.base + 1
	}

	kind := value.KindOfName(name)

	sym := &symbol{
		name:   name,
		kind:   kind,
		bounds: append([]int(nil), bounds...),
		cells:  make([]value.Value, size),
	}

	zero := value.Zero(kind)
	for i := range sym.cells {
		sym.cells[i] = zero
	}

	v.arrays.ReplaceOrInsert(sym)

	return sym, nil
}

func (v *Variables) element(name string, subs []int) (*symbol, int, error) {

	sym, ok := v.arrays.Get(&symbol{name: name})
	if !ok {
		bounds := make([]int, len(subs))
		for i := range bounds {
			bounds[i] = ImplicitDim
		}

		var err error

		sym, err = v.createArray(name, bounds)
		if err != nil {
			return nil, 0, err
		}
	}

	if len(subs) != len(sym.bounds) {
		return nil, 0, basicerr.Runtimef("%s: %s has %d, not %d", basicerr.EDIMENSIONS,
			name, len(sym.bounds), len(subs))
	}

	offset := 0

	for i, s := range subs {
		if s < v.base || s > sym.bounds[i] {
			return nil, 0, basicerr.Runtimef("%s: %s subscript %d", basicerr.ESUBSCRIPTERROR,
				name, s)
		}

		offset = offset*(sym.bounds[i]-v.base+1) + (s - v.base)
	}

	return sym, offset, nil
}

func (v *Variables) GetElement(name string, subs []int) (value.Value, error) {

	sym, offset, err := v.element(name, subs)
	if err != nil {
		return nil, err
	}

	return sym.cells[offset], nil
}

func (v *Variables) SetElement(name string, subs []int, val value.Value) error {

	sym, offset, err := v.element(name, subs)
	if err != nil {
		return err
	}

	cv, err := value.Coerce(val, sym.kind)
	if err != nil {
		return err
	}

	if v.trace != nil {
		v.trace(name, subs, sym.cells[offset], cv)
	}

	sym.cells[offset] = cv

	return nil
}

// Scalars walks the scalar variables in name order.
func (v *Variables) Scalars(fn func(name string, val value.Value) bool) {

	v.scalars.Ascend(func(sym *symbol) bool {
		return fn(sym.name, sym.scalar)
	})
}

// Snapshot copies the scalar variables, for dumps and tests.
func (v *Variables) Snapshot() map[string]value.Value {

	out := make(map[string]value.Value, v.scalars.Len())

	v.Scalars(func(name string, val value.Value) bool {
		out[name] = val
		return true
	})

	return out
}

func (v *Variables) Len() int {

	return v.scalars.Len() + v.arrays.Len()
}
