// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtlsim

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/db47h/rtlsim/ast"
)

// MaxWordWidth is the widest logic type stored as a machine word. Wider
// types are stored as arbitrary precision integers.
//
const MaxWordWidth = 31

// Kind is the storage representation of a Value.
//
type Kind uint8

// Value kinds.
//
const (
	KindWord Kind = iota
	KindBig
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindWord:
		return "word"
	case KindBig:
		return "big"
	case KindArray:
		return "array"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// A Value is the value of a signal: a machine word, an arbitrary precision
// integer or an array.
//
// Big values are immutable: a *big.Int stored in a Value is never modified.
// Arrays are references; use Clone to get an independent copy.
//
// The zero Value is Word(0).
//
type Value struct {
	kind Kind
	w    int64
	b    *big.Int
	a    *Array
}

// Word returns a machine word value.
//
func Word(v int64) Value { return Value{w: v} }

// Big returns an arbitrary precision value. v must not be modified
// afterwards.
//
func Big(v *big.Int) Value {
	if v == nil {
		v = new(big.Int)
	}
	return Value{kind: KindBig, b: v}
}

// ArrayValue wraps an array.
//
func ArrayValue(a *Array) Value { return Value{kind: KindArray, a: a} }

// Bool returns Word(1) if b is true, Word(0) otherwise.
//
func Bool(b bool) Value {
	if b {
		return Value{w: 1}
	}
	return Value{}
}

// Kind returns the storage kind of v.
//
func (v Value) Kind() Kind { return v.kind }

// Int64 returns v as an int64. Big values are truncated to their low 64 bits,
// arrays return 0.
//
func (v Value) Int64() int64 {
	switch v.kind {
	case KindWord:
		return v.w
	case KindBig:
		return truncBig(v.b)
	}
	return 0
}

// BigInt returns a copy of v as a *big.Int. Arrays return 0.
//
func (v Value) BigInt() *big.Int {
	switch v.kind {
	case KindWord:
		return big.NewInt(v.w)
	case KindBig:
		return new(big.Int).Set(v.b)
	}
	return new(big.Int)
}

// Array returns the array wrapped by v or nil.
//
func (v Value) Array() *Array { return v.a }

// IsZero returns true if v is a zero scalar.
//
func (v Value) IsZero() bool {
	switch v.kind {
	case KindWord:
		return v.w == 0
	case KindBig:
		return v.b.Sign() == 0
	}
	return false
}

// Bool returns true if v is a non-zero scalar.
//
func (v Value) Bool() bool {
	return v.kind != KindArray && !v.IsZero()
}

// Equal reports whether v and o hold the same value. Scalars of different
// kinds compare by numeric value; arrays compare element-wise.
//
func (v Value) Equal(o Value) bool {
	switch {
	case v.kind == KindWord && o.kind == KindWord:
		return v.w == o.w
	case v.kind == KindArray || o.kind == KindArray:
		if v.kind != o.kind || len(v.a.elems) != len(o.a.elems) {
			return false
		}
		for i := range v.a.elems {
			if !v.a.elems[i].Equal(o.a.elems[i]) {
				return false
			}
		}
		return true
	}
	return v.big().Cmp(o.big()) == 0
}

// Clone returns a deep copy of v.
//
func (v Value) Clone() Value {
	if v.kind != KindArray {
		return v
	}
	return ArrayValue(v.a.Clone())
}

func (v Value) String() string {
	switch v.kind {
	case KindWord:
		return strconv.FormatInt(v.w, 10)
	case KindBig:
		return v.b.String()
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, e := range v.a.elems {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(e.String())
	}
	b.WriteByte(']')
	return b.String()
}

// big returns v as a *big.Int that must not be modified. It panics on arrays.
//
func (v Value) big() *big.Int {
	switch v.kind {
	case KindWord:
		return big.NewInt(v.w)
	case KindBig:
		return v.b
	}
	panic(rtError{&UnsupportedTypeError{Context: "arithmetic on array"}})
}

var mask64 = new(big.Int).SetUint64(^uint64(0))

func truncBig(b *big.Int) int64 {
	if b.IsInt64() {
		return b.Int64()
	}
	return int64(new(big.Int).And(b, mask64).Uint64())
}

// Array is a fixed size buffer of values.
//
// Elements of logic types up to MaxWordWidth bits are stored as words
// truncated to 8, 16 or 32 bits depending on the element width. Wider
// elements are stored as big values. Out of range reads return zero and out
// of range writes are ignored.
//
type Array struct {
	elem  Kind
	mask  uint64 // word element mask, 0 for non-word elements
	elems []Value
}

// Len returns the array length.
//
func (a *Array) Len() int { return len(a.elems) }

// At returns the element at index i.
//
func (a *Array) At(i int) Value {
	if i < 0 || i >= len(a.elems) {
		if a.elem == KindBig {
			return Big(nil)
		}
		return Value{}
	}
	return a.elems[i]
}

// Set sets the element at index i. v is converted to the element storage.
//
func (a *Array) Set(i int, v Value) {
	if i < 0 || i >= len(a.elems) {
		return
	}
	switch a.elem {
	case KindWord:
		a.elems[i] = Word(int64(uint64(v.Int64()) & a.mask))
	case KindBig:
		if v.kind == KindBig {
			a.elems[i] = v
		} else {
			a.elems[i] = Big(v.BigInt())
		}
	case KindArray:
		if v.kind == KindArray {
			a.elems[i].a.copyFrom(v.a)
		}
	}
}

// Fill sets all scalar elements of a, and of its sub-arrays, to zero.
//
func (a *Array) Fill() {
	for i := range a.elems {
		switch a.elem {
		case KindWord:
			a.elems[i] = Value{}
		case KindBig:
			a.elems[i] = Big(nil)
		case KindArray:
			a.elems[i].a.Fill()
		}
	}
}

// Clone returns a deep copy of a.
//
func (a *Array) Clone() *Array {
	c := &Array{elem: a.elem, mask: a.mask, elems: make([]Value, len(a.elems))}
	for i, e := range a.elems {
		c.elems[i] = e.Clone()
	}
	return c
}

func (a *Array) copyFrom(src *Array) {
	for i := 0; i < len(a.elems) && i < len(src.elems); i++ {
		a.Set(i, src.elems[i])
	}
}

// Words returns the scalar elements of a as int64.
//
func (a *Array) Words() []int64 {
	ws := make([]int64, len(a.elems))
	for i, e := range a.elems {
		ws[i] = e.Int64()
	}
	return ws
}

func wordMask(width int) uint64 {
	switch {
	case width <= 8:
		return 0xff
	case width <= 16:
		return 0xffff
	}
	return 0xffffffff
}

// kindOf returns the storage kind for type t.
//
func kindOf(t ast.Datatype) Kind {
	switch t := t.(type) {
	case *ast.Logic:
		if t.Width > MaxWordWidth {
			return KindBig
		}
	case *ast.Array:
		return KindArray
	}
	return KindWord
}

// coerce converts v to the storage kind k. Storing an array into a scalar or
// a scalar into an array is a runtime error.
//
func coerce(k Kind, v Value) Value {
	switch k {
	case KindWord:
		if v.kind == KindBig {
			return Word(truncBig(v.b))
		}
	case KindBig:
		if v.kind == KindWord {
			return Big(big.NewInt(v.w))
		}
	case KindArray:
		if v.kind == KindArray {
			return v
		}
	}
	if (k == KindArray) != (v.kind == KindArray) {
		panic(rtError{&UnsupportedTypeError{Context: "store of " + v.kind.String() + " into " + k.String()}})
	}
	return v
}

// newValue returns the zero value for type t. Arrays may nest one level
// deep.
//
func newValue(t ast.Datatype, depth int) (Value, error) {
	switch t := t.(type) {
	case *ast.Logic:
		if t.Width > MaxWordWidth {
			return Big(nil), nil
		}
		return Value{}, nil
	case *ast.Array:
		if depth > 1 {
			return Value{}, &UnsupportedTypeError{Type: t, Context: "default value (more than 2 dimensions)"}
		}
		n := t.Len()
		a := &Array{elems: make([]Value, n)}
		switch et := t.Elem.(type) {
		case *ast.Logic:
			if et.Width > MaxWordWidth {
				a.elem = KindBig
				for i := range a.elems {
					a.elems[i] = Big(nil)
				}
			} else {
				a.elem = KindWord
				a.mask = wordMask(et.Width)
			}
		case *ast.Array:
			a.elem = KindArray
			for i := range a.elems {
				sub, err := newValue(et, depth+1)
				if err != nil {
					return Value{}, err
				}
				a.elems[i] = sub
			}
		default:
			return Value{}, &UnsupportedTypeError{Type: t, Context: "default value"}
		}
		return ArrayValue(a), nil
	}
	return Value{}, &UnsupportedTypeError{Type: t, Context: "default value"}
}

// constValue returns the value of a constant expression.
//
func constValue(e ast.Expr) (Value, bool) {
	switch e := e.(type) {
	case *ast.Const:
		return Word(e.Value), true
	case *ast.BigConst:
		return Big(e.Value), true
	}
	return Value{}, false
}

// defaultValue returns the initial value of a variable: its constant value or
// array initializer if any, zero otherwise.
//
func defaultValue(d *ast.VarDecl) (Value, error) {
	v, err := newValue(d.Type, 0)
	if err != nil {
		return Value{}, err
	}
	if d.Const != nil {
		c, ok := constValue(d.Const)
		if !ok || v.kind == KindArray {
			return Value{}, &UnsupportedTypeError{Type: d.Type, Context: "constant value", Loc: d.Loc}
		}
		return coerce(v.kind, c), nil
	}
	if len(d.Init) > 0 {
		if v.kind != KindArray || v.a.elem == KindArray {
			return Value{}, &UnsupportedTypeError{Type: d.Type, Context: "array initializer", Loc: d.Loc}
		}
		for _, it := range d.Init {
			c, ok := constValue(it.Value)
			if !ok {
				return Value{}, &UnsupportedTypeError{Type: d.Type, Context: "non-const expr in initarray", Loc: d.Loc}
			}
			v.a.Set(it.Index, c)
		}
	}
	return v, nil
}
