// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtlsim

import (
	"math/big"
	"math/bits"
)

// Word operators follow 32-bit two's complement semantics for bitwise
// operations and 64-bit integer semantics for arithmetic. As soon as one
// operand is a big value, the operation is carried out in arbitrary
// precision and yields a big value.

type binopFn func(a, b Value) Value

func arith(w func(x, y int64) int64, b func(z, x, y *big.Int) *big.Int) binopFn {
	return func(x, y Value) Value {
		if x.kind == KindWord && y.kind == KindWord {
			return Word(w(x.w, y.w))
		}
		return Big(b(new(big.Int), x.big(), y.big()))
	}
}

func shiftCount(v Value) uint {
	n := v.Int64()
	if n < 0 || v.kind == KindBig && !v.b.IsInt64() {
		return 1 << 16
	}
	if n > 1<<16 {
		return 1 << 16
	}
	return uint(n)
}

var binops = map[string]binopFn{
	"and": arith(func(x, y int64) int64 { return int64(int32(x) & int32(y)) }, (*big.Int).And),
	"or":  arith(func(x, y int64) int64 { return int64(int32(x) | int32(y)) }, (*big.Int).Or),
	"xor": arith(func(x, y int64) int64 { return int64(int32(x) ^ int32(y)) }, (*big.Int).Xor),
	"add": arith(func(x, y int64) int64 { return x + y }, (*big.Int).Add),
	"sub": arith(func(x, y int64) int64 { return x - y }, (*big.Int).Sub),
	"mul": arith(func(x, y int64) int64 { return x * y }, (*big.Int).Mul),
	"div": arith(
		func(x, y int64) int64 {
			if y == 0 {
				return 0
			}
			return x / y
		},
		func(z, x, y *big.Int) *big.Int {
			if y.Sign() == 0 {
				return z.SetInt64(0)
			}
			return z.Quo(x, y)
		}),
	"moddiv": arith(
		func(x, y int64) int64 {
			if y == 0 {
				return 0
			}
			return x % y
		},
		func(z, x, y *big.Int) *big.Int {
			if y.Sign() == 0 {
				return z.SetInt64(0)
			}
			return z.Rem(x, y)
		}),
	"shiftl": func(x, y Value) Value {
		n := shiftCount(y)
		if x.kind == KindWord {
			if n >= 32 {
				return Word(0)
			}
			return Word(int64(int32(uint32(x.w) << n)))
		}
		return Big(new(big.Int).Lsh(x.big(), n))
	},
	"shiftr": func(x, y Value) Value {
		n := shiftCount(y)
		if x.kind == KindWord {
			if n >= 32 {
				return Word(0)
			}
			return Word(int64(uint32(x.w) >> n))
		}
		return Big(new(big.Int).Rsh(x.big(), n))
	},
	"shiftrs": func(x, y Value) Value {
		n := shiftCount(y)
		if x.kind == KindWord {
			if n > 31 {
				n = 31
			}
			return Word(int64(int32(x.w) >> n))
		}
		return Big(new(big.Int).Rsh(x.big(), n))
	},
}

func init() {
	// signed variants
	binops["muls"] = binops["mul"]
	binops["divs"] = binops["div"]
	binops["moddivs"] = binops["moddiv"]
}

func compare(x, y Value) int {
	if x.kind == KindWord && y.kind == KindWord {
		switch {
		case x.w < y.w:
			return -1
		case x.w > y.w:
			return 1
		}
		return 0
	}
	return x.big().Cmp(y.big())
}

type relFn func(c int) bool

var relops = map[string]relFn{
	"eq":   func(c int) bool { return c == 0 },
	"neq":  func(c int) bool { return c != 0 },
	"gt":   func(c int) bool { return c > 0 },
	"lt":   func(c int) bool { return c < 0 },
	"gte":  func(c int) bool { return c >= 0 },
	"lte":  func(c int) bool { return c <= 0 },
	"gts":  func(c int) bool { return c > 0 },
	"lts":  func(c int) bool { return c < 0 },
	"gtes": func(c int) bool { return c >= 0 },
	"ltes": func(c int) bool { return c <= 0 },
}

type unopFn func(x Value, width int) Value

var unops = map[string]unopFn{
	"not": func(x Value, _ int) Value {
		if x.kind == KindWord {
			return Word(int64(^int32(x.w)))
		}
		return Big(new(big.Int).Not(x.big()))
	},
	"negate": func(x Value, _ int) Value {
		if x.kind == KindWord {
			return Word(-x.w)
		}
		return Big(new(big.Int).Neg(x.big()))
	},
	"lognot": func(x Value, _ int) Value { return Bool(x.IsZero()) },
	"extends": func(x Value, width int) Value {
		return signExtend(x, width)
	},
	"ccast": func(x Value, _ int) Value { return x },
}

// signExtend sign extends x from width bits. Words are extended to 32 bits
// through a shift-left/shift-right pair.
//
func signExtend(x Value, width int) Value {
	if width <= 0 {
		return x
	}
	if x.kind == KindWord {
		if width >= 32 {
			return Word(int64(int32(x.w)))
		}
		shift := uint(32 - width)
		return Word(int64(int32(uint32(x.w)<<shift) >> shift))
	}
	b := x.big()
	m := new(big.Int).Lsh(big.NewInt(1), uint(width))
	r := new(big.Int).And(b, new(big.Int).Sub(m, big.NewInt(1)))
	if r.Bit(width-1) == 1 {
		r.Sub(r, m)
	}
	return Big(r)
}

// reductions backing the red* unops. They are registered as builtins.

func popcount(x Value) int {
	if x.kind == KindWord {
		return bits.OnesCount32(uint32(x.w))
	}
	n := 0
	for _, w := range new(big.Int).Abs(x.big()).Bits() {
		n += bits.OnesCount(uint(w))
	}
	return n
}

func redxor(x Value) Value { return Word(int64(popcount(x) & 1)) }

func redor(x Value) Value { return Bool(!x.IsZero()) }

func redand(x Value, width int) Value {
	if width <= 0 {
		width = 32
		if x.kind == KindBig {
			width = x.b.BitLen()
		}
	}
	if width == 0 {
		return Value{}
	}
	if x.kind == KindWord && width <= 32 {
		m := uint32(1)<<uint(width) - 1
		if width == 32 {
			m = ^uint32(0)
		}
		return Bool(uint32(x.w)&m == m)
	}
	m := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width)), big.NewInt(1))
	return Bool(new(big.Int).And(x.big(), m).Cmp(m) == 0)
}
