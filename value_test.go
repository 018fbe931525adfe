package rtlsim

import (
	"math/big"
	"math/bits"
	"testing"
	"testing/quick"

	"github.com/db47h/rtlsim/ast"
)

func TestSignExtend(t *testing.T) {
	if v := signExtend(Word(0x8), 4).Int64(); v != -8 {
		t.Fatalf("extends(0b1000, 4) = %d, expected -8", v)
	}
	f := func(x int32, w uint8) bool {
		width := int(w%31) + 1
		got := signExtend(Word(int64(x)), width).Int64()
		shift := uint(32 - width)
		return got == int64(int32(uint32(x)<<shift)>>shift)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
	// big values
	v := signExtend(Big(new(big.Int).Lsh(big.NewInt(1), 63)), 64)
	if exp := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 63)); v.BigInt().Cmp(exp) != 0 {
		t.Fatalf("extends(1<<63, 64) = %v, expected %v", v, exp)
	}
}

func TestRedxor(t *testing.T) {
	f := func(x uint32) bool {
		return redxor(Word(int64(x))).Int64() == int64(bits.OnesCount32(x)&1)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
	g := func(x uint64) bool {
		return redxor(Big(new(big.Int).SetUint64(x))).Int64() == int64(bits.OnesCount64(x)&1)
	}
	if err := quick.Check(g, nil); err != nil {
		t.Fatal(err)
	}
}

func TestRedand(t *testing.T) {
	td := []struct {
		x     int64
		width int
		exp   int64
	}{
		{0xf, 4, 1},
		{0xe, 4, 0},
		{0x1f, 4, 1},
		{-1, 32, 1},
		{0x7fffffff, 32, 0},
	}
	for _, d := range td {
		if r := redand(Word(d.x), d.width).Int64(); r != d.exp {
			t.Errorf("redand(%x, %d) = %d, expected %d", d.x, d.width, r, d.exp)
		}
	}
}

func TestWordOps(t *testing.T) {
	and, add, shiftl := binops["and"], binops["add"], binops["shiftl"]
	f := func(x, y int32) bool {
		return and(Word(int64(x)), Word(int64(y))).Int64() == int64(x&y) &&
			add(Word(int64(x)), Word(int64(y))).Int64() == int64(x)+int64(y)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
	if v := shiftl(Word(1), Word(32)).Int64(); v != 0 {
		t.Fatalf("1 << 32 = %d, expected 0", v)
	}
	if v := binops["div"](Word(7), Word(0)).Int64(); v != 0 {
		t.Fatalf("7 / 0 = %d, expected 0", v)
	}
	// mixed operands promote to big
	v := add(Word(1), Big(new(big.Int).Lsh(big.NewInt(1), 40)))
	if v.Kind() != KindBig || v.Int64() != 1<<40+1 {
		t.Fatalf("bad mixed add: %v (%v)", v, v.Kind())
	}
}

func TestDefaultValue(t *testing.T) {
	td := []struct {
		t    ast.Datatype
		kind Kind
		mask uint64
	}{
		{ast.Bits(1), KindWord, 0},
		{ast.Bits(31), KindWord, 0},
		{ast.Bits(32), KindBig, 0},
		{ast.Bits(128), KindBig, 0},
		{ast.ArrayOf(ast.Bits(8), 0, 3), KindArray, 0xff},
		{ast.ArrayOf(ast.Bits(9), 0, 3), KindArray, 0xffff},
		{ast.ArrayOf(ast.Bits(31), 3, 0), KindArray, 0xffffffff},
	}
	for _, d := range td {
		v, err := defaultValue(ast.Var("x", d.t))
		if err != nil {
			t.Fatalf("%s: %v", d.t, err)
		}
		if v.Kind() != d.kind {
			t.Errorf("%s: expected kind %v, got %v", d.t, d.kind, v.Kind())
		}
		if !v.IsZero() && v.Kind() != KindArray {
			t.Errorf("%s: non zero default %v", d.t, v)
		}
		if d.kind == KindArray {
			if v.Array().Len() != 4 || v.Array().mask != d.mask {
				t.Errorf("%s: bad array len %d or mask %x", d.t, v.Array().Len(), v.Array().mask)
			}
		}
	}

	// 3D arrays are rejected
	_, err := defaultValue(ast.Var("x", ast.ArrayOf(ast.ArrayOf(ast.ArrayOf(ast.Bits(1), 0, 1), 0, 1), 0, 1)))
	if err == nil {
		t.Fatal("3D array accepted")
	}

	// initializers
	d := ast.Var("rom", ast.ArrayOf(ast.Bits(8), 0, 3))
	d.Init = []ast.ArrayItem{{Index: 1, Value: ast.Int(0x1ff)}, {Index: 9, Value: ast.Int(1)}}
	v, err := defaultValue(d)
	if err != nil {
		t.Fatal(err)
	}
	if ws := v.Array().Words(); ws[0] != 0 || ws[1] != 0xff || ws[2] != 0 {
		t.Fatalf("bad initialized array %v", ws)
	}
	d.Init = []ast.ArrayItem{{Index: 0, Value: ast.Ref("x")}}
	if _, err = defaultValue(d); err == nil {
		t.Fatal("non-const initializer accepted")
	}
}

func TestArray(t *testing.T) {
	v, err := newValue(ast.ArrayOf(ast.ArrayOf(ast.Bits(4), 0, 1), 0, 2), 0)
	if err != nil {
		t.Fatal(err)
	}
	a := v.Array()
	a.At(1).Array().Set(0, Word(0x1ff))
	if x := a.At(1).Array().At(0).Int64(); x != 0xff {
		t.Fatalf("expected masked value 0xff, got %x", x)
	}
	if x := a.At(7); x.Kind() != KindWord || !x.IsZero() {
		t.Fatalf("out of range read returned %v", x)
	}
	c := v.Clone()
	a.At(1).Array().Set(0, Word(3))
	if x := c.Array().At(1).Array().At(0).Int64(); x != 0xff {
		t.Fatalf("clone shares inner arrays")
	}
	a.Fill()
	if !a.At(1).Array().At(0).IsZero() {
		t.Fatal("Fill did not clear inner arrays")
	}
	if !c.Equal(c.Clone()) || c.Equal(v) {
		t.Fatal("bad array equality")
	}
}
