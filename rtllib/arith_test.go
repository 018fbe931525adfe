package rtllib_test

import (
	"math/big"
	"testing"
	"testing/quick"

	rs "github.com/db47h/rtlsim"
	rl "github.com/db47h/rtlsim/rtllib"
	"github.com/db47h/rtlsim/rtltest"
)

func TestAdder(t *testing.T) {
	m := newModule(t, rl.Adder(8))
	defer m.Dispose()

	f := func(a, b uint8) bool {
		m.SetInt("a", int64(a))
		m.SetInt("b", int64(b))
		if err := m.Eval(); err != nil {
			t.Fatal(err)
		}
		sum := int64(a) + int64(b)
		return m.Get("out").Int64() == sum&0xff && m.Get("carry").Int64() == sum>>8
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}

func TestAdder_wide(t *testing.T) {
	m := newModule(t, rl.Adder(64))
	defer m.Dispose()

	f := func(a, b uint64) bool {
		x, y := new(big.Int).SetUint64(a), new(big.Int).SetUint64(b)
		m.Set("a", rs.Big(x))
		m.Set("b", rs.Big(y))
		if err := m.Eval(); err != nil {
			t.Fatal(err)
		}
		sum := new(big.Int).Add(x, y)
		lo := new(big.Int).SetUint64(sum.Uint64())
		return m.Get("out").BigInt().Cmp(lo) == 0 && m.Get("carry").Int64() == int64(sum.Bit(64))
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}

func TestRippleAdder(t *testing.T) {
	for _, w := range []int{4, 16, 31} {
		a := newModule(t, rl.Adder(w))
		b := newModule(t, rl.RippleAdder(w))
		rtltest.CompareModules(t, a, b, map[string]uint{"a": uint(w), "b": uint(w)}, []string{"out", "carry"}, 200)
		a.Dispose()
		b.Dispose()
	}
}
