package rtltest_test

import (
	"testing"

	rs "github.com/db47h/rtlsim"
	"github.com/db47h/rtlsim/ast"
	rl "github.com/db47h/rtlsim/rtllib"
	"github.com/db47h/rtlsim/rtltest"
)

func newModule(t *testing.T, mod *ast.Module) *rs.Module {
	t.Helper()
	m, err := rs.NewModule(mod)
	if err != nil {
		t.Fatal(err)
	}
	if err = m.PowerCycle(); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestCompareModules(t *testing.T) {
	a := newModule(t, rl.Adder(12))
	defer a.Dispose()
	b := newModule(t, rl.RippleAdder(12))
	defer b.Dispose()
	rtltest.CompareModules(t, a, b, map[string]uint{"a": 12, "b": 12}, []string{"out", "carry"}, 100)
}

func TestCompareModules_specialized(t *testing.T) {
	for _, sel := range []int64{0, 1} {
		generic := newModule(t, rl.Mux(16))
		special := newModule(t, rl.Mux(16))
		for _, m := range []*rs.Module{generic, special} {
			if err := m.SetInt("sel", sel); err != nil {
				t.Fatal(err)
			}
		}
		if err := special.Specialize(map[string]int64{"sel": sel}); err != nil {
			t.Fatal(err)
		}
		rtltest.CompareModules(t, generic, special, map[string]uint{"a": 16, "b": 16}, []string{"out"}, 100)
		generic.Dispose()
		special.Dispose()
	}
}
