package rtllib_test

import (
	"errors"
	"strings"
	"testing"

	rs "github.com/db47h/rtlsim"
	rl "github.com/db47h/rtlsim/rtllib"
	"github.com/spf13/afero"
)

func TestDFF(t *testing.T) {
	m := newModule(t, rl.DFF(8))
	defer m.Dispose()

	data := []int64{3, 0, 255, 42, 42, 7}
	for i, d := range data {
		m.SetInt("d", d)
		if err := m.Tick(); err != nil {
			t.Fatal(err)
		}
		if i > 0 {
			if q := m.Get("q").Int64(); q != data[i-1] {
				t.Fatalf("cycle %d: expected q=%d, got %d", i, data[i-1], q)
			}
		}
		if err := m.Tock(); err != nil {
			t.Fatal(err)
		}
		if q := m.Get("q").Int64(); q != d {
			t.Fatalf("cycle %d: expected q=%d, got %d", i, d, q)
		}
	}
}

func TestCounter(t *testing.T) {
	m := newModule(t, rl.Counter(3))
	defer m.Dispose()

	m.SetInt("en", 1)
	for i := 1; i <= 10; i++ {
		if err := m.TickTock(); err != nil {
			t.Fatal(err)
		}
		exp := int64(i & 7)
		if out := m.Get("out").Int64(); out != exp {
			t.Fatalf("cycle %d: expected %d, got %d", i, exp, out)
		}
		if tc := m.Get("tc").Bool(); tc != (exp == 7) {
			t.Fatalf("cycle %d: tc = %v", i, tc)
		}
		if r := m.SettleRounds(); r > 2 {
			t.Fatalf("cycle %d: settled in %d rounds", i, r)
		}
	}
	m.SetInt("reset", 1)
	if err := m.TickTock(); err != nil {
		t.Fatal(err)
	}
	if out := m.Get("out").Int64(); out != 0 {
		t.Fatalf("expected 0 after reset, got %d", out)
	}
	m.SetInt("reset", 0)
	m.SetInt("en", 0)
	if _, err := m.Run(5); err != nil {
		t.Fatal(err)
	}
	if out := m.Get("out").Int64(); out != 0 {
		t.Fatalf("expected 0 with en low, got %d", out)
	}
}

func TestOscillator(t *testing.T) {
	m, err := rs.NewModule(rl.Oscillator(), rs.WithMaxSettleRounds(10))
	if err != nil {
		t.Fatal(err)
	}
	defer m.Dispose()
	err = m.PowerCycle()
	var nc *rs.NonConvergenceError
	if !errors.As(err, &nc) {
		t.Fatalf("expected a NonConvergenceError, got %v", err)
	}
	if nc.Rounds != 10 {
		t.Fatalf("expected 10 rounds, got %d", nc.Rounds)
	}
	if err = m.Eval(); err == nil {
		t.Fatal("Eval succeeded on a failed module")
	}
}

func TestROM(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "mem/rom.hex", []byte("de\nad\n\nbe\n// comment\nef\n"), 0644); err != nil {
		t.Fatal(err)
	}
	m := newModule(t, rl.ROM("mem/rom.hex", 8, 8, true), rs.WithFiles(rs.NewFSProvider(fs)))
	defer m.Dispose()

	exp := []int64{0xde, 0xad, 0xbe, 0xef, 0, 0, 0, 0}
	for i, e := range exp {
		m.SetInt("addr", int64(i))
		if err := m.Eval(); err != nil {
			t.Fatal(err)
		}
		if d := m.Get("data").Int64(); d != e {
			t.Errorf("mem[%d]: expected %x, got %x", i, e, d)
		}
	}
}

func TestROM_tooSmall(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "rom.bin", []byte("1\n10\n11\n100\n101\n"), 0644)
	m, err := rs.NewModule(rl.ROM("rom.bin", 4, 4, false), rs.WithFiles(rs.NewFSProvider(fs)))
	if err != nil {
		t.Fatal(err)
	}
	defer m.Dispose()
	err = m.PowerCycle()
	var re *rs.ReadmemError
	if !errors.As(err, &re) {
		t.Fatalf("expected a ReadmemError, got %v", err)
	}
	if re.File != "rom.bin" {
		t.Fatalf("bad file name %q", re.File)
	}
	for i, v := range m.Get("mem").Array().Words() {
		if v != 0 {
			t.Fatalf("mem[%d] = %d, expected untouched memory", i, v)
		}
	}
}

func TestROM_missingFile(t *testing.T) {
	m, err := rs.NewModule(rl.ROM("nope.hex", 8, 4, true), rs.WithFiles(rs.NewFSProvider(afero.NewMemMapFs())))
	if err != nil {
		t.Fatal(err)
	}
	defer m.Dispose()
	err = m.PowerCycle()
	var re *rs.ReadmemError
	if !errors.As(err, &re) {
		t.Fatalf("expected a ReadmemError, got %v", err)
	}
	if re.File != "nope.hex" || !strings.Contains(re.Msg, "could not $readmem") {
		t.Fatalf("unexpected error %v", err)
	}
	for i, v := range m.Get("mem").Array().Words() {
		if v != 0 {
			t.Fatalf("mem[%d] = %d, expected untouched memory", i, v)
		}
	}
}

func TestFinisher(t *testing.T) {
	var out strings.Builder
	m := newModule(t, rl.Finisher(5), rs.WithDisplay(func(s string) { out.WriteString(s) }))
	defer m.Dispose()

	n, err := m.Run(100)
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Fatalf("expected 5 cycles, got %d", n)
	}
	if !m.IsFinished() {
		t.Fatal("not finished")
	}
	if loc := m.FinishedAt(); loc.File != "finisher.v" || loc.Line != 12 {
		t.Fatalf("bad $finish location %v", loc)
	}
	if exp := "finished after 5 cycles in Finisher\n"; out.String() != exp {
		t.Fatalf("expected output %q, got %q", exp, out.String())
	}
}
