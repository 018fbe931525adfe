// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package rtltest provides utility functions for testing designs.
//
package rtltest

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/db47h/rtlsim"
)

// step runs one clock cycle on clocked modules, a plain Eval otherwise.
//
func step(m *rtlsim.Module) error {
	if m.Has(rtlsim.DefaultClockSignal) {
		return m.TickTock()
	}
	return m.Eval()
}

func mask(width uint) int64 {
	if width >= 63 {
		return 1<<63 - 1
	}
	return 1<<width - 1
}

// CompareModules drives two modules with the same inputs and compares their
// outputs. inputs maps input signal names to their width in bits.
//
// Both modules must have been power cycled. They are tested with all inputs
// at zero, all inputs at one, and iter rounds of random inputs.
//
func CompareModules(t *testing.T, a, b *rtlsim.Module, inputs map[string]uint, outputs []string, iter int) {
	t.Helper()

	seed := time.Now().UnixNano()
	rnd := rand.New(rand.NewSource(seed))

	names := make([]string, 0, len(inputs))
	for n := range inputs {
		if !a.Has(n) || !b.Has(n) {
			t.Fatalf("input %q not found", n)
		}
		names = append(names, n)
	}
	sort.Strings(names)
	for _, o := range outputs {
		if !a.Has(o) || !b.Has(o) {
			t.Fatalf("output %q not found", o)
		}
	}

	values := make(map[string]int64, len(names))
	errString := func(o string) string {
		var sb strings.Builder
		for _, n := range names {
			if sb.Len() > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s=%d", n, values[n])
		}
		return fmt.Sprintf("seed %d\nExpected %s => %s=%v\nGot %v", seed, sb.String(), o, a.Get(o), b.Get(o))
	}

	try := func() {
		t.Helper()
		for _, m := range []*rtlsim.Module{a, b} {
			for _, n := range names {
				if err := m.SetInt(n, values[n]); err != nil {
					t.Fatal(err)
				}
			}
			if err := step(m); err != nil {
				t.Fatal(err)
			}
		}
		for _, o := range outputs {
			if !a.Get(o).Equal(b.Get(o)) {
				t.Fatal(errString(o))
			}
		}
	}

	start := time.Now()

	// all 0
	for _, n := range names {
		values[n] = 0
	}
	try()
	// all 1
	for _, n := range names {
		values[n] = mask(inputs[n])
	}
	try()
	for i := 0; i < iter; i++ {
		for _, n := range names {
			values[n] = rnd.Int63() & mask(inputs[n])
		}
		try()
	}

	t.Logf("%d rounds in %v", iter+2, time.Since(start))
}
