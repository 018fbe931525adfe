// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtlsim

import (
	"github.com/pkg/errors"
)

// edge tracks bit 0 of a watched signal over the last two settled states.
//
type edge struct {
	slot      int
	prev, cur bool
}

func bit0(v Value) bool { return v.Int64()&1 != 0 }

// Watch starts edge detection on the named scalar signals. Their state is
// sampled at the end of every settle loop.
//
func (m *Module) Watch(names ...string) error {
	if m.watch == nil {
		m.watch = make(map[string]*edge, len(names))
	}
	for _, n := range names {
		i, ok := m.st.lookup(n)
		if !ok {
			return errors.WithStack(&UnresolvedSymbolError{Name: n})
		}
		if m.st.kinds[i] == KindArray {
			return errors.WithStack(&UnsupportedTypeError{Type: m.st.vars[i].Type, Context: "edge detection", Loc: m.st.vars[i].Loc})
		}
		b := bit0(m.st.vals[i])
		m.watch[n] = &edge{slot: i, prev: b, cur: b}
	}
	return nil
}

func (m *Module) sample() {
	for _, e := range m.watch {
		e.prev, e.cur = e.cur, bit0(m.st.vals[e.slot])
	}
}

func (m *Module) resetEdges() {
	for _, e := range m.watch {
		b := bit0(m.st.vals[e.slot])
		e.prev, e.cur = b, b
	}
}

// Rose returns true if the watched signal went from 0 to 1 during the last
// settle.
//
func (m *Module) Rose(name string) bool {
	e := m.watch[name]
	return e != nil && !e.prev && e.cur
}

// Fell returns true if the watched signal went from 1 to 0 during the last
// settle.
//
func (m *Module) Fell(name string) bool {
	e := m.watch[name]
	return e != nil && e.prev && !e.cur
}
