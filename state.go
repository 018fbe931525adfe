// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtlsim

import (
	"github.com/db47h/rtlsim/ast"
	"github.com/pkg/errors"
)

// state is the module state store: one slot per global variable.
//
// Invariant: vals[i] has the storage kind of vars[i].Type.
//
type state struct {
	index map[string]int
	vars  []*ast.VarDecl
	kinds []Kind
	vals  []Value
}

func newState() *state {
	return &state{index: make(map[string]int)}
}

// declare adds or redeclares a global variable and sets it to its default
// value.
//
func (s *state) declare(d *ast.VarDecl) error {
	v, err := defaultValue(d)
	if err != nil {
		return errors.Wrapf(err, "variable %s", d.Name)
	}
	if i, ok := s.index[d.Name]; ok {
		s.vars[i], s.kinds[i], s.vals[i] = d, v.kind, v
		return nil
	}
	s.index[d.Name] = len(s.vals)
	s.vars = append(s.vars, d)
	s.kinds = append(s.kinds, v.kind)
	s.vals = append(s.vals, v)
	return nil
}

func (s *state) lookup(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// store sets slot i to v, converted to the slot's storage kind. Arrays are
// copied element-wise.
//
func (s *state) store(i int, v Value) {
	k := s.kinds[i]
	if k == KindArray {
		v = coerce(k, v)
		if v.a != s.vals[i].a {
			s.vals[i].a.copyFrom(v.a)
		}
		return
	}
	s.vals[i] = coerce(k, v)
}

// Snapshot is a copy of a module state. Keys are variable names.
//
type Snapshot map[string]Value

func (s *state) snapshot() Snapshot {
	snap := make(Snapshot, len(s.vals))
	for i, d := range s.vars {
		snap[d.Name] = s.vals[i].Clone()
	}
	return snap
}

// restore overwrites the state from snap. Names that are not globals are
// ignored, as are values whose kind does not match the variable storage.
// Arrays are copied into the live buffers, which keep their shape.
//
func (s *state) restore(snap Snapshot) {
	for name, v := range snap {
		i, ok := s.index[name]
		if !ok {
			continue
		}
		k := s.kinds[i]
		if (k == KindArray) != (v.kind == KindArray) {
			continue
		}
		if k == KindArray {
			s.vals[i].a.copyFrom(v.a)
			continue
		}
		s.vals[i] = coerce(k, v)
	}
}
