// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtlsim

import (
	"strconv"

	"github.com/db47h/rtlsim/ast"
)

// StructureError is returned by ParseTree for malformed tag streams.
//
type StructureError struct {
	Pos int // rune offset in the input, -1 if unknown
	Msg string
}

func (e *StructureError) Error() string {
	if e.Pos < 0 {
		return e.Msg
	}
	return "at pos " + strconv.Itoa(e.Pos+1) + ": " + e.Msg
}

// UnresolvedSymbolError reports a reference to an unknown variable or
// function.
//
type UnresolvedSymbolError struct {
	Name string
	Loc  ast.Loc
}

func (e *UnresolvedSymbolError) Error() string {
	return e.Loc.String() + ": cannot find symbol '" + e.Name + "'"
}

// UnsupportedOperatorError reports an unknown operator.
//
type UnsupportedOperatorError struct {
	Op   string
	Kind string // unop, binop, triop or expression
	Loc  ast.Loc
}

func (e *UnsupportedOperatorError) Error() string {
	return e.Loc.String() + ": unknown " + e.Kind + " " + e.Op
}

// UnsupportedTypeError reports a datatype that cannot be used in a given
// context (default value, reset, array initializer, store).
//
type UnsupportedTypeError struct {
	Type    ast.Datatype
	Context string
	Loc     ast.Loc
}

func (e *UnsupportedTypeError) Error() string {
	t := "<nil>"
	if e.Type != nil {
		t = e.Type.String()
	}
	return e.Loc.String() + ": unsupported data type for " + e.Context + ": " + t
}

// NonConvergenceError is returned when a settle loop exceeds its round
// bound. It is fatal to the module.
//
type NonConvergenceError struct {
	Phase  string
	Rounds int
}

func (e *NonConvergenceError) Error() string {
	return "model did not converge on " + e.Phase + "() after " + strconv.Itoa(e.Rounds) + " rounds"
}

// ReadmemError is returned by the $readmem builtin.
//
type ReadmemError struct {
	File string
	Msg  string
}

func (e *ReadmemError) Error() string {
	return e.Msg + " '" + e.File + "'"
}
