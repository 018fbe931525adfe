// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package ast declares the types used to represent an elaborated hardware
// design: typed variables, top-level blocks and expressions.
//
// Nodes carry no behavior. They are produced once by a front-end (see package
// vxml or the construction helpers in this package) and are read-only
// afterwards, so a single tree can be shared by any number of simulated
// module instances.
//
package ast

import (
	"math/big"
	"strconv"
)

// Loc is a source location as reported by the elaboration front-end.
//
type Loc struct {
	File string
	Line int
	Col  int
}

// Pos returns l. It makes any node embedding a Loc implement Node.
//
func (l Loc) Pos() Loc { return l }

func (l Loc) String() string {
	if l.File == "" && l.Line == 0 {
		return "-"
	}
	return l.File + ":" + strconv.Itoa(l.Line) + ":" + strconv.Itoa(l.Col)
}

// A Node is any node of the tree.
//
type Node interface {
	Pos() Loc
}

// An Expr is an expression or statement node.
//
type Expr interface {
	Node
	exprNode()
}

// A Datatype is either a *Logic or an *Array.
//
type Datatype interface {
	String() string
	dtype()
}

// Logic is a scalar bit vector of the given width.
//
type Logic struct {
	Width  int
	Signed bool
}

func (*Logic) dtype() {}

func (t *Logic) String() string {
	if t.Signed {
		return "logic signed [" + strconv.Itoa(t.Width) + "]"
	}
	return "logic[" + strconv.Itoa(t.Width) + "]"
}

// Array is an unpacked array of Elem with bounds [High:Low].
//
type Array struct {
	Elem Datatype
	Low  int
	High int
}

func (*Array) dtype() {}

func (t *Array) String() string {
	var e string
	if t.Elem != nil {
		e = t.Elem.String()
	}
	return e + " [" + strconv.Itoa(t.High) + ":" + strconv.Itoa(t.Low) + "]"
}

// Len returns the number of elements in the array.
//
func (t *Array) Len() int {
	n := t.High - t.Low
	if n < 0 {
		n = -n
	}
	return n + 1
}

// VarRef references a variable by name.
//
type VarRef struct {
	Loc
	Name string
}

// VarDecl declares a variable. At module level, it declares a signal; inside
// a block, a local temporary.
//
type VarDecl struct {
	Loc
	Name string
	Type Datatype
	// Const is an optional constant value (a *Const or *BigConst).
	Const Expr
	// Init is an optional array initializer.
	Init []ArrayItem
}

// ArrayItem is a single entry of an array initializer.
//
type ArrayItem struct {
	Index int
	Value Expr
}

// Const is a constant that fits a machine word.
//
type Const struct {
	Loc
	Value int64
	Width int
}

// BigConst is an arbitrary precision constant. Value must not be modified.
//
type BigConst struct {
	Loc
	Value *big.Int
	Width int
}

// Unop is a unary operation. Width is the source width used by "extends".
//
type Unop struct {
	Loc
	Op    string
	X     Expr
	Width int
}

// Binop is a binary operation.
//
// For the assignment operators (assign, contassign, assignpre, assigndly,
// assignpost), the destination is Right and the source is Left.
//
type Binop struct {
	Loc
	Op    string
	Left  Expr
	Right Expr
}

// Triop is a ternary operation: "if" statements and "cond"/"condbound"
// expressions. Right is optional for "if".
//
type Triop struct {
	Loc
	Op    string
	Cond  Expr
	Left  Expr
	Right Expr
}

// Block is a sequence of expressions. At module level, a named Block is an
// evaluator unit. A Block of kind "sformatf" is a formatted argument list
// whose Name is the format string.
//
type Block struct {
	Loc
	Name  string
	Kind  string
	Exprs []Expr
}

// While is a three clause loop. Pre and Inc are optional.
//
type While struct {
	Loc
	Pre  Expr
	Cond Expr
	Inc  Expr
	Body Expr
}

// FuncCall calls a runtime builtin (names starting with '$') or another
// top-level block.
//
type FuncCall struct {
	Loc
	Name string
	Args []Expr
}

func (*VarRef) exprNode()   {}
func (*VarDecl) exprNode()  {}
func (*Const) exprNode()    {}
func (*BigConst) exprNode() {}
func (*Unop) exprNode()     {}
func (*Binop) exprNode()    {}
func (*Triop) exprNode()    {}
func (*Block) exprNode()    {}
func (*While) exprNode()    {}
func (*FuncCall) exprNode() {}

// Lifecycle block names.
//
const (
	CtorVarReset  = "ctor_var_reset"
	EvalInitial   = "eval_initial"
	EvalSettle    = "eval_settle"
	Eval          = "eval"
	ChangeRequest = "change_request"
)

// Module is an elaborated design.
//
type Module struct {
	Name   string
	Vars   []*VarDecl
	Blocks []*Block
}

// Var returns the variable with the given name or nil.
//
func (m *Module) Var(name string) *VarDecl {
	for _, v := range m.Vars {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// Block returns the top-level block with the given name or nil.
//
func (m *Module) Block(name string) *Block {
	for _, b := range m.Blocks {
		if b.Name == name {
			return b
		}
	}
	return nil
}
