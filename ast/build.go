package ast

import "math/big"

// Construction helpers. They produce nodes with a zero Loc and are mostly
// useful for hand-written designs and tests.

// Bits returns a scalar logic type of the given width.
func Bits(width int) *Logic { return &Logic{Width: width} }

// ArrayOf returns an array type [high:low] of elem.
func ArrayOf(elem Datatype, low, high int) *Array {
	return &Array{Elem: elem, Low: low, High: high}
}

// Var declares a module variable.
func Var(name string, t Datatype) *VarDecl { return &VarDecl{Name: name, Type: t} }

// Local declares a local temporary. It is identical to Var and exists for
// readability.
func Local(name string, t Datatype) *VarDecl { return &VarDecl{Name: name, Type: t} }

// Ref references a variable.
func Ref(name string) *VarRef { return &VarRef{Name: name} }

// Int returns a word constant.
func Int(v int64) *Const { return &Const{Value: v, Width: 32} }

// BigInt returns an arbitrary precision constant.
func BigInt(v *big.Int, width int) *BigConst { return &BigConst{Value: v, Width: width} }

// Assign returns an assignment of src to dst.
//
// Note that the destination is stored as the Right operand.
func Assign(dst, src Expr) *Binop { return &Binop{Op: "assign", Left: src, Right: dst} }

// Bin returns a binary operation.
func Bin(op string, l, r Expr) *Binop { return &Binop{Op: op, Left: l, Right: r} }

// Un returns a unary operation.
func Un(op string, x Expr) *Unop { return &Unop{Op: op, X: x} }

// Extend returns a sign extension of x from width bits.
func Extend(x Expr, width int) *Unop { return &Unop{Op: "extends", X: x, Width: width} }

// Sel returns the array element arr[index].
func Sel(arr, index Expr) *Binop { return &Binop{Op: "arraysel", Left: arr, Right: index} }

// ChangeDet returns a change detection of live against its shadow copy.
func ChangeDet(live, shadow Expr) *Binop {
	return &Binop{Op: "changedet", Left: live, Right: shadow}
}

// If returns an if statement. els may be nil.
func If(cond, then, els Expr) *Triop { return &Triop{Op: "if", Cond: cond, Left: then, Right: els} }

// Cond returns a conditional expression.
func Cond(cond, a, b Expr) *Triop { return &Triop{Op: "cond", Cond: cond, Left: a, Right: b} }

// Seq returns an anonymous block.
func Seq(exprs ...Expr) *Block { return &Block{Exprs: exprs} }

// Func returns a named top-level block.
func Func(name string, exprs ...Expr) *Block { return &Block{Name: name, Exprs: exprs} }

// Format returns a formatted argument list for $display and friends.
func Format(format string, args ...Expr) *Block {
	return &Block{Name: format, Kind: "sformatf", Exprs: args}
}

// Call returns a function call.
func Call(name string, args ...Expr) *FuncCall { return &FuncCall{Name: name, Args: args} }

// Return returns a creturn statement.
func Return(x Expr) *Unop { return &Unop{Op: "creturn", X: x} }

// Reset returns a creset statement for the named variable.
func Reset(name string) *Unop { return &Unop{Op: "creset", X: Ref(name)} }

// Loop returns a while loop.
func Loop(pre, cond, inc, body Expr) *While {
	return &While{Pre: pre, Cond: cond, Inc: inc, Body: body}
}
