// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package rtllib provides ready made designs for the rtlsim kernel.
//
// Designs follow Verilator's block conventions (ctor_var_reset, eval_initial,
// eval_settle, eval and change_request) and can be used as building blocks in
// tests or as examples of hand-written designs.
//
package rtllib

import (
	"math/big"

	"github.com/db47h/rtlsim"
	"github.com/db47h/rtlsim/ast"
)

// common signal names
const (
	pA     = "a"
	pB     = "b"
	pIn    = "in"
	pOut   = "out"
	pSel   = "sel"
	pClk   = "clk"
	pReset = "reset"
)

var (
	a   = ast.Ref(pA)
	b   = ast.Ref(pB)
	in  = ast.Ref(pIn)
	out = ast.Ref(pOut)
	one = ast.Int(1)
)

// mask returns the constant 2**width - 1.
//
func mask(width int) ast.Expr {
	m := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width)), big.NewInt(1))
	if width > rtlsim.MaxWordWidth {
		return ast.BigInt(m, width)
	}
	return &ast.Const{Value: m.Int64(), Width: width}
}

func resets(vars []*ast.VarDecl) []ast.Expr {
	rs := make([]ast.Expr, len(vars))
	for i, v := range vars {
		rs[i] = ast.Reset(v.Name)
	}
	return rs
}

// combinational returns a design whose outputs are a direct function of its
// inputs.
//
func combinational(name string, vars []*ast.VarDecl, body ...ast.Expr) *ast.Module {
	return &ast.Module{
		Name: name,
		Vars: vars,
		Blocks: []*ast.Block{
			ast.Func(ast.CtorVarReset, resets(vars)...),
			ast.Func(ast.EvalSettle, body...),
			ast.Func(ast.Eval, body...),
			ast.Func(ast.ChangeRequest),
		},
	}
}

func gate(name string, fn func(a, b ast.Expr) ast.Expr) *ast.Module {
	return combinational(name,
		[]*ast.VarDecl{ast.Var(pA, ast.Bits(1)), ast.Var(pB, ast.Bits(1)), ast.Var(pOut, ast.Bits(1))},
		ast.Assign(out, ast.Bin("and", fn(a, b), one)))
}

// Not returns a NOT gate.
//
//	Inputs: in
//	Outputs: out
//	Function: out = !in
//
func Not() *ast.Module {
	return combinational("Not",
		[]*ast.VarDecl{ast.Var(pIn, ast.Bits(1)), ast.Var(pOut, ast.Bits(1))},
		ast.Assign(out, ast.Bin("and", ast.Un("not", in), one)))
}

// And returns an AND gate.
//
func And() *ast.Module {
	return gate("And", func(a, b ast.Expr) ast.Expr { return ast.Bin("and", a, b) })
}

// Or returns an OR gate.
//
func Or() *ast.Module {
	return gate("Or", func(a, b ast.Expr) ast.Expr { return ast.Bin("or", a, b) })
}

// Xor returns a XOR gate.
//
func Xor() *ast.Module {
	return gate("Xor", func(a, b ast.Expr) ast.Expr { return ast.Bin("xor", a, b) })
}

// Nand returns a NAND gate.
//
func Nand() *ast.Module {
	return gate("Nand", func(a, b ast.Expr) ast.Expr { return ast.Un("not", ast.Bin("and", a, b)) })
}

// Mux returns a multiplexer.
//
//	Inputs: a[width], b[width], sel
//	Outputs: out[width]
//	Function: if sel == 0 { out = a } else { out = b }
//
func Mux(width int) *ast.Module {
	return combinational("Mux",
		[]*ast.VarDecl{
			ast.Var(pA, ast.Bits(width)),
			ast.Var(pB, ast.Bits(width)),
			ast.Var(pSel, ast.Bits(1)),
			ast.Var(pOut, ast.Bits(width)),
		},
		ast.Assign(out, ast.Cond(ast.Ref(pSel), b, a)))
}
