// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtllib

import (
	"github.com/db47h/rtlsim/ast"
)

const clkLast = "__Vclklast__TOP__clk"

var (
	clk  = ast.Ref(pClk)
	last = ast.Ref(clkLast)
)

// posedge returns the condition "clk rose since the last eval".
//
func posedge() ast.Expr {
	return ast.Bin("and", clk, ast.Un("not", last))
}

// clocked returns a design whose state updates on rising clock edges.
// comb is evaluated after the sequential logic on every eval. Shadowed
// signals are change-detected.
//
func clocked(name string, vars []*ast.VarDecl, seq []ast.Expr, comb []ast.Expr, shadowed ...string) *ast.Module {
	vars = append([]*ast.VarDecl{ast.Var(pClk, ast.Bits(1)), ast.Var(clkLast, ast.Bits(1))}, vars...)
	var chg []ast.Expr
	for _, s := range shadowed {
		sh := "__Vchglast__TOP__" + s
		vars = append(vars, ast.Var(sh, ast.Bits(1)))
		chg = append(chg, ast.ChangeDet(ast.Ref(s), ast.Ref(sh)))
	}
	eval := []ast.Expr{
		ast.If(posedge(), ast.Seq(seq...), nil),
		ast.Assign(last, clk),
	}
	eval = append(eval, comb...)
	settle := append([]ast.Expr{}, comb...)
	return &ast.Module{
		Name: name,
		Vars: vars,
		Blocks: []*ast.Block{
			ast.Func(ast.CtorVarReset, resets(vars)...),
			ast.Func(ast.EvalInitial, ast.Assign(last, clk)),
			ast.Func(ast.EvalSettle, settle...),
			ast.Func(ast.Eval, eval...),
			ast.Func(ast.ChangeRequest, chg...),
		},
	}
}

// DFF returns a clocked data flip flop.
//
//	Inputs: clk, d[width]
//	Outputs: q[width]
//	Function: q(t) = d(t-1) // where t is the current clock cycle.
//
func DFF(width int) *ast.Module {
	return clocked("DFF",
		[]*ast.VarDecl{ast.Var("d", ast.Bits(width)), ast.Var("q", ast.Bits(width))},
		[]ast.Expr{ast.Assign(ast.Ref("q"), ast.Ref("d"))},
		nil)
}

// Counter returns a counter with synchronous reset.
//
//	Inputs: clk, reset, en
//	Outputs: out[width], tc
//	Function: if reset { out = 0 } else if en { out = out + 1 }
//	          tc = out == 2**width - 1
//
func Counter(width int) *ast.Module {
	return clocked("Counter",
		[]*ast.VarDecl{
			ast.Var(pReset, ast.Bits(1)),
			ast.Var("en", ast.Bits(1)),
			ast.Var(pOut, ast.Bits(width)),
			ast.Var("tc", ast.Bits(1)),
		},
		[]ast.Expr{
			ast.If(ast.Ref(pReset),
				ast.Assign(out, ast.Int(0)),
				ast.If(ast.Ref("en"),
					ast.Assign(out, ast.Bin("and", ast.Bin("add", out, one), mask(width))),
					nil)),
		},
		[]ast.Expr{
			ast.Assign(ast.Ref("tc"), ast.Bin("eq", out, mask(width))),
		},
		"tc")
}

// Oscillator returns a design that never settles: its output is inverted on
// every evaluation round and change detected.
//
func Oscillator() *ast.Module {
	vars := []*ast.VarDecl{ast.Var(pOut, ast.Bits(1)), ast.Var("__Vchglast__TOP__out", ast.Bits(1))}
	return &ast.Module{
		Name: "Oscillator",
		Vars: vars,
		Blocks: []*ast.Block{
			ast.Func(ast.CtorVarReset, resets(vars)...),
			ast.Func(ast.Eval, ast.Assign(out, ast.Bin("and", ast.Un("not", out), one))),
			ast.Func(ast.ChangeRequest, ast.ChangeDet(out, ast.Ref("__Vchglast__TOP__out"))),
		},
	}
}
