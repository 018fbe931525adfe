// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtllib

import (
	"github.com/db47h/rtlsim/ast"
)

// HalfAdder returns a half adder.
//
//	Inputs: a, b
//	Outputs: s, c
//	Function: s = lsb(a + b)
//	          c = msb(a + b)
//
func HalfAdder() *ast.Module {
	return combinational("HalfAdder",
		[]*ast.VarDecl{
			ast.Var(pA, ast.Bits(1)),
			ast.Var(pB, ast.Bits(1)),
			ast.Var("s", ast.Bits(1)),
			ast.Var("c", ast.Bits(1)),
		},
		ast.Assign(ast.Ref("s"), ast.Bin("xor", a, b)),
		ast.Assign(ast.Ref("c"), ast.Bin("and", a, b)))
}

func adderVars(width int) []*ast.VarDecl {
	return []*ast.VarDecl{
		ast.Var(pA, ast.Bits(width)),
		ast.Var(pB, ast.Bits(width)),
		ast.Var(pOut, ast.Bits(width)),
		ast.Var("carry", ast.Bits(1)),
	}
}

// Adder returns an adder.
//
//	Inputs: a[width], b[width]
//	Outputs: out[width], carry
//	Function: out = (a + b) & (2**width - 1)
//	          carry = (a + b) >> width
//
func Adder(width int) *ast.Module {
	sum := ast.Bin("add", a, b)
	return combinational("Adder", adderVars(width),
		ast.Assign(out, ast.Bin("and", sum, mask(width))),
		ast.Assign(ast.Ref("carry"), ast.Bin("and", ast.Bin("shiftr", sum, ast.Int(int64(width))), one)))
}

// RippleAdder returns an adder that computes its result one bit at a time.
// It has the same interface as Adder.
//
func RippleAdder(width int) *ast.Module {
	var (
		i  = ast.Ref("i")
		c  = ast.Ref("c")
		s  = ast.Ref("s")
		t  = ast.Ref("t")
		ai = ast.Ref("ai")
		bi = ast.Ref("bi")
	)
	bit := func(x ast.Expr) ast.Expr { return ast.Bin("and", ast.Bin("shiftr", x, i), one) }
	body := ast.Seq(
		ast.Local("i", ast.Bits(32)),
		ast.Local("c", ast.Bits(1)),
		ast.Local("ai", ast.Bits(1)),
		ast.Local("bi", ast.Bits(1)),
		ast.Local("s", ast.Bits(width)),
		ast.Local("t", ast.Bits(width)),
		ast.Loop(
			ast.Assign(i, ast.Int(0)),
			ast.Bin("lts", i, ast.Int(int64(width))),
			ast.Assign(i, ast.Bin("add", i, one)),
			ast.Seq(
				ast.Assign(ai, bit(a)),
				ast.Assign(bi, bit(b)),
				ast.Assign(t, ast.Bin("xor", ast.Bin("xor", ai, bi), c)),
				ast.Assign(s, ast.Bin("or", s, ast.Bin("shiftl", t, i))),
				ast.Assign(c, ast.Bin("or", ast.Bin("and", ai, bi), ast.Bin("and", c, ast.Bin("xor", ai, bi)))),
			)),
		ast.Assign(out, s),
		ast.Assign(ast.Ref("carry"), c),
	)
	return combinational("RippleAdder", adderVars(width), body)
}
