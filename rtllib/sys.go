package rtllib

import (
	"math/bits"

	"github.com/db47h/rtlsim/ast"
)

// packString returns the 32-bit words of s packed as a Verilog string,
// least significant word first: the last character of s is the least
// significant byte of the first word.
//
func packString(s string) []int64 {
	n := (len(s) + 3) / 4
	ws := make([]int64, n)
	for i := 0; i < len(s); i++ {
		pos := len(s) - 1 - i // byte position from the least significant end
		ws[pos/4] |= int64(s[i]) << (8 * uint(pos%4))
	}
	return ws
}

// ROM returns a read only memory initialized from a data file with
// $readmem.
//
//	Inputs: addr
//	Outputs: data[width]
//	Function: data = mem[addr]
//
// The file is read once, by the initial block, in hexadecimal if hex is
// true, binary otherwise.
//
func ROM(file string, width, depth int, hex bool) *ast.Module {
	words := packString(file)
	fn := ast.Ref("__Vtemp_fn")
	init := []ast.Expr{ast.Local("__Vtemp_fn", ast.Bits(32*len(words)))}
	for i, w := range words {
		init = append(init, ast.Assign(ast.Bin("wordsel", fn, ast.Int(int64(i))), ast.Int(w)))
	}
	ishex := int64(0)
	if hex {
		ishex = 1
	}
	init = append(init, ast.Call("$readmem", fn, ast.Ref("mem"), ast.Int(0), ast.Int(int64(depth-1)), ast.Int(ishex)))

	aw := bits.Len(uint(depth - 1))
	if aw == 0 {
		aw = 1
	}
	vars := []*ast.VarDecl{
		ast.Var("addr", ast.Bits(aw)),
		ast.Var("data", ast.Bits(width)),
		ast.Var("mem", ast.ArrayOf(ast.Bits(width), 0, depth-1)),
	}
	read := ast.Assign(ast.Ref("data"), ast.Sel(ast.Ref("mem"), ast.Ref("addr")))
	return &ast.Module{
		Name: "ROM",
		Vars: vars,
		Blocks: []*ast.Block{
			ast.Func(ast.CtorVarReset, resets(vars)...),
			ast.Func(ast.EvalInitial, init...),
			ast.Func(ast.EvalSettle, read),
			ast.Func(ast.Eval, read),
			ast.Func(ast.ChangeRequest),
		},
	}
}

// Finisher returns a design that counts clock cycles and calls $finish once
// the count reaches limit.
//
//	Inputs: clk
//	Outputs: count[32]
//
func Finisher(limit int) *ast.Module {
	count := ast.Ref("count")
	return clocked("Finisher",
		[]*ast.VarDecl{ast.Var("count", ast.Bits(32))},
		[]ast.Expr{
			ast.Assign(count, ast.Bin("add", count, one)),
			ast.If(ast.Bin("gte", count, ast.Int(int64(limit))),
				ast.Seq(
					ast.Call("$display", ast.Format("finished after %0d cycles in %m", count)),
					&ast.FuncCall{Loc: ast.Loc{File: "finisher.v", Line: 12, Col: 5}, Name: "$finish"},
				),
				nil),
		},
		nil)
}
