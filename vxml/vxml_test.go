package vxml_test

import (
	"strings"
	"testing"

	"github.com/db47h/rtlsim"
	"github.com/db47h/rtlsim/ast"
	"github.com/db47h/rtlsim/vxml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// popcount counts the set bits of in, two at a time through a lookup table.
const popcount = `<?xml version="1.0" encoding="UTF-8"?>
<!-- generated -->
<module name="popcount">
  <var name="in" width="8" loc="pop.v:2:14"/>
  <var name="out" width="4"/>
  <var name="odd" width="1"/>
  <var name="table">
    <array low="0" high="3"><logic width="4"/></array>
    <initarray>
      <item index="0"><const value="0"/></item>
      <item index="1"><const value="1"/></item>
      <item index="2"><const value="1"/></item>
      <item index="3"><const value="2"/></item>
    </initarray>
  </var>
  <cfunc name="_count">
    <vardecl name="i" width="8"/>
    <vardecl name="n" width="4"/>
    <while>
      <init><assign><const value="0"/><varref name="i"/></assign></init>
      <cond><lt><varref name="i"/><const value="8"/></lt></cond>
      <inc><assign><add><varref name="i"/><const value="2"/></add><varref name="i"/></assign></inc>
      <body>
        <assign>
          <add>
            <varref name="n"/>
            <arraysel>
              <varref name="table"/>
              <and><shiftr><varref name="in"/><varref name="i"/></shiftr><const value="0x3"/></and>
            </arraysel>
          </add>
          <varref name="n"/>
        </assign>
      </body>
    </while>
    <creturn><varref name="n"/></creturn>
  </cfunc>
  <cfunc name="_eval">
    <assign><ccall name="count"/><varref name="out"/></assign>
    <assign>
      <cond><and><varref name="out"/><const value="1"/></and><const value="1"/><const value="0"/></cond>
      <varref name="odd"/>
    </assign>
    <if>
      <gt><varref name="out"/><const value="6"/></gt>
      <ccall name="$display" loc="pop.v:9:5">
        <sformatf name="many bits: %0d"><varref name="out"/></sformatf>
      </ccall>
    </if>
  </cfunc>
</module>
`

func TestParse(t *testing.T) {
	mod, err := vxml.Parse(popcount)
	require.NoError(t, err)
	assert.Equal(t, "popcount", mod.Name)
	require.Len(t, mod.Vars, 4)
	assert.Equal(t, ast.Loc{File: "pop.v", Line: 2, Col: 14}, mod.Vars[0].Loc)
	assert.Equal(t, &ast.Logic{Width: 8}, mod.Vars[0].Type)
	assert.Equal(t, "logic[4] [3:0]", mod.Vars[3].Type.String())
	require.Len(t, mod.Vars[3].Init, 4)
	assert.Equal(t, 3, mod.Vars[3].Init[3].Index)

	require.Len(t, mod.Blocks, 2)
	assert.Equal(t, "count", mod.Blocks[0].Name)
	assert.Equal(t, ast.Eval, mod.Blocks[1].Name)
	w, ok := mod.Blocks[0].Exprs[2].(*ast.While)
	require.True(t, ok, "expected a while loop, got %T", mod.Blocks[0].Exprs[2])
	assert.NotNil(t, w.Pre)
	assert.NotNil(t, w.Cond)
	assert.NotNil(t, w.Inc)
	assert.NotNil(t, w.Body)

	cond := mod.Blocks[1].Exprs[1].(*ast.Binop).Left
	assert.IsType(t, &ast.Triop{}, cond)
	ifs, ok := mod.Blocks[1].Exprs[2].(*ast.Triop)
	require.True(t, ok)
	assert.Equal(t, "if", ifs.Op)
	assert.Nil(t, ifs.Right)
	call := ifs.Left.(*ast.FuncCall)
	assert.Equal(t, ast.Loc{File: "pop.v", Line: 9, Col: 5}, call.Loc)
	require.Len(t, call.Args, 1)
	assert.Equal(t, "sformatf", call.Args[0].(*ast.Block).Kind)
}

func TestParse_simulate(t *testing.T) {
	mod, err := vxml.Parse(popcount)
	require.NoError(t, err)

	var out strings.Builder
	m, err := rtlsim.NewModule(mod, rtlsim.WithDisplay(func(s string) { out.WriteString(s) }))
	require.NoError(t, err)
	defer m.Dispose()
	require.NoError(t, m.PowerCycle())

	for _, in := range []int64{0, 1, 0x81, 0x5a, 0xfe, 0xff} {
		require.NoError(t, m.SetInt("in", in))
		require.NoError(t, m.Eval())
		n := int64(0)
		for x := in; x != 0; x >>= 1 {
			n += x & 1
		}
		assert.Equal(t, n, m.Get("out").Int64(), "popcount(%#x)", in)
		assert.Equal(t, n&1, m.Get("odd").Int64(), "odd(%#x)", in)
	}
	assert.Equal(t, "many bits: 7\nmany bits: 8\n", out.String())
}

func TestParse_bigConst(t *testing.T) {
	mod, err := vxml.Parse(`<?xml?>
<module name="wide">
  <var name="x" width="64"><const value="0xffffffffffffffff" width="64"/></var>
  <var name="y" width="8"><const value="0x7f" width="8"/></var>
</module>`)
	require.NoError(t, err)
	assert.IsType(t, &ast.BigConst{}, mod.Vars[0].Const)
	assert.Equal(t, &ast.Const{Value: 0x7f, Width: 8}, mod.Vars[1].Const)

	m, err := rtlsim.NewModule(mod)
	require.NoError(t, err)
	defer m.Dispose()
	assert.Equal(t, "ffffffffffffffff", m.Get("x").BigInt().Text(16))
}

func TestParse_errors(t *testing.T) {
	td := []struct {
		name string
		doc  string
		msg  string
	}{
		{"top", `<?xml?><var name="x"/>`, "document element is <var>"},
		{"name", `<?xml?><module><var width="1"/></module>`, "missing attribute name"},
		{"width", `<?xml?><module><var name="x" width="wide"/></module>`, "attribute width"},
		{"const", `<?xml?><module><var name="x"><const value="0xzz"/></var></module>`, "malformed constant"},
		{"content", `<?xml?><module><const value="1"/></module>`, "unexpected <const> in module"},
		{"while", `<?xml?><module><cfunc name="f"><while><const value="1"/></while></cfunc></module>`, "unexpected <const> in while"},
		{"structure", `<?xml?><module></cfunc>`, "mismatch close tag"},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			_, err := vxml.Parse(d.doc)
			require.Error(t, err)
			assert.Contains(t, err.Error(), d.msg)
		})
	}

	_, err := vxml.Parse(`<?xml?><module><cfunc name="f"><mux><const value="1"/><const value="1"/><const value="1"/><const value="1"/></mux></cfunc></module>`)
	var uo *rtlsim.UnsupportedOperatorError
	require.ErrorAs(t, err, &uo)
	assert.Equal(t, "mux", uo.Op)
}
