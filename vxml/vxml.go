// Package vxml builds designs from their XML dump.
//
// The document element is a <module name="..."> holding <var> declarations
// and <cfunc> top-level blocks:
//
//	<?xml version="1.0"?>
//	<module name="and">
//	  <var name="a" width="1"/>
//	  <var name="b" width="1"/>
//	  <var name="out" width="1"/>
//	  <cfunc name="_eval">
//	    <assign>
//	      <and><varref name="a"/><varref name="b"/></and>
//	      <varref name="out"/>
//	    </assign>
//	  </cfunc>
//	</module>
//
// Expressions are <varref name>, <const value width>, <vardecl>, <begin name
// kind>, <while> with <init>, <cond>, <inc> and <body> clauses, <ccall name>
// and <sformatf name>. Any other tag is an operator whose number of
// children selects a unary, binary or ternary operation. Assignments list
// their source first. Nodes may carry a loc="file:line:col" attribute.
//
package vxml

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/db47h/rtlsim"
	"github.com/db47h/rtlsim/ast"
	"github.com/pkg/errors"
)

// clause is a <while> sub-clause.
//
type clause struct {
	name  string
	exprs []ast.Expr
}

// Parse parses an XML design dump.
//
func Parse(doc string) (*ast.Module, error) {
	top, err := rtlsim.ParseTree(doc, nil, closeNode)
	if err != nil {
		return nil, err
	}
	m, ok := top.Obj.(*ast.Module)
	if !ok {
		return nil, errors.Errorf("document element is <%s>, expected <module>", top.Type)
	}
	return m, nil
}

func loc(n *rtlsim.Node) ast.Loc {
	s := n.Attrs["loc"]
	if s == "" {
		return ast.Loc{}
	}
	var l ast.Loc
	parts := strings.Split(s, ":")
	if len(parts) >= 3 {
		l.Col, _ = strconv.Atoi(parts[len(parts)-1])
		parts = parts[:len(parts)-1]
	}
	if len(parts) >= 2 {
		l.Line, _ = strconv.Atoi(parts[len(parts)-1])
		parts = parts[:len(parts)-1]
	}
	l.File = strings.Join(parts, ":")
	return l
}

func intAttr(n *rtlsim.Node, name string, def int) (int, error) {
	s, ok := n.Attrs[name]
	if !ok || s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(err, "attribute %s", name)
	}
	return v, nil
}

func required(n *rtlsim.Node, name string) (string, error) {
	s, ok := n.Attrs[name]
	if !ok {
		return "", errors.Errorf("missing attribute %s", name)
	}
	return s, nil
}

func exprs(ns []*rtlsim.Node) ([]ast.Expr, error) {
	es := make([]ast.Expr, 0, len(ns))
	for _, c := range ns {
		e, ok := c.Obj.(ast.Expr)
		if !ok {
			return nil, errors.Errorf("<%s> is not an expression", c.Type)
		}
		es = append(es, e)
	}
	return es, nil
}

func closeNode(n *rtlsim.Node) (interface{}, error) {
	switch n.Type {
	case "module":
		return module(n)
	case "var", "vardecl":
		return varDecl(n)
	case "logic", "basicdtype":
		w, err := intAttr(n, "width", 1)
		if err != nil {
			return nil, err
		}
		return &ast.Logic{Width: w, Signed: n.Attrs["signed"] == "true"}, nil
	case "array", "unpackarraydtype":
		return arrayType(n)
	case "initarray":
		return initArray(n)
	case "item":
		idx, err := intAttr(n, "index", 0)
		if err != nil {
			return nil, err
		}
		es, err := exprs(n.Children)
		if err != nil {
			return nil, err
		}
		if len(es) != 1 {
			return nil, errors.New("item needs exactly one value")
		}
		return &ast.ArrayItem{Index: idx, Value: es[0]}, nil
	case "cfunc":
		name, err := required(n, "name")
		if err != nil {
			return nil, err
		}
		es, err := exprs(n.Children)
		if err != nil {
			return nil, err
		}
		return &ast.Block{Loc: loc(n), Name: strings.TrimPrefix(name, "_"), Exprs: es}, nil
	case "varref":
		name, err := required(n, "name")
		if err != nil {
			return nil, err
		}
		return &ast.VarRef{Loc: loc(n), Name: name}, nil
	case "const":
		return constant(n)
	case "begin", "sformatf":
		es, err := exprs(n.Children)
		if err != nil {
			return nil, err
		}
		kind := n.Attrs["kind"]
		if n.Type == "sformatf" {
			kind = "sformatf"
		}
		return &ast.Block{Loc: loc(n), Name: n.Attrs["name"], Kind: kind, Exprs: es}, nil
	case "init", "cond", "inc", "body":
		if n.Type == "cond" && len(n.Children) == 3 {
			// conditional expression, not a loop clause
			break
		}
		es, err := exprs(n.Children)
		if err != nil {
			return nil, err
		}
		return &clause{name: n.Type, exprs: es}, nil
	case "while":
		return while(n)
	case "ccall":
		name, err := required(n, "name")
		if err != nil {
			return nil, err
		}
		es, err := exprs(n.Children)
		if err != nil {
			return nil, err
		}
		return &ast.FuncCall{Loc: loc(n), Name: name, Args: es}, nil
	}
	return operator(n)
}

func module(n *rtlsim.Node) (*ast.Module, error) {
	m := &ast.Module{Name: n.Attrs["name"]}
	for _, c := range n.Children {
		switch o := c.Obj.(type) {
		case *ast.VarDecl:
			m.Vars = append(m.Vars, o)
		case *ast.Block:
			m.Blocks = append(m.Blocks, o)
		default:
			return nil, errors.Errorf("unexpected <%s> in module", c.Type)
		}
	}
	return m, nil
}

func varDecl(n *rtlsim.Node) (*ast.VarDecl, error) {
	name, err := required(n, "name")
	if err != nil {
		return nil, err
	}
	d := &ast.VarDecl{Loc: loc(n), Name: name}
	if _, ok := n.Attrs["width"]; ok {
		w, err := intAttr(n, "width", 1)
		if err != nil {
			return nil, err
		}
		d.Type = &ast.Logic{Width: w, Signed: n.Attrs["signed"] == "true"}
	}
	for _, c := range n.Children {
		switch o := c.Obj.(type) {
		case ast.Datatype:
			d.Type = o
		case *ast.Const, *ast.BigConst:
			d.Const = o.(ast.Expr)
		case []ast.ArrayItem:
			d.Init = o
		default:
			return nil, errors.Errorf("unexpected <%s> in variable %s", c.Type, name)
		}
	}
	if d.Type == nil {
		d.Type = &ast.Logic{Width: 1}
	}
	return d, nil
}

func arrayType(n *rtlsim.Node) (*ast.Array, error) {
	lo, err := intAttr(n, "low", 0)
	if err != nil {
		return nil, err
	}
	hi, err := intAttr(n, "high", 0)
	if err != nil {
		return nil, err
	}
	if len(n.Children) != 1 {
		return nil, errors.New("array needs exactly one element type")
	}
	elem, ok := n.Children[0].Obj.(ast.Datatype)
	if !ok {
		return nil, errors.Errorf("<%s> is not a data type", n.Children[0].Type)
	}
	return &ast.Array{Elem: elem, Low: lo, High: hi}, nil
}

func initArray(n *rtlsim.Node) ([]ast.ArrayItem, error) {
	items := make([]ast.ArrayItem, 0, len(n.Children))
	for _, c := range n.Children {
		it, ok := c.Obj.(*ast.ArrayItem)
		if !ok {
			return nil, errors.Errorf("unexpected <%s> in initarray", c.Type)
		}
		items = append(items, *it)
	}
	return items, nil
}

func constant(n *rtlsim.Node) (ast.Expr, error) {
	s, err := required(n, "value")
	if err != nil {
		return nil, err
	}
	w, err := intAttr(n, "width", 32)
	if err != nil {
		return nil, err
	}
	v, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, errors.Errorf("malformed constant %q", s)
	}
	if w > rtlsim.MaxWordWidth || !v.IsInt64() {
		return &ast.BigConst{Loc: loc(n), Value: v, Width: w}, nil
	}
	return &ast.Const{Loc: loc(n), Value: v.Int64(), Width: w}, nil
}

func while(n *rtlsim.Node) (*ast.While, error) {
	w := &ast.While{Loc: loc(n)}
	for _, c := range n.Children {
		cl, ok := c.Obj.(*clause)
		if !ok {
			return nil, errors.Errorf("unexpected <%s> in while", c.Type)
		}
		var e ast.Expr
		switch len(cl.exprs) {
		case 0:
		case 1:
			e = cl.exprs[0]
		default:
			e = &ast.Block{Exprs: cl.exprs}
		}
		switch cl.name {
		case "init":
			w.Pre = e
		case "cond":
			w.Cond = e
		case "inc":
			w.Inc = e
		case "body":
			w.Body = e
		}
	}
	return w, nil
}

func operator(n *rtlsim.Node) (ast.Expr, error) {
	es, err := exprs(n.Children)
	if err != nil {
		return nil, err
	}
	l := loc(n)
	switch len(es) {
	case 1:
		w, err := intAttr(n, "width", 0)
		if err != nil {
			return nil, err
		}
		return &ast.Unop{Loc: l, Op: n.Type, X: es[0], Width: w}, nil
	case 2:
		if n.Type == "if" {
			return &ast.Triop{Loc: l, Op: n.Type, Cond: es[0], Left: es[1]}, nil
		}
		return &ast.Binop{Loc: l, Op: n.Type, Left: es[0], Right: es[1]}, nil
	case 3:
		return &ast.Triop{Loc: l, Op: n.Type, Cond: es[0], Left: es[1], Right: es[2]}, nil
	}
	return nil, errors.WithStack(&rtlsim.UnsupportedOperatorError{Op: n.Type, Kind: strconv.Itoa(len(es)) + "-ary operator", Loc: l})
}
