// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtlsim

import (
	"math/big"
	"strings"

	"github.com/db47h/rtlsim/ast"
	"github.com/pkg/errors"
)

// The compiler lowers each top-level block into a tree of closures. Every
// expression node becomes an evalFn that evaluates it against a frame.
// Variable references are resolved once, at compile time, to state or local
// slots.

type evalFn func(f *frame) Value

type condFn func(f *frame) bool

func nop(*frame) Value { return Value{} }

// frame is the activation record of a compiled block.
//
type frame struct {
	m      *Module
	set    *evaluators
	locals []Value
	req    bool // change_request accumulator
	ret    bool
	retv   Value
}

// rtError wraps errors raised while running compiled code. It is used as a
// panic value and recovered at the Module entry points.
//
type rtError struct {
	err error
}

func (f *frame) invoke(fn Builtin, c *Call) Value {
	v, err := fn(f.m, c)
	if err != nil {
		panic(rtError{err})
	}
	return v
}

// An lvalue is a storage location.
//
type lvalue struct {
	load  evalFn
	store func(f *frame, v Value)
}

type function struct {
	name    string
	nlocals int
	change  bool
	body    evalFn
}

// invoke runs fn in a new frame. Change request blocks report a change if
// any change detection fired or if they return a non-zero value.
//
func (fn *function) invoke(m *Module, set *evaluators) Value {
	f := frame{m: m, set: set}
	if fn.nlocals > 0 {
		f.locals = make([]Value, fn.nlocals)
	}
	fn.body(&f)
	if fn.change {
		return Bool(f.req || f.ret && f.retv.Bool())
	}
	return f.retv
}

// evaluators is a compiled evaluator set: one function per top-level block.
//
type evaluators struct {
	funcs  []*function
	index  map[string]int
	consts map[string]int64
}

func (set *evaluators) lookup(name string) *function {
	if i, ok := set.index[name]; ok {
		return set.funcs[i]
	}
	return nil
}

type local struct {
	slot int
	kind Kind
	decl *ast.VarDecl
}

type compiler struct {
	st        *state
	builtins  map[string]Builtin
	blocks    map[string]int
	consts    map[string]int64
	locals    map[string]*local
	nlocals   int
	constUsed int
}

// compile builds the evaluator set of mod.
//
// If consts is not empty, reads of the named variables are replaced by the
// given constants. Blocks that never read any of them reuse their
// counterpart in base.
//
func compile(mod *ast.Module, st *state, builtins map[string]Builtin, consts map[string]int64, base *evaluators) (*evaluators, error) {
	c := &compiler{
		st:       st,
		builtins: builtins,
		blocks:   make(map[string]int, len(mod.Blocks)),
		consts:   consts,
	}
	for i, b := range mod.Blocks {
		if b.Name != "" {
			c.blocks[b.Name] = i
		}
	}
	set := &evaluators{
		funcs:  make([]*function, len(mod.Blocks)),
		index:  c.blocks,
		consts: consts,
	}
	for i, b := range mod.Blocks {
		c.locals = make(map[string]*local)
		c.nlocals = 0
		c.constUsed = 0
		fn, err := c.function(b)
		if err != nil {
			name := b.Name
			if name == "" {
				name = "__anon"
			}
			return nil, errors.Wrapf(err, "block %s", name)
		}
		if base != nil && c.constUsed == 0 {
			fn = base.funcs[i]
		}
		set.funcs[i] = fn
	}
	return set, nil
}

func isChangeRequest(name string) bool {
	return strings.HasPrefix(strings.TrimPrefix(name, "_"), ast.ChangeRequest)
}

func (c *compiler) function(b *ast.Block) (*function, error) {
	body, err := c.seq(b.Exprs)
	if err != nil {
		return nil, err
	}
	return &function{
		name:    b.Name,
		nlocals: c.nlocals,
		change:  isChangeRequest(b.Name),
		body:    body,
	}, nil
}

func (c *compiler) seq(exprs []ast.Expr) (evalFn, error) {
	fns := make([]evalFn, 0, len(exprs))
	for _, e := range exprs {
		fn, err := c.expr(e)
		if err != nil {
			return nil, err
		}
		fns = append(fns, fn)
	}
	switch len(fns) {
	case 0:
		return nop, nil
	case 1:
		return fns[0], nil
	}
	return func(f *frame) Value {
		for _, fn := range fns {
			fn(f)
			if f.ret {
				break
			}
		}
		return Value{}
	}, nil
}

func (c *compiler) expr(e ast.Expr) (evalFn, error) {
	switch e := e.(type) {
	case nil:
		return nop, nil
	case *ast.VarRef:
		return c.varRef(e)
	case *ast.VarDecl:
		return c.varDecl(e)
	case *ast.Const:
		v := Word(e.Value)
		return func(*frame) Value { return v }, nil
	case *ast.BigConst:
		v := Big(e.Value)
		return func(*frame) Value { return v }, nil
	case *ast.Triop:
		return c.triop(e)
	case *ast.Binop:
		return c.binop(e)
	case *ast.Unop:
		return c.unop(e)
	case *ast.Block:
		return c.seq(e.Exprs)
	case *ast.While:
		return c.while(e)
	case *ast.FuncCall:
		return c.call(e)
	}
	return nil, errors.Errorf("unrecognized expression %T", e)
}

func (c *compiler) varRef(e *ast.VarRef) (evalFn, error) {
	if v, ok := c.consts[e.Name]; ok {
		c.constUsed++
		val := Word(v)
		if i, ok := c.st.lookup(e.Name); ok && c.st.kinds[i] == KindBig {
			val = coerce(KindBig, val)
		}
		return func(*frame) Value { return val }, nil
	}
	lv, err := c.lvalue(e)
	if err != nil {
		return nil, err
	}
	return lv.load, nil
}

// lvalue returns the storage location designated by e. Known constants are
// ignored here: stores always reach the state.
//
func (c *compiler) lvalue(e ast.Expr) (*lvalue, error) {
	switch e := e.(type) {
	case *ast.VarRef:
		if l, ok := c.locals[e.Name]; ok {
			return localLvalue(l.slot, l.kind), nil
		}
		if i, ok := c.st.lookup(e.Name); ok {
			return &lvalue{
				load:  func(f *frame) Value { return f.m.st.vals[i] },
				store: func(f *frame, v Value) { f.m.st.store(i, v) },
			}, nil
		}
		return nil, errors.WithStack(&UnresolvedSymbolError{Name: e.Name, Loc: e.Loc})
	case *ast.Binop:
		if e.Op == "arraysel" || e.Op == "wordsel" {
			return c.selLvalue(e)
		}
		return nil, errors.WithStack(&UnsupportedOperatorError{Op: e.Op, Kind: "store target", Loc: e.Loc})
	case *ast.Unop:
		if e.Op == "ccast" {
			return c.lvalue(e.X)
		}
		return nil, errors.WithStack(&UnsupportedOperatorError{Op: e.Op, Kind: "store target", Loc: e.Loc})
	}
	return nil, errors.Errorf("%s: expression %T is not assignable", e.Pos(), e)
}

func localLvalue(slot int, kind Kind) *lvalue {
	return &lvalue{
		load: func(f *frame) Value { return f.locals[slot] },
		store: func(f *frame, v Value) {
			if kind == KindArray {
				if cur := f.locals[slot]; cur.kind == KindArray {
					cur.a.copyFrom(coerce(kind, v).a)
					return
				}
				f.locals[slot] = coerce(kind, v).Clone()
				return
			}
			f.locals[slot] = coerce(kind, v)
		},
	}
}

// selectWord returns element i of v: an array element or the i-th 32-bit
// word of a scalar.
//
func selectWord(v Value, i int64) Value {
	if v.kind == KindArray {
		return v.a.At(int(i))
	}
	if i < 0 || i > 1<<16 {
		return Value{}
	}
	if v.kind == KindWord {
		if i > 1 {
			return Value{}
		}
		return Word(int64(uint32(v.w >> (32 * uint(i)))))
	}
	w := new(big.Int).Rsh(v.b, 32*uint(i))
	return Word(int64(uint32(truncBig(w))))
}

// replaceWord returns v with its i-th 32-bit word replaced by w.
//
func replaceWord(v Value, i int64, w Value) Value {
	if i < 0 || i > 1<<16 {
		return v
	}
	shift := 32 * uint(i)
	x := v.BigInt()
	x.AndNot(x, new(big.Int).Lsh(big.NewInt(0xffffffff), shift))
	x.Or(x, new(big.Int).Lsh(big.NewInt(int64(uint32(w.Int64()))), shift))
	return Big(x)
}

func (c *compiler) selLoad(e *ast.Binop) (evalFn, error) {
	base, err := c.expr(e.Left)
	if err != nil {
		return nil, err
	}
	idx, err := c.expr(e.Right)
	if err != nil {
		return nil, err
	}
	return func(f *frame) Value {
		return selectWord(base(f), idx(f).Int64())
	}, nil
}

func (c *compiler) selLvalue(e *ast.Binop) (*lvalue, error) {
	base, err := c.lvalue(e.Left)
	if err != nil {
		return nil, err
	}
	idx, err := c.expr(e.Right)
	if err != nil {
		return nil, err
	}
	return &lvalue{
		load: func(f *frame) Value {
			return selectWord(base.load(f), idx(f).Int64())
		},
		store: func(f *frame, v Value) {
			b := base.load(f)
			i := idx(f).Int64()
			if b.kind == KindArray {
				b.a.Set(int(i), v)
				return
			}
			base.store(f, replaceWord(b, i, v))
		},
	}, nil
}

func (c *compiler) varDecl(d *ast.VarDecl) (evalFn, error) {
	if len(d.Init) > 0 {
		return nil, errors.WithStack(&UnsupportedTypeError{Type: d.Type, Context: "local array initializer", Loc: d.Loc})
	}
	var init Value
	if d.Type != nil {
		v, err := newValue(d.Type, 0)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		init = v
	}
	if d.Const != nil {
		v, ok := constValue(d.Const)
		if !ok || init.kind == KindArray {
			return nil, errors.WithStack(&UnsupportedTypeError{Type: d.Type, Context: "local constant", Loc: d.Loc})
		}
		init = coerce(init.kind, v)
	}
	slot := c.nlocals
	c.nlocals++
	c.locals[d.Name] = &local{slot: slot, kind: init.kind, decl: d}
	if init.kind == KindArray {
		return func(f *frame) Value {
			f.locals[slot] = init.Clone()
			return Value{}
		}, nil
	}
	return func(f *frame) Value {
		f.locals[slot] = init
		return Value{}
	}, nil
}

func isEmpty(e ast.Expr) bool {
	if e == nil {
		return true
	}
	b, ok := e.(*ast.Block)
	return ok && len(b.Exprs) == 0
}

func (c *compiler) triop(e *ast.Triop) (evalFn, error) {
	switch e.Op {
	case "if":
		cond, err := c.cond(e.Cond)
		if err != nil {
			return nil, err
		}
		then, err := c.expr(e.Left)
		if err != nil {
			return nil, err
		}
		if isEmpty(e.Right) {
			return func(f *frame) Value {
				if cond(f) {
					then(f)
				}
				return Value{}
			}, nil
		}
		els, err := c.expr(e.Right)
		if err != nil {
			return nil, err
		}
		return func(f *frame) Value {
			if cond(f) {
				then(f)
			} else {
				els(f)
			}
			return Value{}
		}, nil
	case "cond", "condbound":
		cond, err := c.cond(e.Cond)
		if err != nil {
			return nil, err
		}
		a, err := c.expr(e.Left)
		if err != nil {
			return nil, err
		}
		b, err := c.expr(e.Right)
		if err != nil {
			return nil, err
		}
		return func(f *frame) Value {
			if cond(f) {
				return a(f)
			}
			return b(f)
		}, nil
	}
	return nil, errors.WithStack(&UnsupportedOperatorError{Op: e.Op, Kind: "triop", Loc: e.Loc})
}

// cond compiles e in a boolean context. Relational operators yield their
// result directly instead of going through a 0/1 word.
//
func (c *compiler) cond(e ast.Expr) (condFn, error) {
	if b, ok := e.(*ast.Binop); ok {
		if rel, ok := relops[b.Op]; ok {
			l, r, err := c.operands(b)
			if err != nil {
				return nil, err
			}
			return func(f *frame) bool { return rel(compare(l(f), r(f))) }, nil
		}
	}
	v, err := c.expr(e)
	if err != nil {
		return nil, err
	}
	return func(f *frame) bool { return v(f).Bool() }, nil
}

func (c *compiler) operands(e *ast.Binop) (evalFn, evalFn, error) {
	l, err := c.expr(e.Left)
	if err != nil {
		return nil, nil, err
	}
	r, err := c.expr(e.Right)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

func (c *compiler) binop(e *ast.Binop) (evalFn, error) {
	switch e.Op {
	case "contassign", "assign", "assignpre", "assigndly", "assignpost":
		dst, err := c.lvalue(e.Right)
		if err != nil {
			return nil, err
		}
		src, err := c.expr(e.Left)
		if err != nil {
			return nil, err
		}
		return func(f *frame) Value {
			v := src(f)
			dst.store(f, v)
			return v
		}, nil
	case "arraysel", "wordsel":
		return c.selLoad(e)
	case "changedet":
		live, err := c.expr(e.Left)
		if err != nil {
			return nil, err
		}
		shadow, err := c.lvalue(e.Right)
		if err != nil {
			return nil, err
		}
		return func(f *frame) Value {
			v := live(f)
			if !v.Equal(shadow.load(f)) {
				f.req = true
			}
			shadow.store(f, v)
			return Value{}
		}, nil
	case "logand", "logor":
		l, err := c.cond(e.Left)
		if err != nil {
			return nil, err
		}
		r, err := c.cond(e.Right)
		if err != nil {
			return nil, err
		}
		if e.Op == "logand" {
			return func(f *frame) Value { return Bool(l(f) && r(f)) }, nil
		}
		return func(f *frame) Value { return Bool(l(f) || r(f)) }, nil
	}
	if rel, ok := relops[e.Op]; ok {
		l, r, err := c.operands(e)
		if err != nil {
			return nil, err
		}
		return func(f *frame) Value { return Bool(rel(compare(l(f), r(f)))) }, nil
	}
	op, ok := binops[e.Op]
	if !ok {
		return nil, errors.WithStack(&UnsupportedOperatorError{Op: e.Op, Kind: "binop", Loc: e.Loc})
	}
	l, r, err := c.operands(e)
	if err != nil {
		return nil, err
	}
	return func(f *frame) Value { return op(l(f), r(f)) }, nil
}

func (c *compiler) unop(e *ast.Unop) (evalFn, error) {
	switch e.Op {
	case "creset":
		return c.reset(e.X)
	case "creturn":
		x, err := c.expr(e.X)
		if err != nil {
			return nil, err
		}
		return func(f *frame) Value {
			f.retv = x(f)
			f.ret = true
			return Value{}
		}, nil
	case "redxor", "redand", "redor":
		fn, ok := c.builtins["$$"+e.Op]
		if !ok {
			return nil, errors.WithStack(&UnresolvedSymbolError{Name: "$$" + e.Op, Loc: e.Loc})
		}
		x, err := c.expr(e.X)
		if err != nil {
			return nil, err
		}
		loc, width := e.Loc, Word(int64(e.Width))
		return func(f *frame) Value {
			return f.invoke(fn, &Call{Loc: loc, Args: []Value{x(f), width}})
		}, nil
	}
	op, ok := unops[e.Op]
	if !ok {
		return nil, errors.WithStack(&UnsupportedOperatorError{Op: e.Op, Kind: "unop", Loc: e.Loc})
	}
	x, err := c.expr(e.X)
	if err != nil {
		return nil, err
	}
	width := e.Width
	return func(f *frame) Value { return op(x(f), width) }, nil
}

// reset compiles a creset of the variable referenced by e.
//
func (c *compiler) reset(e ast.Expr) (evalFn, error) {
	ref, ok := e.(*ast.VarRef)
	if !ok {
		return nil, errors.WithStack(&UnsupportedTypeError{Context: "reset of a non variable", Loc: e.Pos()})
	}
	if _, ok := c.consts[ref.Name]; ok {
		return nop, nil
	}
	lv, err := c.lvalue(ref)
	if err != nil {
		return nil, err
	}
	var t ast.Datatype
	if l, ok := c.locals[ref.Name]; ok {
		t = l.decl.Type
	} else {
		i, _ := c.st.lookup(ref.Name)
		t = c.st.vars[i].Type
	}
	switch t := t.(type) {
	case *ast.Logic:
		zero := Value{}
		if t.Width > MaxWordWidth {
			zero = Big(nil)
		}
		return func(f *frame) Value {
			lv.store(f, zero)
			return Value{}
		}, nil
	case *ast.Array:
		switch et := t.Elem.(type) {
		case *ast.Logic:
		case *ast.Array:
			if _, ok := et.Elem.(*ast.Logic); !ok {
				return nil, errors.WithStack(&UnsupportedTypeError{Type: t, Context: "reset", Loc: ref.Loc})
			}
		default:
			return nil, errors.WithStack(&UnsupportedTypeError{Type: t, Context: "reset", Loc: ref.Loc})
		}
		return func(f *frame) Value {
			if v := lv.load(f); v.kind == KindArray {
				v.a.Fill()
			}
			return Value{}
		}, nil
	}
	return nil, errors.WithStack(&UnsupportedTypeError{Type: t, Context: "reset", Loc: ref.Loc})
}

func (c *compiler) while(e *ast.While) (evalFn, error) {
	var pre, inc evalFn
	var err error
	if e.Pre != nil {
		if pre, err = c.expr(e.Pre); err != nil {
			return nil, err
		}
	}
	cond := func(*frame) bool { return true }
	if e.Cond != nil {
		if cond, err = c.cond(e.Cond); err != nil {
			return nil, err
		}
	}
	if e.Inc != nil {
		if inc, err = c.expr(e.Inc); err != nil {
			return nil, err
		}
	}
	body, err := c.expr(e.Body)
	if err != nil {
		return nil, err
	}
	return func(f *frame) Value {
		if pre != nil {
			pre(f)
		}
		for cond(f) {
			body(f)
			if f.ret {
				break
			}
			if inc != nil {
				inc(f)
			}
		}
		return Value{}
	}, nil
}

// callArgs compiles the arguments of a builtin call. An sformatf block
// contributes its name as the format string and its expressions as
// arguments.
//
func (c *compiler) callArgs(args []ast.Expr) (string, []evalFn, error) {
	var (
		format string
		fns    []evalFn
	)
	for _, a := range args {
		if b, ok := a.(*ast.Block); ok && b.Kind == "sformatf" {
			format = b.Name
			for _, e := range b.Exprs {
				fn, err := c.expr(e)
				if err != nil {
					return "", nil, err
				}
				fns = append(fns, fn)
			}
			continue
		}
		fn, err := c.expr(a)
		if err != nil {
			return "", nil, err
		}
		fns = append(fns, fn)
	}
	return format, fns, nil
}

func (c *compiler) call(e *ast.FuncCall) (evalFn, error) {
	format, args, err := c.callArgs(e.Args)
	if err != nil {
		return nil, err
	}
	if fn, ok := c.builtins[e.Name]; ok {
		loc := e.Loc
		return func(f *frame) Value {
			call := &Call{Loc: loc, Format: format, Args: make([]Value, len(args))}
			for i, a := range args {
				call.Args[i] = a(f)
			}
			return f.invoke(fn, call)
		}, nil
	}
	if i, ok := c.blocks[e.Name]; ok {
		return func(f *frame) Value {
			for _, a := range args {
				a(f)
			}
			return f.set.funcs[i].invoke(f.m, f.set)
		}, nil
	}
	return nil, errors.WithStack(&UnresolvedSymbolError{Name: e.Name, Loc: e.Loc})
}
