// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtlsim

import (
	"math/big"
	"strings"

	"github.com/db47h/rtlsim/ast"
	"github.com/pkg/errors"
)

// Call holds the arguments of a builtin function call.
//
type Call struct {
	Loc ast.Loc
	// Format is the format string of an sformatf argument list, if any.
	// The list's expressions are part of Args.
	Format string
	Args   []Value
}

// Arg returns argument i or Word(0) if there is no such argument.
//
func (c *Call) Arg(i int) Value {
	if i < 0 || i >= len(c.Args) {
		return Value{}
	}
	return c.Args[i]
}

// A Builtin is a runtime library function callable from compiled code.
// Returned errors are fatal to the module.
//
type Builtin func(m *Module, c *Call) (Value, error)

// builtins is the default builtin table. Each module gets its own copy.
//
var builtins = map[string]Builtin{
	"$finish":  finish,
	"$stop":    stop,
	"$display": display(true),
	"$write":   display(false),
	"$readmem": readmem,
	"$rand":    random,
	"$random":  random,
	"$time":    now,
	"$$redxor": func(_ *Module, c *Call) (Value, error) { return redxor(c.Arg(0)), nil },
	"$$redor":  func(_ *Module, c *Call) (Value, error) { return redor(c.Arg(0)), nil },
	"$$redand": func(_ *Module, c *Call) (Value, error) {
		return redand(c.Arg(0), int(c.Arg(1).Int64())), nil
	},
}

func finish(m *Module, c *Call) (Value, error) {
	if !m.finished {
		m.log.Info("simulation $finish", "loc", c.Loc)
		m.finished = true
		m.finishedAt = c.Loc
	}
	return Value{}, nil
}

func stop(m *Module, c *Call) (Value, error) {
	if !m.stopped {
		m.log.Info("simulation $stop", "loc", c.Loc)
		m.stopped = true
		m.stoppedAt = c.Loc
	}
	return Value{}, nil
}

func random(m *Module, _ *Call) (Value, error) {
	return Word(int64(m.rand.Int31())), nil
}

func now(m *Module, _ *Call) (Value, error) {
	return Word(m.Elapsed().Milliseconds()), nil
}

// decodeString decodes a string packed into a value, most significant
// character first. Zero bytes are skipped. Arrays are taken as 32-bit words,
// least significant word first.
//
func decodeString(v Value) string {
	var x *big.Int
	if v.kind == KindArray {
		x = new(big.Int)
		for i := v.a.Len() - 1; i >= 0; i-- {
			x.Lsh(x, 32)
			x.Or(x, big.NewInt(int64(uint32(v.a.At(i).Int64()))))
		}
	} else {
		x = v.BigInt()
	}
	var b strings.Builder
	for _, c := range x.Bytes() {
		if c != 0 {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// readmem implements $readmem(filename, mem, lsb, msb, ishex).
//
// The file holds one integer per line, in base 16 if ishex is set, base 2
// otherwise. Empty lines and lines starting with // are skipped. The
// destination is left unchanged on error.
//
func readmem(m *Module, c *Call) (Value, error) {
	name := decodeString(c.Arg(0))
	rerr := func(msg string) error {
		return errors.WithStack(&ReadmemError{File: name, Msg: msg})
	}
	src, ok := m.files.FileData(name)
	if !ok {
		return Value{}, rerr("could not $readmem")
	}
	base := 2
	if c.Arg(4).Bool() {
		base = 16
	}
	var data []*big.Int
	for n, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		v, ok := new(big.Int).SetString(strings.ReplaceAll(line, "_", ""), base)
		if !ok {
			return Value{}, errors.Wrapf(rerr("malformed data"), "line %d", n+1)
		}
		data = append(data, v)
	}
	m.log.Debug("$readmem", "file", name, "hex", base == 16, "len", len(data))
	mem := c.Arg(1)
	if mem.kind != KindArray {
		return Value{}, rerr("no destination array to $readmem")
	}
	if mem.a.Len() < len(data) {
		return Value{}, rerr("destination array too small to $readmem")
	}
	for i, v := range data {
		mem.a.Set(i, Big(v))
	}
	return Value{}, nil
}
