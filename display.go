// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtlsim

import (
	"strconv"
	"strings"
)

func display(newline bool) Builtin {
	return func(m *Module, c *Call) (Value, error) {
		s := m.format(c)
		if newline {
			s += "\n"
		}
		m.display(s)
		return Value{}, nil
	}
}

// format renders a $display style call. Formatting problems are logged and
// the offending directive is output verbatim.
//
// Supported directives: %d %h %x %b %o %c %s %t %m and %%, with an optional
// 0 flag and width.
//
func (m *Module) format(c *Call) string {
	if c.Format == "" {
		ss := make([]string, len(c.Args))
		for i, a := range c.Args {
			ss[i] = a.String()
		}
		return strings.Join(ss, " ")
	}
	var (
		b    strings.Builder
		args = c.Args
		f    = c.Format
	)
	for i := 0; i < len(f); i++ {
		if f[i] != '%' {
			b.WriteByte(f[i])
			continue
		}
		start := i
		i++
		zero := false
		if i < len(f) && f[i] == '0' {
			zero = true
			i++
		}
		width := 0
		for ; i < len(f) && f[i] >= '0' && f[i] <= '9'; i++ {
			width = width*10 + int(f[i]-'0')
		}
		if i >= len(f) {
			m.log.Warn("truncated format directive", "loc", c.Loc, "format", f)
			b.WriteString(f[start:])
			break
		}
		verb := f[i]
		switch verb {
		case '%':
			b.WriteByte('%')
			continue
		case 'm', 'M':
			b.WriteString(m.name)
			continue
		}
		if len(args) == 0 {
			m.log.Warn("missing argument", "loc", c.Loc, "directive", f[start:i+1])
			b.WriteString(f[start : i+1])
			continue
		}
		v := args[0]
		var s string
		switch verb {
		case 'd', 'D', 't', 'T':
			s = v.BigInt().String()
		case 'h', 'H', 'x', 'X':
			s = v.BigInt().Text(16)
		case 'b', 'B':
			s = v.BigInt().Text(2)
		case 'o', 'O':
			s = v.BigInt().Text(8)
		case 'c', 'C':
			s = string(rune(byte(v.Int64())))
		case 's', 'S':
			s = decodeString(v)
		default:
			m.log.Warn("unknown format directive", "loc", c.Loc, "directive", f[start:i+1])
			b.WriteString(f[start : i+1])
			continue
		}
		args = args[1:]
		if pad := width - len(s); pad > 0 {
			p := " "
			if zero {
				p = "0"
			}
			s = strings.Repeat(p, pad) + s
		}
		b.WriteString(s)
	}
	if len(args) > 0 {
		m.log.Warn("extra arguments", "loc", c.Loc, "count", strconv.Itoa(len(args)))
	}
	return b.String()
}
