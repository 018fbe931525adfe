// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package lex provides a minimal state-function based lexer.
//
// A lexer is driven by StateFn's. Each state function consumes input with
// Next/Backup, emits zero or more items with Emit and returns the next state.
// Returning nil resets the lexer to its initial state.
//
package lex

import (
	"fmt"
	"io"
	"unicode/utf8"
)

// EOF is both the Type of end of input items and the rune returned by Next
// at end of input.
//
const EOF = -1

// Type is an item type.
//
type Type int

// Pos is a rune offset in the input.
//
type Pos int

// Item is a lexed item.
//
type Item struct {
	Type  Type
	Pos   Pos
	Value interface{}
}

func (i Item) String() string {
	if i.Type == EOF {
		return "end of input"
	}
	return fmt.Sprintf("%v", i.Value)
}

// A StateFn is a lexer state.
//
type StateFn func(l *Lexer) StateFn

// Interface is the interface of lexers returned by New.
//
type Interface interface {
	// Lex returns the next item in the input stream.
	Lex() Item
}

// Lexer is the lexing state passed to state functions.
//
type Lexer struct {
	in    io.RuneReader
	init  StateFn
	state StateFn
	items []Item

	cur    rune
	pos    Pos // position of cur
	start  Pos // start position of the current token
	backup bool
	last   rune
	err    error
}

// New returns a new lexer reading from r and starting in state init.
//
func New(r io.RuneReader, init StateFn) Interface {
	return &Lexer{in: r, init: init, pos: -1, cur: utf8.RuneError}
}

// Lex implements Interface.
//
func (l *Lexer) Lex() Item {
	for len(l.items) == 0 {
		if l.state == nil {
			l.state = l.init
			l.start = l.pos + 1
		}
		l.state = l.state(l)
	}
	i := l.items[0]
	l.items = l.items[1:]
	return i
}

// Next returns the next rune in the input, or EOF.
//
func (l *Lexer) Next() rune {
	if l.backup {
		l.backup = false
		l.last, l.cur = l.cur, l.last
		l.pos++
		return l.cur
	}
	if l.cur == EOF {
		return EOF
	}
	r, _, err := l.in.ReadRune()
	if err != nil {
		if err != io.EOF {
			l.err = err
		}
		r = EOF
	}
	l.last = l.cur
	l.cur = r
	l.pos++
	return r
}

// Backup reverts the last call to Next. Only one level of backup is
// supported.
//
func (l *Lexer) Backup() {
	if l.backup {
		panic("lex: double Backup")
	}
	l.backup = true
	l.last, l.cur = l.cur, l.last
	l.pos--
}

// Current returns the last rune returned by Next.
//
func (l *Lexer) Current() rune { return l.cur }

// Pos returns the position of the current rune.
//
func (l *Lexer) Pos() Pos { return l.pos }

// AcceptWhile consumes runes as long as f returns true.
//
func (l *Lexer) AcceptWhile(f func(rune) bool) {
	r := l.Next()
	for r != EOF && f(r) {
		r = l.Next()
	}
	l.Backup()
}

// Emit emits an item of type t with the given value. Its position is the
// start of the current token, which is then reset to the next rune.
//
func (l *Lexer) Emit(t Type, value interface{}) {
	l.items = append(l.items, Item{Type: t, Pos: l.start, Value: value})
	l.start = l.pos + 1
}

// Err returns the first non-EOF read error, if any.
//
func (l *Lexer) Err() error { return l.err }
