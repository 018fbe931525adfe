// Package hdl tokenizes the serialized tag stream produced by elaboration
// front-ends.
//
package hdl

import (
	"strings"
	"unicode"

	"github.com/db47h/rtlsim/internal/lex"
)

// Tokens
const (
	EOF  lex.Type = lex.EOF
	Open lex.Type = iota
	Close
	Text
)

// Tag is the value of Open items.
//
type Tag struct {
	Name      string
	Attrs     map[string]string
	SelfClose bool
}

var entities = strings.NewReplacer(
	"&apos;", "'",
	"&quot;", `"`,
	"&gt;", ">",
	"&lt;", "<",
	"&amp;", "&",
)

// Unescape decodes the five standard XML entities in s.
//
func Unescape(s string) string {
	if strings.IndexByte(s, '&') < 0 {
		return s
	}
	return entities.Replace(s)
}

// Lexer returns a new lexer for a serialized tag stream.
//
// Open items carry a *Tag, Close items the tag name and Text items the
// decoded text. Comments and declarations other than <?...> are skipped.
//
func Lexer(input string) lex.Interface {
	return lex.New(strings.NewReader(input), lexInit)
}

func lexInit(l *lex.Lexer) lex.StateFn {
	r := l.Next()
	switch {
	case r == lex.EOF:
		return lexEOF
	case r == '<':
		return lexTag
	default:
		return lexText
	}
}

func lexText(l *lex.Lexer) lex.StateFn {
	var buf strings.Builder
	buf.WriteRune(l.Current())
	r := l.Next()
	for r != lex.EOF && r != '<' {
		buf.WriteRune(r)
		r = l.Next()
	}
	l.Backup()
	l.Emit(Text, Unescape(buf.String()))
	return nil
}

func isNameRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == ':' || r == '.'
}

func lexTag(l *lex.Lexer) lex.StateFn {
	r := l.Next()
	switch {
	case r == '/':
		name := lexName(l)
		skipTo(l, '>')
		l.Emit(Close, name)
		return nil
	case r == '!':
		if l.Next() == '-' && l.Next() == '-' {
			skipComment(l)
		} else {
			skipTo(l, '>')
		}
		return nil
	case r == '?' || isNameRune(r):
		l.Backup()
		return lexOpen
	}
	// not a tag, treat '<' as text
	l.Backup()
	l.Emit(Text, "<")
	return nil
}

// lexName reads a tag name. Processing instructions keep their leading '?'.
//
func lexName(l *lex.Lexer) string {
	var buf strings.Builder
	r := l.Next()
	if r == '?' {
		buf.WriteRune(r)
		r = l.Next()
	}
	for r != lex.EOF && isNameRune(r) {
		buf.WriteRune(r)
		r = l.Next()
	}
	l.Backup()
	return buf.String()
}

func lexOpen(l *lex.Lexer) lex.StateFn {
	name := lexName(l)
	var buf strings.Builder
	var quote rune
	r := l.Next()
	for r != lex.EOF && (quote != 0 || r != '>') {
		switch {
		case quote == 0 && (r == '"' || r == '\''):
			quote = r
		case r == quote:
			quote = 0
		}
		buf.WriteRune(r)
		r = l.Next()
	}
	// collapse sequences of '>'
	for r == '>' {
		r = l.Next()
	}
	l.Backup()
	attrs := buf.String()
	l.Emit(Open, &Tag{
		Name:      name,
		Attrs:     parseAttrs(attrs),
		SelfClose: strings.HasSuffix(strings.TrimRightFunc(attrs, unicode.IsSpace), "/"),
	})
	return nil
}

// skipTo consumes runes up to and including the first occurrence of d.
//
func skipTo(l *lex.Lexer, d rune) {
	for r := l.Next(); r != lex.EOF && r != d; r = l.Next() {
	}
}

func skipComment(l *lex.Lexer) {
	dashes := 0
	for r := l.Next(); r != lex.EOF; r = l.Next() {
		switch {
		case r == '-':
			dashes++
		case r == '>' && dashes >= 2:
			return
		default:
			dashes = 0
		}
	}
}

// lexEOF places the lexer in End-Of-File state.
// Once in this state, the lexer will only emit EOF.
//
func lexEOF(l *lex.Lexer) lex.StateFn {
	l.Emit(lex.EOF, "end of input")
	return lexEOF
}

func isWordByte(c byte) bool {
	return c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

// parseAttrs extracts name="value" and name='value' pairs from s. Anything
// else is ignored.
//
func parseAttrs(s string) map[string]string {
	attrs := make(map[string]string)
	i := 0
	for i < len(s) {
		if !isWordByte(s[i]) {
			i++
			continue
		}
		j := i
		for j < len(s) && isWordByte(s[j]) {
			j++
		}
		name := s[i:j]
		if j+1 >= len(s) || s[j] != '=' || s[j+1] != '"' && s[j+1] != '\'' {
			i = j
			continue
		}
		k := strings.IndexByte(s[j+2:], s[j+1])
		if k < 0 {
			break
		}
		attrs[name] = Unescape(s[j+2 : j+2+k])
		i = j + 3 + k
	}
	return attrs
}
