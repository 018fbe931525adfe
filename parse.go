// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtlsim

import (
	"strings"

	"github.com/db47h/rtlsim/internal/hdl"
	"github.com/pkg/errors"
)

// Sentinel is the tag of the declaration that must enclose a serialized
// tree.
//
const Sentinel = "?xml"

// Node is a node of a serialized tree as seen by ParseTree.
//
type Node struct {
	Type     string
	Attrs    map[string]string
	Text     string
	Children []*Node
	// Obj is the value returned by the open callback, replaced by the value
	// returned by the close callback.
	Obj interface{}
}

// A TreeFunc is a ParseTree callback.
//
type TreeFunc func(n *Node) (interface{}, error)

// ParseTree walks a serialized tag stream and returns its document element.
//
// openFn is called for every open tag and closeFn for every close tag, before the
// node is appended to its parent's children. Self-closing tags trigger both.
// Either callback may be nil. Non-blank text is trimmed and recorded on the
// innermost open node.
//
// The walker is intentionally lenient: it only checks that tags are
// balanced and that the whole document is enclosed in a <?xml ...?>
// declaration. Any other validation belongs to the callbacks.
//
func ParseTree(doc string, openFn, closeFn TreeFunc) (*Node, error) {
	var (
		stack []*Node
		top   *Node
	)
	l := hdl.Lexer(doc)

	closeTop := func(name string, pos int) error {
		if len(stack) == 0 {
			return &StructureError{pos, "close tag without open: " + name}
		}
		n := stack[len(stack)-1]
		if n.Type != name {
			return &StructureError{pos, "mismatch close tag: " + name}
		}
		stack = stack[:len(stack)-1]
		if closeFn != nil {
			obj, err := closeFn(n)
			if err != nil {
				return errors.Wrapf(err, "at pos %d: <%s>", pos+1, n.Type)
			}
			n.Obj = obj
		}
		if len(stack) == 0 {
			return &StructureError{pos, "close tag without open: " + name}
		}
		parent := stack[len(stack)-1]
		parent.Children = append(parent.Children, n)
		top = n
		return nil
	}

	for {
		i := l.Lex()
		pos := int(i.Pos)
		switch i.Type {
		case hdl.EOF:
			if len(stack) != 1 {
				return nil, errors.WithStack(&StructureError{pos, "tag not closed"})
			}
			if stack[0].Type != Sentinel {
				return nil, errors.WithStack(&StructureError{-1, Sentinel + " needs to be first element"})
			}
			if top == nil {
				return nil, errors.WithStack(&StructureError{-1, "no top"})
			}
			return top, nil
		case hdl.Open:
			tag := i.Value.(*hdl.Tag)
			n := &Node{Type: tag.Name, Attrs: tag.Attrs}
			stack = append(stack, n)
			if openFn != nil {
				obj, err := openFn(n)
				if err != nil {
					return nil, errors.Wrapf(err, "at pos %d: <%s>", pos+1, n.Type)
				}
				n.Obj = obj
			}
			if tag.SelfClose {
				if err := closeTop(n.Type, pos); err != nil {
					return nil, errors.WithStack(err)
				}
			}
		case hdl.Close:
			if err := closeTop(i.Value.(string), pos); err != nil {
				return nil, errors.WithStack(err)
			}
		case hdl.Text:
			txt := strings.TrimSpace(i.Value.(string))
			if txt == "" {
				continue
			}
			if len(stack) == 0 {
				return nil, errors.WithStack(&StructureError{pos, "content without element"})
			}
			stack[len(stack)-1].Text = txt
		}
	}
}
