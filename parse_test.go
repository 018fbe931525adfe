package rtlsim_test

import (
	"errors"
	"strings"
	"testing"

	rs "github.com/db47h/rtlsim"
	perrors "github.com/pkg/errors"
)

func trace(t *testing.T, err error) {
	t.Helper()
	if err, ok := err.(interface {
		StackTrace() perrors.StackTrace
	}); ok {
		for _, f := range err.StackTrace() {
			t.Logf("%+v ", f)
		}
	}
}

func TestParseTree(t *testing.T) {
	var opened, closed []string
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<!-- a comment -->
<top name="t&amp;t">
	<a x='1'/>
	<b>some &lt;text&gt;</b>
</top>`
	top, err := rs.ParseTree(doc,
		func(n *rs.Node) (interface{}, error) {
			opened = append(opened, n.Type)
			return nil, nil
		},
		func(n *rs.Node) (interface{}, error) {
			closed = append(closed, n.Type)
			return len(n.Children), nil
		})
	if err != nil {
		trace(t, err)
		t.Fatal(err)
	}
	if top.Type != "top" || top.Attrs["name"] != "t&t" {
		t.Fatalf("bad top node %s %v", top.Type, top.Attrs)
	}
	if len(top.Children) != 2 || top.Obj != 2 {
		t.Fatalf("expected 2 children, got %d", len(top.Children))
	}
	if a := top.Children[0]; a.Type != "a" || a.Attrs["x"] != "1" {
		t.Fatalf("bad node <%s> %v", a.Type, a.Attrs)
	}
	if b := top.Children[1]; b.Text != "some <text>" {
		t.Fatalf("bad text %q", b.Text)
	}
	if o, c := strings.Join(opened, ","), strings.Join(closed, ","); o != "?xml,top,a,b" || c != "a,b,top" {
		t.Fatalf("bad callback order: open %s, close %s", o, c)
	}
}

func TestParseTree_errors(t *testing.T) {
	td := []struct {
		doc string
		msg string
	}{
		{`<?xml?><a></b>`, "mismatch close tag: b"},
		{`<?xml?><a></a></a>`, "mismatch close tag: a"},
		{`<?xml?><a>`, "tag not closed"},
		{`<a></a>`, "close tag without open: a"},
		{`<b><?xml?></b>`, "mismatch close tag: b"},
		{`<?xml?>`, "no top"},
		{`text`, "content without element"},
	}
	for _, d := range td {
		_, err := rs.ParseTree(d.doc, nil, nil)
		var se *rs.StructureError
		if !errors.As(err, &se) {
			t.Errorf("%s: expected a StructureError, got %v", d.doc, err)
			continue
		}
		if se.Msg != d.msg {
			t.Errorf("%s: expected %q, got %q", d.doc, d.msg, se.Msg)
		}
	}
}

func TestParseTree_callbackError(t *testing.T) {
	_, err := rs.ParseTree(`<?xml?><a><b/></a>`, nil, func(n *rs.Node) (interface{}, error) {
		if n.Type == "b" {
			return nil, errors.New("boom")
		}
		return nil, nil
	})
	if err == nil || !strings.Contains(err.Error(), "<b>: boom") {
		t.Fatalf("unexpected error %v", err)
	}
}
