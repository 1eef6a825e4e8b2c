package mintyml

import (
	"strings"
	"sync"
	"testing"
)

// TestConvertScenarios drives a set of fixed input/output pairs covering
// each element form, escape handling, and the details fixup through one
// table instead of one test function per case.
func TestConvertScenarios(t *testing.T) {
	indent := 2
	tests := []struct {
		name string
		args string
		opts Options
		want string
	}{
		{
			name: "article with line-form heading",
			args: "article { h1> Foo }",
			opts: Options{Indent: &indent},
			want: "<article>\n  <h1>Foo</h1>\n</article>\n",
		},
		{
			name: "list of lines with inline formatting",
			args: "ul { > </a/>\n > b\n > c }",
			opts: Options{Indent: &indent},
			want: "<ul>\n  <li><em>a</em></li>\n  <li>b</li>\n  <li>c</li>\n</ul>\n",
		},
		{
			name: "inline formatting with special tag overrides",
			args: `</foo/> <#bar#> <_baz_> <~qux~>`,
			opts: Options{Indent: &indent, SpecialTags: overrideStrs(map[string]string{
				"emphasis": "i", "strong": "b", "underline": "ins", "strike": "del",
			})},
			want: "<p><i>foo</i> <b>bar</b> <ins>baz</ins> <del>qux</del></p>\n",
		},
		{
			name: "single-quoted plaintext block keeps escapes literal",
			args: "'''\nHello, \\u{1F30E}\n'''",
			opts: Options{},
			want: `<p>Hello, \u{1F30E}</p>`,
		},
		{
			name: "double-quoted plaintext block decodes escapes",
			args: `"""` + "\nHello, \\u{1F30E}\n" + `"""`,
			opts: Options{},
			want: "<p>Hello, \U0001F30E</p>",
		},
		{
			name: "details fixup: first line child becomes summary",
			args: "details[open] { More info\n\nBody. }",
			opts: Options{Indent: &indent},
			want: "<details open>\n  <summary>More info</summary>\n  <p>Body.</p>\n</details>\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Convert(tc.args, tc.opts)
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}
			if got != tc.want {
				t.Errorf("Convert() = %q, want %q", got, tc.want)
			}
		})
	}
}

func overrideStrs(m map[string]string) map[string]*string {
	out := make(map[string]*string, len(m))
	for k, v := range m {
		v := v
		out[k] = &v
	}
	return out
}

func TestNestedCommentBalancesOnInnermostCloser(t *testing.T) {
	src := "<! outer <! inner !> still outer !>"
	nodes, errs := Parse(src, DefaultOptions())
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	if len(nodes) != 1 {
		t.Fatalf("want exactly one top-level node, got %d", len(nodes))
	}
	c, ok := nodes[0].(*Comment)
	if !ok {
		t.Fatalf("want *Comment, got %T", nodes[0])
	}
	want := " outer <! inner !> still outer "
	if got := c.InnerSpan.Slice(src); got != want {
		t.Errorf("inner span = %q, want %q", got, want)
	}
	out, err := Convert(src, DefaultOptions())
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if out != "" {
		t.Errorf("comment-only document should render empty, got %q", out)
	}
}

func TestVoidElementsNeverClose(t *testing.T) {
	indent := 2
	out, err := Convert("br{}", Options{Indent: &indent})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if out != "<br>\n" {
		t.Errorf("HTML void element = %q, want %q", out, "<br>\n")
	}
	out, err = Convert("br{}", Options{Indent: &indent, XML: true})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if out != "<br/>\n" {
		t.Errorf("XML void element = %q, want %q", out, "<br/>\n")
	}
}

func TestSpansStayWithinSource(t *testing.T) {
	src := "section { p> one\n\ndiv.foo { p> two } }"
	nodes, errs := Parse(src, DefaultOptions())
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	var walk func(n Node)
	walk = func(n Node) {
		sp := n.Span()
		if sp.Start < 0 || sp.End > len(src) || sp.Start > sp.End {
			t.Fatalf("span out of range: %+v", sp)
		}
		if el, ok := n.(*Element); ok {
			for _, c := range el.Children {
				walk(c)
			}
		}
		if p, ok := n.(*Paragraph); ok {
			for _, c := range p.Content {
				walk(c)
			}
		}
	}
	for _, n := range nodes {
		walk(n)
	}
}

func TestUnknownEscapeIsRecoverableAndLiteral(t *testing.T) {
	out, err := ConvertForgiving(`p> a\qb`, DefaultOptions())
	if err == nil {
		t.Fatalf("expected a recoverable error for an unknown escape")
	}
	if out == nil {
		t.Fatalf("ConvertForgiving must still produce output")
	}
	if *out != `<p>a\qb</p>` {
		t.Errorf("got %q", *out)
	}
}

// TestTextBytesPreservedInOrder checks that, for input with no escapes,
// comments or special tags, every text byte shows up in the output in
// source order.
func TestTextBytesPreservedInOrder(t *testing.T) {
	src := "one two\n\nthree\n\nul { > four\n> five }"
	out, err := Convert(src, DefaultOptions())
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	at := 0
	for _, word := range []string{"one", "two", "three", "four", "five"} {
		idx := strings.Index(out[at:], word)
		if idx == -1 {
			t.Fatalf("word %q missing or out of order in %q", word, out)
		}
		at += idx + len(word)
	}
}

// TestConcurrentConversions runs disjoint conversions in parallel; the
// core keeps no shared state, so this only fails if that stops being true
// (the race detector is the real assertion here).
func TestConcurrentConversions(t *testing.T) {
	sources := []string{
		"article { h1> One }",
		"ul { > a\n> b }",
		"table { Cell }",
		"'''\ntext\n'''",
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		for _, src := range sources {
			wg.Add(1)
			go func(src string) {
				defer wg.Done()
				if _, err := Convert(src, DefaultOptions()); err != nil {
					t.Errorf("Convert(%q) error = %v", src, err)
				}
			}(src)
		}
	}
	wg.Wait()
}

func TestInferenceIsIdempotent(t *testing.T) {
	nodes, _ := Parse("section { p> one\ndiv { p> two } }", DefaultOptions())
	once := Infer(nodes, DefaultOptions())
	twice := Infer(once, DefaultOptions())
	if Render(once, DefaultOptions()) != Render(twice, DefaultOptions()) {
		t.Errorf("Infer(Infer(t)) != Infer(t)")
	}
	var checkTagged func(n Node)
	checkTagged = func(n Node) {
		if el, ok := n.(*Element); ok {
			if el.ResolvedTag == "" {
				t.Errorf("element with empty resolved tag: %+v", el)
			}
			for _, c := range el.Children {
				checkTagged(c)
			}
		}
	}
	for _, n := range twice {
		checkTagged(n)
	}
}
