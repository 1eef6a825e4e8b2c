package mintyml

import (
	"strconv"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"golang.org/x/net/html"
)

// TestHTMLOutputIsWellFormed parses HTML-mode writer output with
// golang.org/x/net/html to confirm void elements and nesting survive a
// real HTML parse, not just mintyml's own assumptions.
func TestHTMLOutputIsWellFormed(t *testing.T) {
	indent := 2
	src := "article { h1> Title\n\nul { > one\n > two }\nbr{} }"
	out, err := Convert(src, Options{Indent: &indent})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	doc, parseErr := html.Parse(strings.NewReader(out))
	if parseErr != nil {
		t.Fatalf("golang.org/x/net/html failed to parse output: %v", parseErr)
	}

	var sawBr, sawLi bool
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "br":
				sawBr = true
				if n.FirstChild != nil {
					t.Errorf("void element <br> should have no children after a real HTML parse")
				}
			case "li":
				sawLi = true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if !sawBr || !sawLi {
		t.Fatalf("expected parsed tree to contain br and li elements, source was %q", out)
	}
}

// TestXMLMetadataRoundTrip parses xml=true, metadata=true output with
// etree and confirms every element carries mty:start/mty:end attributes
// that parse as integers forming a range inside the source.
func TestXMLMetadataRoundTrip(t *testing.T) {
	src := "section { p> one\ndiv.foo { p> two } }"
	nodes, errs := Parse(src, DefaultOptions())
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	resolved := Infer(nodes, DefaultOptions())
	out := Render(resolved, Options{XML: true, Metadata: true})

	doc := etree.NewDocument()
	if err := doc.ReadFromString(out); err != nil {
		t.Fatalf("etree failed to parse xml output: %v\n%s", err, out)
	}

	root := doc.Root()
	if root == nil {
		t.Fatalf("no root element in output %q", out)
	}
	if ns := root.SelectAttrValue("xmlns:mty", ""); ns == "" {
		t.Errorf("root element must declare the mty namespace")
	}

	var checkedAny bool
	for _, el := range doc.FindElements("//*") {
		startAttr := el.SelectAttr("mty:start")
		endAttr := el.SelectAttr("mty:end")
		if startAttr == nil || endAttr == nil {
			t.Fatalf("element %s missing mty:start/mty:end", el.Tag)
		}
		start, err := strconv.Atoi(startAttr.Value)
		if err != nil {
			t.Fatalf("mty:start=%q not an int", startAttr.Value)
		}
		end, err := strconv.Atoi(endAttr.Value)
		if err != nil {
			t.Fatalf("mty:end=%q not an int", endAttr.Value)
		}
		if start < 0 || end > len(src) || start > end {
			t.Fatalf("span [%d,%d) out of range for source of length %d", start, end, len(src))
		}
		checkedAny = true
	}
	if !checkedAny {
		t.Fatalf("expected at least one element with metadata attributes")
	}
}

func TestCompletePagePartition(t *testing.T) {
	out, err := Convert("title> My Page\nContent here", Options{CompletePage: true})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	want := "<html><head><title>My Page</title></head><body><p>Content here</p></body></html>"
	if out != want {
		t.Errorf("Convert() = %q, want %q", out, want)
	}
}

func TestCompletePageLeavesExplicitStructureAlone(t *testing.T) {
	out, err := Convert("html { body { Hi } }", Options{CompletePage: true})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if out != "<html><body><p>Hi</p></body></html>" {
		t.Errorf("an explicit html element must pass through unchanged, got %q", out)
	}

	out, err = Convert("body { Hi }", Options{CompletePage: true})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if out != "<html><body><p>Hi</p></body></html>" {
		t.Errorf("an explicit body should only gain an html wrapper, got %q", out)
	}
}

func TestSelectorAttributeRendering(t *testing.T) {
	out, err := Convert("div#main.a.b[data-x=1]{}", DefaultOptions())
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if out != `<div id="main" class="a b" data-x="1"></div>` {
		t.Errorf("Convert() = %q", out)
	}
}

func TestValuelessAttributeRendering(t *testing.T) {
	out, err := Convert("input[disabled]{}", DefaultOptions())
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if out != "<input disabled>" {
		t.Errorf("HTML mode = %q", out)
	}
	out, err = Convert("input[disabled]{}", Options{XML: true})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if out != `<input disabled="disabled"/>` {
		t.Errorf("XML mode = %q", out)
	}
}

func TestAttributeValueEscaping(t *testing.T) {
	out, err := Convert(`a[href="a&b<c>"]> link`, DefaultOptions())
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if out != `<a href="a&amp;b&lt;c&gt;">link</a>` {
		t.Errorf("Convert() = %q", out)
	}
}

func TestMetadataElementsWrapTextAndComments(t *testing.T) {
	out, err := Convert("'''\nx\n'''", Options{MetadataElements: true})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !strings.Contains(out, `<mty:text mty:multiline="true">x</mty:text>`) {
		t.Errorf("multiline text should be wrapped and flagged, got %q", out)
	}
	if !strings.Contains(out, `xmlns:mty="tag:youngspe.github.io,2024:mintyml/metadata"`) {
		t.Errorf("root element should declare the mty namespace, got %q", out)
	}

	out, err = Convert("p> a <! note !> b", Options{MetadataElements: true})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !strings.Contains(out, "<mty:comment") {
		t.Errorf("comments should appear as mty:comment, got %q", out)
	}

	// Without the elements flag, comments vanish and text is bare.
	out, err = Convert("p> a <! note !> b", Options{Metadata: true})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if strings.Contains(out, "mty:comment") || strings.Contains(out, "mty:text") {
		t.Errorf("metadata without elements must not emit wrapper elements, got %q", out)
	}
}

func TestPreContentKeepsWhitespace(t *testing.T) {
	indent := 2
	out, err := Convert("```\na\n  b\n```", Options{Indent: &indent})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if out != "<pre><code>a\n  b</code></pre>\n" {
		t.Errorf("Convert() = %q", out)
	}
}

func TestRawTextEscapedOnlyInXMLMode(t *testing.T) {
	raw := &Text{Kind_: TextRaw, Content: "<b>raw</b>"}
	html := Render([]Node{raw}, DefaultOptions())
	if html != "<b>raw</b>" {
		t.Errorf("HTML mode raw text = %q", html)
	}
	xml := Render([]Node{raw}, Options{XML: true})
	if xml != "&lt;b&gt;raw&lt;/b&gt;" {
		t.Errorf("XML mode raw text = %q", xml)
	}
}
