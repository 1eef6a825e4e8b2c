package mintyml

import "strings"

// voidElements never get a closing tag in HTML mode, and self-close in
// XML mode.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// basePhrasingTags render their children on one line rather than one
// child per indented line.
var basePhrasingTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "li": true, "dt": true, "dd": true, "th": true, "td": true,
	"summary": true, "legend": true, "caption": true, "figcaption": true,
	"a": true, "span": true,
}

const metadataNamespace = "tag:youngspe.github.io,2024:mintyml/metadata"

// writer carries render state (phrasing-tag set, whether this is the very
// first element written) across one Render call.
type writer struct {
	opts      Options
	phrasing  map[string]bool
	indent    int
	pretty    bool
	wroteRoot bool
}

// Render serializes a resolved tree to HTML or XHTML.
func Render(nodes []Node, opts Options) string {
	w := &writer{opts: opts, phrasing: buildPhrasingSet(opts)}
	if opts.Indent != nil {
		w.pretty = true
		w.indent = *opts.Indent
	}
	if opts.CompletePage {
		nodes = wrapCompletePage(nodes)
	}
	br := &ByteRenderer{}
	w.renderSiblings(br, nodes, 0, true)
	return br.String()
}

func buildPhrasingSet(opts Options) map[string]bool {
	set := make(map[string]bool, len(basePhrasingTags)+8)
	for k := range basePhrasingTags {
		set[k] = true
	}
	for _, key := range []string{"strong", "emphasis", "underline", "strike", "quote", "code"} {
		if tag, ok := opts.resolveSpecialTag(key); ok {
			set[tag] = true
		}
	}
	return set
}

func (w *writer) isPhrasing(tag string) bool { return w.phrasing[tag] }

func childIsBlock(n Node, w *writer) bool {
	el, ok := n.(*Element)
	if !ok {
		return false
	}
	return !w.isPhrasing(el.ResolvedTag)
}

func (w *writer) writeIndent(br *ByteRenderer, depth int) {
	if !w.pretty {
		return
	}
	br.Render(strings.Repeat(" ", depth*w.indent))
}

// renderSiblings renders a list of children. blockPositioned tells each
// child whether it occupies its own line in the parent's layout (true for
// the document root and for a block parent's children) or is flowing
// inline alongside siblings on one line (false inside a phrasing parent),
// which decides whether that child gets a trailing newline of its own.
func (w *writer) renderSiblings(br *ByteRenderer, nodes []Node, depth int, blockPositioned bool) {
	for _, n := range nodes {
		w.renderNode(br, n, depth, blockPositioned)
	}
}

func (w *writer) renderNode(br *ByteRenderer, n Node, depth int, blockPositioned bool) {
	switch v := n.(type) {
	case *Element:
		w.renderElement(br, v, depth, blockPositioned)
	case *Text:
		w.renderText(br, v)
	case *Comment:
		w.renderComment(br, v)
	case *Interpolation:
		br.Render(v.Open, v.Content, v.Close)
	}
}

func (w *writer) renderText(br *ByteRenderer, t *Text) {
	if !w.opts.MetadataElements {
		br.Render(w.escapedTextContent(t))
		return
	}
	br.Render("<mty:text")
	if t.Kind_ != TextPlain {
		br.Render(" mty:", t.Kind_.String(), `="true"`)
	}
	br.Render(">", w.escapedTextContent(t), "</mty:text>")
}

func (w *writer) escapedTextContent(t *Text) string {
	switch t.Kind_ {
	case TextRaw:
		if w.opts.XML {
			return escapeText(t.Content)
		}
		return t.Content
	case TextVerbatim:
		// Verbatim content is never escape-decoded, only HTML-escaped;
		// a backslash inside a fenced code block or <[[...]]> segment is
		// part of the text.
		return escapeText(t.Content)
	default: // TextPlain, TextMultiline
		return escapeText(t.Content)
	}
}

func (w *writer) renderComment(br *ByteRenderer, c *Comment) {
	if !w.opts.MetadataElements {
		return
	}
	br.Render("<mty:comment")
	w.renderMetadataAttrs(br, c.Span(), c.Span(), false)
	br.Render("></mty:comment>")
}

func (w *writer) renderElement(br *ByteRenderer, e *Element, depth int, blockPositioned bool) {
	tag := e.ResolvedTag
	if tag == "" {
		tag = "div"
	}
	w.writeIndent(br, depth)
	br.Render("<", tag)
	if e.Sel.ID != "" {
		br.Render(` id="`, escapeAttr(e.Sel.ID), `"`)
	}
	if len(e.Sel.Classes) > 0 {
		br.Render(` class="`, escapeAttr(strings.Join(e.Sel.Classes, " ")), `"`)
	}
	w.renderAttrs(br, e.Sel.Attributes)
	if w.opts.metadataEnabled() {
		isRoot := !w.wroteRoot
		w.wroteRoot = true
		w.renderMetadataAttrs(br, e.SpanV, e.ContentSpan, isRoot)
	}

	if voidElements[tag] {
		if w.opts.XML {
			br.Render("/>")
		} else {
			br.Render(">")
		}
		if w.pretty && blockPositioned {
			br.Render("\n")
		}
		return
	}
	br.Render(">")

	if e.Format == formatCode {
		if body, ok := highlightCode(e); ok {
			br.Render(body)
			br.Render("</", tag, ">")
			if w.pretty && blockPositioned {
				br.Render("\n")
			}
			return
		}
	}

	if e.Format == formatCodeBlockContainer || tag == "pre" {
		// pre-like content: never pretty-print, preserve whitespace.
		w.renderSiblings(br, e.Children, 0, false)
		br.Render("</", tag, ">")
		if w.pretty && blockPositioned {
			br.Render("\n")
		}
		return
	}

	inline := !w.pretty
	if w.pretty && w.isPhrasing(tag) {
		inline = true
		for _, c := range e.Children {
			if childIsBlock(c, w) {
				inline = false
				break
			}
		}
	}
	if inline {
		w.renderSiblings(br, e.Children, 0, false)
		br.Render("</", tag, ">")
		if w.pretty && blockPositioned {
			br.Render("\n")
		}
		return
	}

	br.Render("\n")
	w.renderSiblings(br, e.Children, depth+1, true)
	w.writeIndent(br, depth)
	br.Render("</", tag, ">\n")
}

func (w *writer) renderAttrs(br *ByteRenderer, attrs []Attr) {
	for _, a := range attrs {
		br.Render(" ", a.Name)
		switch {
		case a.Value != nil:
			br.Render(`="`, escapeAttr(*a.Value), `"`)
		case w.opts.XML:
			br.Render(`="`, escapeAttr(a.Name), `"`)
		}
	}
}

func (w *writer) renderMetadataAttrs(br *ByteRenderer, span, contentSpan Span, isRoot bool) {
	if isRoot {
		br.Render(` xmlns:mty="`, metadataNamespace, `"`)
	}
	br.Render(` mty:start="`, span.Start, `" mty:end="`, span.End, `"`)
	if contentSpan != (Span{}) {
		br.Render(` mty:content-start="`, contentSpan.Start, `" mty:content-end="`, contentSpan.End, `"`)
	}
}

func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func escapeAttr(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

var headContentTags = map[string]bool{
	"title": true, "base": true, "link": true, "meta": true, "style": true, "script": true,
}

// wrapCompletePage synthesizes the html/head/body structure CompletePage
// asks for, leaving any explicit top-level html element untouched.
func wrapCompletePage(nodes []Node) []Node {
	for _, n := range nodes {
		if el, ok := n.(*Element); ok && el.ResolvedTag == "html" {
			return nodes
		}
	}
	for _, n := range nodes {
		if el, ok := n.(*Element); ok && el.ResolvedTag == "body" {
			return []Node{&Element{ResolvedTag: "html", FormKind: FormBlock, Children: nodes}}
		}
	}
	var head, body []Node
	for _, n := range nodes {
		if el, ok := n.(*Element); ok && headContentTags[el.ResolvedTag] {
			head = append(head, n)
			continue
		}
		body = append(body, n)
	}
	html := &Element{
		ResolvedTag: "html", FormKind: FormBlock,
		Children: []Node{
			&Element{ResolvedTag: "head", FormKind: FormBlock, Children: head},
			&Element{ResolvedTag: "body", FormKind: FormBlock, Children: body},
		},
	}
	return []Node{html}
}
