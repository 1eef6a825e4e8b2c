package mintyml

// contextKind is the enumerated label the inference engine uses to decide
// what tag an untagged element resolves to.
type contextKind string

const (
	ctxSection   contextKind = "section"
	ctxParagraph contextKind = "paragraph"
	ctxList      contextKind = "list"
	ctxTable     contextKind = "table"
	ctxTableRow  contextKind = "table-row"
	ctxDescList  contextKind = "description-list"
	ctxLabel     contextKind = "label"
	ctxSelect    contextKind = "select"
	ctxDatalist  contextKind = "datalist"
	ctxColgroup  contextKind = "colgroup"
	ctxImagemap  contextKind = "imagemap"
)

// ctxRule is one row of the context resolution table.
// An empty paragraph tag means "plain text, no wrap" / "(none)": the
// paragraph's content is spliced directly into the parent.
type ctxRule struct {
	line, block, lineBlock, paragraph string
}

var contextTable = map[contextKind]ctxRule{
	ctxSection:   {"p", "div", "p", "p"},
	ctxParagraph: {"span", "span", "span", ""},
	ctxList:      {"li", "li", "li", "li"},
	ctxTable:     {"tr", "tr", "tr", "tr"},
	ctxTableRow:  {"td", "td", "td", "td"},
	ctxDescList:  {"dt", "dd", "dd", "dd"},
	ctxLabel:     {"input", "div", "div", "p"},
	ctxSelect:    {"option", "optgroup", "optgroup", "option"},
	ctxDatalist:  {"option", "option", "option", "option"},
	ctxColgroup:  {"col", "col", "col", ""},
	ctxImagemap:  {"area", "area", "area", ""},
}

func lookupCtxRule(ctx contextKind) ctxRule {
	if r, ok := contextTable[ctx]; ok {
		return r
	}
	return contextTable[ctxSection]
}

// fixedContextTags maps a resolved parent tag to the context it always
// induces, regardless of the child's form.
var fixedContextTags = map[string]contextKind{
	"body": ctxSection, "main": ctxSection, "article": ctxSection,
	"header": ctxSection, "footer": ctxSection, "section": ctxSection,
	"nav": ctxSection, "aside": ctxSection, "figure": ctxSection,
	"dialog": ctxSection, "blockquote": ctxSection, "div": ctxSection,
	"template": ctxSection, "hgroup": ctxSection,

	"p": ctxParagraph, "h1": ctxParagraph, "h2": ctxParagraph, "h3": ctxParagraph,
	"h4": ctxParagraph, "h5": ctxParagraph, "h6": ctxParagraph, "span": ctxParagraph,
	"strong": ctxParagraph, "em": ctxParagraph, "u": ctxParagraph, "s": ctxParagraph,
	"q": ctxParagraph, "code": ctxParagraph,

	"ul": ctxList, "ol": ctxList, "menu": ctxList,

	"table": ctxTable, "thead": ctxTable, "tbody": ctxTable, "tfoot": ctxTable,

	"tr": ctxTableRow,
	"dl": ctxDescList,

	"label": ctxLabel,

	"select": ctxSelect,

	"datalist": ctxDatalist, "optgroup": ctxDatalist,

	"colgroup": ctxColgroup,
	"imagemap": ctxImagemap,
}

// childContext decides the context a resolved parent tag gives to one
// particular child. Recognized tags induce a fixed context; for any other
// tag (td, th, li, dd, figcaption, custom elements, a, ...) the context
// depends on the child itself: section when the child is a block form or a
// bare paragraph, paragraph when it is a line/inline form or an inline
// atom. LineBlock counts alongside Block since both carry a `{ }` body.
func childContext(parentTag string, child Node) contextKind {
	if ctx, ok := fixedContextTags[parentTag]; ok {
		return ctx
	}
	switch v := child.(type) {
	case *Element:
		if v.FormKind == FormBlock || v.FormKind == FormLineBlock {
			return ctxSection
		}
		return ctxParagraph
	case *Paragraph:
		return ctxSection
	default:
		return ctxParagraph
	}
}

// Infer resolves every element's tag name and applies the post-inference
// fixups, returning a tree where every element has a non-empty
// ResolvedTag.
func Infer(nodes []Node, opts Options) []Node {
	return inferSiblings(nodes, ctxSection, opts)
}

func inferSiblings(nodes []Node, ctx contextKind, opts Options) []Node {
	var out []Node
	for _, n := range nodes {
		out = append(out, inferNode(n, ctx, opts)...)
	}
	return out
}

// inferNode resolves one node, returning the nodes that replace it: one in
// the ordinary case, or the resolved content itself (zero or more nodes)
// when a paragraph with no wrapper tag, a transparent inline wrapper or an
// unwrapped formatting element splices into its parent.
func inferNode(n Node, ctx contextKind, opts Options) []Node {
	switch v := n.(type) {
	case *Paragraph:
		return inferParagraph(v, ctx, opts)
	case *Element:
		return inferElement(v, ctx, opts)
	default:
		return []Node{n}
	}
}

func inferParagraph(v *Paragraph, ctx contextKind, opts Options) []Node {
	resolved := inferSiblings(v.Content, ctxParagraph, opts)
	if ctx == ctxTable {
		// A bare paragraph of cells becomes a row, with its content
		// wrapped in a single cell before the row wrapping.
		tdTag := lookupCtxRule(ctxTableRow).paragraph
		cell := resolved
		if tdTag != "" {
			cell = []Node{&Element{
				SpanV: v.SpanV, ContentSpan: v.SpanV, FormKind: FormLine,
				ResolvedTag: tdTag, Children: resolved, FromParagraph: true,
			}}
		}
		return []Node{&Element{
			SpanV: v.SpanV, ContentSpan: v.SpanV, FormKind: FormLine,
			ResolvedTag: "tr", Children: cell, FromParagraph: true,
		}}
	}
	tag := lookupCtxRule(ctx).paragraph
	if tag == "" {
		return resolved
	}
	return []Node{&Element{
		SpanV: v.SpanV, ContentSpan: v.SpanV, FormKind: FormLine,
		ResolvedTag: tag, Children: resolved, FromParagraph: true,
	}}
}

func inferElement(e *Element, ctx contextKind, opts Options) []Node {
	if e.Format != formatNone {
		return inferFormatted(e, opts)
	}
	if e.FormKind == FormInline && e.Sel.TagName == "" {
		// A plain `<( Node )>` wrapper is transparent: it exists only to
		// let its one child appear mid-line, and contributes no element
		// of its own.
		return inferSiblings(e.Children, ctx, opts)
	}

	if e.Sel.needsInference() {
		rule := lookupCtxRule(ctx)
		switch e.FormKind {
		case FormLine:
			e.ResolvedTag = rule.line
		case FormLineBlock:
			e.ResolvedTag = rule.lineBlock
		default:
			e.ResolvedTag = rule.block
		}
		if e.ResolvedTag == "" {
			e.ResolvedTag = "div"
		}
	} else {
		e.ResolvedTag = e.Sel.TagName
	}

	children := make([]Node, 0, len(e.Children))
	for _, c := range e.Children {
		cctx := childContext(e.ResolvedTag, c)
		if e.ResolvedTag == "details" || e.ResolvedTag == "fieldset" {
			cctx = ctxSection
		}
		children = append(children, inferNode(c, cctx, opts)...)
	}
	children = applyDetailsFixup(e.ResolvedTag, children)
	children = applyFieldsetFixup(e.ResolvedTag, children)
	e.Children = children
	return []Node{e}
}

func inferFormatted(e *Element, opts Options) []Node {
	childCtx := ctxParagraph
	if e.Format == formatCodeBlockContainer {
		childCtx = ctxSection
	}
	children := inferSiblings(e.Children, childCtx, opts)
	tag, ok := opts.resolveSpecialTag(string(e.Format))
	if !ok {
		return children
	}
	e.ResolvedTag = tag
	e.Children = children
	return []Node{e}
}

// applyDetailsFixup relabels a details element's first paragraph-or-line
// child to summary. It does not apply when that first child is itself a
// block.
func applyDetailsFixup(tag string, children []Node) []Node {
	if tag != "details" || len(children) == 0 {
		return children
	}
	el, ok := children[0].(*Element)
	if !ok || el.FormKind == FormBlock {
		return children
	}
	el.ResolvedTag = "summary"
	return children
}

// applyFieldsetFixup relabels a fieldset's first child to legend, but only
// when that child came from a bare paragraph (stricter than the details
// fixup).
func applyFieldsetFixup(tag string, children []Node) []Node {
	if tag != "fieldset" || len(children) == 0 {
		return children
	}
	el, ok := children[0].(*Element)
	if !ok || !el.FromParagraph {
		return children
	}
	el.ResolvedTag = "legend"
	return children
}
