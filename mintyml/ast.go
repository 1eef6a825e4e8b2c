package mintyml

// NodeKind discriminates the concrete AST node variants.
type NodeKind int

const (
	KindParagraph NodeKind = iota
	KindElement
	KindText
	KindComment
	KindInterpolation
)

func (k NodeKind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindComment:
		return "comment"
	case KindInterpolation:
		return "interpolation"
	}
	return "invalid node"
}

// Node is the tagged-variant type every AST node implements. Rather than a
// closed sum type, each variant is its own struct; Kind lets callers switch
// on which one they have, the way a visitor would.
type Node interface {
	Kind() NodeKind
	Span() Span
}

// ElementForm is one of the four syntactic element forms.
type ElementForm int

const (
	FormLine ElementForm = iota
	FormBlock
	FormLineBlock
	FormInline
)

func (f ElementForm) String() string {
	switch f {
	case FormLine:
		return "line"
	case FormBlock:
		return "block"
	case FormLineBlock:
		return "line-block"
	case FormInline:
		return "inline"
	}
	return "invalid form"
}

// Attr is one selector/tag attribute. A nil Value means a present-but
// valueless attribute.
type Attr struct {
	Name  string
	Value *string
}

// Selector is the CSS-like prefix bound to an element (GLOSSARY).
// TagName is empty when no tag was written and "*" when the wildcard tag
// was written explicitly; both are resolved by the inference engine.
type Selector struct {
	TagName    string
	ID         string
	Classes    []string
	Attributes []Attr
}

func (s Selector) needsInference() bool {
	return s.TagName == "" || s.TagName == "*"
}

// formatKind names one of the non-selector inline-formatting shorthands, or
// "" for an ordinary selector-headed element. It drives special-tag
// resolution instead of context-kind inference.
type formatKind string

const (
	formatNone               formatKind = ""
	formatStrong             formatKind = "strong"
	formatEmphasis           formatKind = "emphasis"
	formatUnderline          formatKind = "underline"
	formatStrike             formatKind = "strike"
	formatQuote              formatKind = "quote"
	formatCode               formatKind = "code"
	formatCodeBlockContainer formatKind = "codeBlockContainer"
)

// Element is a node with (possibly inferred) tag name and children. Its
// ResolvedTag is empty until the inference pass assigns one.
type Element struct {
	SpanV       Span
	ContentSpan Span
	FormKind    ElementForm
	Sel         Selector
	Format      formatKind
	Children    []Node
	ResolvedTag string

	// FromParagraph marks an element synthesized by the inference engine
	// to wrap a bare Paragraph's content, as distinct from one whose Line
	// form came from an explicit selector.
	// The details/fieldset fixups need to tell these apart.
	FromParagraph bool
}

func (e *Element) Kind() NodeKind { return KindElement }
func (e *Element) Span() Span     { return e.SpanV }

// Paragraph holds inline content; it never contains block/line-block/line
// children.
type Paragraph struct {
	SpanV   Span
	Content []Node
}

func (p *Paragraph) Kind() NodeKind { return KindParagraph }
func (p *Paragraph) Span() Span     { return p.SpanV }

// TextKind distinguishes how a Text node's Content should be treated by
// the writer.
type TextKind int

const (
	TextPlain TextKind = iota
	TextVerbatim
	TextRaw
	TextMultiline
)

func (k TextKind) String() string {
	switch k {
	case TextPlain:
		return "plain"
	case TextVerbatim:
		return "verbatim"
	case TextRaw:
		return "raw"
	case TextMultiline:
		return "multiline"
	}
	return "invalid text kind"
}

// Text is a leaf text segment. Content already has any escape decoding this
// segment's kind calls for applied (or deliberately not applied, for
// Verbatim/Raw); the writer only ever needs to decide escaping, not
// decoding.
type Text struct {
	SpanV   Span
	Kind_   TextKind
	Content string
}

func (t *Text) Kind() NodeKind { return KindText }
func (t *Text) Span() Span     { return t.SpanV }

// Comment is a nestable `<! ... !>` run; InnerSpan covers the bytes between
// the outermost delimiters.
type Comment struct {
	SpanV     Span
	InnerSpan Span
}

func (c *Comment) Kind() NodeKind { return KindComment }
func (c *Comment) Span() Span     { return c.SpanV }

// Interpolation is a template passthrough atom, preserved verbatim and
// never evaluated or nested.
type Interpolation struct {
	SpanV       Span
	Open, Close string
	Content     string
}

func (i *Interpolation) Kind() NodeKind { return KindInterpolation }
func (i *Interpolation) Span() Span     { return i.SpanV }
