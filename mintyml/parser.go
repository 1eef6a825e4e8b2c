package mintyml

import "strings"

// parser is a recursive-descent, byte-offset scanner over a MinTyML source
// string. It never copies the source: every node it builds carries a Span
// into p.src. Failed production attempts restore p.pos themselves, so the
// dispatch functions in this file and in constructs.go/selector.go can be
// tried in priority order without lookahead copies.
type parser struct {
	src     string
	pos     int
	opts    Options
	errors  []*SyntaxError
	stopped bool
	// braceDepth counts how many enclosing Block/LineBlock bodies we are
	// inside. A Line-form body parsed while braceDepth > 0 must stop at an
	// unescaped '}' even mid-line, since that brace closes an ancestor, not
	// the line itself.
	braceDepth int
}

// Parse turns source into a concrete syntax tree of top-level nodes plus
// any recoverable syntax errors.
// It never panics on malformed input: productions that fail to match
// degrade to paragraph text, with an error recorded at the point of
// failure.
func Parse(source string, opts Options) ([]Node, []*SyntaxError) {
	p := &parser{src: source, opts: opts}
	nodes, _ := p.parseBlockNodes(false, true)
	return nodes, p.errors
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) startsWith(lit string) bool {
	return strings.HasPrefix(p.src[p.pos:], lit)
}

func (p *parser) consumeLit(lit string) bool {
	if p.startsWith(lit) {
		p.pos += len(lit)
		return true
	}
	return false
}

// skipHSpace advances over horizontal whitespace (space/tab) only, and
// returns how many bytes it consumed.
func (p *parser) skipHSpace() int {
	start := p.pos
	for !p.eof() && isSpace(p.peek()) {
		p.pos++
	}
	return p.pos - start
}

// skipBlankLines advances past any run of lines that are empty or contain
// only horizontal whitespace, landing p.pos at the start of the next
// non-blank line (or at EOF).
func (p *parser) skipBlankLines() {
	for {
		save := p.pos
		for !p.eof() && isSpace(p.peek()) {
			p.pos++
		}
		if !p.eof() && p.peek() == '\n' {
			p.pos++
			continue
		}
		p.pos = save
		return
	}
}

func (p *parser) addError(e *SyntaxError) {
	p.errors = append(p.errors, e)
	if p.opts.FailFast {
		p.stopped = true
	}
}

func (p *parser) isBlankLineAt(pos int) bool {
	i := pos
	for i < len(p.src) && isSpace(p.src[i]) {
		i++
	}
	return i >= len(p.src) || p.src[i] == '\n'
}

// nextLineStartsConstruct cheaply decides whether the line beginning at
// pos would be recognized as a new sibling node rather than a continuation
// of the paragraph currently being accumulated, without doing a full trial
// parse (which would have side effects on p.errors).
func (p *parser) nextLineStartsConstruct(pos int, braceTerminated bool) bool {
	i := pos
	for i < len(p.src) && isSpace(p.src[i]) {
		i++
	}
	if braceTerminated && i < len(p.src) && p.src[i] == '}' {
		return true
	}
	rest := p.src[i:]
	if strings.HasPrefix(rest, "<!") || strings.HasPrefix(rest, "<[") ||
		strings.HasPrefix(rest, "'''") || strings.HasPrefix(rest, `"""`) ||
		strings.HasPrefix(rest, "```") {
		return true
	}
	nl := strings.IndexByte(rest, '\n')
	line := rest
	if nl != -1 {
		line = rest[:nl]
	}
	return looksLikeSelectorLine(line)
}

// looksLikeSelectorLine is a syntactic heuristic: a line "starts a
// selector" when, scanning from its first character, we reach a `{` or
// `>` with everything in between being plausible selector syntax (plus at
// most one run of whitespace right before the body suffix). It is
// intentionally permissive; genuine ambiguities are caught properly once
// the real production runs.
func looksLikeSelectorLine(line string) bool {
	n := len(line)
	if n == 0 {
		return false
	}
	c := line[0]
	if c == '>' {
		// An empty-selector Line ("> body").
		return true
	}
	if c == '{' {
		// An empty-selector Block, unless it is really an interpolation
		// token, which stays paragraph text.
		return !strings.HasPrefix(line, "{{") && !strings.HasPrefix(line, "{%")
	}
	if !(isTagNameStart(c) || c == '*' || c == '.' || c == '#' || c == '[') {
		return false
	}
	for i := 0; i < n; i++ {
		c := line[i]
		switch {
		case c == '{' || c == '>':
			return true
		case c == ' ' || c == '\t':
			// The body suffix may be separated from the selector by
			// horizontal whitespace ("ul { ... }"), but anything else after
			// a space is ordinary prose.
			for i < n && (line[i] == ' ' || line[i] == '\t') {
				i++
			}
			return i < n && (line[i] == '{' || line[i] == '>')
		case isTagNameCont(c) || c == '*' || c == '.' || c == '#' || c == '[' ||
			c == ']' || c == '=' || c == '\'' || c == '"' || c == '@':
			continue
		default:
			return false
		}
	}
	return false
}

// stopCfg configures where parseInlineContent should stop collecting
// inline items.
type stopCfg struct {
	// braceTerminated means stop before an unescaped '}' (a Block/
	// LineBlock body).
	braceTerminated bool
	// singleLine means stop at end-of-line (a Line-form body).
	singleLine bool
	// stopLit, if non-empty, means stop right before this literal (used
	// for inline-formatting/inline-element closers).
	stopLit string
	// noSplit suppresses the normal "blank line ends the paragraph" rule.
	// LineBlock bodies use this.
	noSplit bool
}

// parseBlockNodes parses zero or more sibling nodes. When braceTerminated
// is true it consumes a matching '}' before returning; otherwise it runs to
// EOF (the top-level document, or an unterminated block after recording
// an error). splitParagraphs=false disables blank-line paragraph splitting
// (LineBlock bodies); callers pass true everywhere else.
func (p *parser) parseBlockNodes(braceTerminated, splitParagraphs bool) ([]Node, bool) {
	if braceTerminated {
		p.braceDepth++
		defer func() { p.braceDepth-- }()
	}
	var nodes []Node
	for {
		if p.stopped {
			return nodes, true
		}
		p.skipBlankLines()
		if p.eof() {
			if braceTerminated {
				p.addError(newParseError(spanFrom(p.pos, p.pos), "", "closing '}'"))
			}
			return nodes, true
		}
		if braceTerminated && p.peek() == '}' {
			p.pos++
			return nodes, true
		}
		if node, ok := p.tryBlockConstruct(); ok {
			if t, isText := node.(*Text); isText {
				// A plaintext block or verbatim segment standing alone at
				// block level reads as a paragraph of its own, so the
				// inference pass wraps it the way it wraps any other
				// paragraph in this context.
				node = &Paragraph{SpanV: t.SpanV, Content: []Node{t}}
			}
			nodes = append(nodes, node)
			continue
		}
		items, span := p.parseInlineContent(stopCfg{braceTerminated: braceTerminated, noSplit: !splitParagraphs})
		trimParagraphEdges(items)
		if isBlankParagraphContent(items) {
			// Pure horizontal whitespace between a nested block's closing
			// '}' and its enclosing block's closing '}' isn't a paragraph.
			continue
		}
		nodes = append(nodes, &Paragraph{SpanV: span, Content: items})
	}
}

// tryBlockConstruct attempts, in priority order, each production that
// can start a sibling node, restoring p.pos on total
// failure so the caller can fall back to paragraph accumulation.
func (p *parser) tryBlockConstruct() (Node, bool) {
	lineStart := p.pos
	indent := p.skipHSpace()
	if node, ok := p.tryComment(); ok {
		return node, true
	}
	if node, ok := p.tryVerbatimSeg(); ok {
		return node, true
	}
	if node, ok := p.tryPlaintextBlock(lineStart, indent); ok {
		return node, true
	}
	if node, ok := p.tryCodeBlock(lineStart, indent); ok {
		return node, true
	}
	if node, ok := p.trySelectorForm(lineStart); ok {
		return node, true
	}
	// Inline elements and inline-formatting shorthands (productions 8/9)
	// are never block-starting productions on their own: they only ever
	// occur as part of a line's inline content, recognized by
	// parseInlineContent below. Trying them here would split a line like
	// "<#bold#> and <#more#>" into separate top-level nodes instead of one
	// paragraph.
	p.pos = lineStart
	return nil, false
}

// parseInlineContent is the shared scanner behind paragraphs, Line-form
// bodies, and the content of inline constructs: it walks the source one
// atom at a time, recognizing nested comments/verbatim/interpolation/
// inline-elements/inline-formatting as it goes and collecting plain runs
// as Text nodes, until a stop condition from cfg is reached.
func (p *parser) parseInlineContent(cfg stopCfg) ([]Node, Span) {
	start := p.pos
	var items []Node
	textStart := -1

	flush := func(end int) {
		if textStart >= 0 && end > textStart {
			raw := p.src[textStart:end]
			// Collapse before decoding: escape sequences like `\n` and
			// `\ ` exist precisely to survive whitespace normalization, so
			// the collapse must see them as opaque two-byte runs.
			decoded, errs := decodeEscapes(collapseSourceWhitespace(raw), textStart)
			p.errors = append(p.errors, errs...)
			items = append(items, &Text{
				SpanV:   spanFrom(textStart, end),
				Kind_:   TextPlain,
				Content: decoded,
			})
		}
		textStart = -1
	}

	for {
		if p.stopped || p.eof() {
			break
		}
		if cfg.stopLit != "" && p.startsWith(cfg.stopLit) {
			break
		}
		if cfg.braceTerminated && p.peek() == '}' {
			break
		}
		if p.peek() == '\n' {
			if cfg.singleLine {
				break
			}
			if !cfg.noSplit && p.isBlankLineAt(p.pos+1) {
				break
			}
			if p.nextLineStartsConstruct(p.pos+1, cfg.braceTerminated) {
				break
			}
			if textStart < 0 {
				textStart = p.pos
			}
			p.pos++
			continue
		}

		posBefore := p.pos
		if node, ok := p.tryComment(); ok {
			flush(posBefore)
			items = append(items, node)
			continue
		}
		if node, ok := p.tryVerbatimSeg(); ok {
			flush(posBefore)
			items = append(items, node)
			continue
		}
		if node, ok := p.tryInterpolation(); ok {
			flush(posBefore)
			items = append(items, node)
			continue
		}
		if node, ok := p.tryInlineElement(); ok {
			flush(posBefore)
			items = append(items, node)
			continue
		}
		if node, ok := p.tryInlineFormatting(); ok {
			flush(posBefore)
			items = append(items, node)
			continue
		}

		if textStart < 0 {
			textStart = p.pos
		}
		if p.peek() == '\\' && p.pos+1 < len(p.src) && p.src[p.pos+1] != '\n' {
			// Keep an escape sequence together so `\}`, `\<` and friends
			// can't be mistaken for a body terminator or the start of an
			// inline construct.
			p.pos += 2
			continue
		}
		p.pos++
	}
	flush(p.pos)
	return items, spanFrom(start, p.pos)
}

// collapseSourceWhitespace replaces every run of whitespace (including
// newlines absorbed from multi-line paragraphs) with a single space,
// skipping over backslash escape pairs so escaped whitespace is left for
// the decoder. It never trims the ends — that trim happens once per
// enclosing paragraph/line via trimParagraphEdges, so boundaries against
// adjacent inline nodes are preserved.
func collapseSourceWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i++
			prevSpace = false
			continue
		}
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			if !prevSpace {
				b.WriteByte(' ')
			}
			prevSpace = true
			continue
		}
		b.WriteByte(c)
		prevSpace = false
	}
	return b.String()
}

// isBlankParagraphContent reports whether a just-trimmed item list has
// nothing left in it worth keeping as a paragraph.
func isBlankParagraphContent(items []Node) bool {
	if len(items) == 0 {
		return true
	}
	if len(items) != 1 {
		return false
	}
	t, ok := items[0].(*Text)
	return ok && t.Kind_ == TextPlain && strings.TrimSpace(t.Content) == ""
}

// trimParagraphEdges trims all leading spaces from the first Text item and
// all trailing spaces from the last, so paragraph boundaries don't
// leak layout whitespace into the output.
func trimParagraphEdges(items []Node) {
	if len(items) == 0 {
		return
	}
	if t, ok := items[0].(*Text); ok && t.Kind_ == TextPlain {
		t.Content = strings.TrimLeft(t.Content, " ")
	}
	if t, ok := items[len(items)-1].(*Text); ok && t.Kind_ == TextPlain {
		t.Content = strings.TrimRight(t.Content, " ")
	}
}
