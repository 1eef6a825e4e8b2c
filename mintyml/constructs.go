package mintyml

import "strings"

// tryComment parses a nestable `<! ... !>` run. Unterminated input is
// accepted through EOF with an error recorded, matching the parser's
// no-panic contract.
func (p *parser) tryComment() (Node, bool) {
	if !p.startsWith("<!") {
		return nil, false
	}
	start := p.pos
	p.pos += 2
	innerStart := p.pos
	depth := 1
	for !p.eof() {
		if p.startsWith("<!") {
			depth++
			p.pos += 2
			continue
		}
		if p.startsWith("!>") {
			depth--
			p.pos += 2
			if depth == 0 {
				return &Comment{SpanV: spanFrom(start, p.pos), InnerSpan: spanFrom(innerStart, p.pos-2)}, true
			}
			continue
		}
		p.pos++
	}
	p.addError(newParseError(spanFrom(start, p.pos), "", "closing '!>'"))
	return &Comment{SpanV: spanFrom(start, p.pos), InnerSpan: spanFrom(innerStart, p.pos)}, true
}

// tryVerbatimSeg parses `<[` '#'*n `[` ... `]` '#'*n `]>`. The hash count
// lets verbatim content itself contain `]` runs shorter than the delimiter
// without closing early.
func (p *parser) tryVerbatimSeg() (Node, bool) {
	if !p.startsWith("<[") {
		return nil, false
	}
	save := p.pos
	start := p.pos
	p.pos += 2
	hashCount, next := countHashes(p.src, p.pos)
	p.pos = next
	if p.eof() || p.peek() != '[' {
		p.pos = save
		return nil, false
	}
	p.pos++
	innerStart := p.pos
	for !p.eof() {
		if p.peek() != ']' {
			p.pos++
			continue
		}
		cand := p.pos
		p.pos++
		hc, next2 := countHashes(p.src, p.pos)
		if hc == hashCount && next2+1 < len(p.src) && p.src[next2] == ']' && p.src[next2+1] == '>' {
			innerEnd := cand
			end := next2 + 2
			content := p.src[innerStart:innerEnd]
			p.pos = end
			return &Text{SpanV: spanFrom(start, end), Kind_: TextVerbatim, Content: content}, true
		}
		p.pos = cand + 1
	}
	p.addError(newParseError(spanFrom(start, p.pos), "", "closing verbatim delimiter"))
	content := p.src[innerStart:p.pos]
	return &Text{SpanV: spanFrom(start, p.pos), Kind_: TextVerbatim, Content: content}, true
}

// stripIndentFromLines removes up to n leading space/tab bytes from every
// line of s, used to undo a plaintext/code block's common indentation.
func stripIndentFromLines(s string, n int) string {
	if n <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		j := 0
		for j < n && j < len(line) && isSpace(line[j]) {
			j++
		}
		lines[i] = line[j:]
	}
	return strings.Join(lines, "\n")
}

// tryPlaintextBlock parses a block fenced by triple single or double
// quotes. lineStart/indent
// describe the line this construct was attempted on (p.pos ==
// lineStart+indent on entry, from tryBlockConstruct's leading skipHSpace).
func (p *parser) tryPlaintextBlock(lineStart, indent int) (Node, bool) {
	save := p.pos
	var delim byte
	switch {
	case p.startsWith("'''"):
		delim = '\''
	case p.startsWith(`"""`):
		delim = '"'
	default:
		return nil, false
	}
	openStart := p.pos
	p.pos += 3
	restStart := p.pos
	nl := strings.IndexByte(p.src[restStart:], '\n')
	restLine := p.src[restStart:]
	if nl != -1 {
		restLine = p.src[restStart : restStart+nl]
	}
	if strings.TrimSpace(restLine) != "" {
		p.pos = save
		return nil, false
	}
	if nl == -1 {
		p.pos = len(p.src)
	} else {
		p.pos = restStart + nl + 1
	}
	contentStart := p.pos
	delimStr := string([]byte{delim, delim, delim})

	closeFound := false
	var closeLineStart, closeIndent, closeLineContentEnd int
	for !p.eof() {
		curLineStart := p.pos
		i := p.pos
		n := 0
		for i < len(p.src) && isSpace(p.src[i]) {
			i++
			n++
		}
		rest := p.src[i:]
		bodyEnd := strings.IndexByte(rest, '\n')
		body := rest
		if bodyEnd != -1 {
			body = rest[:bodyEnd]
		}
		if n <= indent && strings.HasPrefix(body, delimStr) && strings.TrimSpace(body[3:]) == "" {
			closeFound = true
			closeLineStart = curLineStart
			closeIndent = n
			if bodyEnd == -1 {
				closeLineContentEnd = len(p.src)
			} else {
				closeLineContentEnd = i + bodyEnd + 1
			}
			break
		}
		adv := strings.IndexByte(p.src[p.pos:], '\n')
		if adv == -1 {
			p.pos = len(p.src)
			break
		}
		p.pos += adv + 1
	}

	var contentEnd int
	if closeFound {
		contentEnd = closeLineStart
		p.pos = closeLineContentEnd
	} else {
		contentEnd = p.pos
		p.addError(newParseError(spanFrom(openStart, p.pos), "", "closing '"+delimStr+"'"))
	}
	raw := strings.TrimSuffix(p.src[contentStart:contentEnd], "\n")
	stripIndent := indent
	if closeFound {
		stripIndent = closeIndent
	}
	stripped := stripIndentFromLines(raw, stripIndent)

	var content string
	if delim == '"' {
		decoded, errs := decodeEscapes(stripped, contentStart)
		content = decoded
		p.errors = append(p.errors, errs...)
	} else {
		content = stripped
	}
	return &Text{SpanV: spanFrom(lineStart, p.pos), Kind_: TextMultiline, Content: content}, true
}

// tryCodeBlock parses a ``` delimited block, wrapping a verbatim text
// child in a code element inside a pre-like container element, the way a
// fenced code block becomes
// `<pre><code>...</code></pre>`. A single bare word trailing the opening
// fence is read as a language tag and attached as a class on the inner
// code element, so chroma-based highlighting has something to key off of.
func (p *parser) tryCodeBlock(lineStart, indent int) (Node, bool) {
	if !p.startsWith("```") {
		return nil, false
	}
	openStart := p.pos
	p.pos += 3
	restStart := p.pos
	nl := strings.IndexByte(p.src[restStart:], '\n')
	restLine := p.src[restStart:]
	if nl != -1 {
		restLine = p.src[restStart : restStart+nl]
	}
	lang := strings.TrimSpace(restLine)
	if nl == -1 {
		p.pos = len(p.src)
	} else {
		p.pos = restStart + nl + 1
	}
	contentStart := p.pos

	closeFound := false
	var closeLineStart, closeIndent, closeLineContentEnd int
	for !p.eof() {
		curLineStart := p.pos
		i := p.pos
		n := 0
		for i < len(p.src) && isSpace(p.src[i]) {
			i++
			n++
		}
		rest := p.src[i:]
		bodyEnd := strings.IndexByte(rest, '\n')
		body := rest
		if bodyEnd != -1 {
			body = rest[:bodyEnd]
		}
		if n <= indent && strings.HasPrefix(body, "```") && strings.TrimSpace(body[3:]) == "" {
			closeFound = true
			closeLineStart = curLineStart
			closeIndent = n
			if bodyEnd == -1 {
				closeLineContentEnd = len(p.src)
			} else {
				closeLineContentEnd = i + bodyEnd + 1
			}
			break
		}
		adv := strings.IndexByte(p.src[p.pos:], '\n')
		if adv == -1 {
			p.pos = len(p.src)
			break
		}
		p.pos += adv + 1
	}

	var contentEnd int
	if closeFound {
		contentEnd = closeLineStart
		p.pos = closeLineContentEnd
	} else {
		contentEnd = p.pos
		p.addError(newParseError(spanFrom(openStart, p.pos), "", "closing '```'"))
	}
	raw := strings.TrimSuffix(p.src[contentStart:contentEnd], "\n")
	stripIndent := indent
	if closeFound {
		stripIndent = closeIndent
	}
	stripped := stripIndentFromLines(raw, stripIndent)

	codeSel := Selector{}
	if lang != "" {
		codeSel.Classes = []string{lang}
	}
	verbatim := &Text{SpanV: spanFrom(contentStart, contentEnd), Kind_: TextVerbatim, Content: stripped}
	code := &Element{
		SpanV: spanFrom(contentStart, contentEnd), ContentSpan: spanFrom(contentStart, contentEnd),
		FormKind: FormBlock, Format: formatCode, Sel: codeSel, Children: []Node{verbatim},
	}
	container := &Element{
		SpanV: spanFrom(lineStart, p.pos), ContentSpan: spanFrom(contentStart, contentEnd),
		FormKind: FormBlock, Format: formatCodeBlockContainer, Children: []Node{code},
	}
	return container, true
}

var interpPairs = []struct{ open, close string }{
	{"{{", "}}"},
	{"{%", "%}"},
	{"<%", "%>"},
	{"<?", "?>"},
}

// tryInterpolation parses one of the template passthrough delimiter
// pairs. Content is kept byte-for-byte; no evaluation or nested
// interpolation is attempted.
func (p *parser) tryInterpolation() (Node, bool) {
	for _, ic := range interpPairs {
		if !p.startsWith(ic.open) {
			continue
		}
		start := p.pos
		p.pos += len(ic.open)
		idx := strings.Index(p.src[p.pos:], ic.close)
		var contentEnd int
		if idx == -1 {
			contentEnd = len(p.src)
			p.addError(newParseError(spanFrom(start, len(p.src)), "", "closing '"+ic.close+"'"))
			content := p.src[p.pos:contentEnd]
			p.pos = len(p.src)
			return &Interpolation{SpanV: spanFrom(start, p.pos), Open: ic.open, Close: ic.close, Content: content}, true
		}
		contentEnd = p.pos + idx
		content := p.src[p.pos:contentEnd]
		p.pos = contentEnd + len(ic.close)
		return &Interpolation{SpanV: spanFrom(start, p.pos), Open: ic.open, Close: ic.close, Content: content}, true
	}
	return nil, false
}

var formatDelims = []struct {
	open, close string
	kind        formatKind
	verbatim    bool
}{
	{"<#", "#>", formatStrong, false},
	{"</", "/>", formatEmphasis, false},
	{"<_", "_>", formatUnderline, false},
	{"<~", "~>", formatStrike, false},
	{`<"`, `">`, formatQuote, false},
	{"<`", "`>", formatCode, true},
}

// tryInlineFormatting parses one of the six inline-formatting shorthands.
// The code shorthand is verbatim, like a verbatim segment; the rest
// recurse into parseInlineContent so they can nest text, interpolation and
// other formatting.
func (p *parser) tryInlineFormatting() (Node, bool) {
	for _, d := range formatDelims {
		if !p.startsWith(d.open) {
			continue
		}
		start := p.pos
		p.pos += len(d.open)
		if d.verbatim {
			contentStart := p.pos
			idx := strings.Index(p.src[p.pos:], d.close)
			var contentEnd int
			if idx == -1 {
				contentEnd = len(p.src)
				p.addError(newParseError(spanFrom(start, len(p.src)), "", "closing '"+d.close+"'"))
				p.pos = len(p.src)
			} else {
				contentEnd = p.pos + idx
				p.pos = contentEnd + len(d.close)
			}
			content := p.src[contentStart:contentEnd]
			verbatim := &Text{SpanV: spanFrom(contentStart, contentEnd), Kind_: TextVerbatim, Content: content}
			return &Element{
				SpanV: spanFrom(start, p.pos), ContentSpan: spanFrom(contentStart, contentEnd),
				FormKind: FormInline, Format: d.kind, Children: []Node{verbatim},
			}, true
		}
		items, span := p.parseInlineContent(stopCfg{stopLit: d.close})
		if !p.consumeLit(d.close) {
			p.addError(newParseError(spanFrom(p.pos, p.pos), "", "closing '"+d.close+"'"))
		}
		return &Element{
			SpanV: spanFrom(start, p.pos), ContentSpan: span,
			FormKind: FormInline, Format: d.kind, Children: items,
		}, true
	}
	return nil, false
}

// tryInlineElement parses `<( Node )>`:
// any single node — selector-headed element, comment, verbatim segment,
// plaintext/code block, or failing all of those, inline content read as a
// one-off paragraph — wrapped to be usable mid-line.
func (p *parser) tryInlineElement() (Node, bool) {
	if !p.startsWith("<(") {
		return nil, false
	}
	start := p.pos
	p.pos += 2
	if node, ok := p.tryBlockConstruct(); ok {
		p.skipHSpace()
		if !p.consumeLit(")>") {
			p.addError(newParseError(spanFrom(p.pos, p.pos), "", "closing ')>'"))
		}
		return &Element{
			SpanV: spanFrom(start, p.pos), ContentSpan: node.Span(),
			FormKind: FormInline, Children: []Node{node},
		}, true
	}
	contentStart := p.pos
	items, _ := p.parseInlineContent(stopCfg{stopLit: ")>"})
	contentEnd := p.pos
	if !p.consumeLit(")>") {
		p.addError(newParseError(spanFrom(p.pos, p.pos), "", "closing ')>'"))
	}
	return &Element{
		SpanV: spanFrom(start, p.pos), ContentSpan: spanFrom(contentStart, contentEnd),
		FormKind: FormInline, Children: items,
	}, true
}
