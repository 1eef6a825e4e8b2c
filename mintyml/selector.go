package mintyml

func isNameCont(b byte) bool {
	return isTagNameCont(b) || b == '_'
}

func atSelectorStart(b byte) bool {
	return isTagNameStart(b) || b == '*' || b == '.' || b == '#' || b == '['
}

// trySelector parses one selector token: an optional tag name or '*',
// followed by any number of .class/#id/[attr] suffixes. It reports
// ok=false only when nothing at all could be read.
func (p *parser) trySelector() (Selector, bool) {
	if p.eof() || !atSelectorStart(p.peek()) {
		return Selector{}, false
	}
	var sel Selector
	consumedAny := false
	switch {
	case p.peek() == '*':
		sel.TagName = "*"
		p.pos++
		consumedAny = true
	case isTagNameStart(p.peek()):
		start := p.pos
		p.pos++
		for !p.eof() && isTagNameCont(p.peek()) {
			p.pos++
		}
		sel.TagName = p.src[start:p.pos]
		consumedAny = true
	}
loop:
	for !p.eof() {
		switch p.peek() {
		case '.':
			mark := p.pos
			p.pos++
			start := p.pos
			for !p.eof() && isNameCont(p.peek()) {
				p.pos++
			}
			if p.pos == start {
				// Not actually a class selector (e.g. a sentence-ending
				// period): leave the '.' unconsumed as ordinary text and
				// stop here, rather than reporting a spurious error.
				p.pos = mark
				break loop
			}
			sel.Classes = append(sel.Classes, p.src[start:p.pos])
			consumedAny = true
		case '#':
			mark := p.pos
			p.pos++
			start := p.pos
			for !p.eof() && isNameCont(p.peek()) {
				p.pos++
			}
			if p.pos == start {
				p.pos = mark
				break loop
			}
			sel.ID = p.src[start:p.pos]
			consumedAny = true
		case '[':
			mark := p.pos
			errsBefore := len(p.errors)
			stoppedBefore := p.stopped
			p.pos++
			attrs, ok := p.parseAttrList()
			if !ok {
				p.errors = p.errors[:errsBefore]
				p.stopped = stoppedBefore
				p.pos = mark
				break loop
			}
			sel.Attributes = append(sel.Attributes, attrs...)
			consumedAny = true
		default:
			break loop
		}
	}
	if !consumedAny {
		return Selector{}, false
	}
	return sel, true
}

// parseAttrList parses the inside of `[...]`, having already consumed the
// opening bracket, returning once the matching ']' is consumed.
func (p *parser) parseAttrList() ([]Attr, bool) {
	var attrs []Attr
	for {
		p.skipHSpace()
		if p.eof() {
			p.addError(newParseError(spanFrom(p.pos, p.pos), "", "closing ']'"))
			return attrs, false
		}
		if p.peek() == ']' {
			p.pos++
			return attrs, true
		}
		start := p.pos
		for !p.eof() && isNameCont(p.peek()) {
			p.pos++
		}
		if p.pos == start {
			p.addError(newParseError(spanFrom(p.pos, p.pos), string(p.peek()), "attribute name", "closing ']'"))
			return attrs, false
		}
		name := p.src[start:p.pos]
		var value *string
		if !p.eof() && p.peek() == '=' {
			p.pos++
			v, ok := p.parseAttrValue()
			if !ok {
				return attrs, false
			}
			value = &v
		}
		attrs = append(attrs, Attr{Name: name, Value: value})
	}
}

// parseAttrValue parses an attribute value: single- or double-quoted (with
// escape decoding) or a bare run up to whitespace/']'.
func (p *parser) parseAttrValue() (string, bool) {
	if !p.eof() && (p.peek() == '\'' || p.peek() == '"') {
		q := p.peek()
		p.pos++
		start := p.pos
		for !p.eof() && p.peek() != q {
			if p.peek() == '\\' && p.pos+1 < len(p.src) {
				p.pos++
			}
			p.pos++
		}
		if p.eof() {
			p.addError(newParseError(spanFrom(start, p.pos), "", "closing quote"))
			return p.src[start:p.pos], false
		}
		raw := p.src[start:p.pos]
		p.pos++
		decoded, errs := decodeEscapes(raw, start)
		p.errors = append(p.errors, errs...)
		return decoded, true
	}
	start := p.pos
	for !p.eof() && p.peek() != ' ' && p.peek() != '\t' && p.peek() != ']' {
		p.pos++
	}
	return p.src[start:p.pos], true
}

// trySelectorForm parses one selector and its body suffix: `{` for Block,
// `>{` for LineBlock, `>` followed by a single node or end-of-line for
// Line. A chained selector (`a>b>{...}`) is
// resolved by recursing: after a bare `>`, if what follows parses as
// another selector that itself has a body, the outer selector wraps that
// nested element as a synthetic Line form. If the nested attempt finds no
// body, it backs out and this call treats the `>` as its own Line suffix
// instead, so "h1> Foo" parses
// as a Line h1 with text body "Foo" rather than misreading "Foo" as a
// second, bodyless chain link.
// On failure to find any body at all (plain "selector" with nothing
// after), it records a "selector without body" error and backs out
// entirely, letting the caller fall back to paragraph text.
func (p *parser) trySelectorForm(lineStart int) (Node, bool) {
	save := p.pos
	sel, ok := p.trySelector()
	if !ok {
		// An empty selector ("no tag/id/class/attrs written") is itself
		// valid wherever a body suffix follows immediately: "> text" and
		// "{ ... }" both mean "infer everything about this element". An
		// interpolation opener is not one of those: "{{" and "{%" stay
		// paragraph text for the passthrough production to capture.
		if !p.eof() && (p.peek() == '>' || p.peek() == '{') &&
			!p.startsWith("{{") && !p.startsWith("{%") {
			sel = Selector{}
		} else {
			p.pos = save
			return nil, false
		}
	}

	p.skipHSpace()
	switch {
	case !p.eof() && p.peek() == '{':
		p.pos++
		contentStart := p.pos
		children, _ := p.parseBlockNodes(true, true)
		end := p.pos
		return &Element{SpanV: spanFrom(lineStart, end), ContentSpan: spanFrom(contentStart, end),
			FormKind: FormBlock, Sel: sel, Children: children}, true
	case !p.eof() && p.peek() == '>':
		p.pos++
		p.skipHSpace()
		if !p.eof() && p.peek() == '{' {
			p.pos++
			contentStart := p.pos
			children, _ := p.parseBlockNodes(true, false)
			end := p.pos
			return &Element{SpanV: spanFrom(lineStart, end), ContentSpan: spanFrom(contentStart, end),
				FormKind: FormLineBlock, Sel: sel, Children: children}, true
		}
		if !p.eof() && atSelectorStart(p.peek()) {
			nestedStart := p.pos
			errsBefore := len(p.errors)
			stoppedBefore := p.stopped
			if nested, ok := p.trySelectorForm(nestedStart); ok {
				end := nested.Span().End
				return &Element{SpanV: spanFrom(lineStart, end), ContentSpan: nested.Span(),
					FormKind: FormLine, Sel: sel, Children: []Node{nested}}, true
			}
			// The "selector without body" error trySelectorForm records on
			// failure was only a disambiguation probe: this is ordinary
			// Line-body text, not a malformed nested selector.
			p.errors = p.errors[:errsBefore]
			p.stopped = stoppedBefore
			p.pos = nestedStart
		}
		items, bodySpan := p.parseInlineContent(stopCfg{singleLine: true, braceTerminated: p.braceDepth > 0})
		trimParagraphEdges(items)
		end := p.pos
		return &Element{SpanV: spanFrom(lineStart, end), ContentSpan: bodySpan,
			FormKind: FormLine, Sel: sel, Children: items}, true
	default:
		// A bare tag name with no id/class/attribute/wildcard and no body
		// is indistinguishable from an ordinary word starting a paragraph
		// (e.g. "More info."), so it silently falls back to text. A
		// selector with explicit syntax and no body is almost certainly a
		// mistake, so that case is worth reporting.
		if sel.ID != "" || len(sel.Classes) > 0 || len(sel.Attributes) > 0 || sel.TagName == "*" {
			p.addError(newParseError(spanFrom(lineStart, p.pos), "", "'{'", "'>'"))
		}
		p.pos = save
		return nil, false
	}
}
