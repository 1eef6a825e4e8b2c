package mintyml

import (
	"bytes"

	"github.com/alecthomas/chroma/v2"
	hlhtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// highlightStyle is the chroma style fenced code blocks render with.
const highlightStyle = "github"

// highlightCode renders a fenced code block's verbatim content as
// chroma-tokenized HTML: a language-named class on the selector picks the
// lexer, and a lexer miss or tokenize/format failure falls back to
// ok=false so the
// caller renders the content as plain escaped text instead.
func highlightCode(e *Element) (string, bool) {
	if len(e.Sel.Classes) == 0 || len(e.Children) != 1 {
		return "", false
	}
	text, ok := e.Children[0].(*Text)
	if !ok || text.Kind_ != TextVerbatim {
		return "", false
	}

	lexer := lexers.Get(e.Sel.Classes[0])
	if lexer == nil {
		return "", false
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(highlightStyle)
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, text.Content)
	if err != nil {
		return "", false
	}

	formatter := hlhtml.New(hlhtml.Standalone(false), hlhtml.WithClasses(false), hlhtml.PreventSurroundingPre(true))
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return "", false
	}
	return buf.String(), true
}
