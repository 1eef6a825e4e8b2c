package mintyml

import (
	"strings"
	"testing"
)

func TestCodeBlockWithKnownLanguageIsHighlighted(t *testing.T) {
	src := "```go\nfunc main() {}\n```"
	out, err := Convert(src, DefaultOptions())
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !strings.Contains(out, "<pre>") || !strings.Contains(out, "<code") {
		t.Fatalf("expected pre/code wrapping, got %q", out)
	}
	if !strings.Contains(out, "func") || !strings.Contains(out, "main") {
		t.Errorf("expected highlighted output to still contain the source tokens, got %q", out)
	}
}

func TestCodeBlockWithUnknownLanguageFallsBackToPlainText(t *testing.T) {
	src := "```not-a-real-language\nhello\n```"
	out, err := Convert(src, DefaultOptions())
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !strings.Contains(out, "hello") {
		t.Errorf("expected plain-text fallback to preserve content, got %q", out)
	}
}

func TestCodeBlockWithNoLanguageIsPlainText(t *testing.T) {
	src := "```\nplain text\n```"
	out, err := Convert(src, DefaultOptions())
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if out != "<pre><code>plain text</code></pre>" {
		t.Errorf("got %q", out)
	}
}
