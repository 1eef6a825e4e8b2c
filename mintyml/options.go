package mintyml

// Options controls both the writer's output shape and,
// through FailFast, the parser's recovery behavior.
type Options struct {
	// XML renders XHTML5 instead of HTML5: void elements self-close and
	// Raw text is escaped rather than emitted byte-for-byte.
	XML bool

	// Indent turns on pretty-printing with this many spaces per nesting
	// level. Nil means "no pretty-printing": output is written compactly.
	Indent *int

	// CompletePage wraps the output in <html><head>...</head><body>...
	// </body></html> when the top level has no such structure already.
	CompletePage bool

	// SpecialTags overrides the element name used for the named inline
	// formatting shorthand or the fenced code container. A present key
	// whose value is nil means "unwrap": drop the wrapper and splice the
	// content in place.
	SpecialTags map[string]*string

	// Metadata emits mty:start/mty:end (and mty:content-start/-end where
	// available) attributes on every rendered element.
	Metadata bool

	// MetadataElements additionally wraps text atoms and comments in
	// mty:text/mty:comment elements. Setting this implies Metadata.
	MetadataElements bool

	// FailFast stops parsing at the first SyntaxError instead of
	// recovering and aggregating.
	FailFast bool
}

// DefaultOptions returns the defaults for every conversion option.
func DefaultOptions() Options {
	return Options{
		XML:              false,
		Indent:           nil,
		CompletePage:     false,
		SpecialTags:      nil,
		Metadata:         false,
		MetadataElements: false,
		FailFast:         false,
	}
}

// defaultSpecialTags are the built-in inline-formatting/code-container
// mappings before any Options.SpecialTags overrides are applied.
var defaultSpecialTags = map[string]string{
	"strong":             "strong",
	"emphasis":           "em",
	"underline":          "u",
	"strike":             "s",
	"quote":              "q",
	"code":               "code",
	"codeBlockContainer": "pre",
}

// resolveSpecialTag returns the element name to use for a formatting key,
// and ok=false when the mapping is "unwrap" (an explicit nil override).
func (o Options) resolveSpecialTag(key string) (tag string, ok bool) {
	if o.SpecialTags != nil {
		if v, present := o.SpecialTags[key]; present {
			if v == nil {
				return "", false
			}
			return *v, true
		}
	}
	return defaultSpecialTags[key], true
}

func (o Options) metadataEnabled() bool {
	return o.Metadata || o.MetadataElements
}
