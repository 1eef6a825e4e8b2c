package mintyml

// Convert compiles MinTyML source to HTML (or XHTML when opts.XML): on
// success it returns the rendered string; on any recoverable parse error
// it returns the aggregated *Error alongside whatever output could still
// be produced.
func Convert(source string, opts Options) (string, error) {
	nodes, syntaxErrors := Parse(source, opts)
	if len(syntaxErrors) > 0 && opts.FailFast {
		return "", newError(syntaxErrors)
	}
	resolved := Infer(nodes, opts)
	output := Render(resolved, opts)
	if len(syntaxErrors) > 0 {
		return output, newError(syntaxErrors)
	}
	return output, nil
}

// ConvertForgiving always attempts to produce output, even under
// fail_fast, returning both the partial output and the accumulated
// error so a caller can show the reader something while still
// surfacing what went wrong.
func ConvertForgiving(source string, opts Options) (*string, error) {
	nodes, syntaxErrors := Parse(source, opts)
	resolved := Infer(nodes, opts)
	output := Render(resolved, opts)
	if len(syntaxErrors) > 0 {
		return &output, newError(syntaxErrors)
	}
	return &output, nil
}
