package mintyml

import (
	"bytes"
	"fmt"
)

// ByteRenderer is a small variadic output buffer: Render/Renderln accept a mix of
// strings, byte slices and other values and concatenate them, so callers
// building up markup don't have to sprinkle fmt.Sprintf everywhere.
type ByteRenderer struct {
	buf bytes.Buffer
}

// Render appends each argument's bytes to the buffer.
func (r *ByteRenderer) Render(args ...any) *ByteRenderer {
	for _, a := range args {
		switch v := a.(type) {
		case string:
			r.buf.WriteString(v)
		case []byte:
			r.buf.Write(v)
		case byte:
			r.buf.WriteByte(v)
		case rune:
			r.buf.WriteRune(v)
		case int:
			fmt.Fprintf(&r.buf, "%d", v)
		default:
			fmt.Fprintf(&r.buf, "%v", v)
		}
	}
	return r
}

// Renderln is Render followed by a trailing newline.
func (r *ByteRenderer) Renderln(args ...any) *ByteRenderer {
	r.Render(args...)
	r.buf.WriteByte('\n')
	return r
}

// Bytes returns the accumulated buffer. The returned slice aliases the
// renderer's internal storage and must not be retained across further
// writes.
func (r *ByteRenderer) Bytes() []byte { return r.buf.Bytes() }

// CloneBytes returns a copy of the accumulated buffer, safe to retain.
func (r *ByteRenderer) CloneBytes() []byte { return bytes.Clone(r.buf.Bytes()) }

// String returns the accumulated buffer as a string.
func (r *ByteRenderer) String() string { return r.buf.String() }

// Len reports the number of bytes written so far.
func (r *ByteRenderer) Len() int { return r.buf.Len() }
