package param

import (
	"mime"
	"strings"
)

const (
	// Charset is the name of the charset parameter used with the Content-type
	// header.
	Charset = "charset"

	// Boundary is the name of the boundary parameter used with the
	// Content-type header.
	Boundary = "boundary"

	// Filename is the name of the filename parameter used with the
	// Content-disposition header.
	Filename = "filename"
)

// Value is a parsed parameterized header field body, the shape shared by the
// Content-type and Content-disposition headers. A Value is immutable. To
// change one, build a replacement with Modify().
type Value struct {
	v  string
	ps map[string]string
}

// Parse parses a header field body into a Value, or returns the parse error.
// Parameter decoding follows RFC 2231, so percent-encoded values and
// continuation segments come back as plain decoded strings.
func Parse(v string) (*Value, error) {
	mt, ps, err := mime.ParseMediaType(v)
	if err != nil {
		return nil, err
	}

	return &Value{mt, ps}, nil
}

// New creates a Value from a primary value and optional parameter maps. When
// multiple maps are given, later maps win for any repeated key.
func New(v string, pss ...map[string]string) *Value {
	ps := make(map[string]string)
	for _, p := range pss {
		for k, pv := range p {
			ps[k] = pv
		}
	}
	return &Value{v, ps}
}

// Modifier is one change to apply while building a Value with Modify().
type Modifier func(*Value)

// Change is a Modifier that replaces the primary value.
func Change(value string) Modifier {
	return func(pv *Value) {
		pv.v = value
	}
}

// Set is a Modifier that sets the named parameter.
func Set(name, value string) Modifier {
	return func(pv *Value) {
		pv.ps[name] = value
	}
}

// Delete is a Modifier that removes the named parameter.
func Delete(name string) Modifier {
	return func(pv *Value) {
		delete(pv.ps, name)
	}
}

// Modify clones a Value, applies the given changes in order, and returns the
// result:
//
//	v, _ := param.Parse("multipart/mixed; boundary=abc123; charset=latin1")
//	nv := param.Modify(v, param.Change("multipart/alternative"), param.Set("charset", "utf-8"))
func Modify(pv *Value, changes ...Modifier) *Value {
	out := pv.Clone()
	for _, change := range changes {
		change(out)
	}
	return out
}

// Value returns the primary value, the part before the first semi-colon.
func (pv *Value) Value() string {
	return pv.v
}

// Presentation is a synonym for Value() for use with the Content-disposition
// header, where the primary value is "inline" or "attachment".
func (pv *Value) Presentation() string {
	return pv.v
}

// Disposition is a synonym for Value() for use with the Content-disposition
// header.
func (pv *Value) Disposition() string {
	return pv.v
}

// MediaType is a synonym for Value() for use with the Content-type header,
// where the primary value is something like "text/html" or "multipart/mixed".
func (pv *Value) MediaType() string {
	return pv.v
}

// Type returns the part of the MediaType() before the slash, or an empty
// string when there is no slash. For "image/jpeg" that is "image".
func (pv *Value) Type() string {
	if ix := strings.IndexRune(pv.v, '/'); ix >= 0 {
		return pv.v[:ix]
	}
	return ""
}

// Subtype returns the part of the MediaType() after the slash, or an empty
// string when there is no slash. For "image/jpeg" that is "jpeg".
func (pv *Value) Subtype() string {
	if ix := strings.IndexRune(pv.v, '/'); ix >= 0 {
		return pv.v[ix+1:]
	}
	return ""
}

// Parameters returns the parameters as a map. Treat the returned map as
// read-only. If you need to change it, copy it first.
func (pv *Value) Parameters() map[string]string {
	return pv.ps
}

// Parameter returns the value of the named parameter.
func (pv *Value) Parameter(k string) string {
	return pv.ps[k]
}

// Filename returns the "filename" parameter, for use with the
// Content-disposition header.
func (pv *Value) Filename() string {
	return pv.ps[Filename]
}

// Charset returns the "charset" parameter, for use with the Content-type
// header.
func (pv *Value) Charset() string {
	return pv.ps[Charset]
}

// Boundary returns the "boundary" parameter, for use with the Content-type
// header.
func (pv *Value) Boundary() string {
	return pv.ps[Boundary]
}

// String serializes the Value, primary value first and parameters following in
// alphabetical order. Parameter values that need quoting are quoted and
// non-ASCII values are encoded per RFC 2231, so the output is safe to place
// directly in a header field.
func (pv *Value) String() string {
	return mime.FormatMediaType(pv.v, pv.ps)
}

// Bytes returns the same as String, but as bytes.
func (pv *Value) Bytes() []byte {
	return []byte(pv.String())
}

// Clone returns a deep copy of the Value.
func (pv *Value) Clone() *Value {
	out := Value{v: pv.v, ps: make(map[string]string, len(pv.ps))}
	for k, v := range pv.ps {
		out.ps[k] = v
	}
	return &out
}
