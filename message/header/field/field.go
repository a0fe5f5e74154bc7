package field

import (
	"bytes"
	"fmt"
)

// Base holds the logical name and body of a header field. The body is kept as
// an opaque, already decoded string. It has no notion of folding or of the
// encoded wire form.
type Base struct {
	name string
	body string
}

// Name returns the field name.
func (f *Base) Name() string {
	return f.name
}

// SetName replaces the field name.
func (f *Base) SetName(name string) {
	f.name = name
}

// Body returns the field body as a decoded string.
func (f *Base) Body() string {
	return f.body
}

// SetBody replaces the field body.
func (f *Base) SetBody(body string) {
	f.body = body
}

// String returns the field as a one-line header field string. The body is
// passed through Encode, so any non-ASCII content comes out as MIME words.
func (f *Base) String() string {
	return fmt.Sprintf("%s: %s", f.name, Encode(f.body))
}

// Bytes returns the same as String, but as bytes.
func (f *Base) Bytes() []byte {
	return []byte(f.String())
}

// Field is the low-level representation of a single header field. Every Field
// holds a decoded name and body in the embedded Base. A Field that came from a
// parse also holds the original wire bytes in Raw, which is what makes
// byte-for-byte round-tripping of unmodified fields possible.
//
// Name() and Body() always read from Base. String() and Bytes() prefer Raw
// when it is set and fall back to Base. SetName() and SetBody() update Base
// and drop Raw, since the original bytes no longer describe the field. SetRaw()
// installs a replacement raw image without touching Base.
//
// Both Base and Raw are exported for the cases where something more surgical
// is needed.
type Field struct {
	Base
	*Raw
}

// New constructs a field from a name and decoded body. The new field has no
// raw image.
func New(name, body string) *Field {
	return &Field{Base{name, body}, nil}
}

// String returns Raw.String() when a raw image is present and Base.String()
// otherwise.
func (f *Field) String() string {
	if f.Raw != nil {
		return f.Raw.String()
	}
	return f.Base.String()
}

// Bytes returns Raw.Bytes() when a raw image is present and Base.Bytes()
// otherwise.
func (f *Field) Bytes() []byte {
	if f.Raw != nil {
		return f.Raw.Bytes()
	}
	return f.Base.Bytes()
}

// Name returns the decoded field name.
func (f *Field) Name() string {
	return f.Base.Name()
}

// Body returns the decoded field body.
func (f *Field) Body() string {
	return f.Base.Body()
}

// SetName replaces the field name and clears Raw.
func (f *Field) SetName(n string) {
	f.Raw = nil
	f.Base.SetName(n)
}

// SetBody replaces the field body and clears Raw.
func (f *Field) SetBody(b string) {
	f.Raw = nil
	f.Base.SetBody(b)
}

// SetRaw replaces the raw image of the field. The logical name and body in
// Base are left alone, so the two views may disagree after calling this. That
// is allowed: Raw wins for output, Base wins for inspection.
func (f *Field) SetRaw(o []byte) {
	ix := bytes.IndexRune(o, ':')
	if ix < 0 {
		ix = len(o)
	}
	f.Raw = &Raw{o, ix}
}
