package header

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/sideeffffect/emil/message/header/field"
)

var (
	// ErrIndexOutOfRange is returned by field accessors when the given index
	// is too large or too small for the fields present.
	ErrIndexOutOfRange = errors.New("header field index is out of range")
)

// Base is the low-level storage for a header: an ordered list of fields, the
// line break in use, and the fold encoding to apply on output. Field names are
// matched case-insensitively everywhere. Everything that operates on whole
// fields lives here; interpreting field bodies is Header's job.
type Base struct {
	lbr    Break
	vf     *field.FoldEncoding
	fields []*field.Field
}

// initBase initializes the line break and field list lazily, so the zero
// value is usable.
func (h *Base) initBase() {
	if h.lbr == "" {
		h.lbr = LF
	}
	if h.fields == nil {
		h.fields = make([]*field.Field, 0, 10)
	}
}

// Clone returns a deep copy of the Base.
func (h *Base) Clone() *Base {
	fs := make([]*field.Field, len(h.fields))
	for i, f := range h.fields {
		nf := *f
		fs[i] = &nf
	}
	return &Base{h.lbr, h.vf, fs}
}

// FoldEncoding returns the fold encoding this header renders with.
func (h *Base) FoldEncoding() *field.FoldEncoding {
	if h.vf == nil {
		h.vf = field.DefaultFoldEncoding
	}
	return h.vf
}

// SetFoldEncoding changes the fold encoding this header renders with.
func (h *Base) SetFoldEncoding(vf *field.FoldEncoding) {
	h.vf = vf
}

// Break returns the line break used to separate header fields and terminate
// the header.
func (h *Base) Break() Break {
	if h.lbr == "" {
		h.lbr = LF
	}
	return h.lbr
}

// SetBreak changes the line break to use with this header.
func (h *Base) SetBreak(lbr Break) {
	h.lbr = lbr
}

// Len returns the number of fields in the header.
func (h *Base) Len() int {
	return len(h.fields)
}

// GetField returns the nth field or nil if there is no such field.
func (h *Base) GetField(n int) *field.Field {
	if n < 0 || n >= len(h.fields) {
		return nil
	}
	return h.fields[n]
}

// GetFieldNamed returns the nth (0-indexed) field with the given name or nil
// if there is no such field.
func (h *Base) GetFieldNamed(name string, n int) *field.Field {
	for _, f := range h.fields {
		if strings.EqualFold(f.Name(), name) {
			if n == 0 {
				return f
			}
			n--
		}
	}
	return nil
}

// GetAllFieldsNamed returns all the fields with the given name in header
// order.
func (h *Base) GetAllFieldsNamed(name string) []*field.Field {
	fs := make([]*field.Field, 0, 10)
	for _, f := range h.fields {
		if strings.EqualFold(f.Name(), name) {
			fs = append(fs, f)
		}
	}
	return fs
}

// GetIndexesNamed returns the indexes of all fields with the given name in
// header order.
func (h *Base) GetIndexesNamed(name string) []int {
	is := make([]int, 0, 10)
	for i, f := range h.fields {
		if strings.EqualFold(f.Name(), name) {
			is = append(is, i)
		}
	}
	return is
}

// ListFields returns all the fields in the header. The returned slice is a
// copy, but the fields themselves are not.
func (h *Base) ListFields() []*field.Field {
	fs := make([]*field.Field, len(h.fields))
	copy(fs, h.fields)
	return fs
}

// InsertBeforeField inserts a new field with the given name and body at index
// n. Out of range indexes are clamped, so n <= 0 prepends and n >= Len()
// appends.
func (h *Base) InsertBeforeField(
	n int,
	name,
	body string,
) {
	h.initBase()

	if n < 0 {
		n = 0
	}
	if n > len(h.fields) {
		n = len(h.fields)
	}

	f := field.New(name, body)

	h.fields = append(h.fields, nil)
	copy(h.fields[n+1:], h.fields[n:])
	h.fields[n] = f
}

// ClearFields removes all fields from the header.
func (h *Base) ClearFields() {
	h.initBase()
	h.fields = h.fields[:0]
}

// DeleteField removes the nth field from the header or returns
// ErrIndexOutOfRange.
func (h *Base) DeleteField(n int) error {
	h.initBase()

	if n < 0 || n >= len(h.fields) {
		return ErrIndexOutOfRange
	}

	copy(h.fields[n:], h.fields[n+1:])
	h.fields = h.fields[:len(h.fields)-1]

	return nil
}

// WriteTo writes the header to the given io.Writer, each field folded per the
// configured FoldEncoding, followed by the blank line that terminates a
// header. It returns the number of bytes written and the first write error, if
// any.
func (h *Base) WriteTo(w io.Writer) (int64, error) {
	vf := h.FoldEncoding()
	lb := h.Break().Bytes()

	var total int64
	for _, f := range h.fields {
		n, err := vf.Fold(w, f.Bytes(), lb)
		total += n
		if err != nil {
			return total, err
		}
	}

	n, err := w.Write(lb)
	total += int64(n)

	return total, err
}

// Bytes returns the rendered header as a slice of bytes.
func (h *Base) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = h.WriteTo(&buf)
	return buf.Bytes()
}

// String returns the rendered header as a string.
func (h *Base) String() string {
	return string(h.Bytes())
}
