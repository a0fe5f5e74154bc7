package message

import (
	"fmt"
	"io"

	"github.com/sideeffffect/emil/message/header"
)

// Part is one node of a message tree, either a branch or a leaf.
//
// A branch Part has sub-parts: IsMultipart() returns true, GetParts() is
// available, and GetReader() must not be called.
//
// A leaf Part has content: IsMultipart() returns false, GetReader() returns
// the content, and GetParts() must not be called.
//
// Note that a leaf can still hold bytes that happen to be a serialized
// multipart message. If the parts were never split apart, the content is just
// bytes, and that is perfectly legal.
type Part interface {
	io.WriterTo

	// IsMultipart reports whether this Part is a branch with nested parts.
	// Call GetParts() only when this returns true and GetReader() only when
	// it returns false.
	//
	// Skipping this check and calling GetReader() or GetParts() directly is
	// fine as long as you handle the nil they return on the wrong kind of
	// part.
	IsMultipart() bool

	// IsEncoded reports whether the io.Reader from GetReader() returns the
	// original wire bytes. When false, the bytes have had any
	// Content-transfer-encoding decoded. The flag says nothing about whether
	// decoding actually changed anything: a 7bit encoding passes bytes
	// through untouched either way.
	//
	// This always returns false when IsMultipart() returns true, since
	// transfer encodings do not apply to parts with sub-parts.
	IsEncoded() bool

	// GetHeader returns the header of this part. Available on every Part.
	GetHeader() *header.Header

	// GetReader returns the content of a leaf part. It returns nil when
	// IsMultipart() returns true.
	GetReader() io.Reader

	// GetParts returns the sub-parts of a branch part. It returns nil when
	// IsMultipart() returns false.
	GetParts() []Part
}

// Generic is an alias for Part that conveys two additional semantics:
//
// 1. The message is not necessarily a sub-part of some other message.
//
// 2. The value is guaranteed to be either *Opaque or *Multipart, so it is
// safe to type-switch over just those two.
type Generic = Part

// Multipart is a multipart MIME message. The Content-type of one of these
// should always be some multipart/* type.
type Multipart struct {
	// Header is the header for the message.
	header.Header

	// prefix and suffix preserve the bytes before the first boundary and
	// after the last one, so a parsed message can round-trip byte for byte.
	//
	// Special semantics:
	//
	// * A nil prefix means the message had no initial boundary at all, and
	// none is written on output. A non-empty prefix MUST end in a newline or
	// the output will be malformed.
	//
	// * A nil suffix means the message had no final boundary, and none is
	// written on output. A non-empty suffix MUST start with a newline or the
	// output will be malformed.
	prefix, suffix []byte

	// parts holds this layer's parts.
	parts []Part
}

// WriteTo writes the header, boundaries, and parts to the destination
// io.Writer. It fails with an error when the header has no Content-type
// boundary parameter set, or on an IO error.
//
// This may only be called once, since it consumes the io.Reader of every
// Opaque nested within.
func (mm *Multipart) WriteTo(w io.Writer) (int64, error) {
	boundary, err := mm.GetBoundary()
	if err != nil {
		return 0, err
	}

	br := mm.Break()

	hn, err := mm.Header.WriteTo(w)
	if err != nil {
		return hn, err
	}

	n := hn

	pn, err := w.Write(mm.prefix)
	n += int64(pn)
	if err != nil {
		return n, err
	}

	if len(mm.parts) > 0 {
		hadContent := false
		for _, part := range mm.parts {
			if hadContent {
				bn, err := fmt.Fprint(w, br)
				n += int64(bn)
				if err != nil {
					return n, err
				}
			}

			bn, err := fmt.Fprintf(w, "--%s%s", boundary, br)
			n += int64(bn)
			if err != nil {
				return n, err
			}

			// a line break goes before the next boundary only if this part
			// wrote anything
			hadContent = part.IsMultipart() || part.GetReader() != nil

			pn, err := part.WriteTo(w)
			n += pn
			if err != nil {
				return n, err
			}
		}

		if mm.suffix != nil {
			bn, err := fmt.Fprintf(w, "%s--%s--", br, boundary)
			n += int64(bn)
			if err != nil {
				return n, err
			}
		}
	}

	sn, err := w.Write(mm.suffix)
	n += int64(sn)
	if err != nil {
		return n, err
	}

	return n, nil
}

// IsMultipart always returns true.
func (mm *Multipart) IsMultipart() bool {
	return true
}

// IsEncoded always returns false.
func (mm *Multipart) IsEncoded() bool {
	return false
}

// GetHeader returns the header for the message.
func (mm *Multipart) GetHeader() *header.Header {
	return &mm.Header
}

// GetReader always returns nil.
func (mm *Multipart) GetReader() io.Reader {
	return nil
}

// GetParts returns the sub-parts of this message, or nil if there are none.
func (mm *Multipart) GetParts() []Part {
	return mm.parts
}

// NewMultipart builds a Multipart from the given header and parts. When the
// header carries no boundary parameter, one is generated, since a multipart
// message cannot be written without one.
func NewMultipart(h *header.Header, parts ...Part) *Multipart {
	m := &Multipart{
		Header: *h,
		prefix: []byte{},
		suffix: []byte{},
		parts:  parts,
	}
	if _, err := m.GetBoundary(); err != nil {
		_ = m.SetBoundary(GenerateBoundary())
	}
	return m
}

// newMultipart builds a Multipart with the given media type and parts and a
// freshly generated boundary.
func newMultipart(mediaType string, parts ...Part) *Multipart {
	m := &Multipart{
		prefix: []byte{},
		suffix: []byte{},
		parts:  parts,
	}
	m.SetMediaType(mediaType)
	_ = m.SetBoundary(GenerateBoundary())
	return m
}

// MultipartAlternative returns a Multipart with a multipart/alternative
// Content-type, a generated boundary, and the given parts attached.
func MultipartAlternative(parts ...Part) *Multipart {
	return newMultipart("multipart/alternative", parts...)
}

// MultipartMixed returns a Multipart with a multipart/mixed Content-type, a
// generated boundary, and the given parts attached.
func MultipartMixed(parts ...Part) *Multipart {
	return newMultipart("multipart/mixed", parts...)
}

// MultipartRelated returns a Multipart with a multipart/related Content-type,
// a generated boundary, and the given parts attached. The first part is the
// root the related resources belong to.
func MultipartRelated(parts ...Part) *Multipart {
	return newMultipart("multipart/related", parts...)
}
