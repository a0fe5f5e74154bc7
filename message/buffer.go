package message

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/sideeffffect/emil/message/header"
)

const (
	// DefaultMultipartContentType is the Content-type given to a multipart
	// message when no explicit Content-type header has been set.
	DefaultMultipartContentType = "multipart/mixed"
)

// BufferMode describes which way a Buffer has been used so far.
type BufferMode int

const (
	// ModeUnset indicates that the Buffer has not been modified yet.
	ModeUnset BufferMode = iota

	// ModeSingle indicates that the Buffer has been used as an io.Writer.
	ModeSingle

	// ModeMultipart indicates that the Buffer has had parts added to it.
	ModeMultipart
)

var (
	// ErrPartsBuffer is returned by Write() when called after Add().
	ErrPartsBuffer = errors.New("message buffer is in parts mode")

	// ErrOpaqueBuffer is returned by Add() when called after Write().
	ErrOpaqueBuffer = errors.New("message buffer is in opaque mode")

	// ErrModeUnset is returned by Opaque() and Multipart() when nothing has
	// been written to the buffer yet.
	ErrModeUnset = errors.New("no message has been built")

	// ErrParsesAsNotMultipart is returned by Multipart() when the Buffer is
	// in ModeSingle and the written bytes do not parse as a multipart
	// message.
	ErrParsesAsNotMultipart = errors.New("cannot parse non-multipart message as multipart")
)

// Buffer constructs email messages. It operates in one of two modes,
// depending on how you choose to treat the message under construction.
//
// * Opaque mode. Using the Buffer as an io.Writer treats the message as a
// flat collection of bytes.
//
// * Multipart mode. Using the Buffer to collect parts, via Add(), treats the
// message as a collection of sub-parts.
//
// The two modes are exclusive. A Buffer written to first panics with
// ErrOpaqueBuffer when parts are added, and a Buffer holding parts panics
// with ErrPartsBuffer when written to. Check the mode with Mode().
//
// Whichever mode was used, finish with either Opaque() or Multipart() to get
// the constructed message. Each finisher has caveats, see their
// documentation.
type Buffer struct {
	header.Header
	parts []Part
	buf   *bytes.Buffer
}

// Mode indicates how the Buffer has been used so far: ModeUnset before any
// modification, ModeSingle once it has been written to, and ModeMultipart
// once parts have been added.
func (b *Buffer) Mode() BufferMode {
	if b.parts != nil {
		return ModeMultipart
	} else if b.buf != nil {
		return ModeSingle
	}
	return ModeUnset
}

// SetMultipart sets the Mode of the buffer to ModeMultipart without adding
// any parts yet. This is useful during message transformation and for
// pre-allocating the internal parts slice to the given capacity. It panics if
// the mode is already ModeSingle.
func (b *Buffer) SetMultipart(capacity int) {
	err := b.initParts(capacity)
	if err != nil {
		panic(err)
	}
}

// SetSingle sets the Mode of the buffer to ModeSingle without writing any
// bytes yet. This is useful during message transformation, especially when
// the message content is to be empty. It panics if the mode is already
// ModeMultipart.
func (b *Buffer) SetSingle() {
	err := b.initBuffer()
	if err != nil {
		panic(err)
	}
}

func (b *Buffer) initBuffer() error {
	if b.parts != nil {
		return ErrPartsBuffer
	}
	if b.buf == nil {
		b.buf = &bytes.Buffer{}
	}
	return nil
}

func (b *Buffer) initParts(capacity int) error {
	if capacity == 0 {
		capacity = 10
	}
	if b.buf != nil {
		return ErrOpaqueBuffer
	}
	if b.parts == nil {
		b.parts = make([]Part, 0, capacity)
	}
	return nil
}

// Add adds one or more parts to the message. It panics with ErrOpaqueBuffer
// if the Buffer has already been used as an io.Writer.
func (b *Buffer) Add(msgs ...Part) {
	if err := b.initParts(0); err != nil {
		panic(err)
	}
	b.parts = append(b.parts, msgs...)
}

// Write implements io.Writer for writing the message body as bytes. It panics
// with ErrPartsBuffer if parts have already been added to the Buffer.
func (b *Buffer) Write(p []byte) (int, error) {
	if err := b.initBuffer(); err != nil {
		panic(err)
	}
	return b.buf.Write(p)
}

// prepareForMultipartOutput fills in the Content-type and boundary when the
// caller has not set them.
func (b *Buffer) prepareForMultipartOutput() {
	if _, err := b.GetMediaType(); errors.Is(err, header.ErrNoSuchField) {
		b.SetMediaType(DefaultMultipartContentType)
	}

	if _, err := b.GetBoundary(); errors.Is(err, header.ErrNoSuchFieldParameter) {
		_ = b.SetBoundary(GenerateBoundary())
	}
}

// Opaque returns an Opaque message built from the content of the Buffer. The
// exact behavior depends on the mode the Buffer is in.
//
// This method panics if the BufferMode is ModeUnset.
//
// In ModeSingle, the Header and the bytes written to the internal buffer are
// returned in the *Opaque as they are.
//
// In ModeMultipart, the parts are serialized into a byte buffer, joined by
// boundaries, and that becomes the body of the returned *Opaque. In this case
// you should set the Content-type header yourself to the multipart/* type you
// mean (multipart/alternative for text and HTML forms of one message,
// multipart/mixed for attachments, and so on). Without one, the header gets
// DefaultMultipartContentType, which may not be what you want. A missing
// boundary parameter is filled in with GenerateBoundary() and used to join
// the parts.
//
// The Buffer should be discarded after calling this method.
func (b *Buffer) Opaque() *Opaque {
	switch b.Mode() {
	case ModeSingle:
		return &Opaque{
			Header: b.Header,
			Reader: b.buf,
		}
	case ModeMultipart:
		b.prepareForMultipartOutput()
		boundary, _ := b.GetBoundary()

		buf := &bytes.Buffer{}
		if len(b.parts) > 0 {
			for _, part := range b.parts {
				_, _ = fmt.Fprintf(buf, "--%s%s", boundary, b.Break())
				_, _ = part.WriteTo(buf)
				_, _ = fmt.Fprint(buf, b.Break())
			}
			_, _ = fmt.Fprintf(buf, "--%s--", boundary)
		}

		return &Opaque{
			Header: b.Header,
			Reader: buf,
		}
	case ModeUnset:
		panic(ErrModeUnset)
	}
	panic("unknown error")
}

// OpaqueAlreadyEncoded works just like Opaque(), but marks the result as
// already carrying its Content-transfer-encoding. Use this when the bytes you
// wrote were already encoded.
//
// NOTE: No encoding is performed here! If you want output to be encoded for
// you, call Opaque() instead; WriteTo() on its result applies the encoding as
// it writes. This method only records that you did the work yourself.
//
// The Buffer should be discarded after calling this method.
func (b *Buffer) OpaqueAlreadyEncoded() *Opaque {
	msg := b.Opaque()
	if msg != nil {
		msg.encoded = true
	}
	return msg
}

// Multipart returns a Multipart message built from the content of the Buffer,
// or an error. The exact behavior depends on the mode the Buffer is in.
//
// When the goal is just to render a message to a file or network socket, you
// probably want Opaque() instead. This method exists for when you genuinely
// need the parts as parts.
//
// Whenever you plan on calling this method, set the Content-type header
// yourself to the multipart/* type you mean. Without one, the header gets
// DefaultMultipartContentType, which may not be what you want. A missing
// boundary parameter is filled in with GenerateBoundary().
//
// This method panics if the BufferMode is ModeUnset.
//
// In ModeSingle, the written bytes must be parsed to recover the parts, so
// the bytes are run through Parse() with the WithoutRecursion() option.
// Errors from Parse() are passed along. If the bytes parse as something other
// than a multipart message, this fails with ErrParsesAsNotMultipart.
//
// In ModeMultipart, the Header and collected parts are returned in the
// *Multipart directly.
//
// The Buffer should be discarded after calling this method.
func (b *Buffer) Multipart() (*Multipart, error) {
	b.prepareForMultipartOutput()
	switch b.Mode() {
	case ModeSingle:
		msg := &Opaque{b.Header, b.buf, false}
		pr := defaultParser.clone()
		WithoutRecursion()(pr)
		gmsg, err := pr.parse(msg, 0)
		switch vmsg := gmsg.(type) {
		case *Opaque:
			if err != nil {
				return nil, err
			}
			return nil, ErrParsesAsNotMultipart
		case *Multipart:
			return vmsg, err
		}
		return nil, errors.New("generic message came back as something other than Opaque or Multipart")
	case ModeMultipart:
		return &Multipart{
			Header: b.Header,
			prefix: []byte{},
			suffix: []byte{},
			parts:  b.parts,
		}, nil
	case ModeUnset:
		panic(ErrModeUnset)
	}
	panic("unknown error")
}
