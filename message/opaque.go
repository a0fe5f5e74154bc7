package message

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sideeffffect/emil/message/header"
	"github.com/sideeffffect/emil/message/transfer"
)

// Opaque is the simplest form a message takes: a header and a body of plain
// bytes this library assigns no meaning to, much like net/mail treats a
// message.
type Opaque struct {
	// Header holds the header of the message or part.
	header.Header

	// Reader holds the body content. A nil Reader means a zero length body.
	io.Reader

	// encoded tracks whether the bytes behind Reader still carry their
	// Content-transfer-encoding:
	//
	// - parsing leaves the encoding in place unless the
	// DecodeTransferEncoding() option asks otherwise
	//
	// - a Buffer produces decoded bodies unless finished via
	// OpaqueAlreadyEncoded()
	encoded bool
}

// WriteTo writes the header and body to the destination io.Writer.
//
// If the body bytes have had their Content-transfer-encoding decoded (the
// message was parsed with DecodeTransferEncoding() or built via a Buffer),
// the data is re-encoded while being written.
//
// This may only be called once, since it consumes the io.Reader.
func (m *Opaque) WriteTo(w io.Writer) (int64, error) {
	var tw io.WriteCloser
	if !m.encoded {
		tw = transfer.ApplyTransferEncoding(&m.Header, w)
		defer func() { _ = tw.Close() }()
	}

	total, err := m.Header.WriteTo(w)
	if err != nil {
		return total, err
	}

	if tw != nil {
		w = tw
	}

	if m.Reader != nil {
		bn, err := io.Copy(w, m.Reader)
		total += bn
		if err != nil {
			return total, err
		}
	}

	return total, nil
}

// IsMultipart always returns false.
func (m *Opaque) IsMultipart() bool {
	return false
}

// IsEncoded returns true if the bytes behind the associated io.Reader still
// carry their Content-transfer-encoding and false if that encoding has been
// decoded away.
//
// A false value does not imply the bytes were actually changed. Multipart
// content ignores transfer encoding entirely, and encodings like "8bit" pass
// bytes through untouched. A true value does guarantee that reading the
// io.Reader yields exactly the bytes WriteTo() would produce.
func (m *Opaque) IsEncoded() bool {
	return m.encoded
}

// GetHeader returns the header for the message.
func (m *Opaque) GetHeader() *header.Header {
	return &m.Header
}

// GetReader returns the reader containing the body of the message.
//
// When IsEncoded() returns false, the bytes read from here may differ from
// what WriteTo() writes: reads see decoded data, WriteTo() encodes anew as it
// goes.
func (m *Opaque) GetReader() io.Reader {
	return m.Reader
}

// GetParts always returns nil.
func (m *Opaque) GetParts() []Part {
	return nil
}

// AsAlreadyEncoded marks the given Opaque as already carrying its
// Content-transfer-encoding and returns it. No encoding is performed; this
// only records that the bytes behind the reader are wire-ready.
func AsAlreadyEncoded(m *Opaque) *Opaque {
	m.encoded = true
	return m
}

// AttachmentFile builds an Opaque attachment part from the given file path
// and MIME type. The base name of the path becomes the attachment filename.
// It returns an error when the file cannot be opened.
//
// The final argument is the transfer encoding to apply on output. Pass
// transfer.None to leave the bytes alone.
func AttachmentFile(fn, mt, te string) (*Opaque, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}

	m := &Opaque{}
	m.Reader = f
	m.SetMediaType(mt)
	m.SetPresentation("attachment")
	_ = m.SetFilename(filepath.Base(fn))

	if te != transfer.None {
		m.SetTransferEncoding(te)
	}

	return m, nil
}
