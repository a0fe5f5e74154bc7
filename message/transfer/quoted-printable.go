package transfer

import (
	"io"
	"mime/quotedprintable"
)

// NewQuotedPrintableEncoder returns an io.WriteCloser that quoted-printable
// encodes everything written to it and writes the result to the given
// io.Writer.
func NewQuotedPrintableEncoder(w io.Writer) io.WriteCloser {
	qpw := quotedprintable.NewWriter(w)
	return &writer{qpw, qpw}
}

// NewQuotedPrintableDecoder returns an io.Reader that reads quoted-printable
// data from the given io.Reader and yields the binary form.
func NewQuotedPrintableDecoder(r io.Reader) io.Reader {
	return quotedprintable.NewReader(r)
}
