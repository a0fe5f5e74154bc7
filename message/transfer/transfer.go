package transfer

import (
	"io"

	"github.com/sideeffffect/emil/message/header"
)

// The Content-transfer-encodings this package knows about.
const (
	None            = ""                 // bytes are left as-is
	Bit7            = "7bit"             // bytes are left as-is
	Bit8            = "8bit"             // bytes are left as-is
	Binary          = "binary"           // bytes are left as-is
	QuotedPrintable = "quoted-printable" // bytes are transformed between quoted-printable and binary
	Base64          = "base64"           // bytes are transformed between base64 and binary
)

// Transcoding is a pair of constructors for transforming to and from one
// transfer encoding.
type Transcoding struct {
	// Encoder returns an io.WriteCloser that encodes the binary data written
	// to it and passes the encoded form to the given io.Writer. Call Close()
	// on it when finished writing.
	Encoder func(io.Writer) io.WriteCloser

	// Decoder returns an io.Reader that reads encoded data from the given
	// io.Reader and yields the binary form.
	Decoder func(io.Reader) io.Reader
}

// AsIsTranscoder is a shortcut to the no-op encoder/decoder pair.
var AsIsTranscoder = Transcoding{NewAsIsEncoder, NewAsIsDecoder}

// Transcodings maps each supported Content-transfer-encoding to its handling.
// It may be modified to change the global handling of transfer encodings.
var Transcodings = map[string]Transcoding{
	None:            AsIsTranscoder,
	Bit7:            AsIsTranscoder,
	Bit8:            AsIsTranscoder,
	Binary:          AsIsTranscoder,
	QuotedPrintable: {NewQuotedPrintableEncoder, NewQuotedPrintableDecoder},
	Base64:          {NewBase64Encoder, NewBase64Decoder},
}

// ApplyTransferEncoding checks the given header for a transfer encoding to
// perform and returns an io.WriteCloser that applies it, or one that passes
// data straight through when no encoding applies.
//
// Call Close() on the returned io.WriteCloser when finished writing.
func ApplyTransferEncoding(h *header.Header, w io.Writer) io.WriteCloser {
	cte, err := h.GetTransferEncoding()
	if err != nil {
		return &writer{w, nil}
	}

	tc, hasCode := Transcodings[cte]
	if hasCode {
		return tc.Encoder(w)
	}

	return &writer{w, nil}
}

// ApplyTransferDecoding returns an io.Reader that decodes incoming bytes per
// the transfer encoding found in the given header, or the reader unchanged
// when no decoding applies.
func ApplyTransferDecoding(h *header.Header, r io.Reader) io.Reader {
	// Transfer encoding does not apply to multipart content, so leave those
	// bytes alone. A missing or unreadable Content-type gets the benefit of
	// the doubt.
	ct, err := h.GetContentType()
	if err == nil && ct != nil && ct.Type() == "multipart" {
		return r
	}

	cte, err := h.GetTransferEncoding()
	if err != nil {
		return r
	}

	tc, hasCode := Transcodings[cte]
	if hasCode {
		return tc.Decoder(r)
	}

	return r
}
