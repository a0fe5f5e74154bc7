package transfer

import "io"

// NewAsIsEncoder returns an io.WriteCloser that passes bytes through
// unchanged. It backs the identity encodings (7bit, 8bit, binary, none).
func NewAsIsEncoder(w io.Writer) io.WriteCloser {
	return &writer{w, nil}
}

// NewAsIsDecoder returns the reader unchanged, for the identity encodings.
func NewAsIsDecoder(r io.Reader) io.Reader {
	return r
}
