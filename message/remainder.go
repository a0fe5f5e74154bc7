package message

import "io"

// remainder glues bytes that were already read off an io.Reader back onto the
// front of it: reads drain the prefix first and then fall through to the
// unread part of the reader.
type remainder struct {
	prefix []byte
	r      io.Reader
}

// Read drains the prefix buffer first. Once those bytes are consumed, reads
// pass through to the underlying io.Reader.
func (r *remainder) Read(p []byte) (n int, err error) {
	if len(r.prefix) > 0 {
		n = copy(p, r.prefix)
		r.prefix = r.prefix[n:]
	}

	// top up from the reader if the prefix did not fill p
	if n < len(p) {
		var rn int
		rn, err = r.r.Read(p[n:])
		n += rn
	}

	return n, err
}

// Close passes Close() through to the nested io.Reader when it happens to be
// an io.Closer and is a no-op otherwise.
func (r *remainder) Close() error {
	if c, isCloser := r.r.(io.Closer); isCloser {
		return c.Close()
	}
	return nil
}
