package transfer

import (
	"encoding/base64"
	"io"
)

const defaultBase64LineLength = 76

var defaultBase64LineBreak = []byte{'\n'}

// newlineWriter breaks its output into lines no longer than every bytes,
// which base64 output wants per RFC 2045.
type newlineWriter struct {
	every int
	acc   int
	lbr   []byte
	w     io.Writer
}

func (nw *newlineWriter) Write(b []byte) (int, error) {
	ix, total := 0, 0
	for len(b[ix:])+nw.acc > nw.every {
		ln, err := nw.w.Write(b[ix : ix+(nw.every-nw.acc)])
		total += ln
		if err != nil {
			return total, err
		}

		_, err = nw.w.Write(nw.lbr)
		if err != nil {
			return total, err
		}

		ix += nw.every - nw.acc
		nw.acc = 0
	}

	ln, err := nw.w.Write(b[ix:])
	total += ln
	if err != nil {
		return total, err
	}

	nw.acc = len(b[ix:]) % nw.every

	return total, nil
}

// NewBase64Encoder returns an io.WriteCloser that base64 encodes everything
// written to it, wrapped to 76 columns, and writes the result to the given
// io.Writer.
func NewBase64Encoder(w io.Writer) io.WriteCloser {
	enc := base64.NewEncoder(base64.StdEncoding, &newlineWriter{
		every: defaultBase64LineLength,
		lbr:   defaultBase64LineBreak,
		w:     w,
	})
	return &writer{enc, enc}
}

// NewBase64Decoder returns an io.Reader that reads base64 data from the given
// io.Reader and yields the binary form.
func NewBase64Decoder(r io.Reader) io.Reader {
	return base64.NewDecoder(base64.StdEncoding, r)
}
