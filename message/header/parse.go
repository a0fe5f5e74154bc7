package header

import (
	"errors"

	"github.com/sideeffffect/emil/message/header/field"
)

// Parse parses the given bytes into a Header using the given line break. The
// entire input is treated as header.
//
// The returned header carries field.DoNotFoldEncoding, so writing it back out
// reproduces the original fold structure byte for byte. Call SetFoldEncoding()
// if you would rather have the header refolded on output.
func Parse(m []byte, lb Break) (*Header, error) {
	lines, err := field.ParseLines(m, lb.Bytes())

	var badStartErr *field.BadStartError // recoverable
	var finalErr error
	if errors.As(err, &badStartErr) {
		finalErr = badStartErr
	} else if err != nil {
		return nil, err
	}

	fields := make([]*field.Field, len(lines))
	for i, line := range lines {
		fields[i] = field.Parse(line, lb.Bytes())
	}

	h := &Header{
		Base: Base{
			lbr:    lb,
			vf:     field.DoNotFoldEncoding,
			fields: fields,
		},
		valueCache: nil,
	}

	return h, finalErr
}
