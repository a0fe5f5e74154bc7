package field

import (
	"bytes"
)

// BadStartError is returned when a header opens with text that cannot be a
// header field. The offending text is preserved on the error. The rest of the
// header will have been parsed as usual, so this error is safe to treat as a
// warning.
type BadStartError struct {
	BadStart []byte // the bytes skipped before the first field
}

// Error returns the error message.
func (err *BadStartError) Error() string {
	return "header starts with text that does not appear to be a header"
}

// Line holds the unparsed bytes of one complete header field, folds included.
type Line []byte

// Lines holds the unparsed bytes of zero or more header fields.
type Lines []Line

// ParseLines splits header input into the lines that make up individual
// fields, ready to hand to Parse. The input must contain only the header, and
// all of it is treated as header.
//
// The split is deliberately looser than RFC 5322. A line starting with a space
// or tab, or containing no colon at all, is treated as the continuation of the
// previous field. Only a line that starts with a non-blank and contains a
// colon opens a new field. Accepting colon-free continuations without leading
// blanks is how we stay liberal toward the slightly broken headers that show
// up in real mail.
//
// Continuations with no preceding field have nowhere to go. They are dropped
// from the returned Lines and reported via BadStartError.
func ParseLines(m, lb []byte) (Lines, error) {
	h := make(Lines, 0, len(m)/80)
	var err *BadStartError
	for _, line := range bytes.SplitAfter(m, lb) {
		if len(line) == 0 {
			break
		}

		if line[0] == ' ' || line[0] == '\t' || !bytes.Contains(line, []byte{':'}) {
			if len(h) == 0 {
				// continuation before any field starts
				if err != nil {
					err.BadStart = append(err.BadStart, line...)
				} else {
					err = &BadStartError{line}
				}
				continue
			}

			h[len(h)-1] = append(h[len(h)-1], line...)
		} else {
			h = append(h, line)
		}
	}

	if err != nil {
		return h, err
	}
	return h, nil
}

// Parse turns one header field line, folds and all, into a Field. The original
// bytes are preserved in Raw. The name and body are unfolded, trimmed, and MIME
// word decoded for Base. A body that fails MIME word decoding is kept in its
// encoded form rather than rejected.
func Parse(f Line, lb []byte) *Field {
	rawField := bytes.TrimRight(f, string(lb))

	off := 1
	ix := bytes.Index(rawField, []byte{':'})
	if ix < 0 {
		ix = len(rawField)
		off = 0
	}

	// unfolding is the same no matter which fold encoding wrote the field
	name := string(DefaultFoldEncoding.Unfold(rawField[:ix]))
	body := string(bytes.TrimSpace(DefaultFoldEncoding.Unfold(rawField[ix+off:])))
	decBody, err := Decode(body)
	if err == nil {
		body = decBody
	}

	return &Field{
		Base: Base{name, body},
		Raw:  &Raw{rawField, ix},
	}
}
