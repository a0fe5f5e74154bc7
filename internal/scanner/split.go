package scanner

import (
	"bufio"
	"errors"
)

// ErrRetry is a signal error a wrapped bufio.SplitFunc may return to ask for
// another pass over the remaining data before any verdict is reached. The
// advance it returned is consumed, the error is not surfaced.
var ErrRetry = errors.New("run split func again")

// ExitByAdvance wraps a bufio.SplitFunc so that consuming input without
// producing a token does not end the scan.
//
// The stock bufio.Scanner stops as soon as a split function returns a nil
// token at EOF, which forces any split function that wants to discard a chunk
// and keep looking to carry its own inner loop. The wrapper supplies that loop
// once: the wrapped function may advance past uninteresting data and return a
// nil token as often as it needs, and the scan only ends when it reports an
// error, stops advancing, or runs out of data.
func ExitByAdvance(split bufio.SplitFunc) bufio.SplitFunc {
	return func(data []byte, atEOF bool) (int, []byte, error) {
		consumed := 0
		for {
			advance, token, err := split(data, atEOF)
			if errors.Is(err, ErrRetry) {
				data = data[advance:]
				consumed += advance
				continue
			}

			// Stop on a real token or error. Stop on advance == 0 too: that
			// means the split function wants more input, and if none is coming
			// the outer scanner has to be the one to notice. The <= 0 case is
			// an over-advance bug we pass up rather than mask.
			if token != nil || err != nil || advance == 0 || len(data)-advance <= 0 {
				return consumed + advance, token, err
			}

			data = data[advance:]
			consumed += advance
		}
	}
}
