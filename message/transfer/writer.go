package transfer

import "io"

// writer pairs an io.Writer with the io.Closer that should be closed when
// encoding finishes, which may be the writer itself, something further down
// the chain, or nothing at all.
type writer struct {
	io.Writer
	io.Closer
}

// Close closes the nested io.Closer, if there is one.
func (w *writer) Close() error {
	if w.Closer != nil {
		return w.Closer.Close()
	}
	return nil
}
