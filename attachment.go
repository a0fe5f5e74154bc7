package emil

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// Disposition says how an attachment asks to be presented.
type Disposition int

const (
	// DispositionNone means no Content-disposition header at all.
	DispositionNone Disposition = iota

	// DispositionInline asks for the content to be shown in the message flow,
	// typically an image referenced by Content-ID from an HTML body.
	DispositionInline

	// DispositionAttached asks for the content to be presented as a separate
	// downloadable file.
	DispositionAttached
)

// String returns the disposition as it appears in a header.
func (d Disposition) String() string {
	switch d {
	case DispositionInline:
		return "inline"
	case DispositionAttached:
		return "attachment"
	}
	return ""
}

// ContentOpener supplies the bytes of an attachment. Each call returns an
// independent reader over the full content, so an opener may be called any
// number of times. Openers backed by files or URLs touch their source only
// when called, which keeps large payloads out of memory until serialization
// needs them.
type ContentOpener func() (io.ReadCloser, error)

// Attachment is one non-body part of a mail.
type Attachment struct {
	// Filename is the name offered to the recipient. May be empty.
	Filename string

	// MimeType is the media type of the content. When empty, serialization
	// writes application/octet-stream.
	MimeType string

	// Disposition selects inline or attachment presentation, or neither.
	Disposition Disposition

	// ContentID is the identifier inline content is referenced by, without
	// the surrounding angle brackets.
	ContentID string

	// Content supplies the attachment bytes.
	Content ContentOpener
}

// ContentBytes returns an opener over an in-memory byte slice.
func ContentBytes(b []byte) ContentOpener {
	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(b)), nil
	}
}

// ContentString returns an opener over an in-memory string.
func ContentString(s string) ContentOpener {
	return func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(s)), nil
	}
}

// ContentFile returns an opener that reads the named file. The file is opened
// on each call, not when the opener is built.
func ContentFile(path string) ContentOpener {
	return func() (io.ReadCloser, error) {
		return os.Open(path)
	}
}

// ContentURL returns an opener that fetches the given URL with a GET request.
// The fetch happens on each call. A non-2xx response is an error.
func ContentURL(url string) ContentOpener {
	return func() (io.ReadCloser, error) {
		res, err := http.Get(url)
		if err != nil {
			return nil, err
		}
		if res.StatusCode < 200 || res.StatusCode >= 300 {
			_ = res.Body.Close()
			return nil, fmt.Errorf("fetching %q: unexpected status %s", url, res.Status)
		}
		return res.Body, nil
	}
}
