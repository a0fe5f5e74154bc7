// Package encoding upgrades the charset hooks in the field package to the
// complete IANA character set index from:
//
// * golang.org/x/text/encoding/ianaindex
//
// Importing this package for its side effects makes compiled binaries quite a
// bit larger, but in exchange the library can encode and decode just about any
// character set email from the wild might declare:
//
//	import _ "github.com/sideeffffect/emil/message/header/encoding"
package encoding

import (
	"fmt"

	_ "golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/sideeffffect/emil/message/header/field"
)

func init() {
	field.CharsetEncoder = CharsetEncoder
	field.CharsetDecoder = CharsetDecoder
}

// CharsetEncoder is the field.Encoder replacement wired in by this package. It
// encodes into any character set the IANA index knows.
func CharsetEncoder(charset, s string) ([]byte, error) {
	e, err := ianaindex.MIME.Encoding(charset)
	if err != nil {
		return nil, err
	}

	if e == nil {
		return nil, fmt.Errorf("no encoding found for charset %q", charset)
	}

	es, err := e.NewEncoder().String(s)
	if err != nil {
		return nil, err
	}

	return []byte(es), nil
}

// CharsetDecoder is the field.Decoder replacement wired in by this package. It
// decodes from any character set the IANA index knows.
func CharsetDecoder(charset string, b []byte) (string, error) {
	e, err := ianaindex.MIME.Encoding(charset)
	if err != nil {
		return "", err
	}

	if e == nil {
		return "", fmt.Errorf("no encoding found for charset %q", charset)
	}

	eb, err := e.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}

	return string(eb), nil
}
