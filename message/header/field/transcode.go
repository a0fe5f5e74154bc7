package field

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Encoder is the signature of the character encoding hook. It transforms a
// native unicode string into bytes in the named character set. An empty
// charset means us-ascii.
//
// The encoder must only produce bytes valid in the target encoding. If the
// charset is not supported, it returns nil bytes and an error.
type Encoder func(charset, s string) ([]byte, error)

// Decoder is the signature of the character decoding hook. It transforms bytes
// in the named character set into a native unicode string. An empty charset
// means us-ascii.
//
// Input bytes invalid for the source encoding become
// unicode.ReplacementChar in the output. If the charset is not supported, it
// returns an empty string and an error.
type Decoder func(charset string, b []byte) (string, error)

var (
	// CharsetEncoder is the Encoder used when writing header field bodies and
	// message text in a declared character set. The default only understands
	// us-ascii, iso-8859-1, and utf-8. For everything in the IANA registry,
	// import the encoding package for its side effects:
	//
	//  import _ "github.com/sideeffffect/emil/message/header/encoding"
	CharsetEncoder Encoder = DefaultCharsetEncoder

	// CharsetDecoder is the Decoder used when reading header field bodies and
	// message text in a declared character set. The default only understands
	// us-ascii, iso-8859-1, and utf-8. For everything in the IANA registry,
	// import the encoding package for its side effects:
	//
	//  import _ "github.com/sideeffffect/emil/message/header/encoding"
	CharsetDecoder Decoder = DefaultCharsetDecoder
)

// DefaultCharsetEncoder handles us-ascii, iso-8859-1, and utf-8 and errors on
// anything else. Characters that do not fit the target set are replaced with
// "\x1a", the ASCII SUB character.
func DefaultCharsetEncoder(charset, s string) ([]byte, error) {
	switch strings.ToLower(charset) {
	case "us-ascii", "":
		var buf bytes.Buffer
		for _, c := range s {
			if c > unicode.MaxASCII {
				buf.WriteRune('\x1a')
			} else {
				buf.WriteRune(c)
			}
		}
		return buf.Bytes(), nil
	case "iso-8859-1", "latin1":
		buf := make([]byte, 0, len(s))
		for _, c := range s {
			if c > 0xff {
				buf = append(buf, '\x1a')
			} else {
				buf = append(buf, byte(c))
			}
		}
		return buf, nil
	case "utf-8":
		return []byte(s), nil
	default:
		return nil, fmt.Errorf("unsupported byte encoding %q", charset)
	}
}

// DefaultCharsetDecoder handles us-ascii, iso-8859-1, and utf-8 and errors on
// anything else. Bytes invalid for the source set come through as
// unicode.ReplacementChar.
func DefaultCharsetDecoder(charset string, b []byte) (string, error) {
	switch strings.ToLower(charset) {
	case "us-ascii", "":
		var s strings.Builder
		for _, c := range b {
			if c > unicode.MaxASCII {
				s.WriteRune(unicode.ReplacementChar)
			} else {
				s.WriteByte(c)
			}
		}
		return s.String(), nil
	case "iso-8859-1", "latin1":
		var s strings.Builder
		for _, c := range b {
			s.WriteRune(rune(c))
		}
		return s.String(), nil
	case "utf-8":
		var s strings.Builder
		for len(b) > 0 {
			r, size := utf8.DecodeRune(b)
			s.WriteRune(r)
			b = b[size:]
		}
		return s.String(), nil
	default:
		return "", fmt.Errorf("unsupported byte encoding %q", charset)
	}
}

// CharsetDecoderToCharsetReader adapts a Decoder to the CharsetReader
// interface wanted by mime.WordDecoder.
func CharsetDecoderToCharsetReader(decode Decoder) func(string, io.Reader) (io.Reader, error) {
	return func(charset string, r io.Reader) (io.Reader, error) {
		bs, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}

		s, err := decode(charset, bs)
		if err != nil {
			return nil, err
		}

		return strings.NewReader(s), nil
	}
}

// Encode turns a header field body into its wire form. Anything outside the
// set of characters a header may carry directly is MIME word encoded, always
// as b-encoded UTF-8.
func Encode(body string) string {
	return mime.BEncoding.Encode("utf-8", body)
}

// Decode looks through a header field body for MIME encoded words and decodes
// them into native unicode. Bodies without encoded words pass through
// untouched.
func Decode(body string) (string, error) {
	dec := &mime.WordDecoder{
		CharsetReader: CharsetDecoderToCharsetReader(CharsetDecoder),
	}

	if strings.Contains(body, "=?") {
		return dec.DecodeHeader(body)
	}

	return body, nil
}
