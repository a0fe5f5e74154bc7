package emil

import (
	"bytes"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/sideeffffect/emil/message"
	"github.com/sideeffffect/emil/message/header"
	_ "github.com/sideeffffect/emil/message/header/encoding"
	"github.com/sideeffffect/emil/message/header/field"
	"github.com/sideeffffect/emil/message/walk"
)

// DeserializeOption adjusts how Deserialize reads a message.
type DeserializeOption func(*deserializeOptions)

type deserializeOptions struct {
	maxDepth int
}

// WithMaxNesting caps how deeply nested multipart content is taken apart.
// Parts below the limit are treated as opaque. The default is no limit.
func WithMaxNesting(depth int) DeserializeOption {
	return func(o *deserializeOptions) { o.maxDepth = depth }
}

// Deserialize parses wire bytes into the typed Mail model. Parsing is
// tolerant: an unparseable date or address degrades to an absent field, every
// header the typed model does not cover lands in AdditionalHeaders, and
// unexpected parts become attachments. Only structural damage, a header
// section that never ends or a multipart message whose boundaries cannot be
// found, produces a *DecodeError.
func Deserialize(raw []byte, opts ...DeserializeOption) (*Mail, error) {
	return DeserializeReader(bytes.NewReader(raw), opts...)
}

// DeserializeReader is Deserialize reading from a stream.
func DeserializeReader(r io.Reader, opts ...DeserializeOption) (*Mail, error) {
	var o deserializeOptions
	for _, opt := range opts {
		opt(&o)
	}

	depth := message.WithUnlimitedRecursion()
	if o.maxDepth > 0 {
		depth = message.WithMaxDepth(o.maxDepth)
	}

	msg, err := message.Parse(r,
		depth,
		message.DecodeTransferEncoding(),
	)
	if err != nil {
		// junk before the first header field is dropped by the parser and
		// reported as a warning, everything after it parsed fine
		var badStart *field.BadStartError
		if msg == nil || !errors.As(err, &badStart) {
			return nil, &DecodeError{Message: "parsing message", Cause: err}
		}
	}

	// a nil body reader means the header section never ended
	if op, ok := msg.(*message.Opaque); ok && op.Reader == nil {
		return nil, &DecodeError{Message: "message has a header section but no body"}
	}

	m := &Mail{}
	mapHeader(msg.GetHeader(), m)

	if err := collectContent(msg, m); err != nil {
		return nil, err
	}

	return m, nil
}

// mapHeader distributes the root header fields over the typed MailHeader,
// keeping everything unclaimed in the additional-header bag in order.
func mapHeader(h *header.Header, m *Mail) {
	for i := 0; i < h.Len(); i++ {
		f := h.GetField(i)
		name, body := f.Name(), f.Body()

		switch strings.ToLower(name) {
		case "date":
			if t, err := header.ParseTime(body); err == nil {
				m.Header.Date = t
			}
		case "from":
			if as, _ := ParseMailAddressList(body); len(as) > 0 {
				m.Header.From = &as[0]
			}
		case "to":
			m.Header.To = appendAddresses(m.Header.To, body)
		case "cc":
			m.Header.Cc = appendAddresses(m.Header.Cc, body)
		case "bcc":
			m.Header.Bcc = appendAddresses(m.Header.Bcc, body)
		case "reply-to":
			m.Header.ReplyTo = appendAddresses(m.Header.ReplyTo, body)
		case "subject":
			m.Header.Subject = decodeWords(body)
		case "message-id":
			m.Header.MessageID = strings.Trim(strings.TrimSpace(body), "<>")
		case "user-agent":
			m.Header.UserAgent = body
		case "received":
			m.Header.Received = append(m.Header.Received, body)
		case "mime-version", "content-type", "content-transfer-encoding",
			"content-disposition", "content-id":
			// structure of the root part, not mail metadata
		default:
			m.AdditionalHeaders.Add(name, body)
		}
	}
}

func appendAddresses(as []MailAddress, body string) []MailAddress {
	parsed, _ := ParseMailAddressList(body)
	return append(as, parsed...)
}

// collectContent walks the part tree and fills in body and attachments: the
// first text/plain leaf not presenting as a file becomes the text body, the
// first such text/html leaf the HTML body, and every other leaf an
// attachment, all in declaration order.
func collectContent(msg message.Part, m *Mail) error {
	var text, html *BodyContent

	err := walk.AndProcessOpaque(func(part message.Part, _ []message.Part) error {
		h := part.GetHeader()

		mt, err := h.GetMediaType()
		if err != nil {
			mt = "text/plain"
		}

		filename := leafFilename(h)
		pres, _ := h.GetPresentation()

		isBodyCandidate := filename == "" && pres == ""
		switch {
		case isBodyCandidate && text == nil && mt == "text/plain":
			c, err := leafContent(part)
			if err != nil {
				return err
			}
			text = &c
			return nil
		case isBodyCandidate && html == nil && mt == "text/html":
			c, err := leafContent(part)
			if err != nil {
				return err
			}
			html = &c
			return nil
		}

		c, err := leafContent(part)
		if err != nil {
			return err
		}

		att := Attachment{
			Filename: filename,
			MimeType: mt,
			Content:  ContentBytes(c.Bytes),
		}
		switch pres {
		case "inline":
			att.Disposition = DispositionInline
		case "":
			att.Disposition = DispositionNone
		default:
			att.Disposition = DispositionAttached
		}
		if id, err := h.GetContentID(); err == nil {
			att.ContentID = id
		}

		m.Attachments = append(m.Attachments, att)
		return nil
	}, msg)
	if err != nil {
		return err
	}

	m.Body = bodyOf(text, html)
	return nil
}

// leafContent reads a leaf part into a BodyContent, keeping the declared
// charset and the transfer encoding it arrived through.
func leafContent(part message.Part) (BodyContent, error) {
	h := part.GetHeader()

	r := part.GetReader()
	if r == nil {
		return BodyContent{}, &DecodeError{Message: "part has a header section but no body"}
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return BodyContent{}, &DecodeError{Message: "reading part content", Cause: err}
	}

	c := BodyContent{Bytes: b}
	if cs, err := h.GetCharset(); err == nil {
		c.Charset = cs
	}
	if te, err := h.GetTransferEncoding(); err == nil {
		c.Transfer = te
	}
	return c, nil
}

// leafFilename finds the name a part presents itself under: the
// Content-disposition filename parameter first, the Content-type name
// parameter second. Names that arrive as MIME encoded words, a common abuse
// of RFC 2047 inside parameters, are decoded, including b-encoded words split
// across adjacent encoded words.
func leafFilename(h *header.Header) string {
	if fn, err := h.GetFilename(); err == nil && fn != "" {
		return decodeWords(fn)
	}

	if ct, err := h.GetContentType(); err == nil {
		if n := ct.Parameter("name"); n != "" {
			return decodeWords(n)
		}
	}

	return ""
}

// decodeWords resolves RFC 2047 encoded words in a string, tolerating input
// without any. Failures leave the input untouched.
func decodeWords(s string) string {
	if !strings.Contains(s, "=?") {
		return s
	}

	merged := mergeSplitBWords(s)
	if d, err := field.Decode(merged); err == nil {
		return d
	}
	if d, err := field.Decode(s); err == nil {
		return d
	}
	return s
}

var bWordPair = regexp.MustCompile(
	`(?i)=\?([^?]+)\?b\?([^?]*)\?=\s*=\?([^?]+)\?b\?([^?]*)\?=`)

// mergeSplitBWords joins adjacent b-encoded words with the same charset into
// one word. Some producers split one base64 stream across several encoded
// words, leaving each word undecodable on its own.
func mergeSplitBWords(s string) string {
	for {
		merged := bWordPair.ReplaceAllStringFunc(s, func(pair string) string {
			sub := bWordPair.FindStringSubmatch(pair)
			if !strings.EqualFold(sub[1], sub[3]) {
				return pair
			}
			return "=?" + sub[1] + "?B?" + sub[2] + sub[4] + "?="
		})
		if merged == s {
			return merged
		}
		s = merged
	}
}
