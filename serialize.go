package emil

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sideeffffect/emil/message"
	"github.com/sideeffffect/emil/message/header"
	"github.com/sideeffffect/emil/message/transfer"
)

// Serialize renders the Mail into wire bytes: a complete MIME message with
// CRLF line endings. The MIME structure follows from the content: text and
// HTML bodies become multipart/alternative, inline attachments wrap the body
// in multipart/related, and remaining attachments force an outer
// multipart/mixed. A mail with neither body nor attachments serializes as an
// empty text/plain message.
//
// Failures are reported as *EncodeError.
func Serialize(m *Mail, opts ...SerializeOption) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := SerializeTo(m, &buf, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SerializeOption adjusts how Serialize renders a mail.
type SerializeOption func(*serializeOptions)

type serializeOptions struct {
	stripBcc bool
}

// WithoutBcc leaves the Bcc header out of the rendered message, for callers
// handing the bytes straight to a mail transport.
func WithoutBcc() SerializeOption {
	return func(o *serializeOptions) { o.stripBcc = true }
}

// SerializeTo is Serialize writing to a stream. It returns the number of
// bytes written.
func SerializeTo(m *Mail, w io.Writer, opts ...SerializeOption) (int64, error) {
	var o serializeOptions
	for _, opt := range opts {
		opt(&o)
	}

	root, err := assemble(m, &o)
	if err != nil {
		return 0, err
	}

	n, err := root.WriteTo(w)
	if err != nil {
		return n, &EncodeError{Message: "writing message", Cause: err}
	}
	return n, nil
}

// assemble builds the part tree for the mail and decorates the root header
// with the typed header fields.
func assemble(m *Mail, o *serializeOptions) (message.Part, error) {
	var core message.Part

	text, hasText := m.Body.TextContent()
	html, hasHTML := m.Body.HTMLContent()
	switch {
	case hasText && hasHTML:
		alt := message.MultipartAlternative(
			bodyPart("text/plain", text),
			bodyPart("text/html", html),
		)
		alt.SetBreak(header.CRLF)
		core = alt
	case hasHTML:
		core = bodyPart("text/html", html)
	case hasText:
		core = bodyPart("text/plain", text)
	default:
		core = bodyPart("text/plain", BodyContent{Charset: "us-ascii"})
	}

	var inline, attached []message.Part
	var opened []io.Closer
	abort := func(err error) (message.Part, error) {
		// readers already opened for earlier attachments must not leak
		for _, c := range opened {
			_ = c.Close()
		}
		return nil, err
	}
	for _, att := range m.Attachments {
		p, err := attachmentPart(att)
		if err != nil {
			return abort(err)
		}
		if c, ok := p.Reader.(io.Closer); ok {
			opened = append(opened, c)
		}
		if att.Disposition == DispositionInline && att.ContentID != "" {
			inline = append(inline, p)
		} else {
			attached = append(attached, p)
		}
	}

	if len(inline) > 0 {
		rel := message.MultipartRelated(append([]message.Part{core}, inline...)...)
		rel.SetBreak(header.CRLF)
		core = rel
	}
	if len(attached) > 0 {
		mix := message.MultipartMixed(append([]message.Part{core}, attached...)...)
		mix.SetBreak(header.CRLF)
		core = mix
	}

	if err := decorateHeader(core.GetHeader(), m, o); err != nil {
		return abort(err)
	}

	return core, nil
}

// decorateHeader prepends the typed header fields in their fixed order and
// appends the additional headers. The part construction already placed the
// MIME structure fields, so the prepend block lands above them.
func decorateHeader(h *header.Header, m *Mail, o *serializeOptions) error {
	h.SetBreak(header.CRLF)

	idx := 0
	ins := func(name, body string) {
		h.InsertBeforeField(idx, name, body)
		idx++
	}

	for _, rcv := range m.Header.Received {
		ins(header.Received, rcv)
	}

	if !m.Header.Date.IsZero() {
		ins(header.Date, m.Header.Date.Format(time.RFC1123Z))
	}

	if m.Header.From != nil {
		enc, err := m.Header.From.Encode()
		if err != nil {
			return &EncodeError{Message: "encoding From address", Cause: err}
		}
		ins(header.From, enc)
	}

	bcc := m.Header.Bcc
	if o.stripBcc {
		bcc = nil
	}

	lists := []struct {
		name string
		as   []MailAddress
	}{
		{header.To, m.Header.To},
		{header.Cc, m.Header.Cc},
		{header.Bcc, bcc},
		{header.ReplyTo, m.Header.ReplyTo},
	}
	for _, l := range lists {
		if len(l.as) == 0 {
			continue
		}
		enc, err := encodeAddressList(l.as)
		if err != nil {
			return &EncodeError{Message: fmt.Sprintf("encoding %s addresses", l.name), Cause: err}
		}
		ins(l.name, enc)
	}

	if m.Header.MessageID != "" {
		id := m.Header.MessageID
		if !strings.HasPrefix(id, "<") {
			id = "<" + id + ">"
		}
		ins(header.MessageID, id)
	}

	if m.Header.Subject != "" {
		// the field write path MIME word encodes non-ASCII bodies itself
		ins(header.Subject, m.Header.Subject)
	}

	if m.Header.UserAgent != "" {
		ins(header.UserAgent, m.Header.UserAgent)
	}

	ins(header.MIMEVersion, "1.0")

	m.AdditionalHeaders.forEach(func(name, value string) {
		h.InsertBeforeField(h.Len(), name, value)
	})

	return nil
}

func encodeAddressList(as []MailAddress) (string, error) {
	encs := make([]string, 0, len(as))
	for _, a := range as {
		enc, err := a.Encode()
		if err != nil {
			return "", err
		}
		encs = append(encs, enc)
	}
	return strings.Join(encs, ", "), nil
}

// bodyPart builds the leaf part for one body rendering. Line endings are
// canonicalized to CRLF and a transfer encoding is chosen from the bytes; the
// encoding itself is applied by the part's WriteTo.
func bodyPart(mediaType string, c BodyContent) *message.Opaque {
	h := &header.Header{}
	h.SetBreak(header.CRLF)
	h.SetMediaType(mediaType)
	if c.Charset != "" {
		_ = h.SetCharset(c.Charset)
	}

	b := canonicalCRLF(c.Bytes)
	h.SetTransferEncoding(chooseTransferEncoding(b, true))

	return &message.Opaque{
		Header: *h,
		Reader: bytes.NewReader(b),
	}
}

// attachmentPart builds the leaf part for one attachment. The content opener
// is called here, so the bytes flow only during WriteTo and an attachment can
// be larger than memory.
func attachmentPart(att Attachment) (*message.Opaque, error) {
	if att.Content == nil {
		return nil, &EncodeError{
			Message: fmt.Sprintf("attachment %q has no content", att.Filename),
		}
	}

	rc, err := att.Content()
	if err != nil {
		return nil, &EncodeError{
			Message: fmt.Sprintf("opening attachment %q", att.Filename),
			Cause:   err,
		}
	}

	mt := att.MimeType
	if mt == "" {
		mt = "application/octet-stream"
	}

	h := &header.Header{}
	h.SetBreak(header.CRLF)
	h.SetMediaType(mt)

	if strings.HasPrefix(mt, "text/") {
		h.SetTransferEncoding(transfer.QuotedPrintable)
	} else {
		h.SetTransferEncoding(transfer.Base64)
	}

	if att.Disposition != DispositionNone {
		h.SetPresentation(att.Disposition.String())
		if att.Filename != "" {
			_ = h.SetFilename(att.Filename)
		}
	}

	if att.ContentID != "" {
		h.SetContentID(att.ContentID)
	}

	return &message.Opaque{
		Header: *h,
		Reader: &closeAfterRead{rc: rc},
	}, nil
}

// chooseTransferEncoding picks the lightest safe encoding: 7bit when the
// bytes could travel through the oldest of mail servers untouched,
// quoted-printable for other text, base64 for everything else.
func chooseTransferEncoding(b []byte, isText bool) string {
	if is7bitSafe(b) {
		return transfer.Bit7
	}
	if isText {
		return transfer.QuotedPrintable
	}
	return transfer.Base64
}

// is7bitSafe reports whether the bytes are ASCII without NULs or bare CR/LF
// and with no line longer than 998 characters.
func is7bitSafe(b []byte) bool {
	lineLen := 0
	for i := 0; i < len(b); i++ {
		c := b[i]
		switch {
		case c == 0 || c >= 0x80:
			return false
		case c == '\r':
			if i+1 >= len(b) || b[i+1] != '\n' {
				return false
			}
		case c == '\n':
			if i == 0 || b[i-1] != '\r' {
				return false
			}
			lineLen = 0
			continue
		}
		lineLen++
		if lineLen > 998 {
			return false
		}
	}
	return true
}

// canonicalCRLF rewrites lone LF line endings as CRLF.
func canonicalCRLF(b []byte) []byte {
	if !bytes.ContainsRune(b, '\n') {
		return b
	}

	var out bytes.Buffer
	out.Grow(len(b) + bytes.Count(b, []byte{'\n'}))
	for i := 0; i < len(b); i++ {
		if b[i] == '\n' && (i == 0 || b[i-1] != '\r') {
			out.WriteByte('\r')
		}
		out.WriteByte(b[i])
	}
	return out.Bytes()
}

// closeAfterRead closes the underlying ReadCloser when reading finishes,
// cleanly or not, so file and HTTP openers do not leak across serialization.
type closeAfterRead struct {
	rc     io.ReadCloser
	closed bool
}

func (c *closeAfterRead) Read(p []byte) (int, error) {
	if c.closed {
		return 0, io.EOF
	}
	n, err := c.rc.Read(p)
	if err != nil {
		_ = c.Close()
	}
	return n, err
}

// Close closes the wrapped ReadCloser once. Later reads report EOF.
func (c *closeAfterRead) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.rc.Close()
}
