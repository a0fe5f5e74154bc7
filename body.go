package emil

// BodyContent is one rendering of a mail body: the stored bytes, the charset
// they are in, and the transfer encoding they arrived through when the
// content came off the wire.
type BodyContent struct {
	// Bytes is the content in its charset, already transfer-decoded.
	Bytes []byte

	// Charset names the character set of Bytes. Empty means undeclared, in
	// which case decoding sniffs between UTF-8 and ISO-8859-1.
	Charset string

	// Transfer records the transfer encoding the content arrived in. It is
	// informational and empty for locally constructed content.
	Transfer string
}

// NewBodyContent encodes text into the given charset. An empty or unknown
// charset stores the text as UTF-8.
func NewBodyContent(text string, cs string) BodyContent {
	b, actual := encodeText(text, cs)
	return BodyContent{Bytes: b, Charset: actual}
}

// String decodes the stored bytes into a string. Decoding is total: a
// declared charset the IANA index knows is honored, anything else falls back
// to UTF-8 or ISO-8859-1 depending on what the bytes look like. The error
// return is reserved for future charset policies and is currently always nil.
func (c BodyContent) String() (string, error) {
	return decodeText(c.Bytes, c.Charset), nil
}

// BodyKind says which renderings a MailBody holds.
type BodyKind int

const (
	// BodyEmpty is a body with no content at all.
	BodyEmpty BodyKind = iota

	// BodyText is a plain text body.
	BodyText

	// BodyHTML is an HTML-only body.
	BodyHTML

	// BodyAlternative is a body with both a plain text and an HTML rendering.
	BodyAlternative
)

// MailBody is the content of a mail: nothing, plain text, HTML, or both as
// alternatives of each other. It is a closed set; construct one with
// EmptyBody, TextBody, HTMLBody, or AlternativeBody.
type MailBody struct {
	text *BodyContent
	html *BodyContent
}

// EmptyBody returns a body with no content.
func EmptyBody() MailBody {
	return MailBody{}
}

// TextBody returns a plain text body. The text is stored as UTF-8.
func TextBody(text string) MailBody {
	c := NewBodyContent(text, "utf-8")
	return MailBody{text: &c}
}

// HTMLBody returns an HTML-only body. The markup is stored as UTF-8.
func HTMLBody(html string) MailBody {
	c := NewBodyContent(html, "utf-8")
	return MailBody{html: &c}
}

// AlternativeBody returns a body carrying both a plain text and an HTML
// rendering of the same content.
func AlternativeBody(text, html string) MailBody {
	tc := NewBodyContent(text, "utf-8")
	hc := NewBodyContent(html, "utf-8")
	return MailBody{text: &tc, html: &hc}
}

// bodyOf assembles a MailBody from decoded contents. Used when mapping a
// parsed message back into the model.
func bodyOf(text, html *BodyContent) MailBody {
	return MailBody{text: text, html: html}
}

// Kind reports which renderings the body holds.
func (b MailBody) Kind() BodyKind {
	switch {
	case b.text != nil && b.html != nil:
		return BodyAlternative
	case b.html != nil:
		return BodyHTML
	case b.text != nil:
		return BodyText
	}
	return BodyEmpty
}

// Text returns the plain text rendering and whether the body has one.
func (b MailBody) Text() (string, bool, error) {
	if b.text == nil {
		return "", false, nil
	}
	s, err := b.text.String()
	return s, true, err
}

// HTML returns the HTML rendering and whether the body has one.
func (b MailBody) HTML() (string, bool, error) {
	if b.html == nil {
		return "", false, nil
	}
	s, err := b.html.String()
	return s, true, err
}

// TextContent returns the stored plain text content, if any.
func (b MailBody) TextContent() (BodyContent, bool) {
	if b.text == nil {
		return BodyContent{}, false
	}
	return *b.text, true
}

// HTMLContent returns the stored HTML content, if any.
func (b MailBody) HTMLContent() (BodyContent, bool) {
	if b.html == nil {
		return BodyContent{}, false
	}
	return *b.html, true
}
