package emil

// Mail is the typed model of an email message: who it is from and to, what it
// says, and what rides along with it. Build one directly, with the builder
// package, or by calling Deserialize on wire bytes. Serialize turns it back
// into a MIME message.
type Mail struct {
	// Header holds the typed core header fields.
	Header MailHeader

	// Body holds the text and/or HTML content.
	Body MailBody

	// Attachments holds every non-body part, inline content included, in
	// order.
	Attachments []Attachment

	// AdditionalHeaders holds every header field the typed model does not
	// cover, with duplicates and order intact.
	AdditionalHeaders Header
}
