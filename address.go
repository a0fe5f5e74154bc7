package emil

import (
	"mime"
	"strings"

	"github.com/zostay/go-addr/pkg/addr"

	"github.com/sideeffffect/emil/message/header"
)

// MailAddress is one mailbox: an optional display name and an addr-spec.
type MailAddress struct {
	// Name is the display name, which may be empty.
	Name string

	// Address is the addr-spec, the local@domain part.
	Address string
}

// ParseMailAddress parses a single email address, with or without a display
// name. Parsing is strict first and lenient second: input the strict grammar
// rejects is still mined for something address-shaped. It returns
// InvalidAddressError only when nothing can be recovered at all.
func ParseMailAddress(s string) (MailAddress, error) {
	s = unfold(s)

	mb, err := addr.ParseEmailMailbox(strings.TrimSpace(s))
	if err == nil {
		return MailAddress{Name: decodeWords(mb.DisplayName()), Address: mb.Address()}, nil
	}

	al := header.ParseAddressList(s)
	if len(al) == 0 {
		return MailAddress{}, &InvalidAddressError{Address: s, Cause: err}
	}

	return MailAddress{Name: decodeWords(al[0].DisplayName()), Address: al[0].Address()}, nil
}

// ParseMailAddressList parses a comma-separated list of email addresses.
// Surrounding whitespace and folded input are tolerated. Mailboxes the strict
// grammar rejects drop to a lenient interpretation rather than failing the
// whole list, so whitespace and fold problems never produce an error.
// Structurally empty input yields an empty list.
func ParseMailAddressList(s string) ([]MailAddress, error) {
	s = strings.TrimSpace(unfold(s))
	if s == "" {
		return []MailAddress{}, nil
	}

	al := header.ParseAddressList(s)
	as := make([]MailAddress, 0, len(al))
	for _, a := range al {
		as = append(as, MailAddress{Name: decodeWords(a.DisplayName()), Address: a.Address()})
	}

	return as, nil
}

// unfold removes the line breaks a folded header value carries.
func unfold(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "\n", " ")
}

// String returns the display form of the address: "Name <local@domain>", or
// the bare addr-spec when there is no display name. The display form is for
// humans; use Encode() when writing a header.
func (a MailAddress) String() string {
	if a.Name == "" {
		return a.Address
	}
	return a.Name + " <" + a.Address + ">"
}

// MarshalText implements encoding.TextMarshaler using the display form.
func (a MailAddress) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Encode returns the header-safe encoded form of the address. Display names
// containing specials are quoted with internal quotes and backslashes escaped,
// and non-ASCII names are MIME word encoded. An address with no display name
// encodes as the bare addr-spec.
//
// The addr-spec must parse strictly and the final encoded form must re-parse
// as a mailbox, otherwise Encode fails with InvalidAddressError.
func (a MailAddress) Encode() (string, error) {
	if _, err := addr.ParseEmailAddrSpec(a.Address); err != nil {
		return "", &InvalidAddressError{Address: a.Address, Cause: err}
	}

	if a.Name == "" {
		return a.Address, nil
	}

	name := a.Name
	switch {
	case !isASCII(name):
		name = mime.BEncoding.Encode("utf-8", name)
	case strings.ContainsAny(name, phraseSpecials):
		name = quoteName(name)
	}

	enc := name + " <" + a.Address + ">"
	if _, err := addr.ParseEmailMailbox(enc); err != nil {
		return "", &InvalidAddressError{Address: enc, Cause: err}
	}

	return enc, nil
}

// phraseSpecials are the characters that force a display name into a quoted
// string.
const phraseSpecials = "()<>[]:;@\\,.\""

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 || s[i] < 0x20 {
			return false
		}
	}
	return true
}

func quoteName(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}
