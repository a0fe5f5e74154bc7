package emil

import (
	"strings"
	"time"
)

// Header is an ordered multimap of header fields. Names are matched
// case-insensitively but preserved as given. It holds the additional headers
// of a Mail, the ones the typed MailHeader fields do not cover.
type Header struct {
	fields []headerField
}

type headerField struct {
	name  string
	value string
}

// Add appends a field, keeping any existing fields with the same name.
func (h *Header) Add(name, value string) {
	h.fields = append(h.fields, headerField{name, value})
}

// Get returns the value of the first field with the given name and whether
// such a field exists. An empty-valued field is present with value "", which
// is not the same as absent.
func (h *Header) Get(name string) (string, bool) {
	for _, f := range h.fields {
		if strings.EqualFold(f.name, name) {
			return f.value, true
		}
	}
	return "", false
}

// GetAll returns the values of every field with the given name, in order.
func (h *Header) GetAll(name string) []string {
	var vs []string
	for _, f := range h.fields {
		if strings.EqualFold(f.name, name) {
			vs = append(vs, f.value)
		}
	}
	return vs
}

// Set replaces all fields with the given name by a single field holding the
// given value. The replacement takes the position of the first replaced
// field, or is appended when the name is new.
func (h *Header) Set(name, value string) {
	out := h.fields[:0]
	replaced := false
	for _, f := range h.fields {
		if strings.EqualFold(f.name, name) {
			if !replaced {
				out = append(out, headerField{name, value})
				replaced = true
			}
			continue
		}
		out = append(out, f)
	}
	if !replaced {
		out = append(out, headerField{name, value})
	}
	h.fields = out
}

// Del removes every field with the given name.
func (h *Header) Del(name string) {
	out := h.fields[:0]
	for _, f := range h.fields {
		if !strings.EqualFold(f.name, name) {
			out = append(out, f)
		}
	}
	h.fields = out
}

// Names returns the distinct field names in first-appearance order.
func (h *Header) Names() []string {
	var ns []string
	for _, f := range h.fields {
		seen := false
		for _, n := range ns {
			if strings.EqualFold(n, f.name) {
				seen = true
				break
			}
		}
		if !seen {
			ns = append(ns, f.name)
		}
	}
	return ns
}

// Len returns the number of fields, duplicates included.
func (h *Header) Len() int {
	return len(h.fields)
}

// forEach visits every field in order.
func (h *Header) forEach(visit func(name, value string)) {
	for _, f := range h.fields {
		visit(f.name, f.value)
	}
}

// MailHeader holds the typed header fields of a Mail. Fields at their zero
// value are absent and are not serialized.
type MailHeader struct {
	// ID is a caller-assigned handle for correlating mails in application
	// code. It is never serialized.
	ID string

	// From is the author of the message.
	From *MailAddress

	// To, Cc and Bcc are the recipients. Bcc is serialized when present;
	// stripping it before delivery is the transport's business.
	To  []MailAddress
	Cc  []MailAddress
	Bcc []MailAddress

	// ReplyTo names the addresses replies should go to.
	ReplyTo []MailAddress

	// Subject is the subject line.
	Subject string

	// Date is the origination date. The zero time means absent.
	Date time.Time

	// MessageID is the message identifier without the surrounding angle
	// brackets.
	MessageID string

	// UserAgent identifies the generating software.
	UserAgent string

	// Received holds the trace fields in encounter order, bodies verbatim.
	Received []string
}
