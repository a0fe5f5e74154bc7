// Package builder constructs emil.Mail values from an ordered list of typed
// directives:
//
//	m, err := builder.New(
//	    builder.From("sterba@example.com"),
//	    builder.To("steve@example.com"),
//	    builder.Subject("Dinner"),
//	    builder.TextBody("Stop by tonight."),
//	    builder.AttachFile("menu.pdf"),
//	)
//
// Scalar directives override what earlier directives set; list directives
// append. Address-taking directives accept either a string, parsed on the
// spot, or an emil.MailAddress.
package builder

import (
	"fmt"
	"mime"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sideeffffect/emil"
)

// Draft is the mail under construction. Directives mutate it in order; New
// finishes it into an emil.Mail.
type Draft struct {
	Mail emil.Mail

	text, html *string
	genID      bool
}

// Directive is one step of building a mail.
type Directive interface {
	Apply(*Draft) error
}

type directiveFunc func(*Draft) error

func (f directiveFunc) Apply(d *Draft) error { return f(d) }

// New folds the directives over an empty draft and returns the finished
// mail. The first directive error aborts the build.
func New(ds ...Directive) (*emil.Mail, error) {
	d := &Draft{}
	for _, dir := range ds {
		if err := dir.Apply(d); err != nil {
			return nil, err
		}
	}

	switch {
	case d.text != nil && d.html != nil:
		d.Mail.Body = emil.AlternativeBody(*d.text, *d.html)
	case d.html != nil:
		d.Mail.Body = emil.HTMLBody(*d.html)
	case d.text != nil:
		d.Mail.Body = emil.TextBody(*d.text)
	}

	if d.genID && d.Mail.Header.MessageID == "" {
		d.Mail.Header.MessageID = generateMessageID(d.Mail.Header.From)
	}

	return &d.Mail, nil
}

// toAddress accepts an emil.MailAddress as-is and parses a string. Anything
// else is a programming error reported as such.
func toAddress(v any) (emil.MailAddress, error) {
	switch a := v.(type) {
	case emil.MailAddress:
		return a, nil
	case *emil.MailAddress:
		return *a, nil
	case string:
		return emil.ParseMailAddress(a)
	}
	return emil.MailAddress{}, fmt.Errorf("address must be a string or emil.MailAddress, got %T", v)
}

func toAddresses(vs []any) ([]emil.MailAddress, error) {
	as := make([]emil.MailAddress, 0, len(vs))
	for _, v := range vs {
		a, err := toAddress(v)
		if err != nil {
			return nil, err
		}
		as = append(as, a)
	}
	return as, nil
}

// From sets the author of the mail, replacing any earlier From.
func From(a any) Directive {
	return directiveFunc(func(d *Draft) error {
		ma, err := toAddress(a)
		if err != nil {
			return err
		}
		d.Mail.Header.From = &ma
		return nil
	})
}

// To appends recipients.
func To(as ...any) Directive {
	return appendAddresses(as, func(d *Draft, ms []emil.MailAddress) {
		d.Mail.Header.To = append(d.Mail.Header.To, ms...)
	})
}

// Cc appends carbon-copy recipients.
func Cc(as ...any) Directive {
	return appendAddresses(as, func(d *Draft, ms []emil.MailAddress) {
		d.Mail.Header.Cc = append(d.Mail.Header.Cc, ms...)
	})
}

// Bcc appends blind-carbon-copy recipients.
func Bcc(as ...any) Directive {
	return appendAddresses(as, func(d *Draft, ms []emil.MailAddress) {
		d.Mail.Header.Bcc = append(d.Mail.Header.Bcc, ms...)
	})
}

// ReplyTo appends reply addresses.
func ReplyTo(as ...any) Directive {
	return appendAddresses(as, func(d *Draft, ms []emil.MailAddress) {
		d.Mail.Header.ReplyTo = append(d.Mail.Header.ReplyTo, ms...)
	})
}

func appendAddresses(as []any, add func(*Draft, []emil.MailAddress)) Directive {
	return directiveFunc(func(d *Draft) error {
		ms, err := toAddresses(as)
		if err != nil {
			return err
		}
		add(d, ms)
		return nil
	})
}

// Subject sets the subject line.
func Subject(s string) Directive {
	return directiveFunc(func(d *Draft) error {
		d.Mail.Header.Subject = s
		return nil
	})
}

// Date sets the origination date.
func Date(t time.Time) Directive {
	return directiveFunc(func(d *Draft) error {
		d.Mail.Header.Date = t
		return nil
	})
}

// MessageID sets the message identifier. Surrounding angle brackets are
// stripped, the model stores the bare identifier.
func MessageID(id string) Directive {
	return directiveFunc(func(d *Draft) error {
		d.Mail.Header.MessageID = strings.Trim(id, "<>")
		d.genID = false
		return nil
	})
}

// GeneratedMessageID asks for a fresh unique message identifier, built from a
// random UUID and the domain of the From address. The identifier is generated
// when New finishes the draft, so From may come later in the directive list.
func GeneratedMessageID() Directive {
	return directiveFunc(func(d *Draft) error {
		d.Mail.Header.MessageID = ""
		d.genID = true
		return nil
	})
}

func generateMessageID(from *emil.MailAddress) string {
	domain := "localhost"
	if from != nil {
		if _, dom, ok := strings.Cut(from.Address, "@"); ok && dom != "" {
			domain = dom
		}
	}
	return uuid.New().String() + "@" + domain
}

// UserAgent sets the User-agent header value.
func UserAgent(ua string) Directive {
	return directiveFunc(func(d *Draft) error {
		d.Mail.Header.UserAgent = ua
		return nil
	})
}

// TextBody sets the plain text body. Combined with HTMLBody it produces an
// alternative body carrying both renderings.
func TextBody(text string) Directive {
	return directiveFunc(func(d *Draft) error {
		d.text = &text
		return nil
	})
}

// HTMLBody sets the HTML body. Combined with TextBody it produces an
// alternative body carrying both renderings.
func HTMLBody(html string) Directive {
	return directiveFunc(func(d *Draft) error {
		d.html = &html
		return nil
	})
}

// Attach appends an attachment as given.
func Attach(att emil.Attachment) Directive {
	return directiveFunc(func(d *Draft) error {
		d.Mail.Attachments = append(d.Mail.Attachments, att)
		return nil
	})
}

// AttachInline appends an attachment forced to inline disposition, for
// content referenced from the HTML body by Content-ID.
func AttachInline(att emil.Attachment) Directive {
	return directiveFunc(func(d *Draft) error {
		att.Disposition = emil.DispositionInline
		d.Mail.Attachments = append(d.Mail.Attachments, att)
		return nil
	})
}

// AttachFile appends the named file as an attachment. The filename is the
// base name of the path and the MIME type is inferred from the extension,
// falling back to application/octet-stream. The file is read at
// serialization, not here.
func AttachFile(p string) Directive {
	return directiveFunc(func(d *Draft) error {
		mt := mime.TypeByExtension(filepath.Ext(p))
		if mt == "" {
			mt = "application/octet-stream"
		}
		d.Mail.Attachments = append(d.Mail.Attachments, emil.Attachment{
			Filename:    filepath.Base(p),
			MimeType:    mt,
			Disposition: emil.DispositionAttached,
			Content:     emil.ContentFile(p),
		})
		return nil
	})
}

// AttachURL appends an attachment fetched from the given URL. The fetch
// happens at serialization, not here. The filename is the last element of
// the URL path, when it has one.
func AttachURL(rawURL string) Directive {
	return directiveFunc(func(d *Draft) error {
		var name string
		if u, err := url.Parse(rawURL); err == nil {
			if base := path.Base(u.Path); base != "." && base != "/" {
				name = base
			}
		}
		mt := mime.TypeByExtension(path.Ext(name))
		if mt == "" {
			mt = "application/octet-stream"
		}
		d.Mail.Attachments = append(d.Mail.Attachments, emil.Attachment{
			Filename:    name,
			MimeType:    mt,
			Disposition: emil.DispositionAttached,
			Content:     emil.ContentURL(rawURL),
		})
		return nil
	})
}

// CustomHeader appends one additional header field per value given.
func CustomHeader(name string, values ...string) Directive {
	return directiveFunc(func(d *Draft) error {
		for _, v := range values {
			d.Mail.AdditionalHeaders.Add(name, v)
		}
		return nil
	})
}
