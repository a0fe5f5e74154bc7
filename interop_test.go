package emil_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sideeffffect/emil"
)

// A message serialized here must make sense to a foreign MIME parser.
func TestInterop_EmersionReadsOurOutput(t *testing.T) {
	t.Parallel()

	m := &emil.Mail{
		Header: emil.MailHeader{
			From:    &emil.MailAddress{Name: "Pavel", Address: "pavel@example.com"},
			To:      []emil.MailAddress{{Name: "Steve", Address: "steve@example.com"}},
			Subject: "Výlet v sobotu",
		},
		Body: emil.AlternativeBody(
			"Stop by tonight.",
			"<p>Stop by <b>tonight</b>.</p>",
		),
		Attachments: []emil.Attachment{
			{
				Filename:    "menu.txt",
				MimeType:    "text/plain",
				Disposition: emil.DispositionAttached,
				Content:     emil.ContentString("1. soup\n2. fish\n"),
			},
		},
	}

	raw, err := emil.Serialize(m)
	require.NoError(t, err)

	mr, err := mail.CreateReader(bytes.NewReader(raw))
	require.NoError(t, err)

	subject, err := mr.Header.Subject()
	assert.NoError(t, err)
	assert.Equal(t, "Výlet v sobotu", subject)

	tos, err := mr.Header.AddressList("To")
	assert.NoError(t, err)
	require.Len(t, tos, 1)
	assert.Equal(t, "steve@example.com", tos[0].Address)
	assert.Equal(t, "Steve", tos[0].Name)

	var text, html string
	var attachments []string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			ct, _, err := h.ContentType()
			require.NoError(t, err)
			b, err := io.ReadAll(p.Body)
			require.NoError(t, err)
			switch ct {
			case "text/plain":
				text = string(b)
			case "text/html":
				html = string(b)
			}
		case *mail.AttachmentHeader:
			fn, err := h.Filename()
			require.NoError(t, err)
			attachments = append(attachments, fn)
		}
	}

	assert.Contains(t, text, "Stop by tonight.")
	assert.Contains(t, html, "<b>tonight</b>")
	assert.Equal(t, []string{"menu.txt"}, attachments)
}
