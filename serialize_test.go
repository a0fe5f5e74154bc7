package emil_test

import (
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sideeffffect/emil"
)

func TestSerialize_TextOnly(t *testing.T) {
	t.Parallel()

	m := &emil.Mail{
		Header: emil.MailHeader{
			From:    &emil.MailAddress{Address: "sterba@example.com"},
			To:      []emil.MailAddress{{Name: "Steve", Address: "steve@example.com"}},
			Subject: "Dinner",
			Date:    time.Date(2022, time.December, 12, 14, 30, 0, 0, time.UTC),
		},
		Body: emil.TextBody("Stop by tonight.\n"),
	}

	raw, err := emil.Serialize(m)
	require.NoError(t, err)

	const expect = "Date: Mon, 12 Dec 2022 14:30:00 +0000\r\n" +
		"From: sterba@example.com\r\n" +
		"To: Steve <steve@example.com>\r\n" +
		"Subject: Dinner\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-type: text/plain; charset=utf-8\r\n" +
		"Content-transfer-encoding: 7bit\r\n" +
		"\r\n" +
		"Stop by tonight.\r\n"
	assert.Equal(t, expect, string(raw))
}

func TestSerialize_EmptyMail(t *testing.T) {
	t.Parallel()

	raw, err := emil.Serialize(&emil.Mail{})
	require.NoError(t, err)

	s := string(raw)
	assert.Contains(t, s, "Content-type: text/plain")
	assert.Contains(t, s, "MIME-Version: 1.0\r\n")
	assert.True(t, strings.HasSuffix(s, "\r\n"))
}

func TestSerialize_NonASCIIGetsQuotedPrintable(t *testing.T) {
	t.Parallel()

	m := &emil.Mail{Body: emil.TextBody("Přijď na večeři")}

	raw, err := emil.Serialize(m)
	require.NoError(t, err)

	s := string(raw)
	assert.Contains(t, s, "Content-transfer-encoding: quoted-printable\r\n")
	assert.Contains(t, s, "=C5=99")
	assert.NotContains(t, s, "Přijď")
}

func TestSerialize_AlternativeAndAttachment(t *testing.T) {
	t.Parallel()

	m := &emil.Mail{
		Header: emil.MailHeader{Subject: "Menu"},
		Body:   emil.AlternativeBody("See the menu.", "<p>See the <b>menu</b>.</p>"),
		Attachments: []emil.Attachment{
			{
				Filename:    "menu.pdf",
				MimeType:    "application/pdf",
				Disposition: emil.DispositionAttached,
				Content:     emil.ContentString("%PDF-1.4 pretend"),
			},
		},
	}

	raw, err := emil.Serialize(m)
	require.NoError(t, err)

	s := string(raw)
	assert.Contains(t, s, "Content-type: multipart/mixed;")
	assert.Contains(t, s, "Content-type: multipart/alternative;")
	assert.Contains(t, s, "Content-type: text/plain; charset=utf-8")
	assert.Contains(t, s, "Content-type: text/html; charset=utf-8")
	assert.Contains(t, s, `Content-disposition: attachment; filename=menu.pdf`)
	assert.Contains(t, s, "Content-transfer-encoding: base64\r\n")

	// text comes before html within the alternative
	assert.Less(t,
		strings.Index(s, "text/plain"),
		strings.Index(s, "text/html"))

	// each container gets its own boundary
	bs := regexp.MustCompile(`boundary=([0-9a-zA-Z]{30})`).FindAllStringSubmatch(s, -1)
	require.Len(t, bs, 2)
	assert.NotEqual(t, bs[0][1], bs[1][1])
}

func TestSerialize_InlineBecomesRelated(t *testing.T) {
	t.Parallel()

	m := &emil.Mail{
		Body: emil.HTMLBody(`<img src="cid:logo">`),
		Attachments: []emil.Attachment{
			{
				Filename:    "logo.gif",
				MimeType:    "image/gif",
				Disposition: emil.DispositionInline,
				ContentID:   "logo",
				Content:     emil.ContentBytes([]byte("GIF89a-ish")),
			},
		},
	}

	raw, err := emil.Serialize(m)
	require.NoError(t, err)

	s := string(raw)
	assert.Contains(t, s, "Content-type: multipart/related;")
	assert.NotContains(t, s, "multipart/mixed")
	assert.Contains(t, s, "Content-id: <logo>\r\n")
	assert.Contains(t, s, "Content-disposition: inline; filename=logo.gif\r\n")
}

func TestSerialize_BadFromAddress(t *testing.T) {
	t.Parallel()

	m := &emil.Mail{
		Header: emil.MailHeader{
			From: &emil.MailAddress{Address: "not an address"},
		},
	}

	_, err := emil.Serialize(m)
	require.Error(t, err)

	var ee *emil.EncodeError
	assert.ErrorAs(t, err, &ee)
	var iae *emil.InvalidAddressError
	assert.ErrorAs(t, err, &iae)
}

func TestSerialize_MissingAttachmentContent(t *testing.T) {
	t.Parallel()

	m := &emil.Mail{
		Attachments: []emil.Attachment{{Filename: "void.bin"}},
	}

	_, err := emil.Serialize(m)
	require.Error(t, err)

	var ee *emil.EncodeError
	assert.ErrorAs(t, err, &ee)
	assert.Contains(t, err.Error(), "void.bin")
}

func TestSerializeDeserialize_RoundTrip(t *testing.T) {
	t.Parallel()

	date := time.Date(2023, time.June, 6, 8, 15, 0, 0, time.FixedZone("CET", 3600))
	m := &emil.Mail{
		Header: emil.MailHeader{
			From:      &emil.MailAddress{Name: "Pavel Šťastný", Address: "pavel@example.com"},
			To:        []emil.MailAddress{{Name: "Steve", Address: "steve@example.com"}},
			Cc:        []emil.MailAddress{{Address: "archive@example.com"}},
			ReplyTo:   []emil.MailAddress{{Address: "replies@example.com"}},
			Subject:   "Výlet v sobotu",
			Date:      date,
			MessageID: "abc123@example.com",
			UserAgent: "emil/0.1.0",
			Received:  []string{"from a.example.com by b.example.com"},
		},
		Body: emil.AlternativeBody(
			"line one\nline two",
			"<p>Pojď s námi na výlet.</p>",
		),
		Attachments: []emil.Attachment{
			{
				Filename:    "mapa.png",
				MimeType:    "image/png",
				Disposition: emil.DispositionAttached,
				Content:     emil.ContentBytes([]byte{0x89, 'P', 'N', 'G', 0x00, 0x01}),
			},
			{
				Filename:    "logo.gif",
				MimeType:    "image/gif",
				Disposition: emil.DispositionInline,
				ContentID:   "logo",
				Content:     emil.ContentBytes([]byte("GIF89a-ish")),
			},
		},
	}
	m.AdditionalHeaders.Add("X-Spam-Score", "0.1")
	m.AdditionalHeaders.Add("X-Loop", "one")
	m.AdditionalHeaders.Add("X-Loop", "two")

	raw, err := emil.Serialize(m)
	require.NoError(t, err)

	got, err := emil.Deserialize(raw)
	require.NoError(t, err)

	require.NotNil(t, got.Header.From)
	assert.Equal(t, *m.Header.From, *got.Header.From)
	assert.Equal(t, m.Header.To, got.Header.To)
	assert.Equal(t, m.Header.Cc, got.Header.Cc)
	assert.Equal(t, m.Header.ReplyTo, got.Header.ReplyTo)
	assert.Equal(t, "Výlet v sobotu", got.Header.Subject)
	assert.True(t, date.Equal(got.Header.Date))
	assert.Equal(t, "abc123@example.com", got.Header.MessageID)
	assert.Equal(t, "emil/0.1.0", got.Header.UserAgent)
	assert.Equal(t, m.Header.Received, got.Header.Received)

	assert.Equal(t, emil.BodyAlternative, got.Body.Kind())

	text, ok, err := got.Body.Text()
	assert.NoError(t, err)
	assert.True(t, ok)
	// line endings are canonicalized to CRLF on the wire
	assert.Equal(t, "line one\r\nline two", text)

	html, ok, err := got.Body.HTML()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "<p>Pojď s námi na výlet.</p>", html)

	require.Len(t, got.Attachments, 2)
	// declaration order: the related/inline part is written before the
	// mixed-level attachment, so logo.gif walks first
	assert.Equal(t, "logo.gif", got.Attachments[0].Filename)
	assert.Equal(t, emil.DispositionInline, got.Attachments[0].Disposition)
	assert.Equal(t, "logo", got.Attachments[0].ContentID)
	assert.Equal(t, "GIF89a-ish", readOpener(t, got.Attachments[0].Content))

	assert.Equal(t, "mapa.png", got.Attachments[1].Filename)
	assert.Equal(t, emil.DispositionAttached, got.Attachments[1].Disposition)
	assert.Equal(t, "image/png", got.Attachments[1].MimeType)
	assert.Equal(t, string([]byte{0x89, 'P', 'N', 'G', 0x00, 0x01}),
		readOpener(t, got.Attachments[1].Content))

	assert.Equal(t, []string{"0.1"}, got.AdditionalHeaders.GetAll("X-Spam-Score"))
	assert.Equal(t, []string{"one", "two"}, got.AdditionalHeaders.GetAll("X-Loop"))
}

func TestSerialize_WithoutBcc(t *testing.T) {
	t.Parallel()

	m := &emil.Mail{
		Header: emil.MailHeader{
			From: &emil.MailAddress{Address: "sterba@example.com"},
			To:   []emil.MailAddress{{Address: "steve@example.com"}},
			Bcc:  []emil.MailAddress{{Address: "tajny@example.com"}},
		},
		Body: emil.TextBody("For your eyes only."),
	}

	full, err := emil.Serialize(m)
	require.NoError(t, err)
	assert.Contains(t, string(full), "Bcc: tajny@example.com\r\n")

	stripped, err := emil.Serialize(m, emil.WithoutBcc())
	require.NoError(t, err)
	assert.NotContains(t, string(stripped), "Bcc")
	assert.Contains(t, string(stripped), "To: steve@example.com\r\n")
}

// trackingCloser records whether its Close was called.
type trackingCloser struct {
	io.Reader
	closed bool
}

func (c *trackingCloser) Close() error {
	c.closed = true
	return nil
}

func TestSerialize_ClosesOpenersOnFailure(t *testing.T) {
	t.Parallel()

	tc := &trackingCloser{Reader: strings.NewReader("first attachment")}
	m := &emil.Mail{
		Header: emil.MailHeader{
			From: &emil.MailAddress{Address: "sterba@example.com"},
		},
		Body: emil.TextBody("hello"),
		Attachments: []emil.Attachment{
			{
				Filename:    "a.txt",
				MimeType:    "text/plain",
				Disposition: emil.DispositionAttached,
				Content: func() (io.ReadCloser, error) {
					return tc, nil
				},
			},
			{Filename: "b.txt"},
		},
	}

	_, err := emil.Serialize(m)
	require.Error(t, err)

	var ee *emil.EncodeError
	assert.ErrorAs(t, err, &ee)
	assert.True(t, tc.closed)
}
