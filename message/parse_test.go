package message_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sideeffffect/emil/message"
	"github.com/sideeffffect/emil/message/header/field"
)

const nestedMsg = `To: noreply@example.com
From: sender@example.com
Subject: nested message
Content-type: multipart/mixed; boundary=outer

--outer
Content-type: multipart/alternative; boundary=inner

--inner
Content-type: text/plain

Plain text form.
--inner
Content-type: text/html

<p>HTML form.</p>
--inner--
--outer
Content-type: text/csv
Content-disposition: attachment; filename=data.csv

a,b
1,2
--outer--`

func TestParse_RoundTrip(t *testing.T) {
	t.Parallel()

	m, err := message.Parse(strings.NewReader(nestedMsg))
	require.NoError(t, err)

	require.True(t, m.IsMultipart())
	assert.Len(t, m.GetParts(), 2)
	assert.True(t, m.GetParts()[0].IsMultipart())
	assert.Len(t, m.GetParts()[0].GetParts(), 2)

	buf := &bytes.Buffer{}
	n, err := m.WriteTo(buf)
	assert.Equal(t, int64(len(nestedMsg)), n)
	assert.NoError(t, err)
	assert.Equal(t, nestedMsg, buf.String())
}

func TestParse_WithBadlyFolded(t *testing.T) {
	t.Parallel()

	const badlyFolded = "Subject: Wherein I make\n    my case for\n\ttotal pandemonium\nTo: \"Your Grace\" <grace@example.com>\n\nConsider the following.\n"

	m, err := message.Parse(strings.NewReader(badlyFolded))
	require.NoError(t, err)

	s, err := m.GetHeader().GetSubject()
	assert.NoError(t, err)
	assert.Equal(t, "Wherein I make    my case for\ttotal pandemonium", s)

	buf := &bytes.Buffer{}
	n, err := m.WriteTo(buf)
	assert.Equal(t, int64(len(badlyFolded)), n)
	assert.NoError(t, err)
	assert.Equal(t, badlyFolded, buf.String())
}

func TestParse_WithoutMultipart(t *testing.T) {
	t.Parallel()

	m, err := message.Parse(strings.NewReader(nestedMsg), message.WithoutMultipart())
	require.NoError(t, err)

	op, isOpaque := m.(*message.Opaque)
	require.True(t, isOpaque)
	assert.False(t, op.IsMultipart())

	buf := &bytes.Buffer{}
	_, err = op.WriteTo(buf)
	assert.NoError(t, err)
	assert.Equal(t, nestedMsg, buf.String())
}

func TestParse_WithoutRecursion(t *testing.T) {
	t.Parallel()

	m, err := message.Parse(strings.NewReader(nestedMsg), message.WithoutRecursion())
	require.NoError(t, err)

	require.True(t, m.IsMultipart())
	parts := m.GetParts()
	require.Len(t, parts, 2)

	// one level deep only: the alternative container stays opaque
	assert.False(t, parts[0].IsMultipart())
	mt, err := parts[0].GetHeader().GetMediaType()
	assert.NoError(t, err)
	assert.Equal(t, "multipart/alternative", mt)

	buf := &bytes.Buffer{}
	_, err = m.WriteTo(buf)
	assert.NoError(t, err)
	assert.Equal(t, nestedMsg, buf.String())
}

func TestParse_DecodeTransferEncoding(t *testing.T) {
	t.Parallel()

	const encodedMsg = `Subject: greetings
Content-type: text/plain
Content-transfer-encoding: base64

SGVsbG8gV29ybGQh`

	m, err := message.Parse(strings.NewReader(encodedMsg))
	require.NoError(t, err)
	assert.True(t, m.IsEncoded())

	raw, err := io.ReadAll(m.GetReader())
	assert.NoError(t, err)
	assert.Equal(t, "SGVsbG8gV29ybGQh", string(raw))

	m, err = message.Parse(
		strings.NewReader(encodedMsg),
		message.DecodeTransferEncoding(),
	)
	require.NoError(t, err)
	assert.False(t, m.IsEncoded())

	dec, err := io.ReadAll(m.GetReader())
	assert.NoError(t, err)
	assert.Equal(t, "Hello World!", string(dec))
}

func TestParse_MissingBoundary(t *testing.T) {
	t.Parallel()

	const noBoundary = `Subject: broken
Content-type: multipart/mixed

--somewhere
Content-type: text/plain

Hello.
--somewhere--`

	m, err := message.Parse(strings.NewReader(noBoundary))
	assert.ErrorIs(t, err, message.ErrNoBoundary)

	// the partially parsed message is still usable as a flat body
	require.NotNil(t, m)
	assert.False(t, m.IsMultipart())
}

func TestParse_LimitErrors(t *testing.T) {
	t.Parallel()

	_, err := message.Parse(
		strings.NewReader(nestedMsg),
		message.WithChunkSize(16),
		message.WithMaxHeaderLength(32),
	)
	assert.ErrorIs(t, err, message.ErrLargeHeader)
}

func TestParse_HeaderNeverEnds(t *testing.T) {
	t.Parallel()

	m, err := message.Parse(strings.NewReader("Subject: dangling\r\nTo: x@example.com\r\n"))
	require.NoError(t, err)

	assert.False(t, m.IsMultipart())
	assert.Nil(t, m.GetReader())

	subject, err := m.GetHeader().Get("Subject")
	assert.NoError(t, err)
	assert.Equal(t, "dangling", subject)

	// a multipart declaration with a dangling header must not be split
	m, err = message.Parse(strings.NewReader("Content-type: multipart/mixed; boundary=x\r\n"))
	require.NoError(t, err)
	assert.False(t, m.IsMultipart())
	assert.Nil(t, m.GetReader())
}

func TestParse_BadStartWarning(t *testing.T) {
	t.Parallel()

	const withJunk = "junk with no colon\r\nSubject: still here\r\n\r\nThe body.\r\n"

	m, err := message.Parse(strings.NewReader(withJunk))
	require.Error(t, err)

	var badStart *field.BadStartError
	require.ErrorAs(t, err, &badStart)
	assert.Equal(t, "junk with no colon\r\n", string(badStart.BadStart))

	require.NotNil(t, m)
	subject, err := m.GetHeader().Get("Subject")
	assert.NoError(t, err)
	assert.Equal(t, "still here", subject)

	body, err := io.ReadAll(m.GetReader())
	assert.NoError(t, err)
	assert.Equal(t, "The body.\r\n", string(body))
}
