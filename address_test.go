package emil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sideeffffect/emil"
)

func TestParseMailAddress(t *testing.T) {
	t.Parallel()

	a, err := emil.ParseMailAddress("Andrew Sterling Hanenkamp <sterling@example.com>")
	assert.NoError(t, err)
	assert.Equal(t, "Andrew Sterling Hanenkamp", a.Name)
	assert.Equal(t, "sterling@example.com", a.Address)

	a, err = emil.ParseMailAddress("sterling@example.com")
	assert.NoError(t, err)
	assert.Equal(t, "", a.Name)
	assert.Equal(t, "sterling@example.com", a.Address)
}

func TestParseMailAddress_Folded(t *testing.T) {
	t.Parallel()

	a, err := emil.ParseMailAddress("Andrew Sterling\r\n Hanenkamp <sterling@example.com>")
	assert.NoError(t, err)
	assert.Equal(t, "sterling@example.com", a.Address)
}

func TestParseMailAddress_Invalid(t *testing.T) {
	t.Parallel()

	_, err := emil.ParseMailAddress("")
	assert.Error(t, err)

	var iae *emil.InvalidAddressError
	assert.ErrorAs(t, err, &iae)
}

func TestParseMailAddressList(t *testing.T) {
	t.Parallel()

	as, err := emil.ParseMailAddressList(
		"One Fish <one@example.com>, two@example.com, \"Red: Fish\" <red@example.com>")
	assert.NoError(t, err)
	require.Len(t, as, 3)
	assert.Equal(t, "One Fish", as[0].Name)
	assert.Equal(t, "one@example.com", as[0].Address)
	assert.Equal(t, "two@example.com", as[1].Address)
	assert.Equal(t, "red@example.com", as[2].Address)
}

func TestParseMailAddressList_Empty(t *testing.T) {
	t.Parallel()

	as, err := emil.ParseMailAddressList("   ")
	assert.NoError(t, err)
	assert.NotNil(t, as)
	assert.Len(t, as, 0)
}

func TestMailAddress_String(t *testing.T) {
	t.Parallel()

	a := emil.MailAddress{Name: "Steve", Address: "steve@example.com"}
	assert.Equal(t, "Steve <steve@example.com>", a.String())

	a = emil.MailAddress{Address: "steve@example.com"}
	assert.Equal(t, "steve@example.com", a.String())

	txt, err := emil.MailAddress{Name: "Steve", Address: "steve@example.com"}.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "Steve <steve@example.com>", string(txt))
}

func TestMailAddress_Encode(t *testing.T) {
	t.Parallel()

	enc, err := emil.MailAddress{Name: "Steve", Address: "steve@example.com"}.Encode()
	assert.NoError(t, err)
	assert.Equal(t, "Steve <steve@example.com>", enc)

	enc, err = emil.MailAddress{Address: "steve@example.com"}.Encode()
	assert.NoError(t, err)
	assert.Equal(t, "steve@example.com", enc)
}

func TestMailAddress_Encode_Quoting(t *testing.T) {
	t.Parallel()

	enc, err := emil.MailAddress{
		Name:    "Fish, Red",
		Address: "red@example.com",
	}.Encode()
	assert.NoError(t, err)
	assert.Equal(t, `"Fish, Red" <red@example.com>`, enc)

	enc, err = emil.MailAddress{
		Name:    `He said "hi"`,
		Address: "greeter@example.com",
	}.Encode()
	assert.NoError(t, err)
	assert.Equal(t, `"He said \"hi\"" <greeter@example.com>`, enc)
}

func TestMailAddress_Encode_NonASCII(t *testing.T) {
	t.Parallel()

	enc, err := emil.MailAddress{
		Name:    "Pavel Šťastný",
		Address: "pavel@example.com",
	}.Encode()
	assert.NoError(t, err)
	assert.Contains(t, enc, "=?utf-8?")
	assert.Contains(t, enc, "<pavel@example.com>")

	// the encoded form must survive a round-trip through the parser
	a, err := emil.ParseMailAddress(enc)
	assert.NoError(t, err)
	assert.Equal(t, "pavel@example.com", a.Address)
}

func TestMailAddress_Encode_InvalidSpec(t *testing.T) {
	t.Parallel()

	_, err := emil.MailAddress{Name: "Broken", Address: "not an address"}.Encode()
	assert.Error(t, err)

	var iae *emil.InvalidAddressError
	assert.ErrorAs(t, err, &iae)
}
