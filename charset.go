package emil

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

// charsetAliases maps the spellings seen in the wild onto names the IANA
// index knows.
var charsetAliases = map[string]string{
	"utf8":   "utf-8",
	"latin1": "iso-8859-1",
	"ascii":  "us-ascii",
}

// lookupCharset resolves a declared charset name to an encoding. It returns
// nil both for names that mean UTF-8 already and for names the IANA index
// does not know, so a nil result always means "take the byte-sniffing path".
func lookupCharset(name string) encoding.Encoding {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := charsetAliases[name]; ok {
		name = alias
	}

	switch name {
	case "", "utf-8", "us-ascii":
		return nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil
	}
	return enc
}

// decodeText turns stored body bytes into a string. The declared charset is
// trusted when the IANA index knows it. Without a usable declaration the
// bytes are taken as UTF-8 when they validate as such and as ISO-8859-1
// otherwise, which makes decoding total: every input produces some string.
func decodeText(b []byte, declared string) string {
	if enc := lookupCharset(declared); enc != nil {
		if out, err := enc.NewDecoder().Bytes(b); err == nil {
			return string(out)
		}
	}

	if utf8.Valid(b) {
		return string(b)
	}

	out, _ := charmap.ISO8859_1.NewDecoder().Bytes(b)
	return string(out)
}

// encodeText turns a string into body bytes in the requested charset and
// reports the charset actually used. An empty or unknown charset falls back
// to UTF-8. Runes the target charset cannot represent are substituted rather
// than failing the encode.
func encodeText(text, cs string) ([]byte, string) {
	name := strings.ToLower(strings.TrimSpace(cs))
	if alias, ok := charsetAliases[name]; ok {
		name = alias
	}

	enc := lookupCharset(name)
	if enc == nil {
		if name != "us-ascii" || !is7bit(text) {
			name = "utf-8"
		}
		return []byte(text), name
	}

	out, err := encoding.ReplaceUnsupported(enc.NewEncoder()).Bytes([]byte(text))
	if err != nil {
		return []byte(text), "utf-8"
	}
	return out, name
}

func is7bit(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
