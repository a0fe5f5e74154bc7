package emil

import (
	"strings"

	"github.com/sideeffffect/emil/htmltext"
)

// Preview returns a plain-text snippet of the mail body for list views: the
// text rendering when there is one, otherwise the HTML rendering stripped
// down to its text. Whitespace is collapsed to single spaces and the result
// is cut at n runes. A mail with an empty body previews as "".
func Preview(m *Mail, n int) string {
	var src string
	if text, ok, _ := m.Body.Text(); ok {
		src = text
	} else if html, ok, _ := m.Body.HTML(); ok {
		src = htmltext.String(html)
	}

	src = strings.Join(strings.Fields(src), " ")

	runes := []rune(src)
	if n >= 0 && len(runes) > n {
		runes = runes[:n]
	}
	return string(runes)
}
