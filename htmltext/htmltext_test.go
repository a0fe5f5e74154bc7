package htmltext_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sideeffffect/emil/htmltext"
)

func TestString(t *testing.T) {
	t.Parallel()

	const src = `<html><head><title>Ignore me</title>
<style>body { color: red }</style></head>
<body><h1>Hello</h1><p>This is <b>bold</b> &amp; this is not.</p>
<script>var x = "<p>not text</p>";</script>
<p><img src="cid:logo" alt="The Logo"> trailing text</p>
</body></html>`

	text := htmltext.String(src)

	assert.NotContains(t, text, "Ignore me")
	assert.NotContains(t, text, "color: red")
	assert.NotContains(t, text, "not text")
	assert.Contains(t, text, "Hello")
	assert.Contains(t, text, "This is bold & this is not.")
	assert.Contains(t, text, "The Logo")
	assert.Contains(t, text, "trailing text")
}

func TestString_blocksBreakLines(t *testing.T) {
	t.Parallel()

	text := htmltext.String("<p>one</p><p>two</p><div>three</div>")
	assert.Equal(t, []string{"one", "two", "three"}, strings.Fields(text))

	// inline elements do not split words
	text = htmltext.String("<span>a</span><span>b</span>")
	assert.Equal(t, "ab", strings.TrimSpace(text))
}

func TestStrip_largeInput(t *testing.T) {
	t.Parallel()

	src := "<ul>" + strings.Repeat("<li>item</li>", 5000) + "</ul>"
	text, err := htmltext.Strip(strings.NewReader(src))
	assert.NoError(t, err)
	assert.Equal(t, 5000, strings.Count(text, "item"))
}
