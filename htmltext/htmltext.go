// Package htmltext extracts the readable text from HTML content. It tokenizes
// the input as it goes, so arbitrarily large documents can be stripped without
// holding the markup in memory.
package htmltext

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blocks are the elements that end a run of inline text. Each gets turned
// into a line break in the output.
var blocks = map[atom.Atom]struct{}{
	atom.Address: {}, atom.Article: {}, atom.Aside: {}, atom.Blockquote: {},
	atom.Br: {}, atom.Div: {}, atom.Dl: {}, atom.Dt: {}, atom.Dd: {},
	atom.Fieldset: {}, atom.Figure: {}, atom.Footer: {}, atom.Form: {},
	atom.H1: {}, atom.H2: {}, atom.H3: {}, atom.H4: {}, atom.H5: {}, atom.H6: {},
	atom.Header: {}, atom.Hr: {}, atom.Li: {}, atom.Main: {}, atom.Nav: {},
	atom.Ol: {}, atom.P: {}, atom.Pre: {}, atom.Section: {}, atom.Table: {},
	atom.Td: {}, atom.Th: {}, atom.Tr: {}, atom.Ul: {},
}

// silenced are the elements whose character data is not text at all.
var silenced = map[atom.Atom]struct{}{
	atom.Script: {}, atom.Style: {}, atom.Head: {}, atom.Title: {},
	atom.Template: {},
}

// Reader yields the text content of the HTML read from the underlying
// io.Reader. Markup is dropped, script and style content is skipped, character
// entities are resolved, block elements become line breaks, and the alt text
// of images is kept.
type Reader struct {
	z    *html.Tokenizer
	buf  bytes.Buffer
	mute int
	err  error
}

// NewReader returns a Reader that strips the HTML arriving from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{z: html.NewTokenizer(r)}
}

// Read implements io.Reader.
func (tr *Reader) Read(p []byte) (int, error) {
	for tr.buf.Len() == 0 && tr.err == nil {
		tr.advance()
	}

	if tr.buf.Len() > 0 {
		return tr.buf.Read(p)
	}
	return 0, tr.err
}

// advance consumes one token and appends whatever text it contributes.
func (tr *Reader) advance() {
	switch tr.z.Next() {
	case html.ErrorToken:
		tr.err = tr.z.Err()

	case html.TextToken:
		if tr.mute == 0 {
			// Text() arrives with character entities already resolved
			tr.buf.Write(tr.z.Text())
		}

	case html.StartTagToken:
		name, hasAttr := tr.z.TagName()
		a := atom.Lookup(name)
		if _, ok := silenced[a]; ok {
			tr.mute++
			return
		}
		tr.emitTag(a, hasAttr)

	case html.SelfClosingTagToken:
		name, hasAttr := tr.z.TagName()
		tr.emitTag(atom.Lookup(name), hasAttr)

	case html.EndTagToken:
		name, _ := tr.z.TagName()
		a := atom.Lookup(name)
		if _, ok := silenced[a]; ok {
			if tr.mute > 0 {
				tr.mute--
			}
			return
		}
		if _, ok := blocks[a]; ok && tr.mute == 0 {
			tr.buf.WriteByte('\n')
		}
	}
}

func (tr *Reader) emitTag(a atom.Atom, hasAttr bool) {
	if tr.mute > 0 {
		return
	}

	if a == atom.Img && hasAttr {
		for {
			key, val, more := tr.z.TagAttr()
			if string(key) == "alt" && len(val) > 0 {
				tr.buf.Write(val)
				tr.buf.WriteByte(' ')
			}
			if !more {
				break
			}
		}
	}

	if _, ok := blocks[a]; ok {
		tr.buf.WriteByte('\n')
	}
}

// Strip reads HTML from r until EOF and returns the text content.
func Strip(r io.Reader) (string, error) {
	text, err := io.ReadAll(NewReader(r))
	if err != nil {
		return "", err
	}
	return string(text), nil
}

// String strips the given HTML and returns the text content. Tokenizing a
// string cannot fail, so this never returns an error.
func String(src string) string {
	text, _ := Strip(strings.NewReader(src))
	return text
}
