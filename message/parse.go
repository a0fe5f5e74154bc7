package message

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/sideeffffect/emil/internal/scanner"
	"github.com/sideeffffect/emil/message/header"
	"github.com/sideeffffect/emil/message/header/field"
	"github.com/sideeffffect/emil/message/transfer"
)

// Defaults for the Parse() options.
const (
	// DefaultMaxMultipartDepth is the default depth the parser will recurse
	// into a message.
	DefaultMaxMultipartDepth = 10

	// DefaultChunkSize is the default size of the chunks read from the input
	// while splitting the message into header and body.
	DefaultChunkSize = 16_384

	// DefaultMaxHeaderLength is the default maximum byte length to scan
	// before giving up on finding the end of the header.
	DefaultMaxHeaderLength = bufio.MaxScanTokenSize

	// DefaultMaxPartLength is the default maximum byte length to scan before
	// giving up on a message part at any given level.
	DefaultMaxPartLength = bufio.MaxScanTokenSize
)

// Errors that occur during parsing.
var (
	// ErrNoBoundary is returned by Parse when a multipart Content-type field
	// carries no boundary parameter.
	ErrNoBoundary = errors.New("the boundary parameter is missing from Content-type")

	// ErrLargeHeader is returned by Parse when the header runs longer than
	// the WithMaxHeaderLength option (or DefaultMaxHeaderLength).
	ErrLargeHeader = errors.New("the header exceeds the maximum parse length")

	// ErrLargePart is returned by Parse when a part runs longer than the
	// WithMaxPartLength option (or DefaultMaxPartLength).
	ErrLargePart = errors.New("a message part exceeds the maximum parse length")
)

var splits = [][]byte{
	[]byte("\x0d\x0a\x0d\x0a"), // \r\n\r\n
	[]byte("\x0a\x0d\x0a\x0d"), // \n\r\n\r, extremely unlikely, possibly never
	[]byte("\x0a\x0a"),         // \n\n
	[]byte("\x0d\x0d"),         // \r\r
}

type parser struct {
	maxHeaderLen int
	maxPartLen   int
	maxDepth     int
	chunkSize    int
	decode       bool
}

func (pr *parser) clone() *parser {
	p := *pr
	return &p
}

var defaultParser = &parser{
	maxHeaderLen: DefaultMaxHeaderLength,
	maxPartLen:   DefaultMaxPartLength,
	maxDepth:     DefaultMaxMultipartDepth,
	chunkSize:    DefaultChunkSize,
	decode:       false,
}

// ParseOption tunes how the Parse function works.
type ParseOption func(pr *parser)

// WithMaxHeaderLength is a ParseOption that caps how large the buffer may
// grow while hunting for the end of the header. The input is read a chunk at
// a time until the header/body split is found, and this setting keeps bad
// input from turning into an out of memory error; parsing exits with
// ErrLargeHeader instead. Values at or below zero remove the cap. The default
// is DefaultMaxHeaderLength.
func WithMaxHeaderLength(n int) ParseOption {
	return func(pr *parser) { pr.maxHeaderLen = n }
}

// WithMaxPartLength is a ParseOption that caps how large the buffer may grow
// while scanning for message parts at any level. Parts are scanned per depth
// level, so this must accommodate the largest single part at each level being
// parsed. Oversized parts fail the parse with ErrLargePart. There is, at this
// time, no way to disable this limit.
func WithMaxPartLength(n int) ParseOption {
	return func(pr *parser) { pr.maxPartLen = n }
}

// DecodeTransferEncoding is a ParseOption that enables decoding of the
// Content-transfer-encoding. By default the encoding is left in place, which
// makes round-tripping messages safer. Enable this when you want to display
// or process the body content.
func DecodeTransferEncoding() ParseOption {
	return func(pr *parser) { pr.decode = true }
}

// WithChunkSize is a ParseOption that controls how many bytes are read at a
// time while parsing. The default is DefaultChunkSize.
func WithChunkSize(chunkSize int) ParseOption {
	return func(pr *parser) { pr.chunkSize = chunkSize }
}

// WithMaxDepth is a ParseOption that controls how deep the parser recurses
// into a multipart message. The default is DefaultMaxMultipartDepth.
func WithMaxDepth(maxDepth int) ParseOption {
	return func(pr *parser) { pr.maxDepth = maxDepth }
}

// WithoutMultipart is a ParseOption that disables multipart parsing entirely,
// so Parse() always returns an *Opaque.
//
// Use this when all you care about is the top-level header. For large
/// messages the memory savings are considerable: the header is read, parsed,
// and stored, but only a single chunk of the body is read and the rest of the
// input io.Reader is left untouched.
func WithoutMultipart() ParseOption {
	return func(pr *parser) { pr.maxDepth = 0 }
}

// WithoutRecursion is a ParseOption that allows only a single level of
// multipart parsing.
func WithoutRecursion() ParseOption {
	return func(pr *parser) { pr.maxDepth = 1 }
}

// WithUnlimitedRecursion is a ParseOption that lets the parser split
// sub-parts to any depth.
func WithUnlimitedRecursion() ParseOption {
	return func(pr *parser) { pr.maxDepth = -1 }
}

// searchForSplit looks for the header/body split. It returns -1, nil when
// none is found. Otherwise it returns the position just past the split and
// the line break the header uses.
func searchForSplit(buf []byte, subpart bool) (pos int, crlf []byte) {
	if subpart {
		// a sub-part may have an empty header, in which case its first bytes
		// are a lone line break
		for _, s := range splits {
			if testPos := bytes.Index(buf, s[0:len(s)/2]); testPos == 0 {
				pos = testPos + len(s)/2
				crlf = s[0 : len(s)/2]
				return
			}
		}
	}

	pos = -1
	for _, s := range splits {
		if testPos := bytes.Index(buf, s); testPos > -1 {
			pos = testPos + len(s)
			crlf = s[0 : len(s)/2]
			return
		}
	}
	return
}

// splitHeadFromBody reads from the input until it finds the split between the
// message header and the message body, along with the line break the message
// uses. It returns the header bytes, the line break, and a reader positioned
// at the start of the body.
func (pr *parser) splitHeadFromBody(r io.Reader, subpart bool) ([]byte, []byte, io.Reader, error) {
	p := make([]byte, pr.chunkSize)
	buf := &bytes.Buffer{}
	searched := 0
	for {
		n, err := r.Read(p)

		if pr.maxHeaderLen > 0 && n+buf.Len() > pr.maxHeaderLen {
			return nil, nil, nil, ErrLargeHeader
		}

		isEof := false
		if errors.Is(err, io.EOF) {
			isEof = true
		} else if err != nil {
			return nil, nil, nil, err
		}

		_, err = buf.Write(p[:n])
		if err != nil {
			return nil, nil, nil, err
		}

		// check the unsearched tail of the buffer for the end of header
		pos, crlf := searchForSplit(buf.Bytes()[searched:], subpart)
		if pos >= 0 {
			pos += searched
			// found the split, the header is everything up to it
			hdr := make([]byte, pos)
			for hdrRead, n := 0, 0; hdrRead < pos; hdrRead += n {
				n, err = buf.Read(hdr[hdrRead:])
				if err != nil {
					return nil, nil, nil, err
				}
			}

			// the rest is the body
			var body io.Reader
			if _, isBytesReader := r.(*bytes.Reader); isBytesReader {
				// A bytes.Reader is what we use internally when parsing the
				// parts of a multipart message, so pull its remaining data
				// onto the buffer we already have. The header bytes were
				// consumed from the buffer above, which also frees them.
				_, err = buf.ReadFrom(r)
				if err != nil {
					return nil, nil, nil, err
				}
				body = bytes.NewReader(buf.Bytes())
			} else {
				// Anything else is an original input io.Reader. Leaving it
				// unread keeps memory use down for Opaque messages whose
				// bodies nobody ends up reading.
				body = &remainder{buf.Bytes(), r}
			}
			return hdr, crlf, body, nil
		}

		if isEof {
			break
		}

		// the last 3 bytes might be the start of the split point
		searched = buf.Len() - 3
		if searched < 0 {
			searched = 0
		}
	}

	// No header/body split found, so treat the whole message as header.
	// Whatever line break appears in it wins.
	for _, s := range splits {
		crlf := s[0 : len(s)/2]
		if bytes.Contains(buf.Bytes(), crlf) {
			return buf.Bytes(), crlf, nil, nil
		}
	}

	// or the ultimate fallback is...
	return buf.Bytes(), []byte("\x0d"), nil, nil
}

// parseToOpaque turns a reader into an *Opaque.
func (pr *parser) parseToOpaque(r io.Reader, subpart bool) (*Opaque, error) {
	hdr, crlf, body, err := pr.splitHeadFromBody(r, subpart)
	if err != nil {
		return nil, err
	}

	head, err := header.Parse(hdr, header.Break(crlf))
	if err != nil {
		// a bad start leaves the rest of the header parsed and usable, so
		// hand the part back along with the warning
		var badStart *field.BadStartError
		if head == nil || !errors.As(err, &badStart) {
			return nil, err
		}
	}

	if pr.decode {
		body = transfer.ApplyTransferDecoding(head, body)
	}

	return &Opaque{*head, body, !pr.decode}, err
}

// Parse consumes input from the given reader and returns a Generic message
// containing the parsed content. Parsing proceeds in two or three phases.
//
// During the first phase, the io.Reader is read a chunk at a time, as set by
// the WithChunkSize() option (default DefaultChunkSize), looking for a double
// line break of some kind ("\r\n\r\n" and "\n\n" being the common ones). The
// break found determines the line break used to split the header into fields,
// and the bytes preceding it are parsed as the header.
//
// The unconsumed tail of the final chunk plus the rest of the io.Reader then
// make up the body of an *Opaque message.
//
// If the accumulated chunks outgrow the WithMaxHeaderLength() option (default
// DefaultMaxHeaderLength) before the double line break turns up, Parse fails
// with ErrLargeHeader, possibly leaving the io.Reader partially read.
//
// In the second phase, the *Opaque may be upgraded to a *Multipart when the
// message looks like one. If the Content-type is a multipart/* MIME type and
// the depth settings allow (WithMaxDepth() and friends), the body is scanned
// and split on the boundary parameter of the Content-type. Each part must fit
// within the WithMaxPartLength() option (default DefaultMaxPartLength) or the
// parse fails with ErrLargePart.
//
// The split-out parts each go through the same two phases themselves, until
// either the deepest part has been parsed or the maximum depth is reached.
//
// If the DecodeTransferEncoding() option is given, a third phase decodes the
// Content-transfer-encoding of every leaf part that has one. This is not the
// default because a goal of this library is preserving original bytes:
// decoding and re-encoding is very likely to change a message in trivial ways
// that break byte-for-byte round-tripping. When the third phase does run,
// WriteTo() re-encodes the data freshly on output, while reading a part's
// io.Reader yields the decoded bytes.
//
// Errors anywhere in the process can fail the whole parse, ErrLargeHeader and
// ErrLargePart especially. Whenever possible, though, the partially parsed
// message is returned alongside the error.
//
// The given io.Reader may or may not be fully consumed on return, whether an
// error occurred or not. Reading all body content of all sub-parts, or
// calling WriteTo() on the returned message, consumes it fully.
func Parse(r io.Reader, opts ...ParseOption) (Generic, error) {
	pr := defaultParser.clone()
	for _, opt := range opts {
		opt(pr)
	}

	msg, err := pr.parseToOpaque(r, false)
	if err != nil {
		var badStart *field.BadStartError
		if msg == nil || !errors.As(err, &badStart) {
			return msg, err
		}

		// recoverable, keep going and return the warning with the result
		gmsg, perr := pr.parse(msg, 0)
		if perr != nil {
			return gmsg, perr
		}
		return gmsg, err
	}

	return pr.parse(msg, 0)
}

// parse recursively upgrades an *Opaque into a *Multipart wherever the
// header and depth settings call for it.
func (pr *parser) parse(msg *Opaque, depth int) (Generic, error) {
	// too deep, stop here and return the part unsplit
	if pr.maxDepth >= 0 && depth >= pr.maxDepth {
		return msg, nil
	}

	pv, err := msg.GetParamValue(header.ContentType)
	if err != nil {
		return msg, nil
	}

	// only multipart/* and message/* have parts to split
	if pv.Type() != "multipart" && pv.Type() != "message" {
		return msg, nil
	}

	// a multipart type without a boundary cannot be split
	if pv.Boundary() == "" {
		return msg, ErrNoBoundary
	}

	// no body, nothing to split; happens when the header never ends
	if msg.Reader == nil {
		return msg, nil
	}

	// Initial boundaries look like --boundary and the final one like
	// --boundary--, each on a line of its own. Every boundary but the very
	// first therefore begins with a newline, and the first might not. We
	// search without the newline until the first boundary is found, then with
	// it for the rest.
	//
	// Newline handling is nuanced in order to preserve the original message
	// for round-tripping. The newline before the start boundary (if any)
	// belongs to the prefix. The newline after the final boundary (if any)
	// belongs to the suffix. The newlines around middle boundaries belong to
	// the boundary itself, not to the parts between them.
	sb := []byte(fmt.Sprintf("--%s%s", pv.Boundary(), msg.Break()))
	mb := []byte(fmt.Sprintf("%s--%s%s", msg.Break(), pv.Boundary(), msg.Break()))
	eb := []byte(fmt.Sprintf("%s--%s--%s", msg.Break(), pv.Boundary(), msg.Break()))
	fb := []byte(fmt.Sprintf("%s--%s--", msg.Break(), pv.Boundary()))

	const (
		modeStart = iota
		modeMiddle
		modeEnd
	)

	// This split function returns the parts as tokens and captures the
	// prefix and suffix in the vars here as it encounters them.
	sc := bufio.NewScanner(msg.Reader)
	sc.Buffer(make([]byte, pr.chunkSize), pr.maxPartLen)
	var prefix, suffix []byte
	mode := modeStart
	awaitingPrefix := true
	sc.Split(
		scanner.ExitByAdvance( // plain bufio.SplitFunc cannot discard-and-retry
			func(data []byte, atEOF bool) (advance int, token []byte, err error) {
				switch mode {
				case modeStart:
					// looking for a zero-length prefix
					if atEOF || len(data) >= len(sb) {
						if len(data) >= len(sb) && bytes.Equal(data[:len(sb)], sb) {
							// input opens on the boundary, the prefix is empty
							prefix = []byte{}
							awaitingPrefix = false
							advance = len(sb)
						}
						// else, no zero-length prefix

						// either way, move on to modeMiddle
						mode = modeMiddle
						err = scanner.ErrRetry
					}
					// else, not enough data yet to rule a zero-length prefix
					// in or out

				case modeMiddle:
					// now looking for parts, or the prefix if it was not zero
					// bytes long
					if ix := bytes.Index(data, mb); ix >= 0 {
						// found a \n--boundary\n string:
						// |-> advance past the boundary for the next token
						// |-> if awaitingPrefix, capture prefix
						// |-> if not awaitingPrefix, return token
						advance = ix + len(mb)
						if awaitingPrefix {
							// first boundary, everything before it is prefix
							ps := data[:ix+1]
							prefix = make([]byte, len(ps))
							copy(prefix, ps)
							awaitingPrefix = false
						} else {
							token = data[:ix]
						}
					} else if atEOF {
						// no middle boundary and no more input coming, time
						// to look for the final boundary
						mode = modeEnd
						err = scanner.ErrRetry
					}
					// else, more input may yet contain middle boundaries

				case modeEnd:
					// Still awaiting the prefix here means the message has no
					// initial boundary at all. Record that as a nil prefix so
					// round-tripping omits it, and treat the data before the
					// final boundary as the one part.
					if awaitingPrefix {
						prefix = nil
					}

					// atEOF is always true by the time we get here
					if ix := bytes.Index(data, eb); ix >= 0 {
						// found the closing \n--boundary--\n string:
						// |-> the suffix is everything after the boundary,
						// |   including its trailing line break, which is why
						// |   len(fb) and not len(eb) is deliberate here
						// |-> the final part is everything before it
						token = data[:ix]
						ss := data[ix+len(fb):]
						suffix = make([]byte, len(ss))
						copy(suffix, ss)
					} else if ix := bytes.Index(data, fb); ix >= 0 && ix == len(data)-len(fb) {
						// the closing \n--boundary-- sits at the very end of
						// input with no final line break:
						// |-> there is no suffix, not even a newline
						// |-> the final part is everything before it
						token = data[:ix]
						suffix = []byte{}
					} else {
						// no final boundary at all, the rest of the data is
						// the final part and a nil suffix records that the
						// closing boundary should be omitted on output
						token = data
						suffix = nil
					}
					// either way, we are done
					err = bufio.ErrFinalToken
				default:
					// never happens, right?
					panic("unexpected parser state")
				}
				return
			},
		),
	)

	// Recovers the original message when parsing a sub-part fails partway
	// through.
	parts := make([][]byte, 0, 10)
	originalMessage := func() (*Opaque, error) {
		// finish accumulating the parts and find the suffix (if any)
		for sc.Scan() {
			part := sc.Bytes()
			parts = append(parts, part)
		}

		if err := sc.Err(); err != nil {
			if errors.Is(err, bufio.ErrTooLong) {
				return nil, ErrLargePart
			}
			return nil, err
		}

		r := &bytes.Buffer{}
		if prefix != nil {
			r.Write(prefix)
			r.Write(sb)
		}
		r.Write(bytes.Join(parts, mb))
		if suffix != nil {
			r.Write(eb)
			r.Write(suffix)
		}

		return &Opaque{
			Header: msg.Header,
			Reader: r,
		}, nil
	}

	// every returned token is a part
	msgParts := make([]Generic, 0, 10)
	for sc.Scan() {
		part := sc.Bytes()
		parts = append(parts, part)

		// parse each part as a flat message first
		opMsg, err := pr.parseToOpaque(bytes.NewReader(part), true)
		if err != nil {
			var badStart *field.BadStartError
			if opMsg == nil || !errors.As(err, &badStart) {
				orig, _ := originalMessage()
				return orig, err
			}
		}

		msg, err := pr.parse(opMsg, depth+1)
		if err != nil {
			orig, _ := originalMessage()
			return orig, err
		}

		msgParts = append(msgParts, msg)
	}

	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, ErrLargePart
		}
		orig, _ := originalMessage()
		return orig, err
	}

	return &Multipart{
		Header: msg.Header,
		prefix: prefix,
		suffix: suffix,
		parts:  msgParts,
	}, nil
}
