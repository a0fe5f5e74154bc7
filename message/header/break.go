package header

// Break is the line break a header uses between fields and at its end.
type Break string

// The line breaks seen in email. When creating a new header and in doubt,
// pick CRLF, the network line break.
const (
	Meh  Break = ""         // sometimes it does not matter
	CRLF Break = "\x0d\x0a" // \r\n - network line break
	LF   Break = "\x0a"     // \n - Unix line break
	CR   Break = "\x0d"     // \r - old Mac line break
	LFCR Break = "\x0a\x0d" // \n\r - for weirdos
)

// String returns the break as a string.
func (b Break) String() string {
	return string(b)
}

// Bytes returns the break as a slice of bytes.
func (b Break) Bytes() []byte {
	return []byte(b)
}
