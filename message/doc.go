// Package message models email messages as trees of parts. A part is either
// an Opaque, a header plus a body of bytes this package assigns no meaning
// to, or a Multipart, a header plus a list of sub-parts. Parse() reads a
// message from an io.Reader and splits it as deep as you ask it to, and
// Buffer builds new messages from either raw bytes or assembled parts.
//
// As much as possible, parsed messages are preserved byte for byte: an
// unmodified message writes back out exactly as it came in, boundaries,
// prefixes, broken headers and all. Construction takes the opposite stance
// and renders everything strictly.
package message
