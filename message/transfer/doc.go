// Package transfer encodes and decodes the transformations named by the
// Content-transfer-encoding header. Only quoted-printable and base64 actually
// change any bytes; 7bit, 8bit, and binary all pass data through as-is.
//
// Throughout this library, "decoded" means content transformed from the named
// Content-transfer-encoding back to its charset-encoded form, and "encoded"
// means the opposite direction.
package transfer
