// Package header provides low-level and high-level tooling for email message
// headers. Low-level access works in whole field.Field objects via the
// embedded Base. The high-level methods on Header interpret field bodies as
// dates, addresses, and parameterized values, and keep reading and writing
// the header safe and strictly correct on output.
//
// Parse() reads headers leniently, preserving each field as it appeared so
// an unmodified header writes back out byte for byte.
package header
