package emil

import "fmt"

// InvalidAddressError is returned when an email address cannot be parsed or
// cannot be rendered into a header-safe form.
type InvalidAddressError struct {
	Address string // the offending input or display form
	Cause   error  // the underlying parse failure, if any
}

// Error returns the error message.
func (e *InvalidAddressError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid email address %q: %v", e.Address, e.Cause)
	}
	return fmt.Sprintf("invalid email address %q", e.Address)
}

// Unwrap returns the underlying cause, if any.
func (e *InvalidAddressError) Unwrap() error {
	return e.Cause
}

// EncodeError is returned by Serialize when a Mail cannot be rendered into
// wire bytes, for example when an attachment content opener fails.
type EncodeError struct {
	Message string
	Cause   error
}

// Error returns the error message.
func (e *EncodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("encoding mail: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("encoding mail: %s", e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *EncodeError) Unwrap() error {
	return e.Cause
}

// DecodeError is returned by Deserialize when the input is structurally
// broken: a header section that never terminates or a multipart declaration
// whose boundary structure cannot be parsed. Metadata-level problems never
// produce a DecodeError; they degrade to absent fields instead.
type DecodeError struct {
	Message string
	Cause   error
}

// Error returns the error message.
func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decoding mail: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("decoding mail: %s", e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}
