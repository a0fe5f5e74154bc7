package field

// Raw holds the original wire bytes of a parsed header field, line breaks and
// folds included, minus the final line break. Values of this type are
// immutable.
type Raw struct {
	field []byte // the complete original field
	colon int    // index of the colon separating name from body
}

// String returns the original field as a string.
func (f *Raw) String() string {
	return string(f.field)
}

// Bytes returns the original field bytes.
func (f *Raw) Bytes() []byte {
	return f.field
}

// Name returns the name part of the original field. The value may contain
// folds.
func (f *Raw) Name() string {
	return string(f.field[:f.colon])
}

// Body returns the body part of the original field. The value may contain
// folds.
func (f *Raw) Body() string {
	off := 1
	if f.colon == len(f.field) {
		off = 0
	}
	return string(f.field[f.colon+off:])
}
