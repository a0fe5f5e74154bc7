package walk

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/sideeffffect/emil/message"
)

var (
	// ErrSkip may be returned by a Transformer to drop the visited part, and
	// with it any sub-parts, from the transformed message.
	ErrSkip = errors.New("skip part")

	// ErrCopy may be returned by a Transformer to ask for the default
	// handling: leaves are copied as-is, branches have their header copied
	// and their sub-parts transformed.
	ErrCopy = errors.New("copy part")
)

// BadTransformationError wraps an error returned by a Transformer together
// with which part of the walk it happened in.
type BadTransformationError struct {
	Cause   error
	Message string
}

// Error returns the error message describing the bad transformation.
func (b *BadTransformationError) Error() string {
	return fmt.Sprintf("%s: %v", b.Message, b.Cause)
}

// Unwrap returns the error that caused the bad transformation.
func (b *BadTransformationError) Unwrap() error {
	return b.Cause
}

// Transformer is a callback passed to AndTransform() to rewrite a message
// into a new message.
//
// The Transformer receives the part being visited and the ancestry of that
// part in the original message (the original parents, not the transformed
// ones). It must do one of four things:
//
//   - Return replacement parts. The visited part is replaced by exactly the
//     parts returned, zero or more of them. Sub-parts of the visited part are
//     NOT transformed; the replacement is taken as given.
//
//   - Return nil, ErrSkip. The visited part and everything below it is
//     dropped.
//
//   - Return nil, ErrCopy. The default handling applies: a leaf is copied
//     as-is via TransCopyPart, a branch has its header copied and its
//     sub-parts transformed recursively. A branch whose sub-parts all end up
//     dropped is itself dropped, so transformation never manufactures empty
//     multipart containers.
//
//   - Return nil, err for any other error, which fails the whole
//     transformation with that error.
//
// Returning nil, nil is treated as ErrCopy.
type Transformer func(part message.Part, parents []message.Part) ([]message.Part, error)

// AndTransform rewrites the given message by applying the given Transformer
// to its parts in depth-first order, parents before children. The message is
// processed as parsed: an Opaque part whose bytes happen to describe
// sub-parts is visited as a single leaf.
//
// It returns the transformed parts that replace the top-level part. The
// result may be empty when the transformation dropped everything, and may
// hold more than one part when the Transformer replaced the top-level part
// with several.
func AndTransform(
	transformer Transformer,
	msg message.Part,
) ([]message.Part, error) {
	parents := make([]message.Part, 0, 10)
	return andTransform(transformer, msg, parents)
}

func andTransform(
	transformer Transformer,
	part message.Part,
	parents []message.Part,
) ([]message.Part, error) {
	newParts, err := transformer(part, parents)
	switch {
	case errors.Is(err, ErrSkip):
		return nil, nil
	case err != nil && !errors.Is(err, ErrCopy):
		return nil, err
	case newParts != nil && err != nil:
		return nil, &BadTransformationError{err, "transformer returned both parts and an error"}
	case newParts != nil:
		return newParts, nil
	}

	// nil, nil or nil, ErrCopy: the default handling

	if !part.IsMultipart() {
		cp, err := TransCopyPart(part)
		if err != nil {
			return nil, &BadTransformationError{err, "copying leaf part"}
		}
		return []message.Part{cp}, nil
	}

	parents = append(parents, part)
	subParts := make([]message.Part, 0, len(part.GetParts()))
	for _, subPart := range part.GetParts() {
		newSubParts, err := andTransform(transformer, subPart, parents)
		if err != nil {
			return nil, err
		}
		subParts = append(subParts, newSubParts...)
	}

	// all children dropped, drop the container too
	if len(subParts) == 0 {
		return nil, nil
	}

	mm := message.NewMultipart(part.GetHeader().Clone(), subParts...)
	return []message.Part{mm}, nil
}

// TransCopyPart copies an original part through to a transformed part with no
// changes. This is a helper for writing Transformers, so it does not exactly
// copy a part.
//
// A leaf part is copied into a message.Opaque by cloning its header and
// reading its io.Reader into a buffer, which consumes the original reader.
//
// A branch part becomes a new, empty message.Multipart with a cloned header.
func TransCopyPart(orig message.Part) (message.Generic, error) {
	hdr := orig.GetHeader().Clone()
	if orig.IsMultipart() {
		return message.NewMultipart(hdr), nil
	}

	buf := &bytes.Buffer{}
	if r := orig.GetReader(); r != nil {
		_, err := io.Copy(buf, r)
		if err != nil {
			return nil, err
		}
	}

	cp := &message.Opaque{
		Header: *hdr,
		Reader: buf,
	}
	if orig.IsEncoded() {
		return message.AsAlreadyEncoded(cp), nil
	}

	return cp, nil
}
