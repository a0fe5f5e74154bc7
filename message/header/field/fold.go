package field

import (
	"bytes"
	"errors"
	"io"
	"strings"
)

const (
	DefaultFoldIndent          = " "  // indent written before each folded line
	DefaultPreferredFoldLength = 80   // we try to break lines before this length
	DefaultForcedFoldLength    = 1000 // we refuse to emit lines longer than this

	DoNotFold = -1 // fold length meaning no folding at all
)

var (
	// DefaultFoldEncoding is a FoldEncoding with the default settings, which
	// are the settings recommended by RFC 5322.
	DefaultFoldEncoding = &FoldEncoding{
		DefaultFoldIndent,
		DefaultPreferredFoldLength,
		DefaultForcedFoldLength,
	}

	// DoNotFoldEncoding is a FoldEncoding that writes every field on a single
	// line, however long it gets.
	DoNotFoldEncoding = &FoldEncoding{
		DefaultFoldIndent,
		DoNotFold,
		DoNotFold,
	}
)

var (
	// ErrFoldIndentSpace is returned by NewFoldEncoding when the fold indent
	// contains anything other than spaces and tabs.
	ErrFoldIndentSpace = errors.New("fold indent may only contains spaces and tabs")

	// ErrFoldIndentTooShort is returned by NewFoldEncoding when the fold
	// indent is empty.
	ErrFoldIndentTooShort = errors.New("fold indent must contain at least one space or tab")

	// ErrFoldIndentTooLong is returned by NewFoldEncoding when the fold indent
	// is as long as or longer than the preferred fold length.
	ErrFoldIndentTooLong = errors.New("fold indent must be shorter than the preferred fold length")

	// ErrFoldLengthTooLong is returned by NewFoldEncoding when the preferred
	// fold length exceeds the forced fold length.
	ErrFoldLengthTooLong = errors.New("preferred fold length must be no longer than the forced fold length")

	// ErrFoldLengthTooShort is returned by NewFoldEncoding when either fold
	// length is shorter than 3 bytes.
	ErrFoldLengthTooShort = errors.New("preferred fold length and forced fold length cannot be too short")

	// ErrDoNotFold is returned by NewFoldEncoding when only one of the two
	// fold lengths is DoNotFold. Folding is either on or off, so set both.
	ErrDoNotFold = errors.New("preferred fold length and forced fold length must both be -1 if either are -1")
)

// Break is the line break in use while folding, as bytes. It plays the same
// role as header.Break one level down.
type Break []byte

// FoldEncoding folds and unfolds header fields.
type FoldEncoding struct {
	foldIndent          string
	preferredFoldLength int
	forcedFoldLength    int
}

// NewFoldEncoding validates the given settings and builds a FoldEncoding from
// them. The indent must consist of one or more spaces and tabs and be shorter
// than the preferred fold length. The preferred fold length must not exceed
// the forced one. Passing DoNotFold for both lengths turns folding off.
//
// Nothing here prevents a fold from landing before the colon. We lean on the
// fold lengths being wider than any sane field name, which keeps names intact
// without special handling.
func NewFoldEncoding(
	foldIndent string,
	preferredFoldLength,
	forcedFoldLength int,
) (*FoldEncoding, error) {
	if ix := strings.IndexFunc(foldIndent, isNonSpace); ix >= 0 {
		return nil, ErrFoldIndentSpace
	}

	if len(foldIndent) < 1 {
		return nil, ErrFoldIndentTooShort
	}

	if (preferredFoldLength == DoNotFold) != (forcedFoldLength == DoNotFold) {
		return nil, ErrDoNotFold
	}

	if preferredFoldLength != DoNotFold {
		if len(foldIndent) >= preferredFoldLength {
			return nil, ErrFoldIndentTooLong
		}

		if preferredFoldLength > forcedFoldLength {
			return nil, ErrFoldLengthTooLong
		}

		// Lengths below 80 are already a questionable choice, but anything
		// shorter than this breaks the folding loop itself, so draw the line
		// where the code stops working rather than where taste ends.
		if preferredFoldLength < 3 || forcedFoldLength < 3 {
			return nil, ErrFoldLengthTooShort
		}
	}

	return &FoldEncoding{foldIndent, preferredFoldLength, forcedFoldLength}, nil
}

// Unfold removes folds from a header field, turning it back into a single
// line. Only the line break characters are removed. The whitespace making up
// the continuation indent is part of the field body and stays.
func (vf *FoldEncoding) Unfold(f []byte) []byte {
	uf := make([]byte, 0, len(f))
	for _, b := range f {
		if !isCRLF(rune(b)) {
			uf = append(uf, b)
		}
	}
	return uf
}

func isCRLF(c rune) bool     { return c == '\r' || c == '\n' }
func isSpace(c rune) bool    { return c == ' ' || c == '\t' }
func isNonSpace(c rune) bool { return c != ' ' && c != '\t' }

// Fold writes the given field to out, folded to the receiver's settings. Lines
// are preferably broken at a space before the preferred length, failing that
// at the first space after it, and only broken mid-word when the line would
// otherwise blow past the forced length. Every continuation line that does not
// already begin with whitespace gets the configured indent.
//
// It returns the number of bytes written and the first write error, if any.
func (vf *FoldEncoding) Fold(out io.Writer, f []byte, lb Break) (int64, error) {
	total := int64(0)
	continuingLine := false
	writeFold := func(f []byte, end int) ([]byte, error) {
		// indent unless the break already sits on whitespace
		if continuingLine && !isSpace(rune(f[0])) {
			n, err := out.Write([]byte(vf.foldIndent))
			total += int64(n)
			if err != nil {
				return nil, err
			}
		}
		n, err := out.Write(f[:end])
		total += int64(n)
		if err != nil {
			return nil, err
		}

		n, err = out.Write(lb)
		total += int64(n)
		if err != nil {
			return nil, err
		}

		f = f[end:]
		continuingLine = true

		return bytes.TrimLeft(f, " \t"), nil
	}

	if len(f) < vf.preferredFoldLength || vf.preferredFoldLength == DoNotFold {
		_, err := writeFold(f, len(f))
		return total, err
	}

	// The -2 below assumes a two character line break.

	lines := bytes.Split(f, lb)
	for _, line := range lines {
	FoldingSingle:
		for len(line) > 0 {
			var err error

			fforced := len(line) > vf.forcedFoldLength-2

			fneed := len(line) > vf.preferredFoldLength-2
			if !fneed {
				line, err = writeFold(line, len(line))
				if err != nil {
					return total, err
				}
				continue FoldingSingle
			}

			// Find the first byte eligible for a break. On the opening line
			// that means skipping past the colon, so the name and its
			// following space never split from each other.
			var firstChar int
			if continuingLine {
				firstChar = bytes.IndexFunc(line, isNonSpace)
			} else {
				colon := bytes.IndexRune(line, ':')
				firstChar = bytes.IndexFunc(line[colon+1:], isNonSpace)
				if firstChar >= 0 {
					firstChar += colon + 1
				}
			}

			if firstChar < 0 {
				firstChar = 0
			}

			// best case, a space inside the preferred width
			if ix := bytes.LastIndexFunc(line[firstChar:vf.preferredFoldLength-2], isSpace); ix >= 0 {
				line, err = writeFold(line, ix+firstChar)
				if err != nil {
					return total, err
				}
				continue FoldingSingle
			}

			// failing that, the first space beyond it that still beats the
			// forced width
			if ix := bytes.IndexFunc(line[firstChar:], isSpace); ix >= 0 && ix < vf.forcedFoldLength-2 {
				line, err = writeFold(line, ix+firstChar)
				if err != nil {
					return total, err
				}
				continue FoldingSingle
			}

			// no space anywhere useful, break mid-word if we must
			if fforced {
				line, err = writeFold(line, vf.preferredFoldLength-2)
				if err != nil {
					return total, err
				}
				continue FoldingSingle
			}

			// longer than we like, but we are not forced to break it
			line, err = writeFold(line, len(line))
			if err != nil {
				return total, err
			}
		}
	}

	return total, nil
}
