package message

import (
	"math/rand"
	"strings"
)

var boundaryChars = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

// GenerateBoundary generates a random MIME boundary of thirty alphanumerics,
// which is unique enough for most circumstances.
func GenerateBoundary() string {
	s := make([]rune, 30)
	for i := range s {
		s[i] = boundaryChars[rand.Intn(len(boundaryChars))]
	}
	return string(s)
}

// GenerateSafeBoundary generates a random MIME boundary that is guaranteed
// not to appear in the given corpus of data. Use this when generating a
// boundary for a known set of parts:
//
//	boundary := message.GenerateSafeBoundary(strings.Join(parts, ""))
//
// Using this is likely to be total overkill, but in case you're paranoid.
func GenerateSafeBoundary(contents string) string {
	for {
		boundary := GenerateBoundary()
		if !strings.Contains(contents, boundary) {
			return boundary
		}
	}
}
