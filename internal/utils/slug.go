package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Runs of anything that is not a letter or digit collapse to a
	// single dash.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slug turns an arbitrary string into a lowercase dash-separated
// identifier safe for filenames and email local parts. Diacritics are
// stripped ("Éloïse" -> "eloise"); an input with no usable characters
// slugs to the empty string.
func Slug(s string) string {
	s = stripDiacritics(s)
	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// stripDiacritics decomposes to NFD and drops combining marks.
func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
