package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeSpace collapses runs of whitespace, newlines and tabs into single spaces.
func NormalizeSpace(input string) string {
	return strings.Join(strings.Fields(input), " ")
}

// DeleteEmpty drops blank entries.
func DeleteEmpty(s []string) []string {
	var r []string
	for _, str := range s {
		if strings.TrimSpace(str) != "" {
			r = append(r, str)
		}
	}
	return r
}

// Fold lowercases s and strips diacritics so "Épreuve" matches "epreuve".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Slugify builds a URL-safe slug: folded, ASCII letters and digits joined by dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range Fold(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// IsSlug reports whether s is already a valid slug.
func IsSlug(s string) bool {
	return s != "" && Slugify(s) == s
}
