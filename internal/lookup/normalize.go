package lookup

import (
	"strings"
	"time"
	"unicode"
)

// The comparison rules in this package only work if query values and
// stored values go through the exact same canonicalization. Every
// equality check in the resolver runs on normalized text.

// NormalizeName lowercases, trims and collapses internal whitespace.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

// NormalizeAddress lowercases, strips punctuation and collapses
// whitespace so "123 Oak St." and "123  oak st" compare equal.
func NormalizeAddress(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
			// punctuation dropped
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
}

// CanonicalDate parses the accepted date spellings and returns the
// canonical YYYY-MM-DD form, or "" when the input is empty or
// unparseable.
func CanonicalDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// CanonicalDateFromTime formats a stored birthdate for comparison.
func CanonicalDateFromTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
