package domain

import (
	"regexp"
	"strings"
)

var (
	nonSlug   = regexp.MustCompile(`[^a-z0-9-]+`)
	multiDash = regexp.MustCompile(`-{2,}`)
)

// Slugify derives a url-safe slug from free text: lower-cased, non
// alphanumeric runs collapsed to single dashes, leading and trailing dashes
// trimmed.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlug.ReplaceAllString(s, "-")
	s = multiDash.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ValidSlug reports whether s is already in canonical slug form.
func ValidSlug(s string) bool {
	return s != "" && s == Slugify(s)
}
