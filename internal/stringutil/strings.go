// Package stringutil provides common string manipulation utilities.
package stringutil

import "strings"

// Ellipsis marks hard truncation in user-visible text.
const Ellipsis = "..."

// IsNumeric checks if a string contains only digits.
// Returns false for empty strings.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Truncate hard-cuts s to at most maxChars runes, appending an ellipsis
// marker when a cut happened. maxChars counts the marker, so the returned
// string never exceeds maxChars runes. For maxChars smaller than the
// marker itself the marker is all that survives.
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	marker := []rune(Ellipsis)
	if maxChars <= len(marker) {
		return string(marker[:maxChars])
	}
	return string(runes[:maxChars-len(marker)]) + Ellipsis
}

// CollapseWhitespace trims s and replaces runs of whitespace with a single
// space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FirstToken returns the first whitespace-delimited token of s, or "" when
// s has none.
func FirstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
