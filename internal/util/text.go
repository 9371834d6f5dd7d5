package util

import "strings"

// SanitizePostgresText strips null bytes and invalid UTF-8 so the value can be
// stored in a text column.
func SanitizePostgresText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}

// TruncateRunes cuts value to at most max runes. A non-positive max returns
// the value unchanged.
func TruncateRunes(value string, max int) string {
	if max <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max])
}

// CollapseWhitespace trims the value and joins inner runs of whitespace with a
// single space.
func CollapseWhitespace(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return strings.Join(strings.Fields(value), " ")
}
