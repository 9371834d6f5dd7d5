package search

import (
	"strings"
	"unicode/utf8"
)

const (
	snippetBefore = 60
	snippetAfter  = 80
)

// Snippet extracts a window around the first case-insensitive
// occurrence of query in text, marking truncated edges with an
// ellipsis. When the query does not literally occur (stemmed full-text
// matches), the page prefix is returned instead.
//
// All windowing is done in rune indices. Lowercasing maps runes
// one-to-one but can change byte lengths, so byte offsets found in the
// folded text must never be applied to the original.
func Snippet(text, query string) string {
	if text == "" {
		return ""
	}

	runes := []rune(text)

	idx := -1
	if query != "" {
		lowered := strings.ToLower(text)
		if byteIdx := strings.Index(lowered, strings.ToLower(query)); byteIdx >= 0 {
			idx = utf8.RuneCountInString(lowered[:byteIdx])
		}
	}
	if idx < 0 {
		limit := snippetBefore + snippetAfter
		if len(runes) <= limit {
			return text
		}
		return string(runes[:limit]) + "…"
	}

	start := idx - snippetBefore
	if start < 0 {
		start = 0
	}
	end := idx + utf8.RuneCountInString(strings.ToLower(query)) + snippetAfter
	if end > len(runes) {
		end = len(runes)
	}

	snippet := string(runes[start:end])
	if start > 0 {
		snippet = "…" + snippet
	}
	if end < len(runes) {
		snippet += "…"
	}
	return snippet
}
