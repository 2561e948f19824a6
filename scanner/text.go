package scanner

import "unicode/utf8"

// Truncate shortens s to at most maxLen runes for table output, marking the
// cut with "...". The cut always falls on a rune boundary.
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:max(maxLen, 0)])
	}
	return string(runes[:maxLen-3]) + "..."
}
