package service

import (
	"strings"
	"unicode/utf8"
)

// sanitizeUTF8 drops invalid UTF-8 sequences so PostgreSQL does not reject
// the row with an encoding error.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	var result strings.Builder
	result.Grow(len(s))

	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError && size == 1 {
			s = s[1:]
			continue
		}
		result.WriteRune(r)
		s = s[size:]
	}

	return result.String()
}

// cleanText is the normal form of user-entered free text.
func cleanText(s string) string {
	return strings.TrimSpace(sanitizeUTF8(s))
}

// tooLong counts characters, not bytes, matching VARCHAR(n).
func tooLong(s string, max int) bool {
	return utf8.RuneCountInString(s) > max
}
