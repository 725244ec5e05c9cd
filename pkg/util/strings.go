package util

import "unicode/utf8"

// DiagnosticLimit bounds remote response text kept on failure outcomes.
const DiagnosticLimit = 200

// Truncate returns at most n runes of s. Invalid UTF-8 is counted byte by byte.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
