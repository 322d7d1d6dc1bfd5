package util

import "strings"

// CleanText collapses runs of whitespace (including non-breaking spaces)
// into single spaces and trims the ends.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}
