package data

import (
	"regexp"
	"strings"
)

// ansiRe matches ANSI escape sequences (CSI, OSC, and simple escapes).
var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]|\x1b\][^\x1b]*\x1b\\|\x1b[^[\]]`)

// StripANSI removes ANSI escape codes from s.
func StripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

// Sanitize makes collaborator-provided text safe to print in the console:
// escape sequences are removed, line endings normalized and remaining
// control characters other than newline and tab dropped.
func Sanitize(s string) string {
	s = StripANSI(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
