package text

import "strings"

// NormalizeLineEndings rewrites CRLF and bare CR line breaks to LF.
func NormalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
