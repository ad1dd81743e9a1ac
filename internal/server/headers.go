package server

import (
	"strings"
)

// maxHeaderValueLen caps side-channel header values well under typical
// 8KB header limits.
const maxHeaderValueLen = 4000

// sanitizeHeaderValue makes arbitrary model output safe to ship in an HTTP
// header: printable ASCII only, whitespace collapsed, length capped.
func sanitizeHeaderValue(value string) string {
	if value == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			b.WriteByte(' ')
		case r >= 32 && r <= 126:
			b.WriteRune(r)
		case r > 127:
			// non-ASCII replaced rather than dropped so words stay apart
			b.WriteByte(' ')
		}
		// remaining control characters are dropped
	}

	cleaned := strings.Join(strings.Fields(b.String()), " ")
	if len(cleaned) > maxHeaderValueLen {
		cleaned = cleaned[:maxHeaderValueLen] + "..."
	}
	return cleaned
}
