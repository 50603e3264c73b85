package string

import (
	"strings"
	"unicode"
)

// SanitizeFileName reduces name to a safe single path segment: directory
// parts are dropped and anything outside [A-Za-z0-9._-] becomes '_'.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if out == "" {
		return "file"
	}
	const maxLen = 200
	if len(out) > maxLen {
		out = out[len(out)-maxLen:]
	}
	return out
}
