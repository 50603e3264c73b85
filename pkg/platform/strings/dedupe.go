// Package strings holds small helpers for cleaning up request input.
package strings

import (
	"strings"
)

// DedupeAndTrim trims every value and keeps the first occurrence of each
// non-blank one, in input order.
func DedupeAndTrim(values []string) []string {
	if values == nil {
		return nil
	}
	out := values[:0:0]
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// TrimSpacePtr leaves absent patch fields absent.
func TrimSpacePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// DedupeAndTrimPtr is DedupeAndTrim for an optional patch list. A present but
// empty list stays present so callers can clear the field.
func DedupeAndTrimPtr(values *[]string) *[]string {
	if values == nil {
		return nil
	}
	v := DedupeAndTrim(*values)
	if v == nil {
		v = []string{}
	}
	return &v
}
