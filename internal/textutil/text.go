package textutil

import (
	"strings"
	"unicode/utf8"
)

// Truncate returns at most n runes of s. Multi-byte characters are never split.
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

// Chunk splits s into consecutive pieces of exactly size runes, the last piece
// holding the remainder. An empty string yields no chunks. Joining the result
// reproduces s.
func Chunk(s string, size int) []string {
	if s == "" {
		return nil
	}
	if size <= 0 {
		return []string{s}
	}
	chunks := make([]string, 0, utf8.RuneCountInString(s)/size+1)
	start, count := 0, 0
	for i := range s {
		if count == size {
			chunks = append(chunks, s[start:i])
			start, count = i, 0
		}
		count++
	}
	return append(chunks, s[start:])
}

// JoinFields trims each part, drops blanks, and joins the rest with single spaces.
func JoinFields(parts []string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, " ")
}
