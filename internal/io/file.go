package ioutils

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// illegalChars are removed from every user or source supplied name segment.
const illegalChars = `\/:*?"<>|`

// SanitizeSegment removes filesystem-illegal characters and control
// characters from a single path segment and trims surrounding whitespace
// and dots. A segment is never "." or "..", so it cannot leave its parent
// directory.
//
// Example:
//
//	SanitizeSegment("Song: Part 1/2")  // "Song Part 12"
//	SanitizeSegment(`a\b*c?"d<e>f|g`)  // "abcdefg"
//	SanitizeSegment("  plain  ")       // "plain"
//	SanitizeSegment("..")              // ""
func SanitizeSegment(name string) string {
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || strings.ContainsRune(illegalChars, r) {
			return -1
		}
		return r
	}, name)
	return strings.TrimFunc(name, func(r rune) bool {
		return r == '.' || unicode.IsSpace(r)
	})
}

// WriteFile writes data to path, creating parent directories as needed.
//
// The file is created with mode 0644 and truncated if it exists.
func WriteFile(path string, data []byte) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// EnsureDir creates a directory and all parent directories if they don't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
