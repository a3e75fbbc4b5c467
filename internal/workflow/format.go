package workflow

import (
	"strings"
	"unicode/utf8"
)

// Ellipsis marks content cut at the length ceiling.
const Ellipsis = "..."

// Truncate cuts content to limit characters and appends Ellipsis.
// Content within the limit, or a limit of 0, returns content unchanged.
func Truncate(content string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(content) <= limit {
		return content
	}
	runes := []rune(content)
	return string(runes[:limit]) + Ellipsis
}

// FitsInLimit reports whether content is within limit characters.
func FitsInLimit(content string, limit int) bool {
	return utf8.RuneCountInString(content) <= limit
}

// SystemInstruction joins the shared style guide, the persona voice and the
// output-discipline suffix.
func SystemInstruction(styleGuide, voice, discipline string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{styleGuide, voice, discipline} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n\n")
}

// UserInstruction joins a brief with the single-post suffix.
func UserInstruction(brief, suffix string) string {
	return strings.TrimSpace(brief) + "\n\n" + suffix
}
