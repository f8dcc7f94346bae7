package summarize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	summaryPrefix = regexp.MustCompile(`(?i)^(summary of the paper:|summary:)`)
	blankRuns     = regexp.MustCompile(`\n\s*\n`)
)

// FormatSummary strips a leading "Summary:" label the model sometimes echoes
// and collapses runs of blank lines.
func FormatSummary(s string) string {
	s = summaryPrefix.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	return blankRuns.ReplaceAllString(s, "\n\n")
}

// TruncateText shortens text to at most max bytes, cutting after the last
// full stop when there is one. It never splits a multi-byte character.
func TruncateText(text string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(text) <= max {
		return text
	}
	end := max
	for end > 0 && !utf8.RuneStart(text[end]) {
		end--
	}
	cut := text[:end]
	if i := strings.LastIndexByte(cut, '.'); i >= 0 {
		return cut[:i+1]
	}
	return cut
}
