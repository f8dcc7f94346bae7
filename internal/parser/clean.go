package parser

import "strings"

// CleanText trims every line, drops blank lines and removes non-ASCII
// characters. It also removes the blank-line paragraph separators, so it runs
// only when explicitly enabled.
func CleanText(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			kept = append(kept, l)
		}
	}
	joined := strings.Join(kept, "\n")

	var sb strings.Builder
	sb.Grow(len(joined))
	for _, r := range joined {
		if r < 128 {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
