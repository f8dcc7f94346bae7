package chunker

import (
	"strings"
)

// DefaultMarkers are the section labels that commonly open a research-paper
// section. Matching is a case-insensitive substring test on short lines.
var DefaultMarkers = []string{
	"Abstract", "Introduction", "Methods", "Methodology",
	"Results", "Discussion", "Conclusion", "References",
}

// Config controls chunking behavior.
type Config struct {
	MaxWords       int      // Word budget per chunk.
	HeaderMaxWords int      // A marker line must have fewer words than this to count as a header.
	Markers        []string // Section labels; nil means DefaultMarkers.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxWords:       3000,
		HeaderMaxWords: 5,
		Markers:        DefaultMarkers,
	}
}

// Split breaks text into chunks of at most maxWords words, first on section
// headers, then on blank-line paragraphs. A single paragraph larger than
// maxWords is kept whole.
func Split(text string, maxWords int) []string {
	cfg := DefaultConfig()
	cfg.MaxWords = maxWords
	return SplitWithConfig(text, cfg)
}

// SplitWithConfig is Split with explicit header detection settings.
func SplitWithConfig(text string, cfg Config) []string {
	if cfg.MaxWords <= 0 {
		cfg.MaxWords = 3000
	}
	if cfg.HeaderMaxWords <= 0 {
		cfg.HeaderMaxWords = 5
	}
	if cfg.Markers == nil {
		cfg.Markers = DefaultMarkers
	}

	if strings.TrimSpace(text) == "" {
		return nil
	}
	// A document that already fits is returned untouched.
	if CountWords(text) <= cfg.MaxWords {
		return []string{text}
	}

	var chunks []string
	for _, section := range splitSections(text, cfg) {
		if CountWords(section) > cfg.MaxWords {
			chunks = appendNonBlank(chunks, splitParagraphs(section, cfg.MaxWords)...)
			continue
		}
		chunks = appendNonBlank(chunks, section)
	}
	return chunks
}

// splitSections cuts text before every line that looks like a section header.
// The header line opens the new section.
func splitSections(text string, cfg Config) []string {
	markers := make([]string, len(cfg.Markers))
	for i, m := range cfg.Markers {
		markers[i] = strings.ToLower(m)
	}

	var sections []string
	var current []string
	for _, line := range strings.Split(text, "\n") {
		if isHeader(line, markers, cfg.HeaderMaxWords) && len(current) > 0 {
			sections = append(sections, strings.Join(current, "\n"))
			current = nil
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		sections = append(sections, strings.Join(current, "\n"))
	}
	return sections
}

func isHeader(line string, lowerMarkers []string, maxWords int) bool {
	if CountWords(line) >= maxWords {
		return false
	}
	lower := strings.ToLower(line)
	for _, m := range lowerMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// splitParagraphs greedily packs "\n\n"-separated paragraphs into groups of
// at most maxWords words.
func splitParagraphs(text string, maxWords int) []string {
	var groups []string
	var current []string
	currentWords := 0

	for _, para := range strings.Split(text, "\n\n") {
		paraWords := CountWords(para)
		if currentWords+paraWords > maxWords {
			if len(current) > 0 {
				groups = append(groups, strings.Join(current, "\n\n"))
			}
			current = []string{para}
			currentWords = paraWords
			continue
		}
		current = append(current, para)
		currentWords += paraWords
	}
	if len(current) > 0 {
		groups = append(groups, strings.Join(current, "\n\n"))
	}
	return groups
}

func appendNonBlank(dst []string, parts ...string) []string {
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			dst = append(dst, p)
		}
	}
	return dst
}
