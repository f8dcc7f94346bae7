package chunker

import "strings"

// CountWords returns the number of whitespace-separated words in text.
// Every size budget in the chunker is expressed in these units.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// EstimateTokens gives a rough token count from the word count
// (~1.33 tokens per English word). Only used for logs and previews.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	tokens := int(float64(CountWords(text)) * 1.33)
	if tokens < 1 && strings.TrimSpace(text) != "" {
		tokens = 1
	}
	return tokens
}
