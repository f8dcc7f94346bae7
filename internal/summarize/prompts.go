package summarize

import "strings"

const (
	chunkSystemPrompt = "Summarize this section of a research paper, maintaining key details and findings."
	chunkUserPrompt   = "Please summarize this section concisely while preserving important information:\n\n"

	batchSystemPrompt = "Create a unified summary from these section summaries of a research paper."
	batchUserPrompt   = "Create a coherent summary from these sections:\n\n"

	finalSystemPrompt = "Create a final, coherent summary of the entire research paper."
	finalUserPrompt   = "Create a comprehensive two-page summary from these sections:"

	batchSeparator = "\n\n"
	finalSeparator = "---"
)

func chunkPrompt(text string) string {
	return chunkUserPrompt + text
}

func batchPrompt(batch []string) string {
	return batchUserPrompt + strings.Join(batch, batchSeparator)
}

func finalPrompt(items []string) string {
	return finalUserPrompt + strings.Join(items, finalSeparator)
}
