package extract

import "fmt"

// SystemPrompt is shared by every aspect request.
const SystemPrompt = "You are a research paper analysis assistant. For each aspect requested, " +
	"provide clear, structured information extracted from the paper. Focus on accuracy and relevance."

// BuildAspectPrompt asks for one aspect of the full paper text.
func BuildAspectPrompt(aspect, text string) string {
	return fmt.Sprintf("From the following research paper, please extract and summarize the %s. \n"+
		"Focus on providing a clear and concise explanation:\n\n"+
		"%s\n\n"+
		"Please provide a detailed summary of the %s:", aspect, text, aspect)
}
