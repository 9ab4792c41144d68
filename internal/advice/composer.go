// Package advice builds persona-specific prompts and orchestrates the
// advice pipeline: classification, optional expense analysis, prompt
// composition, provider routing and tone adjustment.
package advice

import (
	"fmt"

	"fincoach/internal/core"
	"fincoach/internal/llm"
)

// Compose builds the prompt for the LLM pipeline. The expense summary,
// when present, is merged into the user segment under an explicit
// label so the model can tell instruction from data.
func Compose(query string, persona core.Persona, expenseSummary string) llm.Prompt {
	user := query
	if expenseSummary != "" {
		user = fmt.Sprintf("Here's my expense data context:\n%s\n\nMy question: %s\n\nPlease provide advice considering my actual spending patterns.",
			expenseSummary, query)
	}
	return llm.Prompt{
		System: systemPromptFor(persona),
		User:   user,
	}
}
