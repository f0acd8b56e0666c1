package services

import (
	"fmt"
	"strings"

	"github.com/sujalamkhade/sasad/models"
)

// askPromptTemplate is the generation prompt for parliament session Q&A.
// The model is restricted to the retrieved context.
const askPromptTemplate = `You are a research assistant helping understand Indian Parliament sessions.

Using ONLY the context below:
- Identify key issues discussed
- Mention dates if present
- Summarize clearly in bullet points
- If date is missing, say "date not specified"

Context:
%s

Question:
%s

Answer:`

// BuildAskPrompt assembles the generation prompt from retrieved chunks and
// the user's question.
func BuildAskPrompt(docs []models.SourceDocument, question string) string {
	contexts := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc.Text != "" {
			contexts = append(contexts, doc.Text)
		}
	}
	return fmt.Sprintf(askPromptTemplate, strings.Join(contexts, "\n\n"), question)
}
