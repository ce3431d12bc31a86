// Package prompts provides LLM prompt templates for compliance answer extraction.
package prompts

import (
	"fmt"
	"strings"

	"github.com/toyinlola/complyscore/pkg/interfaces"
)

const extractionSystemPrompt = `You are a compliance analyst extracting questionnaire answers from a vendor's policy document.
For each question, decide whether the document answers it. Only report questions the document genuinely addresses.

You MUST respond with valid JSON only. No markdown, no commentary outside the JSON.

Response format:
{
  "answers": [
    {
      "question_id": "q-101",
      "answer": "One-sentence summary of what the document states",
      "score": 85,
      "confidence": 0.9
    }
  ]
}

"score" is 0-100: how completely the document satisfies the question (100 = fully satisfied, 0 = explicitly not satisfied).
"confidence" is 0.0-1.0: how certain you are that the document addresses this question at all.

If the document answers none of the questions, return: {"answers": []}
Do NOT invent answers. Omit any question the document does not address.`

// ExtractionSystemPrompt returns the system prompt for answer extraction.
func ExtractionSystemPrompt() string {
	return extractionSystemPrompt
}

// ExtractionPrompt builds the user prompt pairing the questionnaire with the
// document context.
func ExtractionPrompt(questions []interfaces.Question, docContext string) string {
	var b strings.Builder

	b.WriteString("Questionnaire:\n")
	for _, q := range questions {
		fmt.Fprintf(&b, "- [%s] %s", q.ID, q.Text)
		if q.Category != "" {
			fmt.Fprintf(&b, " (category: %s)", q.Category)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n%s\nRespond with JSON only.", docContext)
	return b.String()
}
