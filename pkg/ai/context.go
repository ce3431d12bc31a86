package ai

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// DefaultMaxTokenBudget is the default maximum token budget for document context (estimated 4 chars per token).
	DefaultMaxTokenBudget = 4000
	charsPerToken         = 4
)

// controlSensitivePatterns are substrings that mark a paragraph as likely to
// carry compliance-control content. Such paragraphs are kept first when the
// document is trimmed to fit the token budget.
var controlSensitivePatterns = []string{
	"kyc", "aml", "sanction", "screening", "monitoring", "surveillance",
	"risk assessment", "audit", "retention", "encryption", "access control",
	"training", "reporting", "due diligence", "escalation", "policy",
}

// BuildContext creates a concise context string from a document for LLM
// consumption. It respects the given maxTokenBudget (in tokens, estimated at
// 4 chars/token). If the document is too large, control-relevant paragraphs
// are prioritized.
func BuildContext(docTitle, docText string, maxTokenBudget int) string {
	if maxTokenBudget <= 0 {
		maxTokenBudget = DefaultMaxTokenBudget
	}
	maxChars := maxTokenBudget * charsPerToken

	var b strings.Builder
	if docTitle != "" {
		fmt.Fprintf(&b, "Document: %s\n\n", docTitle)
	}

	paragraphs := splitParagraphs(docText)

	// Control-relevant paragraphs first; within each group keep the original
	// document order so excerpts still read coherently.
	sort.SliceStable(paragraphs, func(i, j int) bool {
		return isControlSensitive(paragraphs[i]) && !isControlSensitive(paragraphs[j])
	})

	for _, para := range paragraphs {
		if b.Len() >= maxChars {
			b.WriteString("\n... (remaining document truncated to fit token budget)\n")
			break
		}
		if b.Len()+len(para) > maxChars {
			remaining := maxChars - b.Len()
			if remaining > 100 {
				b.WriteString(para[:remaining])
				b.WriteString("\n... (paragraph truncated)\n")
			}
			break
		}
		b.WriteString(para)
		b.WriteString("\n\n")
	}

	return b.String()
}

// splitParagraphs breaks document text on blank lines, dropping empties.
func splitParagraphs(text string) []string {
	raw := strings.Split(text, "\n\n")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// isControlSensitive checks whether a paragraph mentions compliance-control
// subject matter.
func isControlSensitive(para string) bool {
	lower := strings.ToLower(para)
	for _, pat := range controlSensitivePatterns {
		if strings.Contains(lower, pat) {
			return true
		}
	}
	return false
}
