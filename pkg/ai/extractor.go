package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/toyinlola/complyscore/pkg/ai/prompts"
	"github.com/toyinlola/complyscore/pkg/interfaces"
)

// minStructureConfidence is the minimum ratio of well-formed answers in an
// LLM response before any of its answers are trusted.
const minStructureConfidence = 0.3

// Extractor pulls questionnaire answers out of document text using an LLM
// provider. It satisfies the evidence package's AnswerExtractor contract.
type Extractor struct {
	provider       LLMProvider
	maxTokenBudget int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxTokenBudget sets the maximum token budget for document context sent to the LLM.
func WithMaxTokenBudget(budget int) Option {
	return func(e *Extractor) {
		e.maxTokenBudget = budget
	}
}

// NewExtractor creates an answer extractor backed by the given LLM provider.
func NewExtractor(provider LLMProvider, opts ...Option) *Extractor {
	e := &Extractor{
		provider:       provider,
		maxTokenBudget: DefaultMaxTokenBudget,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract asks the LLM which questions the document answers and with what
// score. Answers referencing unknown question IDs are dropped; a response too
// poorly structured to trust is an error so the caller can fall back.
func (e *Extractor) Extract(ctx context.Context, questions []interfaces.Question, docTitle, docText string) ([]interfaces.ScoredAnswer, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	docContext := BuildContext(docTitle, docText, e.maxTokenBudget)

	slog.Info("running LLM answer extraction", "document", docTitle, "questions", len(questions))

	response, err := e.provider.Complete(ctx, prompts.ExtractionPrompt(questions, docContext), CompletionOpts{
		MaxTokens:    2048,
		Temperature:  0.1,
		SystemPrompt: prompts.ExtractionSystemPrompt(),
	})
	if err != nil {
		return nil, fmt.Errorf("ai: completing extraction request: %w", err)
	}

	answers, confidence := parseAnswers(response, questions)
	if confidence < minStructureConfidence {
		return nil, fmt.Errorf("ai: extraction response poorly structured (confidence %.2f)", confidence)
	}

	slog.Info("LLM answer extraction complete", "document", docTitle,
		"answers", len(answers), "structure_confidence", confidence)
	return answers, nil
}

// Available returns true if the LLM provider is configured and reachable.
func (e *Extractor) Available(ctx context.Context) bool {
	return e.provider.Available(ctx)
}

// llmAnswer is the expected per-answer JSON structure from the LLM response.
type llmAnswer struct {
	QuestionID string  `json:"question_id"`
	Answer     string  `json:"answer"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

// llmResponse is the expected top-level JSON structure from the LLM.
type llmResponse struct {
	Answers []llmAnswer `json:"answers"`
}

// parseAnswers extracts structured answers from the LLM response text.
// Returns the answers and a confidence score (0.0-1.0) indicating how
// well-structured the response was.
func parseAnswers(response string, questions []interfaces.Question) ([]interfaces.ScoredAnswer, float64) {
	response = stripCodeFences(response)

	var llmResp llmResponse
	if err := json.Unmarshal([]byte(response), &llmResp); err != nil {
		slog.Debug("ai: failed to parse LLM response as JSON", "error", err, "response_prefix", truncateStr(response, 200))
		return nil, 0.0
	}

	if len(llmResp.Answers) == 0 {
		return nil, 1.0 // Valid JSON, nothing answered. High confidence.
	}

	byID := make(map[string]interfaces.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	answers := make([]interfaces.ScoredAnswer, 0, len(llmResp.Answers))
	validCount := 0

	for _, la := range llmResp.Answers {
		q, known := byID[la.QuestionID]
		if !known || la.Answer == "" {
			continue
		}

		answers = append(answers, interfaces.ScoredAnswer{
			QuestionID: q.ID,
			Question:   q.Text,
			Section:    q.Section,
			Category:   q.Category,
			Answer:     la.Answer,
			Score:      clamp(la.Score, 0, 100),
			Confidence: clamp(la.Confidence, 0, 1),
		})
		validCount++
	}

	return answers, float64(validCount) / float64(len(llmResp.Answers))
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// stripCodeFences removes markdown code fences (```json ... ```) from the response.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
	}
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-3]
	}
	return strings.TrimSpace(s)
}

// truncateStr shortens a string for logging purposes.
func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
