package evidence

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/toyinlola/complyscore/pkg/interfaces"
)

// Affirmation heuristics compiled once at init. Order matters: a hedged
// answer ("yes, partially") must classify as partial, not affirmative.
var (
	partialPattern = regexp.MustCompile(`(?i)\b(partial|partially|in progress|planned|being implemented|some extent|limited|ad hoc)\b`)

	negativePattern = regexp.MustCompile(`(?i)^\s*(no\b|not\b|none\b|never\b|we (do not|don't|have not|haven't))`)

	affirmativePattern = regexp.MustCompile(`(?i)^\s*(yes\b|fully\b|implemented\b|in place\b|we (do|have|maintain|perform|conduct|screen|monitor|train|review)\b)`)
)

// Manual-answer scores and confidences. A clear statement earns high
// confidence; an answer the heuristic cannot classify stays low-confidence
// so it lands in the review queue.
const (
	manualScoreAffirmative = 100.0
	manualScorePartial     = 50.0
	manualScoreNegative    = 0.0
	manualScoreUnclear     = 60.0

	manualConfidenceClear   = 0.85
	manualConfidencePartial = 0.75
	manualConfidenceUnclear = 0.40
)

// ManualAnswerAnalyzer scores self-declared questionnaire answers. Manual
// answers are TIER_0: nothing corroborates them.
type ManualAnswerAnalyzer struct{}

// NewManualAnswerAnalyzer creates an analyzer for manually-supplied answers.
func NewManualAnswerAnalyzer() *ManualAnswerAnalyzer {
	return &ManualAnswerAnalyzer{}
}

// Source returns the evidence source this analyzer handles.
func (m *ManualAnswerAnalyzer) Source() interfaces.EvidenceSource {
	return interfaces.SourceManualAnswer
}

// Analyze classifies the declared answer text for the item's question.
func (m *ManualAnswerAnalyzer) Analyze(ctx context.Context, item *interfaces.EvidenceItem, questions []interfaces.Question) (*interfaces.AnalysisResult, error) {
	answer := strings.TrimSpace(item.Text)
	if answer == "" {
		return nil, fmt.Errorf("manual answer %s is empty", item.ID)
	}

	var question *interfaces.Question
	for i := range questions {
		if questions[i].ID == item.QuestionID {
			question = &questions[i]
			break
		}
	}
	if question == nil {
		return nil, fmt.Errorf("manual answer %s references unknown question %q", item.ID, item.QuestionID)
	}

	score, confidence := classifyAnswer(answer)

	return &interfaces.AnalysisResult{
		Answers: []interfaces.ScoredAnswer{{
			QuestionID: question.ID,
			Question:   question.Text,
			Section:    question.Section,
			Category:   question.Category,
			Answer:     answer,
			Score:      score,
			Confidence: confidence,
			Tier:       interfaces.Tier0,
			Source:     interfaces.SourceManualAnswer,
			EvidenceID: item.ID,
		}},
	}, nil
}

// classifyAnswer maps free-text answer phrasing to a score and confidence.
func classifyAnswer(answer string) (score, confidence float64) {
	switch {
	case partialPattern.MatchString(answer):
		return manualScorePartial, manualConfidencePartial
	case negativePattern.MatchString(answer):
		return manualScoreNegative, manualConfidenceClear
	case affirmativePattern.MatchString(answer):
		return manualScoreAffirmative, manualConfidenceClear
	default:
		return manualScoreUnclear, manualConfidenceUnclear
	}
}
