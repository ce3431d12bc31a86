package evidence

import (
	"context"
	"fmt"

	"github.com/toyinlola/complyscore/pkg/interfaces"
)

// ExportAnalyzer handles structured system exports (audit-log extracts,
// monitoring system dumps). The exporting system has already scored each
// question; this analyzer validates the declared results and admits them as
// TIER_2 evidence.
type ExportAnalyzer struct{}

// NewExportAnalyzer creates an analyzer for structured exports.
func NewExportAnalyzer() *ExportAnalyzer {
	return &ExportAnalyzer{}
}

// Source returns the evidence source this analyzer handles.
func (e *ExportAnalyzer) Source() interfaces.EvidenceSource {
	return interfaces.SourceAIExtracted
}

// Analyze validates each declared result against the questionnaire and
// clamps scores and confidences into range. A declared confidence of zero
// means the exporting system did not report one; verified extractions
// default to full confidence.
func (e *ExportAnalyzer) Analyze(ctx context.Context, item *interfaces.EvidenceItem, questions []interfaces.Question) (*interfaces.AnalysisResult, error) {
	if len(item.Results) == 0 {
		return nil, fmt.Errorf("export %s declares no results", item.ID)
	}

	byID := make(map[string]interfaces.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	result := &interfaces.AnalysisResult{}
	for _, declared := range item.Results {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		q, ok := byID[declared.QuestionID]
		if !ok {
			return nil, fmt.Errorf("export %s references unknown question %q", item.ID, declared.QuestionID)
		}

		confidence := clamp(declared.Confidence, 0, 1)
		if confidence == 0 {
			confidence = 1.0
		}

		result.Answers = append(result.Answers, interfaces.ScoredAnswer{
			QuestionID: q.ID,
			Question:   q.Text,
			Section:    q.Section,
			Category:   q.Category,
			Answer:     declared.Answer,
			Score:      clamp(declared.Score, 0, 100),
			Confidence: confidence,
			Tier:       interfaces.Tier2,
			Source:     interfaces.SourceAIExtracted,
			EvidenceID: item.ID,
		})
	}

	return result, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
