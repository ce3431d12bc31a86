package evidence

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/toyinlola/complyscore/pkg/interfaces"
)

// AnswerExtractor produces scored answers for a questionnaire from document
// text. Implemented by pkg/ai for LLM-backed extraction.
type AnswerExtractor interface {
	Extract(ctx context.Context, questions []interfaces.Question, docTitle, docText string) ([]interfaces.ScoredAnswer, error)
	Available(ctx context.Context) bool
}

// DocumentAnalyzer analyzes uploaded policy/procedure documents. When an
// AnswerExtractor is configured and reachable it delegates to it; otherwise
// it falls back to keyword-coverage matching against each question.
type DocumentAnalyzer struct {
	extractor AnswerExtractor
}

// DocumentOption configures a DocumentAnalyzer.
type DocumentOption func(*DocumentAnalyzer)

// WithExtractor attaches an LLM-backed answer extractor.
func WithExtractor(x AnswerExtractor) DocumentOption {
	return func(d *DocumentAnalyzer) {
		d.extractor = x
	}
}

// NewDocumentAnalyzer creates an analyzer for uploaded documents.
func NewDocumentAnalyzer(opts ...DocumentOption) *DocumentAnalyzer {
	d := &DocumentAnalyzer{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Source returns the evidence source this analyzer handles.
func (d *DocumentAnalyzer) Source() interfaces.EvidenceSource {
	return interfaces.SourceUploadedDocument
}

// Analyze scores the questionnaire against the document text. Answers are
// TIER_1: backed by a policy document that parsed successfully.
func (d *DocumentAnalyzer) Analyze(ctx context.Context, item *interfaces.EvidenceItem, questions []interfaces.Question) (*interfaces.AnalysisResult, error) {
	if strings.TrimSpace(item.Text) == "" {
		return nil, fmt.Errorf("document %s has no text to analyze", item.ID)
	}

	if d.extractor != nil && d.extractor.Available(ctx) {
		answers, err := d.extractor.Extract(ctx, questions, item.Title, item.Text)
		if err != nil {
			// The extractor is an external collaborator; fall back to the
			// local heuristic rather than failing the whole item.
			slog.Warn("answer extraction failed, falling back to keyword matching", "item", item.ID, "error", err)
		} else {
			for i := range answers {
				answers[i].Tier = interfaces.Tier1
				answers[i].Source = interfaces.SourceUploadedDocument
				answers[i].EvidenceID = item.ID
			}
			return &interfaces.AnalysisResult{Answers: answers}, nil
		}
	}

	result := &interfaces.AnalysisResult{}
	docLower := strings.ToLower(item.Text)

	for _, q := range questions {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		keywords := questionKeywords(q)
		if len(keywords) == 0 {
			continue
		}

		matched := 0
		for _, kw := range keywords {
			if strings.Contains(docLower, kw) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}

		coverage := float64(matched) / float64(len(keywords))
		result.Answers = append(result.Answers, interfaces.ScoredAnswer{
			QuestionID: q.ID,
			Question:   q.Text,
			Section:    q.Section,
			Category:   q.Category,
			Answer:     fmt.Sprintf("Addressed in %q (%d of %d topic keywords covered)", item.Title, matched, len(keywords)),
			Score:      math.Round(coverage * 100),
			Confidence: coverageConfidence(coverage),
			Tier:       interfaces.Tier1,
			Source:     interfaces.SourceUploadedDocument,
			EvidenceID: item.ID,
		})
	}

	return result, nil
}

// coverageConfidence maps keyword coverage to a confidence value. Full
// coverage is still capped below 1.0: keyword presence is weaker evidence
// than a verified extraction.
func coverageConfidence(coverage float64) float64 {
	c := 0.45 + 0.5*coverage
	if c > 0.95 {
		c = 0.95
	}
	return c
}

var wordPattern = regexp.MustCompile(`[a-zA-Z][a-zA-Z-]{3,}`)

// stopwords excluded when deriving keywords from question text.
var stopwords = map[string]bool{
	"does": true, "have": true, "your": true, "organization": true,
	"with": true, "that": true, "this": true, "there": true, "which": true,
	"what": true, "when": true, "been": true, "from": true, "into": true,
	"their": true, "them": true, "they": true, "will": true, "would": true,
	"should": true, "could": true, "about": true, "being": true,
}

// questionKeywords returns the question's curated keywords, or derives them
// from the question text when none were authored.
func questionKeywords(q interfaces.Question) []string {
	if len(q.Keywords) > 0 {
		out := make([]string, len(q.Keywords))
		for i, kw := range q.Keywords {
			out[i] = strings.ToLower(strings.TrimSpace(kw))
		}
		return out
	}

	seen := make(map[string]bool)
	var out []string
	for _, word := range wordPattern.FindAllString(strings.ToLower(q.Text), -1) {
		if stopwords[word] || seen[word] {
			continue
		}
		seen[word] = true
		out = append(out, word)
	}
	return out
}
