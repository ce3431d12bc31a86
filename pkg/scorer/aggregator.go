package scorer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/toyinlola/complyscore/pkg/category"
	"github.com/toyinlola/complyscore/pkg/interfaces"
	"github.com/toyinlola/complyscore/pkg/risk"
	"github.com/toyinlola/complyscore/pkg/weights"
)

// ErrInvalidWeights is returned when Aggregate is handed a weight set that
// fails the tolerance check. Callers should have caught this at
// configuration time via weights.RequireValid.
var ErrInvalidWeights = errors.New("scorer: invalid weights")

// Aggregator combines per-category sub-scores into an overall score.
// It is pure: identical inputs always yield identical output.
type Aggregator struct {
	mapper              *category.Mapper
	tierMultipliers     TierMultipliers
	gapThreshold        float64
	confidenceThreshold float64
	tolerance           float64
}

// Option configures the Aggregator.
type Option func(*Aggregator)

// WithTierMultipliers overrides the default tier discount multipliers.
func WithTierMultipliers(m TierMultipliers) Option {
	return func(a *Aggregator) {
		a.tierMultipliers = m
	}
}

// WithGapThreshold overrides the sub-score threshold below which a category
// emits a Gap.
func WithGapThreshold(threshold float64) Option {
	return func(a *Aggregator) {
		a.gapThreshold = threshold
	}
}

// WithConfidenceThreshold overrides the answer-confidence acceptance threshold.
func WithConfidenceThreshold(threshold float64) Option {
	return func(a *Aggregator) {
		a.confidenceThreshold = threshold
	}
}

// WithMapper overrides the category mapper used for vendor-category routing.
func WithMapper(m *category.Mapper) Option {
	return func(a *Aggregator) {
		a.mapper = m
	}
}

// WithWeightTolerance overrides the weight-sum tolerance.
func WithWeightTolerance(tolerance float64) Option {
	return func(a *Aggregator) {
		a.tolerance = tolerance
	}
}

// NewAggregator creates a score aggregator with optional configuration.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		mapper:              category.NewMapper(),
		tierMultipliers:     DefaultTierMultipliers(),
		gapThreshold:        DefaultGapThreshold,
		confidenceThreshold: DefaultConfidenceThreshold,
		tolerance:           weights.DefaultTolerance,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// tierRank orders tiers best-first for answer selection.
var tierRank = map[interfaces.EvidenceTier]int{
	interfaces.Tier2:       3,
	interfaces.Tier1:       2,
	interfaces.Tier0:       1,
	interfaces.TierPending: 0,
}

// SelectBest picks one answer per question from all analysis results:
// highest tier first, then highest confidence, then evidence ID for a
// deterministic tie-break. Failed results and pending-tier answers are
// excluded entirely.
func SelectBest(results []*interfaces.AnalysisResult) []interfaces.ScoredAnswer {
	best := make(map[string]interfaces.ScoredAnswer)

	for _, res := range results {
		if res == nil || res.Err != nil {
			continue
		}
		for _, ans := range res.Answers {
			if tierRank[ans.Tier] == 0 {
				continue
			}
			current, ok := best[ans.QuestionID]
			if !ok || betterAnswer(ans, current) {
				best[ans.QuestionID] = ans
			}
		}
	}

	selected := make([]interfaces.ScoredAnswer, 0, len(best))
	for _, ans := range best {
		selected = append(selected, ans)
	}
	sort.Slice(selected, func(i, j int) bool {
		return selected[i].QuestionID < selected[j].QuestionID
	})
	return selected
}

// betterAnswer reports whether a should replace b as the best answer.
func betterAnswer(a, b interfaces.ScoredAnswer) bool {
	if tierRank[a.Tier] != tierRank[b.Tier] {
		return tierRank[a.Tier] > tierRank[b.Tier]
	}
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	return a.EvidenceID < b.EvidenceID
}

// BuildSubScores derives per-category sub-scores from the selected answers.
// Each answer's score is discounted by its evidence tier multiplier; a
// question with no usable answer contributes zero to its category. The
// category keys are the questionnaire's free-text labels.
func (a *Aggregator) BuildSubScores(questions []interfaces.Question, selected []interfaces.ScoredAnswer) map[string]float64 {
	byQuestion := make(map[string]interfaces.ScoredAnswer, len(selected))
	for _, ans := range selected {
		byQuestion[ans.QuestionID] = ans
	}

	totals := make(map[string]float64)
	counts := make(map[string]int)

	for _, q := range questions {
		counts[q.Category]++
		if ans, ok := byQuestion[q.ID]; ok {
			totals[q.Category] += ans.Score * a.tierMultipliers.Multiplier(ans.Tier)
		}
	}

	subScores := make(map[string]float64, len(counts))
	for cat, count := range counts {
		subScores[cat] = totals[cat] / float64(count)
	}
	return subScores
}

// Aggregate combines sub-scores into the overall result. The weight set
// must pass the tolerance check; a near-but-not-exact set is normalized
// before use. Gaps are emitted for categories under the gap threshold and
// routed through the category mapper for vendor matching; answers under the
// confidence threshold land in the low-confidence queue.
func (a *Aggregator) Aggregate(subScores map[string]float64, weightSet interfaces.CategoryWeightSet, selected []interfaces.ScoredAnswer) (*interfaces.ScoreResult, error) {
	values := weightSet.Values()
	if !weights.IsValid(values, a.tolerance) {
		return nil, fmt.Errorf("%w: sum %.4f outside tolerance %.2g", ErrInvalidWeights, weights.Sum(values), a.tolerance)
	}

	normalized := weights.NormalizeSet(weightSet)

	var overall float64
	byCategory := make(map[string]float64, len(normalized))
	var gaps []interfaces.Gap

	for _, cw := range normalized {
		sub := clampScore(subScores[cw.Key])
		byCategory[cw.Key] = sub
		overall += sub * cw.Weight

		if sub < a.gapThreshold {
			gap := interfaces.Gap{
				GapCategory: cw.Key,
				Severity:    severityForSubScore(sub),
				Description: fmt.Sprintf("%s scored %.0f/100, below the %.0f gap threshold", cw.Key, sub, a.gapThreshold),
			}
			if vendor, ok := a.mapper.Map(cw.Key); ok {
				gap.VendorCategory = vendor
			}
			gaps = append(gaps, gap)
		}
	}

	overall = clampScore(overall)

	var lowConfidence []interfaces.LowConfidenceQuestion
	for _, ans := range selected {
		if ans.Confidence < a.confidenceThreshold {
			lowConfidence = append(lowConfidence, interfaces.LowConfidenceQuestion{
				QuestionID:    ans.QuestionID,
				Question:      ans.Question,
				CurrentAnswer: ans.Answer,
				Confidence:    ans.Confidence,
				SectionTitle:  ans.Section,
			})
		}
	}

	return &interfaces.ScoreResult{
		Overall:       overall,
		ByCategory:    byCategory,
		RiskLevel:     risk.LevelFromScore(overall),
		Gaps:          gaps,
		LowConfidence: lowConfidence,
	}, nil
}

// Score is the full pipeline over raw analysis results: select the best
// answer per question, derive sub-scores, and aggregate.
func (a *Aggregator) Score(questions []interfaces.Question, results []*interfaces.AnalysisResult, weightSet interfaces.CategoryWeightSet) (*interfaces.ScoreResult, error) {
	selected := SelectBest(results)
	subScores := a.BuildSubScores(questions, selected)
	return a.Aggregate(subScores, weightSet, selected)
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
