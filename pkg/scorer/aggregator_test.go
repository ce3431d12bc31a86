package scorer

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/toyinlola/complyscore/pkg/interfaces"
)

func twoCategory() (interfaces.CategoryWeightSet, []interfaces.Question) {
	weightSet := interfaces.CategoryWeightSet{
		{Key: "Risk Assessment", Weight: 0.5},
		{Key: "KYC and AML Procedures", Weight: 0.5},
	}
	questions := []interfaces.Question{
		{ID: "q-risk", Section: "Risk", Category: "Risk Assessment", Text: "Is an enterprise risk assessment performed annually?"},
		{ID: "q-kyc", Section: "CDD", Category: "KYC and AML Procedures", Text: "Is customer identity verified at onboarding?"},
	}
	return weightSet, questions
}

func tier2Answer(questionID, cat string, score float64) interfaces.ScoredAnswer {
	return interfaces.ScoredAnswer{
		QuestionID: questionID,
		Category:   cat,
		Score:      score,
		Confidence: 1.0,
		Tier:       interfaces.Tier2,
		Source:     interfaces.SourceAIExtracted,
		EvidenceID: "exp1",
	}
}

func TestAggregate_WeightedSum(t *testing.T) {
	weightSet, questions := twoCategory()
	agg := NewAggregator()

	selected := []interfaces.ScoredAnswer{
		tier2Answer("q-risk", "Risk Assessment", 70),
		tier2Answer("q-kyc", "KYC and AML Procedures", 60),
	}
	subScores := agg.BuildSubScores(questions, selected)

	result, err := agg.Aggregate(subScores, weightSet, selected)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if result.Overall != 65 {
		t.Errorf("overall = %v, want 65", result.Overall)
	}
	if result.RiskLevel != interfaces.RiskMedium {
		t.Errorf("risk level = %s, want MEDIUM", result.RiskLevel)
	}
	if len(result.Gaps) != 0 {
		t.Errorf("expected no gaps at sub-scores 70/60, got %v", result.Gaps)
	}
	if len(result.LowConfidence) != 0 {
		t.Errorf("expected no low-confidence entries, got %v", result.LowConfidence)
	}
}

func TestAggregate_GapAndLowConfidence(t *testing.T) {
	weightSet, questions := twoCategory()
	agg := NewAggregator()

	// KYC drops to 40, backed only by an uncorroborated answer with low confidence.
	selected := []interfaces.ScoredAnswer{
		tier2Answer("q-risk", "Risk Assessment", 70),
		{
			QuestionID: "q-kyc",
			Question:   "Is customer identity verified at onboarding?",
			Section:    "CDD",
			Category:   "KYC and AML Procedures",
			Answer:     "We think so.",
			Score:      40,
			Confidence: 0.4,
			Tier:       interfaces.Tier0,
			Source:     interfaces.SourceManualAnswer,
			EvidenceID: "ans1",
		},
	}
	subScores := agg.BuildSubScores(questions, selected)

	result, err := agg.Aggregate(subScores, weightSet, selected)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if len(result.Gaps) != 1 {
		t.Fatalf("expected 1 gap, got %d", len(result.Gaps))
	}
	gap := result.Gaps[0]
	if gap.GapCategory != "KYC and AML Procedures" {
		t.Errorf("gap category = %q", gap.GapCategory)
	}
	if gap.VendorCategory != interfaces.CategoryKYCAML {
		t.Errorf("vendor category = %q, want KYC_AML", gap.VendorCategory)
	}

	if len(result.LowConfidence) != 1 {
		t.Fatalf("expected 1 low-confidence question, got %d", len(result.LowConfidence))
	}
	if result.LowConfidence[0].QuestionID != "q-kyc" {
		t.Errorf("low-confidence question = %q, want q-kyc", result.LowConfidence[0].QuestionID)
	}
	if result.LowConfidence[0].SectionTitle != "CDD" {
		t.Errorf("section title = %q, want CDD", result.LowConfidence[0].SectionTitle)
	}
}

func TestAggregate_InvalidWeights(t *testing.T) {
	agg := NewAggregator()
	badWeights := interfaces.CategoryWeightSet{
		{Key: "A", Weight: 0.5},
		{Key: "B", Weight: 0.3},
	}

	_, err := agg.Aggregate(map[string]float64{"A": 50, "B": 50}, badWeights, nil)
	if !errors.Is(err, ErrInvalidWeights) {
		t.Errorf("error = %v, want ErrInvalidWeights", err)
	}
}

func TestAggregate_NearValidWeightsNormalized(t *testing.T) {
	agg := NewAggregator()
	nearWeights := interfaces.CategoryWeightSet{
		{Key: "A", Weight: 0.504},
		{Key: "B", Weight: 0.504},
	}

	result, err := agg.Aggregate(map[string]float64{"A": 80, "B": 60}, nearWeights, nil)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if math.Abs(result.Overall-70) > 1e-9 {
		t.Errorf("overall = %v, want 70 after normalization", result.Overall)
	}
}

func TestAggregate_MissingSubScoreCountsAsZero(t *testing.T) {
	agg := NewAggregator()
	weightSet := interfaces.CategoryWeightSet{
		{Key: "Covered", Weight: 0.5},
		{Key: "Uncovered Sanctions Screening", Weight: 0.5},
	}

	result, err := agg.Aggregate(map[string]float64{"Covered": 90}, weightSet, nil)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if result.Overall != 45 {
		t.Errorf("overall = %v, want 45", result.Overall)
	}

	// The uncovered category must emit a CRITICAL gap routed to its vendor category.
	if len(result.Gaps) != 1 {
		t.Fatalf("expected 1 gap, got %d", len(result.Gaps))
	}
	if result.Gaps[0].Severity != interfaces.SeverityCritical {
		t.Errorf("gap severity = %s, want critical", result.Gaps[0].Severity)
	}
	if result.Gaps[0].VendorCategory != interfaces.CategorySanctionsScreening {
		t.Errorf("vendor category = %q, want SANCTIONS_SCREENING", result.Gaps[0].VendorCategory)
	}
}

func TestBuildSubScores_TierDiscount(t *testing.T) {
	_, questions := twoCategory()
	agg := NewAggregator()

	selected := []interfaces.ScoredAnswer{
		{QuestionID: "q-risk", Category: "Risk Assessment", Score: 100, Tier: interfaces.Tier0, Confidence: 0.85},
		{QuestionID: "q-kyc", Category: "KYC and AML Procedures", Score: 100, Tier: interfaces.Tier2, Confidence: 1.0},
	}
	subScores := agg.BuildSubScores(questions, selected)

	if subScores["Risk Assessment"] != 75 {
		t.Errorf("TIER_0 sub-score = %v, want 75 (discounted)", subScores["Risk Assessment"])
	}
	if subScores["KYC and AML Procedures"] != 100 {
		t.Errorf("TIER_2 sub-score = %v, want 100 (full multiplier)", subScores["KYC and AML Procedures"])
	}
}

func TestSelectBest_TierThenConfidence(t *testing.T) {
	results := []*interfaces.AnalysisResult{
		{Answers: []interfaces.ScoredAnswer{
			{QuestionID: "q1", Tier: interfaces.Tier0, Confidence: 0.99, EvidenceID: "manual"},
			{QuestionID: "q1", Tier: interfaces.Tier1, Confidence: 0.6, EvidenceID: "doc"},
		}},
		{Answers: []interfaces.ScoredAnswer{
			{QuestionID: "q1", Tier: interfaces.Tier1, Confidence: 0.9, EvidenceID: "doc2"},
			{QuestionID: "q2", Tier: interfaces.TierPending, Confidence: 1.0, EvidenceID: "stuck"},
		}},
	}

	selected := SelectBest(results)

	if len(selected) != 1 {
		t.Fatalf("expected 1 selected answer (pending excluded), got %d", len(selected))
	}
	// Higher tier beats higher confidence; within the tier, higher confidence wins.
	if selected[0].EvidenceID != "doc2" {
		t.Errorf("selected evidence = %q, want doc2", selected[0].EvidenceID)
	}
}

func TestSelectBest_SkipsFailedResults(t *testing.T) {
	results := []*interfaces.AnalysisResult{
		{Err: errors.New("boom"), Answers: []interfaces.ScoredAnswer{
			{QuestionID: "q1", Tier: interfaces.Tier2, Confidence: 1.0},
		}},
	}

	if selected := SelectBest(results); len(selected) != 0 {
		t.Errorf("answers from failed results must be ignored, got %v", selected)
	}
}

func TestScore_Idempotent(t *testing.T) {
	weightSet, questions := twoCategory()
	agg := NewAggregator()

	results := []*interfaces.AnalysisResult{
		{Answers: []interfaces.ScoredAnswer{
			tier2Answer("q-risk", "Risk Assessment", 70),
		}},
		{Answers: []interfaces.ScoredAnswer{
			{QuestionID: "q-kyc", Category: "KYC and AML Procedures", Score: 40, Confidence: 0.4, Tier: interfaces.Tier0, EvidenceID: "ans1"},
		}},
	}

	first, err := agg.Score(questions, results, weightSet)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	second, err := agg.Score(questions, results, weightSet)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	opts := []cmp.Option{
		cmpopts.SortSlices(func(a, b interfaces.Gap) bool { return a.GapCategory < b.GapCategory }),
	}
	if diff := cmp.Diff(first, second, opts...); diff != "" {
		t.Errorf("repeated scoring over a frozen evidence set diverged (-first +second):\n%s", diff)
	}
}
