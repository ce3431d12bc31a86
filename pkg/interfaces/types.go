// Package interfaces defines the shared types and contracts for all ComplyScore modules.
// This package has ZERO dependencies on any other pkg/ package.
// All cross-module communication goes through types and interfaces defined here.
package interfaces

import "time"

// CanonicalCategory is one of the fixed vendor-matchable compliance domains.
// The set is closed: gap routing, vendor matching, and reporting all assume
// membership in this list (or "uncategorized", represented by the empty value).
type CanonicalCategory string

const (
	CategoryRiskAssessment        CanonicalCategory = "RISK_ASSESSMENT"
	CategoryTransactionMonitoring CanonicalCategory = "TRANSACTION_MONITORING"
	CategoryDataGovernance        CanonicalCategory = "DATA_GOVERNANCE"
	CategoryRegulatoryReporting   CanonicalCategory = "REGULATORY_REPORTING"
	CategoryKYCAML                CanonicalCategory = "KYC_AML"
	CategorySanctionsScreening    CanonicalCategory = "SANCTIONS_SCREENING"
	CategoryTradeSurveillance     CanonicalCategory = "TRADE_SURVEILLANCE"
	CategoryComplianceTraining    CanonicalCategory = "COMPLIANCE_TRAINING"
)

// CanonicalCategories returns the closed category set in display order.
func CanonicalCategories() []CanonicalCategory {
	return []CanonicalCategory{
		CategoryRiskAssessment,
		CategoryTransactionMonitoring,
		CategoryDataGovernance,
		CategoryRegulatoryReporting,
		CategoryKYCAML,
		CategorySanctionsScreening,
		CategoryTradeSurveillance,
		CategoryComplianceTraining,
	}
}

// Severity levels for compliance gaps
type Severity string

const (
	SeverityCritical Severity = "critical" // Immediate remediation required
	SeverityHigh     Severity = "high"     // Remediate before next audit cycle
	SeverityMedium   Severity = "medium"   // Should remediate
	SeverityLow      Severity = "low"      // Informational shortfall
)

// RiskLevel is the ordinal classification of an overall score.
// CRITICAL is worst, LOW is best: a higher score means better compliance
// and therefore a lower risk level.
type RiskLevel string

const (
	RiskCritical RiskLevel = "CRITICAL"
	RiskHigh     RiskLevel = "HIGH"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskLow      RiskLevel = "LOW"
)

// EvidenceSource identifies the provenance of a piece of evidence.
// The set is closed; the tier classifier matches it exhaustively.
type EvidenceSource string

const (
	SourceUploadedDocument EvidenceSource = "uploaded_document"
	SourceManualAnswer     EvidenceSource = "manual_answer"
	SourceAIExtracted      EvidenceSource = "ai_extracted"
)

// EvidenceTier grades how much trust a piece of evidence carries.
type EvidenceTier string

const (
	Tier0 EvidenceTier = "TIER_0" // Self-declared, no corroborating document
	Tier1 EvidenceTier = "TIER_1" // Backed by a successfully analyzed policy document
	Tier2 EvidenceTier = "TIER_2" // System-generated, verifiable extraction

	// TierPending marks evidence whose analysis has not reached a terminal
	// state. Pending evidence contributes zero weight to scoring.
	TierPending EvidenceTier = "pending"
)

// AnalysisState tracks a single evidence item through analysis.
type AnalysisState string

const (
	AnalysisPending  AnalysisState = "pending"
	AnalysisComplete AnalysisState = "analyzed"
	AnalysisFailed   AnalysisState = "failed"
)

// DeclaredResult is one per-question result carried inside a structured
// system export (audit-log extract, monitoring system dump). The exporting
// system has already scored the question; we take its numbers verbatim.
type DeclaredResult struct {
	QuestionID string  `json:"question_id" yaml:"question_id"`
	Answer     string  `json:"answer" yaml:"answer"`
	Score      float64 `json:"score" yaml:"score"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// EvidenceItem is a document or manually-supplied answer contributing to scoring.
type EvidenceItem struct {
	ID         string           `json:"id"`
	Source     EvidenceSource   `json:"source"`
	Title      string           `json:"title,omitempty"`
	Text       string           `json:"text,omitempty"`        // Document body or answer text
	QuestionID string           `json:"question_id,omitempty"` // Set for manual answers
	Results    []DeclaredResult `json:"results,omitempty"`     // Set for structured exports
	State      AnalysisState    `json:"state"`
}

// Question is one questionnaire item. Category is the free-text category
// label as authored in the assessment template; it is mapped to a
// CanonicalCategory only when a gap is emitted.
type Question struct {
	ID       string   `json:"id" yaml:"id" validate:"required"`
	Section  string   `json:"section" yaml:"section"`
	Category string   `json:"category" yaml:"category" validate:"required"`
	Text     string   `json:"text" yaml:"text" validate:"required"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// ScoredAnswer is one evidence-backed answer to one question.
type ScoredAnswer struct {
	QuestionID string         `json:"question_id"`
	Question   string         `json:"question"`
	Section    string         `json:"section"`
	Category   string         `json:"category"` // Free-text label from the questionnaire
	Answer     string         `json:"answer"`
	Score      float64        `json:"score"` // 0-100, before tier discount
	Confidence float64        `json:"confidence"`
	Tier       EvidenceTier   `json:"tier"`
	Source     EvidenceSource `json:"source"`
	EvidenceID string         `json:"evidence_id"`
}

// AnalysisResult is what each evidence analyzer returns for one item.
type AnalysisResult struct {
	ItemID   string         `json:"item_id"`
	Source   EvidenceSource `json:"source"`
	Answers  []ScoredAnswer `json:"answers"`
	Duration time.Duration  `json:"duration"`
	Err      error          `json:"-"`
}

// CategoryWeight binds one free-text category key to its weight.
type CategoryWeight struct {
	Key    string  `json:"key" yaml:"key" validate:"required"`
	Weight float64 `json:"weight" yaml:"weight" validate:"gte=0,lte=1"`
}

// CategoryWeightSet is an ordered mapping from category key to weight.
// Weights must sum to 1.0 within tolerance; see pkg/weights.
// Created at template-configuration time, read-only at scoring time.
type CategoryWeightSet []CategoryWeight

// Values returns the weights in declaration order.
func (s CategoryWeightSet) Values() []float64 {
	vals := make([]float64, len(s))
	for i, cw := range s {
		vals[i] = cw.Weight
	}
	return vals
}

// Gap is one identified compliance deficiency. Immutable once produced for a
// scoring run; a re-score supersedes the whole set rather than mutating it.
type Gap struct {
	GapCategory    string            `json:"category"`                  // Free text as authored by the source
	VendorCategory CanonicalCategory `json:"vendor_category,omitempty"` // Empty when unmapped
	Severity       Severity          `json:"severity"`
	Description    string            `json:"description"`
}

// LowConfidenceQuestion is a questionnaire item whose best answer's
// confidence fell below the acceptance threshold, pending human resolution.
type LowConfidenceQuestion struct {
	QuestionID    string  `json:"question_id"`
	Question      string  `json:"question"`
	CurrentAnswer string  `json:"current_answer"`
	Confidence    float64 `json:"confidence"`
	SectionTitle  string  `json:"section_title"`
}

// ScoreResult is the structured output of one aggregation run.
type ScoreResult struct {
	Overall       float64                 `json:"overall"`
	ByCategory    map[string]float64      `json:"by_category"`
	RiskLevel     RiskLevel               `json:"risk_level"`
	Gaps          []Gap                   `json:"gaps"`
	LowConfidence []LowConfidenceQuestion `json:"low_confidence_answers"`
}

// RunState is the lifecycle state of an AssessmentRun.
type RunState string

const (
	StateDraft       RunState = "draft"
	StateScoring     RunState = "scoring"
	StateCompleted   RunState = "completed"
	StateNeedsReview RunState = "needs_review"
	StateRescoring   RunState = "rescoring"
	StateFailed      RunState = "failed"
)

// AssessmentRun is the aggregate root: one weight set, the questionnaire,
// the contributing evidence, and the latest scoring output.
type AssessmentRun struct {
	ID            string            `json:"id"`
	Organization  string            `json:"organization"`
	State         RunState          `json:"state"`
	Weights       CategoryWeightSet `json:"weights"`
	Questions     []Question        `json:"questions"`
	Evidence      []EvidenceItem    `json:"evidence"`
	Result        *ScoreResult      `json:"result,omitempty"`
	ReviewSkipped bool              `json:"review_skipped,omitempty"` // Results accepted despite unresolved low-confidence items
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Report is the final output of a ComplyScore assessment run.
type Report struct {
	ID            string        `json:"id"`
	Timestamp     time.Time     `json:"timestamp"`
	Organization  string        `json:"organization"`
	RunID         string        `json:"run_id"`
	RunState      RunState      `json:"run_state"`
	ReviewSkipped bool          `json:"review_skipped,omitempty"`
	Result        *ScoreResult  `json:"result,omitempty"`
	EvidenceUsed  int           `json:"evidence_used"`
	EvidenceTotal int           `json:"evidence_total"`
	Duration      time.Duration `json:"duration"`
}
