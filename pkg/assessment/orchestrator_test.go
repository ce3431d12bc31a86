package assessment

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyinlola/complyscore/pkg/evidence"
	"github.com/toyinlola/complyscore/pkg/interfaces"
	"github.com/toyinlola/complyscore/pkg/scorer"
	"github.com/toyinlola/complyscore/pkg/weights"
)

func newTestOrchestrator(t *testing.T) (*Orchestrator, *Store) {
	t.Helper()

	registry := evidence.NewRegistry()
	require.NoError(t, registry.Register(evidence.NewDocumentAnalyzer()))
	require.NoError(t, registry.Register(evidence.NewExportAnalyzer()))
	require.NoError(t, registry.Register(evidence.NewManualAnswerAnalyzer()))

	store := NewStore()
	return NewOrchestrator(store, evidence.NewEngine(registry), scorer.NewAggregator()), store
}

func testWeights() interfaces.CategoryWeightSet {
	return interfaces.CategoryWeightSet{
		{Key: "Risk Assessment", Weight: 0.5},
		{Key: "KYC and AML Procedures", Weight: 0.5},
	}
}

func testQuestions() []interfaces.Question {
	return []interfaces.Question{
		{ID: "q-risk", Section: "Risk", Category: "Risk Assessment", Text: "Is an enterprise risk assessment performed annually?"},
		{ID: "q-kyc", Section: "CDD", Category: "KYC and AML Procedures", Text: "Is customer identity verified before onboarding?"},
	}
}

func exportItem(scoreRisk, scoreKYC float64) interfaces.EvidenceItem {
	return interfaces.EvidenceItem{
		ID:     "exp1",
		Source: interfaces.SourceAIExtracted,
		Title:  "Compliance system export",
		Results: []interfaces.DeclaredResult{
			{QuestionID: "q-risk", Answer: "Annual ERA on record", Score: scoreRisk, Confidence: 0.95},
			{QuestionID: "q-kyc", Answer: "IDV enforced at onboarding", Score: scoreKYC, Confidence: 0.95},
		},
	}
}

func TestCreateRun_RejectsBadWeights(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	bad := interfaces.CategoryWeightSet{{Key: "A", Weight: 0.4}, {Key: "B", Weight: 0.4}}
	_, err := o.CreateRun("Acme", bad, testQuestions(), nil)
	assert.ErrorIs(t, err, weights.ErrOutOfTolerance)
}

func TestCreateRun_RejectsInvalidQuestion(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	questions := []interfaces.Question{{ID: "q1", Text: ""}} // missing category and text
	_, err := o.CreateRun("Acme", testWeights(), questions, nil)
	assert.Error(t, err)
}

func TestExecute_CompletesWithHighConfidenceEvidence(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	run, err := o.CreateRun("Acme Payments", testWeights(), testQuestions(),
		[]interfaces.EvidenceItem{exportItem(70, 60)})
	require.NoError(t, err)
	assert.Equal(t, interfaces.StateDraft, run.State)

	run, err = o.Execute(context.Background(), run.ID, Submission{})
	require.NoError(t, err)

	assert.Equal(t, interfaces.StateCompleted, run.State)
	require.NotNil(t, run.Result)
	assert.Equal(t, 65.0, run.Result.Overall)
	assert.Equal(t, interfaces.RiskMedium, run.Result.RiskLevel)
	assert.Empty(t, run.Result.LowConfidence)
}

func TestExecute_RequiresEvidence(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	run, err := o.CreateRun("Acme", testWeights(), testQuestions(), nil)
	require.NoError(t, err)

	_, err = o.Execute(context.Background(), run.ID, Submission{})
	assert.ErrorIs(t, err, ErrNoEvidence)
}

func TestExecute_RejectsNonDraftRun(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	run, err := o.CreateRun("Acme", testWeights(), testQuestions(),
		[]interfaces.EvidenceItem{exportItem(90, 90)})
	require.NoError(t, err)

	_, err = o.Execute(context.Background(), run.ID, Submission{})
	require.NoError(t, err)

	_, err = o.Execute(context.Background(), run.ID, Submission{})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestExecute_UnknownSelectionErrors(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	run, err := o.CreateRun("Acme", testWeights(), testQuestions(),
		[]interfaces.EvidenceItem{exportItem(90, 90)})
	require.NoError(t, err)

	_, err = o.Execute(context.Background(), run.ID, Submission{ItemIDs: []string{"ghost"}})
	assert.Error(t, err)
}

func TestLifecycle_NeedsReviewThenResubmit(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	// An unclear manual answer produces a low-confidence question.
	run, err := o.CreateRun("Acme", testWeights(), testQuestions(), []interfaces.EvidenceItem{
		exportItem(70, 60),
		{ID: "ans1", Source: interfaces.SourceManualAnswer, QuestionID: "q-kyc", Text: "The committee discussed this."},
	})
	require.NoError(t, err)

	run, err = o.Execute(context.Background(), run.ID, Submission{ItemIDs: []string{"ans1"}})
	require.NoError(t, err)

	assert.Equal(t, interfaces.StateNeedsReview, run.State)
	require.Len(t, run.Result.LowConfidence, 1)
	assert.Equal(t, "q-kyc", run.Result.LowConfidence[0].QuestionID)

	// Resolving the question with a clear answer completes the run.
	run, err = o.Resubmit(context.Background(), run.ID, Supplement{
		Answers: map[string]string{"q-kyc": "Yes, identity is verified for every customer."},
	})
	require.NoError(t, err)

	assert.Equal(t, interfaces.StateCompleted, run.State)
	assert.Empty(t, run.Result.LowConfidence)
}

func TestResubmit_RequiresNeedsReview(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	run, err := o.CreateRun("Acme", testWeights(), testQuestions(),
		[]interfaces.EvidenceItem{exportItem(90, 90)})
	require.NoError(t, err)

	_, err = o.Resubmit(context.Background(), run.ID, Supplement{
		Answers: map[string]string{"q-kyc": "Yes."},
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSkipReview_FlagsRunForAudit(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	run, err := o.CreateRun("Acme", testWeights(), testQuestions(), []interfaces.EvidenceItem{
		{ID: "ans1", Source: interfaces.SourceManualAnswer, QuestionID: "q-kyc", Text: "Unsure, probably."},
		{ID: "ans2", Source: interfaces.SourceManualAnswer, QuestionID: "q-risk", Text: "Yes, annually."},
	})
	require.NoError(t, err)

	run, err = o.Execute(context.Background(), run.ID, Submission{})
	require.NoError(t, err)
	require.Equal(t, interfaces.StateNeedsReview, run.State)

	run, err = o.SkipReview(run.ID)
	require.NoError(t, err)

	assert.Equal(t, interfaces.StateCompleted, run.State)
	assert.True(t, run.ReviewSkipped)
	assert.NotEmpty(t, run.Result.LowConfidence, "skipping keeps the unresolved questions visible")
}

func TestExecute_FailedItemDoesNotFailRun(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	run, err := o.CreateRun("Acme", testWeights(), testQuestions(), []interfaces.EvidenceItem{
		exportItem(70, 60),
		{ID: "baddoc", Source: interfaces.SourceUploadedDocument, Title: "Empty upload", Text: "   "},
	})
	require.NoError(t, err)

	run, err = o.Execute(context.Background(), run.ID, Submission{})
	require.NoError(t, err, "one broken document must not fail the run")

	assert.Equal(t, interfaces.StateCompleted, run.State)
	assert.Equal(t, 65.0, run.Result.Overall)

	for _, item := range run.Evidence {
		if item.ID == "baddoc" {
			assert.Equal(t, interfaces.AnalysisFailed, item.State)
		}
	}
}

func TestExecute_CancelledContextFailsRun(t *testing.T) {
	o, store := newTestOrchestrator(t)

	run, err := o.CreateRun("Acme", testWeights(), testQuestions(),
		[]interfaces.EvidenceItem{exportItem(90, 90)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = o.Execute(ctx, run.ID, Submission{})
	assert.ErrorIs(t, err, ErrAggregationFailed)

	stored, err := store.Get(run.ID)
	require.NoError(t, err)
	assert.Equal(t, interfaces.StateFailed, stored.State)
}

func TestExecute_IdempotentOverFrozenEvidence(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	items := []interfaces.EvidenceItem{exportItem(70, 40)}

	first, err := o.CreateRun("Acme", testWeights(), testQuestions(), items)
	require.NoError(t, err)
	first, err = o.Execute(context.Background(), first.ID, Submission{})
	require.NoError(t, err)

	second, err := o.CreateRun("Acme", testWeights(), testQuestions(), items)
	require.NoError(t, err)
	second, err = o.Execute(context.Background(), second.ID, Submission{})
	require.NoError(t, err)

	if diff := cmp.Diff(first.Result, second.Result); diff != "" {
		t.Errorf("identical frozen evidence produced different results (-first +second):\n%s", diff)
	}
}
