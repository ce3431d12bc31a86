package assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/toyinlola/complyscore/pkg/evidence"
	"github.com/toyinlola/complyscore/pkg/interfaces"
	"github.com/toyinlola/complyscore/pkg/scorer"
	"github.com/toyinlola/complyscore/pkg/weights"
)

var (
	// ErrInvalidTransition is returned when an operation is attempted in a
	// state that does not allow it.
	ErrInvalidTransition = errors.New("assessment: invalid state transition")

	// ErrNoEvidence is returned when scoring is requested with no evidence
	// items selected.
	ErrNoEvidence = errors.New("assessment: at least one evidence item must be selected")

	// ErrAggregationFailed wraps unexpected faults during score computation.
	// The run transitions to FAILED; the caller sees a generic retryable
	// message without internal detail.
	ErrAggregationFailed = errors.New("assessment failed, please retry")
)

// Submission selects which evidence items participate in scoring. An empty
// ItemIDs selects every item on the run.
type Submission struct {
	ItemIDs []string
}

// Supplement carries manual answers and/or new documents submitted to
// resolve low-confidence questions.
type Supplement struct {
	Answers   map[string]string // question ID → answer text
	Documents []interfaces.EvidenceItem
}

// Orchestrator runs the assessment state machine:
//
//	DRAFT → SCORING → COMPLETED | NEEDS_REVIEW
//	NEEDS_REVIEW → RESCORING → COMPLETED | NEEDS_REVIEW
//	NEEDS_REVIEW → COMPLETED (explicit skip, flagged for audit)
//	any scoring fault → FAILED (terminal)
//
// Scoring for a given run is serialized: at most one aggregation is active
// per run ID, so two concurrent triggers can never interleave gap sets.
type Orchestrator struct {
	store    *Store
	engine   *evidence.Engine
	agg      *scorer.Aggregator
	validate *validator.Validate

	mu       sync.Mutex
	runLocks map[string]*sync.Mutex
}

// NewOrchestrator creates an orchestrator over the given store, analysis
// engine, and aggregator.
func NewOrchestrator(store *Store, engine *evidence.Engine, agg *scorer.Aggregator) *Orchestrator {
	return &Orchestrator{
		store:    store,
		engine:   engine,
		agg:      agg,
		validate: validator.New(),
		runLocks: make(map[string]*sync.Mutex),
	}
}

// Adopt registers an externally-loaded run (for example one restored from a
// state file) so subsequent operations can find it.
func (o *Orchestrator) Adopt(run *interfaces.AssessmentRun) {
	o.store.Put(run)
}

// lockRun returns the mutex serializing scoring for one run ID.
func (o *Orchestrator) lockRun(id string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()

	lock, ok := o.runLocks[id]
	if !ok {
		lock = &sync.Mutex{}
		o.runLocks[id] = lock
	}
	return lock
}

// CreateRun validates the template configuration and registers a new DRAFT
// run. Weight validation happens here, at the configuration boundary, so a
// bad weight set never reaches scoring.
func (o *Orchestrator) CreateRun(organization string, weightSet interfaces.CategoryWeightSet, questions []interfaces.Question, items []interfaces.EvidenceItem) (*interfaces.AssessmentRun, error) {
	if err := weights.RequireValid(weightSet.Values(), "category weights"); err != nil {
		return nil, err
	}
	for i, q := range questions {
		if err := o.validate.Struct(q); err != nil {
			return nil, fmt.Errorf("assessment: question %d invalid: %w", i, err)
		}
	}
	for i, cw := range weightSet {
		if err := o.validate.Struct(cw); err != nil {
			return nil, fmt.Errorf("assessment: weight %d invalid: %w", i, err)
		}
	}

	now := time.Now()
	run := &interfaces.AssessmentRun{
		ID:           uuid.NewString(),
		Organization: organization,
		State:        interfaces.StateDraft,
		Weights:      weightSet,
		Questions:    questions,
		Evidence:     items,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for i := range run.Evidence {
		if run.Evidence[i].ID == "" {
			run.Evidence[i].ID = uuid.NewString()
		}
		run.Evidence[i].State = interfaces.AnalysisPending
	}

	o.store.Put(run)
	slog.Info("assessment run created", "run", run.ID, "organization", organization,
		"questions", len(questions), "evidence", len(items))
	return run, nil
}

// Execute drives DRAFT → SCORING → COMPLETED | NEEDS_REVIEW for the
// user-selected evidence set.
func (o *Orchestrator) Execute(ctx context.Context, runID string, sub Submission) (*interfaces.AssessmentRun, error) {
	lock := o.lockRun(runID)
	lock.Lock()
	defer lock.Unlock()

	run, err := o.store.Get(runID)
	if err != nil {
		return nil, err
	}
	if run.State != interfaces.StateDraft {
		return nil, fmt.Errorf("%w: cannot score run in state %s", ErrInvalidTransition, run.State)
	}

	selected, err := selectItems(run, sub)
	if err != nil {
		return nil, err
	}

	return o.score(ctx, run, selected, interfaces.StateScoring)
}

// Resubmit merges supplementary answers and documents into a NEEDS_REVIEW
// run and re-scores it. Previously-resolved questions drop out of the
// pending set; newly-surfaced low-confidence items are added.
func (o *Orchestrator) Resubmit(ctx context.Context, runID string, supp Supplement) (*interfaces.AssessmentRun, error) {
	lock := o.lockRun(runID)
	lock.Lock()
	defer lock.Unlock()

	run, err := o.store.Get(runID)
	if err != nil {
		return nil, err
	}
	if run.State != interfaces.StateNeedsReview {
		return nil, fmt.Errorf("%w: cannot resubmit evidence for run in state %s", ErrInvalidTransition, run.State)
	}
	if len(supp.Answers) == 0 && len(supp.Documents) == 0 {
		return nil, fmt.Errorf("%w: resubmission carries no answers or documents", ErrNoEvidence)
	}

	mergeSupplement(run, supp)

	// Re-analyze everything that has not permanently failed, plus the new
	// evidence. Failed items stay failed and contribute nothing.
	var selected []*interfaces.EvidenceItem
	for i := range run.Evidence {
		if run.Evidence[i].State == interfaces.AnalysisFailed {
			continue
		}
		selected = append(selected, &run.Evidence[i])
	}
	if len(selected) == 0 {
		return nil, ErrNoEvidence
	}

	return o.score(ctx, run, selected, interfaces.StateRescoring)
}

// SkipReview accepts the current results despite unresolved low-confidence
// questions. The ReviewSkipped flag is persisted for audit and accuracy
// disclosure.
func (o *Orchestrator) SkipReview(runID string) (*interfaces.AssessmentRun, error) {
	lock := o.lockRun(runID)
	lock.Lock()
	defer lock.Unlock()

	run, err := o.store.Get(runID)
	if err != nil {
		return nil, err
	}
	if run.State != interfaces.StateNeedsReview {
		return nil, fmt.Errorf("%w: cannot skip review for run in state %s", ErrInvalidTransition, run.State)
	}

	run.State = interfaces.StateCompleted
	run.ReviewSkipped = true
	run.UpdatedAt = time.Now()
	o.store.Put(run)

	slog.Warn("review skipped with unresolved low-confidence questions",
		"run", run.ID, "pending", len(run.Result.LowConfidence))
	return run, nil
}

// score runs analysis and aggregation, then lands the run in its next state.
func (o *Orchestrator) score(ctx context.Context, run *interfaces.AssessmentRun, selected []*interfaces.EvidenceItem, via interfaces.RunState) (*interfaces.AssessmentRun, error) {
	run.State = via
	run.UpdatedAt = time.Now()
	o.store.Put(run)

	results, err := o.engine.Run(ctx, selected, run.Questions)
	if err != nil {
		// Cancellation or other engine-level fault, not a per-item failure.
		return o.fail(run, fmt.Errorf("running evidence analysis: %w", err))
	}

	for _, res := range results {
		if res.Err != nil {
			slog.Warn("evidence item excluded from scoring", "run", run.ID, "item", res.ItemID, "error", res.Err)
		}
	}

	result, err := o.agg.Score(run.Questions, results, run.Weights)
	if err != nil {
		return o.fail(run, fmt.Errorf("aggregating scores: %w", err))
	}

	run.Result = result
	if len(result.LowConfidence) > 0 {
		run.State = interfaces.StateNeedsReview
	} else {
		run.State = interfaces.StateCompleted
	}
	run.UpdatedAt = time.Now()
	o.store.Put(run)

	slog.Info("assessment scored", "run", run.ID, "overall", result.Overall,
		"risk", result.RiskLevel, "gaps", len(result.Gaps),
		"low_confidence", len(result.LowConfidence), "state", run.State)
	return run, nil
}

// fail transitions the run to the terminal FAILED state. The detailed cause
// is logged; callers get a generic retryable error.
func (o *Orchestrator) fail(run *interfaces.AssessmentRun, cause error) (*interfaces.AssessmentRun, error) {
	slog.Error("assessment run failed", "run", run.ID, "error", cause)
	run.State = interfaces.StateFailed
	run.UpdatedAt = time.Now()
	o.store.Put(run)
	return run, ErrAggregationFailed
}

// selectItems resolves the submission's explicit item selection against the
// run's evidence. An empty selection means everything.
func selectItems(run *interfaces.AssessmentRun, sub Submission) ([]*interfaces.EvidenceItem, error) {
	if len(sub.ItemIDs) == 0 {
		if len(run.Evidence) == 0 {
			return nil, ErrNoEvidence
		}
		selected := make([]*interfaces.EvidenceItem, len(run.Evidence))
		for i := range run.Evidence {
			selected[i] = &run.Evidence[i]
		}
		return selected, nil
	}

	byID := make(map[string]*interfaces.EvidenceItem, len(run.Evidence))
	for i := range run.Evidence {
		byID[run.Evidence[i].ID] = &run.Evidence[i]
	}

	selected := make([]*interfaces.EvidenceItem, 0, len(sub.ItemIDs))
	for _, id := range sub.ItemIDs {
		item, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("assessment: unknown evidence item %q", id)
		}
		selected = append(selected, item)
	}
	return selected, nil
}

// mergeSupplement folds resubmitted answers and documents into the run.
// A new manual answer supersedes any prior manual answer for the same
// question; documents are appended.
func mergeSupplement(run *interfaces.AssessmentRun, supp Supplement) {
	if len(supp.Answers) > 0 {
		kept := run.Evidence[:0]
		for _, item := range run.Evidence {
			if item.Source == interfaces.SourceManualAnswer {
				if _, replaced := supp.Answers[item.QuestionID]; replaced {
					continue
				}
			}
			kept = append(kept, item)
		}
		run.Evidence = kept

		for questionID, answer := range supp.Answers {
			run.Evidence = append(run.Evidence, interfaces.EvidenceItem{
				ID:         uuid.NewString(),
				Source:     interfaces.SourceManualAnswer,
				QuestionID: questionID,
				Text:       answer,
				State:      interfaces.AnalysisPending,
			})
		}
	}

	for _, doc := range supp.Documents {
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}
		doc.State = interfaces.AnalysisPending
		run.Evidence = append(run.Evidence, doc)
	}
}
