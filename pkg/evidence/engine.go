package evidence

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/toyinlola/complyscore/pkg/interfaces"
)

// maxConcurrentAnalyses bounds how many evidence items are analyzed at once.
const maxConcurrentAnalyses = 4

// Analyzer turns one evidence item into scored answers.
type Analyzer interface {
	// Source returns the evidence source this analyzer handles.
	Source() interfaces.EvidenceSource

	// Analyze produces scored answers for the item against the questionnaire.
	Analyze(ctx context.Context, item *interfaces.EvidenceItem, questions []interfaces.Question) (*interfaces.AnalysisResult, error)
}

// Registry maps evidence sources to their analyzers.
type Registry struct {
	mu        sync.RWMutex
	analyzers map[interfaces.EvidenceSource]Analyzer
}

// NewRegistry creates an empty analyzer registry.
func NewRegistry() *Registry {
	return &Registry{
		analyzers: make(map[interfaces.EvidenceSource]Analyzer),
	}
}

// Register adds an analyzer. Returns an error if the source already has one.
func (r *Registry) Register(a Analyzer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	source := a.Source()
	if _, exists := r.analyzers[source]; exists {
		return fmt.Errorf("evidence: analyzer for source %q is already registered", source)
	}
	r.analyzers[source] = a
	return nil
}

// Get returns the analyzer for a source, or nil if none is registered.
func (r *Registry) Get(source interfaces.EvidenceSource) Analyzer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.analyzers[source]
}

// Engine runs the registered analyzers over a selected set of evidence items.
type Engine struct {
	registry *Registry
}

// NewEngine creates an analysis engine backed by the given registry.
func NewEngine(registry *Registry) *Engine {
	return &Engine{registry: registry}
}

// Run analyzes the selected items concurrently. Each item is an
// independently-failing unit of work: a failed analysis marks that item
// failed and is reported in its result, but never blocks the remaining
// items. Every selected item reaches a terminal state (analyzed or failed)
// before Run returns, so aggregation can proceed over the ready evidence.
// Item state is updated in place. Respects context cancellation.
func (e *Engine) Run(ctx context.Context, items []*interfaces.EvidenceItem, questions []interfaces.Question) ([]*interfaces.AnalysisResult, error) {
	if len(items) == 0 {
		slog.Info("no evidence items selected for analysis")
		return nil, nil
	}

	slog.Info("starting evidence analysis", "item_count", len(items))

	var (
		mu      sync.Mutex
		results = make([]*interfaces.AnalysisResult, 0, len(items))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentAnalyses)

	for _, item := range items {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			result := e.analyzeItem(gctx, item, questions)

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		slog.Warn("evidence analysis cancelled", "error", err)
		return results, err
	}

	return results, nil
}

// analyzeItem runs one item to a terminal state. Analyzer errors are
// captured in the result, never propagated to the group.
func (e *Engine) analyzeItem(ctx context.Context, item *interfaces.EvidenceItem, questions []interfaces.Question) *interfaces.AnalysisResult {
	start := time.Now()

	analyzer := e.registry.Get(item.Source)
	if analyzer == nil {
		item.State = interfaces.AnalysisFailed
		slog.Error("no analyzer registered for evidence source", "item", item.ID, "source", item.Source)
		return &interfaces.AnalysisResult{
			ItemID:   item.ID,
			Source:   item.Source,
			Duration: time.Since(start),
			Err:      fmt.Errorf("evidence: no analyzer for source %q", item.Source),
		}
	}

	slog.Info("analyzing evidence item", "item", item.ID, "source", item.Source)

	result, err := analyzer.Analyze(ctx, item, questions)
	elapsed := time.Since(start)

	if err != nil {
		item.State = interfaces.AnalysisFailed
		slog.Error("evidence analysis failed", "item", item.ID, "error", err, "duration", elapsed)
		return &interfaces.AnalysisResult{
			ItemID:   item.ID,
			Source:   item.Source,
			Duration: elapsed,
			Err:      fmt.Errorf("evidence: analyzing item %s: %w", item.ID, err),
		}
	}

	item.State = interfaces.AnalysisComplete
	result.ItemID = item.ID
	result.Source = item.Source
	result.Duration = elapsed
	slog.Info("evidence item analyzed", "item", item.ID, "answers", len(result.Answers), "duration", elapsed)
	return result
}
