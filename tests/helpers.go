// Package tests provides integration test utilities for the ComplyScore pipeline.
package tests

import (
	"bytes"
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/toyinlola/complyscore/pkg/assessment"
	"github.com/toyinlola/complyscore/pkg/bundle"
	"github.com/toyinlola/complyscore/pkg/evidence"
	"github.com/toyinlola/complyscore/pkg/interfaces"
	"github.com/toyinlola/complyscore/pkg/report"
	"github.com/toyinlola/complyscore/pkg/scorer"
)

// fixturesDir returns the absolute path to the test fixtures/bundles directory.
func fixturesDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "fixtures", "bundles")
}

// LoadFixtureBundle loads a fixture bundle by name (e.g., "strong" loads "strong.yml").
func LoadFixtureBundle(t *testing.T, name string) *bundle.Bundle {
	t.Helper()

	path := filepath.Join(fixturesDir(), name+".yml")
	b, err := bundle.Load(path)
	if err != nil {
		t.Fatalf("LoadFixtureBundle(%q): %v", name, err)
	}
	return b
}

// PipelineResult holds the output of a full pipeline run.
type PipelineResult struct {
	Orchestrator *assessment.Orchestrator
	Run          *interfaces.AssessmentRun
	Report       *interfaces.Report
}

// NewOrchestrator builds an orchestrator with every evidence analyzer
// registered and default scoring configuration.
func NewOrchestrator(t *testing.T) *assessment.Orchestrator {
	t.Helper()

	registry := evidence.NewRegistry()
	for _, a := range []evidence.Analyzer{
		evidence.NewDocumentAnalyzer(),
		evidence.NewExportAnalyzer(),
		evidence.NewManualAnswerAnalyzer(),
	} {
		if err := registry.Register(a); err != nil {
			t.Fatalf("registering analyzer for %s: %v", a.Source(), err)
		}
	}

	return assessment.NewOrchestrator(
		assessment.NewStore(),
		evidence.NewEngine(registry),
		scorer.NewAggregator(),
	)
}

// RunPipeline executes the full scoring pipeline (load → create run → score →
// report) and returns all intermediate results.
func RunPipeline(t *testing.T, b *bundle.Bundle) *PipelineResult {
	t.Helper()
	ctx := context.Background()

	orch := NewOrchestrator(t)

	run, err := orch.CreateRun(b.Organization, b.WeightSet(), b.Questions(), b.Evidence())
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	run, err = orch.Execute(ctx, run.ID, assessment.Submission{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	rpt := report.NewGenerator().Generate(run, time.Second)

	return &PipelineResult{
		Orchestrator: orch,
		Run:          run,
		Report:       rpt,
	}
}

// AssertScoreInRange asserts that the overall score falls within [min, max] inclusive.
func AssertScoreInRange(t *testing.T, score float64, min, max float64) {
	t.Helper()
	if score < min || score > max {
		t.Errorf("score %.1f is outside expected range [%.1f, %.1f]", score, min, max)
	}
}

// AssertRiskLevel asserts that the result carries the expected risk level.
func AssertRiskLevel(t *testing.T, got, want interfaces.RiskLevel) {
	t.Helper()
	if got != want {
		t.Errorf("risk level = %q, want %q", got, want)
	}
}

// AssertState asserts the run landed in the expected state.
func AssertState(t *testing.T, got, want interfaces.RunState) {
	t.Helper()
	if got != want {
		t.Errorf("run state = %q, want %q", got, want)
	}
}

// AssertHasGapForVendorCategory checks that at least one gap routes to the
// given canonical category.
func AssertHasGapForVendorCategory(t *testing.T, gaps []interfaces.Gap, cat interfaces.CanonicalCategory) {
	t.Helper()
	for _, g := range gaps {
		if g.VendorCategory == cat {
			return
		}
	}
	t.Errorf("no gap routed to vendor category %q in %d gaps", cat, len(gaps))
}

// FormatReport formats a report using the given formatter and returns the output as a string.
func FormatReport(t *testing.T, formatter report.Formatter, rpt *interfaces.Report) string {
	t.Helper()
	var buf bytes.Buffer
	if err := formatter.Format(&buf, rpt); err != nil {
		t.Fatalf("formatter.Format: %v", err)
	}
	return buf.String()
}
