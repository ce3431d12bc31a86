// Package report generates compliance reports from scored assessment runs.
package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/toyinlola/complyscore/pkg/interfaces"
)

// severityOrder defines the sort priority for gaps (critical first).
var severityOrder = map[interfaces.Severity]int{
	interfaces.SeverityCritical: 0,
	interfaces.SeverityHigh:     1,
	interfaces.SeverityMedium:   2,
	interfaces.SeverityLow:      3,
}

// Formatter renders a report to a writer in one output format.
type Formatter interface {
	Format(w io.Writer, report *interfaces.Report) error
}

// ForFormat returns the formatter for a format name.
func ForFormat(format string) (Formatter, error) {
	switch format {
	case "terminal", "":
		return NewTerminalFormatter(), nil
	case "json":
		return NewJSONFormatter(), nil
	case "markdown":
		return NewMarkdownFormatter(), nil
	default:
		return nil, fmt.Errorf("report: unknown output format %q", format)
	}
}

// Generator builds reports from completed assessment runs.
type Generator struct{}

// NewGenerator creates a report generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate produces a Report from a scored run. Gaps are ordered critical
// first so the reader sees the worst deficiencies at the top.
func (g *Generator) Generate(run *interfaces.AssessmentRun, duration time.Duration) *interfaces.Report {
	used, total := countEvidence(run.Evidence)

	report := &interfaces.Report{
		ID:            "rpt-" + uuid.NewString(),
		Timestamp:     time.Now(),
		Organization:  run.Organization,
		RunID:         run.ID,
		RunState:      run.State,
		ReviewSkipped: run.ReviewSkipped,
		Result:        run.Result,
		EvidenceUsed:  used,
		EvidenceTotal: total,
		Duration:      duration,
	}

	if report.Result != nil {
		sortGapsBySeverity(report.Result.Gaps)
	}
	return report
}

// countEvidence returns how many items reached the analyzed state and the
// total submitted.
func countEvidence(items []interfaces.EvidenceItem) (used, total int) {
	for _, item := range items {
		if item.State == interfaces.AnalysisComplete {
			used++
		}
	}
	return used, len(items)
}

// sortGapsBySeverity sorts gaps with critical first, low last.
func sortGapsBySeverity(gaps []interfaces.Gap) {
	sort.SliceStable(gaps, func(i, j int) bool {
		oi := severityOrder[gaps[i].Severity]
		oj := severityOrder[gaps[j].Severity]
		if oi != oj {
			return oi < oj
		}
		return gaps[i].GapCategory < gaps[j].GapCategory
	})
}

// sortedCategories returns the by-category keys ordered by score ascending,
// worst first.
func sortedCategories(byCategory map[string]float64) []string {
	keys := make([]string, 0, len(byCategory))
	for k := range byCategory {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if byCategory[keys[i]] != byCategory[keys[j]] {
			return byCategory[keys[i]] < byCategory[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
