package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/toyinlola/complyscore/pkg/interfaces"
)

func sampleRun() *interfaces.AssessmentRun {
	return &interfaces.AssessmentRun{
		ID:           "run-1",
		Organization: "Acme Payments",
		State:        interfaces.StateCompleted,
		Evidence: []interfaces.EvidenceItem{
			{ID: "e1", State: interfaces.AnalysisComplete},
			{ID: "e2", State: interfaces.AnalysisComplete},
			{ID: "e3", State: interfaces.AnalysisFailed},
		},
		Result: &interfaces.ScoreResult{
			Overall:   55,
			RiskLevel: interfaces.RiskHigh,
			ByCategory: map[string]float64{
				"Risk Assessment":        70,
				"KYC and AML Procedures": 40,
			},
			Gaps: []interfaces.Gap{
				{GapCategory: "Data Retention", Severity: interfaces.SeverityMedium, Description: "Data Retention scored 45/100, below the 60 gap threshold"},
				{GapCategory: "KYC and AML Procedures", Severity: interfaces.SeverityHigh, Description: "KYC and AML Procedures scored 40/100, below the 60 gap threshold", VendorCategory: interfaces.CategoryKYCAML},
			},
			LowConfidence: []interfaces.LowConfidenceQuestion{
				{QuestionID: "q-kyc", Question: "Is customer identity verified?", Confidence: 0.4, SectionTitle: "CDD", CurrentAnswer: "We think so."},
			},
		},
	}
}

func TestGenerate_EvidenceCountsAndGapOrder(t *testing.T) {
	report := NewGenerator().Generate(sampleRun(), 2*time.Second)

	if report.EvidenceUsed != 2 || report.EvidenceTotal != 3 {
		t.Errorf("evidence counts = %d/%d, want 2/3", report.EvidenceUsed, report.EvidenceTotal)
	}
	if !strings.HasPrefix(report.ID, "rpt-") {
		t.Errorf("report ID %q missing rpt- prefix", report.ID)
	}
	if report.Result.Gaps[0].Severity != interfaces.SeverityHigh {
		t.Errorf("expected gaps sorted worst-first, got %s first", report.Result.Gaps[0].Severity)
	}
}

func TestTerminalFormatter(t *testing.T) {
	report := NewGenerator().Generate(sampleRun(), time.Second)

	var buf bytes.Buffer
	if err := NewTerminalFormatter().Format(&buf, report); err != nil {
		t.Fatalf("Format: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Acme Payments",
		"55/100",
		"HIGH risk",
		"KYC and AML Procedures",
		"NEEDS REVIEW (1)",
		"q-kyc",
		"KYC_AML",
		"Evidence: 2/3 analyzed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("terminal output missing %q", want)
		}
	}
}

func TestTerminalFormatter_ReviewSkippedDisclosure(t *testing.T) {
	run := sampleRun()
	run.ReviewSkipped = true
	report := NewGenerator().Generate(run, time.Second)

	var buf bytes.Buffer
	if err := NewTerminalFormatter().Format(&buf, report); err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.Contains(buf.String(), "Review skipped") {
		t.Error("expected review-skipped disclosure in terminal output")
	}
}

func TestJSONFormatter_RoundTrips(t *testing.T) {
	report := NewGenerator().Generate(sampleRun(), time.Second)

	var buf bytes.Buffer
	if err := NewJSONFormatter().Format(&buf, report); err != nil {
		t.Fatalf("Format: %v", err)
	}

	var decoded interfaces.Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Result == nil || decoded.Result.Overall != 55 {
		t.Error("expected score result to survive JSON encoding")
	}
}

func TestMarkdownFormatter(t *testing.T) {
	report := NewGenerator().Generate(sampleRun(), time.Second)

	var buf bytes.Buffer
	if err := NewMarkdownFormatter().Format(&buf, report); err != nil {
		t.Fatalf("Format: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# ComplyScore Assessment Report",
		"| **Risk Level** | HIGH |",
		"## Compliance Gaps (2)",
		"`KYC_AML`",
		"## Needs Review (1)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"terminal", false},
		{"", false},
		{"json", false},
		{"markdown", false},
		{"xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			_, err := ForFormat(tt.format)
			if (err != nil) != tt.wantErr {
				t.Errorf("ForFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
		})
	}
}

func TestFormatters_NilResult(t *testing.T) {
	report := NewGenerator().Generate(&interfaces.AssessmentRun{
		ID:           "run-2",
		Organization: "Acme",
		State:        interfaces.StateFailed,
	}, time.Second)

	for name, f := range map[string]Formatter{
		"terminal": NewTerminalFormatter(),
		"markdown": NewMarkdownFormatter(),
		"json":     NewJSONFormatter(),
	} {
		var buf bytes.Buffer
		if err := f.Format(&buf, report); err != nil {
			t.Errorf("%s formatter failed on nil result: %v", name, err)
		}
	}
}
