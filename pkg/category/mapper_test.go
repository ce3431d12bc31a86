package category

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/toyinlola/complyscore/pkg/interfaces"
)

func TestMap_EmptyAndWhitespace(t *testing.T) {
	m := NewMapper()

	for _, label := range []string{"", "   ", "\t\n"} {
		if cat, ok := m.Map(label); ok {
			t.Errorf("Map(%q) = %q, want no match", label, cat)
		}
	}
}

func TestMap_ExactAliases(t *testing.T) {
	m := NewMapper()

	tests := []struct {
		label string
		want  interfaces.CanonicalCategory
	}{
		{"kyc", interfaces.CategoryKYCAML},
		{"aml", interfaces.CategoryKYCAML},
		{"sanctions screening", interfaces.CategorySanctionsScreening},
		{"geographic risk assessment", interfaces.CategoryRiskAssessment},
		{"compliance training", interfaces.CategoryComplianceTraining},
		{"sar filing", interfaces.CategoryRegulatoryReporting},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := m.Map(tt.label)
			if !ok {
				t.Fatalf("Map(%q) did not match", tt.label)
			}
			if got != tt.want {
				t.Errorf("Map(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestMap_CaseInsensitiveAndTrimmed(t *testing.T) {
	m := NewMapper()

	variants := []string{"KYC", "kyc", "Kyc", "  kyc  ", "\tKYC\n"}
	for _, label := range variants {
		got, ok := m.Map(label)
		if !ok || got != interfaces.CategoryKYCAML {
			t.Errorf("Map(%q) = %q/%v, want KYC_AML", label, got, ok)
		}
	}
}

func TestMap_FuzzyKeywordPriority(t *testing.T) {
	m := NewMapper()

	tests := []struct {
		label string
		want  interfaces.CanonicalCategory
	}{
		// "kyc" must win over the generic "risk" rule.
		{"KYC and AML Procedures", interfaces.CategoryKYCAML},
		{"Customer risk rating under KYC program", interfaces.CategoryKYCAML},
		// "sanction" before "risk".
		{"Sanctions and embargo risk exposure", interfaces.CategorySanctionsScreening},
		// "transaction" before "reporting".
		{"Transaction reporting pipeline", interfaces.CategoryTransactionMonitoring},
		{"Cross-border payment controls", interfaces.CategoryTransactionMonitoring},
		{"Annual anti-bribery training rollout", interfaces.CategoryComplianceTraining},
		{"Regulatory change management", interfaces.CategoryRegulatoryReporting},
		{"Data governance committee charter", interfaces.CategoryDataGovernance},
		{"Trade surveillance alert tuning", interfaces.CategoryTradeSurveillance},
		// Generic fallback.
		{"Third-party risk review", interfaces.CategoryRiskAssessment},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := m.Map(tt.label)
			if !ok {
				t.Fatalf("Map(%q) did not match", tt.label)
			}
			if got != tt.want {
				t.Errorf("Map(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestMap_VerboseAIDescription(t *testing.T) {
	m := NewMapper()

	label := "The organization lacks a documented process for screening counterparties against applicable sanction lists"
	got, ok := m.Map(label)
	if !ok || got != interfaces.CategorySanctionsScreening {
		t.Errorf("Map(verbose) = %q/%v, want SANCTIONS_SCREENING", got, ok)
	}
}

func TestMap_UnknownLabel(t *testing.T) {
	m := NewMapper()

	if cat, ok := m.Map("Completely Unknown Category"); ok {
		t.Errorf("Map(unknown) = %q, want no match", cat)
	}
}

func TestLoadRules_OverridesPriority(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yml")

	content := `
rules:
  - keyword: risk
    category: RISK_ASSESSMENT
  - keyword: kyc
    category: KYC_AML
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	opts, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}

	m := NewMapper(opts...)

	// With "risk" listed first, the same label now resolves differently.
	got, ok := m.Map("KYC risk procedures")
	if !ok || got != interfaces.CategoryRiskAssessment {
		t.Errorf("Map with overridden priority = %q/%v, want RISK_ASSESSMENT", got, ok)
	}
}

func TestLoadRules_RejectsUnknownCategory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yml")

	content := `
rules:
  - keyword: foo
    category: NOT_A_CATEGORY
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadRules(path); err == nil {
		t.Error("expected error for rule mapping to unknown category")
	}
}
