// Package category maps free-text gap-category labels onto the closed set of
// canonical vendor categories.
package category

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/toyinlola/complyscore/pkg/interfaces"
)

// Rule is one fuzzy keyword-to-category mapping. Rules are evaluated in
// declaration order; the first rule whose keyword is a substring of the
// normalized label wins.
type Rule struct {
	Keyword  string                       `yaml:"keyword"`
	Category interfaces.CanonicalCategory `yaml:"category"`
}

// defaultAliases is the curated table of exact phrases. Many aliases map to
// the same category.
var defaultAliases = map[string]interfaces.CanonicalCategory{
	"kyc":                        interfaces.CategoryKYCAML,
	"aml":                        interfaces.CategoryKYCAML,
	"know your customer":         interfaces.CategoryKYCAML,
	"anti-money laundering":      interfaces.CategoryKYCAML,
	"customer due diligence":     interfaces.CategoryKYCAML,
	"sanctions screening":        interfaces.CategorySanctionsScreening,
	"watchlist screening":        interfaces.CategorySanctionsScreening,
	"transaction monitoring":     interfaces.CategoryTransactionMonitoring,
	"payment screening":          interfaces.CategoryTransactionMonitoring,
	"geographic risk assessment": interfaces.CategoryRiskAssessment,
	"enterprise risk assessment": interfaces.CategoryRiskAssessment,
	"risk appetite":              interfaces.CategoryRiskAssessment,
	"compliance training":        interfaces.CategoryComplianceTraining,
	"staff training":             interfaces.CategoryComplianceTraining,
	"regulatory reporting":       interfaces.CategoryRegulatoryReporting,
	"suspicious activity reporting": interfaces.CategoryRegulatoryReporting,
	"sar filing":                 interfaces.CategoryRegulatoryReporting,
	"data governance":            interfaces.CategoryDataGovernance,
	"record retention":           interfaces.CategoryDataGovernance,
	"trade surveillance":         interfaces.CategoryTradeSurveillance,
	"market abuse":               interfaces.CategoryTradeSurveillance,
}

// defaultRules is the priority-ordered fuzzy keyword table. Specific keywords
// must come before generic ones: "kyc" is checked before "risk" so that
// "KYC and AML Procedures" resolves to KYC_AML rather than a risk fallback.
var defaultRules = []Rule{
	{Keyword: "kyc", Category: interfaces.CategoryKYCAML},
	{Keyword: "aml", Category: interfaces.CategoryKYCAML},
	{Keyword: "money laundering", Category: interfaces.CategoryKYCAML},
	{Keyword: "due diligence", Category: interfaces.CategoryKYCAML},
	{Keyword: "sanction", Category: interfaces.CategorySanctionsScreening},
	{Keyword: "embargo", Category: interfaces.CategorySanctionsScreening},
	{Keyword: "watchlist", Category: interfaces.CategorySanctionsScreening},
	{Keyword: "transaction", Category: interfaces.CategoryTransactionMonitoring},
	{Keyword: "payment", Category: interfaces.CategoryTransactionMonitoring},
	{Keyword: "surveillance", Category: interfaces.CategoryTradeSurveillance},
	{Keyword: "market abuse", Category: interfaces.CategoryTradeSurveillance},
	{Keyword: "training", Category: interfaces.CategoryComplianceTraining},
	{Keyword: "education", Category: interfaces.CategoryComplianceTraining},
	{Keyword: "awareness", Category: interfaces.CategoryComplianceTraining},
	{Keyword: "regulatory", Category: interfaces.CategoryRegulatoryReporting},
	{Keyword: "reporting", Category: interfaces.CategoryRegulatoryReporting},
	{Keyword: "governance", Category: interfaces.CategoryDataGovernance},
	{Keyword: "data protection", Category: interfaces.CategoryDataGovernance},
	{Keyword: "retention", Category: interfaces.CategoryDataGovernance},
	{Keyword: "risk", Category: interfaces.CategoryRiskAssessment},
	{Keyword: "assessment", Category: interfaces.CategoryRiskAssessment},
}

// Mapper resolves free-text category labels to canonical categories.
// It is pure and safe for concurrent use once constructed.
type Mapper struct {
	aliases map[string]interfaces.CanonicalCategory
	rules   []Rule
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithRules replaces the default fuzzy rule list. Order is priority order.
func WithRules(rules []Rule) Option {
	return func(m *Mapper) {
		m.rules = rules
	}
}

// WithAliases replaces the default exact-alias table.
func WithAliases(aliases map[string]interfaces.CanonicalCategory) Option {
	return func(m *Mapper) {
		m.aliases = aliases
	}
}

// NewMapper creates a mapper with the curated default tables.
func NewMapper(opts ...Option) *Mapper {
	m := &Mapper{
		aliases: defaultAliases,
		rules:   defaultRules,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Map resolves a label to a canonical category. The second return is false
// when the label is empty, whitespace-only, or matches nothing; callers must
// treat an unmapped label as "uncategorized", never as an error.
//
// Precedence: exact alias match first, then the fuzzy rules in priority
// order. Matching is case-insensitive and whitespace-tolerant, so verbose
// AI-generated descriptions still resolve via their constituent keywords.
func (m *Mapper) Map(label string) (interfaces.CanonicalCategory, bool) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	if normalized == "" {
		return "", false
	}

	if cat, ok := m.aliases[normalized]; ok {
		return cat, true
	}

	for _, rule := range m.rules {
		if strings.Contains(normalized, rule.Keyword) {
			return rule.Category, true
		}
	}

	return "", false
}

// rulesFile is the on-disk shape of a category rules override file.
type rulesFile struct {
	Aliases map[string]interfaces.CanonicalCategory `yaml:"aliases"`
	Rules   []Rule                                  `yaml:"rules"`
}

// LoadRules reads a YAML rules file and returns mapper options overriding
// the built-in tables. The file's rule order is its priority order, so the
// ordering is testable and editable without a code change.
func LoadRules(path string) ([]Option, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("category: reading rules %s: %w", path, err)
	}

	var rf rulesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("category: parsing rules %s: %w", path, err)
	}

	valid := make(map[interfaces.CanonicalCategory]bool)
	for _, c := range interfaces.CanonicalCategories() {
		valid[c] = true
	}
	for alias, cat := range rf.Aliases {
		if !valid[cat] {
			return nil, fmt.Errorf("category: alias %q maps to unknown category %q", alias, cat)
		}
	}
	for _, rule := range rf.Rules {
		if !valid[rule.Category] {
			return nil, fmt.Errorf("category: rule %q maps to unknown category %q", rule.Keyword, rule.Category)
		}
	}

	var opts []Option
	if len(rf.Aliases) > 0 {
		opts = append(opts, WithAliases(rf.Aliases))
	}
	if len(rf.Rules) > 0 {
		opts = append(opts, WithRules(rf.Rules))
	}
	return opts, nil
}
