// Package risk classifies numeric compliance scores into ordinal risk levels.
package risk

import "github.com/toyinlola/complyscore/pkg/interfaces"

// Band boundaries, inclusive of the lower bound.
const (
	LowThreshold    = 80 // score >= 80 → LOW risk
	MediumThreshold = 60 // score >= 60 → MEDIUM risk
	HighThreshold   = 30 // score >= 30 → HIGH risk, below → CRITICAL
)

// LevelFromScore maps a score to its risk level. Higher score = better
// compliance = lower risk.
//
//	score < 30   → CRITICAL
//	30 ≤ s < 60  → HIGH
//	60 ≤ s < 80  → MEDIUM
//	score ≥ 80   → LOW
//
// Out-of-range input never panics: negative scores classify as CRITICAL and
// scores above 100 classify as LOW (the worse-case clamp for bad upstream data).
func LevelFromScore(score float64) interfaces.RiskLevel {
	switch {
	case score >= LowThreshold:
		return interfaces.RiskLow
	case score >= MediumThreshold:
		return interfaces.RiskMedium
	case score >= HighThreshold:
		return interfaces.RiskHigh
	default:
		return interfaces.RiskCritical
	}
}

// severityRank orders risk levels worst-first for comparisons.
var severityRank = map[interfaces.RiskLevel]int{
	interfaces.RiskCritical: 0,
	interfaces.RiskHigh:     1,
	interfaces.RiskMedium:   2,
	interfaces.RiskLow:      3,
}

// WorseThan reports whether level a is worse (higher risk) than level b.
func WorseThan(a, b interfaces.RiskLevel) bool {
	return severityRank[a] < severityRank[b]
}
