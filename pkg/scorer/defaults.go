// Package scorer aggregates per-category sub-scores into one overall
// compliance score, emitting gaps and low-confidence questions along the way.
package scorer

import "github.com/toyinlola/complyscore/pkg/interfaces"

// Default tier discount multipliers. Higher-trust evidence contributes at a
// higher multiplier; pending evidence contributes nothing until resolved.
// The exact discounts are configuration, not doctrine — override them with
// WithTierMultipliers when a deployment calibrates differently.
const (
	DefaultMultiplierTier2   = 1.0
	DefaultMultiplierTier1   = 0.9
	DefaultMultiplierTier0   = 0.75
	DefaultMultiplierPending = 0.0
)

// DefaultGapThreshold is the sub-score below which a category emits a Gap.
const DefaultGapThreshold = 60.0

// DefaultConfidenceThreshold is the acceptance threshold under which an
// answer is queued for human review.
const DefaultConfidenceThreshold = 0.6

// Gap severity bands, by discounted sub-score. The further a category falls
// below the gap threshold, the worse the severity.
const (
	GapCriticalBelow = 25.0
	GapHighBelow     = 40.0
	GapMediumBelow   = 50.0
)

// TierMultipliers maps evidence tiers to their contribution multipliers.
type TierMultipliers map[interfaces.EvidenceTier]float64

// DefaultTierMultipliers returns the default tier multiplier map.
func DefaultTierMultipliers() TierMultipliers {
	return TierMultipliers{
		interfaces.Tier2:       DefaultMultiplierTier2,
		interfaces.Tier1:       DefaultMultiplierTier1,
		interfaces.Tier0:       DefaultMultiplierTier0,
		interfaces.TierPending: DefaultMultiplierPending,
	}
}

// Multiplier returns the multiplier for a tier. Unknown tiers contribute
// nothing rather than defaulting to full weight.
func (m TierMultipliers) Multiplier(t interfaces.EvidenceTier) float64 {
	if v, ok := m[t]; ok {
		return v
	}
	return 0.0
}

// severityForSubScore maps a deficient sub-score to a gap severity.
func severityForSubScore(sub float64) interfaces.Severity {
	switch {
	case sub < GapCriticalBelow:
		return interfaces.SeverityCritical
	case sub < GapHighBelow:
		return interfaces.SeverityHigh
	case sub < GapMediumBelow:
		return interfaces.SeverityMedium
	default:
		return interfaces.SeverityLow
	}
}
