// Package evidence grades the trustworthiness of supporting evidence and
// runs per-item analysis to turn raw evidence into scored answers.
package evidence

import "github.com/toyinlola/complyscore/pkg/interfaces"

// TierOf assigns a trust tier from the item's source and analysis outcome.
// The source set is closed and matched exhaustively; an unrecognized source
// reports pending rather than silently falling through to self-declared.
//
//	TIER_2 — verifiable system-generated extraction (structured export)
//	TIER_1 — uploaded policy document that analysis successfully parsed
//	TIER_0 — self-declared answer with no corroborating document
//	pending — analysis not yet at a terminal success state; contributes
//	          zero weight to scoring until resolved
func TierOf(item interfaces.EvidenceItem) interfaces.EvidenceTier {
	switch item.Source {
	case interfaces.SourceAIExtracted:
		if item.State == interfaces.AnalysisComplete {
			return interfaces.Tier2
		}
		return interfaces.TierPending
	case interfaces.SourceUploadedDocument:
		if item.State == interfaces.AnalysisComplete {
			return interfaces.Tier1
		}
		// Uploaded but unanalyzed or failed: the item must not contribute
		// above pending status.
		return interfaces.TierPending
	case interfaces.SourceManualAnswer:
		return interfaces.Tier0
	}
	return interfaces.TierPending
}
