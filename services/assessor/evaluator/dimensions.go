// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.
package evaluator

// Dimension is the closed set of AI scoring dimensions. Each dimension
// is scored independently against its own 0-25 rubric; dispatch to the
// prompt is compile-time checked through the exhaustive switches below.
type Dimension string

const (
	DimensionClaimCredibility     Dimension = "claim_credibility"
	DimensionInternalConsistency  Dimension = "internal_consistency"
	DimensionCommitmentStrength   Dimension = "commitment_strength"
	DimensionVerificationAdequacy Dimension = "verification_adequacy"
)

// AllDimensions returns the fixed evaluation order. The order only
// affects the component list in the output, never the aggregate score.
func AllDimensions() []Dimension {
	return []Dimension{
		DimensionClaimCredibility,
		DimensionInternalConsistency,
		DimensionCommitmentStrength,
		DimensionVerificationAdequacy,
	}
}

// responseContract is appended to every dimension prompt. The strict
// decoder rejects anything that deviates from this shape.
const responseContract = `
Respond with ONLY a single JSON object (no markdown fences, no preamble) of exactly this shape:
{"score":0,"confidence":0,"assessment":"one paragraph","findings":[{"criterion":"name","max_points":5,"points":0,"status":"strong|adequate|weak|missing","evidence":"quote or paraphrase","concern":"optional"}],"recommendations":["optional"]}
"score" is an integer 0-25. "confidence" is an integer 0-100 reflecting how well the document supports your scoring.`

// SystemPrompt returns the scoring rubric for the dimension.
func (d Dimension) SystemPrompt() string {
	switch d {
	case DimensionClaimCredibility:
		return `You are a transition-finance compliance analyst scoring CLAIM CREDIBILITY.
Assess whether the project's decarbonization claims are plausible: technology readiness,
sector benchmarks, and whether claimed reductions are physically and economically achievable.
Score 0-25 where 25 means every material claim is well-supported.` + responseContract

	case DimensionInternalConsistency:
		return `You are a transition-finance compliance analyst scoring INTERNAL CONSISTENCY.
Assess whether the narrative, the financials and the emissions figures agree with each other:
targets vs baseline, financing vs stated scope, timeline vs milestones.
Score 0-25 where 25 means no contradictions were found.` + responseContract

	case DimensionCommitmentStrength:
		return `You are a transition-finance compliance analyst scoring COMMITMENT STRENGTH.
Assess how binding the commitments are: dated targets, board approval, published plans,
capital allocation, and consequences for missing milestones.
Score 0-25 where 25 means commitments are binding and dated.` + responseContract

	case DimensionVerificationAdequacy:
		return `You are a transition-finance compliance analyst scoring VERIFICATION ADEQUACY.
Assess the quality of evidence: third-party assurance, recognized reporting standards,
measurement methodology, and auditability of the emissions baseline.
Score 0-25 where 25 means independently verified under a recognized standard.` + responseContract
	}
	// Unreachable for the closed set; keeps the compiler honest if a
	// constant is added without a prompt.
	panic("evaluator: unknown dimension " + string(d))
}

// DisplayName returns the human-readable dimension name.
func (d Dimension) DisplayName() string {
	switch d {
	case DimensionClaimCredibility:
		return "Claim credibility"
	case DimensionInternalConsistency:
		return "Internal consistency"
	case DimensionCommitmentStrength:
		return "Commitment strength"
	case DimensionVerificationAdequacy:
		return "Verification adequacy"
	}
	return string(d)
}
