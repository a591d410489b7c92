// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package combiner merges the rule, AI and safeguard signals into the
// terminal CombinedAssessment. It is the one component that may never
// fail: whatever the upstream evaluators report, a valid bounded
// assessment comes out.
package combiner

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/Verdant/services/assessor/config"
	"github.com/AleutianAI/Verdant/services/assessor/datatypes"
)

// maxListItems bounds the merged recommendation and positive-indicator
// lists so output size stays predictable.
const maxListItems = 8

// Combiner applies the configured blending mode.
//
// The mode is threaded in explicitly at construction; there is no
// ambient state to consult at combine time.
//
// # Thread Safety
//
// Combiner is immutable after construction and safe for concurrent use.
type Combiner struct {
	mode config.BlendMode
}

// New creates a Combiner with the given blending mode.
func New(mode config.BlendMode) *Combiner {
	return &Combiner{mode: mode}
}

// Combine produces the final assessment.
//
// # Description
//
// Penalty derivation by mode:
//
//   - rule: step function over the rule risk score
//     (>=70 -> 20, >=40 -> 10, >=20 -> 5, else 0)
//   - ai: inverse step over the AI compliance score
//     (>=80 -> 0, >=60 -> 3, >=40 -> 6, >=20 -> 12, else 20)
//   - hybrid: round(0.6*aiPenalty + 0.4*rulePenalty)
//
// When the AI evaluator reports failure (or was never run), the
// combiner silently behaves as if the mode were rule, regardless of
// configuration — a degraded AI signal is never presented as
// authoritative. The safeguard assessment is attached verbatim and
// contributes nothing to the penalty.
func (c *Combiner) Combine(rule datatypes.RuleResult, ai *datatypes.AIResult, sg *datatypes.SafeguardAssessment) datatypes.CombinedAssessment {
	aiUsable := ai != nil && ai.Success

	mode := c.mode
	if !aiUsable {
		mode = config.ModeRule
	}

	rulePen := rulePenalty(rule.RiskScore)
	penalty := rulePen
	switch mode {
	case config.ModeAI:
		penalty = aiPenalty(ai.NormalizedScore)
	case config.ModeHybrid:
		penalty = int(math.Round(0.6*float64(aiPenalty(ai.NormalizedScore)) + 0.4*float64(rulePen)))
	}
	if penalty < 0 {
		penalty = 0
	}
	if penalty > datatypes.MaxCombinedPenalty {
		penalty = datatypes.MaxCombinedPenalty
	}

	recommendations := ruleRecommendations(rule.Flags)
	positives := append([]string{}, rule.PositiveIndicators...)
	var aiResult *datatypes.AIResult
	if aiUsable {
		aiResult = ai
		recommendations = append(recommendations, aiRecommendations(ai)...)
		positives = append(positives, ai.PositiveFindings...)
	}

	return datatypes.CombinedAssessment{
		AssessmentID:        uuid.NewString(),
		EvaluatedAt:         time.Now().UTC(),
		RiskLevel:           riskLevelForPenalty(penalty),
		CombinedPenalty:     penalty,
		RuleFlags:           rule.Flags,
		RuleRiskScore:       rule.RiskScore,
		PositiveIndicators:  dedupe(positives),
		Recommendations:     dedupe(recommendations),
		AIEvaluationUsed:    aiUsable,
		AIResult:            aiResult,
		SafeguardAssessment: sg,
	}
}

// rulePenalty converts the 0-100 rule risk score into a penalty.
func rulePenalty(riskScore int) int {
	switch {
	case riskScore >= 70:
		return 20
	case riskScore >= 40:
		return 10
	case riskScore >= 20:
		return 5
	default:
		return 0
	}
}

// aiPenalty converts the 0-100 AI compliance score into a penalty.
// Inverse step: higher compliance means lower penalty, monotonically.
func aiPenalty(normalizedScore int) int {
	switch {
	case normalizedScore >= 80:
		return 0
	case normalizedScore >= 60:
		return 3
	case normalizedScore >= 40:
		return 6
	case normalizedScore >= 20:
		return 12
	default:
		return 20
	}
}

// riskLevelForPenalty maps the bounded penalty to the output risk level.
func riskLevelForPenalty(penalty int) datatypes.RiskLevel {
	switch {
	case penalty >= 15:
		return datatypes.RiskHigh
	case penalty >= 6:
		return datatypes.RiskMedium
	default:
		return datatypes.RiskLow
	}
}

func ruleRecommendations(flags []datatypes.RedFlag) []string {
	recs := make([]string, 0, len(flags))
	for _, f := range flags {
		if f.Recommendation != "" {
			recs = append(recs, f.Recommendation)
		}
	}
	return recs
}

func aiRecommendations(ai *datatypes.AIResult) []string {
	var recs []string
	for _, comp := range ai.Components {
		recs = append(recs, comp.Recommendations...)
	}
	return recs
}

// dedupe removes entries that are substrings of an already kept entry
// (or vice versa) and truncates the list to maxListItems.
func dedupe(items []string) []string {
	kept := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		duplicate := false
		for _, existing := range kept {
			lowerItem, lowerExisting := strings.ToLower(item), strings.ToLower(existing)
			if strings.Contains(lowerExisting, lowerItem) || strings.Contains(lowerItem, lowerExisting) {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		kept = append(kept, item)
		if len(kept) == maxListItems {
			break
		}
	}
	return kept
}
