// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.
package combiner

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/Verdant/services/assessor/config"
	"github.com/AleutianAI/Verdant/services/assessor/datatypes"
)

func ruleResult(score int) datatypes.RuleResult {
	return datatypes.RuleResult{RiskScore: score}
}

func aiResult(score int) *datatypes.AIResult {
	return &datatypes.AIResult{Success: true, NormalizedScore: score}
}

func TestRulePenaltySteps(t *testing.T) {
	tests := []struct {
		score int
		want  int
	}{
		{100, 20}, {70, 20}, {69, 10}, {40, 10}, {39, 5}, {20, 5}, {19, 0}, {0, 0},
	}
	c := New(config.ModeRule)
	for _, tt := range tests {
		t.Run(fmt.Sprintf("score_%d", tt.score), func(t *testing.T) {
			result := c.Combine(ruleResult(tt.score), nil, nil)
			assert.Equal(t, tt.want, result.CombinedPenalty)
		})
	}
}

func TestAIPenaltySteps(t *testing.T) {
	tests := []struct {
		score int
		want  int
	}{
		{100, 0}, {80, 0}, {79, 3}, {60, 3}, {59, 6}, {40, 6}, {39, 12}, {20, 12}, {19, 20}, {0, 20},
	}
	c := New(config.ModeAI)
	for _, tt := range tests {
		t.Run(fmt.Sprintf("score_%d", tt.score), func(t *testing.T) {
			result := c.Combine(ruleResult(0), aiResult(tt.score), nil)
			assert.Equal(t, tt.want, result.CombinedPenalty)
		})
	}
}

func TestHybridBlend(t *testing.T) {
	tests := []struct {
		name      string
		ruleScore int
		aiScore   int
		want      int
	}{
		// round(0.6*aiPenalty + 0.4*rulePenalty)
		{"both clean", 0, 100, 0},
		{"both worst", 100, 0, 20},
		{"bad rules good ai", 100, 100, 8},   // 0.6*0 + 0.4*20
		{"good rules bad ai", 0, 0, 12},      // 0.6*20 + 0.4*0
		{"middling both", 50, 50, 8},         // 0.6*6 + 0.4*10 = 7.6 -> 8
		{"mild disagreement", 30, 70, 4},     // 0.6*3 + 0.4*5 = 3.8 -> 4
	}
	c := New(config.ModeHybrid)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.Combine(ruleResult(tt.ruleScore), aiResult(tt.aiScore), nil)
			assert.Equal(t, tt.want, result.CombinedPenalty)
		})
	}
}

func TestAIFailureFallsBackToRuleMode(t *testing.T) {
	failed := &datatypes.AIResult{Success: false}
	rule := ruleResult(75) // rule penalty 20

	for _, mode := range []config.BlendMode{config.ModeRule, config.ModeAI, config.ModeHybrid} {
		t.Run(string(mode), func(t *testing.T) {
			result := New(mode).Combine(rule, failed, nil)
			assert.Equal(t, 20, result.CombinedPenalty,
				"failed AI must degrade to the pure rule penalty")
			assert.False(t, result.AIEvaluationUsed)
			assert.Nil(t, result.AIResult, "a failed AI result is not attached to the output")
		})
	}

	// Nil AI result behaves identically to a failed one.
	result := New(config.ModeHybrid).Combine(rule, nil, nil)
	assert.Equal(t, 20, result.CombinedPenalty)
	assert.False(t, result.AIEvaluationUsed)
}

func TestPenaltyBounds(t *testing.T) {
	for _, mode := range []config.BlendMode{config.ModeRule, config.ModeAI, config.ModeHybrid} {
		for ruleScore := 0; ruleScore <= 100; ruleScore += 10 {
			for aiScore := 0; aiScore <= 100; aiScore += 10 {
				result := New(mode).Combine(ruleResult(ruleScore), aiResult(aiScore), nil)
				assert.GreaterOrEqual(t, result.CombinedPenalty, 0)
				assert.LessOrEqual(t, result.CombinedPenalty, datatypes.MaxCombinedPenalty)
			}
		}
	}
}

func TestRiskLevelForPenalty(t *testing.T) {
	tests := []struct {
		penalty int
		want    datatypes.RiskLevel
	}{
		{20, datatypes.RiskHigh},
		{15, datatypes.RiskHigh},
		{14, datatypes.RiskMedium},
		{6, datatypes.RiskMedium},
		{5, datatypes.RiskLow},
		{0, datatypes.RiskLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, riskLevelForPenalty(tt.penalty), "penalty %d", tt.penalty)
	}
}

func TestSafeguardNeverAffectsPenalty(t *testing.T) {
	rule := ruleResult(50)
	ai := aiResult(50)

	safeguards := []*datatypes.SafeguardAssessment{
		nil,
		{OverallStatus: datatypes.SafeguardCompliant, NormalizedScore: 100},
		{OverallStatus: datatypes.SafeguardNonCompliant, NormalizedScore: 5, IsFundamentallyIncompatible: true},
	}

	c := New(config.ModeHybrid)
	baseline := c.Combine(rule, ai, safeguards[0]).CombinedPenalty
	for _, sg := range safeguards[1:] {
		result := c.Combine(rule, ai, sg)
		assert.Equal(t, baseline, result.CombinedPenalty,
			"safeguard signal is reported alongside, never blended in")
		assert.Equal(t, sg, result.SafeguardAssessment)
	}
}

func TestCombine_MergesAndDedupesRecommendations(t *testing.T) {
	rule := datatypes.RuleResult{
		RiskScore: 30,
		Flags: []datatypes.RedFlag{
			{ID: "a", Recommendation: "Publish a board-approved transition plan"},
			{ID: "b", Recommendation: "publish a board-approved transition plan"}, // case dup
			{ID: "c", Recommendation: "Obtain verification"},
		},
		PositiveIndicators: []string{"Scope-3 emissions reported"},
	}
	ai := &datatypes.AIResult{
		Success:         true,
		NormalizedScore: 70,
		Components: []datatypes.ComponentEvaluation{
			{Recommendations: []string{"Obtain verification of the baseline"}}, // superset dup
		},
		PositiveFindings: []string{"Scope-3 emissions reported under GHG Protocol"}, // superset dup
	}

	result := New(config.ModeHybrid).Combine(rule, ai, nil)

	assert.Equal(t, []string{
		"Publish a board-approved transition plan",
		"Obtain verification",
	}, result.Recommendations)
	assert.Equal(t, []string{"Scope-3 emissions reported"}, result.PositiveIndicators)
}

func TestCombine_ListsTruncated(t *testing.T) {
	var flags []datatypes.RedFlag
	for i := 0; i < 15; i++ {
		flags = append(flags, datatypes.RedFlag{
			ID:             fmt.Sprintf("flag_%d", i),
			Recommendation: fmt.Sprintf("distinct recommendation number %d", i),
		})
	}
	result := New(config.ModeRule).Combine(datatypes.RuleResult{Flags: flags}, nil, nil)
	assert.Len(t, result.Recommendations, maxListItems)
}

func TestCombine_OutputIdentity(t *testing.T) {
	result := New(config.ModeRule).Combine(ruleResult(10), nil, nil)

	require.NotEmpty(t, result.AssessmentID)
	assert.False(t, result.EvaluatedAt.IsZero())
	assert.Equal(t, "UTC", result.EvaluatedAt.Location().String())

	// IDs are unique per assessment.
	second := New(config.ModeRule).Combine(ruleResult(10), nil, nil)
	assert.NotEqual(t, result.AssessmentID, second.AssessmentID)
}
