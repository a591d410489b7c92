// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.
package datatypes

import "time"

// Severity grades a red flag.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Weight returns the contribution of a flag of this severity to the
// rule-based risk score.
func (s Severity) Weight() int {
	switch s {
	case SeverityHigh:
		return 25
	case SeverityMedium:
		return 15
	case SeverityLow:
		return 5
	default:
		return 0
	}
}

// FlagCategory is the closed set of rule-detector categories.
type FlagCategory string

const (
	CategoryTechnology   FlagCategory = "technology"
	CategoryAmbition     FlagCategory = "ambition"
	CategoryCommitment   FlagCategory = "commitment"
	CategoryVerification FlagCategory = "verification"
	CategoryScope        FlagCategory = "scope"
	CategoryBaseline     FlagCategory = "baseline"
)

// RedFlag is one rule-detected indicator of potential non-compliance or
// greenwashing risk. Immutable once produced.
type RedFlag struct {
	ID             string       `json:"id"`
	Category       FlagCategory `json:"category"`
	Severity       Severity     `json:"severity"`
	Description    string       `json:"description"`
	Recommendation string       `json:"recommendation,omitempty"`
}

// RuleResult is the full output of the deterministic red-flag detector.
type RuleResult struct {
	Flags              []RedFlag `json:"flags"`
	PositiveIndicators []string  `json:"positive_indicators"`

	// RiskScore is 0..100, higher means riskier.
	RiskScore int `json:"risk_score"`
}

// FindingStatus grades a single rubric criterion within a component.
type FindingStatus string

const (
	FindingStrong   FindingStatus = "strong"
	FindingAdequate FindingStatus = "adequate"
	FindingWeak     FindingStatus = "weak"
	FindingMissing  FindingStatus = "missing"
)

// ComponentFinding is one criterion-level observation inside a component
// evaluation. Owned exclusively by its parent ComponentEvaluation.
type ComponentFinding struct {
	Criterion string        `json:"criterion"`
	MaxPoints int           `json:"max_points"`
	Points    int           `json:"points"`
	Status    FindingStatus `json:"status"`
	Evidence  string        `json:"evidence"`
	Concern   string        `json:"concern,omitempty"`
}

// ComponentMaxScore is the fixed ceiling of every scoring dimension.
const ComponentMaxScore = 25

// ComponentEvaluation is the scored output of one AI scoring dimension.
// Evaluations are produced independently and never merged before the
// aggregation step.
type ComponentEvaluation struct {
	ComponentID string             `json:"component_id"`
	MaxScore    int                `json:"max_score"`
	Score       int                `json:"score"`
	Confidence  int                `json:"confidence"`
	Findings    []ComponentFinding `json:"findings"`
	Assessment  string             `json:"assessment"`

	Recommendations []string `json:"recommendations,omitempty"`
}

// RiskLevel is the five-step classification used by the AI evaluator
// and, in its three-step subset, by the combiner.
type RiskLevel string

const (
	RiskLow        RiskLevel = "low"
	RiskMediumLow  RiskLevel = "medium-low"
	RiskMedium     RiskLevel = "medium"
	RiskMediumHigh RiskLevel = "medium-high"
	RiskHigh       RiskLevel = "high"
)

// AIResult aggregates all component evaluations into one 0..100 signal.
type AIResult struct {
	Success bool `json:"success"`

	// NormalizedScore is 0..100, higher means more compliant.
	NormalizedScore int       `json:"normalized_score"`
	RiskLevel       RiskLevel `json:"risk_level"`
	Confidence      int       `json:"confidence"`

	Components       []ComponentEvaluation `json:"components"`
	TopConcerns      []string              `json:"top_concerns,omitempty"`
	PositiveFindings []string              `json:"positive_findings,omitempty"`
}

// SafeguardStatus grades one environmental objective.
type SafeguardStatus string

const (
	SafeguardNoHarm          SafeguardStatus = "no_harm"
	SafeguardPotentialHarm   SafeguardStatus = "potential_harm"
	SafeguardSignificantHarm SafeguardStatus = "significant_harm"
	SafeguardNotAssessed     SafeguardStatus = "not_assessed"
)

// SafeguardCriterion is the scored result for one environmental objective.
type SafeguardCriterion struct {
	Objective string          `json:"objective"`
	Status    SafeguardStatus `json:"status"`
	Score     int             `json:"score"`
	MaxScore  int             `json:"max_score"`
	Evidence  string          `json:"evidence"`
	Concern   string          `json:"concern,omitempty"`

	// IsFundamentallyIncompatible means no corrective recommendation
	// exists: the project type structurally cannot satisfy the objective.
	IsFundamentallyIncompatible bool `json:"is_fundamentally_incompatible"`

	// Recommendations must be empty when IsFundamentallyIncompatible.
	Recommendations []string `json:"recommendations,omitempty"`
}

// SafeguardOverall is the top-level DNSH compliance grade.
type SafeguardOverall string

const (
	SafeguardCompliant    SafeguardOverall = "compliant"
	SafeguardPartial      SafeguardOverall = "partial"
	SafeguardNonCompliant SafeguardOverall = "non_compliant"
)

// SafeguardAssessment is the do-no-significant-harm result. It is always
// reported as an independent score and never folded into the combined
// risk penalty.
type SafeguardAssessment struct {
	OverallStatus   SafeguardOverall     `json:"overall_status"`
	NormalizedScore int                  `json:"normalized_score"`
	Criteria        []SafeguardCriterion `json:"criteria"`
	KeyRisks        []string             `json:"key_risks,omitempty"`

	IsFundamentallyIncompatible bool `json:"is_fundamentally_incompatible"`
}

// MaxCombinedPenalty caps the combined penalty.
const MaxCombinedPenalty = 20

// CombinedAssessment is the terminal value returned to callers. It is
// constructed once by the score combiner and not mutated thereafter.
type CombinedAssessment struct {
	AssessmentID string    `json:"assessment_id"`
	EvaluatedAt  time.Time `json:"evaluated_at"`

	RiskLevel       RiskLevel `json:"risk_level"`
	CombinedPenalty int       `json:"combined_penalty"`

	RuleFlags          []RedFlag `json:"rule_flags"`
	RuleRiskScore      int       `json:"rule_risk_score"`
	PositiveIndicators []string  `json:"positive_indicators"`
	Recommendations    []string  `json:"recommendations"`

	// AIEvaluationUsed tells callers whether the penalty was derived with
	// AI evidence or from rules alone.
	AIEvaluationUsed bool      `json:"ai_evaluation_used"`
	AIResult         *AIResult `json:"ai_result,omitempty"`

	// SafeguardAssessment is a parallel compliance signal, reported
	// independently of the penalty.
	SafeguardAssessment *SafeguardAssessment `json:"safeguard_assessment,omitempty"`
}
