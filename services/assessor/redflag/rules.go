// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.
package redflag

import (
	"regexp"
	"strings"

	"github.com/AleutianAI/Verdant/services/assessor/datatypes"
)

// Rule is one deterministic predicate over the project input. Rules are
// independent: every rule in the table is evaluated and any matching
// rule contributes its flag, with no short-circuiting between rules.
type Rule struct {
	ID             string
	Category       datatypes.FlagCategory
	Severity       datatypes.Severity
	Description    string
	Recommendation string

	// TextBased marks rules whose predicate reads the narrative text.
	// Only these are eligible for suppression by the pre-filter.
	TextBased bool

	// Matches must be pure: no I/O, no clock, no randomness.
	Matches func(p datatypes.ProjectInput, lowerText string) bool
}

var (
	fossilExclusionPattern = regexp.MustCompile(
		`\b(coal[- ]?(fired|power|plant|mine|mining)?|lignite|oil sands?|tar sands?|new (oil|gas) (field|exploration|extraction)|peat[- ]fired)\b`)

	vagueModalPattern = regexp.MustCompile(
		`\b(aims? to|aspires? to|strives? to|intends? to|hopes? to|explores?|considers?|seeks? to|endeavors? to)\b`)

	yearReferencePattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

	interimTargetPattern = regexp.MustCompile(
		`\b(interim (target|milestone)s?|milestones?|near[- ]term targets?)\b`)
)

// scope3MaterialSectors lists sectors where scope-3 emissions dominate
// the footprint, making an absent scope-3 figure a material omission.
var scope3MaterialSectors = []string{
	"energy", "oil", "gas", "mining", "steel", "cement",
	"chemicals", "transport", "aviation", "shipping",
	"automotive", "agriculture", "construction",
}

func sectorIsScope3Material(sector string) bool {
	s := strings.ToLower(sector)
	for _, material := range scope3MaterialSectors {
		if strings.Contains(s, material) {
			return true
		}
	}
	return false
}

// defaultRules is the ordered rule table. Order is fixed so the flag
// list is byte-identical across invocations for the same input.
func defaultRules() []Rule {
	return []Rule{
		{
			ID:             "coal_project",
			Category:       datatypes.CategoryTechnology,
			Severity:       datatypes.SeverityHigh,
			Description:    "Project involves coal or other excluded fossil technologies",
			Recommendation: "Excluded technologies cannot be financed under the framework; restructure the project scope",
			TextBased:      true,
			Matches: func(p datatypes.ProjectInput, lowerText string) bool {
				return fossilExclusionPattern.MatchString(strings.ToLower(p.Sector)) ||
					fossilExclusionPattern.MatchString(lowerText)
			},
		},
		{
			ID:             "vague_commitment",
			Category:       datatypes.CategoryCommitment,
			Severity:       datatypes.SeverityHigh,
			Description:    "Transition narrative uses aspirational language without a dated commitment",
			Recommendation: "Replace aspirational wording with quantified, dated targets",
			TextBased:      true,
			Matches: func(p datatypes.ProjectInput, lowerText string) bool {
				return vagueModalPattern.MatchString(lowerText) &&
					!yearReferencePattern.MatchString(lowerText)
			},
		},
		{
			ID:             "missing_scope3",
			Category:       datatypes.CategoryScope,
			Severity:       datatypes.SeverityHigh,
			Description:    "Scope-3 emissions not reported in a sector where they are material",
			Recommendation: "Report scope-3 emissions or justify exclusion with a materiality screen",
			Matches: func(p datatypes.ProjectInput, lowerText string) bool {
				return p.CurrentEmissions.Scope3 == nil && sectorIsScope3Material(p.Sector)
			},
		},
		{
			ID:             "missing_baseline",
			Category:       datatypes.CategoryBaseline,
			Severity:       datatypes.SeverityHigh,
			Description:    "No current-emissions baseline reported",
			Recommendation: "Establish and disclose a measured emissions baseline",
			Matches: func(p datatypes.ProjectInput, lowerText string) bool {
				return p.CurrentEmissions.Total() == 0
			},
		},
		{
			ID:             "no_published_plan",
			Category:       datatypes.CategoryCommitment,
			Severity:       datatypes.SeverityMedium,
			Description:    "No published transition plan",
			Recommendation: "Publish a board-approved transition plan",
			Matches: func(p datatypes.ProjectInput, lowerText string) bool {
				return !p.HasPublishedPlan
			},
		},
		{
			ID:             "no_verification",
			Category:       datatypes.CategoryVerification,
			Severity:       datatypes.SeverityMedium,
			Description:    "Emissions figures lack third-party verification",
			Recommendation: "Obtain limited-assurance verification of reported emissions",
			Matches: func(p datatypes.ProjectInput, lowerText string) bool {
				return !p.ThirdPartyVerification
			},
		},
		{
			ID:             "distant_target",
			Category:       datatypes.CategoryAmbition,
			Severity:       datatypes.SeverityMedium,
			Description:    "Target year is absent or beyond 2050",
			Recommendation: "Set a target year no later than 2050 with interim milestones",
			Matches: func(p datatypes.ProjectInput, lowerText string) bool {
				return p.TargetYear == 0 || p.TargetYear > 2050
			},
		},
		{
			ID:             "no_emissions_reduction",
			Category:       datatypes.CategoryAmbition,
			Severity:       datatypes.SeverityMedium,
			Description:    "Target emissions do not fall below the current baseline",
			Recommendation: "Commit to an absolute emissions reduction against the baseline",
			Matches: func(p datatypes.ProjectInput, lowerText string) bool {
				current := p.CurrentEmissions.Total()
				return current > 0 && p.TargetEmissions.Total() >= current
			},
		},
		{
			ID:             "financing_inconsistency",
			Category:       datatypes.CategoryVerification,
			Severity:       datatypes.SeverityLow,
			Description:    "Reported debt financing exceeds total financing",
			Recommendation: "Reconcile the financing breakdown before assessment",
			Matches: func(p datatypes.ProjectInput, lowerText string) bool {
				return p.TotalFinancing > 0 && p.DebtFinancing > p.TotalFinancing
			},
		},
	}
}

// positiveIndicators returns the deterministic list of positive signals
// for the project. Each indicator offsets the risk score by 10 points.
func positiveIndicators(p datatypes.ProjectInput, lowerText string) []string {
	var indicators []string

	if p.HasPublishedPlan {
		indicators = append(indicators, "Published transition plan in place")
	}
	if p.ThirdPartyVerification {
		indicators = append(indicators, "Third-party verification of emissions data")
	}
	if p.CurrentEmissions.Scope3 != nil {
		indicators = append(indicators, "Scope-3 emissions reported")
	}
	if p.TargetYear >= 2024 && p.TargetYear <= 2035 {
		indicators = append(indicators, "Near-term target year")
	}
	if current := p.CurrentEmissions.Total(); current > 0 {
		if p.TargetEmissions.Total() <= current*0.7 {
			indicators = append(indicators, "Targets at least 30% absolute emissions reduction")
		}
	}
	if interimTargetPattern.MatchString(lowerText) {
		indicators = append(indicators, "Interim milestones referenced in the narrative")
	}

	return indicators
}
