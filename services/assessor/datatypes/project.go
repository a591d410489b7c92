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

// EmissionsProfile holds emissions by GHG Protocol scope, in tCO2e.
// Scope3 is a pointer because many filings legitimately omit it, and
// "not reported" must stay distinguishable from "reported as zero".
type EmissionsProfile struct {
	Scope1 float64  `json:"scope1" validate:"gte=0"`
	Scope2 float64  `json:"scope2" validate:"gte=0"`
	Scope3 *float64 `json:"scope3,omitempty" validate:"omitempty,gte=0"`
}

// Total returns the sum of all reported scopes.
func (e EmissionsProfile) Total() float64 {
	total := e.Scope1 + e.Scope2
	if e.Scope3 != nil {
		total += *e.Scope3
	}
	return total
}

// ProjectInput is the canonical, validated representation of a financing
// project. It is constructed once per assessment request and never mutated
// afterward; every evaluator receives it by value.
type ProjectInput struct {
	Name    string `json:"name" validate:"required"`
	Country string `json:"country"`
	Sector  string `json:"sector" validate:"required"`

	// Description and Strategy are free text supplied by the applicant.
	Description string `json:"description"`
	Strategy    string `json:"strategy"`

	// Financing amounts in the project currency. Debt and equity do not
	// have to sum to total (mezzanine instruments exist) but none may be
	// negative.
	TotalFinancing  float64 `json:"total_financing" validate:"gte=0"`
	DebtFinancing   float64 `json:"debt_financing" validate:"gte=0"`
	EquityFinancing float64 `json:"equity_financing" validate:"gte=0"`

	CurrentEmissions EmissionsProfile `json:"current_emissions"`
	TargetEmissions  EmissionsProfile `json:"target_emissions"`

	// TargetYear is the year the target emissions are promised for.
	// Zero means no target year was given.
	TargetYear int `json:"target_year" validate:"gte=0"`

	HasPublishedPlan       bool `json:"has_published_plan"`
	ThirdPartyVerification bool `json:"third_party_verification"`

	// DocumentText is the raw text already extracted from the source
	// document by the ingestion service. May be empty.
	DocumentText string `json:"document_text,omitempty"`
}

// NarrativeText returns the concatenated free text an evaluator should
// pattern-match against: description, strategy and the source document.
func (p ProjectInput) NarrativeText() string {
	text := p.Description
	if p.Strategy != "" {
		text += "\n" + p.Strategy
	}
	if p.DocumentText != "" {
		text += "\n" + p.DocumentText
	}
	return text
}
