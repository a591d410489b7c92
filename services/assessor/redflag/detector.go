// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package redflag implements the deterministic rule-based red-flag
// detector. It is a pure function over the project input: no I/O, no
// clock, no external calls, identical output for identical input.
package redflag

import (
	"strings"

	"github.com/AleutianAI/Verdant/services/assessor/datatypes"
)

// positiveIndicatorOffset is subtracted from the weighted flag sum once
// per positive indicator.
const positiveIndicatorOffset = 10

// Detector evaluates the ordered rule table against a project.
//
// # Thread Safety
//
// Detector is immutable after construction and safe for concurrent use.
type Detector struct {
	rules     []Rule
	preFilter PreFilter
}

// NewDetector returns a detector with the stock rule table and the
// report-artifact pre-filter.
func NewDetector() *Detector {
	return &Detector{
		rules:     defaultRules(),
		preFilter: ReportArtifactFilter{},
	}
}

// NewDetectorWithPreFilter allows swapping the suppression heuristic.
func NewDetectorWithPreFilter(pf PreFilter) *Detector {
	return &Detector{rules: defaultRules(), preFilter: pf}
}

// Detect runs every rule against the project and returns the flags,
// positive indicators and the bounded 0..100 risk score.
//
// # Description
//
// The pre-filter runs first: when the input text looks like a
// previously generated compliance report, text-pattern rules are
// skipped to avoid self-referential false positives. All remaining
// rules are then evaluated independently; matching rules each
// contribute their flag.
//
// Score formula:
//
//	clamp(sum(severity weights) - 10*len(positiveIndicators), 0, 100)
//
// This component cannot fail; it has no external dependency.
func (d *Detector) Detect(p datatypes.ProjectInput) datatypes.RuleResult {
	lowerText := strings.ToLower(p.NarrativeText())
	suppressText := d.preFilter.SuppressTextRules(lowerText)

	flags := make([]datatypes.RedFlag, 0, len(d.rules))
	weighted := 0

	for _, rule := range d.rules {
		if suppressText && rule.TextBased {
			continue
		}
		if !rule.Matches(p, lowerText) {
			continue
		}
		flags = append(flags, datatypes.RedFlag{
			ID:             rule.ID,
			Category:       rule.Category,
			Severity:       rule.Severity,
			Description:    rule.Description,
			Recommendation: rule.Recommendation,
		})
		weighted += rule.Severity.Weight()
	}

	positives := positiveIndicators(p, lowerText)
	score := weighted - positiveIndicatorOffset*len(positives)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return datatypes.RuleResult{
		Flags:              flags,
		PositiveIndicators: positives,
		RiskScore:          score,
	}
}
