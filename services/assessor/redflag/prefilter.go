// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
package redflag

import "strings"

// PreFilter decides, before the rule table runs, whether the text-based
// rules should be suppressed for this document. The stock heuristic
// targets the self-referential case: a previously generated compliance
// report fed back in as input would otherwise re-trigger the very
// pattern rules whose historical findings it documents.
//
// This stage is intentionally replaceable; the exact suppression scope
// is a product decision, not a scoring invariant.
type PreFilter interface {
	// SuppressTextRules reports whether text-pattern rules should be
	// skipped for the given lower-cased narrative text.
	SuppressTextRules(lowerText string) bool
}

// reportArtifactMarkers are phrases characteristic of a generated
// assessment report rather than an applicant-authored narrative.
var reportArtifactMarkers = []string{
	"red flag",
	"risk assessment",
	"compliance report",
	"assessment findings",
	"risk score",
	"recommendation:",
	"severity:",
}

// ReportArtifactFilter suppresses text rules when the document carries
// two or more distinct report-artifact markers. Field-derived rules
// (missing baseline, absent verification flag) are never suppressed
// since they do not read the document text.
type ReportArtifactFilter struct {
	// MinMarkers is the match threshold. Zero means the default of 2.
	MinMarkers int
}

// SuppressTextRules implements PreFilter.
func (f ReportArtifactFilter) SuppressTextRules(lowerText string) bool {
	threshold := f.MinMarkers
	if threshold == 0 {
		threshold = 2
	}
	matched := 0
	for _, marker := range reportArtifactMarkers {
		if strings.Contains(lowerText, marker) {
			matched++
			if matched >= threshold {
				return true
			}
		}
	}
	return false
}

// NopPreFilter never suppresses anything.
type NopPreFilter struct{}

// SuppressTextRules implements PreFilter.
func (NopPreFilter) SuppressTextRules(string) bool { return false }
